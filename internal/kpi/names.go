package kpi

import "time"

var monthNames = [...]string{
	"Gennaio", "Febbraio", "Marzo", "Aprile", "Maggio", "Giugno",
	"Luglio", "Agosto", "Settembre", "Ottobre", "Novembre", "Dicembre",
}

// Monday first
var weekdayNames = [...]string{"Lunedì", "Martedì", "Mercoledì", "Giovedì", "Venerdì", "Sabato", "Domenica"}

var weekdayAbbr = [...]string{"Lun", "Mar", "Mer", "Gio", "Ven", "Sab", "Dom"}

// MonthName returns the Italian name of month 1-12
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

// weekdayIndex maps time.Weekday to a Monday-first index
func weekdayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// WeekdayAbbr returns the Italian three-letter weekday abbreviation
func WeekdayAbbr(d time.Weekday) string {
	return weekdayAbbr[weekdayIndex(d)]
}
