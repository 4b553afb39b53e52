// Package budget projects a base year onto the following year and tracks the result
// against the bookings on the books (OTB).
//
// A projection raises each base day's occupancy and ADR by a percentage. A non-zero monthly
// increment replaces the global one for that month. Target occupancy is clipped to 0-100 and
// target revenue is rooms x occupancy/100 x ADR.
//
// Saved budgets are CSV files with the columns date, occupancy_pct, adr and revenue:
//
//	Budgets-Official/{folder}-{year}/budget_official.csv
//	Budgets-Test/{folder}-{year}/budget_test_{YYYYMMDD_HHMM}.csv
package budget
