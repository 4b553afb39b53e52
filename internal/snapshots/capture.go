package snapshots

import (
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

var (
	digitRun = regexp.MustCompile(`\d+`)
	isoToken = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
)

// ExtractCaptureDate derives the logical capture date of a snapshot file
func ExtractCaptureDate(filename string, lastModified time.Time) (time.Time, domain.CaptureDateSource) {
	name := path.Base(filename)

	for _, tok := range digitRun.FindAllString(name, -1) {
		if len(tok) != 8 {
			continue
		}
		if t, err := time.Parse("02012006", tok); err == nil {
			return t, domain.CaptureFromDayFirstToken
		}
		if t, err := time.Parse("20060102", tok); err == nil {
			return t, domain.CaptureFromYearFirstToken
		}
	}

	if tok := isoToken.FindString(name); tok != "" {
		if t, err := time.Parse("2006-01-02", tok); err == nil {
			return t, domain.CaptureFromISOToken
		}
	}

	return domain.Day(lastModified), domain.CaptureFromLastModified
}

// ForecastFilename is the name the upload workflow gives forecast snapshots
func ForecastFilename(folder string, capture time.Time) string {
	return folder + "_Forecast_Snapshot_" + capture.Format("20060102") + ".xlsx"
}

// IsSnapshotFile reports whether a filename is a spreadsheet that can hold a snapshot.
// Office lock files and the index itself are excluded.
func IsSnapshotFile(filename string) bool {
	name := path.Base(filename)
	if name == IndexFile || strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
		return false
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".xlsx", ".xlsm", ".xls", ".csv":
		return true
	}
	return false
}
