package services

import (
	"errors"
	"net/http"

	apperrors "github.com/DevLab-Dome/kross-dashboard-2026/internal/errors"
)

// Analytics service errors
var (
	// ErrNoData means the requested property and year have no usable records
	ErrNoData = errors.New("no data found")

	// ErrInsufficientHistory means a comparison needs an earlier snapshot that does not exist
	ErrInsufficientHistory = errors.New("insufficient snapshot history")

	ErrUnknownProperty = errors.New("unknown property")
	ErrInvalidQuery    = errors.New("invalid query")
	ErrBudgetNotFound  = errors.New("budget not found")
	ErrSnapshotMissing = errors.New("snapshot not found")
)

// ErrorMappings renders the service errors as problem details
func ErrorMappings() []apperrors.Mapping {
	return []apperrors.Mapping{
		{Target: ErrNoData, Status: http.StatusNotFound, Type: apperrors.TypeNoData, Title: "No Data"},
		{Target: ErrSnapshotMissing, Status: http.StatusNotFound, Type: apperrors.TypeNoData, Title: "Snapshot Not Found"},
		{Target: ErrInsufficientHistory, Status: http.StatusConflict, Type: apperrors.TypeInsufficientHistory, Title: "Insufficient History"},
		{Target: ErrUnknownProperty, Status: http.StatusNotFound, Type: apperrors.TypePropertyNotFound, Title: "Property Not Found"},
		{Target: ErrBudgetNotFound, Status: http.StatusNotFound, Type: apperrors.TypeBudgetNotFound, Title: "Budget Not Found"},
		{Target: ErrInvalidQuery, Status: http.StatusBadRequest, Type: apperrors.TypeInvalidQuery, Title: "Invalid Query"},
	}
}
