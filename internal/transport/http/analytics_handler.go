package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/DevLab-Dome/kross-dashboard-2026/internal/errors"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/exporter"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/kpi"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/middleware"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/services"
	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	exportFormats = []string{"json", "csv", "xlsx"}
	budgetKinds   = []string{string(domain.BudgetTest), string(domain.BudgetOfficial)}
	categories    = []string{string(domain.CategoryForecast), string(domain.CategoryBaseline)}
	metrics       = []string{
		string(kpi.MetricRevenue), string(kpi.MetricRoomsSold), string(kpi.MetricADR),
		string(kpi.MetricOccupancy), string(kpi.MetricRevPAR),
	}
)

// AnalyticsService is the part of services.AnalyticsService the handlers use
type AnalyticsService interface {
	Properties() []domain.Property
	ResolveProperty(name string) (domain.Property, error)
	Snapshots(ctx context.Context, q domain.Query) ([]domain.Snapshot, error)
	Dataset(ctx context.Context, q domain.Query) (*domain.ConsolidatedDataset, error)
	KPI(ctx context.Context, q domain.Query, opts services.KPIOptions) (*services.KPIReport, error)
	Pickup(ctx context.Context, q domain.Query, recent, previous string) (*services.PickupReport, error)
	Pace(ctx context.Context, q domain.Query) (*services.PaceReport, error)
	Inspect(ctx context.Context, q domain.Query, category domain.Category) (*domain.StorageReport, error)
	RebuildIndex(ctx context.Context, q domain.Query, category domain.Category) ([]string, error)
	InvalidateCache(ctx context.Context, q domain.Query) error
	SaveBudget(ctx context.Context, q domain.Query, params domain.BudgetParams, kind domain.BudgetKind) (*services.BudgetResult, error)
	CompareBudget(ctx context.Context, q domain.Query) (*domain.BudgetComparison, error)
	Aggregate(ctx context.Context, year int) (*domain.ConsolidatedDataset, error)
}

type queryKey struct{}

// AnalyticsHandler serves the analytics routes
type AnalyticsHandler struct {
	service      AnalyticsService
	validation   *middleware.ValidationMiddleware
	params       *middleware.QueryParamValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewAnalyticsHandler creates the handler
func NewAnalyticsHandler(service AnalyticsService, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if errorHandler == nil {
		errorHandler = apierrors.NewErrorHandler(logger, false, services.ErrorMappings()...)
	}
	return &AnalyticsHandler{
		service:      service,
		validation:   middleware.NewValidationMiddleware(logger, errorHandler),
		params:       middleware.NewQueryParamValidator(logger, errorHandler),
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "analytics_handler")),
	}
}

// Routes returns the analytics routes, to be mounted under the API base path
func (h *AnalyticsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/properties", h.ListProperties)
	r.Route("/properties/{property}/years/{year}", func(r chi.Router) {
		r.Use(h.QueryCtx)
		r.Get("/snapshots", h.ListSnapshots)
		r.Get("/dataset", h.GetDataset)
		r.Get("/kpi", h.GetKPI)
		r.Get("/pickup", h.GetPickup)
		r.Get("/pace", h.GetPace)
		r.Get("/inspect", h.Inspect)
		r.Post("/index", h.RebuildIndex)
		r.Delete("/cache", h.InvalidateCache)
		r.With(h.validation.ValidateRequest).Post("/budget", h.SaveBudget)
		r.Get("/budget/compare", h.CompareBudget)
	})
	r.Get("/aggregate/years/{year}/dataset", h.GetAggregate)

	return r
}

// QueryCtx validates the property and year path parameters and the optional
// month and rooms query parameters
func (h *AnalyticsHandler) QueryCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		year, ok := h.yearParam(w, r)
		if !ok {
			return
		}
		month, ok := h.params.ValidateInt(w, r, "month", 1, 12, 0)
		if !ok {
			return
		}
		rooms, ok := h.params.ValidateInt(w, r, "rooms", 1, 10000, 0)
		if !ok {
			return
		}

		q := domain.Query{
			Property:  chi.URLParam(r, "property"),
			Year:      year,
			Month:     month,
			RoomsHint: rooms,
		}
		if err := h.validation.ValidateStruct(q); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), queryKey{}, q)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func queryFrom(ctx context.Context) domain.Query {
	q, _ := ctx.Value(queryKey{}).(domain.Query)
	return q
}

func (h *AnalyticsHandler) yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 2000 || year > 2100 {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("year", "year must be between 2000 and 2100"))
		return 0, false
	}
	return year, true
}

// ListProperties handles GET /properties
func (h *AnalyticsHandler) ListProperties(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"properties": h.service.Properties(),
	})
}

// ListSnapshots handles GET .../snapshots
func (h *AnalyticsHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	q := queryFrom(r.Context())
	snaps, err := h.service.Snapshots(r.Context(), q)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"property":  q.Property,
		"year":      q.Year,
		"count":     len(snaps),
		"snapshots": snaps,
	})
}

// GetDataset handles GET .../dataset
func (h *AnalyticsHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	format, ok := h.params.ValidateEnum(w, r, "format", exportFormats, "json")
	if !ok {
		return
	}
	ds, err := h.service.Dataset(r.Context(), queryFrom(r.Context()))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeDataset(w, r, ds, format)
}

// GetAggregate handles GET /aggregate/years/{year}/dataset
func (h *AnalyticsHandler) GetAggregate(w http.ResponseWriter, r *http.Request) {
	year, ok := h.yearParam(w, r)
	if !ok {
		return
	}
	format, ok := h.params.ValidateEnum(w, r, "format", exportFormats, "json")
	if !ok {
		return
	}
	ds, err := h.service.Aggregate(r.Context(), year)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeDataset(w, r, ds, format)
}

func (h *AnalyticsHandler) writeDataset(w http.ResponseWriter, r *http.Request, ds *domain.ConsolidatedDataset, format string) {
	var (
		data        []byte
		err         error
		contentType string
		ext         string
	)
	switch format {
	case "csv":
		data, err = exporter.DatasetCSV(ds)
		contentType, ext = contentTypeCSV, "csv"
	case "xlsx":
		data, err = exporter.DatasetXLSX(ds)
		contentType, ext = contentTypeXLSX, "xlsx"
	default:
		render.JSON(w, r, ds)
		return
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewInternalError(fmt.Sprintf("failed to export dataset: %v", err)))
		return
	}
	h.writeFile(w, r, contentType, fmt.Sprintf("%s_%d.%s", ds.Property, ds.Year, ext), data)
}

func (h *AnalyticsHandler) writeFile(w http.ResponseWriter, r *http.Request, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to write export",
			slog.String("filename", filename),
			slog.String("error", err.Error()))
	}
}

// GetKPI handles GET .../kpi
func (h *AnalyticsHandler) GetKPI(w http.ResponseWriter, r *http.Request) {
	metric, ok := h.params.ValidateEnum(w, r, "metric", metrics, string(kpi.MetricRevenue))
	if !ok {
		return
	}
	end, ok := h.params.ValidateDate(w, r, "end")
	if !ok {
		return
	}

	report, err := h.service.KPI(r.Context(), queryFrom(r.Context()), services.KPIOptions{Metric: metric, End: end})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, report)
}

// GetPickup handles GET .../pickup
func (h *AnalyticsHandler) GetPickup(w http.ResponseWriter, r *http.Request) {
	format, ok := h.params.ValidateEnum(w, r, "format", []string{"json", "csv"}, "json")
	if !ok {
		return
	}
	recent := r.URL.Query().Get("recent")
	previous := r.URL.Query().Get("previous")

	report, err := h.service.Pickup(r.Context(), queryFrom(r.Context()), recent, previous)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if format == "csv" {
		data, err := exporter.ComparisonCSV(report.Result)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.NewInternalError(fmt.Sprintf("failed to export pickup: %v", err)))
			return
		}
		h.writeFile(w, r, contentTypeCSV, fmt.Sprintf("pickup_%s_%d.csv", report.Result.Property, report.Result.Year), data)
		return
	}
	render.JSON(w, r, report)
}

// GetPace handles GET .../pace
func (h *AnalyticsHandler) GetPace(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Pace(r.Context(), queryFrom(r.Context()))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, report)
}

// Inspect handles GET .../inspect
func (h *AnalyticsHandler) Inspect(w http.ResponseWriter, r *http.Request) {
	category, ok := h.params.ValidateEnum(w, r, "category", categories, "")
	if !ok {
		return
	}
	report, err := h.service.Inspect(r.Context(), queryFrom(r.Context()), domain.Category(category))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, report)
}

// RebuildIndex handles POST .../index
func (h *AnalyticsHandler) RebuildIndex(w http.ResponseWriter, r *http.Request) {
	category, ok := h.params.ValidateEnum(w, r, "category", categories, "")
	if !ok {
		return
	}
	q := queryFrom(r.Context())
	names, err := h.service.RebuildIndex(r.Context(), q, domain.Category(category))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"property": q.Property,
		"year":     q.Year,
		"entries":  names,
		"count":    len(names),
	})
}

// InvalidateCache handles DELETE .../cache
func (h *AnalyticsHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	if err := h.service.InvalidateCache(r.Context(), queryFrom(r.Context())); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SaveBudget handles POST .../budget. The year in the path is the budget year;
// the year before is the base.
func (h *AnalyticsHandler) SaveBudget(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.params.ValidateEnum(w, r, "kind", budgetKinds, string(domain.BudgetTest))
	if !ok {
		return
	}
	q := queryFrom(r.Context())

	var params domain.BudgetParams
	if r.ContentLength != 0 {
		if err := render.DecodeJSON(r.Body, &params); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
	}
	if params.Rooms == 0 {
		p, err := h.service.ResolveProperty(q.Property)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		params.Rooms = p.Rooms
	}
	if err := h.validation.ValidateStruct(params); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.SaveBudget(r.Context(), q, params, domain.BudgetKind(kind))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, result)
}

// CompareBudget handles GET .../budget/compare
func (h *AnalyticsHandler) CompareBudget(w http.ResponseWriter, r *http.Request) {
	cmp, err := h.service.CompareBudget(r.Context(), queryFrom(r.Context()))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, cmp)
}
