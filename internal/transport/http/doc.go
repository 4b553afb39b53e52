// Package http implements the HTTP request handlers of the dashboard API.
// Handlers are a thin layer: they parse and validate path and query
// parameters, call the services layer and render plain JSON data.
//
// # Routes
//
// Property-scoped routes live under /api/v1/properties/{property}/years/{year}.
// {property} accepts the display label, the storage folder or the
// upper-snake label. The year is validated before the service is called.
//
//	GET    /snapshots        snapshots of the year, newest first
//	GET    /dataset          consolidated dataset (?format=json|csv|xlsx)
//	GET    /kpi              KPI views (?month=&rooms=&metric=&end=)
//	GET    /pickup           snapshot comparison (?recent=&previous=&format=)
//	GET    /pace             year-over-year pace
//	GET    /inspect          storage report (?category=)
//	POST   /index            rebuild index.json
//	DELETE /cache            drop the cached dataset
//	POST   /budget           project the year from the year before and save (?kind=)
//	GET    /budget/compare   official budget against bookings on the books
//
// # Errors
//
// Every error is rendered as RFC 7807 problem details by the shared
// ErrorHandler, configured with services.ErrorMappings.
package http
