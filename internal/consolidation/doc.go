// Package consolidation builds the authoritative daily dataset of a property and year.
//
// The current calendar year is served from the single newest Forecast snapshot. Past years
// are served from History_Baseline only; a Forecast file left behind for a past year is
// never consulted on that path. Results are cached for a short time because uploads can
// land in the object store between requests.
//
// Every failure below this package (listing, fetching, parsing) degrades to an empty
// dataset. Callers treat an empty dataset as "no data".
package consolidation
