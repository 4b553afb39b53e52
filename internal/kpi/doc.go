// Package kpi aggregates and compares canonical daily records.
//
// Aggregate resolves occupancy and RevPAR from, in order: the rooms_available declared on
// the records, an external room-count hint multiplied by the number of days, or the mean of
// the records' own occupancy. Delta applies the three-way percent rule: 0 when both sides are
// 0, 100 when only the previous value is 0, the relative change otherwise.
//
// Monetary outputs are rounded to two decimals with shopspring/decimal.
package kpi
