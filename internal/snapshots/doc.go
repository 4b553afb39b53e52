// Package snapshots discovers snapshot files in the object store and works out their
// capture dates.
//
// The folder for a (property, year) pair is chosen by an explicit rule: the current
// calendar year reads Forecast, every other year reads History_Baseline. A companion
// index.json listing filenames is authoritative when present; otherwise the prefix is
// listed in full.
//
// Capture dates come from the filename when possible:
//
//  1. the first valid 8-digit token, read as DDMMYYYY, or YYYYMMDD when that is not a date
//  2. an ISO token (YYYY-MM-DD)
//  3. the object's last-modified timestamp
package snapshots
