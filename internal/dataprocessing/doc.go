// Package dataprocessing turns raw snapshot spreadsheets into canonical daily records.
//
// # Components
//
//  1. Number parsing: locale aware conversion of cells where "." groups thousands and
//     "," is the decimal mark, with currency and percent symbols stripped.
//  2. Date parsing: ISO, day-first slash formats, Excel serials and free text with
//     Italian month names. Total and summary rows are flagged not-a-date.
//  3. SchemaMapper: header canonicalization through a versioned alias table
//     (aliases.yaml, embedded, optionally overridden from disk).
//  4. RecordNormalizer: reads xlsx (excelize) or csv content and produces one
//     record per date plus ParseDiagnostics.
//
// # Usage
//
//	mapper, err := dataprocessing.NewSchemaMapper(dataprocessing.DefaultAliasTable())
//	normalizer := dataprocessing.NewRecordNormalizer(mapper, logger)
//	result, err := normalizer.Normalize(ctx, "Terrazza_Forecast_Snapshot_20250115.xlsx", data)
//
// Parsing is lenient: malformed numeric cells become 0 and unparseable dates drop
// their row. Both are counted in the returned diagnostics so callers can tell a
// real zero from a rejected cell.
package dataprocessing
