// Package exporter encodes datasets, comparisons and budgets for download.
//
// CSVWriter is the core writer, with optional UTF-8 BOM so Excel opens Italian
// characters correctly. Dataset, comparison and budget encoders build on it and return
// bytes ready to be put in the object store or streamed to a client. WorkbookWriter
// produces the same dataset as an xlsx sheet.
//
// Example usage:
//
//	data, err := exporter.DatasetCSV(ds)
//	if err != nil {
//	    return err
//	}
//	err = store.Put(ctx, "exports/La_Terrazza-2025.csv", data)
package exporter
