package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// CSVWriter writes CSV documents to an io.Writer
type CSVWriter struct {
	w io.Writer
}

// NewCSVWriter creates a CSV writer over w
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: w}
}

// WriteCSV writes a whole document with the given options
func (w *CSVWriter) WriteCSV(options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w.w)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// StreamWriter writes records one at a time
type StreamWriter struct {
	writer *csv.Writer
}

// NewStreamWriter writes the headers and returns a writer for the rows that follow
func NewStreamWriter(w io.Writer, headers []string, bom bool) (*StreamWriter, error) {
	if bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}
	writer := csv.NewWriter(w)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}
	return &StreamWriter{writer: writer}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes pending records
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	return s.writer.Error()
}

func encode(headers []string, records [][]string, bom bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewCSVWriter(&buf).WriteCSV(WriteOptions{Headers: headers, Records: records, BOMPrefix: bom}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
