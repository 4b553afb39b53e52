package domain

// MaxDiagnosticSamples bounds the rejected-cell samples kept per parse
const MaxDiagnosticSamples = 10

// RejectedCell describes a cell the normalizer could not interpret
type RejectedCell struct {
	Sheet  string `json:"sheet,omitempty"`
	Row    int    `json:"row"`
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// ParseDiagnostics collects data-quality signals from lenient parsing.
// The values in the dataset are unaffected by anything recorded here.
type ParseDiagnostics struct {
	RowsRead      int            `json:"rows_read"`
	RowsKept      int            `json:"rows_kept"`
	DroppedRows   int            `json:"dropped_rows"`
	RejectedCells int            `json:"rejected_cells"`
	EmptyCells    int            `json:"empty_cells"`
	Samples       []RejectedCell `json:"samples,omitempty"`
	Errors        []string       `json:"errors,omitempty"`
}

// Reject records a malformed cell, keeping at most MaxDiagnosticSamples samples
func (d *ParseDiagnostics) Reject(cell RejectedCell) {
	d.RejectedCells++
	d.sample(cell)
}

// Drop records a row removed from the dataset
func (d *ParseDiagnostics) Drop(cell RejectedCell) {
	d.DroppedRows++
	d.sample(cell)
}

// Fail records a document level failure
func (d *ParseDiagnostics) Fail(err error) {
	if err != nil {
		d.Errors = append(d.Errors, err.Error())
	}
}

// Merge folds other into d
func (d *ParseDiagnostics) Merge(other ParseDiagnostics) {
	d.RowsRead += other.RowsRead
	d.RowsKept += other.RowsKept
	d.DroppedRows += other.DroppedRows
	d.RejectedCells += other.RejectedCells
	d.EmptyCells += other.EmptyCells
	d.Errors = append(d.Errors, other.Errors...)
	for _, s := range other.Samples {
		d.sample(s)
	}
}

// Clean reports whether nothing was rejected, dropped or failed
func (d ParseDiagnostics) Clean() bool {
	return d.RejectedCells == 0 && d.DroppedRows == 0 && len(d.Errors) == 0
}

func (d *ParseDiagnostics) sample(cell RejectedCell) {
	if len(d.Samples) < MaxDiagnosticSamples {
		d.Samples = append(d.Samples, cell)
	}
}
