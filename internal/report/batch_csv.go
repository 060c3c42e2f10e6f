package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// BatchCSV writes one row per generated chain, with five columns per
// usable-thread count t = 1..length: BnB_BnB/t/finished, BnB_BnB/t,
// BnB_List/t, DP/t, DP_BnB/t. This mirrors src/jcdp_batch.cpp's per-t
// column block, trimmed of the GPU-scheduler columns (see DESIGN.md).
type BatchCSV struct {
	w      *csv.Writer
	length int
}

// NewBatchCSV returns a writer for chains of the given length and
// writes the header row immediately.
func NewBatchCSV(w io.Writer, length int) (*BatchCSV, error) {
	b := &BatchCSV{w: csv.NewWriter(w), length: length}
	header := make([]string, 0, length*5)
	for t := 1; t <= length; t++ {
		header = append(header,
			fmt.Sprintf("BnB_BnB/%d/finished", t),
			fmt.Sprintf("BnB_BnB/%d", t),
			fmt.Sprintf("BnB_List/%d", t),
			fmt.Sprintf("DP/%d", t),
			fmt.Sprintf("DP_BnB/%d", t),
		)
	}
	if err := b.w.Write(header); err != nil {
		return nil, fmt.Errorf("report: writing csv header: %w", err)
	}
	return b, nil
}

// Row accumulates one chain's results across thread counts before being
// flushed with WriteRow.
type Row struct {
	BnBBnBFinished []bool
	BnBBnB         []int
	BnBList        []int
	DP             []int
	DPBnB          []int
}

// WriteRow flushes one chain's results. Every slice in r must have
// length equal to the configured chain length.
func (b *BatchCSV) WriteRow(r Row) error {
	record := make([]string, 0, b.length*5)
	for t := 0; t < b.length; t++ {
		record = append(record,
			strconv.FormatBool(r.BnBBnBFinished[t]),
			strconv.Itoa(r.BnBBnB[t]),
			strconv.Itoa(r.BnBList[t]),
			strconv.Itoa(r.DP[t]),
			strconv.Itoa(r.DPBnB[t]),
		)
	}
	if err := b.w.Write(record); err != nil {
		return fmt.Errorf("report: writing csv row: %w", err)
	}
	return nil
}

// Flush must be called after the last WriteRow to ensure all buffered
// output reaches the underlying writer.
func (b *BatchCSV) Flush() error {
	b.w.Flush()
	return b.w.Error()
}
