// Package gaze holds the time ordered gaze samples and the cursor that walks
// them in step with video frames.
package gaze

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyTable = errors.New("gaze table is empty")
	ErrShortRow   = errors.New("gaze row needs timestamp, x and y")
)

// Sample is where the viewer looked at Timestamp, in normalized frame coordinates.
type Sample struct {
	Timestamp float64
	X         float64
	Y         float64
}

// Table is loaded once and never modified. Timestamps are expected ascending
// but that is not checked.
type Table struct {
	samples []Sample
}

func NewTable(samples []Sample) (*Table, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyTable
	}
	cp := make([]Sample, len(samples))
	copy(cp, samples)
	return &Table{samples: cp}, nil
}

// FromRows builds a table from (timestamp, x, y, ...) rows, extra columns are ignored.
func FromRows(rows [][]float64) (*Table, error) {
	samples := make([]Sample, 0, len(rows))
	for i, r := range rows {
		if len(r) < 3 {
			return nil, fmt.Errorf("row %d: %w (got %d columns)", i, ErrShortRow, len(r))
		}
		samples = append(samples, Sample{Timestamp: r[0], X: r[1], Y: r[2]})
	}
	return NewTable(samples)
}

func (t *Table) Len() int {
	return len(t.samples)
}

func (t *Table) At(i int) Sample {
	return t.samples[i]
}

func (t *Table) Last() Sample {
	return t.samples[len(t.samples)-1]
}

// Cursor only moves forward. It never steps past the last sample, so a video
// longer than the recording keeps reusing the final gaze point.
type Cursor struct {
	table   *Table
	idx     int
	epsilon float64
}

func NewCursor(t *Table, epsilon float64) *Cursor {
	return &Cursor{table: t, epsilon: epsilon}
}

// Seek returns the newest sample whose timestamp does not exceed ts (within
// epsilon), starting the search at the current position. It picks the latest
// sample not newer than the frame, not the first sample at or after it.
func (c *Cursor) Seek(ts float64) Sample {
	last := c.table.Len() - 1
	for c.idx < last && c.table.samples[c.idx+1].Timestamp <= ts+c.epsilon {
		c.idx++
	}
	return c.table.samples[c.idx]
}

func (c *Cursor) Index() int {
	return c.idx
}

// Exhausted reports whether the cursor sits on the final sample.
func (c *Cursor) Exhausted() bool {
	return c.idx == c.table.Len()-1
}
