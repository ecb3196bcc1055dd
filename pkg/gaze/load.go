package gaze

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/1F47E/go-gazereel/pkg/logger"
	"github.com/1F47E/go-gazereel/pkg/matfile"
)

type LoadOptions struct {
	// MAT variable name
	Variable string
	// MAT exports store one sample per column
	Transpose bool
}

// Load reads a gaze table, choosing the decoder by file extension.
func Load(path string, opts LoadOptions) (*Table, error) {
	log := logger.Log.WithField("scope", "gaze load")
	var rows [][]float64
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mat":
		rows, err = loadMat(path, opts)
	case ".csv", ".txt":
		rows, err = loadCSV(path)
	default:
		return nil, fmt.Errorf("Unknown gaze data format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("Cannot load gaze data %s: %w", path, err)
	}
	t, err := FromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("Cannot load gaze data %s: %w", path, err)
	}
	log.Debugf("loaded %d samples, %.3fs..%.3fs", t.Len(), t.At(0).Timestamp, t.Last().Timestamp)
	return t, nil
}

func loadMat(path string, opts LoadOptions) ([][]float64, error) {
	f, err := matfile.Open(path)
	if err != nil {
		return nil, err
	}
	m, err := f.Var(opts.Variable)
	if err != nil {
		return nil, err
	}
	if opts.Transpose {
		m = m.T()
	}
	rows := make([][]float64, m.Rows)
	for i := range rows {
		rows[i] = m.Row(i)
	}
	return rows, nil
}

func loadCSV(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readCSV(f)
}

// readCSV skips a leading header row if its first field is not a number.
func readCSV(r io.Reader) ([][]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var rows [][]float64
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make([]float64, len(rec))
		for i, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				if line == 1 && len(rows) == 0 {
					row = nil
					break
				}
				return nil, fmt.Errorf("line %d column %d: %w", line, i, err)
			}
			row[i] = v
		}
		if row != nil {
			rows = append(rows, row)
		}
	}
	return rows, nil
}
