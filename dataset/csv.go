package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"stridecheck/cycles"
)

// ReadCSV loads a wide-format CSV dataset. The header must begin with
// subject and task, followed by the within-cycle phase column, then
// one column per signal variable in dataset order. Unlike the fixed
// parquet schema, CSV accepts arbitrary variable columns.
//
// Cells that fail to parse as numbers become NaN; they surface as
// structural errors for their (subject, task) unit at extraction
// time, never as silently skipped samples.
func ReadCSV(path string, pointsPerCycle int) (*cycles.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv dataset: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) < 4 {
		return nil, fmt.Errorf("csv dataset needs subject, task, phase, and at least one signal column, got %d columns", len(header))
	}
	if header[0] != "subject" || header[1] != "task" {
		return nil, fmt.Errorf("csv dataset must start with subject,task columns, got %q,%q", header[0], header[1])
	}
	variables := append([]string(nil), header[3:]...)

	table, err := cycles.NewTable(pointsPerCycle, variables)
	if err != nil {
		return nil, err
	}
	values := make([]float64, len(variables))
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("csv line %d has %d fields, want %d", line, len(record), len(header))
		}
		phase := parseCell(record[2])
		for i := range variables {
			values[i] = parseCell(record[3+i])
		}
		if err := table.Append(record[0], record[1], phase, values); err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
	}
	return table, nil
}

// WriteCSV writes a flat table in the wide CSV layout read by ReadCSV.
// NaN samples are written as empty cells.
func WriteCSV(path string, table *cycles.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv dataset: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	variables := table.Variables()
	header := append([]string{"subject", "task", "phase_percent"}, variables...)
	if err := w.Write(header); err != nil {
		return err
	}
	row := make([]string, len(header))
	for i := 0; i < table.RowCount(); i++ {
		subject, task, phase := table.Row(i)
		row[0] = subject
		row[1] = task
		row[2] = formatCell(phase)
		for j, name := range variables {
			v, _ := table.Value(i, name)
			row[3+j] = formatCell(v)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func parseCell(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}
