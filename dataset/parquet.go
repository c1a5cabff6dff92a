package dataset

import (
	"fmt"
	"math"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"stridecheck/cycles"
)

const parquetBatchSize = 1024

// canonicalRow is one phase sample in the canonical parquet layout.
// Missing samples are stored as NaN; a NaN reaching extraction is a
// structural error for its (subject, task) unit, so upstream
// converters must impute or drop incomplete strides before export.
type canonicalRow struct {
	Subject                         string  `parquet:"name=subject, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Task                            string  `parquet:"name=task, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	PhasePercent                    float64 `parquet:"name=phase_percent, type=DOUBLE"`
	HipFlexionAngleIpsiRad          float64 `parquet:"name=hip_flexion_angle_ipsi_rad, type=DOUBLE"`
	KneeFlexionAngleIpsiRad         float64 `parquet:"name=knee_flexion_angle_ipsi_rad, type=DOUBLE"`
	AnkleDorsiflexionAngleIpsiRad   float64 `parquet:"name=ankle_dorsiflexion_angle_ipsi_rad, type=DOUBLE"`
	HipFlexionMomentIpsiNmKg        float64 `parquet:"name=hip_flexion_moment_ipsi_nm_kg, type=DOUBLE"`
	KneeFlexionMomentIpsiNmKg       float64 `parquet:"name=knee_flexion_moment_ipsi_nm_kg, type=DOUBLE"`
	AnkleDorsiflexionMomentIpsiNmKg float64 `parquet:"name=ankle_dorsiflexion_moment_ipsi_nm_kg, type=DOUBLE"`
	VerticalGrfIpsiBw               float64 `parquet:"name=vertical_grf_ipsi_bw, type=DOUBLE"`
}

func (r *canonicalRow) values() []float64 {
	return []float64{
		r.HipFlexionAngleIpsiRad,
		r.KneeFlexionAngleIpsiRad,
		r.AnkleDorsiflexionAngleIpsiRad,
		r.HipFlexionMomentIpsiNmKg,
		r.KneeFlexionMomentIpsiNmKg,
		r.AnkleDorsiflexionMomentIpsiNmKg,
		r.VerticalGrfIpsiBw,
	}
}

// ReadParquet loads a canonical parquet dataset into a flat table
// sampled at pointsPerCycle phase points per cycle.
func ReadParquet(path string, pointsPerCycle int) (*cycles.Table, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet dataset: %w", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(canonicalRow), 4)
	if err != nil {
		return nil, fmt.Errorf("read parquet dataset: %w", err)
	}
	defer pr.ReadStop()

	table, err := cycles.NewTable(pointsPerCycle, CanonicalVariables)
	if err != nil {
		return nil, err
	}
	remaining := int(pr.GetNumRows())
	for remaining > 0 {
		batch := parquetBatchSize
		if remaining < batch {
			batch = remaining
		}
		rows := make([]canonicalRow, batch)
		if err := pr.Read(&rows); err != nil {
			return nil, fmt.Errorf("read parquet rows: %w", err)
		}
		for i := range rows {
			row := &rows[i]
			if err := table.Append(row.Subject, row.Task, row.PhasePercent, row.values()); err != nil {
				return nil, err
			}
		}
		remaining -= batch
	}
	return table, nil
}

// WriteParquet writes a flat table to the canonical parquet layout
// with SNAPPY compression. Canonical columns the table does not carry
// are stored as NaN.
func WriteParquet(path string, table *cycles.Table) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("create parquet dataset: %w", err)
	}
	pw, err := writer.NewParquetWriter(fw, new(canonicalRow), 4)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("write parquet dataset: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i := 0; i < table.RowCount(); i++ {
		subject, task, phase := table.Row(i)
		row := canonicalRow{
			Subject:                         subject,
			Task:                            task,
			PhasePercent:                    phase,
			HipFlexionAngleIpsiRad:          valueOrNaN(table, i, "hip_flexion_angle_ipsi_rad"),
			KneeFlexionAngleIpsiRad:         valueOrNaN(table, i, "knee_flexion_angle_ipsi_rad"),
			AnkleDorsiflexionAngleIpsiRad:   valueOrNaN(table, i, "ankle_dorsiflexion_angle_ipsi_rad"),
			HipFlexionMomentIpsiNmKg:        valueOrNaN(table, i, "hip_flexion_moment_ipsi_nm_kg"),
			KneeFlexionMomentIpsiNmKg:       valueOrNaN(table, i, "knee_flexion_moment_ipsi_nm_kg"),
			AnkleDorsiflexionMomentIpsiNmKg: valueOrNaN(table, i, "ankle_dorsiflexion_moment_ipsi_nm_kg"),
			VerticalGrfIpsiBw:               valueOrNaN(table, i, "vertical_grf_ipsi_bw"),
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return fmt.Errorf("write parquet row %d: %w", i, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return fmt.Errorf("finalize parquet dataset: %w", err)
	}
	return fw.Close()
}

func valueOrNaN(table *cycles.Table, row int, variable string) float64 {
	v, ok := table.Value(row, variable)
	if !ok {
		return math.NaN()
	}
	return v
}
