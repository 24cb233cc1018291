// Package bench times whole-table write and read operations for each
// storage format across a range of problem sizes. Each measurement
// repeats a configurable number of times and keeps the fastest run,
// which damps filesystem cache noise without long benchmark sessions.
package bench

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/skybench/skybench/pkg/compression"
	"github.com/skybench/skybench/pkg/config"
	"github.com/skybench/skybench/pkg/errors"
	"github.com/skybench/skybench/pkg/formats"
	"github.com/skybench/skybench/pkg/gen"
	"github.com/skybench/skybench/pkg/table"
)

// Direction labels what a series measured.
type Direction string

const (
	// Write measures table encoding to disk
	Write Direction = "write"
	// Read measures table decoding from disk
	Read Direction = "read"
)

// Sample is one timing measurement: a problem size and the elapsed
// wall time of the fastest iteration, plus the on-disk file size.
type Sample struct {
	Rows    int     `json:"rows"`
	Seconds float64 `json:"seconds"`
	Bytes   int64   `json:"bytes"`
}

// Series collects samples for one (format, direction) pair across
// problem sizes.
type Series struct {
	Format    formats.Format `json:"format"`
	Direction Direction      `json:"direction"`
	Samples   []Sample       `json:"samples"`
}

// Runner executes the benchmark matrix.
type Runner struct {
	cfg    *config.Config
	opts   *formats.Options
	logger *zap.Logger
}

// NewRunner creates a benchmark runner.
func NewRunner(cfg *config.Config, logger *zap.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		opts:   formats.DefaultOptions(),
		logger: logger.With(zap.String("component", "bench")),
	}
}

// selectedFormats resolves the configured format list, defaulting to
// all formats.
func (r *Runner) selectedFormats() ([]formats.Format, error) {
	if len(r.cfg.Bench.Formats) == 0 {
		return formats.All(), nil
	}
	out := make([]formats.Format, 0, len(r.cfg.Bench.Formats))
	for _, s := range r.cfg.Bench.Formats {
		f, err := formats.Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// scratchPath builds the benchmark file name for a format, appending
// the configured compression suffix for formats that support it.
func (r *Runner) scratchPath(f formats.Format, label string) (string, error) {
	info := formats.GetFormatInfo(f)
	name := fmt.Sprintf("bench_%s%s", label, info.FileExtension)

	algo, err := compression.Parse(r.cfg.Bench.Compression)
	if err != nil {
		return "", err
	}
	if algo != compression.None && info.SupportsCompress {
		switch algo {
		case compression.Gzip:
			name += ".gz"
		case compression.Zstd:
			name += ".zst"
		case compression.S2:
			name += ".s2"
		case compression.LZ4:
			name += ".lz4"
		}
	}
	return filepath.Join(r.cfg.DataDir, name), nil
}

// Run executes the synthetic benchmark matrix and returns the report.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	fmts, err := r.selectedFormats()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(r.cfg.DataDir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create data directory").
			WithDetail("dir", r.cfg.DataDir)
	}

	report := newReport(r.cfg)
	series := make(map[string]*Series)
	get := func(f formats.Format, d Direction) *Series {
		key := string(f) + "/" + string(d)
		s, ok := series[key]
		if !ok {
			s = &Series{Format: f, Direction: d}
			series[key] = s
			report.Series = append(report.Series, s)
		}
		return s
	}

	for _, size := range r.cfg.Bench.Sizes {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeTimeout, "benchmark canceled")
		}

		t := gen.Catalog(size, r.cfg.Bench.Seed)
		r.logger.Info("benchmarking problem size", zap.Int("rows", size))

		for _, f := range fmts {
			path, err := r.scratchPath(f, fmt.Sprintf("%d", size))
			if err != nil {
				return nil, err
			}

			ws, rs, err := r.measure(ctx, path, t)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrorTypeInternal, "benchmark cell failed").
					WithDetail("format", string(f)).
					WithDetail("rows", size)
			}

			get(f, Write).Samples = append(get(f, Write).Samples, ws)
			get(f, Read).Samples = append(get(f, Read).Samples, rs)

			r.logger.Debug("benchmark cell complete",
				zap.String("format", string(f)),
				zap.Int("rows", size),
				zap.Float64("write_seconds", ws.Seconds),
				zap.Float64("read_seconds", rs.Seconds),
				zap.Int64("bytes", ws.Bytes))
		}
	}

	report.finish()
	return report, nil
}

// measure times writing and reading one table at one path, keeping
// the fastest of the configured iterations.
func (r *Runner) measure(ctx context.Context, path string, t *table.Table) (Sample, Sample, error) {
	var zero Sample
	iters := r.cfg.Bench.Iterations

	writeBest := time.Duration(-1)
	for i := 0; i < iters; i++ {
		if err := ctx.Err(); err != nil {
			return zero, zero, err
		}
		start := time.Now()
		if err := formats.WriteFile(path, t, r.opts); err != nil {
			return zero, zero, err
		}
		if d := time.Since(start); writeBest < 0 || d < writeBest {
			writeBest = d
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return zero, zero, err
	}

	readBest := time.Duration(-1)
	for i := 0; i < iters; i++ {
		if err := ctx.Err(); err != nil {
			return zero, zero, err
		}
		start := time.Now()
		got, err := formats.ReadFile(path, r.opts)
		if err != nil {
			return zero, zero, err
		}
		if got.NumRows() != t.NumRows() {
			return zero, zero, errors.Newf(errors.ErrorTypeData,
				"read back %d rows, wrote %d", got.NumRows(), t.NumRows())
		}
		if d := time.Since(start); readBest < 0 || d < readBest {
			readBest = d
		}
	}

	ws := Sample{Rows: t.NumRows(), Seconds: writeBest.Seconds(), Bytes: info.Size()}
	rs := Sample{Rows: t.NumRows(), Seconds: readBest.Seconds(), Bytes: info.Size()}
	return ws, rs, nil
}

// RunDataset benchmarks one real delimited-text dataset: it is parsed
// once, then written and read in every selected format at its natural
// size. The resulting series are appended to the report under the
// dataset section.
func (r *Runner) RunDataset(ctx context.Context, report *Report, datasetPath string) error {
	fmts, err := r.selectedFormats()
	if err != nil {
		return err
	}

	t, err := formats.ReadFile(datasetPath, r.opts)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "failed to parse dataset").
			WithDetail("path", datasetPath)
	}

	report.Dataset = &DatasetReport{
		Path: datasetPath,
		Rows: t.NumRows(),
		Cols: t.NumCols(),
	}
	r.logger.Info("benchmarking dataset",
		zap.String("path", datasetPath),
		zap.Int("rows", t.NumRows()),
		zap.Int("cols", t.NumCols()))

	for _, f := range fmts {
		path, err := r.scratchPath(f, "dataset")
		if err != nil {
			return err
		}
		ws, rs, err := r.measure(ctx, path, t)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeInternal, "dataset benchmark failed").
				WithDetail("format", string(f))
		}
		report.Dataset.Series = append(report.Dataset.Series,
			&Series{Format: f, Direction: Write, Samples: []Sample{ws}},
			&Series{Format: f, Direction: Read, Samples: []Sample{rs}},
		)
	}

	return nil
}
