package bench

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"

	"github.com/skybench/skybench/pkg/config"
	"github.com/skybench/skybench/pkg/errors"
)

// Report is the outcome of a benchmark run.
type Report struct {
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	GoVersion  string         `json:"go_version"`
	OS         string         `json:"os"`
	Arch       string         `json:"arch"`
	Sizes      []int          `json:"sizes"`
	Iterations int            `json:"iterations"`
	Series     []*Series      `json:"series"`
	Dataset    *DatasetReport `json:"dataset,omitempty"`
}

// DatasetReport holds the real-dataset portion of a run.
type DatasetReport struct {
	Path   string    `json:"path"`
	Rows   int       `json:"rows"`
	Cols   int       `json:"cols"`
	Series []*Series `json:"series"`
}

func newReport(cfg *config.Config) *Report {
	return &Report{
		StartedAt:  time.Now().UTC(),
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		Sizes:      cfg.Bench.Sizes,
		Iterations: cfg.Bench.Iterations,
	}
}

func (rep *Report) finish() {
	rep.FinishedAt = time.Now().UTC()
}

// WriteJSON writes the report as indented JSON.
func (rep *Report) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to marshal report")
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write report")
	}
	return nil
}

// WriteText writes the report as an aligned text table.
func (rep *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "skybench report\t\n")
	fmt.Fprintf(tw, "started\t%s\n", rep.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(tw, "go\t%s %s/%s\n", rep.GoVersion, rep.OS, rep.Arch)
	fmt.Fprintf(tw, "iterations\t%d (fastest kept)\n", rep.Iterations)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "format\tdirection\trows\tseconds\tbytes\tMB/s")
	for _, s := range rep.Series {
		writeSeries(tw, s)
	}

	if rep.Dataset != nil {
		fmt.Fprintln(tw)
		fmt.Fprintf(tw, "dataset\t%s (%d rows, %d cols)\n",
			rep.Dataset.Path, rep.Dataset.Rows, rep.Dataset.Cols)
		fmt.Fprintln(tw, "format\tdirection\trows\tseconds\tbytes\tMB/s")
		for _, s := range rep.Dataset.Series {
			writeSeries(tw, s)
		}
	}

	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write report")
	}
	return nil
}

func writeSeries(w io.Writer, s *Series) {
	for _, sm := range s.Samples {
		throughput := 0.0
		if sm.Seconds > 0 {
			throughput = float64(sm.Bytes) / sm.Seconds / (1 << 20)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.6f\t%d\t%.1f\n",
			s.Format, s.Direction, sm.Rows, sm.Seconds, sm.Bytes, throughput)
	}
}

// Save writes the JSON and text renderings of the report into dir
// with timestamped names and returns their paths.
func (rep *Report) Save(dir string) (jsonPath, textPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", errors.Wrap(err, errors.ErrorTypeFile, "failed to create results directory").
			WithDetail("dir", dir)
	}

	stamp := rep.StartedAt.Format("20060102-150405")
	jsonPath = filepath.Join(dir, fmt.Sprintf("skybench_%s.json", stamp))
	textPath = filepath.Join(dir, fmt.Sprintf("skybench_%s.txt", stamp))

	jf, err := os.Create(jsonPath)
	if err != nil {
		return "", "", errors.Wrap(err, errors.ErrorTypeFile, "failed to create report file")
	}
	if err := rep.WriteJSON(jf); err != nil {
		jf.Close()
		return "", "", err
	}
	if err := jf.Close(); err != nil {
		return "", "", errors.Wrap(err, errors.ErrorTypeFile, "failed to close report file")
	}

	tf, err := os.Create(textPath)
	if err != nil {
		return "", "", errors.Wrap(err, errors.ErrorTypeFile, "failed to create report file")
	}
	if err := rep.WriteText(tf); err != nil {
		tf.Close()
		return "", "", err
	}
	if err := tf.Close(); err != nil {
		return "", "", errors.Wrap(err, errors.ErrorTypeFile, "failed to close report file")
	}

	return jsonPath, textPath, nil
}
