package estimator

import (
	"context"
	"fmt"
	"io"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
)

// Missing is rendered for unavailable or infeasible values.
const Missing = "--"

// TableOptions controls table rendering.
type TableOptions struct {
	ShowParameters bool
	ShowTildeO     bool
	Precision      int
}

// DefaultTableOptions shows parameters with one decimal.
func DefaultTableOptions() TableOptions {
	return TableOptions{ShowParameters: true, Precision: 1}
}

// WriteTable renders r with one row per algorithm.
func (r Report) WriteTable(w io.Writer, opts TableOptions) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := []string{"ALGORITHM", "TIME", "MEMORY"}
	if opts.ShowParameters {
		header = append(header, "PARAMETERS")
	}
	if opts.ShowTildeO {
		header = append(header, "TILDE-O TIME", "TILDE-O MEMORY")
		if opts.ShowParameters {
			header = append(header, "TILDE-O PARAMETERS")
		}
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, a := range r.Algorithms {
		row := []string{a.Name}
		row = append(row, entryColumns(a.Estimate, opts)...)
		if opts.ShowTildeO {
			row = append(row, entryColumns(a.TildeO, opts)...)
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func entryColumns(e *Entry, opts TableOptions) []string {
	cols := []string{Missing, Missing}
	if opts.ShowParameters {
		cols = append(cols, Missing)
	}
	if e == nil || e.Error != "" {
		return cols
	}
	cols[0] = FormatBits(float64(e.Time), opts.Precision)
	cols[1] = FormatBits(float64(e.Memory), opts.Precision)
	if opts.ShowParameters && e.Time.Finite() {
		cols[2] = FormatParameters(e.Parameters)
	}
	return cols
}

// FormatBits formats a log2 complexity, Missing when not finite.
func FormatBits(v float64, precision int) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return Missing
	}
	return strconv.FormatFloat(v, 'f', max(precision, 0), 64)
}

// FormatParameters renders parameters sorted by name. Integral values are
// printed without decimals.
func FormatParameters(params map[string]float64) string {
	if len(params) == 0 {
		return "{}"
	}
	keys := slices.Sorted(maps.Keys(params))
	parts := make([]string, len(keys))
	for i, k := range keys {
		v := params[k]
		if v == math.Trunc(v) {
			parts[i] = k + ": " + strconv.FormatInt(int64(v), 10)
		} else {
			parts[i] = k + ": " + strconv.FormatFloat(v, 'f', 3, 64)
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Table estimates every attack and renders the result.
func (e *Estimator[P]) Table(ctx context.Context, w io.Writer, opts TableOptions) error {
	report, err := e.Estimate(ctx, ReportOptions{TildeO: opts.ShowTildeO})
	if err != nil {
		return err
	}
	return report.WriteTable(w, opts)
}
