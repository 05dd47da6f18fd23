package consolidate

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/montanaflynn/stats"

	"sheetpress/domain/table"
)

// ColumnProfile summarizes one output column. Numeric columns additionally
// carry min/max/mean/median over their non-missing values.
type ColumnProfile struct {
	Name     string
	Type     table.ColumnType
	Missing  int
	HasStats bool
	Min      float64
	Max      float64
	Mean     float64
	Median   float64
}

// Report is the user-facing summary of a finished run.
type Report struct {
	TotalFiles int
	Accepted   int
	Skipped    int
	Rows       int
	Elapsed    time.Duration
	Warnings   []Warning
	Columns    []ColumnProfile
}

// BuildReport profiles the consolidated frame and packages the run counters.
func BuildReport(result *Result, columnTypes map[string]table.ColumnType) *Report {
	report := &Report{
		TotalFiles: result.Accepted + result.Skipped,
		Accepted:   result.Accepted,
		Skipped:    result.Skipped,
		Rows:       result.Frame.NumRows(),
		Elapsed:    result.Elapsed,
		Warnings:   result.Warnings,
	}

	for j, name := range result.Frame.Columns {
		profile := ColumnProfile{Name: name, Type: table.ColumnTypeText}
		if t, ok := columnTypes[name]; ok {
			profile.Type = t
		}

		var values []float64
		for _, row := range result.Frame.Rows {
			cell := row[j]
			if cell.IsMissing {
				profile.Missing++
			} else if cell.NumericVal != nil {
				values = append(values, *cell.NumericVal)
			}
		}

		if profile.Type == table.ColumnTypeNumeric && len(values) > 0 {
			// stats errors only on empty input, which is excluded above.
			profile.Min, _ = stats.Min(values)
			profile.Max, _ = stats.Max(values)
			profile.Mean, _ = stats.Mean(values)
			profile.Median, _ = stats.Median(values)
			profile.HasStats = true
		}

		report.Columns = append(report.Columns, profile)
	}

	return report
}

// Markdown renders the report as a Markdown document.
func (r *Report) Markdown() string {
	var b strings.Builder

	b.WriteString("## Consolidation report\n\n")
	fmt.Fprintf(&b, "- **Files**: %d processed, %d accepted, %d skipped\n", r.TotalFiles, r.Accepted, r.Skipped)
	fmt.Fprintf(&b, "- **Rows**: %d\n", r.Rows)
	fmt.Fprintf(&b, "- **Elapsed**: %s\n", r.Elapsed.Round(time.Millisecond))

	if len(r.Warnings) > 0 {
		b.WriteString("\n### Skipped files\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- `%s` (%s): %s\n", w.File, w.Code, w.Message)
		}
	}

	b.WriteString("\n### Columns\n\n")
	b.WriteString("| Column | Type | Missing | Min | Max | Mean | Median |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, col := range r.Columns {
		// Header names may contain embedded newlines ("Prix unitaire\nen
		// euros HT"); flatten them so the table stays a table.
		col.Name = strings.Join(strings.Fields(col.Name), " ")
		if col.HasStats {
			fmt.Fprintf(&b, "| %s | %s | %d | %.4g | %.4g | %.4g | %.4g |\n",
				col.Name, col.Type, col.Missing, col.Min, col.Max, col.Mean, col.Median)
		} else {
			fmt.Fprintf(&b, "| %s | %s | %d | - | - | - | - |\n", col.Name, col.Type, col.Missing)
		}
	}

	return b.String()
}

// HTML renders the Markdown report to HTML for the web UI.
func (r *Report) HTML() template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	return template.HTML(markdown.ToHTML([]byte(r.Markdown()), p, renderer))
}

// Summary is a one-line human summary, used by the batch mode completion
// screen and the headless CLI.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d rows from %d/%d files in %s",
		r.Rows, r.Accepted, r.TotalFiles, r.Elapsed.Round(time.Millisecond))
}
