// Package consolidate drives the run: establish a reference schema from the
// first valid file, validate and clean every file against it, and
// concatenate the accepted frames into the consolidated table.
package consolidate

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"sheetpress/adapters/spreadsheet"
	"sheetpress/domain/table"
	"sheetpress/internal"
	"sheetpress/internal/cleaner"
	"sheetpress/internal/errors"
)

// Warning records a skipped file and why. Warnings never abort a run.
type Warning struct {
	File    string
	Code    string
	Message string
}

// Progress reports per-file completion during a sequential run.
type Progress func(done, total int, file string)

// Result is the outcome of a successful run.
type Result struct {
	Frame    *table.Frame
	Warnings []Warning
	Accepted int
	Skipped  int
	Elapsed  time.Duration
}

// Consolidator owns the run configuration. It holds no per-run state; every
// run receives its schema and type map explicitly, so a new set of input
// files starts from a clean slate.
type Consolidator struct {
	cleaner *cleaner.Cleaner
	logger  *internal.Logger
}

// New creates a consolidator with the given cleaning options.
func New(opts cleaner.Options) *Consolidator {
	return &Consolidator{
		cleaner: cleaner.New(opts),
		logger:  internal.DefaultLogger,
	}
}

// EstablishSchema scans sources in order and locks the column layout of the
// first one that reads successfully and yields at least one column. It
// returns the schema, keyword-inferred default types for user confirmation,
// and a warning per file tried before the schema holder. If no source can
// establish a schema the run is over before it starts: NO_VALID_DATA.
func (c *Consolidator) EstablishSchema(sources []spreadsheet.Source) (table.Schema, map[string]table.ColumnType, []Warning, error) {
	var warnings []Warning

	for _, src := range sources {
		raw, err := src.Open()
		if err != nil {
			c.logger.Warn("schema detection: skipping %s: %v", src.Name(), err)
			warnings = append(warnings, warningFromError(src.Name(), err))
			continue
		}
		if raw.Empty() {
			warnings = append(warnings, Warning{
				File:    filepath.Base(src.Name()),
				Code:    errors.CodeFileUnreadable,
				Message: "file is empty, cannot use it for column detection",
			})
			continue
		}

		schema := table.NewSchema(raw.Columns)
		c.logger.Info("schema established from %s (%d columns)", filepath.Base(src.Name()), len(schema))
		return schema, table.InferColumnTypes(schema), warnings, nil
	}

	return nil, nil, warnings, errors.NoValidData()
}

// Run processes every source sequentially against the frozen schema and
// type map, reporting progress after each file. Unreadable files and schema
// mismatches are skipped with a warning; if nothing survives, the run fails
// with NO_VALID_DATA and no output must be produced.
func (c *Consolidator) Run(ctx context.Context, sources []spreadsheet.Source, schema table.Schema, columnTypes map[string]table.ColumnType, progress Progress) (*Result, error) {
	startTime := time.Now()

	var (
		frames   []*table.Frame
		warnings []Warning
	)
	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "run interrupted")
		}

		frame, warning := c.processOne(src, schema, columnTypes)
		if warning != nil {
			warnings = append(warnings, *warning)
		} else {
			frames = append(frames, frame)
		}
		if progress != nil {
			progress(i+1, len(sources), filepath.Base(src.Name()))
		}
	}

	return c.finish(frames, warnings, len(sources), startTime)
}

// processOne loads, validates and cleans a single source. Exactly one of
// frame and warning is non-nil.
func (c *Consolidator) processOne(src spreadsheet.Source, schema table.Schema, columnTypes map[string]table.ColumnType) (*table.Frame, *Warning) {
	raw, err := src.Open()
	if err != nil {
		c.logger.Warn("skipping %s: %v", src.Name(), err)
		w := warningFromError(src.Name(), err)
		return nil, &w
	}

	if !schema.Matches(raw.Columns) {
		c.logger.Warn("skipping %s: column mismatch", src.Name())
		return nil, &Warning{
			File:    filepath.Base(src.Name()),
			Code:    errors.CodeSchemaMismatch,
			Message: fmt.Sprintf("column names/order mismatch: expected %v, found %v", []string(schema), raw.Columns),
		}
	}

	return c.cleaner.Clean(raw, src.Name(), columnTypes), nil
}

// finish concatenates accepted frames and assembles the result.
func (c *Consolidator) finish(frames []*table.Frame, warnings []Warning, total int, startTime time.Time) (*Result, error) {
	if len(frames) == 0 {
		return nil, errors.NoValidData()
	}

	result := &Result{
		Frame:    table.Concat(frames),
		Warnings: warnings,
		Accepted: len(frames),
		Skipped:  total - len(frames),
		Elapsed:  time.Since(startTime),
	}
	c.logger.Info("consolidated %d/%d files into %d rows in %s",
		result.Accepted, total, result.Frame.NumRows(), result.Elapsed.Round(time.Millisecond))
	return result, nil
}

func warningFromError(name string, err error) Warning {
	return Warning{
		File:    filepath.Base(name),
		Code:    errors.GetCode(err),
		Message: err.Error(),
	}
}
