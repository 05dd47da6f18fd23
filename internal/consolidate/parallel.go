package consolidate

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"sheetpress/adapters/spreadsheet"
	"sheetpress/domain/table"
)

// RunParallel processes sources across a bounded worker pool. Workers share
// nothing mutable: each receives a source plus the frozen schema and type
// map, and writes only its own result slot. A failing file yields a warning
// in its slot and never cancels its siblings. Results are gathered in input
// order before concatenation, so output row order matches the sequential
// mode exactly.
func (c *Consolidator) RunParallel(ctx context.Context, sources []spreadsheet.Source, schema table.Schema, columnTypes map[string]table.ColumnType, workers int, progress Progress) (*Result, error) {
	if workers < 1 {
		workers = 1
	}
	startTime := time.Now()

	frameSlots := make([]*table.Frame, len(sources))
	warningSlots := make([]*Warning, len(sources))

	var completed atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			frameSlots[i], warningSlots[i] = c.processOne(src, schema, columnTypes)
			if progress != nil {
				progress(int(completed.Add(1)), len(sources), filepath.Base(src.Name()))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var (
		frames   []*table.Frame
		warnings []Warning
	)
	for i := range sources {
		if warningSlots[i] != nil {
			warnings = append(warnings, *warningSlots[i])
			continue
		}
		frames = append(frames, frameSlots[i])
	}

	return c.finish(frames, warnings, len(sources), startTime)
}
