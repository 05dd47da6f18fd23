package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"sheetpress/adapters/spreadsheet"
	"sheetpress/adapters/sqlite"
	"sheetpress/internal/cleaner"
	"sheetpress/internal/config"
	"sheetpress/internal/consolidate"
	"sheetpress/internal/tui"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("[Batch] Loaded settings from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	var (
		dir       = flag.String("dir", "", "folder containing the spreadsheets to consolidate (skips the folder picker)")
		out       = flag.String("out", "", "output database path (default: consolidated_data.db inside the folder)")
		workers   = flag.Int("workers", cfg.Process.Workers, "number of files processed in parallel")
		zeroBlank = flag.Bool("zero-blank", cfg.Process.ZeroAsBlank, "treat numeric zeros as blanks when trimming trailing rows")
		noTUI     = flag.Bool("no-tui", false, "run headless; requires -dir")
	)
	flag.Parse()

	opts := cleaner.Options{ZeroAsBlank: *zeroBlank}

	if *noTUI || *dir != "" {
		if *dir == "" {
			fmt.Fprintln(os.Stderr, "-no-tui requires -dir")
			os.Exit(2)
		}
		if *out == "" {
			*out = filepath.Join(*dir, cfg.Output.Path)
		}
		if err := runHeadless(*dir, *out, *workers, opts); err != nil {
			log.Fatal("Consolidation failed:", err)
		}
		return
	}

	p := tea.NewProgram(tui.NewModel(*workers, opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runHeadless(dir, out string, workers int, opts cleaner.Options) error {
	sources, err := spreadsheet.Discover(dir)
	if err != nil {
		return err
	}
	log.Printf("[Batch] Found %d spreadsheet file(s) in %s", len(sources), dir)

	consolidator := consolidate.New(opts)
	schema, columnTypes, warnings, err := consolidator.EstablishSchema(sources)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		log.Printf("[Batch] Warning: %s: %s", w.File, w.Message)
	}

	ctx := context.Background()
	progress := func(done, total int, file string) {
		log.Printf("[Batch] %d/%d %s", done, total, file)
	}
	result, err := consolidator.RunParallel(ctx, sources, schema, columnTypes, workers, progress)
	if err != nil {
		return err
	}

	if err := sqlite.NewWriter().WriteFile(ctx, result.Frame, columnTypes, out); err != nil {
		return err
	}

	report := consolidate.BuildReport(result, columnTypes)
	fmt.Println(report.Markdown())
	log.Printf("[Batch] Wrote %s", out)
	return nil
}
