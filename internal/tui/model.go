package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sheetpress/adapters/spreadsheet"
	"sheetpress/adapters/sqlite"
	"sheetpress/domain/table"
	"sheetpress/internal/cleaner"
	"sheetpress/internal/consolidate"
)

// OutputFileName is where the consolidated database lands, inside the
// folder the user picked.
const OutputFileName = "consolidated_data.db"

type state int

const (
	statePickFolder state = iota
	stateConfirm
	stateProcessing
	stateComplete
	stateError
)

type Model struct {
	state        state
	filepicker   filepicker.Model
	folder       string
	sources      []spreadsheet.Source
	schema       table.Schema
	columnTypes  map[string]table.ColumnType
	scanWarnings []consolidate.Warning
	consolidator *consolidate.Consolidator
	workers      int
	outPath      string
	report       *consolidate.Report
	err          error
	width        int
	height       int
	progress     progress.Model
	done         int
	total        int
	currentFile  string
	progressChan chan progressUpdate
	resultChan   chan runDoneMsg
}

type progressUpdate struct {
	done  int
	total int
	file  string
}

type folderScannedMsg struct {
	sources     []spreadsheet.Source
	schema      table.Schema
	columnTypes map[string]table.ColumnType
	warnings    []consolidate.Warning
	err         error
}

type runDoneMsg struct {
	report  *consolidate.Report
	outPath string
	err     error
}

type progressMsg progressUpdate

type waitForProgressMsg struct{}

func NewModel(workers int, opts cleaner.Options) Model {
	fp := filepicker.New()
	fp.DirAllowed = true
	fp.FileAllowed = false
	fp.CurrentDirectory, _ = os.Getwd()

	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(lipgloss.Color("#2BB673"))
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BD5A0"))
	fp.Styles.File = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5E7EB"))
	fp.Styles.Permission = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(lipgloss.Color("#2BB673")).Bold(true)

	prog := progress.New(progress.WithGradient("#2BB673", "#8BD5A0"))

	return Model{
		state:        statePickFolder,
		filepicker:   fp,
		consolidator: consolidate.New(opts),
		workers:      workers,
		progress:     prog,
	}
}

func (m Model) Init() tea.Cmd {
	return m.filepicker.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		height := msg.Height - 10
		if height < 5 {
			height = 5
		}
		m.filepicker.SetHeight(height)

		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case statePickFolder:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			}

		case stateConfirm:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "esc", "backspace":
				m.state = statePickFolder
				return m, nil
			case "enter":
				m.state = stateProcessing
				return m.startRun()
			}

		case stateComplete, stateError:
			switch msg.String() {
			case "ctrl+c", "q", "enter", "esc":
				return m, tea.Quit
			}
		}

	case folderScannedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.sources = msg.sources
		m.schema = msg.schema
		m.columnTypes = msg.columnTypes
		m.scanWarnings = msg.warnings
		m.state = stateConfirm
		return m, nil

	case runDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.report = msg.report
		m.outPath = msg.outPath
		m.state = stateComplete
		return m, nil

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case progressMsg:
		if m.state == stateProcessing {
			m.done = msg.done
			m.total = msg.total
			m.currentFile = msg.file
			cmd := m.progress.SetPercent(float64(msg.done) / float64(msg.total))
			return m, tea.Batch(cmd, waitForProgress(m.progressChan, m.resultChan))
		}
		return m, nil

	case waitForProgressMsg:
		return m, waitForProgress(m.progressChan, m.resultChan)
	}

	if m.state == statePickFolder {
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)

		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			m.folder = path
			return m, m.scanFolder(path)
		}

		return m, cmd
	}

	return m, nil
}

func (m Model) scanFolder(path string) tea.Cmd {
	return func() tea.Msg {
		sources, err := spreadsheet.Discover(path)
		if err != nil {
			return folderScannedMsg{err: err}
		}
		schema, columnTypes, warnings, err := m.consolidator.EstablishSchema(sources)
		return folderScannedMsg{
			sources:     sources,
			schema:      schema,
			columnTypes: columnTypes,
			warnings:    warnings,
			err:         err,
		}
	}
}

func (m Model) startRun() (Model, tea.Cmd) {
	m.progressChan = make(chan progressUpdate, 100)
	m.resultChan = make(chan runDoneMsg, 1)
	m.done = 0
	m.total = len(m.sources)

	progressChan := m.progressChan
	resultChan := m.resultChan
	sources := m.sources
	schema := m.schema
	columnTypes := m.columnTypes
	workers := m.workers
	outPath := filepath.Join(m.folder, OutputFileName)
	consolidator := m.consolidator

	cmd := tea.Batch(
		func() tea.Msg {
			go func() {
				ctx := context.Background()
				cb := func(done, total int, file string) {
					progressChan <- progressUpdate{done: done, total: total, file: file}
				}

				result, err := consolidator.RunParallel(ctx, sources, schema, columnTypes, workers, cb)
				var report *consolidate.Report
				if err == nil {
					report = consolidate.BuildReport(result, columnTypes)
					err = sqlite.NewWriter().WriteFile(ctx, result.Frame, columnTypes, outPath)
				}

				resultChan <- runDoneMsg{report: report, outPath: outPath, err: err}
				close(progressChan)
				close(resultChan)
			}()

			return waitForProgressMsg{}
		},
		waitForProgress(m.progressChan, m.resultChan),
		m.progress.Init(),
	)

	return m, cmd
}

func waitForProgress(progressChan chan progressUpdate, resultChan chan runDoneMsg) tea.Cmd {
	return func() tea.Msg {
		if progressChan == nil {
			return nil
		}

		p, ok := <-progressChan
		if !ok {
			res, ok := <-resultChan
			if ok {
				return res
			}
			return nil
		}

		return progressMsg(p)
	}
}

func (m Model) View() string {
	switch m.state {
	case statePickFolder:
		return m.viewPickFolder()
	case stateConfirm:
		return m.viewConfirm()
	case stateProcessing:
		return m.viewProcessing()
	case stateComplete:
		return m.viewComplete()
	case stateError:
		return m.viewError()
	}
	return ""
}

func (m Model) viewPickFolder() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Sheetpress - Spreadsheet Consolidator"))
	s.WriteString("\n")
	s.WriteString(subtitleStyle.Render("Pick the folder containing the spreadsheets to merge"))
	s.WriteString("\n\n")
	s.WriteString(m.filepicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("enter: select folder • q: quit"))

	return s.String()
}

func (m Model) viewConfirm() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Ready to Consolidate"))
	s.WriteString("\n")
	s.WriteString(subtitleStyle.Render(fmt.Sprintf("Folder: %s", m.folder)))
	s.WriteString("\n\n")

	s.WriteString(fmt.Sprintf("%d spreadsheet file(s) found:\n", len(m.sources)))
	const maxListed = 10
	for i, src := range m.sources {
		if i == maxListed {
			s.WriteString(fileStyle.Render(fmt.Sprintf("  … and %d more\n", len(m.sources)-maxListed)))
			break
		}
		s.WriteString(fileStyle.Render(fmt.Sprintf("  %s\n", filepath.Base(src.Name()))))
	}

	s.WriteString("\nColumns (from the first valid file):\n")
	for _, col := range m.schema {
		name := strings.Join(strings.Fields(col), " ")
		s.WriteString(fmt.Sprintf("  %s %s\n", fileStyle.Render(name), typeStyle.Render("["+string(m.columnTypes[col])+"]")))
	}

	for _, w := range m.scanWarnings {
		s.WriteString(warnStyle.Render(fmt.Sprintf("\n! %s: %s", w.File, w.Message)))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("enter: consolidate • esc: pick another folder • q: quit"))

	return boxStyle.Render(s.String())
}

func (m Model) viewProcessing() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Consolidating..."))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%d/%d files", m.done, m.total))
	if m.currentFile != "" {
		s.WriteString(subtitleStyle.Render("  " + m.currentFile))
	}
	s.WriteString("\n\n")
	s.WriteString(m.progress.View())

	return boxStyle.Render(s.String())
}

func (m Model) viewComplete() string {
	var s strings.Builder

	s.WriteString(successStyle.Render("Consolidation Complete"))
	s.WriteString("\n\n")

	maxPathLen := m.width - 20
	if maxPathLen < 30 {
		maxPathLen = 30
	}
	outPath := m.outPath
	if len(outPath) > maxPathLen {
		outPath = "..." + outPath[len(outPath)-maxPathLen+3:]
	}
	s.WriteString(fmt.Sprintf("Output: %s\n\n", outPath))

	if m.report != nil {
		s.WriteString(m.report.Summary())
		s.WriteString("\n")
		for _, w := range m.report.Warnings {
			s.WriteString(warnStyle.Render(fmt.Sprintf("! %s: %s", w.File, w.Message)))
			s.WriteString("\n")
		}
	}

	s.WriteString(helpStyle.Render("enter/q: exit"))

	return boxStyle.Render(s.String())
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(errorStyle.Render("Error"))
	s.WriteString("\n\n")
	if m.err != nil {
		s.WriteString(m.err.Error())
		s.WriteString("\n\n")
	}
	s.WriteString(helpStyle.Render("enter/q: exit"))

	return boxStyle.Render(s.String())
}
