// Package session holds the web mode's per-browser state between steps:
// uploaded file bytes, the established schema, the user's type choices, and
// the finished result. Nothing here survives a process restart, and a new
// upload fully resets the state.
package session

import (
	"sync"

	"github.com/google/uuid"

	"sheetpress/adapters/spreadsheet"
	"sheetpress/domain/table"
	"sheetpress/internal/consolidate"
)

// Progress tracks a running consolidation for the polling endpoint.
type Progress struct {
	Running bool
	Done    int
	Total   int
	File    string
	Err     string
}

// Session is one browser's consolidation state. Files, Schema and Types are
// frozen before a run starts; Progress, Result and Report are shared with
// the processing goroutine and must go through the accessors below.
type Session struct {
	ID       string
	Files    []spreadsheet.BytesSource
	Schema   table.Schema
	Types    map[string]table.ColumnType
	Warnings []consolidate.Warning // recorded during schema detection

	mu       sync.Mutex
	progress Progress
	Result   *consolidate.Result
	Report   *consolidate.Report
}

// TryStart atomically claims the session for a run: it flips the busy flag
// and resets the counters, or reports false if a run is already in flight.
// Double-submitted process requests race on this; exactly one may win.
func (s *Session) TryStart(total int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.progress.Running {
		return false
	}
	s.progress = Progress{Running: true, Total: total}
	return true
}

// UpdateProgress mutates the progress under the session lock.
func (s *Session) UpdateProgress(fn func(*Progress)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.progress)
}

// Snapshot returns a copy of the current progress.
func (s *Session) Snapshot() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// SetOutcome records the finished run and clears the busy flag. It is
// called on every exit path of the processing goroutine, success or not.
func (s *Session) SetOutcome(result *consolidate.Result, report *consolidate.Report, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Result = result
	s.Report = report
	s.progress.Running = false
	s.progress.Err = errMsg
}

// Outcome returns the recorded result and report, if any.
func (s *Session) Outcome() (*consolidate.Result, *consolidate.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Result, s.Report
}

// Sources adapts the uploaded files to the pipeline's Source interface.
func (s *Session) Sources() []spreadsheet.Source {
	sources := make([]spreadsheet.Source, len(s.Files))
	for i, f := range s.Files {
		sources[i] = f
	}
	return sources
}

// Store is an in-memory session registry keyed by cookie ID.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create registers a fresh session.
func (st *Store) Create() *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s := &Session{ID: uuid.NewString()}
	st.sessions[s.ID] = s
	return s
}

// Get looks up a session by ID.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Reset replaces the session's state in place, keeping its ID so the
// browser cookie stays valid. Called on every new upload.
func (st *Store) Reset(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s := &Session{ID: id}
	st.sessions[id] = s
	return s
}
