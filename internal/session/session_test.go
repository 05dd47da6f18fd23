package session

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetpress/internal/consolidate"
)

// TestStoreCreateGet tests registration and lookup
func TestStoreCreateGet(t *testing.T) {
	store := NewStore()

	s := store.Create()
	require.NotEmpty(t, s.ID)

	got, ok := store.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = store.Get("unknown")
	assert.False(t, ok)
}

// TestStoreReset tests that a new upload wipes state but keeps the ID
func TestStoreReset(t *testing.T) {
	store := NewStore()
	s := store.Create()
	s.Schema = []string{"A", "B"}

	fresh := store.Reset(s.ID)
	assert.Equal(t, s.ID, fresh.ID)
	assert.Nil(t, fresh.Schema)

	got, ok := store.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, fresh, got)
}

// TestSessionProgress tests the locked progress accessors
func TestSessionProgress(t *testing.T) {
	s := &Session{ID: "x"}

	s.UpdateProgress(func(p *Progress) {
		p.Running = true
		p.Done = 3
		p.Total = 10
		p.File = "f.xlsx"
	})

	snap := s.Snapshot()
	assert.True(t, snap.Running)
	assert.Equal(t, 3, snap.Done)
	assert.Equal(t, 10, snap.Total)
	assert.Equal(t, "f.xlsx", snap.File)
}

// TestTryStartSingleWinner tests that concurrent process submissions claim
// the session exactly once
func TestTryStartSingleWinner(t *testing.T) {
	s := &Session{ID: "x"}

	const submitters = 16
	var wg sync.WaitGroup
	var wins atomic.Int32
	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.TryStart(5) {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	snap := s.Snapshot()
	assert.True(t, snap.Running)
	assert.Equal(t, 5, snap.Total)
	assert.Equal(t, 0, snap.Done)

	// Once the run finishes the session can be claimed again.
	s.SetOutcome(nil, nil, "")
	assert.True(t, s.TryStart(3))
}

// TestSessionSetOutcome tests that finishing always clears the busy flag
func TestSessionSetOutcome(t *testing.T) {
	s := &Session{ID: "x"}
	s.UpdateProgress(func(p *Progress) { p.Running = true })

	result := &consolidate.Result{Accepted: 1}
	report := &consolidate.Report{Rows: 5}
	s.SetOutcome(result, report, "")

	snap := s.Snapshot()
	assert.False(t, snap.Running)
	assert.Empty(t, snap.Err)

	gotResult, gotReport := s.Outcome()
	assert.Same(t, result, gotResult)
	assert.Same(t, report, gotReport)

	// Failure path records the message and still clears the flag.
	s.UpdateProgress(func(p *Progress) { p.Running = true })
	s.SetOutcome(nil, nil, "no valid data")
	snap = s.Snapshot()
	assert.False(t, snap.Running)
	assert.Equal(t, "no valid data", snap.Err)
}
