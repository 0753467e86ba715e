package session

import (
	"time"

	"github.com/splotview/splotview/src/logging"
)

// HistoryLimit bounds the undo stack; the oldest entry is evicted first.
const HistoryLimit = 50

type historyEntry struct {
	state *State
	Desc  string
	Time  time.Time
}

// HistoryInfo describes one history entry for display.
type HistoryInfo struct {
	Desc string
	Time time.Time
}

// UndoManager keeps a bounded history of whole-session snapshots. The
// restoring guard ensures no snapshot is ever pushed while a restore is in
// progress, so an undo cannot pollute its own history.
type UndoManager struct {
	session   *Session
	undo      []historyEntry
	redo      []historyEntry
	restoring guard
}

func newUndoManager(s *Session) *UndoManager {
	return &UndoManager{session: s}
}

// Push snapshots the session before a mutation. No-op during a restore.
func (m *UndoManager) Push(desc string) {
	if m.restoring.Active() {
		return
	}
	st, err := m.session.captureState()
	if err != nil {
		logging.Errorf("history: snapshot failed: %v", err)
		return
	}
	m.undo = append(m.undo, historyEntry{state: st, Desc: desc, Time: time.Now()})
	m.redo = nil
	if len(m.undo) > HistoryLimit {
		m.undo = m.undo[1:]
	}
}

// Undo restores the most recent snapshot, moving the current state onto the
// redo stack. Silent no-op on an empty stack.
func (m *UndoManager) Undo() {
	if len(m.undo) == 0 {
		return
	}
	m.restoring.Do(func() {
		if cur, err := m.session.captureState(); err == nil {
			m.redo = append(m.redo, historyEntry{state: cur, Desc: "Undo", Time: time.Now()})
		}
		last := m.undo[len(m.undo)-1]
		m.undo = m.undo[:len(m.undo)-1]
		if err := m.session.restoreState(last.state); err != nil {
			logging.Errorf("history: undo restore failed: %v", err)
		}
	})
}

// Redo is the symmetric counterpart of Undo.
func (m *UndoManager) Redo() {
	if len(m.redo) == 0 {
		return
	}
	m.restoring.Do(func() {
		if cur, err := m.session.captureState(); err == nil {
			m.undo = append(m.undo, historyEntry{state: cur, Desc: "Redo", Time: time.Now()})
		}
		next := m.redo[len(m.redo)-1]
		m.redo = m.redo[:len(m.redo)-1]
		if err := m.session.restoreState(next.state); err != nil {
			logging.Errorf("history: redo restore failed: %v", err)
		}
	})
}

// Jump restores an arbitrary undo-stack entry without mutating either stack;
// used for history browsing and not itself undoable.
func (m *UndoManager) Jump(index int) {
	if index < 0 || index >= len(m.undo) {
		return
	}
	m.restoring.Do(func() {
		if err := m.session.restoreState(m.undo[index].state); err != nil {
			logging.Errorf("history: jump restore failed: %v", err)
		}
	})
}

// Entries lists the undo stack oldest-first for history display.
func (m *UndoManager) Entries() []HistoryInfo {
	out := make([]HistoryInfo, len(m.undo))
	for i, e := range m.undo {
		out[i] = HistoryInfo{Desc: e.Desc, Time: e.Time}
	}
	return out
}

// CanUndo reports whether the undo stack is non-empty.
func (m *UndoManager) CanUndo() bool { return len(m.undo) > 0 }

// CanRedo reports whether the redo stack is non-empty.
func (m *UndoManager) CanRedo() bool { return len(m.redo) > 0 }
