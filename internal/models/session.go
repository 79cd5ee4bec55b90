package models

import (
	"sort"
	"time"
)

// AuditStatus tracks the single in-flight audit call of a session.
type AuditStatus string

const (
	AuditStatusIdle    AuditStatus = "IDLE"
	AuditStatusRunning AuditStatus = "RUNNING"
	AuditStatusFailed  AuditStatus = "FAILED"
)

// RenameSet tags blocks awaiting a first rename, keyed by path string. It is
// presentation bookkeeping and never part of an exported report.
type RenameSet map[string]struct{}

// Mark tags path.
func (s RenameSet) Mark(path Path) {
	s[path.String()] = struct{}{}
}

// Clear removes the tag on path.
func (s RenameSet) Clear(path Path) {
	delete(s, path.String())
}

// Has reports whether path is tagged.
func (s RenameSet) Has(path Path) bool {
	_, ok := s[path.String()]
	return ok
}

// Prune drops tags on prefix and everything below it.
func (s RenameSet) Prune(prefix Path) {
	for key := range s {
		path, err := ParsePath(key)
		if err != nil || path.HasPrefix(prefix) {
			delete(s, key)
		}
	}
}

// RemoveChild updates tags after child index of parent was removed: tags in
// the removed subtree are dropped and tags under later siblings move down one.
func (s RenameSet) RemoveChild(parent Path, index int) {
	s.Prune(parent.Child(index))
	depth := len(parent)
	moved := RenameSet{}
	for key := range s {
		path, err := ParsePath(key)
		if err != nil {
			delete(s, key)
			continue
		}
		if len(path) <= depth || !path.HasPrefix(parent) || path[depth] < index {
			continue
		}
		delete(s, key)
		shifted := append(Path{}, path...)
		shifted[depth]--
		moved.Mark(shifted)
	}
	for key := range moved {
		s[key] = struct{}{}
	}
}

// Paths lists tagged paths in stable order.
func (s RenameSet) Paths() []string {
	out := make([]string, 0, len(s))
	for key := range s {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func (s RenameSet) clone() RenameSet {
	cp := make(RenameSet, len(s))
	for key := range s {
		cp[key] = struct{}{}
	}
	return cp
}

// Session is one user's in-memory editing state.
type Session struct {
	ID          string
	Transcript  Transcript
	Reports     []*Report
	Renames     []RenameSet
	AuditStatus AuditStatus
	AuditError  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ReplaceReports swaps the whole report list and resets rename bookkeeping.
func (s *Session) ReplaceReports(reports []*Report) {
	if reports == nil {
		reports = []*Report{}
	}
	s.Reports = reports
	s.Renames = make([]RenameSet, len(reports))
	for i := range s.Renames {
		s.Renames[i] = RenameSet{}
	}
}

// Clone copies the session. Reports are immutable values and stay shared.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Transcript = s.Transcript.Clone()
	cp.Reports = make([]*Report, len(s.Reports))
	copy(cp.Reports, s.Reports)
	cp.Renames = make([]RenameSet, len(s.Renames))
	for i, set := range s.Renames {
		cp.Renames[i] = set.clone()
	}
	return &cp
}
