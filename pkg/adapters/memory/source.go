package memory

import (
	"fmt"
	"sync"

	"github.com/aretw0/vine/pkg/domain"
)

// Source implements ports.ScriptSource over a string held in memory.
// Every Write bumps a revision counter, which is the source's stamp.
// Safe for concurrent use.
type Source struct {
	name     string
	content  []byte
	exists   bool
	revision int64
	statErr  error
	mu       sync.RWMutex
}

// NewSource creates a source that starts out empty (missing).
func NewSource(name string) *Source {
	return &Source{name: name}
}

// NewSourceWith creates a source holding content.
func NewSourceWith(name, content string) *Source {
	s := NewSource(name)
	s.Write(content)
	return s
}

// Name returns the script name.
func (s *Source) Name() string { return s.name }

// Write replaces the script content.
func (s *Source) Write(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content = []byte(content)
	s.exists = true
	s.revision++
}

// Remove deletes the script. The revision keeps counting, so a later Write
// is always seen as a change.
func (s *Source) Remove() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content = nil
	s.exists = false
}

// FailStat makes Stat return err until called again with nil.
func (s *Source) FailStat(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statErr = err
}

// Stat returns the current revision.
func (s *Source) Stat() (domain.Stamp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.statErr != nil {
		return domain.Stamp{}, s.statErr
	}
	if !s.exists {
		return domain.Stamp{}, fmt.Errorf("%s: %w", s.name, domain.ErrScriptNotFound)
	}
	return domain.Stamp{Revision: s.revision}, nil
}

// Read returns a copy of the content and its revision.
func (s *Source) Read() ([]byte, domain.Stamp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.exists {
		return nil, domain.Stamp{}, fmt.Errorf("%s: %w", s.name, domain.ErrScriptNotFound)
	}
	return append([]byte(nil), s.content...), domain.Stamp{Revision: s.revision}, nil
}
