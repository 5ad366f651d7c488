package formfill

import (
	"fmt"
	"strings"
)

// IncompleteError lists the required questions blocking a Next or
// Submit. The labels end up in the client's toast.
type IncompleteError struct {
	SectionID uint
	Unmet     []Question
}

func (e *IncompleteError) Error() string {
	labels := make([]string, 0, len(e.Unmet))
	for _, q := range e.Unmet {
		l := q.Label
		if l == "" {
			l = q.Title
		}
		labels = append(labels, l)
	}
	return fmt.Sprintf("required fields missing: %s", strings.Join(labels, ", "))
}

// Next advances to the following section if the current one is
// complete. On success the current section id joins the completed set;
// at the last section the index stays put (submit is its own action).
// On failure the unmet questions are highlighted and returned.
func (s *Store) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index >= len(s.template.Sections) {
		return nil
	}
	sec := s.template.Sections[s.index]
	p := ComputeSection(sec, s.data)
	if !p.Complete {
		for _, q := range p.Unmet {
			s.invalid[q.ID] = true
		}
		return &IncompleteError{SectionID: sec.ID, Unmet: p.Unmet}
	}

	s.complete[sec.ID] = true
	if s.index < len(s.template.Sections)-1 {
		s.index++
	}
	return nil
}

// Previous steps back unconditionally unless already at the first
// section.
func (s *Store) Previous() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index > 0 {
		s.index--
	}
}

// Jump sets the index regardless of completion state and clears any
// highlighted questions. Out-of-range targets are ignored.
func (s *Store) Jump(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.template.Sections) {
		return
	}
	s.index = i
	s.invalid = make(map[uint]bool)
}

// Submit checks that every section independently passes the
// completeness check. It does not persist anything itself; on nil the
// caller flushes the autosaver and runs the terminal submit mutation.
func (s *Store) Submit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sec := range s.template.Sections {
		p := ComputeSection(sec, s.data)
		if !p.Complete {
			for _, q := range p.Unmet {
				s.invalid[q.ID] = true
			}
			return &IncompleteError{SectionID: sec.ID, Unmet: p.Unmet}
		}
		s.complete[sec.ID] = true
	}
	return nil
}
