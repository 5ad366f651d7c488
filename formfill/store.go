package formfill

import "sync"

// Store is the state container behind one fill session: the loaded
// template, the flat answer map, the wizard position and the
// per-question flags the UI consumes. All methods are safe for
// concurrent use; the autosaver is owned by the store and flushed
// through Close.
type Store struct {
	mu       sync.Mutex
	template Template
	data     FormData
	index    int
	complete map[uint]bool // section ids that passed Next's gate
	invalid  map[uint]bool // question ids highlighted after a blocked move
	saver    *Autosaver
}

func NewStore(saver *Autosaver) *Store {
	return &Store{
		data:     make(FormData),
		complete: make(map[uint]bool),
		invalid:  make(map[uint]bool),
		saver:    saver,
	}
}

// Load replaces the template and rebuilds the answer map wholesale
// from the questions' attached answers. A load that lands after the
// user already edited fields overwrites those edits; callers must
// load before accepting input.
func (s *Store) Load(t Template) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.template = t
	s.data = make(FormData)
	for _, sec := range t.Sections {
		for _, g := range sec.Groups {
			for _, q := range g.Questions {
				if q.Answer != nil {
					s.data[q.ID] = *q.Answer
				}
			}
		}
	}
}

// SetField applies the value immediately and schedules the debounced
// save.
func (s *Store) SetField(questionID uint, value string) {
	s.mu.Lock()
	s.data[questionID] = value
	delete(s.invalid, questionID)
	s.mu.Unlock()

	if s.saver != nil {
		s.saver.Set(questionID, value)
	}
}

// FormData returns a copy of the answer map.
func (s *Store) FormData() FormData {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(FormData, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

func (s *Store) Template() Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.template
}

func (s *Store) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// CompletedSections returns the ids accumulated by successful Next
// calls. Ids are never removed once added.
func (s *Store) CompletedSections() []uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uint, 0, len(s.complete))
	for id := range s.complete {
		out = append(out, id)
	}
	return out
}

// InvalidQuestions returns the currently highlighted question ids.
func (s *Store) InvalidQuestions() []uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uint, 0, len(s.invalid))
	for id := range s.invalid {
		out = append(out, id)
	}
	return out
}

// SaveError exposes the autosaver's per-question error flag.
func (s *Store) SaveError(questionID uint) error {
	if s.saver == nil {
		return nil
	}
	return s.saver.Err(questionID)
}

// Close flushes pending saves. The store stays readable afterwards.
func (s *Store) Close() {
	if s.saver != nil {
		s.saver.Flush()
	}
}
