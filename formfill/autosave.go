package formfill

import (
	"sync"
	"time"
)

// DefaultDebounce is the trailing window between the last edit to a
// question and its save call.
const DefaultDebounce = time.Second

// Saver persists one answer. Implementations must tolerate being
// called from multiple goroutines for different question ids.
type Saver interface {
	Save(questionID uint, value string) error
}

// SaverFunc adapts a function to the Saver interface.
type SaverFunc func(questionID uint, value string) error

func (f SaverFunc) Save(questionID uint, value string) error { return f(questionID, value) }

// Autosaver debounces saves per question id: each edit restarts that
// question's timer, so only the last value inside the window is sent.
// Edits to different questions never cancel each other. Saves for the
// same question are serialized: a save still in flight when the next
// timer fires delays that fire, so values persist in edit order and a
// stale value can never commit after a newer one. A failed save is
// recorded per question and not retried.
type Autosaver struct {
	saver Saver
	delay time.Duration

	mu      sync.Mutex
	timers  map[uint]*time.Timer
	pending map[uint]string
	errs    map[uint]error
	saving  map[uint]*sync.Mutex // per-question save serialization
	wg      sync.WaitGroup
}

func NewAutosaver(saver Saver, delay time.Duration) *Autosaver {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Autosaver{
		saver:   saver,
		delay:   delay,
		timers:  make(map[uint]*time.Timer),
		pending: make(map[uint]string),
		errs:    make(map[uint]error),
		saving:  make(map[uint]*sync.Mutex),
	}
}

// Set records the value and (re)starts the question's debounce timer.
func (a *Autosaver) Set(questionID uint, value string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if t, ok := a.timers[questionID]; ok && t.Stop() {
		// timer cancelled before firing, its pending work moves to the new one
		a.wg.Done()
	}
	a.pending[questionID] = value
	a.wg.Add(1)
	a.timers[questionID] = time.AfterFunc(a.delay, func() {
		defer a.wg.Done()
		a.fire(questionID)
	})
}

// questionLock returns the mutex serializing saves for one question.
func (a *Autosaver) questionLock(questionID uint) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	l, ok := a.saving[questionID]
	if !ok {
		l = &sync.Mutex{}
		a.saving[questionID] = l
	}
	return l
}

func (a *Autosaver) fire(questionID uint) {
	// held across the Save call: a fire for the same question waits for
	// the outstanding save, then picks up whatever is pending by then
	l := a.questionLock(questionID)
	l.Lock()
	defer l.Unlock()

	a.mu.Lock()
	v, ok := a.pending[questionID]
	delete(a.pending, questionID)
	delete(a.timers, questionID)
	a.mu.Unlock()
	if !ok {
		return
	}

	err := a.saver.Save(questionID, v)

	a.mu.Lock()
	if err != nil {
		a.errs[questionID] = err
	} else {
		delete(a.errs, questionID)
	}
	a.mu.Unlock()
}

// Flush settles every pending save synchronously and waits for timers
// already in flight. Used on submit and on session shutdown.
func (a *Autosaver) Flush() {
	a.mu.Lock()
	var due []uint
	for id, t := range a.timers {
		if t.Stop() {
			due = append(due, id)
			a.wg.Done()
		}
	}
	a.mu.Unlock()

	for _, id := range due {
		a.fire(id)
	}
	a.wg.Wait()
}

// Err returns the last save error for a question, nil after a
// subsequent successful save.
func (a *Autosaver) Err(questionID uint) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.errs[questionID]
}

// Errors returns a copy of all per-question save errors.
func (a *Autosaver) Errors() map[uint]error {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[uint]error, len(a.errs))
	for id, err := range a.errs {
		out[id] = err
	}
	return out
}

// Pending reports whether a save is queued for the question.
func (a *Autosaver) Pending(questionID uint) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.pending[questionID]
	return ok
}
