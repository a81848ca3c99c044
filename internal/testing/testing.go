// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/deck/internal/nav"
	"github.com/desertthunder/deck/internal/shared"
)

// RecordingRenderer is a [nav.Renderer] that keeps a DOM-like view model and an ordered event log.
type RecordingRenderer struct {
	Active  map[int]bool // slide ordinal -> active flag
	Dots    []bool       // index 0 is slide 1
	Counter int
	PrevOK  bool
	NextOK  bool
	Events  []string
}

// NewRecordingRenderer creates a renderer for total slides with nothing active.
func NewRecordingRenderer(total int) *RecordingRenderer {
	return &RecordingRenderer{Active: make(map[int]bool, total), Dots: make([]bool, total)}
}

func (r *RecordingRenderer) Deactivate() {
	for k := range r.Active {
		r.Active[k] = false
	}
	r.Events = append(r.Events, "deactivate")
}

func (r *RecordingRenderer) Render(s nav.State) {
	r.Active[s.Current] = true
	r.Events = append(r.Events, fmt.Sprintf("render:%d", s.Current))
}

func (r *RecordingRenderer) RenderHighlight(s nav.State) {
	if len(r.Dots) != s.Total {
		r.Dots = make([]bool, s.Total)
	}
	for i := range r.Dots {
		r.Dots[i] = i+1 == s.Current
	}
	r.Counter = s.Current
	r.PrevOK = s.HasPrevious()
	r.NextOK = s.HasNext()
	r.Events = append(r.Events, fmt.Sprintf("highlight:%d", s.Current))
}

// ActiveSlides returns the ordinals currently flagged active.
func (r *RecordingRenderer) ActiveSlides() []int {
	var out []int
	for n := 1; n <= len(r.Dots); n++ {
		if r.Active[n] {
			out = append(out, n)
		}
	}
	return out
}

// LitDots returns the ordinals whose dot is highlighted.
func (r *RecordingRenderer) LitDots() []int {
	var out []int
	for i, lit := range r.Dots {
		if lit {
			out = append(out, i+1)
		}
	}
	return out
}

// Reset clears the event log.
func (r *RecordingRenderer) Reset() {
	r.Events = nil
}

// RecordingListener collects activation notifications, optionally into a shared event log.
type RecordingListener struct {
	Activations []int
	Log         *[]string
}

func (l *RecordingListener) Activated(n int) {
	l.Activations = append(l.Activations, n)
	if l.Log != nil {
		*l.Log = append(*l.Log, fmt.Sprintf("notify:%d", n))
	}
}

// MemoryProgressStore is an in-memory [nav.ProgressStore].
type MemoryProgressStore struct {
	mu      sync.Mutex
	values  map[string]int
	LoadErr error
	SaveErr error
}

func NewMemoryProgressStore() *MemoryProgressStore {
	return &MemoryProgressStore{values: make(map[string]int)}
}

func (m *MemoryProgressStore) Load(ctx context.Context, key string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return 0, m.LoadErr
	}
	v, ok := m.values[key]
	if !ok {
		return 0, shared.ErrProgressNotFound
	}
	return v, nil
}

func (m *MemoryProgressStore) Save(ctx context.Context, key string, slide int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.values[key] = slide
	return nil
}

// Value returns the saved value for key.
func (m *MemoryProgressStore) Value(key string) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
