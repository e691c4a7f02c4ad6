// Package notify carries the success and error toasts raised by
// mutations to whatever surface is showing them.
package notify

import (
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Level classifies a toast.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Toast is one user-visible notification.
type Toast struct {
	Level   Level
	Message string
	At      time.Time
}

// Notifier receives mutation outcomes.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Nop discards every toast.
type Nop struct{}

func (Nop) Success(string) {}
func (Nop) Error(string)   {}

// Recorder keeps toasts in memory until they expire.
type Recorder struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	toasts []Toast
}

// NewRecorder builds a recorder whose toasts live for ttl. A zero ttl
// keeps them until drained.
func NewRecorder(ttl time.Duration) *Recorder {
	return &Recorder{ttl: ttl, now: time.Now}
}

func (r *Recorder) Success(message string) { r.add(LevelSuccess, message) }
func (r *Recorder) Error(message string)   { r.add(LevelError, message) }

func (r *Recorder) add(level Level, message string) {
	r.mu.Lock()
	r.toasts = append(r.toasts, Toast{Level: level, Message: message, At: r.now()})
	r.mu.Unlock()
}

// Active returns toasts that have not expired, oldest first.
func (r *Recorder) Active() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expireLocked()
	out := make([]Toast, len(r.toasts))
	copy(out, r.toasts)
	return out
}

// Drain returns the active toasts and forgets all of them.
func (r *Recorder) Drain() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expireLocked()
	out := r.toasts
	r.toasts = nil
	return out
}

func (r *Recorder) expireLocked() {
	if r.ttl <= 0 {
		return
	}
	cutoff := r.now().Add(-r.ttl)
	kept := r.toasts[:0]
	for _, t := range r.toasts {
		if t.At.After(cutoff) {
			kept = append(kept, t)
		}
	}
	r.toasts = kept
}

// LogNotifier writes toasts to a zap logger.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier wraps logger. A nil logger discards.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Success(message string) {
	n.logger.Info("mutation succeeded", zap.String("toast", message))
}

func (n *LogNotifier) Error(message string) {
	n.logger.Warn("mutation failed", zap.String("toast", message))
}

// Printer prints toasts as single lines, e.g. to stderr.
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewPrinter writes toasts to w.
func NewPrinter(w io.Writer) *Printer { return &Printer{w: w} }

func (p *Printer) Success(message string) { p.print("✓", message) }
func (p *Printer) Error(message string)   { p.print("✗", message) }

func (p *Printer) print(mark, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s %s\n", mark, message)
}

type multi []Notifier

// Multi fans toasts out to every non-nil notifier.
func Multi(notifiers ...Notifier) Notifier {
	out := make(multi, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (m multi) Success(message string) {
	for _, n := range m {
		n.Success(message)
	}
}

func (m multi) Error(message string) {
	for _, n := range m {
		n.Error(message)
	}
}
