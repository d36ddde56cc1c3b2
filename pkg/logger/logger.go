// Package logger is a minimal leveled logging interface shared by the
// scheduling core and the daemon. The core logs and continues on
// per-trigger failures, so it only ever needs formatted level output.
package logger

import (
	"fmt"
	"log"
	"sync"
)

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Standard writes through a stdlib *log.Logger with level prefixes.
type Standard struct {
	l *log.Logger
}

func New(l *log.Logger) *Standard {
	if l == nil {
		l = log.Default()
	}
	return &Standard{l: l}
}

func (s *Standard) Infof(format string, args ...any) {
	s.l.Printf("[INFO] "+format, args...)
}

func (s *Standard) Warnf(format string, args ...any) {
	s.l.Printf("[WARN] "+format, args...)
}

func (s *Standard) Errorf(format string, args ...any) {
	s.l.Printf("[ERROR] "+format, args...)
}

type nop struct{}

func (nop) Infof(string, ...any)  {}
func (nop) Warnf(string, ...any)  {}
func (nop) Errorf(string, ...any) {}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return nop{}
}

// Capture records formatted messages for test assertions.
type Capture struct {
	mu     sync.Mutex
	Infos  []string
	Warns  []string
	Errors []string
}

func (c *Capture) Infof(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Infos = append(c.Infos, fmt.Sprintf(format, args...))
}

func (c *Capture) Warnf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Warns = append(c.Warns, fmt.Sprintf(format, args...))
}

func (c *Capture) Errorf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Errors = append(c.Errors, fmt.Sprintf(format, args...))
}

var (
	_ Logger = (*Standard)(nil)
	_ Logger = (*Capture)(nil)
)
