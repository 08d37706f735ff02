// Package diag provides the structured-logging seam used throughout
// parattice: a narrow Logger interface backed by go.uber.org/zap's
// SugaredLogger, plus a no-op implementation.
package diag

import (
	"go.uber.org/zap"
)

// Logger is the narrow logging surface parattice components depend on. It is
// satisfied by *Zap and by Nop(), so callers never branch on whether logging
// is configured.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Zap adapts a *zap.SugaredLogger to Logger.
type Zap struct {
	s *zap.SugaredLogger
}

// New builds a production zap logger (JSON encoding, info level) and wraps
// it. Callers own the returned logger's Sync.
func New() (*Zap, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &Zap{s: l.Sugar()}, nil
}

// Wrap adapts an already-constructed zap logger, e.g. one built by a CLI
// from user-supplied verbosity flags.
func Wrap(l *zap.Logger) *Zap {
	return &Zap{s: l.Sugar()}
}

func (z *Zap) Debugf(format string, args ...interface{}) { z.s.Debugf(format, args...) }
func (z *Zap) Infof(format string, args ...interface{})  { z.s.Infof(format, args...) }
func (z *Zap) Warnf(format string, args ...interface{})  { z.s.Warnf(format, args...) }
func (z *Zap) Errorf(format string, args ...interface{}) { z.s.Errorf(format, args...) }

// Sync flushes any buffered log entries.
func (z *Zap) Sync() error { return z.s.Sync() }

type nop struct{}

func (nop) Debugf(string, ...interface{}) {}
func (nop) Infof(string, ...interface{})  {}
func (nop) Warnf(string, ...interface{})  {}
func (nop) Errorf(string, ...interface{}) {}

// Nop returns a Logger that discards everything, for components that were
// not handed an explicit logger.
func Nop() Logger { return nop{} }
