// Package state carries per invocation program state through the command
// context.
package state

import (
	"context"
	"time"

	"go.uber.org/zap"

	"docmark/config"
)

type envKey struct{}

// Env is shared by all commands of a single program run. Fields are filled
// by the command line "before" hook.
type Env struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	start   time.Time
	restore func()
}

// NewContext returns context carrying fresh Env.
func NewContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, &Env{start: time.Now()})
}

// FromContext returns Env stored by NewContext, it panics when there is none.
func FromContext(ctx context.Context) *Env {
	if env, ok := ctx.Value(envKey{}).(*Env); ok {
		return env
	}
	panic("program state is missing from context")
}

// Logger returns logger of the named component, nop logger before logging
// is configured.
func (e *Env) Logger(component string) *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log.Named(component)
}

// Editing returns private copy of the editing settings, commands may adjust
// it without affecting each other.
func (e *Env) Editing() *config.EditingConfig {
	if e.Cfg == nil {
		return &config.EditingConfig{}
	}
	cfg := e.Cfg.Editing
	return &cfg
}

func (e *Env) Uptime() time.Duration {
	return time.Since(e.start)
}

// RedirectStdLog sends output of the standard logger to zap until
// RestoreStdLog is called.
func (e *Env) RedirectStdLog() {
	if e.Log != nil {
		e.restore = zap.RedirectStdLog(e.Log)
	}
}

func (e *Env) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restore != nil {
		e.restore()
		e.restore = nil
	}
}
