package state

import (
	"context"
	"log"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"docmark/config"
)

func TestFromContext(t *testing.T) {
	t.Run("valid context", func(t *testing.T) {
		env := FromContext(NewContext(context.Background()))
		if env == nil {
			t.Fatal("Expected non-nil environment")
		}
		if env.start.IsZero() {
			t.Error("Environment start time not set")
		}
	})

	t.Run("panic on missing env", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic when env not in context")
			}
		}()
		FromContext(context.Background())
	})
}

func TestEnv_Uptime(t *testing.T) {
	env := FromContext(NewContext(context.Background()))
	time.Sleep(10 * time.Millisecond)
	if uptime := env.Uptime(); uptime < 10*time.Millisecond {
		t.Errorf("Uptime() = %v, expected at least 10ms", uptime)
	}
}

func TestEnv_Logger(t *testing.T) {
	env := FromContext(NewContext(context.Background()))
	// usable before logging is configured
	env.Logger("edit").Info("dropped")

	core, logs := observer.New(zapcore.InfoLevel)
	env.Log = zap.New(core)
	env.Logger("serve").Info("kept")
	entries := logs.FilterMessage("kept").All()
	if len(entries) != 1 || entries[0].LoggerName != "serve" {
		t.Errorf("unexpected entries %v", logs.All())
	}
}

func TestEnv_Editing(t *testing.T) {
	env := FromContext(NewContext(context.Background()))
	if env.Editing() == nil {
		t.Fatal("Editing() without configuration returned nil")
	}

	env.Cfg = &config.Config{}
	env.Cfg.Editing.CopyNameTemplate = "{{ .Name }}"
	cfg := env.Editing()
	cfg.CopyNameTemplate = "changed"
	if env.Cfg.Editing.CopyNameTemplate != "{{ .Name }}" {
		t.Error("Editing() returned shared settings")
	}
}

func TestEnv_StdLogRedirect(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	env := FromContext(NewContext(context.Background()))

	// no logger yet - nothing to redirect, nothing to restore
	env.RedirectStdLog()
	env.RestoreStdLog()

	env.Log = zap.New(core)
	env.RedirectStdLog()
	log.Print("from standard logger")
	env.RestoreStdLog()
	// second restore is harmless
	env.RestoreStdLog()

	if logs.FilterMessage("from standard logger").Len() != 1 {
		t.Errorf("standard log was not redirected, got %v", logs.All())
	}
}
