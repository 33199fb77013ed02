package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	yaml "gopkg.in/yaml.v3"
)

func TestSecretString_Marshal(t *testing.T) {
	type holder struct {
		Token SecretString `json:"token" yaml:"token"`
	}

	tests := []struct {
		name     string
		value    SecretString
		wantJSON string
		wantYAML string
	}{
		{"empty", "", `{"token":null}`, "token: null\n"},
		{"set", "s3cr3t", `{"token":"` + secretMask + `"}`, "token: " + secretMask + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, err := json.Marshal(holder{Token: tt.value})
			if err != nil {
				t.Fatalf("json.Marshal() error = %v", err)
			}
			if string(j) != tt.wantJSON {
				t.Errorf("json = %s, want %s", j, tt.wantJSON)
			}
			y, err := yaml.Marshal(holder{Token: tt.value})
			if err != nil {
				t.Fatalf("yaml.Marshal() error = %v", err)
			}
			if string(y) != tt.wantYAML {
				t.Errorf("yaml = %q, want %q", y, tt.wantYAML)
			}
			if tt.value != "" && (strings.Contains(string(j), string(tt.value)) || strings.Contains(string(y), string(tt.value))) {
				t.Error("secret leaked")
			}
		})
	}
}

func TestSecretString_Print(t *testing.T) {
	s := SecretString("s3cr3t")
	for _, format := range []string{"%s", "%v", "%+v", "%#v", "%q"} {
		if out := fmt.Sprintf(format, s); strings.Contains(out, "s3cr3t") {
			t.Errorf("%s leaked secret: %s", format, out)
		}
	}
	if out := fmt.Sprintf("%v", struct{ Token SecretString }{s}); strings.Contains(out, "s3cr3t") {
		t.Errorf("nested value leaked secret: %s", out)
	}
	if string(s) != "s3cr3t" {
		t.Error("conversion lost value")
	}
	if SecretString("").String() != "" {
		t.Error("empty secret is not empty")
	}

	core, logs := observer.New(zapcore.InfoLevel)
	zap.New(core).Info("token", zap.Stringer("token", s))
	if got := logs.All()[0].ContextMap()["token"]; got != secretMask {
		t.Errorf("logged token = %v", got)
	}
}
