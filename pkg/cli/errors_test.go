package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	tests := []struct {
		err  *ConfigError
		want string
	}{
		{NewConfigError("upstream.base_url", "is required"), "config error in upstream.base_url: is required"},
		{NewConfigError("", "failed to load config"), "config error: failed to load config"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestCommandError(t *testing.T) {
	inner := errors.New("connection refused")
	err := NewCommandError("wake", inner)

	if err.Error() != "command wake failed: connection refused" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("CommandError should unwrap to the inner error")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"config", NewConfigError("server", "bad"), ExitConfig},
		{"wrapped config", fmt.Errorf("run: %w", NewConfigError("server", "bad")), ExitConfig},
		{"command", NewCommandError("run", errors.New("boom")), ExitFailure},
		{"plain", errors.New("boom"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
