package instance

import (
	"strings"
	"testing"
)

func TestIDPrefersEnv(t *testing.T) {
	t.Setenv(envWorkerID, "sweeper-1")
	if got := ID(); got != "sweeper-1" {
		t.Fatalf("expected env id, got %q", got)
	}
}

func TestIDFallsBackToHost(t *testing.T) {
	t.Setenv(envWorkerID, "")
	if got := ID(); got == "" || !strings.Contains(got, "-") {
		t.Fatalf("unexpected fallback id %q", got)
	}
}
