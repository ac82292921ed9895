package shared

import (
	"strings"
	"testing"
)

func TestOpenBrowser(t *testing.T) {
	orig := getRuntime
	defer func() { getRuntime = orig }()

	getRuntime = func() string { return "plan9" }

	err := OpenBrowser("http://localhost:8888/callback")
	if err == nil {
		t.Fatal("expected an error on an unsupported platform")
	}
	if !strings.Contains(err.Error(), "plan9") {
		t.Errorf("expected error to name the platform, got %v", err)
	}
}
