package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(INFO)

	Debugf("hidden %d", 1)
	Warnf("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("DEBUG written at INFO level: %q", out)
	}
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "shown 2") {
		t.Fatalf("WARN line missing: %q", out)
	}
	if !strings.Contains(out, "log_test.go") {
		t.Fatalf("caller missing: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	if l, ok := ParseLevel(" debug "); !ok || l != DEBUG {
		t.Fatalf("debug: %v %v", l, ok)
	}
	if _, ok := ParseLevel("chatty"); ok {
		t.Fatalf("unknown level accepted")
	}
}

func TestFatalStopsProcess(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(INFO)
	prev := exit
	stopped := false
	exit = func() { stopped = true }
	defer func() { exit = prev }()

	Fatalf("boom %s", "now")
	if !stopped {
		t.Fatalf("exit hook not called")
	}
	if !strings.Contains(buf.String(), "FATAL") {
		t.Fatalf("FATAL line missing: %q", buf.String())
	}
}
