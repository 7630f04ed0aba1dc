package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"businesshours/internal/storage"
	logx "businesshours/pkg/logx"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := NewRootCommand()
	root.Writer = &buf
	root.ErrWriter = &buf
	err := root.Run(context.Background(), append([]string{"bhours"}, args...))
	return buf.String(), err
}

const office = "wday{mon-fri} hr{9-17}"

func TestCheck(t *testing.T) {
	t.Parallel()
	tests := []struct {
		at   string
		want string
	}{
		{"2024-01-01T09:00:00Z", "open"},
		{"2024-01-01T08:59:59Z", "closed"},
		{"2024-01-06T12:00:00Z", "closed"},
	}
	for _, tt := range tests {
		got, err := run(t, "check", "--rule", office, "--at", tt.at)
		if err != nil {
			t.Fatalf("check at %s: %v", tt.at, err)
		}
		if !strings.HasPrefix(got, tt.want+" ") {
			t.Fatalf("check at %s = %q, want prefix %q", tt.at, got, tt.want)
		}
	}
}

func TestCheckRejectsBadInput(t *testing.T) {
	t.Parallel()
	if _, err := run(t, "check", "--rule", "wday{funday}"); err == nil {
		t.Fatal("expected invalid rule error")
	}
	if _, err := run(t, "check", "--rule", office, "--at", "yesterday"); err == nil {
		t.Fatal("expected invalid --at error")
	}
	if _, err := run(t, "check"); err == nil {
		t.Fatal("expected missing --rule error")
	}
}

func TestNext(t *testing.T) {
	t.Parallel()
	got, err := run(t, "next", "--rule", office, "--at", "2024-01-01T08:30:00Z", "--unit", "1m")
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if !strings.Contains(got, "opens in: 30 x 1m0s") {
		t.Fatalf("next output = %q", got)
	}
	// Closing after the 08:30 reference is Monday 18:00.
	if !strings.Contains(got, "closes in: 570 x 1m0s") {
		t.Fatalf("next output = %q", got)
	}

	got, err = run(t, "next", "--rule", "", "--at", "2024-01-01T08:30:00Z")
	if err != nil {
		t.Fatalf("next always-open: %v", err)
	}
	if strings.Count(got, "never") != 2 {
		t.Fatalf("always-open next output = %q", got)
	}
}

func TestCrons(t *testing.T) {
	t.Parallel()
	got, err := run(t, "crons", "--rule", office, "--at", "2024-01-01T00:00:00Z", "--preview", "2")
	if err != nil {
		t.Fatalf("crons: %v", err)
	}
	for _, want := range []string{
		"opening\t0 9 * * 1-5",
		"closing\t0 18 * * 1-5",
		"-> Mon 2024-01-01 09:00",
		"-> Tue 2024-01-02 09:00",
		"-> Mon 2024-01-01 18:00",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("crons output missing %q:\n%s", want, got)
		}
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()
	got, err := run(t, "normalize", "--rule", "wday{su} hr{22-23}, wday{mo} hr{0-1}")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !strings.HasPrefix(got, "canonical: ") || strings.Count(got, "\n") != 2 {
		t.Fatalf("normalize output = %q", got)
	}

	got, err = run(t, "normalize", "--rule", "wday{1-7}")
	if err != nil {
		t.Fatalf("normalize full week: %v", err)
	}
	if strings.TrimSpace(got) != "always open" {
		t.Fatalf("normalize full week = %q", got)
	}
}

func TestHistory(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	base := filepath.Join(dir, "transitions")
	cfgPath := filepath.Join(dir, "bhours.yaml")
	body := "storage:\n  driver: file\n  path: " + base + "\nschedules:\n  office:\n    rule: \"" + office + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	st, err := storage.Open(storage.Config{Driver: "file", Path: base}, logx.Nop())
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	if err := st.AppendTransition(context.Background(), storage.Transition{At: at, Schedule: "office", Kind: storage.Opened, Cron: "0 9 * * 1-5"}); err != nil {
		t.Fatalf("AppendTransition: %v", err)
	}
	_ = st.Close()

	got, err := run(t, "--config", cfgPath, "history", "--schedule", "office")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(got, "office") || !strings.Contains(got, "opened") {
		t.Fatalf("history output = %q", got)
	}

	got, err = run(t, "--config", cfgPath, "history", "--schedule", "lobby")
	if err != nil {
		t.Fatalf("history lobby: %v", err)
	}
	if !strings.Contains(got, "No transitions recorded.") {
		t.Fatalf("history lobby output = %q", got)
	}
}

func TestHistoryWithoutStorage(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bhours.yaml")
	if err := os.WriteFile(cfgPath, []byte("schedules:\n  office:\n    rule: \"\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := run(t, "--config", cfgPath, "history")
	if !errors.Is(err, storage.ErrDisabled) {
		t.Fatalf("history err = %v, want ErrDisabled", err)
	}
}
