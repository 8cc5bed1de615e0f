package eventlog

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func fixedNow() time.Time {
	return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
}

func readLog(t *testing.T, fs afero.Fs) string {
	t.Helper()
	data, err := afero.ReadFile(fs, "log.txt")
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return string(data)
}

func TestOpenCreatesNewLog(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := Open(fs, "log.txt", true)
	l.now = fixedNow

	content := readLog(t, fs)
	if !strings.Contains(content, "Jukebox Engine Started - New Log File Created,") {
		t.Errorf("new log missing started line: %q", content)
	}
}

func TestOpenAppendsRestartLine(t *testing.T) {
	fs := afero.NewMemMapFs()
	Open(fs, "log.txt", true)
	Open(fs, "log.txt", true)

	content := readLog(t, fs)
	if !strings.Contains(content, "Jukebox Engine Restarted,") {
		t.Errorf("restarted log missing restart line: %q", content)
	}
	if !strings.Contains(content, "New Log File Created,") {
		t.Errorf("restart must preserve original content: %q", content)
	}
}

func TestLogPlayFormat(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := Open(fs, "log.txt", true)
	l.now = fixedNow

	l.LogPlay("Chuck Berry", "Johnny B. Goode", "Paid")
	l.LogPlay("The Kinks", "Lola", "Random")

	content := readLog(t, fs)
	if !strings.Contains(content, "2026-08-31 12:00:00, Chuck Berry - Johnny B. Goode, Played Paid,") {
		t.Errorf("paid play line malformed: %q", content)
	}
	if !strings.Contains(content, "The Kinks - Lola, Played Random,") {
		t.Errorf("random play line malformed: %q", content)
	}
}

func TestLogCredit(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := Open(fs, "log.txt", true)
	l.now = fixedNow

	l.LogCredit(3)

	if !strings.Contains(readLog(t, fs), "Credit Added - Balance 3,") {
		t.Error("credit line missing")
	}
}

func TestDisabledLogWritesNothing(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := Open(fs, "log.txt", false)
	l.LogPlay("A", "B", "Paid")
	l.LogEvent("something")

	if _, err := fs.Stat("log.txt"); err == nil {
		t.Error("disabled log should not create the file")
	}
}
