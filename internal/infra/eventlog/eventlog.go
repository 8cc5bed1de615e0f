// Package eventlog appends timestamped operational events to the jukebox
// log file: engine restarts, song plays, and credit changes. The format is
// the line-per-event text file the operator tooling already reads, not a
// structured log.
package eventlog

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// timeLayout is the timestamp format expected by the operator tooling.
const timeLayout = "2006-01-02 15:04:05"

// Log is an append-only event log file.
type Log struct {
	mu      sync.Mutex
	fs      afero.Fs
	path    string
	enabled bool
	now     func() time.Time
}

// Open prepares the log at path, writing a started line for a new file or a
// restarted line when it already exists. With enabled false every append is
// a no-op.
func Open(fs afero.Fs, path string, enabled bool) *Log {
	l := &Log{fs: fs, path: path, enabled: enabled, now: time.Now}

	if !enabled {
		return l
	}

	if _, err := fs.Stat(path); os.IsNotExist(err) {
		l.write(l.stamp() + " Jukebox Engine Started - New Log File Created,")
		log.Info().Str("path", path).Msg("Created event log")
	} else {
		l.append("\n" + l.stamp() + " Jukebox Engine Restarted,")
	}
	return l
}

// LogPlay records a song play. playType is "Paid" or "Random".
func (l *Log) LogPlay(artist, title, playType string) {
	l.appendLine(fmt.Sprintf("%s, %s - %s, Played %s,", l.stamp(), artist, title, playType))
}

// LogCredit records a credit balance change.
func (l *Log) LogCredit(balance int) {
	l.appendLine(fmt.Sprintf("%s, Credit Added - Balance %d,", l.stamp(), balance))
}

// LogEvent records a free-form event line.
func (l *Log) LogEvent(msg string) {
	l.appendLine(fmt.Sprintf("%s, %s,", l.stamp(), msg))
}

func (l *Log) appendLine(line string) {
	if !l.enabled {
		return
	}
	l.append("\n" + line)
}

func (l *Log) append(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.fs.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Error().Err(err).Str("path", l.path).Msg("Event log append failed")
		return
	}
	defer f.Close()

	if _, err := f.WriteString(text); err != nil {
		log.Error().Err(err).Str("path", l.path).Msg("Event log write failed")
	}
}

func (l *Log) write(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := afero.WriteFile(l.fs, l.path, []byte(text), 0o644); err != nil {
		log.Error().Err(err).Str("path", l.path).Msg("Event log create failed")
	}
}

func (l *Log) stamp() string {
	return l.now().Round(time.Second).Format(timeLayout)
}
