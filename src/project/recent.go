package project

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/splotview/splotview/src/logging"
)

// RecentLimit caps the recent-file log length.
const RecentLimit = 50

const recentTimeLayout = "2006-01-02 15:04:05"

// RecentEntry is one line of the recent-file log.
type RecentEntry struct {
	Time time.Time
	Path string
}

// RecentLog is the human-readable recent-project list, one
// "<timestamp> | <path>" line per entry, newest first. The file is rewritten
// in full on every update.
type RecentLog struct {
	Path string
}

// Touch records path as the most recently used project. Earlier entries for
// the same path are dropped, the list is capped at RecentLimit.
func (l *RecentLog) Touch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	entries, err := l.Entries()
	if err != nil {
		logging.Warnf("recent: unreadable log %s, starting fresh: %v", l.Path, err)
		entries = nil
	}

	out := []RecentEntry{{Time: time.Now(), Path: abs}}
	for _, e := range entries {
		if e.Path == abs {
			continue
		}
		out = append(out, e)
		if len(out) == RecentLimit {
			break
		}
	}
	return l.write(out)
}

// Entries reads the log newest-first. Malformed lines are skipped. A missing
// file yields an empty list.
func (l *RecentLog) Entries() ([]RecentEntry, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var out []RecentEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		ts, path, ok := strings.Cut(line, " | ")
		if !ok {
			continue
		}
		t, err := time.ParseInLocation(recentTimeLayout, strings.TrimSpace(ts), time.Local)
		if err != nil {
			continue
		}
		out = append(out, RecentEntry{Time: t, Path: strings.TrimSpace(path)})
	}
	return out, sc.Err()
}

func (l *RecentLog) write(entries []RecentEntry) error {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s | %s\n", e.Time.Format(recentTimeLayout), e.Path)
	}
	if err := os.MkdirAll(filepath.Dir(l.Path), 0755); err != nil {
		return fmt.Errorf("recent: %w", err)
	}
	if err := os.WriteFile(l.Path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("recent: %w", err)
	}
	return nil
}
