// Package maintenance toggles the site-wide maintenance marker that advertises a bulk import in
// progress. The marker is advisory: it does not stop two imports from running at once, it only
// tells unrelated traffic that the site is busy.
package maintenance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"
	"time"
)

// FileName is the marker WordPress checks at the site root.
const FileName = ".maintenance"

// Window is how long a marker counts as active after its timestamp. Older markers are ignored.
const Window = 10 * time.Minute

var upgradingPattern = regexp.MustCompile(`\$upgrading\s*=\s*(\d+)`)

// Lock is a single global toggle backed by a marker file. It is not reentrant and two
// concurrent holders simply overwrite each other's timestamp.
type Lock struct {
	path string
	now  func() time.Time
}

func New(siteRoot string) *Lock {
	return &Lock{
		path: filepath.Join(siteRoot, FileName),
		now:  time.Now,
	}
}

// Path returns the marker location.
func (l *Lock) Path() string {
	return l.path
}

// Acquire writes the marker and returns a release func. The release func is safe to call any
// number of times, from any exit path; every call reports the error of the first removal.
func (l *Lock) Acquire() (func() error, error) {
	content := fmt.Sprintf("<?php $upgrading = %d; ?>", l.now().Unix())
	if err := os.WriteFile(l.path, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("write maintenance marker: %w", err)
	}

	var (
		once       sync.Once
		releaseErr error
	)
	return func() error {
		once.Do(func() { releaseErr = l.Release() })
		return releaseErr
	}, nil
}

// Release removes the marker. Removing an absent marker is not an error.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove maintenance marker: %w", err)
	}
	return nil
}

// Since reports when the current marker was written. ok is false when no readable marker exists.
func (l *Lock) Since() (since time.Time, ok bool) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return time.Time{}, false
	}
	m := upgradingPattern.FindSubmatch(data)
	if m == nil {
		return time.Time{}, false
	}
	ts, err := strconv.ParseInt(string(m[1]), 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(ts, 0), true
}

// Active reports whether a marker exists and is younger than Window.
func (l *Lock) Active() bool {
	since, ok := l.Since()
	if !ok {
		return false
	}
	return l.now().Sub(since) < Window
}

// ClearStale removes a marker left behind by a process that died before it could release it.
// A marker that is still inside its window is left alone.
func (l *Lock) ClearStale() (bool, error) {
	if _, err := os.Stat(l.path); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if l.Active() {
		return false, nil
	}
	if err := l.Release(); err != nil {
		return false, err
	}
	return true, nil
}
