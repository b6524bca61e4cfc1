package logger

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DailyFile is an io.Writer appending to DIR/YYYY-MM-DD.log, switching files
// when the UTC calendar date changes.
type DailyFile struct {
	mu   sync.Mutex
	dir  string
	now  func() time.Time
	date string
	file *os.File
}

func NewDailyFile(dir string) *DailyFile {
	return &DailyFile{dir: dir, now: time.Now}
}

// PathFor returns the log file used for records written at t.
func (d *DailyFile) PathFor(t time.Time) string {
	return filepath.Join(d.dir, t.UTC().Format(time.DateOnly)+".log")
}

func (d *DailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	date := now.UTC().Format(time.DateOnly)
	if d.file == nil || date != d.date {
		if err := d.rotate(now); err != nil {
			return 0, err
		}
		d.date = date
	}
	return d.file.Write(p)
}

func (d *DailyFile) rotate(now time.Time) error {
	if d.file != nil {
		_ = d.file.Close()
		d.file = nil
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(d.PathFor(now), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	d.file = f
	return nil
}

// Close closes the currently open file, if any.
func (d *DailyFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}
