package gamelog

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jason-s-yu/skat/internal/models"
	"github.com/jason-s-yu/skat/internal/rules"
)

// DebugFile is written, truncated, instead of the timestamped log in debug mode.
const DebugFile = "debug.txt"

// timestampLayout names regular log files yy-mm-dd-HH-MM.
const timestampLayout = "06-01-02-15-04"

// Path returns the log file for a game started at now.
func Path(dir string, debug bool, now time.Time) string {
	if debug {
		return DebugFile
	}
	return filepath.Join(dir, now.Format(timestampLayout)+".txt")
}

// FileRecorder writes the plain text game log, one record per line:
//
//	(1, alice, [7D, 8D, ...])      one line per dealt hand
//	(2, Grand, [JD, TH, ...])      declarer, game, hand after the skat
//	[(1, 7D), (2, JD), (3, JS)]    one line per trick
type FileRecorder struct {
	w     *bufio.Writer
	close func() error
}

// NewFileRecorder writes records to w. Close closes w when it is an io.Closer.
func NewFileRecorder(w io.Writer) *FileRecorder {
	r := &FileRecorder{w: bufio.NewWriter(w), close: func() error { return nil }}
	if c, ok := w.(io.Closer); ok {
		r.close = c.Close
	}
	return r
}

// OpenFile opens path for logging. Regular logs are appended to, since two
// games may start within the same minute; debug logs are truncated.
func OpenFile(path string, truncate bool) (*FileRecorder, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if truncate {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open game log: %w", err)
	}
	return NewFileRecorder(f), nil
}

func (r *FileRecorder) RecordHand(_ context.Context, seat *models.Seat) error {
	_, err := fmt.Fprintf(r.w, "(%d, %s, %s)\n", seat.ID, seat.Name, seat.Hand)
	return err
}

func (r *FileRecorder) RecordDeclaration(_ context.Context, rl *rules.Rules, hand models.Hand) error {
	_, err := fmt.Fprintf(r.w, "(%d, %s, %s)\n", rl.Declarer, rl, hand)
	return err
}

// RecordTrick writes the trick and flushes, so a crashed game keeps every
// finished trick.
func (r *FileRecorder) RecordTrick(_ context.Context, trick rules.Trick) error {
	if _, err := fmt.Fprintln(r.w, trick); err != nil {
		return err
	}
	return r.w.Flush()
}

func (r *FileRecorder) Close() error {
	ferr := r.w.Flush()
	if err := r.close(); err != nil {
		return err
	}
	return ferr
}
