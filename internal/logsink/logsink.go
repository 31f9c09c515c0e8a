// Package logsink implements the out-of-band log sink the core writes
// configuration faults, transient I/O faults, and fatal diagnostics to
// (spec §6, §7). It is the Go analog of the shipped C++ original's
// log_to_file: a mutex-guarded, timestamped, append-only writer.
package logsink

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ncruces/go-strftime"
)

// timestampLayout mirrors the C++ original's std::put_time(&buf,
// "%Y-%m-%d %H:%M:%S") formatting.
const timestampLayout = "%Y-%m-%d %H:%M:%S"

// Sink is the log boundary the driver and CLI depend on.
type Sink interface {
	Warnf(format string, args ...any)
	Fatalf(format string, args ...any)
	Infof(format string, args ...any)
}

// Writer is a Sink backed by any io.Writer (a file, os.Stderr, ...), guarded
// by a mutex so concurrent writers never interleave partial lines (spec §5
// "Shared resources: the append-only log sink is guarded by a mutex").
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// New wraps w as a thread-safe log sink.
func New(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (l *Writer) Infof(format string, args ...any)  { l.writeLine("INFO", format, args...) }
func (l *Writer) Warnf(format string, args ...any)  { l.writeLine("WARN", format, args...) }
func (l *Writer) Fatalf(format string, args ...any) { l.writeLine("FATAL", format, args...) }

func (l *Writer) writeLine(level, format string, args ...any) {
	ts := strftime.Format(timestampLayout, time.Now())

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "[%s] %s %s\n", ts, level, fmt.Sprintf(format, args...))
}
