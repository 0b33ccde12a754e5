package supervisor

import (
	"bytes"
	"sync"
)

// maxLineLen bounds the buffered partial line so a child writing without newlines can't grow it forever.
const maxLineLen = 64 * 1024

// lineWriter forwards every complete line written by the child process to a log function.
// The output is never interpreted.
type lineWriter struct {
	mu    sync.Mutex
	buf   []byte
	logFn func(format string, args ...any)
}

func newLineWriter(logFn func(format string, args ...any)) *lineWriter {
	return &lineWriter{logFn: logFn}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.emit(w.buf[:i])
		w.buf = w.buf[i+1:]
	}

	if len(w.buf) >= maxLineLen {
		w.emit(w.buf)
		w.buf = nil
	}

	return len(p), nil
}

// Flush logs any pending partial line.
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.buf) > 0 {
		w.emit(w.buf)
		w.buf = nil
	}
}

func (w *lineWriter) emit(line []byte) {
	line = bytes.TrimRight(line, "\r")
	if len(line) == 0 {
		return
	}
	w.logFn("%s", string(line))
}
