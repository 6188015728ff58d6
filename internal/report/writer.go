package report

import (
	"os"

	"golang.org/x/sys/unix"
)

// Writer writes formatted report bytes to stdout, using writev to batch
// the syscall for a snapshot's many report lines.
type Writer struct {
	fd int
}

// NewWriter creates a Writer that writes to stdout.
func NewWriter() *Writer {
	return &Writer{fd: int(os.Stdout.Fd())}
}

// Write writes data to stdout via writev.
func (w *Writer) Write(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	for len(data) > 0 {
		n, err := unix.Writev(w.fd, [][]byte{data})
		if err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// WriteSnapshot formats snap with f and writes the result in one batch.
func (w *Writer) WriteSnapshot(f Formatter, snap Snapshot) error {
	buf := f.Format(nil, snap)
	return w.Write(buf)
}
