// Package ingest reads real-list files (whitespace-separated
// "<name> <id> <weight>" lines) from disk or stdin and turns them into the
// parallel reals/ids/weights slices chash.New expects.
package ingest

import (
	"fmt"
	"sync"
	"sync/atomic"
	"syscall"

	"golang.org/x/sys/unix"
)

// mmapThreshold is the file size above which ReadReal maps the file instead
// of copying it, worthwhile once a shard file runs into the tens of
// megabytes a full-fleet real list can reach.
const mmapThreshold = 4 * 1024 * 1024

// bufPool pools read buffers so repeated shard-file reads during a reload
// cycle don't re-allocate their backing array each time.
var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, 64*1024)
		return &b
	},
}

var noatimeWorks atomic.Int32

func init() { noatimeWorks.Store(1) }

// openFile opens path with O_NOATIME, falling back once the first EPERM
// shows the calling user doesn't own it (common when real lists are shipped
// in by a config-management user rather than the service's own).
func openFile(path string) (int, error) {
	if noatimeWorks.Load() != 0 {
		fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NOATIME, 0)
		if err == nil {
			return fd, nil
		}
		if err == unix.EPERM {
			noatimeWorks.Store(0)
		}
	}
	return unix.Open(path, unix.O_RDONLY, 0)
}

// ReadReal opens path, reads it with a size-appropriate strategy (a pooled
// buffer via pread for small files, a mapping for large ones), and parses it
// as a real list. The file and any mapping are released before ReadReal
// returns — callers never see a raw byte buffer, only parsed Reals, so
// there's nothing left to close.
func ReadReal(path string) ([]Real, error) {
	fd, err := openFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open %s: %w", path, err)
	}

	var stat unix.Stat_t
	if err := unix.Fstat(fd, &stat); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("ingest: stat %s: %w", path, err)
	}

	if stat.Size == 0 {
		unix.Close(fd)
		return nil, nil
	}

	if stat.Size >= mmapThreshold {
		return readMmapReal(fd, stat.Size, path)
	}
	return readBufferedReal(fd, stat.Size, path)
}

// readBufferedReal reads size bytes from fd into a pooled buffer and parses
// them in place. Takes ownership of fd.
func readBufferedReal(fd int, size int64, path string) ([]Real, error) {
	bp := bufPool.Get().(*[]byte)
	buf := *bp
	if cap(buf) < int(size) {
		buf = make([]byte, size)
	} else {
		buf = buf[:size]
	}
	defer func() {
		*bp = buf
		bufPool.Put(bp)
	}()

	var totalRead int
	for totalRead < int(size) {
		n, err := unix.Pread(fd, buf[totalRead:], int64(totalRead))
		if err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("ingest: read %s: %w", path, err)
		}
		if n == 0 {
			break
		}
		totalRead += n
	}
	unix.Close(fd)

	reals, err := ParseLines(buf[:totalRead])
	if err != nil {
		return nil, fmt.Errorf("ingest: %s: %w", path, err)
	}
	return reals, nil
}

// readMmapReal maps size bytes of fd and parses them directly out of the
// mapping, falling back to a buffered read if the mapping itself fails
// (common on filesystems that don't support mmap, e.g. some overlayfs
// configurations). Takes ownership of fd.
func readMmapReal(fd int, size int64, path string) ([]Real, error) {
	unix.Fadvise(fd, 0, size, unix.FADV_SEQUENTIAL)

	data, err := syscall.Mmap(fd, 0, int(size), syscall.PROT_READ, syscall.MAP_PRIVATE)
	if err != nil {
		return readBufferedReal(fd, size, path)
	}
	unix.Madvise(data, unix.MADV_SEQUENTIAL)

	reals, parseErr := ParseLines(data)

	unix.Madvise(data, unix.MADV_DONTNEED)
	syscall.Munmap(data)
	unix.Close(fd)

	if parseErr != nil {
		return nil, fmt.Errorf("ingest: %s: %w", path, parseErr)
	}
	return reals, nil
}
