// Package reload watches a weights file for changes and replays the new
// weights against a live Updater, using raw inotify + epoll the same way
// the grep teacher watched log files for tail -f style reading.
package reload

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Event reports a change to the watched weights file.
type Event struct {
	Path string
	Type EventType
	Err  error
}

// EventType identifies the kind of change to the weights file.
type EventType int

const (
	EventModified EventType = iota
	EventCreated
	EventDeleted
)

// Watcher watches a single weights file for appends, rewrites, and atomic
// replace-via-rename, using raw inotify + epoll (no fsnotify dependency).
type Watcher struct {
	inotifyFd int
	epollFd   int
	watches   map[int]string
	offsets   map[string]int64
	done      chan struct{}
}

// New creates an inotify-based Watcher.
func New() (*Watcher, error) {
	ifd, err := unix.InotifyInit1(unix.IN_CLOEXEC | unix.IN_NONBLOCK)
	if err != nil {
		return nil, fmt.Errorf("inotify_init1: %w", err)
	}

	efd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		unix.Close(ifd)
		return nil, fmt.Errorf("epoll_create1: %w", err)
	}

	event := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(ifd)}
	if err := unix.EpollCtl(efd, unix.EPOLL_CTL_ADD, ifd, &event); err != nil {
		unix.Close(efd)
		unix.Close(ifd)
		return nil, fmt.Errorf("epoll_ctl: %w", err)
	}

	return &Watcher{
		inotifyFd: ifd,
		epollFd:   efd,
		watches:   make(map[int]string),
		offsets:   make(map[string]int64),
		done:      make(chan struct{}),
	}, nil
}

// Add starts watching path (the weights file, or its containing directory
// to catch an atomic rename-into-place) for modification and replacement.
func (w *Watcher) Add(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	mask := uint32(unix.IN_MODIFY | unix.IN_CREATE | unix.IN_MOVED_TO | unix.IN_MOVE_SELF | unix.IN_DELETE_SELF)
	wd, err := unix.InotifyAddWatch(w.inotifyFd, absPath, mask)
	if err != nil {
		return fmt.Errorf("inotify_add_watch %s: %w", absPath, err)
	}
	w.watches[wd] = absPath

	if info, err := os.Stat(absPath); err == nil && !info.IsDir() {
		w.offsets[absPath] = info.Size()
	}
	return nil
}

// Events returns a channel of weights-file change events. Runs until
// Close is called.
func (w *Watcher) Events() <-chan Event {
	ch := make(chan Event, 64)
	go func() {
		defer close(ch)
		buf := make([]byte, 4096)
		events := make([]unix.EpollEvent, 1)

		for {
			select {
			case <-w.done:
				return
			default:
			}

			n, err := unix.EpollWait(w.epollFd, events, 100)
			if err != nil {
				if err == unix.EINTR {
					continue
				}
				ch <- Event{Err: fmt.Errorf("epoll_wait: %w", err)}
				return
			}
			if n == 0 {
				continue
			}

			nbytes, err := unix.Read(w.inotifyFd, buf)
			if err != nil {
				if err == unix.EAGAIN {
					continue
				}
				ch <- Event{Err: fmt.Errorf("read inotify: %w", err)}
				return
			}
			w.parseEvents(buf[:nbytes], ch)
		}
	}()
	return ch
}

const inotifyEventSize = 16

func (w *Watcher) parseEvents(buf []byte, ch chan<- Event) {
	offset := 0
	for offset+inotifyEventSize <= len(buf) {
		wd := int32(binary.LittleEndian.Uint32(buf[offset:]))
		mask := binary.LittleEndian.Uint32(buf[offset+4:])
		nameLen := int(binary.LittleEndian.Uint32(buf[offset+12:]))

		var name string
		if nameLen > 0 {
			nameStart := offset + inotifyEventSize
			nameEnd := nameStart + nameLen
			if nameEnd > len(buf) {
				break
			}
			nameBytes := buf[nameStart:nameEnd]
			for i, b := range nameBytes {
				if b == 0 {
					nameBytes = nameBytes[:i]
					break
				}
			}
			name = string(nameBytes)
		}
		offset += inotifyEventSize + nameLen

		dirPath := w.watches[int(wd)]
		path := dirPath
		if name != "" {
			path = filepath.Join(dirPath, name)
		}

		switch {
		case mask&unix.IN_CREATE != 0 || mask&unix.IN_MOVED_TO != 0:
			ch <- Event{Path: path, Type: EventCreated}
		case mask&unix.IN_MODIFY != 0:
			ch <- Event{Path: path, Type: EventModified}
		case mask&unix.IN_DELETE_SELF != 0 || mask&unix.IN_MOVE_SELF != 0:
			ch <- Event{Path: path, Type: EventDeleted}
		}
	}
}

// ReadNew reads whatever has been appended to path since the last call,
// resetting the tracked offset if the file was truncated or replaced
// smaller (rewriting the whole weights file in place).
func (w *Watcher) ReadNew(path string) ([]byte, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NOATIME, 0)
	if err != nil {
		fd, err = unix.Open(path, unix.O_RDONLY, 0)
		if err != nil {
			return nil, err
		}
	}
	defer unix.Close(fd)

	var stat unix.Stat_t
	if err := unix.Fstat(fd, &stat); err != nil {
		return nil, err
	}

	lastOffset := w.offsets[path]
	newSize := stat.Size
	if newSize <= lastOffset {
		if newSize < lastOffset {
			w.offsets[path] = 0
			lastOffset = 0
		} else {
			return nil, nil
		}
	}

	toRead := int(newSize - lastOffset)
	if toRead == 0 {
		return nil, nil
	}

	buf := make([]byte, toRead)
	n, err := unix.Pread(fd, buf, lastOffset)
	if err != nil {
		return nil, err
	}
	w.offsets[path] = lastOffset + int64(n)
	return buf[:n], nil
}

// ReadAll reads a weights file from the start, for the initial full parse
// and for resyncing after a truncate-and-rewrite.
func (w *Watcher) ReadAll(path string) ([]byte, error) {
	w.offsets[path] = 0
	return w.ReadNew(path)
}

// Close stops the watcher and releases its file descriptors.
func (w *Watcher) Close() error {
	close(w.done)
	unix.Close(w.epollFd)
	return unix.Close(w.inotifyFd)
}
