// Package discover walks a directory tree looking for real-list shard
// files (a fleet's reals may be split one file per
// rack or datacenter), respecting .chashignore/.gitignore exclude rules and
// caller-supplied glob filters.
package discover

import (
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ShardPath is one discovered real-list shard file.
type ShardPath struct {
	Path string
}

// Options configures a Walk call.
type Options struct {
	Recursive      bool
	NoExclude      bool     // skip .chashignore/.gitignore processing
	Hidden         bool     // include dotfiles and dot-directories
	FollowSymlinks bool
	Globs          []string // include/exclude globs, prefix ! to exclude
}

// Walk traverses roots and sends discovered shard paths on the returned
// channel, using raw getdents64 for the listing and a worker pool sized to
// NumCPU for the traversal itself. When Recursive is false, roots are
// treated as literal file paths and returned as-is (after an existence
// check).
func Walk(roots []string, opts Options) (<-chan ShardPath, <-chan error) {
	fileCh := make(chan ShardPath, 256)
	errCh := make(chan error, 16)

	go func() {
		defer close(fileCh)
		defer close(errCh)

		if !opts.Recursive {
			for _, root := range roots {
				var stat unix.Stat_t
				if err := unix.Stat(root, &stat); err != nil {
					errCh <- &WalkError{Path: root, Err: err}
					continue
				}
				if stat.Mode&unix.S_IFMT == unix.S_IFREG {
					fileCh <- ShardPath{Path: root}
				}
			}
			return
		}

		pw := &parallelWalker{
			fileCh:         fileCh,
			errCh:          errCh,
			hidden:         opts.Hidden,
			noExclude:      opts.NoExclude,
			followSymlinks: opts.FollowSymlinks,
			globs:          opts.Globs,
		}
		pw.cond = sync.NewCond(&pw.mu)

		for _, root := range roots {
			var layers []excludeLayer
			if !opts.NoExclude {
				layers = []excludeLayer{loadExcludeLayer(root)}
			}
			pw.enqueue(walkItem{path: root, excludes: layers})
		}

		workers := runtime.NumCPU()
		var wg sync.WaitGroup
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				pw.worker()
			}()
		}
		wg.Wait()
	}()

	return fileCh, errCh
}

type walkItem struct {
	path     string
	excludes []excludeLayer
}

type parallelWalker struct {
	fileCh         chan<- ShardPath
	errCh          chan<- error
	hidden         bool
	noExclude      bool
	followSymlinks bool
	globs          []string

	mu      sync.Mutex
	queue   []walkItem
	pending int
	cond    *sync.Cond
	done    bool
}

func (pw *parallelWalker) enqueue(item walkItem) {
	pw.mu.Lock()
	pw.queue = append(pw.queue, item)
	pw.pending++
	pw.mu.Unlock()
	pw.cond.Signal()
}

func (pw *parallelWalker) dequeue() (walkItem, bool) {
	pw.mu.Lock()
	for len(pw.queue) == 0 && !pw.done {
		pw.cond.Wait()
	}
	if pw.done && len(pw.queue) == 0 {
		pw.mu.Unlock()
		return walkItem{}, false
	}
	item := pw.queue[0]
	pw.queue = pw.queue[1:]
	pw.mu.Unlock()
	return item, true
}

func (pw *parallelWalker) finish() {
	pw.mu.Lock()
	pw.pending--
	if pw.pending == 0 && len(pw.queue) == 0 {
		pw.done = true
		pw.cond.Broadcast()
	}
	pw.mu.Unlock()
}

func (pw *parallelWalker) worker() {
	buf := make([]byte, 32*1024)
	var entries []dirent
	for {
		item, ok := pw.dequeue()
		if !ok {
			return
		}
		entries = pw.processDir(item, buf, entries)
		pw.finish()
	}
}

func (pw *parallelWalker) processDir(item walkItem, buf []byte, entries []dirent) []dirent {
	fd, err := unix.Open(item.path, unix.O_RDONLY|unix.O_DIRECTORY, 0)
	if err != nil {
		pw.errCh <- &WalkError{Path: item.path, Err: err}
		return entries
	}

	var subdirs []walkItem

	for {
		n, err := unix.Getdents(fd, buf)
		if err != nil {
			pw.errCh <- &WalkError{Path: item.path, Err: err}
			break
		}
		if n == 0 {
			break
		}

		entries = parseDirents(buf, n, entries)
		for _, entry := range entries {
			fullPath := joinPath(item.path, entry.Name)
			pw.dispatch(item, entry, fullPath, &subdirs)
		}
	}

	unix.Close(fd)

	for _, sub := range subdirs {
		pw.enqueue(sub)
	}
	return entries
}

// dispatch routes one directory entry to a file emission or a subdirectory
// enqueue, resolving DT_UNKNOWN/DT_LNK via stat when necessary.
func (pw *parallelWalker) dispatch(item walkItem, entry dirent, fullPath string, subdirs *[]walkItem) {
	switch entry.Type {
	case dtDir:
		pw.maybeDescend(item, entry.Name, fullPath, subdirs)
	case dtReg:
		pw.maybeEmit(item, entry.Name, fullPath)
	case dtLnk:
		if !pw.followSymlinks {
			return
		}
		pw.dispatchStat(item, entry.Name, fullPath, subdirs)
	case dtUnknown:
		pw.dispatchStat(item, entry.Name, fullPath, subdirs)
	}
}

func (pw *parallelWalker) dispatchStat(item walkItem, name, fullPath string, subdirs *[]walkItem) {
	var stat unix.Stat_t
	if err := unix.Stat(fullPath, &stat); err != nil {
		return
	}
	switch stat.Mode & unix.S_IFMT {
	case unix.S_IFREG:
		pw.maybeEmit(item, name, fullPath)
	case unix.S_IFDIR:
		pw.maybeDescend(item, name, fullPath, subdirs)
	}
}

func (pw *parallelWalker) maybeEmit(item walkItem, name, fullPath string) {
	if !pw.hidden && len(name) > 0 && name[0] == '.' {
		return
	}
	if item.excludes != nil && isExcludedByLayers(item.excludes, fullPath, false) {
		return
	}
	if pw.isGlobExcluded(name) {
		return
	}
	pw.fileCh <- ShardPath{Path: fullPath}
}

func (pw *parallelWalker) maybeDescend(item walkItem, name, fullPath string, subdirs *[]walkItem) {
	if skipDir(name, pw.hidden) {
		return
	}
	if item.excludes != nil && isExcludedByLayers(item.excludes, fullPath, true) {
		return
	}
	// Include globs select shard file names; only "!" exclude globs prune
	// directories.
	for _, g := range pw.globs {
		if strings.HasPrefix(g, "!") && matchGlob(g[1:], name) {
			return
		}
	}
	var childExcludes []excludeLayer
	if !pw.noExclude {
		childExcludes = make([]excludeLayer, len(item.excludes)+1)
		copy(childExcludes, item.excludes)
		childExcludes[len(item.excludes)] = loadExcludeLayer(fullPath)
	}
	*subdirs = append(*subdirs, walkItem{path: fullPath, excludes: childExcludes})
}

func joinPath(dirPath, name string) string {
	needsSep := len(dirPath) == 0 || dirPath[len(dirPath)-1] != '/'
	n := len(dirPath) + len(name)
	if needsSep {
		n++
	}
	buf := make([]byte, n)
	copy(buf, dirPath)
	i := len(dirPath)
	if needsSep {
		buf[i] = '/'
		i++
	}
	copy(buf[i:], name)
	return unsafe.String(&buf[0], len(buf))
}

// skipDir skips VCS metadata directories outright, plus dotdirs unless
// hidden is set.
func skipDir(name string, hidden bool) bool {
	switch name {
	case ".git", ".svn", ".hg":
		return true
	}
	if !hidden && len(name) > 0 && name[0] == '.' {
		return true
	}
	return false
}

func (pw *parallelWalker) isGlobExcluded(name string) bool {
	if len(pw.globs) == 0 {
		return false
	}

	hasIncludes := false
	included := false
	for _, g := range pw.globs {
		if strings.HasPrefix(g, "!") {
			if matchGlob(g[1:], name) {
				return true
			}
			continue
		}
		hasIncludes = true
		if matchGlob(g, name) {
			included = true
		}
	}

	return hasIncludes && !included
}

func matchGlob(pattern, name string) bool {
	if i := strings.IndexByte(pattern, '{'); i >= 0 {
		if j := strings.IndexByte(pattern[i:], '}'); j >= 0 {
			prefix := pattern[:i]
			suffix := pattern[i+j+1:]
			for _, alt := range strings.Split(pattern[i+1:i+j], ",") {
				if matchGlob(prefix+alt+suffix, name) {
					return true
				}
			}
			return false
		}
	}
	matched, _ := filepath.Match(pattern, name)
	return matched
}

// WalkError reports a failure to open or read one directory during a walk.
type WalkError struct {
	Path string
	Err  error
}

func (e *WalkError) Error() string { return "discover: " + e.Path + ": " + e.Err.Error() }
func (e *WalkError) Unwrap() error { return e.Err }
