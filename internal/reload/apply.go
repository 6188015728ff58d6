package reload

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"

	"github.com/dl/chash"
)

// WeightLine is one "<id> <weight>" pair parsed from a weights file.
type WeightLine struct {
	ID     uint32
	Weight chash.Weight
}

// ParseWeights parses whitespace-separated "<id> <weight>" lines, skipping
// blank lines and '#' comments. Unlike internal/ingest's real-list format,
// a weights file never introduces new reals: it only retargets ids that
// are already registered with an Updater.
func ParseWeights(data []byte) ([]WeightLine, error) {
	var lines []WeightLine

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		fields := bytes.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("reload: line %d: want 2 fields \"id weight\", got %d", lineNo, len(fields))
		}

		id, err := strconv.ParseUint(string(fields[0]), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("reload: line %d: invalid id %q: %w", lineNo, fields[0], err)
		}
		weight, err := strconv.ParseUint(string(fields[1]), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("reload: line %d: invalid weight %q: %w", lineNo, fields[1], err)
		}

		lines = append(lines, WeightLine{ID: uint32(id), Weight: chash.Weight(weight)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reload: %w", err)
	}
	return lines, nil
}

// Apply replays a parsed weights file against u, painting lookup in place.
func Apply(u *chash.Updater[uint32], lines []WeightLine, lookup []uint32) {
	ids := make([]uint32, len(lines))
	weights := make([]chash.Weight, len(lines))
	for i, l := range lines {
		ids[i] = l.ID
		weights[i] = l.Weight
	}
	u.UpdateLookup(ids, weights, lookup)
}

// Reloader watches a weights file and replays every change against a live
// Updater and lookup array. OnReload, if set, is called after each
// successful apply (and OnError after a failed read or parse).
type Reloader struct {
	watcher *Watcher
	path    string
	u       *chash.Updater[uint32]
	lookup  []uint32

	OnReload func(lines []WeightLine)
	OnError  func(err error)
}

// NewReloader creates a Reloader for path, applying changes to u/lookup.
func NewReloader(path string, u *chash.Updater[uint32], lookup []uint32) (*Reloader, error) {
	w, err := New()
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, err
	}
	return &Reloader{watcher: w, path: path, u: u, lookup: lookup}, nil
}

// LoadInitial reads and applies the weights file's full current contents,
// for the startup pass before Run begins watching for changes.
func (r *Reloader) LoadInitial() error {
	data, err := r.watcher.ReadAll(r.path)
	if err != nil {
		return err
	}
	return r.applyData(data)
}

// Run watches the weights file until the done channel is closed,
// reparsing and reapplying on every modification event.
func (r *Reloader) Run(done <-chan struct{}) {
	events := r.watcher.Events()
	for {
		select {
		case <-done:
			r.watcher.Close()
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if evt.Err != nil {
				r.reportError(evt.Err)
				continue
			}
			if evt.Type == EventDeleted {
				continue
			}
			data, err := r.watcher.ReadNew(r.path)
			if err != nil {
				r.reportError(err)
				continue
			}
			if len(data) == 0 {
				continue
			}
			if err := r.applyData(data); err != nil {
				r.reportError(err)
			}
		}
	}
}

func (r *Reloader) applyData(data []byte) error {
	lines, err := ParseWeights(data)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	Apply(r.u, lines, r.lookup)
	if r.OnReload != nil {
		r.OnReload(lines)
	}
	return nil
}

func (r *Reloader) reportError(err error) {
	if r.OnError != nil {
		r.OnError(err)
	}
}
