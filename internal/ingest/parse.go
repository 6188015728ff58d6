package ingest

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"

	"github.com/dl/chash"
)

// Real is a backend identity parsed from a real-list line: a name (the
// bytes chash hashes and salts), the caller-assigned numeric id, and the
// administrative weight. Real satisfies chash.Real directly through Bytes.
type Real struct {
	Name   string
	ID     uint32
	Weight chash.Weight
}

// Bytes implements chash.Real.
func (r Real) Bytes() []byte { return []byte(r.Name) }

// ParseLines parses whitespace-separated "<name> <id> <weight>" lines, one
// real per line, skipping blank lines and lines starting with '#'.
func ParseLines(data []byte) ([]Real, error) {
	var reals []Real

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		fields := bytes.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("ingest: line %d: want 3 fields \"name id weight\", got %d", lineNo, len(fields))
		}

		id, err := strconv.ParseUint(string(fields[1]), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("ingest: line %d: invalid id %q: %w", lineNo, fields[1], err)
		}
		weight, err := strconv.ParseUint(string(fields[2]), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("ingest: line %d: invalid weight %q: %w", lineNo, fields[2], err)
		}

		reals = append(reals, Real{
			Name:   string(fields[0]),
			ID:     uint32(id),
			Weight: chash.Weight(weight),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	return reals, nil
}

// Split separates a parsed real list into the parallel slices chash.New
// expects.
func Split(reals []Real) ([]chash.Real, []uint32, []chash.Weight) {
	chashReals := make([]chash.Real, len(reals))
	ids := make([]uint32, len(reals))
	weights := make([]chash.Weight, len(reals))
	for i, r := range reals {
		chashReals[i] = r
		ids[i] = r.ID
		weights[i] = r.Weight
	}
	return chashReals, ids, weights
}
