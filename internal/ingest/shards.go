package ingest

import (
	"fmt"

	"github.com/dl/chash/internal/uring"
)

// LoadShards reads every shard path with a single pipelined io_uring batch
// and parses each one, concatenating the results in input order. Meant for
// the case where a fleet's real list is split across one file per shard
// (per rack, per datacenter) rather than living in one file.
func LoadShards(paths []string) ([]Real, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	blobs, errs := uring.BatchReadFiles(paths)

	var reals []Real
	for i, path := range paths {
		if errs[i] != nil {
			return nil, fmt.Errorf("ingest: shard %s: %w", path, errs[i])
		}
		parsed, err := ParseLines(blobs[i])
		if err != nil {
			return nil, fmt.Errorf("ingest: shard %s: %w", path, err)
		}
		reals = append(reals, parsed...)
	}
	return reals, nil
}
