package ingest

import (
	"fmt"
	"io"
	"os"
)

// ReadStdin reads an entire real list from stdin, for the common "pipe the
// output of the fleet inventory tool straight in" invocation.
func ReadStdin() ([]Real, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("ingest: reading stdin: %w", err)
	}
	reals, err := ParseLines(data)
	if err != nil {
		return nil, fmt.Errorf("ingest: stdin: %w", err)
	}
	return reals, nil
}
