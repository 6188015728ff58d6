package uring

import "fmt"

// shardOp tracks one shard file's progress through openat -> statx -> read
// -> close across several SubmitAndWait rounds.
type shardOp struct {
	path  string
	pathC []byte
	fd    int32
	statx Statx
	buf   []byte
	err   error
}

// BatchReadFiles reads every path in paths using a single Ring, pipelining
// the openat/statx/read/close sequence for all files through the
// submission queue round by round rather than serially per file. Returns
// one byte slice per input path, nil where the shard failed to read (the
// error is reported through a non-nil entry in the returned error slice).
func BatchReadFiles(paths []string) ([][]byte, []error) {
	out := make([][]byte, len(paths))
	errs := make([]error, len(paths))
	if len(paths) == 0 {
		return out, errs
	}

	ring, err := NewRing(uint32(nextPow2(len(paths))))
	if err != nil {
		for i := range errs {
			errs[i] = fmt.Errorf("uring: %w", err)
		}
		return out, errs
	}
	defer ring.Close()

	ops := make([]*shardOp, len(paths))
	for i, p := range paths {
		ops[i] = &shardOp{path: p, pathC: append([]byte(p), 0)}
	}

	runRound(ring, ops, func(op *shardOp, sqe *SQE) {
		sqe.PrepOpenat(ATFdCwd(), &op.pathC[0], 0 /*O_RDONLY*/, 0)
	}, func(op *shardOp, cqe *CQE) {
		if cqe.Res < 0 {
			op.err = fmt.Errorf("open %s: errno %d", op.path, -cqe.Res)
			return
		}
		op.fd = cqe.Res
	})

	empty := []byte{0}
	runRound(ring, ops, func(op *shardOp, sqe *SQE) {
		if op.err != nil {
			sqe.PrepStatx(-1, &empty[0], 0, StatxSizeMask(), &op.statx)
			return
		}
		sqe.PrepStatx(op.fd, &empty[0], ATEmptyPath(), StatxSizeMask(), &op.statx)
	}, func(op *shardOp, cqe *CQE) {
		if op.err != nil || cqe.Res < 0 {
			if op.err == nil {
				op.err = fmt.Errorf("statx %s: errno %d", op.path, -cqe.Res)
			}
			return
		}
	})

	runRound(ring, ops, func(op *shardOp, sqe *SQE) {
		if op.err != nil || op.statx.Size == 0 {
			sqe.PrepRead(-1, &empty[0], 0, 0)
			return
		}
		op.buf = make([]byte, op.statx.Size)
		sqe.PrepRead(op.fd, &op.buf[0], uint32(op.statx.Size), 0)
	}, func(op *shardOp, cqe *CQE) {
		if op.err != nil {
			return
		}
		if cqe.Res < 0 {
			op.err = fmt.Errorf("read %s: errno %d", op.path, -cqe.Res)
			return
		}
		op.buf = op.buf[:cqe.Res]
	})

	runRound(ring, ops, func(op *shardOp, sqe *SQE) {
		if op.fd > 0 {
			sqe.PrepClose(op.fd)
			return
		}
		sqe.PrepClose(-1)
	}, func(op *shardOp, cqe *CQE) {})

	for i, op := range ops {
		if op.err == nil {
			out[i] = op.buf
		}
		errs[i] = op.err
	}
	return out, errs
}

// runRound submits one SQE per op (via prep) and applies handle to each
// resulting CQE, matched back to its op by submission order.
func runRound(ring *Ring, ops []*shardOp, prep func(*shardOp, *SQE), handle func(*shardOp, *CQE)) {
	for i, op := range ops {
		sqe := ring.GetSQE(uint32(i))
		prep(op, sqe)
		sqe.UserData = uint64(i)
	}

	results := make(map[uint64]CQE, len(ops))
	ring.SubmitAndWait(uint32(len(ops)), func(cqe *CQE) {
		results[cqe.UserData] = *cqe
	})

	for i, op := range ops {
		if cqe, ok := results[uint64(i)]; ok {
			handle(op, &cqe)
		}
	}
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	if p == 0 {
		p = 1
	}
	return p
}
