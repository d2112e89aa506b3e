package swapper

// readVector reads the count pages starting at firstPageID into bufs (one
// buffer per page, all pageSize bytes) using a single positioned scatter
// read when the stripe handle supports VectorIO and the pages are
// contiguous within one stripe; otherwise it falls back to the scalar
// per-page loop (spec §4.F). Vectored and scalar paths are required to
// produce byte-identical results — only their syscall count differs.
func (s *Swapper) readVector(firstPageID int64, bufs [][]byte) error {
	if !s.hasFastPath {
		return s.readVectorScalar(firstPageID, bufs)
	}

	index := s.stripes.indexFor(firstPageID)
	if !s.contiguousStripe(firstPageID, len(bufs), index) {
		return s.readVectorScalar(firstPageID, bufs)
	}

	// On a closed-channel failure the whole batch is restarted against the
	// healed handle rather than resuming mid-batch (spec §9 open question
	// (a)): the source effectively does the same via tail recursion.
	attempts := 0
	for {
		v := s.stripes.at(index).(VectorIO)
		offset := firstPageID * int64(s.pageSize)
		n, err := v.ReadVectorAt(bufs, offset)
		if err != nil {
			if isClosedChannelErr(err) && attempts < s.retryBudget {
				attempts++
				if herr := s.healStripe(index); herr != nil {
					return herr
				}
				continue
			}
			if isClosedChannelErr(err) {
				return &IoInterrupted{Op: "readv", Path: s.path, Attempts: attempts, Err: err}
			}
			return &IoFailure{Op: "readv", Path: s.path, Err: err}
		}
		zeroFillTail(bufs, n)
		return nil
	}
}

// writeVector writes count pages starting at firstPageID from bufs using a
// single positioned gather write when possible, else the scalar loop.
func (s *Swapper) writeVector(firstPageID int64, bufs [][]byte) error {
	if !s.hasFastPath {
		return s.writeVectorScalar(firstPageID, bufs)
	}

	index := s.stripes.indexFor(firstPageID)
	if !s.contiguousStripe(firstPageID, len(bufs), index) {
		return s.writeVectorScalar(firstPageID, bufs)
	}

	offset := firstPageID * int64(s.pageSize)
	s.fileSize.increaseTo(offset + int64(s.pageSize)*int64(len(bufs)))

	attempts := 0
	for {
		v := s.stripes.at(index).(VectorIO)
		_, err := v.WriteVectorAt(bufs, offset)
		if err != nil {
			if isClosedChannelErr(err) && attempts < s.retryBudget {
				attempts++
				if herr := s.healStripe(index); herr != nil {
					return herr
				}
				continue
			}
			if isClosedChannelErr(err) {
				return &IoInterrupted{Op: "writev", Path: s.path, Attempts: attempts, Err: err}
			}
			return &IoFailure{Op: "writev", Path: s.path, Err: err}
		}
		return nil
	}
}

// contiguousStripe reports whether all `count` pages starting at
// firstPageID resolve to the same stripe index, the precondition for one
// preadv/pwritev call to serve them all.
func (s *Swapper) contiguousStripe(firstPageID int64, count int, index int) bool {
	for i := 1; i < count; i++ {
		if s.stripes.indexFor(firstPageID+int64(i)) != index {
			return false
		}
	}
	return true
}

// zeroFillTail zeros whatever portion of bufs a short vectored read left
// unfilled, matching the scalar path's short-read semantics.
func zeroFillTail(bufs [][]byte, n int64) {
	remaining := n
	for _, b := range bufs {
		if remaining >= int64(len(b)) {
			remaining -= int64(len(b))
			continue
		}
		start := remaining
		if start < 0 {
			start = 0
		}
		for i := start; i < int64(len(b)); i++ {
			b[i] = 0
		}
		remaining = 0
	}
}

// readVectorScalar and writeVectorScalar are the fallback used when the
// handle has no VectorIO fast path, or the requested pages straddle more
// than one stripe: each page is read/written through the scalar engine
// independently.
func (s *Swapper) readVectorScalar(firstPageID int64, bufs [][]byte) error {
	for i, b := range bufs {
		if err := s.readScalar(firstPageID+int64(i), b); err != nil {
			return err
		}
	}
	return nil
}

func (s *Swapper) writeVectorScalar(firstPageID int64, bufs [][]byte) error {
	for i, b := range bufs {
		if err := s.writeScalar(firstPageID+int64(i), b); err != nil {
			return err
		}
	}
	return nil
}
