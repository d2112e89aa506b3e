package swapper

// Evicted notifies the currently installed eviction callback, if any, that
// pageID was evicted from the enclosing cache (spec §4.H). It is a no-op
// once Close has cleared the callback, so large translation structures the
// callback closes over can be released even while pages remain bound in
// the cache until its eviction threads drain.
func (s *Swapper) Evicted(pageID int64) {
	s.evictMu.Lock()
	cb := s.onEvict
	s.evictMu.Unlock()
	if cb != nil {
		cb(pageID)
	}
}
