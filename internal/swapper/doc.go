// Package swapper implements the lowest layer of a paged storage engine: a
// single-file page swapper that translates fixed-size page reads and writes
// into positioned I/O against one backing file.
//
// A Swapper is the substrate an in-memory buffer pool is built on top of —
// it does not itself track dirty pages, replace pages, log transactions, or
// recover from a crash; those are the job of the enclosing cache (see
// internal/pagecache for a minimal example of one). What a Swapper does
// provide:
//
//   - striping reads/writes across K independent handles to the same file
//     to avoid a single-handle positioned-I/O bottleneck under concurrency;
//   - transparent reopen of a handle that was closed out from under an
//     in-flight call, so the caller never observes the closure;
//   - a file-size register that never silently shrinks except via Truncate;
//   - an advisory exclusive region lock so two Swapper instances cannot
//     open the same file at once (skipped on platforms where such a lock
//     would break channel striping; see lock.go);
//   - a vectored (gather/scatter) fast path for flushing a run of
//     consecutive pages in one syscall, with a scalar per-page fallback;
//   - deterministic zero-fill semantics for any byte past the current
//     logical end of file, so a reader never observes undefined content.
package swapper
