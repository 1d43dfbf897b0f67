// Package scan sizes directories and ranks their contents.
//
// A Scanner sizes the direct children of a directory concurrently on a shared
// worker pool, reusing cached subtree sizes while a directory's shallow
// signature is unchanged. FindTopK walks a whole tree once and keeps the K
// largest subfolders that do not contain one another. Delete moves entries to
// the trash, or removes them, and drops the affected cache entries.
//
// Cancellation is cooperative: the context is polled before every directory
// and file, never interrupting a system call in flight.
package scan
