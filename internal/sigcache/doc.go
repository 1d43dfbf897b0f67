// Package sigcache caches directory sizes keyed by canonical path.
//
// An entry is only trusted while the directory's shallow signature is
// unchanged and the entry is younger than the configured TTL. The cache is
// bounded and evicts the least recently used entry on overflow.
package sigcache
