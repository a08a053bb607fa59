// Package cache provides the byte stores behind the audio vault: an
// in-memory layer (L1) and a persistent, zstd-compressed disk layer (L2)
// tied together by Tiered. Keys are arbitrary strings, including
// non-Latin scripts; the disk layer hashes them for file names.
package cache
