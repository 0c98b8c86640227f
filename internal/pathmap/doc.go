// Package pathmap translates host filesystem paths into container paths
// through an ordered list of bind-mount volume mappings.
//
// Matching is done on whole path segments, so a root of /build never
// matches /build-extra. Container paths are always emitted with forward
// slashes because the container is a Linux environment regardless of the
// host operating system.
//
// Everything in this package is a pure function: no I/O, no global state.
package pathmap
