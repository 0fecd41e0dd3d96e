// Package logs reads the diagnostic log written during render and send runs.
//
// Tail returns the last matching lines and the offset to resume from; Follow
// polls from an offset and streams new matching lines until the context ends.
package logs
