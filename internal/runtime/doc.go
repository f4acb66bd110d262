// Package runtime implements the transition engine that drives a book.
//
// The Machine is single-threaded and tick-driven: an external driver calls Update
// repeatedly; each call performs at most one transition and never blocks.
package runtime
