/*
Package book loads and builds story definitions ("books").

A book is an ordered list of states plus the sounds they play. State index 0 is the
initial state. Books are immutable once built; a book may own on-disk assets (e.g. an
extracted archive) which are released by Close.

Books come from YAML (or JSON) documents, zip archives containing such a document
next to its sound files, or the fluent Builder:

	b := book.New("demo")
	b.Sound("hello", sound.Definition{Speech: "Hello, who is there?"})
	b.State("greet").Sounds("hello").End("bye")
	b.State("bye").Terminal()
	bk, err := b.Build()
*/
package book
