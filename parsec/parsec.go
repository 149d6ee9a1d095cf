// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

// Package parsec is a small backtracking parser-combinator toolkit.
//
// A [Parser] consumes characters from a [Cursor]. Parsers fail with a
// [*Error], which is either soft (the input did not start the way the parser
// expected, so an alternative may be tried) or hard (the parser committed to
// a production and found malformed input).
package parsec

// EndOfInput is returned by [Cursor.Curr] once every character has been
// consumed.
const EndOfInput rune = -1

// A Cursor is a position within an input string, plus a stack of saved
// positions used for backtracking.
type Cursor struct {
	src   []rune
	pos   int
	marks []int
}

func NewCursor(src string) *Cursor {
	return &Cursor{src: []rune(src)}
}

// Curr returns the character under the cursor, or [EndOfInput].
func (c *Cursor) Curr() rune {
	if c.pos < len(c.src) {
		return c.src[c.pos]
	}
	return EndOfInput
}

// Next advances past the current character and returns the new current
// character. At end of input it stays put and returns [EndOfInput].
func (c *Cursor) Next() rune {
	if c.pos < len(c.src) {
		c.pos++
	}
	return c.Curr()
}

// Mark saves the current position.
func (c *Cursor) Mark() {
	c.marks = append(c.marks, c.pos)
}

// Rewind restores the most recently saved position and discards it.
func (c *Cursor) Rewind() {
	n := len(c.marks) - 1
	if n < 0 {
		panic("parsec: Rewind without matching Mark")
	}
	c.pos = c.marks[n]
	c.marks = c.marks[:n]
}

// Release discards the most recently saved position without moving.
func (c *Cursor) Release() {
	n := len(c.marks) - 1
	if n < 0 {
		panic("parsec: Release without matching Mark")
	}
	c.marks = c.marks[:n]
}

// Depth is the number of outstanding marks.
func (c *Cursor) Depth() int {
	return len(c.marks)
}

// Offset is the number of characters consumed so far.
func (c *Cursor) Offset() int {
	return c.pos
}

// Line is the 1-based line number of the current position.
func (c *Cursor) Line() int {
	return c.lineAt(c.pos)
}

func (c *Cursor) lineAt(offset int) int {
	line := 1
	for _, r := range c.src[:offset] {
		if r == '\n' {
			line++
		}
	}
	return line
}

// Peek returns up to n characters starting at the current position.
func (c *Cursor) Peek(n int) string {
	return c.textAt(c.pos, n)
}

func (c *Cursor) textAt(offset, n int) string {
	end := min(offset+n, len(c.src))
	return string(c.src[offset:end])
}

// A Parser consumes a prefix of the cursor's remaining input.
type Parser[T any] func(c *Cursor) (T, error)

// Parse runs p over the whole of src. Input left over after p succeeds is
// an error.
func Parse[T any](p Parser[T], src string) (T, error) {
	return EOF(p)(NewCursor(src))
}

// Gingerly runs p, restoring the cursor to its starting position if p fails.
func Gingerly[T any](p Parser[T]) Parser[T] {
	return func(c *Cursor) (T, error) {
		depth := c.Depth()
		c.Mark()
		v, err := p(c)
		if c.Depth() != depth+1 {
			panic("parsec: unbalanced marks")
		}
		if err != nil {
			c.Rewind()
			var zero T
			return zero, err
		}
		c.Release()
		return v, nil
	}
}

// Or tries each alternative in order and returns the first success.
//
// Soft failures are skipped. If no alternative succeeds the error is the hard
// failure that got furthest into the input (the earliest alternative wins
// ties), or a soft failure naming description if every alternative failed
// softly.
func Or[T any](description string, alternatives ...Parser[T]) Parser[T] {
	return func(c *Cursor) (T, error) {
		var zero T
		var best *Error
		for _, alt := range alternatives {
			v, err := Gingerly(alt)(c)
			if err == nil {
				return v, nil
			}
			perr := asError(c, c.Offset(), err)
			if perr.soft {
				continue
			}
			if best == nil || perr.offset > best.offset {
				best = perr
			}
		}
		if best != nil {
			return zero, best
		}
		return zero, errNoMatch(c, c.Offset(), description)
	}
}

// Prefix runs discard then keep, returning keep's result.
func Prefix[T, U any](discard Parser[U], keep Parser[T]) Parser[T] {
	return func(c *Cursor) (T, error) {
		if _, err := discard(c); err != nil {
			var zero T
			return zero, err
		}
		return keep(c)
	}
}

// Whitespace runs p after skipping any leading whitespace.
func Whitespace[T any](p Parser[T]) Parser[T] {
	return Prefix(SkipWhitespace(), p)
}

// SkipWhitespace consumes zero or more whitespace characters. It never fails.
func SkipWhitespace() Parser[string] {
	return func(c *Cursor) (string, error) {
		start := c.Offset()
		for isSpace(c.Curr()) {
			c.Next()
		}
		return c.textAt(start, c.Offset()-start), nil
	}
}

// EOF runs p and then requires that the input is exhausted, allowing only
// trailing whitespace.
func EOF[T any](p Parser[T]) Parser[T] {
	return func(c *Cursor) (T, error) {
		var zero T
		v, err := p(c)
		if err != nil {
			return zero, err
		}
		for isSpace(c.Curr()) {
			c.Next()
		}
		if c.Curr() != EndOfInput {
			return zero, errTrailingInput(c, c.Offset())
		}
		return v, nil
	}
}

// Apply transforms the result of p. An error from fn is reported as a hard
// failure positioned at the start of the text p consumed.
func Apply[T, U any](p Parser[T], fn func(T) (U, error)) Parser[U] {
	return func(c *Cursor) (U, error) {
		var zero U
		start := c.Offset()
		v, err := p(c)
		if err != nil {
			return zero, err
		}
		u, err := fn(v)
		if err != nil {
			return zero, errRejected(c, start, err)
		}
		return u, nil
	}
}

// Hard converts any soft failure of p into a hard one. It marks the point
// after which a production is committed.
func Hard[T any](p Parser[T]) Parser[T] {
	return func(c *Cursor) (T, error) {
		v, err := p(c)
		if err != nil {
			return v, harden(asError(c, c.Offset(), err))
		}
		return v, nil
	}
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
