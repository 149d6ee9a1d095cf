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

package parsec

import (
	"fmt"
	"strings"
)

// Expect matches the literal token s. On mismatch nothing is consumed.
func Expect(s string) Parser[string] {
	want := []rune(s)
	return func(c *Cursor) (string, error) {
		start := c.Offset()
		if c.textAt(start, len(want)) != s {
			return "", errNoMatch(c, start, fmt.Sprintf("'%s'", s))
		}
		for range want {
			c.Next()
		}
		return s, nil
	}
}

// Keyword matches the literal s when it is not immediately followed by an
// identifier character, so "list" does not match the start of "listy".
func Keyword(s string) Parser[string] {
	expect := Expect(s)
	return Gingerly(func(c *Cursor) (string, error) {
		start := c.Offset()
		if _, err := expect(c); err != nil {
			return "", err
		}
		if IsIdentifierChar(c.Curr()) {
			return "", errNoMatch(c, start, fmt.Sprintf("keyword '%s'", s))
		}
		return s, nil
	})
}

// IsIdentifierChar reports whether r may appear within an identifier.
func IsIdentifierChar(r rune) bool {
	return r == '_' ||
		('a' <= r && r <= 'z') ||
		('A' <= r && r <= 'Z') ||
		('0' <= r && r <= '9')
}

// RawString matches a non-empty run of characters accepted by allowed. If
// first is not nil, the first character must also be accepted by first.
func RawString(description string, allowed, first func(rune) bool) Parser[string] {
	return func(c *Cursor) (string, error) {
		start := c.Offset()
		if first != nil && !first(c.Curr()) {
			return "", errNoMatch(c, start, description)
		}
		var buf strings.Builder
		for r := c.Curr(); r != EndOfInput && allowed(r); r = c.Next() {
			buf.WriteRune(r)
		}
		if buf.Len() == 0 {
			return "", errNoMatch(c, start, description)
		}
		return buf.String(), nil
	}
}

// QuotedString matches a double-quoted string with backslash escapes for
// '"', '\\', 'n' and 't'.
func QuotedString() Parser[string] {
	return func(c *Cursor) (string, error) {
		start := c.Offset()
		if c.Curr() != '"' {
			return "", errNoMatch(c, start, "a quoted string")
		}
		var buf strings.Builder
		for r := c.Next(); ; r = c.Next() {
			switch r {
			case EndOfInput:
				return "", errUnterminatedString(c, start)
			case '"':
				c.Next()
				return buf.String(), nil
			case '\\':
				esc := c.Next()
				switch esc {
				case '"', '\\':
					buf.WriteRune(esc)
				case 'n':
					buf.WriteRune('\n')
				case 't':
					buf.WriteRune('\t')
				case EndOfInput:
					return "", errUnterminatedString(c, start)
				default:
					return "", errInvalidEscape(c, c.Offset()-1, esc)
				}
			default:
				buf.WriteRune(r)
			}
		}
	}
}

// Between matches open, inner and close in sequence and returns inner's
// result. Once open has matched, any later failure is hard.
func Between[T, O, C any](open Parser[O], inner Parser[T], close Parser[C]) Parser[T] {
	return func(c *Cursor) (T, error) {
		var zero T
		if _, err := open(c); err != nil {
			return zero, err
		}
		v, err := Hard(inner)(c)
		if err != nil {
			return zero, err
		}
		if _, err := Hard(close)(c); err != nil {
			return zero, err
		}
		return v, nil
	}
}

// LiberalBetween is [Between] with literal delimiters, allowing whitespace
// around each part.
func LiberalBetween[T any](open string, inner Parser[T], close string) Parser[T] {
	return Between(
		Whitespace(Expect(open)),
		Whitespace(inner),
		Whitespace(Expect(close)),
	)
}

// A Pair is the result of [KeyValue].
type Pair[K, V any] struct {
	Key   K
	Value V
}

// KeyValue matches key, separator and value. A missing separator is a soft
// failure; a missing value after the separator is hard.
func KeyValue[K, S, V any](key Parser[K], separator Parser[S], value Parser[V]) Parser[Pair[K, V]] {
	return func(c *Cursor) (Pair[K, V], error) {
		var zero Pair[K, V]
		start := c.Offset()
		k, err := Gingerly(key)(c)
		if err != nil {
			return zero, err
		}
		if _, err := Gingerly(separator)(c); err != nil {
			return zero, err
		}
		v, err := Gingerly(value)(c)
		if err != nil {
			perr := asError(c, c.Offset(), err)
			if perr.soft {
				return zero, errMissingValue(c, start, k)
			}
			return zero, perr
		}
		return Pair[K, V]{Key: k, Value: v}, nil
	}
}

// List matches zero or more items separated by separator. A separator that
// is not followed by an item is left unconsumed.
func List[T, S any](item Parser[T], separator Parser[S]) Parser[[]T] {
	return func(c *Cursor) ([]T, error) {
		var items []T
		next := Gingerly(item)
		for {
			v, err := next(c)
			if err != nil {
				if perr := asError(c, c.Offset(), err); perr.soft {
					return items, nil
				}
				return nil, err
			}
			items = append(items, v)
			next = Gingerly(Prefix(separator, item))
		}
	}
}

// MapOf matches zero or more entries of key followed by value, with entries
// separated by separator. A key without a value and a repeated key are both
// hard failures.
func MapOf[K comparable, V, S any](key Parser[K], value Parser[V], separator Parser[S]) Parser[map[K]V] {
	return func(c *Cursor) (map[K]V, error) {
		entries := make(map[K]V)
		for first := true; ; first = false {
			if !first {
				if _, err := Gingerly(separator)(c); err != nil {
					return entries, nil
				}
			}
			start := c.Offset()
			k, err := Gingerly(key)(c)
			if err != nil {
				if perr := asError(c, start, err); perr.soft && first {
					return entries, nil
				}
				return nil, harden(asError(c, start, err))
			}
			v, err := Gingerly(value)(c)
			if err != nil {
				if perr := asError(c, c.Offset(), err); !perr.soft {
					return nil, perr
				}
				return nil, errMissingValue(c, start, k)
			}
			if _, dup := entries[k]; dup {
				return nil, errDuplicateKey(c, start, k)
			}
			entries[k] = v
		}
	}
}

// Dispatch reads a directive word and hands the rest of the input to the
// parser registered for it. An unregistered directive falls back to
// fallback when it is not nil, and is a hard failure otherwise.
func Dispatch[T any](description string, directives map[string]Parser[T], fallback Parser[T]) Parser[T] {
	word := RawString(description, IsIdentifierChar, nil)
	return func(c *Cursor) (T, error) {
		var zero T
		start := c.Offset()
		c.Mark()
		directive, err := word(c)
		if err == nil {
			if p, ok := directives[directive]; ok {
				c.Release()
				return p(c)
			}
		}
		c.Rewind()
		if fallback != nil {
			return fallback(c)
		}
		if err != nil {
			return zero, err
		}
		return zero, errUnknownDirective(c, start, directive)
	}
}
