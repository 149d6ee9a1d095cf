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

package names

import (
	"regexp"
	"strings"
)

// Case is one of the spellings a [FieldName] may use.
type Case uint8

const (
	CamelCase Case = iota
	KebabCase
	SnakeCase
)

var caseNames = [...]string{
	CamelCase: "lowerCamelCase",
	KebabCase: "kebab-case",
	SnakeCase: "snake_case",
}

func (c Case) String() string {
	return caseNames[c]
}

var fieldNameRegexps = [...]*regexp.Regexp{
	CamelCase: regexp.MustCompile(`^[a-z][a-z0-9]+([A-Z][a-z0-9]+)*$`),
	KebabCase: regexp.MustCompile(`^[a-z][a-z0-9]+(-[a-z][a-z0-9]+)*$`),
	SnakeCase: regexp.MustCompile(`^[a-z][a-z0-9]+(_[a-z][a-z0-9]+)*$`),
}

// FieldNamePatterns lists the accepted field name patterns, one per [Case].
func FieldNamePatterns() []string {
	patterns := make([]string, len(fieldNameRegexps))
	for ii, re := range fieldNameRegexps {
		patterns[ii] = re.String()
	}
	return patterns
}

// A FieldName names an object field, union variant or error argument.
type FieldName struct {
	name     string
	nameCase Case
}

func NewFieldName(name string) (FieldName, error) {
	for c, re := range fieldNameRegexps {
		if re.MatchString(name) {
			return FieldName{name, Case(c)}, nil
		}
	}
	return FieldName{}, errInvalidFieldName(name)
}

func MustFieldName(name string) FieldName {
	return must(NewFieldName(name))
}

func (n FieldName) String() string {
	return n.name
}

func (n FieldName) Case() Case {
	return n.nameCase
}

// ToCase respells the name in another case. Words are split at hyphens,
// underscores, or upper-case letters depending on the current case.
func (n FieldName) ToCase(c Case) FieldName {
	if c == n.nameCase {
		return n
	}
	words := n.words()
	var out strings.Builder
	for ii, word := range words {
		switch c {
		case CamelCase:
			if ii > 0 {
				word = strings.ToUpper(word[:1]) + word[1:]
			}
		case KebabCase:
			if ii > 0 {
				out.WriteByte('-')
			}
		case SnakeCase:
			if ii > 0 {
				out.WriteByte('_')
			}
		default:
			panic("unreachable")
		}
		out.WriteString(word)
	}
	return FieldName{out.String(), c}
}

func (n FieldName) words() []string {
	switch n.nameCase {
	case KebabCase:
		return strings.Split(n.name, "-")
	case SnakeCase:
		return strings.Split(n.name, "_")
	case CamelCase:
		var words []string
		start := 0
		for ii := 1; ii < len(n.name); ii++ {
			if b := n.name[ii]; 'A' <= b && b <= 'Z' {
				words = append(words, n.name[start:ii])
				start = ii
			}
		}
		words = append(words, n.name[start:])
		for ii, word := range words {
			words[ii] = strings.ToLower(word)
		}
		return words
	}
	panic("unreachable")
}
