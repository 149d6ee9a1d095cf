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

package compiler

import (
	"fmt"

	"github.com/palantir/conjure-sub003/names"
)

type Warning struct {
	code    uint32
	message string
	path    string
}

func (w *Warning) String() string {
	return fmt.Sprintf("W%d: %s", w.code, w.message)
}

func (w *Warning) Code() uint32 {
	return w.code
}

func (w *Warning) Message() string {
	return w.message
}

func (w *Warning) Path() string {
	return w.path
}

func warnFieldNameCase(path string, owner names.TypeName, field names.FieldName) *Warning {
	return &Warning{
		code: 6000,
		message: fmt.Sprintf(
			"Field '%s' of %s is %s; prefer %s ('%s')",
			field, owner, field.Case(), names.CamelCase,
			field.ToCase(names.CamelCase),
		),
		path: path,
	}
}

func warnUnusedImport(path string, ns names.Namespace) *Warning {
	return &Warning{
		code:    6001,
		message: fmt.Sprintf("Import of namespace '%s' is unused", ns),
		path:    path,
	}
}
