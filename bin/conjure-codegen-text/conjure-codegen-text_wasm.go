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

//go:build tinygo

package main

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"unsafe"

	"github.com/palantir/conjure-sub003/codegen"
)

var buffers = make(map[*uint8][]uint8)

//go:export conjure_codegen_allocate
func conjureCodegenAllocate(len uint32) *uint8 {
	if len > math.MaxInt32 {
		return nil
	}
	buf := make([]uint8, int(len))
	ptr := unsafe.SliceData(buf)
	buffers[ptr] = buf
	return ptr
}

//go:export conjure_codegen_generate
func conjureCodegenGenerate(requestPtr *uint8, responsePtrPtr **uint8) uint8 {
	requestLen := binary.LittleEndian.Uint32(unsafe.Slice(requestPtr, 4))
	requestBuf := unsafe.Slice((*uint8)(unsafe.Add(unsafe.Pointer(requestPtr), 4)), requestLen)

	var req codegen.Request
	var resp *codegen.Response
	if err := json.Unmarshal(requestBuf, &req); err != nil {
		resp = &codegen.Response{Error: fmt.Sprintf("decode request: %v", err)}
	} else {
		resp = generate(&req)
	}

	rc := uint8(0)
	if resp.Error != "" {
		rc = 1
	}
	body, err := json.Marshal(resp)
	if err != nil {
		body = []byte(fmt.Sprintf(`{"outputFiles":[],"error":%q}`, err.Error()))
		rc = 1
	}
	response := binary.LittleEndian.AppendUint32(make([]byte, 0, 4+len(body)), uint32(len(body)))
	response = append(response, body...)
	responsePtr := unsafe.SliceData(response)
	buffers[responsePtr] = response
	*responsePtrPtr = responsePtr
	return rc
}
