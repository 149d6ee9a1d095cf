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

package irjson

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
)

var compressionNames = [...]string{
	CompressionNone: "none",
	CompressionGzip: "gzip",
	CompressionZstd: "zstd",
}

func (c Compression) String() string {
	return compressionNames[c]
}

// Extension is the file name suffix conventionally used for c.
func (c Compression) Extension() string {
	switch c {
	case CompressionNone:
		return ""
	case CompressionGzip:
		return ".gz"
	case CompressionZstd:
		return ".zst"
	}
	panic("unreachable")
}

// ParseCompression accepts the names returned by [Compression.String]. The
// empty string means none.
func ParseCompression(name string) (Compression, error) {
	if name == "" {
		return CompressionNone, nil
	}
	for c, cName := range compressionNames {
		if cName == name {
			return Compression(c), nil
		}
	}
	return 0, fmt.Errorf("unknown compression %q (expected none, gzip or zstd)", name)
}

var (
	gzipMagic = []byte{0x1F, 0x8B}
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
)

// Write writes data to w, compressed with c.
func Write(w io.Writer, data []byte, c Compression) error {
	var zw io.WriteCloser
	switch c {
	case CompressionNone:
		_, err := w.Write(data)
		return err
	case CompressionGzip:
		zw = gzip.NewWriter(w)
	case CompressionZstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("irjson: %w", err)
		}
		zw = enc
	default:
		panic("unreachable")
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return fmt.Errorf("irjson: %s: %w", c, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("irjson: %s: %w", c, err)
	}
	return nil
}

// Read reads all of r, decompressing it if it starts with a gzip or zstd
// frame header.
func Read(r io.Reader) ([]byte, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(len(zstdMagic))
	if err != nil && err != io.EOF {
		return nil, err
	}
	switch {
	case bytes.HasPrefix(header, zstdMagic):
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("irjson: zstd: %w", err)
		}
		defer dec.Close()
		out, err := io.ReadAll(dec)
		if err != nil {
			return nil, fmt.Errorf("irjson: zstd: %w", err)
		}
		return out, nil
	case bytes.HasPrefix(header, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("irjson: gzip: %w", err)
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("irjson: gzip: %w", err)
		}
		return out, nil
	}
	return io.ReadAll(br)
}
