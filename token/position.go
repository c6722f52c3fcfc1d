// Copyright 2018 The CUE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package token tracks source positions for Firestarter grammars and
// Tinder scripts. Unlike a conventional lexer's token package, there is
// no token kind here: source text is parsed directly by PEG rules, and
// a Pos is simply a byte offset resolved against a File's line table.
package token

import "fmt"

// A Position describes a printable source location: a filename, a byte
// offset, and the 1-based line/column it corresponds to.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

// IsValid reports whether the position has a known line.
func (pos Position) IsValid() bool { return pos.Line > 0 }

func (pos Position) String() string {
	s := pos.Filename
	if pos.IsValid() {
		if s != "" {
			s += ":"
		}
		s += fmt.Sprintf("%d:%d", pos.Line, pos.Column)
	}
	if s == "" {
		s = "-"
	}
	return s
}

// A File tracks line-start offsets for one piece of source text so that
// byte offsets (as produced by peg.Match spans) can be converted to
// line/column positions on demand.
type File struct {
	name  string
	size  int
	lines []int // byte offset of the first byte of each line; lines[0] == 0
}

// NewFile builds a File's line table from src and records len(src) as
// its Size. File retains no copy of src.
func NewFile(name string, src []byte) *File {
	f := &File{name: name, size: len(src), lines: []int{0}}
	for i, b := range src {
		if b == '\n' && i+1 < len(src) {
			f.lines = append(f.lines, i+1)
		}
	}
	return f
}

// Name returns the file's name.
func (f *File) Name() string { return f.name }

// Size returns the number of bytes in the file's source text.
func (f *File) Size() int { return f.size }

// Pos returns a printable Position for the given byte offset.
func (f *File) Pos(offset int) Position {
	if f == nil || offset < 0 {
		return Position{}
	}
	line := searchLines(f.lines, offset)
	lineStart := f.lines[line]
	return Position{
		Filename: f.name,
		Offset:   offset,
		Line:     line + 1,
		Column:   offset - lineStart + 1,
	}
}

// searchLines returns the index of the last line whose start offset is
// <= offset.
func searchLines(lines []int, offset int) int {
	lo, hi := 0, len(lines)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if lines[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// LineText returns the full text of the 1-based line that contains
// offset, given the original source text.
func (f *File) LineText(src string, offset int) string {
	pos := f.Pos(offset)
	lineStart := f.lines[pos.Line-1]
	lineEnd := len(src)
	if pos.Line < len(f.lines) {
		lineEnd = f.lines[pos.Line] - 1 // exclude the trailing newline
	}
	if lineEnd < lineStart {
		lineEnd = lineStart
	}
	if lineEnd > len(src) {
		lineEnd = len(src)
	}
	return src[lineStart:lineEnd]
}
