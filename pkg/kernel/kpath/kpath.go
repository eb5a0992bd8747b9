// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

// Package kpath implements the kernel's path string decomposition (C8),
// POSIX flavor only: find_part, remove_level, and combine over plain
// '/'-separated strings, with no volume concept.
package kpath

import "strings"

const separator = '/'

// Part names one of the decomposable pieces of a path string.
type Part int

const (
	FullPath Part = iota
	Volume
	Path
	Name
	NameExt
	Extension
	Node
)

// Span is a half-open [Start, End) byte range into the source string that
// was passed to FindPart. A zero-value Span with Start == End == 0 and Found
// == false means the requested part is absent.
type Span struct {
	Start int
	End   int
	Found bool
}

// Slice returns src[s.Start:s.End], or "" if the span was not found.
func (s Span) Slice(src string) string {
	if !s.Found {
		return ""
	}
	return src[s.Start:s.End]
}

// FindPart locates which of src identifies the requested Part. The POSIX
// backend has no volume, so Volume and Node always report not-found.
func FindPart(src string, which Part) Span {
	switch which {
	case Volume, Node:
		return Span{}
	case FullPath:
		return Span{Start: 0, End: len(src), Found: len(src) > 0}
	}

	lastSep := strings.LastIndexByte(src, separator)
	trailingSep := len(src) > 0 && src[len(src)-1] == separator

	pathEnd := 0
	if lastSep >= 0 {
		pathEnd = lastSep + 1
	}

	switch which {
	case Path:
		if pathEnd == 0 {
			return Span{}
		}
		return Span{Start: 0, End: pathEnd, Found: true}
	}

	if trailingSep {
		// A trailing separator means name/extension are absent entirely.
		return Span{}
	}

	nameStart := pathEnd
	nameEnd := len(src)
	if nameStart >= nameEnd {
		return Span{}
	}

	segment := src[nameStart:nameEnd]
	if segment == "." || segment == ".." {
		switch which {
		case Name, NameExt:
			return Span{Start: nameStart, End: nameEnd, Found: true}
		case Extension:
			return Span{}
		}
	}

	dot := strings.LastIndexByte(segment, '.')

	switch which {
	case NameExt:
		return Span{Start: nameStart, End: nameEnd, Found: true}
	case Name:
		if dot <= 0 {
			// No dot, or a dot-file whose only dot is position 0: the whole
			// segment is the name.
			return Span{Start: nameStart, End: nameEnd, Found: true}
		}
		return Span{Start: nameStart, End: nameStart + dot, Found: true}
	case Extension:
		if dot <= 0 {
			return Span{}
		}
		return Span{Start: nameStart + dot + 1, End: nameEnd, Found: true}
	}

	return Span{}
}

// RemoveLevel removes the trailing path segment from s, returning the
// truncated string and true, or s unchanged and false if there is nothing
// left to remove.
func RemoveLevel(s string) (string, bool) {
	trimmed := s
	if len(trimmed) > 0 && trimmed[len(trimmed)-1] == separator {
		trimmed = trimmed[:len(trimmed)-1]
	}
	idx := strings.LastIndexByte(trimmed, separator)
	if idx < 0 {
		return s, false
	}
	return trimmed[:idx+1], true
}

// Combine joins a and b with exactly one separator between them: a trailing
// separator on a is not duplicated, and a leading separator on b is
// skipped. Go strings have no fixed capacity, so there is no buffer-overflow
// failure mode to report here.
func Combine(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if b[0] == separator {
		b = b[1:]
	}
	if a[len(a)-1] == separator {
		return a + b
	}
	return a + string(separator) + b
}
