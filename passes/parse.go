// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package passes

import "strings"

// Parse splits a pass dump into pass names.
//
// Lines starting with '#' are comments. Every other non-empty line is one
// pass name, kept verbatim (no trimming, no case folding). Both '\n' and
// '\r' end a line. The returned strings do not alias dump.
func Parse(dump string) []string {
	var list []string
	pos := 0
	for pos < len(dump) {
		end := pos
		for end < len(dump) && !isLineEnd(dump[end]) {
			end++
		}
		if end > pos && dump[pos] != '#' {
			list = append(list, strings.Clone(dump[pos:end]))
		}
		for end < len(dump) && isLineEnd(dump[end]) {
			end++
		}
		pos = end
	}
	return list
}

func isLineEnd(c byte) bool {
	return c == '\n' || c == '\r'
}
