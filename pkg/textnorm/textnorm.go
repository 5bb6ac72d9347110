// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package textnorm canonicalizes user-entered text before it is stored or compared.
//
// # Usage
//
// Contact names typed on different keyboards may encode the same letter as a
// precomposed rune or as a base rune plus a combining mark ("é" vs "e"+U+0301).
// Both forms are folded to NFC so that exact-match searches find them.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Clean trims surrounding whitespace, collapses inner runs of whitespace to
// a single space and normalizes the result to NFC.
func Clean(s string) string {
	fields := strings.FieldsFunc(s, unicode.IsSpace)
	return norm.NFC.String(strings.Join(fields, " "))
}

// Equal reports whether a and b are the same text after [Clean].
func Equal(a, b string) bool {
	return Clean(a) == Clean(b)
}
