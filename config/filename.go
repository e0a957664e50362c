package config

import (
	"strings"
	"unicode"
)

const badFileName = "_bad_file_name_"

// cleanFileName drops control characters and runes from reject, then trims
// cutset from the side the platform cares about.
func cleanFileName(in, reject string, trim func(string, string) string, cutset string) string {
	out := trim(strings.Map(func(sym rune) rune {
		if unicode.IsControl(sym) || strings.ContainsRune(reject, sym) {
			return -1
		}
		return sym
	}, in), cutset)
	if out == "" {
		return badFileName
	}
	return out
}
