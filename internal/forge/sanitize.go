package forge

import (
	"fmt"
	"strings"
)

// FallbackName replaces input that sanitizes down to nothing; an empty path
// segment is never emitted.
const FallbackName = "Unknown"

var reservedDeviceNames = func() map[string]bool {
	m := map[string]bool{"CON": true, "PRN": true, "AUX": true, "NUL": true}
	for i := 1; i <= 9; i++ {
		m[fmt.Sprintf("COM%d", i)] = true
		m[fmt.Sprintf("LPT%d", i)] = true
	}
	return m
}()

const invalidFileChars = `<>:"/\|?*`

// Sanitize turns arbitrary card or set text into a filesystem-safe token.
// Colons become dashes (they read better in card names than underscores),
// the remaining reserved characters and control bytes become underscores,
// and trailing dots/spaces are stripped. When isFolder is set, a result
// matching a Windows reserved device name is prefixed with an underscore.
// Total and deterministic; never fails.
func Sanitize(raw string, isFolder bool) string {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ":", "-")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r < 0x20:
			b.WriteByte('_')
		case strings.ContainsRune(invalidFileChars, r):
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}

	out := strings.TrimRight(b.String(), " .")
	if out == "" {
		return FallbackName
	}
	if isFolder && reservedDeviceNames[strings.ToUpper(out)] {
		out = "_" + out
	}
	return out
}

// SetFolder returns the Windows-safe folder name for a set code.
func SetFolder(setCode string) string {
	code := strings.ToUpper(strings.TrimSpace(setCode))
	if code == "" {
		code = "UNK"
	}
	return Sanitize(code, true)
}

// InferExt guesses the image extension from a source URL; Scryfall serves
// jpg unless the png rendition was selected.
func InferExt(url string) string {
	if strings.Contains(strings.ToLower(url), ".png") {
		return ".png"
	}
	return ".jpg"
}
