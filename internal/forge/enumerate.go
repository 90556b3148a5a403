package forge

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ResolvedPath is one (remote image, local file) pairing produced by the
// filename builder and finalized by Enumerate.
type ResolvedPath struct {
	Dir        string // relative directory, e.g. Cards/ELD
	Base       string // collision-safe base name before enumeration
	StemSuffix string // ".fullborder" when the Forge infix is enabled
	Ext        string // ".jpg" or ".png"
	SourceURL  string
	Rotate     int
	CardID     string // print identity, used for collision diagnostics
	CardName   string // display name for logs
	RelPath    string // final relative path; set by Enumerate
}

// FileName returns the file name component of the final path.
func (p ResolvedPath) FileName() string {
	return p.Base + p.StemSuffix + p.Ext
}

// Enumerate assigns stable numeric suffixes to paths whose base names
// collide (case-insensitively, within one directory). The first occurrence
// keeps the bare name; later ones become base_2, base_3, ... in input
// order. Input order is preserved, and running Enumerate on its own output
// changes nothing: already-suffixed bases no longer collide.
func Enumerate(paths []ResolvedPath) []ResolvedPath {
	counts := make(map[string]int, len(paths))
	out := make([]ResolvedPath, len(paths))
	for i, p := range paths {
		key := strings.ToLower(p.Dir) + "|" + strings.ToLower(p.Base)
		counts[key]++
		if n := counts[key]; n > 1 {
			p.Base = fmt.Sprintf("%s_%d", p.Base, n)
		}
		p.RelPath = filepath.Join(p.Dir, p.FileName())
		out[i] = p
	}
	return out
}
