package download

import (
	"fmt"
	"strings"

	"forgefetch/internal/forge"
	"forgefetch/internal/scryfall"
)

// ErrPathCollision marks a planned file whose final path is already claimed
// by a different print in the same plan. The item is dropped with an error
// instead of silently overwriting.
type ErrPathCollision struct {
	Path      string
	CardName  string
	OtherName string
}

func (e *ErrPathCollision) Error() string {
	return fmt.Sprintf("path collision: %s wanted by both %q and %q", e.Path, e.CardName, e.OtherName)
}

// Planner turns card prints into the exact files a run must produce. It is
// pure: no filesystem or network access, so plans are cheap to test.
type Planner struct {
	Resolver   forge.Resolver
	Policy     forge.NamingPolicy
	FullBorder bool
}

func (p Planner) stemSuffix() string {
	if p.FullBorder {
		return ".fullborder"
	}
	return ""
}

// PlanSet lays out one set's worth of prints under dir using the set-folder
// naming scheme (Name.fullborder.jpg, enumerated on collision).
func (p Planner) PlanSet(cards []scryfall.Card, dir string) []forge.ResolvedPath {
	return p.plan(cards, dir, func(c scryfall.Card, f forge.Face, n int) string {
		return forge.BuildBaseName(c, f, n, p.Policy)
	})
}

// PlanSingles lays out prints under the Singles directory, where names are
// prefixed with their set code (SET_Name) because prints from many sets
// share one folder.
func (p Planner) PlanSingles(cards []scryfall.Card, dir string) []forge.ResolvedPath {
	return p.plan(cards, dir, func(c scryfall.Card, f forge.Face, n int) string {
		return forge.SingleStem(c, f, n, p.Policy)
	})
}

func (p Planner) plan(cards []scryfall.Card, dir string, base func(scryfall.Card, forge.Face, int) string) []forge.ResolvedPath {
	var paths []forge.ResolvedPath
	for _, card := range cards {
		faces := p.Resolver.Resolve(card)
		for _, face := range faces {
			paths = append(paths, forge.ResolvedPath{
				Dir:        dir,
				Base:       base(card, face, len(faces)),
				StemSuffix: p.stemSuffix(),
				Ext:        forge.InferExt(face.URL),
				SourceURL:  face.URL,
				Rotate:     face.Rotate,
				CardID:     card.ID,
				CardName:   card.Name,
			})
		}
	}
	return forge.Enumerate(paths)
}

// PlanFace lays out a single already-chosen face, as the audit workflows do
// when the manifest dictates the base name.
func (p Planner) PlanFace(card scryfall.Card, face forge.Face, dir, baseName string) forge.ResolvedPath {
	paths := forge.Enumerate([]forge.ResolvedPath{{
		Dir:        dir,
		Base:       baseName,
		StemSuffix: p.stemSuffix(),
		Ext:        forge.InferExt(face.URL),
		SourceURL:  face.URL,
		Rotate:     face.Rotate,
		CardID:     card.ID,
		CardName:   card.Name,
	}})
	return paths[0]
}

// CheckCollisions splits a plan into the writable items and the items whose
// final path is already claimed by a different print. Two faces of the same
// print can never collide (the enumerator suffixes them), so any duplicate
// path here means two distinct cards mapped to one file.
func CheckCollisions(paths []forge.ResolvedPath) (ok []forge.ResolvedPath, collisions []error) {
	claimed := make(map[string]forge.ResolvedPath, len(paths))
	for _, p := range paths {
		key := strings.ToLower(p.RelPath)
		if prev, exists := claimed[key]; exists && prev.CardID != p.CardID {
			collisions = append(collisions, &ErrPathCollision{
				Path:      p.RelPath,
				CardName:  p.CardName,
				OtherName: prev.CardName,
			})
			continue
		}
		claimed[key] = p
		ok = append(ok, p)
	}
	return ok, collisions
}
