package forge

import (
	"strings"

	"forgefetch/internal/scryfall"
)

// FaceRole tells the filename builder which physical image area a Face is.
type FaceRole string

const (
	RoleSingle FaceRole = "single"
	RoleFront  FaceRole = "front"
	RoleBack   FaceRole = "back"
	RoleLeft   FaceRole = "left"
	RoleRight  FaceRole = "right"
)

// Face is one image file a card print requires.
type Face struct {
	Role        FaceRole
	Name        string // oracle-side name for this file
	PrintedName string
	FlavorName  string
	URL         string
	Rotate      int // degrees applied before persisting: 0, 90 or 180
	// Partial marks a multi-face card whose face data was missing or
	// malformed; the resolver degraded it to a single face instead of
	// failing the run.
	Partial bool
}

// Resolver maps a card's layout to the ordered faces that must be written.
// All layout-specific policy lives here; workflows never branch on layout.
type Resolver struct {
	// RotateSplit stores split/aftermath combined images rotated 90
	// degrees when the source image is landscape.
	RotateSplit bool
}

// Resolve returns the faces of a card in printed order (front before back,
// left before right). A card without any usable image URL resolves to nil.
func (r Resolver) Resolve(card scryfall.Card) []Face {
	layout := strings.ToLower(card.Layout)

	if card.ImageURIs != nil {
		u := card.ImageURIs.BestURL()
		if u == "" {
			return r.facesFromParts(card)
		}

		switch layout {
		case "split", "aftermath":
			return r.splitFaces(card, u)
		case "flip":
			return r.flipFaces(card, u)
		case "adventure":
			return r.adventureFaces(card, u)
		}
		return []Face{{
			Role:        RoleSingle,
			Name:        nonEmpty(card.Name, FallbackName),
			PrintedName: card.PrintedName,
			FlavorName:  card.FlavorName,
			URL:         u,
		}}
	}

	return r.facesFromParts(card)
}

// splitFaces emits one combined image whose name concatenates both face
// names without spaces ("AssaultBattery"), the Forge convention for split
// and aftermath cards.
func (r Resolver) splitFaces(card scryfall.Card, u string) []Face {
	rotate := 0
	if r.RotateSplit {
		rotate = 90
	}
	if len(card.CardFaces) < 2 {
		return []Face{{
			Role:    RoleSingle,
			Name:    nonEmpty(card.Name, FallbackName),
			URL:     u,
			Rotate:  rotate,
			Partial: true,
		}}
	}
	return []Face{{
		Role:        RoleSingle,
		Name:        concatFaceNames(card.CardFaces, func(f scryfall.CardFace) string { return f.Name }),
		PrintedName: concatFaceNames(card.CardFaces, func(f scryfall.CardFace) string { return f.PrintedName }),
		FlavorName:  concatFaceNames(card.CardFaces, func(f scryfall.CardFace) string { return f.FlavorName }),
		URL:         u,
		Rotate:      rotate,
	}}
}

// flipFaces emits two files sharing one image: the upright face and its
// companion rotated 180 degrees.
func (r Resolver) flipFaces(card scryfall.Card, u string) []Face {
	if len(card.CardFaces) < 2 {
		return []Face{{
			Role:    RoleSingle,
			Name:    nonEmpty(card.Name, FallbackName),
			URL:     u,
			Partial: true,
		}}
	}
	f1, f2 := card.CardFaces[0], card.CardFaces[1]
	return []Face{
		{
			Role:        RoleFront,
			Name:        nonEmpty(f1.Name, card.Name),
			PrintedName: f1.PrintedName,
			FlavorName:  f1.FlavorName,
			URL:         u,
		},
		{
			Role:        RoleBack,
			Name:        nonEmpty(f2.Name, card.Name),
			PrintedName: f2.PrintedName,
			FlavorName:  f2.FlavorName,
			URL:         u,
			Rotate:      180,
		},
	}
}

// adventureFaces maps the single physical image to the two logical files
// Forge expects: the creature (main) face and the adventure face.
func (r Resolver) adventureFaces(card scryfall.Card, u string) []Face {
	if len(card.CardFaces) < 2 {
		return []Face{{
			Role:    RoleSingle,
			Name:    nonEmpty(card.Name, FallbackName),
			URL:     u,
			Partial: true,
		}}
	}
	f1, f2 := card.CardFaces[0], card.CardFaces[1]
	return []Face{
		{
			Role:        RoleFront,
			Name:        nonEmpty(f1.Name, card.Name),
			PrintedName: f1.PrintedName,
			FlavorName:  f1.FlavorName,
			URL:         u,
		},
		{
			Role:        RoleBack,
			Name:        nonEmpty(f2.Name, card.Name),
			PrintedName: f2.PrintedName,
			FlavorName:  f2.FlavorName,
			URL:         u,
		},
	}
}

// facesFromParts handles cards whose image lives on the faces themselves
// (transform, modal DFC): one file per face, separate URLs, no rotation.
func (r Resolver) facesFromParts(card scryfall.Card) []Face {
	roles := [...]FaceRole{RoleFront, RoleBack, RoleLeft, RoleRight}
	var faces []Face
	for i, f := range card.CardFaces {
		if f.ImageURIs == nil {
			continue
		}
		u := f.ImageURIs.BestURL()
		if u == "" {
			continue
		}
		role := RoleSingle
		if i < len(roles) {
			role = roles[i]
		}
		faces = append(faces, Face{
			Role:        role,
			Name:        nonEmpty(f.Name, card.Name),
			PrintedName: f.PrintedName,
			FlavorName:  f.FlavorName,
			URL:         u,
		})
	}
	if len(faces) == 1 {
		faces[0].Role = RoleSingle
	}
	return faces
}

func concatFaceNames(faces []scryfall.CardFace, pick func(scryfall.CardFace) string) string {
	var b strings.Builder
	for _, f := range faces {
		b.WriteString(strings.ReplaceAll(pick(f), " ", ""))
	}
	return strings.TrimSpace(b.String())
}

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	return fallback
}
