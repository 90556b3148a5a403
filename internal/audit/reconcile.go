package audit

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"forgefetch/internal/scryfall"
)

// CardLookup is the slice of the Scryfall client the reconciler needs.
type CardLookup interface {
	NonTokenCardsBySet(ctx context.Context, setCode string) ([]scryfall.Card, error)
	TokensForSet(ctx context.Context, tokenSet string) ([]scryfall.Card, error)
	SearchByName(ctx context.Context, name string) ([]scryfall.Card, error)
}

// MatchKind classifies the outcome of reconciling one manifest entry.
type MatchKind int

const (
	// Matched resolved to exactly one print.
	Matched MatchKind = iota
	// NotFound produced no candidate at all; reported, never fatal.
	NotFound
	// Ambiguous produced several equally strong candidates that name
	// different cards. The entry is skipped rather than guessed at.
	Ambiguous
)

// Resolution pairs a manifest entry with its lookup outcome.
type Resolution struct {
	Entry      Entry
	Kind       MatchKind
	Card       *scryfall.Card
	FaceIndex  int // 1-based; which face of Card the entry wants
	Candidates []string
}

// Reconciler resolves manifest entries to concrete Scryfall prints. Set
// rosters are fetched once per set and cached for the life of the run.
type Reconciler struct {
	lookup CardLookup
	log    *slog.Logger

	cardSets  map[string][]scryfall.Card
	tokenSets map[string][]scryfall.Card
}

func NewReconciler(lookup CardLookup, log *slog.Logger) *Reconciler {
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{
		lookup:    lookup,
		log:       log,
		cardSets:  make(map[string][]scryfall.Card),
		tokenSets: make(map[string][]scryfall.Card),
	}
}

// ReconcileTokens resolves token-form entries against their set's token
// roster (tXXX). Entries carrying a collector number match on it directly;
// the rest fall back to slug-derived name matching.
func (r *Reconciler) ReconcileTokens(ctx context.Context, entries []Entry) []Resolution {
	out := make([]Resolution, 0, len(entries))
	for _, e := range entries {
		out = append(out, r.reconcileToken(ctx, e))
	}
	return out
}

func (r *Reconciler) reconcileToken(ctx context.Context, e Entry) Resolution {
	roster, err := r.tokenRoster(ctx, e.Set)
	if err != nil {
		r.log.Warn("token set unavailable", "set", e.Set, "err", err)
		return Resolution{Entry: e, Kind: NotFound}
	}

	if e.Collector != "" {
		want := normalizeCollector(e.Collector)
		for i := range roster {
			if normalizeCollector(roster[i].CollectorNumber) == want {
				return Resolution{Entry: e, Kind: Matched, Card: &roster[i], FaceIndex: e.FaceIndex}
			}
		}
		return Resolution{Entry: e, Kind: NotFound}
	}

	// Slug-only entries: compare underscore-joined slugs against token
	// names the same way, e.g. "goblin_1_1" against "Goblin".
	want := normalizeTitle(strings.ReplaceAll(e.Slug, "_", " "))
	var hits []int
	for i := range roster {
		got := normalizeTitle(roster[i].Name)
		if got != "" && (got == want || strings.HasPrefix(want, got)) {
			hits = append(hits, i)
		}
	}
	switch len(hits) {
	case 0:
		return Resolution{Entry: e, Kind: NotFound}
	case 1:
		return Resolution{Entry: e, Kind: Matched, Card: &roster[hits[0]], FaceIndex: e.FaceIndex}
	default:
		names := make([]string, 0, len(hits))
		distinct := map[string]bool{}
		for _, i := range hits {
			if !distinct[roster[i].Name] {
				distinct[roster[i].Name] = true
				names = append(names, roster[i].Name)
			}
		}
		if len(names) == 1 {
			// Several prints of the same token; any of them satisfies
			// the audit.
			return Resolution{Entry: e, Kind: Matched, Card: &roster[hits[0]], FaceIndex: e.FaceIndex}
		}
		return Resolution{Entry: e, Kind: Ambiguous, Candidates: names}
	}
}

// ReconcileCards resolves report-form entries against their set's non-token
// roster. A trailing print index on the manifest name selects the Nth print
// of the matched name.
func (r *Reconciler) ReconcileCards(ctx context.Context, entries []Entry) []Resolution {
	out := make([]Resolution, 0, len(entries))
	for _, e := range entries {
		out = append(out, r.reconcileCard(ctx, e))
	}
	return out
}

func (r *Reconciler) reconcileCard(ctx context.Context, e Entry) Resolution {
	roster, err := r.cardRoster(ctx, e.Set)
	if err != nil {
		r.log.Warn("card set unavailable", "set", e.Set, "err", err)
		return Resolution{Entry: e, Kind: NotFound}
	}

	hits := matchByTitle(roster, e.Name)
	if len(hits) == 0 {
		// The set roster missed; a global name search catches prints
		// filed under an unexpected set code.
		global, err := r.lookup.SearchByName(ctx, e.Name)
		if err != nil && !errors.Is(err, scryfall.ErrNotFound) {
			r.log.Warn("name search failed", "name", e.Name, "err", err)
		}
		hits = matchByTitle(global, e.Name)
		roster = global
	}
	if len(hits) == 0 {
		return Resolution{Entry: e, Kind: NotFound}
	}

	names := distinctNames(roster, hits)
	if len(names) > 1 {
		return Resolution{Entry: e, Kind: Ambiguous, Candidates: names}
	}

	pick := hits[0]
	if e.PrintIndex > 1 && e.PrintIndex <= len(hits) {
		pick = hits[e.PrintIndex-1]
	}
	return Resolution{Entry: e, Kind: Matched, Card: &roster[pick], FaceIndex: 1}
}

func (r *Reconciler) cardRoster(ctx context.Context, set string) ([]scryfall.Card, error) {
	key := strings.ToLower(set)
	if cached, ok := r.cardSets[key]; ok {
		return cached, nil
	}
	cards, err := r.lookup.NonTokenCardsBySet(ctx, key)
	if err != nil {
		if errors.Is(err, scryfall.ErrNotFound) {
			r.cardSets[key] = nil
			return nil, nil
		}
		return nil, err
	}
	r.cardSets[key] = cards
	return cards, nil
}

func (r *Reconciler) tokenRoster(ctx context.Context, parentSet string) ([]scryfall.Card, error) {
	key := TokenSetFor(parentSet)
	if cached, ok := r.tokenSets[key]; ok {
		return cached, nil
	}
	tokens, err := r.lookup.TokensForSet(ctx, key)
	if err != nil {
		if errors.Is(err, scryfall.ErrNotFound) {
			r.tokenSets[key] = nil
			return nil, nil
		}
		return nil, err
	}
	r.tokenSets[key] = tokens
	return tokens, nil
}

// matchByTitle returns the roster indexes whose candidate names equal the
// wanted title after normalization. Exact matches win outright; only when
// there is none does a compact (space-free) comparison run, which catches
// concatenated split-card names.
func matchByTitle(roster []scryfall.Card, name string) []int {
	want := normalizeTitle(name)
	if want == "" {
		return nil
	}
	var exact, compact []int
	wantCompact := strings.ReplaceAll(want, " ", "")
	for i := range roster {
		for _, cand := range candidateNames(roster[i]) {
			got := normalizeTitle(cand)
			if got == want {
				exact = append(exact, i)
				break
			}
			if strings.ReplaceAll(got, " ", "") == wantCompact {
				compact = append(compact, i)
				break
			}
		}
	}
	if len(exact) > 0 {
		return exact
	}
	return compact
}

// candidateNames lists every name a print could have been filed under:
// flavor, printed and oracle names at card and face level, plus the
// concatenated form split cards use.
func candidateNames(c scryfall.Card) []string {
	names := []string{c.FlavorName, c.PrintedName, c.Name}
	for _, f := range c.CardFaces {
		names = append(names, f.FlavorName, f.PrintedName, f.Name)
	}
	if len(c.CardFaces) >= 2 {
		var b strings.Builder
		for _, f := range c.CardFaces {
			b.WriteString(strings.ReplaceAll(f.Name, " ", ""))
		}
		names = append(names, b.String())
	}
	return names
}

func distinctNames(roster []scryfall.Card, hits []int) []string {
	seen := map[string]bool{}
	var names []string
	for _, i := range hits {
		if n := roster[i].Name; !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	return names
}

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeTitle folds a display name down to a comparison key: accents
// stripped, lower case, punctuation removed, whitespace collapsed.
func normalizeTitle(s string) string {
	if folded, _, err := transform.String(stripAccents, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '&':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '/' || r == '_':
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// normalizeCollector compares collector numbers ignoring leading zeros and
// promo stars: "042" and "42★" both reduce to "42".
func normalizeCollector(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.Map(func(r rune) rune {
		if r == '★' || r == '†' {
			return -1
		}
		return r
	}, s)
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" && s != "" {
		return "0"
	}
	return trimmed
}
