package scryfall

import (
	"sort"
	"strings"
)

// MatchSets resolves free user input (a set code or part of a set name) to a
// ranked list of candidate sets. Exact code matches (including MTGO and
// Arena codes) win outright; substring hits are ranked by how early they
// match; bigram similarity is the last resort for typos.
func MatchSets(query string, sets []Set) []Set {
	q := normalizeQuery(query)
	if q == "" {
		return nil
	}

	var exact []Set
	for _, s := range sets {
		if q == normalizeQuery(s.Code) || q == normalizeQuery(s.MTGOCode) || q == normalizeQuery(s.ArenaCode) {
			exact = append(exact, s)
		}
	}
	if len(exact) > 0 {
		return exact
	}

	type scored struct {
		set   Set
		score float64
	}
	var subs []scored
	for _, s := range sets {
		name := normalizeQuery(s.Name)
		code := normalizeQuery(s.Code)
		switch {
		case strings.HasPrefix(code, q):
			subs = append(subs, scored{s, 3})
		case strings.Contains(name, q):
			subs = append(subs, scored{s, 2})
		case strings.Contains(code, q):
			subs = append(subs, scored{s, 1})
		}
	}
	if len(subs) == 0 {
		for _, s := range sets {
			sim := bigramSimilarity(q, normalizeQuery(s.Name))
			if cs := bigramSimilarity(q, normalizeQuery(s.Code)); cs > sim {
				sim = cs
			}
			if sim >= 0.6 {
				subs = append(subs, scored{s, sim})
			}
		}
	}

	sort.SliceStable(subs, func(i, j int) bool {
		if subs[i].score != subs[j].score {
			return subs[i].score > subs[j].score
		}
		return len(subs[i].set.Name) < len(subs[j].set.Name)
	})

	seen := make(map[string]bool)
	out := make([]Set, 0, len(subs))
	for _, sc := range subs {
		code := strings.ToUpper(sc.set.Code)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, sc.set)
	}
	return out
}

func normalizeQuery(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// bigramSimilarity is the Sorensen-Dice coefficient over character bigrams.
func bigramSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if len(a) < 2 || len(b) < 2 {
		return 0
	}
	grams := make(map[string]int)
	for i := 0; i+2 <= len(a); i++ {
		grams[a[i:i+2]]++
	}
	matches := 0
	for i := 0; i+2 <= len(b); i++ {
		g := b[i : i+2]
		if grams[g] > 0 {
			grams[g]--
			matches++
		}
	}
	return 2 * float64(matches) / float64(len(a)+len(b)-2)
}
