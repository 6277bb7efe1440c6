package ui

import (
	"sort"
	"strconv"
	"strings"

	"ssh-manager/pkg/profile"
)

// aliasHitBonus lifts a token found in the alias above one found only in
// the host or user, so typing part of a name finds that name first.
const aliasHitBonus = 40

// candidate is one alias ready for fuzzy searching and display.
type candidate struct {
	Alias   string
	Profile profile.Profile
	Display string

	aliasKey string // lowercased alias
	destKey  string // lowercased "host user"
}

func buildCandidates(ps profile.Profiles) []candidate {
	cands := make([]candidate, 0, len(ps))
	for _, alias := range ps.Aliases() {
		p := ps[alias]
		cands = append(cands, candidate{
			Alias:    alias,
			Profile:  p,
			Display:  formatProfileLine(alias, p),
			aliasKey: strings.ToLower(alias),
			destKey:  strings.ToLower(strings.TrimSpace(p.Host + " " + p.User)),
		})
	}
	return cands
}

func formatProfileLine(alias string, p profile.Profile) string {
	dest := p.Host
	if p.User != "" {
		dest = p.User + "@" + p.Host
	}
	if p.Port != 0 && p.Port != profile.DefaultPort {
		dest += ":" + strconv.Itoa(p.Port)
	}
	return alias + "  " + dest
}

// score sums the per-token scores of c. Each token is tried against the
// alias first and only then against host and user.
func (c candidate) score(tokens []string) (int, bool) {
	total := 0
	for _, tok := range tokens {
		if s, ok := fuzzyScore(tok, c.aliasKey); ok {
			total += s + aliasHitBonus
			continue
		}
		s, ok := fuzzyScore(tok, c.destKey)
		if !ok {
			return 0, false
		}
		total += s
	}
	return total, true
}

// rankMatches filters and sorts candidates by fuzzy score against query.
// Whitespace separates tokens; every token must match. Ties, and the empty
// query, fall back to alias order.
func rankMatches(cands []candidate, query string) []candidate {
	tokens := strings.Fields(strings.ToLower(query))

	out := make([]candidate, 0, len(cands))
	scores := make(map[string]int, len(cands))
	for _, c := range cands {
		s, ok := c.score(tokens)
		if !ok {
			continue
		}
		scores[c.Alias] = s
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		si, sj := scores[out[i].Alias], scores[out[j].Alias]
		if si != sj {
			return si > sj
		}
		return out[i].Alias < out[j].Alias
	})
	return out
}

// fuzzyScore matches query as a subsequence of text (both lowercase),
// taking the leftmost occurrence of each rune. Runs of adjacent hits, hits
// at a word start and an early first hit all add to the score.
func fuzzyScore(query, text string) (int, bool) {
	q := []rune(query)
	if len(q) == 0 {
		return 0, true
	}
	rt := []rune(text)

	var qi, score, streak int
	first, last := -1, -2
	for i := 0; i < len(rt) && qi < len(q); i++ {
		if rt[i] != q[qi] {
			continue
		}
		qi++
		score += 10
		if first < 0 {
			first = i
		}
		if i == last+1 {
			streak++
			score += 5 * streak
		} else {
			streak = 0
		}
		if i == 0 || !isAlphaNum(rt[i-1]) {
			score += 10
		}
		last = i
	}
	if qi < len(q) {
		return 0, false
	}
	if first < 20 {
		score += 20 - first
	}
	return score, true
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
