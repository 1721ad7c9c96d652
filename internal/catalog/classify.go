package catalog

// classify.go guesses the semantic role of spreadsheet columns from header
// text. Guesses seed user curation, they never replace it: a column that
// already carries a role is left alone, and a miss leaves the role empty for
// manual mapping rather than raising an error.

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// minSubstringTag is the shortest vocabulary tag considered for substring
// containment. Shorter tags produce too many false positives.
const minSubstringTag = 3

// RoleKeywords pairs a role with its keyword tags. Order matters: earlier
// roles win ties, so the vocabulary keeps identity roles first.
type RoleKeywords struct {
	Role Role
	Tags []string
}

// Vocabulary is the immutable lookup data driving classification. Build it
// once at startup and inject it; nothing in this package mutates it.
type Vocabulary struct {
	// Aliases maps a normalized header directly to a role (high confidence).
	Aliases map[string]Role
	// Keywords holds the per-role tag lists, checked for exact match
	// (medium) then substring containment (low), in declaration order.
	Keywords []RoleKeywords
	// PlatformPositional maps platform -> normalized header -> role for
	// generic positional columns that only one platform can disambiguate.
	PlatformPositional map[string]map[string]Role
}

// Classifier guesses column roles against an injected vocabulary.
type Classifier struct {
	vocab Vocabulary
}

// NewClassifier returns a classifier over the given vocabulary.
func NewClassifier(vocab Vocabulary) *Classifier {
	return &Classifier{vocab: vocab}
}

// NormalizeHeader canonicalizes a header for matching: lowercase, trimmed,
// with underscores, hyphens, and dots collapsed to spaces, bracket and quote
// characters stripped, and repeated whitespace collapsed.
func NormalizeHeader(header string) string {
	s := strings.ToLower(strings.TrimSpace(header))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '_', '-', '.':
			b.WriteRune(' ')
		case '(', ')', '[', ']', '{', '}', '"', '\'', '`':
			// stripped
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Classify guesses the role for a single header. Resolution order, first hit
// wins: alias table (high), exact keyword (medium), substring tag of length
// >= minSubstringTag (low), platform positional fallback (low), then a
// sample-value price sniff (low). A zero result means no match.
//
// Reference-template matching happens only in the batch form
// ([Classifier.AutoMapColumns]), where prior mappings are available.
func (c *Classifier) Classify(header, platform string, samples []string) Classification {
	n := NormalizeHeader(header)
	if n == "" {
		return Classification{}
	}

	if role, ok := c.vocab.Aliases[n]; ok {
		return Classification{Role: role, Confidence: ConfidenceHigh, MatchedTag: n}
	}

	for _, rk := range c.vocab.Keywords {
		for _, tag := range rk.Tags {
			if n == tag {
				return Classification{Role: rk.Role, Confidence: ConfidenceMedium, MatchedTag: tag}
			}
		}
	}

	for _, rk := range c.vocab.Keywords {
		for _, tag := range rk.Tags {
			if len(tag) >= minSubstringTag && strings.Contains(n, tag) {
				return Classification{Role: rk.Role, Confidence: ConfidenceLow, MatchedTag: tag}
			}
		}
	}

	if positional, ok := c.vocab.PlatformPositional[platform]; ok {
		if role, ok := positional[n]; ok {
			return Classification{Role: role, Confidence: ConfidenceLow, MatchedTag: n}
		}
	}

	if looksLikePrice(samples) {
		return Classification{Role: RolePrice, Confidence: ConfidenceLow}
	}

	return Classification{}
}

// AutoMapColumns classifies every unmapped column of a template in one pass
// and returns a new column slice; the input is untouched.
//
// The most recently updated, fully-mapped reference template for the same
// platform is consulted first: an exact normalized-name hit copies its role
// and multi-value settings verbatim. Everything else falls through to
// [Classifier.Classify]. Columns that already carry a role are never
// overwritten, and image columns get MultiValue enabled only when the role
// assignment is new in this pass.
func (c *Classifier) AutoMapColumns(columns []Column, platform string, referenceTemplates []Template) []Column {
	reference := referenceColumns(platform, referenceTemplates)

	mapped := make([]Column, len(columns))
	copy(mapped, columns)

	for i := range mapped {
		if mapped[i].Role != "" {
			continue
		}

		if ref, ok := reference[NormalizeHeader(mapped[i].Name)]; ok {
			mapped[i].Role = ref.Role
			mapped[i].MultiValue = ref.MultiValue
			mapped[i].Separator = ref.Separator
			continue
		}

		guess := c.Classify(mapped[i].Name, platform, mapped[i].Samples)
		if guess.Role == "" {
			continue
		}
		mapped[i].Role = guess.Role
		if guess.Role.IsImageRole() {
			mapped[i].MultiValue = true
		}
	}

	return mapped
}

// referenceColumns indexes the columns of the newest fully-mapped template
// for the platform by normalized name. Returns nil when no template
// qualifies.
func referenceColumns(platform string, templates []Template) map[string]Column {
	candidates := make([]Template, 0, len(templates))
	for _, t := range templates {
		if t.Platform == platform && t.FullyMapped() {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].UpdatedAt.After(candidates[j].UpdatedAt)
	})

	ref := make(map[string]Column, len(candidates[0].Columns))
	for _, col := range candidates[0].Columns {
		ref[NormalizeHeader(col.Name)] = col
	}
	return ref
}

// looksLikePrice reports whether every non-empty sample parses as a decimal
// with at most two fractional digits, with at least one sample seen.
// Currency symbols are tolerated around the value.
func looksLikePrice(samples []string) bool {
	seen := 0
	for _, s := range samples {
		s = strings.Trim(strings.TrimSpace(s), "$€£¥ ")
		if s == "" {
			continue
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return false
		}
		if d.Exponent() < -2 {
			return false
		}
		seen++
	}
	return seen > 0
}
