package badge

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownVariant is returned when a badge name does not match any variant.
var ErrUnknownVariant = errors.New("unknown badge variant")

// Variant identifies one of the four selectable badges.
type Variant int

const (
	// VariantVotes is the gilded horn.
	VariantVotes Variant = iota

	// VariantPosters is the quill.
	VariantPosters

	// VariantLikes is the shaded heart.
	VariantLikes

	// VariantCommentators is the knot woven by the native module.
	VariantCommentators
)

// Variants lists every variant in selection order. Index i is bound to key i+1 on the host.
var Variants = []Variant{VariantVotes, VariantPosters, VariantLikes, VariantCommentators}

// String returns the lowercase badge name used in messages and configuration.
func (v Variant) String() string {
	switch v {
	case VariantVotes:
		return "votes"
	case VariantPosters:
		return "posters"
	case VariantLikes:
		return "likes"
	case VariantCommentators:
		return "commentators"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// ParseVariant resolves a badge name. Matching ignores case and surrounding space.
//
// Parameters:
//   - name: the badge name, for example "votes"
//
// Returns:
//   - Variant: the matching variant
//   - error: ErrUnknownVariant wrapped with the name when nothing matches
func ParseVariant(name string) (Variant, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, v := range Variants {
		if v.String() == key {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
}

// Details is the text shown next to a badge.
type Details struct {
	Title       string
	Description string
}

var details = map[Variant]Details{
	VariantVotes: {
		Title:       "The Gilded Horn",
		Description: "Awarded for receiving the most Post Votes. Forged in community acclaim.",
	},
	VariantPosters: {
		Title:       "The Creator's Quill",
		Description: "Awarded to the most active Posters. A testament to prolific creation.",
	},
	VariantLikes: {
		Title:       "Heart of the Community",
		Description: "Awarded for the most liked comments. Lit by its own shader.",
	},
	VariantCommentators: {
		Title:       "The Dialogue Weaver",
		Description: "Awarded to frequent Commentators. Woven by a native geometry module.",
	},
}

// Lookup returns the title and description of a variant.
//
// Parameters:
//   - v: the variant
//
// Returns:
//   - Details: the badge text
//   - bool: false for an unknown variant
func Lookup(v Variant) (Details, bool) {
	d, ok := details[v]
	return d, ok
}
