// Package prereq implements the prerequisite-satisfaction engine: a closed
// tag vocabulary, a static implication map between tags, and the transitive
// expansion used to answer "which programs does this set of qualifications
// unlock".
package prereq

import (
	"fmt"
	"sort"
)

// Tag is a fixed-vocabulary qualification code, e.g. a completed course.
type Tag = string

// Default vocabulary of the Swedish upper-secondary qualification tags.
var defaultVocabulary = []Tag{
	"Math3B", "Math4", "Math5",
	"Physics1A", "Physics2",
	"Chemistry1", "Chemistry2",
	"Biology1", "Biology2",
	"Science2",
	"Civics1B", "History1B", "Language3",
	"SpecialRequirement",
}

// Default implication map: holding the key tag implies holding every value
// tag. The closure is transitive (Math5 implies Math4 which implies Math3B).
var defaultImplications = map[Tag][]Tag{
	"Math4":      {"Math3B"},
	"Math5":      {"Math3B", "Math4"},
	"Physics2":   {"Physics1A", "Science2"},
	"Chemistry2": {"Chemistry1", "Science2"},
	"Biology2":   {"Biology1", "Science2"},
}

// Catalog is the immutable prerequisite configuration. It is constructed once
// at startup, validated, and injected wherever tag expansion or validation is
// needed. Safe for unsynchronized concurrent reads.
type Catalog struct {
	vocabulary map[Tag]struct{}
	implies    map[Tag][]Tag
}

// Expansion is the result of expanding a requested tag set.
type Expansion struct {
	// Expanded is the requested set closed under the implication map,
	// sorted for deterministic output.
	Expanded []Tag
	// Invalid are the members of Expanded that are not in the vocabulary.
	// Tags that were invalid before expansion are still reported.
	Invalid []Tag
}

// NewCatalog builds the default catalog.
func NewCatalog() (*Catalog, error) {
	return NewCatalogWith(defaultVocabulary, defaultImplications)
}

// NewCatalogWith builds a catalog from an explicit vocabulary and implication
// map. Every implied tag must be a vocabulary member and the implication
// graph must be acyclic; a cycle would make expansion loop forever, so it is
// rejected here rather than discovered at request time.
func NewCatalogWith(vocabulary []Tag, implications map[Tag][]Tag) (*Catalog, error) {
	vocab := make(map[Tag]struct{}, len(vocabulary))
	for _, tag := range vocabulary {
		vocab[tag] = struct{}{}
	}

	implies := make(map[Tag][]Tag, len(implications))
	for tag, deps := range implications {
		if _, ok := vocab[tag]; !ok {
			return nil, fmt.Errorf("implication source %q is not in the vocabulary", tag)
		}
		for _, dep := range deps {
			if _, ok := vocab[dep]; !ok {
				return nil, fmt.Errorf("implication target %q of %q is not in the vocabulary", dep, tag)
			}
		}
		implies[tag] = append([]Tag(nil), deps...)
	}

	c := &Catalog{vocabulary: vocab, implies: implies}
	if cycle := c.findCycle(); cycle != "" {
		return nil, fmt.Errorf("implication map contains a cycle through %q", cycle)
	}
	return c, nil
}

// Vocabulary returns the valid tags in sorted order.
func (c *Catalog) Vocabulary() []Tag {
	tags := make([]Tag, 0, len(c.vocabulary))
	for tag := range c.vocabulary {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Valid reports whether tag is a vocabulary member.
func (c *Catalog) Valid(tag Tag) bool {
	_, ok := c.vocabulary[tag]
	return ok
}

// Expand closes the requested set under the implication map and reports which
// members of the result fall outside the vocabulary. Pure: no side effects,
// no mutation of the input.
func (c *Catalog) Expand(requested []Tag) Expansion {
	expanded := make(map[Tag]struct{}, len(requested))
	queue := make([]Tag, 0, len(requested))
	for _, tag := range requested {
		if _, seen := expanded[tag]; !seen {
			expanded[tag] = struct{}{}
			queue = append(queue, tag)
		}
	}

	// Worklist closure over the implication edges. Each tag is enqueued at
	// most once, so this terminates on any finite map regardless of shape.
	for len(queue) > 0 {
		tag := queue[0]
		queue = queue[1:]
		for _, dep := range c.implies[tag] {
			if _, seen := expanded[dep]; !seen {
				expanded[dep] = struct{}{}
				queue = append(queue, dep)
			}
		}
	}

	result := Expansion{Expanded: make([]Tag, 0, len(expanded))}
	for tag := range expanded {
		result.Expanded = append(result.Expanded, tag)
		if !c.Valid(tag) {
			result.Invalid = append(result.Invalid, tag)
		}
	}
	sort.Strings(result.Expanded)
	sort.Strings(result.Invalid)
	return result
}

// Validate reports the subset of tags that are not vocabulary members,
// without expanding. Used for program and student prerequisite payloads.
func (c *Catalog) Validate(tags []Tag) []Tag {
	var invalid []Tag
	for _, tag := range tags {
		if !c.Valid(tag) {
			invalid = append(invalid, tag)
		}
	}
	return invalid
}

// Satisfies reports whether every required tag is covered by the held set
// after expansion: required ⊆ Expand(held).
func (c *Catalog) Satisfies(required, held []Tag) bool {
	expansion := c.Expand(held)
	have := make(map[Tag]struct{}, len(expansion.Expanded))
	for _, tag := range expansion.Expanded {
		have[tag] = struct{}{}
	}
	for _, tag := range required {
		if _, ok := have[tag]; !ok {
			return false
		}
	}
	return true
}

// findCycle runs a three-color depth-first search over the implication graph
// and returns a tag on a cycle, or "" when the graph is acyclic.
func (c *Catalog) findCycle() Tag {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[Tag]int, len(c.implies))

	var visit func(tag Tag) Tag
	visit = func(tag Tag) Tag {
		color[tag] = gray
		for _, dep := range c.implies[tag] {
			switch color[dep] {
			case gray:
				return dep
			case white:
				if hit := visit(dep); hit != "" {
					return hit
				}
			}
		}
		color[tag] = black
		return ""
	}

	roots := make([]Tag, 0, len(c.implies))
	for tag := range c.implies {
		roots = append(roots, tag)
	}
	sort.Strings(roots)
	for _, tag := range roots {
		if color[tag] == white {
			if hit := visit(tag); hit != "" {
				return hit
			}
		}
	}
	return ""
}
