package analyze

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/webinventory/internal/model"
)

// Rule is one component classification pattern: a predicate and extractor
// over a single content block.
//
// Design decision: We use an ordered slice of small rule values rather
// than a registry or type-switch dispatch because:
//  1. Priority is part of the contract — the first matching rule wins,
//     and the order is visible in one place
//  2. Rules stay independent and individually testable
//  3. Adding a component type is one value in one slice
type Rule interface {
	// Name identifies the rule for logging.
	Name() string

	// Match inspects the block and extracts its component. ok is false
	// when the block is not of this rule's shape.
	Match(block *goquery.Selection) (component model.Component, ok bool)
}

// Rules returns the classification rules in priority order: specific
// structural shapes first, prose fallbacks last.
func Rules() []Rule {
	return []Rule{
		formRule{},
		tableRule{},
		heroRule{},
		galleryRule{},
		listRule{},
		richTextRule{},
		textBlockRule{},
	}
}

// Classify maps each content block of the main region to at most one
// component, in document order. Blocks under MinBlockTextLen visible
// characters are layout noise and yield nothing. When no block classifies
// but the region still has substantial text, a single text block over the
// whole region is emitted so a content-bearing page never inventories as
// empty.
func Classify(main *goquery.Selection) []model.Component {
	rules := Rules()
	components := make([]model.Component, 0)

	for _, block := range Blocks(main) {
		if len(Text(block)) < model.MinBlockTextLen {
			continue
		}
		for _, rule := range rules {
			if component, ok := rule.Match(block); ok {
				components = append(components, component)
				break
			}
		}
	}

	if len(components) == 0 {
		if text := Text(main); len(text) > model.TextBlockMinLen {
			components = append(components, model.Component{
				Type:    model.ComponentTextBlock,
				Content: model.Truncate(text, model.MainFallbackMaxLen),
			})
		}
	}

	return components
}

// Blocks returns the classification units of the main region: its element
// children, unwrapped through lone layout divs so that a single
// page-width wrapper does not swallow every section into one block. A
// lone div counts as layout only while all of its children are containers
// themselves; a div holding leaf content is a block in its own right.
func Blocks(main *goquery.Selection) []*goquery.Selection {
	children := elementChildren(main)
	for len(children) == 1 && children[0].Is("div") && allContainers(children[0].Children()) {
		children = elementChildren(children[0])
	}
	return children
}

func allContainers(children *goquery.Selection) bool {
	if children.Length() == 0 {
		return false
	}

	all := true
	children.Each(func(_ int, child *goquery.Selection) {
		if !child.Is("div, section, article") {
			all = false
		}
	})
	return all
}

func elementChildren(s *goquery.Selection) []*goquery.Selection {
	children := make([]*goquery.Selection, 0, s.Children().Length())
	s.Children().Each(func(_ int, child *goquery.Selection) {
		children = append(children, child)
	})
	return children
}

// selfOrFind returns the block itself when it matches the selector, else
// its first matching descendant, else nil.
func selfOrFind(block *goquery.Selection, selector string) *goquery.Selection {
	if block.Is(selector) {
		return block
	}
	if found := block.Find(selector).First(); found.Length() > 0 {
		return found
	}
	return nil
}
