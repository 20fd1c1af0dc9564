package analyze

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/webinventory/internal/model"
)

// heroClassRe identifies hero/banner naming conventions on a block or its
// descendants.
var heroClassRe = regexp.MustCompile(`(?i)hero|banner|slider|carousel|jumbotron`)

// heroRule matches prominent banner blocks and pulls their headline pair.
type heroRule struct{}

// Name returns the rule name.
func (heroRule) Name() string { return model.ComponentHeroBanner }

// Match requires hero-style class naming and a heading. The subtitle is
// the first paragraph sized like a tagline: longer than a label, shorter
// than body copy.
func (heroRule) Match(block *goquery.Selection) (model.Component, bool) {
	if !hasHeroClass(block) {
		return model.Component{}, false
	}

	title := Text(block.Find("h1, h2, h3").First())
	if title == "" {
		return model.Component{}, false
	}

	subtitle := ""
	block.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		if text := Text(p); len(text) > model.HeroSubtitleMinLen && len(text) < model.HeroSubtitleMaxLen {
			subtitle = text
			return false
		}
		return true
	})

	return model.Component{
		Type:     model.ComponentHeroBanner,
		Title:    title,
		Subtitle: subtitle,
	}, true
}

// hasHeroClass reports whether the block or any descendant carries a
// hero-style class.
func hasHeroClass(block *goquery.Selection) bool {
	if heroClassRe.MatchString(block.AttrOr("class", "")) {
		return true
	}
	return firstClassMatch(block, "*", heroClassRe) != nil
}
