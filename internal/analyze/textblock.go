package analyze

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/webinventory/internal/model"
)

// textBlockRule is the prose fallback for blocks no structural rule
// claimed.
type textBlockRule struct{}

// Name returns the rule name.
func (textBlockRule) Name() string { return model.ComponentTextBlock }

// Match accepts any block with non-trivial visible text, truncated to
// TextBlockMaxLen.
func (textBlockRule) Match(block *goquery.Selection) (model.Component, bool) {
	text := Text(block)
	if len(text) <= model.TextBlockMinLen {
		return model.Component{}, false
	}
	return model.Component{
		Type:    model.ComponentTextBlock,
		Content: model.Truncate(text, model.TextBlockMaxLen),
	}, true
}
