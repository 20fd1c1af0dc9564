package analyze

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/webinventory/internal/model"
)

// richTextRule matches headed prose sections.
type richTextRule struct{}

// Name returns the rule name.
func (richTextRule) Name() string { return model.ComponentRichText }

// Match requires substantial text under a heading. The preview is the
// block text with the heading removed, truncated to PreviewMaxLen.
func (richTextRule) Match(block *goquery.Selection) (model.Component, bool) {
	text := Text(block)
	if len(text) <= model.RichTextMinLen {
		return model.Component{}, false
	}

	heading := Text(block.Find("h1, h2, h3, h4, h5").First())
	if heading == "" {
		return model.Component{}, false
	}

	content := strings.TrimSpace(strings.Replace(text, heading, "", 1))
	return model.Component{
		Type:           model.ComponentRichText,
		Heading:        heading,
		ContentPreview: model.Truncate(content, model.PreviewMaxLen),
	}, true
}
