package analyze

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/webinventory/internal/model"
)

// listRule matches content lists and inventories their items.
type listRule struct{}

// Name returns the rule name.
func (listRule) Name() string { return model.ComponentList }

// Match extracts the direct items of the block's first list. One item is
// layout; two or more is content. Items at MaxListItemLen or longer are
// nested structures flattened to text, not list entries, and are dropped.
func (listRule) Match(block *goquery.Selection) (model.Component, bool) {
	list := selfOrFind(block, "ul, ol")
	if list == nil {
		return model.Component{}, false
	}

	items := make([]string, 0, model.MaxListItems)
	list.ChildrenFiltered("li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
		if text := Text(li); text != "" && len(text) < model.MaxListItemLen {
			items = append(items, text)
		}
		return len(items) < model.MaxListItems
	})

	if len(items) < 2 {
		return model.Component{}, false
	}
	return model.Component{Type: model.ComponentList, Items: items}, true
}
