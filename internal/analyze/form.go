package analyze

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/webinventory/internal/model"
)

// fieldTitler renders field labels for output ("your_name" → "Your Name").
var fieldTitler = cases.Title(language.English)

// formRule matches blocks carrying input controls and inventories their
// field labels.
type formRule struct{}

// Name returns the rule name.
func (formRule) Name() string { return model.ComponentForm }

// Match extracts the labels of the block's form fields in document order,
// deduplicated. Submit, button, and hidden controls are UI plumbing, not
// fields, and labels past MaxFieldLabelLen are concatenated markup rather
// than real labels.
func (formRule) Match(block *goquery.Selection) (model.Component, bool) {
	scope := block
	if form := selfOrFind(block, "form"); form != nil {
		scope = form
	}

	fields := make([]string, 0)
	seen := make(map[string]bool)
	scope.Find("input, textarea, select").Each(func(_ int, control *goquery.Selection) {
		switch control.AttrOr("type", "") {
		case "submit", "button", "hidden":
			return
		}

		label := fieldLabel(scope, control)
		if label == "" || len(label) >= model.MaxFieldLabelLen || seen[label] {
			return
		}
		seen[label] = true
		fields = append(fields, label)
	})

	if len(fields) == 0 {
		return model.Component{}, false
	}
	return model.Component{Type: model.ComponentForm, Fields: fields}, true
}

// fieldLabel derives a human label for one control: explicit <label> text
// first, else the placeholder, else the name attribute. Underscores and
// hyphens become spaces and the result is title-cased.
func fieldLabel(scope, control *goquery.Selection) string {
	raw := ""
	if id := control.AttrOr("id", ""); id != "" {
		if label := scope.Find(`label[for="` + id + `"]`).First(); label.Length() > 0 {
			raw = Text(label)
		}
	}
	if raw == "" {
		if label := control.Closest("label"); label.Length() > 0 {
			raw = Text(label)
		}
	}
	if raw == "" {
		raw = control.AttrOr("placeholder", "")
	}
	if raw == "" {
		raw = control.AttrOr("name", "")
	}

	raw = strings.NewReplacer("_", " ", "-", " ").Replace(raw)
	raw = strings.Join(strings.Fields(raw), " ")
	if raw == "" {
		return ""
	}
	return fieldTitler.String(raw)
}
