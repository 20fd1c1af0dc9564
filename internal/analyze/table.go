package analyze

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/webinventory/internal/model"
)

// tableRule matches tabular structures and samples their shape.
type tableRule struct{}

// Name returns the rule name.
func (tableRule) Name() string { return model.ComponentTable }

// Match extracts column headers from <th> cells and up to TableSampleRows
// data rows. A table with neither a header row nor two data rows is
// layout, not data, and falls through to later rules.
func (tableRule) Match(block *goquery.Selection) (model.Component, bool) {
	table := selfOrFind(block, "table")
	if table == nil {
		return model.Component{}, false
	}

	columns := make([]string, 0)
	table.Find("th").Each(func(_ int, th *goquery.Selection) {
		if text := Text(th); text != "" {
			columns = append(columns, text)
		}
	})

	rows := make([][]string, 0, model.TableSampleRows)
	table.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		cells := tr.Find("td")
		if cells.Length() == 0 {
			return true // header or layout row
		}

		row := make([]string, 0, cells.Length())
		empty := true
		cells.Each(func(_ int, td *goquery.Selection) {
			text := Text(td)
			if text != "" {
				empty = false
			}
			row = append(row, text)
		})
		if !empty {
			rows = append(rows, row)
		}
		return len(rows) < model.TableSampleRows
	})

	if len(columns) == 0 && len(rows) < 2 {
		return model.Component{}, false
	}
	return model.Component{Type: model.ComponentTable, Columns: columns, SampleData: rows}, true
}
