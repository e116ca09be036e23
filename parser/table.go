package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-scrape-fbref/models"
)

// maxSpan bounds colspan/rowspan values taken from markup.
const maxSpan = 1000

var whitespace = regexp.MustCompile(`[\r\n]+|\s{2,}`)

type spanned struct {
	col  int
	text string
	rows int
}

// ParseTable converts a table into a header and data rows. Rows come from
// thead, tbody and tfoot in that order; rows before headerRow are dropped
// and row headerRow becomes the header. Spanning cells are repeated into
// every column and row they cover.
func ParseTable(sel *goquery.Selection, headerRow int) (*models.Table, error) {
	if sel == nil || sel.Length() == 0 {
		return nil, fmt.Errorf("no table")
	}
	if headerRow < 0 {
		return nil, fmt.Errorf("invalid header row %d", headerRow)
	}

	var trs []*goquery.Selection
	for _, section := range []string{"thead", "tbody", "tfoot"} {
		sel.ChildrenFiltered(section).ChildrenFiltered("tr").Each(func(_ int, tr *goquery.Selection) {
			if !hidden(tr) {
				trs = append(trs, tr)
			}
		})
	}

	rows := expandSpans(trs)
	if len(rows) <= headerRow {
		return nil, fmt.Errorf("table has %d rows, need at least %d for header row %d", len(rows), headerRow+1, headerRow)
	}

	header := rows[headerRow]
	body := rows[headerRow+1:]

	width := len(header)
	for _, row := range body {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return nil, fmt.Errorf("table has no columns")
	}

	table := &models.Table{
		Header: headerNames(header, width),
		Rows:   make([][]string, 0, len(body)),
	}
	for _, row := range body {
		padded := make([]string, width)
		copy(padded, row)
		table.Rows = append(table.Rows, padded)
	}
	return table, nil
}

func expandSpans(trs []*goquery.Selection) [][]string {
	var out [][]string
	var remainder []spanned

	for _, tr := range trs {
		var texts []string
		var next []spanned
		col := 0

		tr.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
			if hidden(cell) {
				return
			}
			for len(remainder) > 0 && remainder[0].col <= col {
				prev := remainder[0]
				remainder = remainder[1:]
				texts = append(texts, prev.text)
				if prev.rows > 1 {
					next = append(next, spanned{col: prev.col, text: prev.text, rows: prev.rows - 1})
				}
				col++
			}

			text := cellText(cell)
			rowspan := spanAttr(cell, "rowspan")
			colspan := spanAttr(cell, "colspan")
			for i := 0; i < colspan; i++ {
				texts = append(texts, text)
				if rowspan > 1 {
					next = append(next, spanned{col: col, text: text, rows: rowspan - 1})
				}
				col++
			}
		})

		for _, prev := range remainder {
			texts = append(texts, prev.text)
			if prev.rows > 1 {
				next = append(next, spanned{col: prev.col, text: prev.text, rows: prev.rows - 1})
			}
		}

		if len(texts) > 0 {
			out = append(out, texts)
		}
		remainder = next
	}

	// Rowspans running past the last row still produce rows.
	for len(remainder) > 0 {
		var texts []string
		var next []spanned
		for _, prev := range remainder {
			texts = append(texts, prev.text)
			if prev.rows > 1 {
				next = append(next, spanned{col: prev.col, text: prev.text, rows: prev.rows - 1})
			}
		}
		out = append(out, texts)
		remainder = next
	}
	return out
}

// headerNames fills blank names and suffixes repeats with ".n", retrying
// until the generated name is not already taken.
func headerNames(raw []string, width int) []string {
	names := make([]string, width)
	counts := make(map[string]int, width)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(raw) {
			name = raw[i]
		}
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		n := counts[name]
		for n > 0 {
			counts[name] = n + 1
			name = name + "." + strconv.Itoa(n)
			n = counts[name]
		}
		counts[name] = n + 1
		names[i] = name
	}
	return names
}

func cellText(cell *goquery.Selection) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(cell.Text(), " "))
}

func spanAttr(cell *goquery.Selection, name string) int {
	raw, ok := cell.Attr(name)
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	if n > maxSpan {
		return maxSpan
	}
	return n
}

func hidden(sel *goquery.Selection) bool {
	style := strings.ReplaceAll(strings.ToLower(sel.AttrOr("style", "")), " ", "")
	return strings.Contains(style, "display:none")
}
