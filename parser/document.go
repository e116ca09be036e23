// Package parser locates statistics tables in rendered fbref pages and
// converts them into rows.
package parser

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/aluiziolira/go-scrape-fbref/models"
)

const (
	// ClassificationPrefix is the id prefix shared by standings tables.
	ClassificationPrefix = "results"

	// StatsHeaderRow is the header row of statistics tables; row 0 is a
	// column-group label row.
	StatsHeaderRow = 1
)

// Document is a parsed page with its tables indexed in document order.
// Tables shipped inside HTML comments are indexed after the visible ones.
type Document struct {
	doc    *goquery.Document
	tables []*goquery.Selection
}

// NewDocument parses markup from r.
func NewDocument(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	d := &Document{doc: doc}
	doc.Find("table").Each(func(_ int, sel *goquery.Selection) {
		d.tables = append(d.tables, sel)
	})
	for _, n := range doc.Nodes {
		d.collectCommented(n)
	}
	return d, nil
}

// NewDocumentFromString parses markup held in memory.
func NewDocumentFromString(markup string) (*Document, error) {
	return NewDocument(strings.NewReader(markup))
}

func (d *Document) collectCommented(n *html.Node) {
	if n.Type == html.CommentNode && strings.Contains(n.Data, "<table") {
		frag, err := goquery.NewDocumentFromReader(strings.NewReader(n.Data))
		if err != nil {
			slog.Debug("skip unparsable commented markup", slog.Any("error", err))
			return
		}
		frag.Find("table").Each(func(_ int, sel *goquery.Selection) {
			d.tables = append(d.tables, sel)
		})
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.collectCommented(c)
	}
}

// TableIDs lists the ids of all indexed tables, in index order.
func (d *Document) TableIDs() []string {
	ids := make([]string, 0, len(d.tables))
	for _, t := range d.tables {
		ids = append(ids, t.AttrOr("id", ""))
	}
	return ids
}

// FindTable returns the first table whose id starts with prefix, or nil.
func (d *Document) FindTable(prefix string) *goquery.Selection {
	for _, t := range d.tables {
		if id, ok := t.Attr("id"); ok && id != "" && strings.HasPrefix(id, prefix) {
			return t
		}
	}
	return nil
}

// FindTableByID returns the table whose id equals id, or nil.
func (d *Document) FindTableByID(id string) *goquery.Selection {
	for _, t := range d.tables {
		if got, ok := t.Attr("id"); ok && got == id {
			return t
		}
	}
	return nil
}

// ExtractTable finds the first table matching prefix and parses it using
// its second row as header. A table that cannot be parsed is logged and
// reported as absent.
func (d *Document) ExtractTable(prefix string) *models.Table {
	sel := d.FindTable(prefix)
	if sel == nil {
		return nil
	}
	table, err := ParseTable(sel, StatsHeaderRow)
	if err != nil {
		slog.Error("read table",
			slog.String("table_id", prefix),
			slog.Any("error", err),
		)
		return nil
	}
	return table
}

// ClassificationID is the id of the overall standings table of a season.
func ClassificationID(season string) string {
	return ClassificationPrefix + season + "121_overall"
}

// Classification finds the standings table of season: the exact overall id
// first, then the first table whose id starts with "results".
func (d *Document) Classification(season string) *goquery.Selection {
	if sel := d.FindTableByID(ClassificationID(season)); sel != nil {
		return sel
	}
	return d.FindTable(ClassificationPrefix)
}
