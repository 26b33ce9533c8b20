package feed

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"time"

	"github.com/jthora/feedgate/app/cfg"
	"github.com/jthora/feedgate/app/database"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run renders a stored source and its normalized records back into an
// RSS 2.0 document.
func (g *Generator) Run(source database.Source, records []database.Record) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", cmp.Or(source.DisplayName, source.Name), 4)
	g.writeElement(&buf, "link", source.URL, 4)
	g.writeElement(&buf, "description", fmt.Sprintf("Normalized feed from %s", source.URL), 4)

	var selfLink string
	if cfg.Get().BaseUrl != "" {
		selfLink = fmt.Sprintf("%s/feeds/%s", cfg.Get().BaseUrl, source.Name)
	} else {
		selfLink = fmt.Sprintf("http://localhost:%s/feeds/%s", cfg.Get().Port, source.Name)
	}
	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(selfLink)))

	lastBuildDate := time.Now().In(time.Local)
	if len(records) > 0 {
		if t, err := time.Parse(time.RFC3339, records[0].PubDate); err == nil {
			lastBuildDate = t
		}
	}

	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("FeedGate/%s", cfg.Get().Version), 4)

	for _, rec := range records {
		g.writeRecord(&buf, rec)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeRecord(buf *bytes.Buffer, rec database.Record) {
	buf.WriteString("    <item>\n")

	if rec.RecordID != "" {
		buf.WriteString("      <guid isPermaLink=\"false\">")
		xml.EscapeText(buf, []byte(rec.RecordID))
		buf.WriteString("</guid>\n")
	}

	g.writeElement(buf, "title", rec.Title, 6)

	if rec.Link != "" {
		g.writeElement(buf, "link", rec.Link, 6)
	}

	g.writeElement(buf, "description", cmp.Or(rec.Description, "No description available"), 6)

	if rec.Content != "" && rec.Content != rec.Description {
		buf.WriteString("      <content:encoded><![CDATA[")
		buf.WriteString(rec.Content)
		buf.WriteString("]]></content:encoded>\n")
	}

	g.writeElement(buf, "pubDate", rssDate(rec.PubDate), 6)

	if rec.Author != "" {
		g.writeElement(buf, "author", rec.Author, 6)
	}

	for _, category := range rec.Categories {
		if category != "" {
			g.writeElement(buf, "category", category, 6)
		}
	}

	// RSS 2.0 allows a single enclosure per item
	if len(rec.Media) > 0 && rec.Media[0].URL != "" {
		buf.WriteString(fmt.Sprintf("      <enclosure url=\"%s\" length=\"0\" type=\"%s\" />\n",
			html.EscapeString(rec.Media[0].URL),
			html.EscapeString(rec.Media[0].Type)))
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

// rssDate converts a stored RFC 3339 pubDate to the RFC 1123 form RSS
// expects; an unparseable value passes through untouched.
func rssDate(pubDate string) string {
	if t, err := time.Parse(time.RFC3339, pubDate); err == nil {
		return t.Format(time.RFC1123Z)
	}
	return pubDate
}
