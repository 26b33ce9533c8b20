package feed

import (
	"cmp"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

type XMLParser struct {
	now          func() time.Time
	gofeedParser *gofeed.Parser
}

func NewXMLParser(now func() time.Time) *XMLParser {
	if now == nil {
		now = time.Now
	}
	return &XMLParser{
		now:          now,
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *XMLParser) Format() Format {
	return FormatXML
}

// Detect scans for the document's root element without building a tree.
// rss, feed and RDF roots cover RSS 2.0, Atom and RSS 1.0.
func (p *XMLParser) Detect(payload, hint string) bool {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" || trimmed[0] != '<' {
		return false
	}
	switch xmlRootName(trimmed) {
	case "rss", "feed", "RDF":
		return true
	}
	return false
}

func xmlRootName(payload string) string {
	decoder := xml.NewDecoder(strings.NewReader(payload))
	for {
		token, err := decoder.Token()
		if err != nil {
			return ""
		}
		if start, ok := token.(xml.StartElement); ok {
			return start.Name.Local
		}
	}
}

// Parse converts an RSS/Atom payload into canonical records. A payload
// that fails well-formedness is the only parser-level error in the
// pipeline; individual items still default field by field.
func (p *XMLParser) Parse(payload, sourceURL string, sctx SourceContext) ([]Record, error) {
	parsed, err := p.gofeedParser.ParseString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	name := cmp.Or(sctx.DisplayName, "RSS Feed")
	feedListID := cmp.Or(sctx.FeedListID, DefaultFeedListID)

	records := make([]Record, 0, len(parsed.Items))
	for i, item := range parsed.Items {
		rec := Record{
			ID:         recordID(sourceURL, i),
			Name:       name,
			URL:        sourceURL,
			Title:      "No title",
			Link:       sourceURL,
			PubDate:    formatTime(p.now()),
			FeedListID: feedListID,
		}

		if item != nil {
			rec.Title = cmp.Or(item.Title, rec.Title)
			rec.Link = cmp.Or(item.Link, sourceURL)
			rec.PubDate = p.itemDate(item)
			rec.Description = item.Description
			rec.Content = item.Content
			rec.Author = extractAuthor(item)
			if len(item.Categories) > 0 {
				rec.Categories = item.Categories
			}
			rec.Media = extractEnclosures(item)
		}

		records = append(records, rec)
	}

	return records, nil
}

func (p *XMLParser) itemDate(item *gofeed.Item) string {
	if item.PublishedParsed != nil {
		return formatTime(*item.PublishedParsed)
	}
	if item.UpdatedParsed != nil {
		return formatTime(*item.UpdatedParsed)
	}
	return normalizeDate(cmp.Or(item.Published, item.Updated), p.now)
}

func extractAuthor(item *gofeed.Item) string {
	for _, author := range item.Authors {
		if author == nil {
			continue
		}
		if formatted := formatAuthor(author.Name, author.Email); formatted != "" {
			return formatted
		}
	}
	if item.Author != nil {
		return formatAuthor(item.Author.Name, item.Author.Email)
	}
	return ""
}

func formatAuthor(name, email string) string {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name != "" && email != "" {
		return fmt.Sprintf("%s (%s)", email, name)
	} else if name != "" {
		return name
	} else if email != "" {
		return email
	}

	return ""
}

func extractEnclosures(item *gofeed.Item) []Media {
	if len(item.Enclosures) == 0 {
		return nil
	}
	media := make([]Media, 0, len(item.Enclosures))
	for _, enclosure := range item.Enclosures {
		if enclosure == nil || enclosure.URL == "" {
			continue
		}
		media = append(media, Media{URL: enclosure.URL, Type: enclosure.Type})
	}
	if len(media) == 0 {
		return nil
	}
	return media
}
