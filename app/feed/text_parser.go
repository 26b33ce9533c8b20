package feed

import (
	"cmp"
	"strings"
	"time"
)

// textKeys maps recognized digest line prefixes onto record fields.
var textKeys = map[string]bool{
	"title":       true,
	"link":        true,
	"url":         true,
	"date":        true,
	"pubdate":     true,
	"published":   true,
	"author":      true,
	"description": true,
	"summary":     true,
}

type TextParser struct {
	now func() time.Time
}

func NewTextParser(now func() time.Time) *TextParser {
	if now == nil {
		now = time.Now
	}
	return &TextParser{now: now}
}

func (p *TextParser) Format() Format {
	return FormatTXT
}

// Detect accepts any non-empty payload. The text parser is the terminal
// catch-all and must stay registered last.
func (p *TextParser) Detect(payload, hint string) bool {
	return strings.TrimSpace(payload) != ""
}

// Parse reads a plain-text digest: blocks separated by blank lines, each
// block a sequence of "Key: value" lines (Title, Link, Date, Author,
// Description). Unkeyed lines join the description; a block with no keyed
// lines uses its first line as the title. Never errors on non-empty input.
func (p *TextParser) Parse(payload, sourceURL string, sctx SourceContext) ([]Record, error) {
	name := cmp.Or(sctx.DisplayName, "Text Feed")
	feedListID := cmp.Or(sctx.FeedListID, DefaultFeedListID)

	blocks := splitBlocks(payload)
	records := make([]Record, 0, len(blocks))
	for i, block := range blocks {
		rec := Record{
			ID:         recordID(sourceURL, i),
			Name:       name,
			URL:        sourceURL,
			Title:      "No title",
			Link:       sourceURL,
			PubDate:    formatTime(p.now()),
			FeedListID: feedListID,
		}

		var desc []string
		var rawDate string
		keyed := false

		for _, line := range block {
			key, value, ok := splitKeyValue(line)
			if !ok {
				desc = append(desc, line)
				continue
			}
			keyed = true
			switch key {
			case "title":
				rec.Title = cmp.Or(value, rec.Title)
			case "link", "url":
				if value != "" {
					rec.Link = value
				}
			case "date", "pubdate", "published":
				rawDate = value
			case "author":
				rec.Author = value
			case "description", "summary":
				if value != "" {
					desc = append(desc, value)
				}
			}
		}

		if !keyed && len(desc) > 0 {
			rec.Title = desc[0]
			desc = desc[1:]
		}
		if rawDate != "" {
			rec.PubDate = normalizeDate(rawDate, p.now)
		}
		if len(desc) > 0 {
			rec.Description = strings.Join(desc, "\n")
		}

		records = append(records, rec)
	}

	return records, nil
}

// splitBlocks groups non-empty lines between blank lines.
func splitBlocks(payload string) [][]string {
	var blocks [][]string
	var current []string

	for _, line := range strings.Split(payload, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, strings.TrimSpace(line))
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}

	return blocks
}

// splitKeyValue recognizes "Key: value" lines with a known digest key.
// Anything else is free text.
func splitKeyValue(line string) (string, string, bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	key := strings.ToLower(strings.TrimSpace(line[:idx]))
	if !textKeys[key] {
		return "", "", false
	}
	return key, strings.TrimSpace(line[idx+1:]), true
}
