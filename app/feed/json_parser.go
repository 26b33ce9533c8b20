package feed

import (
	"cmp"
	"encoding/json"
	"strings"
	"time"
)

// Tokens that mark a payload as script or error-page output rather than
// feed JSON. CORS proxies routinely return bundled JS or HTML error
// pages labeled as JSON.
var codeTokens = []string{"export ", "function ", "import ", "const "}

type JSONParser struct {
	now func() time.Time
}

func NewJSONParser(now func() time.Time) *JSONParser {
	if now == nil {
		now = time.Now
	}
	return &JSONParser{now: now}
}

func (p *JSONParser) Format() Format {
	return FormatJSON
}

// Detect fast-rejects on code tokens and non-object prefixes before
// paying for a full validity check. A failed check means NOT JSON, never
// an error.
func (p *JSONParser) Detect(payload, hint string) bool {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return false
	}
	for _, token := range codeTokens {
		if strings.Contains(trimmed, token) {
			return false
		}
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return false
	}
	return json.Valid([]byte(trimmed))
}

// Parse maps a JSON Feed payload onto canonical records. Every missing
// field has a default; a malformed item is emitted with defaulted fields
// rather than skipped, so the batch length always matches the item count.
func (p *JSONParser) Parse(payload, sourceURL string, sctx SourceContext) ([]Record, error) {
	name := cmp.Or(sctx.DisplayName, "JSON Feed")
	feedListID := cmp.Or(sctx.FeedListID, DefaultFeedListID)

	var doc map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(payload)), &doc); err != nil {
		// Detect vouched for syntactic validity; a top-level array or
		// scalar still lands here and carries no items.
		return []Record{}, nil
	}

	items := sliceValue(doc, "items")
	records := make([]Record, 0, len(items))
	for i, raw := range items {
		rec := Record{
			ID:         recordID(sourceURL, i),
			Name:       name,
			URL:        sourceURL,
			Title:      "No title",
			Link:       sourceURL,
			PubDate:    formatTime(p.now()),
			FeedListID: feedListID,
		}

		if item, ok := raw.(map[string]any); ok {
			rec.Title = stringValue(item, "title", rec.Title)
			rec.Link = cmp.Or(stringValue(item, "url", ""), stringValue(item, "external_url", ""), sourceURL)
			rec.PubDate = normalizeDate(stringValue(item, "date_published", ""), p.now)
			rec.Description = stringValue(item, "summary", "")
			rec.Content = cmp.Or(stringValue(item, "content_html", ""), stringValue(item, "content_text", ""))
			rec.Author = jsonAuthor(item)
			rec.Categories = stringSlice(item, "tags")
			rec.Media = jsonAttachments(item)
		}

		records = append(records, rec)
	}

	return records, nil
}

func jsonAuthor(item map[string]any) string {
	// JSON Feed 1.1 authors list, 1.0 singular author
	for _, raw := range sliceValue(item, "authors") {
		if author, ok := raw.(map[string]any); ok {
			if name := stringValue(author, "name", ""); name != "" {
				return name
			}
		}
	}
	if author := mapValue(item, "author"); author != nil {
		return stringValue(author, "name", "")
	}
	return ""
}

func jsonAttachments(item map[string]any) []Media {
	raw := sliceValue(item, "attachments")
	if len(raw) == 0 {
		return nil
	}
	media := make([]Media, 0, len(raw))
	for _, v := range raw {
		attachment, ok := v.(map[string]any)
		if !ok {
			continue
		}
		url := stringValue(attachment, "url", "")
		if url == "" {
			continue
		}
		media = append(media, Media{URL: url, Type: stringValue(attachment, "mime_type", "")})
	}
	if len(media) == 0 {
		return nil
	}
	return media
}
