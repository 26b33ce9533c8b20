package feed

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Parser is one registered format: a cheap structural check plus the
// conversion of a raw payload into normalized records. Parse must not
// error for missing optional fields or individual malformed items.
type Parser interface {
	Format() Format
	Detect(payload, hint string) bool
	Parse(payload, sourceURL string, sctx SourceContext) ([]Record, error)
}

// ErrEmptyPayload is the terminal detection failure for empty or
// whitespace-only payloads.
var ErrEmptyPayload = errors.New("payload is empty")

// Detector selects the parser for a raw payload. Parsers are evaluated
// in fixed priority order JSON, XML, TXT; TXT accepts any non-empty
// payload and must stay last or it would shadow the others.
type Detector struct {
	parsers []Parser
}

func NewDetector(now func() time.Time) *Detector {
	if now == nil {
		now = time.Now
	}
	return &Detector{
		parsers: []Parser{
			NewJSONParser(now),
			NewXMLParser(now),
			NewTextParser(now),
		},
	}
}

// Run returns the first parser whose Detect accepts the payload. The
// content-type hint is passed through to the parsers as a hint only;
// upstream labels are routinely wrong.
func (d *Detector) Run(payload, hint string) (Parser, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, ErrEmptyPayload
	}

	for _, parser := range d.parsers {
		if parser.Detect(payload, hint) {
			return parser, nil
		}
	}

	return nil, fmt.Errorf("no parser accepted the payload")
}
