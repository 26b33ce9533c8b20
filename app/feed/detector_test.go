package feed

import (
	"errors"
	"testing"
)

func TestDetectorPriorityOrder(t *testing.T) {
	detector := NewDetector(testClock())

	tests := []struct {
		name     string
		payload  string
		expected Format
	}{
		{"json feed", `{"version": "https://jsonfeed.org/version/1.1", "items": []}`, FormatJSON},
		{"rss feed", `<?xml version="1.0"?><rss version="2.0"><channel></channel></rss>`, FormatXML},
		{"atom feed", `<feed xmlns="http://www.w3.org/2005/Atom"></feed>`, FormatXML},
		{"plain text", "Title: Something\nLink: https://example.com", FormatTXT},
		{"html error page", `<!DOCTYPE html><html><body>502 Bad Gateway</body></html>`, FormatTXT},
		{"invalid json falls through", `{broken json`, FormatTXT},
	}

	for _, test := range tests {
		parser, err := detector.Run(test.payload, "")
		if err != nil {
			t.Errorf("%s: expected no error, got: %v", test.name, err)
			continue
		}
		if parser.Format() != test.expected {
			t.Errorf("%s: expected format %s, got %s", test.name, test.expected, parser.Format())
		}
	}
}

func TestDetectorCodeTokenRoutesToText(t *testing.T) {
	detector := NewDetector(testClock())

	// Syntactically valid JSON that carries a code token must not be
	// treated as a JSON feed; the text parser picks it up instead.
	payload := `{"body": "export default function main() {}"}`

	parser, err := detector.Run(payload, "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if parser.Format() != FormatTXT {
		t.Errorf("Expected code-bearing payload to route to TXT, got: %s", parser.Format())
	}
}

func TestDetectorEmptyPayload(t *testing.T) {
	detector := NewDetector(testClock())

	for _, payload := range []string{"", "   ", "\n\t"} {
		_, err := detector.Run(payload, "")
		if !errors.Is(err, ErrEmptyPayload) {
			t.Errorf("Expected ErrEmptyPayload for %q, got: %v", payload, err)
		}
	}
}

func TestDetectorHintDoesNotOverrideContent(t *testing.T) {
	detector := NewDetector(testClock())

	// An upstream content-type lying about the format must not matter.
	parser, err := detector.Run(`{"items": []}`, "application/xml")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if parser.Format() != FormatJSON {
		t.Errorf("Expected content to win over hint, got: %s", parser.Format())
	}
}
