package feed

import (
	"strings"
	"testing"
)

func TestContentExtractorValidHTML(t *testing.T) {
	extractor := NewContentExtractor()

	htmlContent := `
	<!DOCTYPE html>
	<html>
	<head>
		<title>Test Article</title>
	</head>
	<body>
		<header>
			<h1>Site Header</h1>
			<nav>Navigation</nav>
		</header>
		<main>
			<article>
				<h1>Main Article Title</h1>
				<p>This is the main content of the article. It contains several paragraphs of meaningful text that should be extracted by the readability algorithm.</p>
				<p>This is another paragraph with more content. The readability algorithm should identify this as the main content area and extract it properly.</p>
				<p>Here is some more substantial content to ensure we meet the character threshold. This paragraph adds more context and information that would be valuable to readers.</p>
			</article>
		</main>
		<aside>
			<div>Advertisement</div>
		</aside>
		<footer>
			<p>Copyright 2024</p>
		</footer>
	</body>
	</html>
	`

	result, err := extractor.Run([]byte(htmlContent))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result == "" {
		t.Fatal("Expected non-empty result")
	}

	if !strings.Contains(result, "main content of the article") {
		t.Error("Expected extracted content to contain main article text")
	}

	if strings.Contains(result, "Advertisement") {
		t.Error("Expected extracted content to exclude advertisement")
	}
}

func TestContentExtractorEmptyData(t *testing.T) {
	extractor := NewContentExtractor()

	for _, data := range [][]byte{nil, {}} {
		result, err := extractor.Run(data)
		if err == nil {
			t.Error("Expected error for empty data")
		}
		if result != "" {
			t.Error("Expected empty result for empty data")
		}
	}
}

func TestContentExtractorPreservesFormatting(t *testing.T) {
	extractor := NewContentExtractor()

	htmlContent := `
	<!DOCTYPE html>
	<html>
	<head><title>Formatted Article</title></head>
	<body>
		<article>
			<h1>Article with Formatting</h1>
			<p>This paragraph contains <strong>bold text</strong> and <em>italic text</em> that should be preserved through the extraction process.</p>
			<p>Here's a <a href="https://example.com">link to example</a> that should be maintained in the extracted output.</p>
			<p>This paragraph follows and contains more content for the article so the extraction threshold is comfortably met.</p>
		</article>
	</body>
	</html>
	`

	result, err := extractor.Run([]byte(htmlContent))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(result, "<strong>") {
		t.Error("Expected extracted content to preserve bold formatting")
	}
	if !strings.Contains(result, "<a href=") {
		t.Error("Expected extracted content to preserve links")
	}
}

func TestContentExtractorScriptRemoval(t *testing.T) {
	extractor := NewContentExtractor()

	htmlContent := `
	<!DOCTYPE html>
	<html>
	<head><title>Article with Scripts</title></head>
	<body>
		<script>
			console.log("This script should be removed");
		</script>
		<article>
			<h1>Clean Article Content</h1>
			<p>This is the main content that should be extracted without any scripts or styles interfering. The article contains substantial text content that meets the readability algorithm's requirements.</p>
			<p>The content extraction should focus on the meaningful text and ignore technical elements. This paragraph provides additional context and information for readers.</p>
		</article>
	</body>
	</html>
	`

	result, err := extractor.Run([]byte(htmlContent))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(result, "main content that should be extracted") {
		t.Error("Expected extracted content to contain main article text")
	}
	if strings.Contains(result, "console.log") {
		t.Error("Expected extracted content to exclude script content")
	}
}
