package feed

import (
	"strings"
	"testing"
)

func TestContentExtractor_ExcerptAndImage(t *testing.T) {
	extractor := NewContentExtractor()

	htmlContent := `
	<!DOCTYPE html>
	<html>
	<head>
		<title>Test Article</title>
		<meta name="description" content="A short description of the article.">
		<meta property="og:image" content="https://example.com/lead.jpg">
	</head>
	<body>
		<main>
			<article>
				<h1>Main Article Title</h1>
				<p>This is the main content of the article. It contains several paragraphs of meaningful text that should be extracted by the readability algorithm.</p>
				<p>This is another paragraph with more content. The readability algorithm should identify this as the main content area and extract it properly.</p>
				<p>Here is some more substantial content to ensure we meet the character threshold. This paragraph adds more context and information that would be valuable to readers.</p>
			</article>
		</main>
	</body>
	</html>
	`

	result, err := extractor.Run([]byte(htmlContent), "https://example.com/article")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(result.Excerpt, "short description") {
		t.Errorf("Expected excerpt from the page description, got: %s", result.Excerpt)
	}
	if result.ImageURL != "https://example.com/lead.jpg" {
		t.Errorf("Expected lead image, got: %s", result.ImageURL)
	}
}

func TestContentExtractor_EmptyData(t *testing.T) {
	extractor := NewContentExtractor()

	if _, err := extractor.Run(nil, ""); err == nil {
		t.Error("Expected error for empty data")
	}
}

func TestContentExtractor_InvalidURL(t *testing.T) {
	extractor := NewContentExtractor()

	if _, err := extractor.Run([]byte("<html></html>"), "://bad"); err == nil {
		t.Error("Expected error for invalid page URL")
	}
}
