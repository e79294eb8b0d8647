package extractor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

const baseURL = "https://www.amazon.com"

func searchHTML(items string) string {
	return fmt.Sprintf(`<html><body><div class="s-result-list">%s</div></body></html>`, items)
}

func TestExtractSearchResults(t *testing.T) {
	html := searchHTML(`
		<div data-component-type="s-search-result"><a class="a-link-normal" href="/dp/B000000001/ref=sr_1">One</a></div>
		<div data-component-type="s-search-result"><a class="a-link-normal" href="https://www.amazon.com/dp/B000000002">Two</a></div>
		<div data-component-type="s-search-result"><a class="a-link-normal" href="/dp/B000000003">Three</a></div>`)

	urls, err := ExtractSearchResults(html, 10, baseURL)
	assert.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.amazon.com/dp/B000000001/ref=sr_1",
		"https://www.amazon.com/dp/B000000002",
		"https://www.amazon.com/dp/B000000003",
	}, urls)
}

func TestExtractSearchResultsLimit(t *testing.T) {
	html := searchHTML(`
		<div data-component-type="s-search-result"><a class="a-link-normal" href="/dp/B000000001">One</a></div>
		<div data-component-type="s-search-result"><a class="a-link-normal" href="/dp/B000000002">Two</a></div>
		<div data-component-type="s-search-result"><a class="a-link-normal" href="/dp/B000000003">Three</a></div>`)

	urls, err := ExtractSearchResults(html, 2, baseURL)
	assert.NoError(t, err)
	assert.Len(t, urls, 2)
	assert.Equal(t, "https://www.amazon.com/dp/B000000001", urls[0])
	assert.Equal(t, "https://www.amazon.com/dp/B000000002", urls[1])
}

func TestExtractSearchResultsSkipsContainersWithoutLink(t *testing.T) {
	// The limit applies to containers in document order, so a linkless
	// container is skipped but still consumes a slot.
	html := searchHTML(`
		<div data-component-type="s-search-result"><a class="a-link-normal" href="/dp/B000000001">One</a></div>
		<div data-component-type="s-search-result"><span>sponsored placeholder</span></div>
		<div data-component-type="s-search-result"><a class="a-link-normal" href="/dp/B000000003">Three</a></div>`)

	urls, err := ExtractSearchResults(html, 3, baseURL)
	assert.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.amazon.com/dp/B000000001",
		"https://www.amazon.com/dp/B000000003",
	}, urls)
}

func TestExtractSearchResultsEmptyPage(t *testing.T) {
	urls, err := ExtractSearchResults("<html><body></body></html>", 5, baseURL)
	assert.NoError(t, err)
	assert.Empty(t, urls)
}

func TestExtractSearchResultsUsesFirstAnchor(t *testing.T) {
	html := searchHTML(`
		<div data-component-type="s-search-result">
			<a class="a-link-normal" href="/dp/B000000001">Primary</a>
			<a class="a-link-normal" href="/dp/B0DIFFERENT">Secondary</a>
		</div>`)

	urls, err := ExtractSearchResults(html, 1, baseURL)
	assert.NoError(t, err)
	assert.Equal(t, []string{"https://www.amazon.com/dp/B000000001"}, urls)
}
