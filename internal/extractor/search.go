package extractor

import (
	"strings"

	scraperrors "amazonworker/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

const (
	searchResultSelector = `div[data-component-type="s-search-result"]`
	resultLinkSelector   = "a.a-link-normal"
)

// ExtractSearchResults returns the detail-page URLs of at most limit result
// containers, in document order. Containers without a resolvable href are
// skipped; relative hrefs are resolved against baseURL.
func ExtractSearchResults(html string, limit int, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, scraperrors.NewParsing("", "parse search results page", err)
	}

	var urls []string
	doc.Find(searchResultSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= limit {
			return false
		}

		href, ok := s.Find(resultLinkSelector).First().Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return true
		}

		if strings.HasPrefix(href, "/") {
			href = baseURL + href
		}
		urls = append(urls, href)
		return true
	})

	return urls, nil
}
