package extractor

import (
	"regexp"
	"strings"

	"amazonworker/helpers"
	"amazonworker/internal/model"
	scraperrors "amazonworker/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// Fallback selector chains, tried in order until one yields non-empty text
var (
	titleSelectors = []string{"#productTitle"}

	priceSelectors = []string{
		".a-price .a-offscreen",
		"#priceblock_ourprice",
		"#priceblock_dealprice",
		".a-price-whole",
	}

	ratingSelectors = []string{
		`span[data-hook="rating-out-of-text"]`,
		"i.a-icon-star span",
	}
)

const (
	asinInputSelector   = `input[name="ASIN"]`
	reviewCountSelector = "#acrCustomerReviewText"
	bulletsSelector     = "#feature-bullets ul li span.a-list-item"
	brandSelector       = "#bylineInfo"
	imageSelector       = "#landingImage"
	breadcrumbsSelector = "#wayfinding-breadcrumbs_feature_div ul li a"

	dimensionContainersSelector = "table.prodDetTable, #productDetails_techSpec_section_1, " +
		"#detailBullets_feature_div, #productOverview_feature_div"
	detailRowSelector = "tr, li, .a-list-item"
)

var (
	asinPattern = regexp.MustCompile(`/dp/([A-Z0-9]{10})`)

	brandLabelPattern     = regexp.MustCompile(`(?i)^Brand:\s*`)
	dimensionLabelPattern = regexp.MustCompile(`(?i)^(Product Dimensions|Item Dimensions|Dimensions|Size|Item Display Dimensions)\s*[:\s]*`)
	weightLabelPattern    = regexp.MustCompile(`(?i)^(Item Weight|Product Weight|Package Weight|Weight)\s*[:\s]*`)

	weightUnits = []string{"ounce", "pound", "kg", "g", "lb", "oz"}
)

// ExtractProduct converts a rendered detail page into a product record.
// Missing fields never fail the extraction; only unparseable input does.
func ExtractProduct(html, sourceURL string) (model.Product, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return model.Product{}, scraperrors.NewParsing(sourceURL, "parse product page", err)
	}

	dimensions, weight := extractDimensionsAndWeight(doc)

	return model.Product{
		URL:            sourceURL,
		ASIN:           extractASIN(doc, sourceURL),
		Title:          firstMatch(doc, titleSelectors),
		Brand:          extractBrand(doc),
		Price:          firstMatch(doc, priceSelectors),
		Rating:         firstMatch(doc, ratingSelectors),
		ReviewCount:    firstMatch(doc, []string{reviewCountSelector}),
		BulletFeatures: extractTexts(doc, bulletsSelector),
		Breadcrumbs:    extractTexts(doc, breadcrumbsSelector),
		ImageURL:       extractAttr(doc, imageSelector, "src"),
		Dimensions:     dimensions,
		Weight:         weight,
	}, nil
}

// firstMatch tries each selector in order and returns the first non-empty
// normalized text
func firstMatch(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if text := helpers.CleanText(sel.Text()); text != "" {
			return text
		}
	}
	return ""
}

// extractASIN resolves the identifier from the URL path first, falling back
// to the hidden form input on the page
func extractASIN(doc *goquery.Document, sourceURL string) string {
	if m := asinPattern.FindStringSubmatch(sourceURL); m != nil {
		return m[1]
	}

	value, _ := doc.Find(asinInputSelector).First().Attr("value")
	return strings.TrimSpace(value)
}

func extractBrand(doc *goquery.Document) string {
	text := firstMatch(doc, []string{brandSelector})
	if text == "" {
		return ""
	}
	text = brandLabelPattern.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "Visit the ", "")
	text = strings.ReplaceAll(text, " Store", "")
	return strings.TrimSpace(text)
}

func extractTexts(doc *goquery.Document, selector string) []string {
	var texts []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if text := helpers.CleanText(s.Text()); text != "" {
			texts = append(texts, text)
		}
	})
	return texts
}

func extractAttr(doc *goquery.Document, selector, attr string) string {
	value, _ := doc.Find(selector).First().Attr(attr)
	return strings.TrimSpace(value)
}

// extractDimensionsAndWeight scans the known detail containers row by row.
// The first qualifying row wins per field, with one exception: a weight
// clause embedded in a dimensions row replaces any weight seen so far.
func extractDimensionsAndWeight(doc *goquery.Document) (string, string) {
	var dimensions, weight string

	doc.Find(dimensionContainersSelector).Each(func(_ int, container *goquery.Selection) {
		container.Find(detailRowSelector).Each(func(_ int, row *goquery.Selection) {
			text := helpers.CleanText(row.Text())
			if text == "" {
				return
			}
			lower := strings.ToLower(text)

			if dimensions == "" && (strings.Contains(lower, "dimension") || strings.Contains(lower, "size")) {
				value := dimensionLabelPattern.ReplaceAllString(text, "")
				if strings.Contains(value, ";") {
					parts := strings.Split(value, ";")
					value = strings.TrimSpace(parts[0])
					for _, part := range parts[1:] {
						if containsWeightUnit(part) {
							weight = strings.TrimSpace(part)
						}
					}
				}
				dimensions = strings.TrimSpace(value)
			}

			if weight == "" && strings.Contains(lower, "weight") {
				weight = strings.TrimSpace(weightLabelPattern.ReplaceAllString(text, ""))
			}
		})
	})

	return dimensions, weight
}

func containsWeightUnit(text string) bool {
	lower := strings.ToLower(text)
	for _, unit := range weightUnits {
		if strings.Contains(lower, unit) {
			return true
		}
	}
	return false
}
