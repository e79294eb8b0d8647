package model

// Product represents one scraped product record. Every field is optional:
// missing markup leaves a field empty without invalidating the record.
type Product struct {
	ASIN           string   `json:"asin,omitempty"`
	Title          string   `json:"title,omitempty"`
	Brand          string   `json:"brand,omitempty"`
	Price          string   `json:"price,omitempty"`
	Rating         string   `json:"rating,omitempty"`
	ReviewCount    string   `json:"review_count,omitempty"`
	BulletFeatures []string `json:"bullet_features,omitempty"`
	Breadcrumbs    []string `json:"breadcrumbs,omitempty"`
	Dimensions     string   `json:"dimensions,omitempty"`
	Weight         string   `json:"weight,omitempty"`
	URL            string   `json:"url,omitempty"`
	ImageURL       string   `json:"image_url,omitempty"`
}
