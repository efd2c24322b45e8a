package models

// PageKind classifies the page being rendered.
type PageKind string

const (
	PageOther    PageKind = "other"
	PageTaxonomy PageKind = "taxonomy"
	PageSingle   PageKind = "single"
)

const (
	PostTypeDownload = "download"
	TaxonomyCategory = "download_category"
	TaxonomyTag      = "download_tag"
)

// PageContext is the storefront's description of the current render,
// passed on the events query string.
type PageContext struct {
	Kind      PageKind `form:"page_type" json:"page_type"`
	Title     string   `form:"title" json:"title"`
	PostType  string   `form:"post_type" json:"post_type,omitempty"`
	ItemID    int64    `form:"item_id" json:"item_id,omitempty"`
	Taxonomy  string   `form:"taxonomy" json:"taxonomy,omitempty"`
	TermID    int64    `form:"term_id" json:"term_id,omitempty"`
	TermTitle string   `form:"term_title" json:"term_title,omitempty"`
}

// IsTax reports whether the page is a term archive of one of taxonomies.
func (p PageContext) IsTax(taxonomies ...string) bool {
	if p.Kind != PageTaxonomy {
		return false
	}
	for _, t := range taxonomies {
		if p.Taxonomy == t {
			return true
		}
	}
	return false
}

// IsSingular reports whether the page shows a single item of postType.
func (p PageContext) IsSingular(postType string) bool {
	return p.Kind == PageSingle && p.PostType == postType && p.ItemID > 0
}
