package shaper

import (
	"context"
	"fmt"

	"analytics-service/models"
)

// ShapeCategoryView names the page event of a download category or tag
// archive. Other pages keep def.
func (s *Shaper) ShapeCategoryView(_ context.Context, def models.NormalizedEvent, page models.PageContext) models.NormalizedEvent {
	if !page.IsTax(models.TaxonomyTag, models.TaxonomyCategory) {
		return def
	}

	format := "Viewed %s %s Category"
	if page.Taxonomy == models.TaxonomyTag {
		format = "Viewed %s %s Tag"
	}

	return models.NormalizedEvent{
		Kind: models.KindPageView,
		Name: fmt.Sprintf(format, page.TermTitle, s.singular),
		Properties: map[string]any{
			"term_id": page.TermID,
		},
	}
}

// ShapeProductView tracks a view of a single download page. Other pages keep
// def.
func (s *Shaper) ShapeProductView(ctx context.Context, def models.NormalizedEvent, page models.PageContext) models.NormalizedEvent {
	if !page.IsSingular(models.PostTypeDownload) {
		return def
	}

	item := s.ResolveItem(ctx, page.ItemID, models.CartOptions{})
	return models.NormalizedEvent{
		Kind:       models.KindTrack,
		Name:       s.label("Viewed %s"),
		Properties: item.Trimmed(),
	}
}
