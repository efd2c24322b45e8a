package shaper

import (
	"context"
	"math"
	"strconv"
	"strings"

	"analytics-service/models"
	"analytics-service/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// ResolveItem builds the DownloadItem for downloadID. Quantity defaults to 1
// and price_id to nil; a supplied quantity, zero included, always wins.
func (s *Shaper) ResolveItem(ctx context.Context, downloadID int64, options models.CartOptions) models.DownloadItem {
	ctx = repository.WithRowCache(ctx)
	item := models.DownloadItem{
		ID:       downloadID,
		Quantity: 1,
		PriceID:  options.PriceID,
	}
	if options.Quantity != nil {
		item.Quantity = *options.Quantity
	}

	var errs []error
	dec := lookup[decimal.Decimal](&errs)
	str := lookup[string](&errs)

	hasVariable := lookup[bool](&errs)(s.catalog.HasVariablePrices(ctx, downloadID))
	if hasVariable && options.PriceID != nil {
		item.Price = dec(s.catalog.VariablePrice(ctx, downloadID, *options.PriceID))
	} else {
		item.Price = dec(s.catalog.Price(ctx, downloadID))
	}

	item.Name = stripTags(str(s.catalog.Title(ctx, downloadID)))
	item.Category = categoryNames(lookup[[]models.Term](&errs)(s.catalog.CategoryTerms(ctx, downloadID)))

	if s.catalog.UsesSKU() {
		sku := str(s.catalog.SKU(ctx, downloadID))
		item.SKU = &sku
	}

	s.warnLookup("Catalog lookup failed", errs, zap.Int64("download_id", downloadID))
	return item
}

// stripTags drops markup from a title, including the contents of script and
// style elements, and collapses whitespace.
func stripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}

	var b strings.Builder
	skip := 0
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken:
			if name, _ := z.TagName(); isRawText(name) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isRawText(name) && skip > 0 {
				skip--
			}
		}
	}
}

func isRawText(tag []byte) bool {
	switch string(tag) {
	case "script", "style":
		return true
	}
	return false
}

// absint reads the leading integer of s the way storefront forms submit
// quantities: surrounding junk is ignored and the sign is dropped.
func absint(s string) int {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	if s != "" && (s[0] == '-' || s[0] == '+') {
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return math.MaxInt
	}
	return n
}
