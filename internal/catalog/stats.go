package catalog

import (
	"context"

	"github.com/montanaflynn/stats"

	"github.com/saajjewels/storefront/internal/apperr"
)

// PriceStats summarizes catalog pricing for the admin dashboard
type PriceStats struct {
	Count               int     `json:"count"`
	MinPrice            float64 `json:"minPrice"`
	MaxPrice            float64 `json:"maxPrice"`
	MeanPrice           float64 `json:"meanPrice"`
	MedianPrice         float64 `json:"medianPrice"`
	MeanDiscountPercent float64 `json:"meanDiscountPercent"`
}

// Stats computes price statistics over discounted prices
func (s *Service) Stats(ctx context.Context) (*PriceStats, error) {
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperr.Storage(err, "Error fetching products")
	}
	res := &PriceStats{Count: len(rows)}
	if len(rows) == 0 {
		return res, nil
	}

	prices := make(stats.Float64Data, 0, len(rows))
	discounts := make(stats.Float64Data, 0, len(rows))
	for _, p := range rows {
		prices = append(prices, p.DiscountedPrice)
		if p.OriginalPrice > 0 {
			discounts = append(discounts, (p.OriginalPrice-p.DiscountedPrice)/p.OriginalPrice*100)
		}
	}

	res.MinPrice, _ = prices.Min()
	res.MaxPrice, _ = prices.Max()
	res.MeanPrice, _ = prices.Mean()
	res.MedianPrice, _ = prices.Median()
	if len(discounts) > 0 {
		mean, _ := discounts.Mean()
		res.MeanDiscountPercent, _ = stats.Round(mean, 2)
	}
	return res, nil
}
