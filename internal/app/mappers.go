package app

import (
	"time"

	"ratecompass/internal/domain"
)

// orderPayload maps a validated order to the RateCompass order body.
func orderPayload(o domain.Order) map[string]any {
	items := make([]any, 0, len(o.Lines))
	for _, l := range o.Lines {
		items = append(items, map[string]any{
			"product_name":      l.Name,
			"product_id":        l.ProductID,
			"product_number":    l.Reference,
			"product_image_url": l.ImageURL,
			"product_url":       l.URL,
		})
	}
	return map[string]any{
		"customer_first_name": o.Customer.FirstName,
		"customer_last_name":  o.Customer.LastName,
		"customer_email":      o.Customer.Email,
		"language":            o.Language,
		"order_id":            o.ID,
		"order_number":        o.Reference,
		"order_created_at":    o.CreatedAt.Format(time.RFC3339),
		"review_items":        items,
	}
}
