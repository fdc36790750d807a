package basket

// LineItem is one product line in an in-progress order. Amounts are integer
// Rupiah; there are no fractional minor units to round.
type LineItem struct {
	ProductID   string `json:"product_id,omitempty"`
	ProductName string `json:"product_name"`
	UnitPrice   int64  `json:"unit_price"`
	LinePrice   int64  `json:"line_price"`
	Quantity    int    `json:"quantity"`
	Notes       string `json:"notes,omitempty"`
}

// Key returns the merge key for the line: product identity when known, the
// display name for ad hoc items without one.
func (li LineItem) Key() string {
	if li.ProductID != "" {
		return li.ProductID
	}
	return li.ProductName
}

// PricingPolicy names how a line's price relates to its quantity.
type PricingPolicy string

const (
	// PriceAccumulates sums line prices when duplicate lines merge, so the
	// line price grows with every repeated add. This is the behavior the
	// running system charges by, so it is the default.
	PriceAccumulates PricingPolicy = "PRICE_ACCUMULATES"

	// UnitPriceFixed recomputes line price as unit price times quantity on
	// every merge.
	UnitPriceFixed PricingPolicy = "UNIT_PRICE_FIXED"
)

// AddItemRequest is the payload for putting a product into the basket.
// Either a product id (resolved against the catalog) or an explicit
// name/price pair for ad hoc lines.
type AddItemRequest struct {
	ProductID   string `json:"product_id,omitempty"`
	ProductName string `json:"product_name,omitempty"`
	UnitPrice   int64  `json:"unit_price,omitempty"`
	Quantity    int    `json:"quantity,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// SetQuantityRequest is the payload for adjusting a line. Quantity is a
// string because it arrives straight from a text field; anything that does
// not parse as a positive number means "remove the line".
type SetQuantityRequest struct {
	Quantity string `json:"quantity"`
}
