package inventory

// Product is a sellable item as the backend catalog exposes it to the
// terminal. Prices are integer Rupiah. Stock only binds when TrackStock is
// set; untracked products sell without an upper bound.
type Product struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	Stock      int    `json:"stock"`
	TrackStock bool   `json:"track_stock"`
}
