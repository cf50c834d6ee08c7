package orderbookv1

// Trade represents one execution between a resting maker order and the taker
// that crossed it. Trades are never mutated after emission.
type Trade struct {
	MakerOrderID string `json:"makerOrderID"`
	TakerOrderID string `json:"takerOrderID"`
	Price        int64  `json:"price"` // always the maker's limit price
	Quantity     int64  `json:"quantity"`
	Sequence     int64  `json:"sequence"` // global trade ordering
}
