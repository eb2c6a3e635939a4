package models

// CartItem is a product a user has selected together with a quantity.
// Name and price are copied from the product when the item is added, so
// the entry is self-contained once it is snapshotted into an order.
type CartItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// Subtotal returns price multiplied by quantity for this entry.
func (i CartItem) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}
