package models

// Product represents a menu item in the store.
// The menu is fixed at build time: products are never created, updated,
// or deleted at runtime, so there is no persistence mapping here.
type Product struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name" validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Price       int64  `json:"price" validate:"required,gt=0"` // smallest currency unit
	Image       string `json:"image"`
}
