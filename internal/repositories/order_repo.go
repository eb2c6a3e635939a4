package repositories

import (
	"bhelpuri/internal/models"
)

// OrderRepository defines the interface for order data access.
// Orders are write-once: there is intentionally no update or delete
// method, and reads always come back newest first for the admin feed.
type OrderRepository interface {
	Create(order *models.Order) error
	GetAllNewestFirst() ([]models.Order, error)
}
