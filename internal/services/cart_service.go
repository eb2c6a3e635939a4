package services

import (
	"sync"

	"bhelpuri/internal/models"
)

// CartService holds the pending selection of every active user. Carts
// live only in memory: they are not persisted and reset on restart.
// Each cart is an ordered sequence of CartItem, mutated under one lock;
// ordering between operations is simply call order.
type CartService struct {
	catalog *CatalogService
	carts   map[string][]models.CartItem
	mu      sync.RWMutex
}

// NewCartService creates a CartService backed by the given catalog.
func NewCartService(catalog *CatalogService) *CartService {
	return &CartService{
		catalog: catalog,
		carts:   make(map[string][]models.CartItem),
	}
}

// Add puts one unit of the product into the user's cart. If an entry
// for the same product already exists its quantity is incremented;
// otherwise a new entry is appended. There is no upper bound on
// quantity.
func (s *CartService) Add(userID, productID string) error {
	product, err := s.catalog.GetProductByID(productID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.carts[userID]
	for i := range cart {
		if cart[i].ProductID == productID {
			cart[i].Quantity++
			return nil
		}
	}
	s.carts[userID] = append(cart, models.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  1,
	})
	return nil
}

// Remove deletes the entry for the product entirely, regardless of its
// quantity. Removing a product that is not in the cart is a no-op.
func (s *CartService) Remove(userID, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.carts[userID]
	for i := range cart {
		if cart[i].ProductID == productID {
			s.carts[userID] = append(cart[:i], cart[i+1:]...)
			return
		}
	}
}

// SetQuantity replaces the quantity of the product's entry. A quantity
// of zero or less behaves exactly like Remove.
func (s *CartService) SetQuantity(userID, productID string, quantity int) {
	if quantity <= 0 {
		s.Remove(userID, productID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.carts[userID]
	for i := range cart {
		if cart[i].ProductID == productID {
			cart[i].Quantity = quantity
			return
		}
	}
}

// Items returns a copy of the user's cart in insertion order.
func (s *CartService) Items(userID string) []models.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart := s.carts[userID]
	items := make([]models.CartItem, len(cart))
	copy(items, cart)
	return items
}

// Total returns the sum of price times quantity over all entries. No
// tax, discount, or rounding logic applies.
func (s *CartService) Total(userID string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, item := range s.carts[userID] {
		total += item.Subtotal()
	}
	return total
}

// Count returns the sum of quantities, used for the cart badge.
func (s *CartService) Count(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	for _, item := range s.carts[userID] {
		count += item.Quantity
	}
	return count
}

// Clear empties the user's cart.
func (s *CartService) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, userID)
}
