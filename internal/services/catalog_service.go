package services

import (
	"fmt"

	"bhelpuri/internal/models"
)

// CatalogService serves the store's fixed menu. The product list is
// defined at build time; there is no state and no side effects.
type CatalogService struct {
	products []models.Product
}

// NewCatalogService creates a CatalogService with the store menu.
func NewCatalogService() *CatalogService {
	return &CatalogService{
		products: []models.Product{
			{
				ID:          "1",
				Name:        "Classic Bhelpuri",
				Description: "Traditional street-style bhelpuri with tangy chutneys",
				Price:       50,
				Image:       "/assets/bhelpuri-basic.jpg",
			},
			{
				ID:          "2",
				Name:        "Special Bhelpuri",
				Description: "Extra crunchy with special house chutneys and toppings",
				Price:       80,
				Image:       "/assets/bhelpuri-regular.jpg",
			},
			{
				ID:          "3",
				Name:        "Premium Bhelpuri",
				Description: "Loaded with premium toppings, nuts, and special ingredients",
				Price:       100,
				Image:       "/assets/bhelpuri-premium.jpg",
			},
		},
	}
}

// GetAllProducts returns the full menu. The returned slice is a copy so
// callers cannot modify the catalog.
func (s *CatalogService) GetAllProducts() []models.Product {
	products := make([]models.Product, len(s.products))
	copy(products, s.products)
	return products
}

// GetProductByID returns a single menu item by its ID.
func (s *CatalogService) GetProductByID(id string) (*models.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			product := p
			return &product, nil
		}
	}
	return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
}
