package handlers

import (
	"errors"
	"log"
	"strconv"

	"bhelpuri/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the current user's cart.
// All routes require an authenticated session; the user id comes from
// the validated token, never from the request body.
type CartHandler struct {
	cart *services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cart *services.CartService) *CartHandler {
	return &CartHandler{
		cart: cart,
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Patch("/items/:productID", h.HandleSetQuantity)
	cartRoutes.Delete("/items/:productID", h.HandleRemoveItem)
	cartRoutes.Delete("/", h.HandleClearCart)
}

func (h *CartHandler) userID(c *fiber.Ctx) string {
	userID, _ := c.Locals("user_id").(string)
	return userID
}

// cartResponse renders the user's current cart state.
func (h *CartHandler) cartResponse(c *fiber.Ctx) error {
	userID := h.userID(c)
	return c.JSON(fiber.Map{
		"items": h.cart.Items(userID),
		"total": h.cart.Total(userID),
		"count": h.cart.Count(userID),
	})
}

// HandleGetCart returns the items, total, and badge count of the cart.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	return h.cartResponse(c)
}

// AddItemRequest represents the request body for adding a product.
type AddItemRequest struct {
	ProductID string `json:"product_id"`
}

// HandleAddItem puts one unit of a product into the cart, merging with
// an existing entry of the same product.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing add item request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "product_id is required",
		})
	}

	if err := h.cart.Add(h.userID(c), req.ProductID); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Product not found",
			})
		}
		log.Printf("Error adding product %s to cart: %v", req.ProductID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not add item to cart",
			"error":   err.Error(),
		})
	}
	return h.cartResponse(c)
}

// SetQuantityRequest represents the request body for a quantity change.
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// HandleSetQuantity replaces the quantity of a cart entry. A quantity
// of zero or less removes the entry.
func (h *CartHandler) HandleSetQuantity(c *fiber.Ctx) error {
	var req SetQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		// Also accept the quantity as a query parameter for simple clients.
		qty, convErr := strconv.Atoi(c.Query("quantity"))
		if convErr != nil {
			log.Printf("Error parsing set quantity request: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid request body",
				"error":   err.Error(),
			})
		}
		req.Quantity = qty
	}

	h.cart.SetQuantity(h.userID(c), c.Params("productID"), req.Quantity)
	return h.cartResponse(c)
}

// HandleRemoveItem deletes a cart entry entirely.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	h.cart.Remove(h.userID(c), c.Params("productID"))
	return h.cartResponse(c)
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	h.cart.Clear(h.userID(c))
	return h.cartResponse(c)
}
