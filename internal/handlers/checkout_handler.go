package handlers

import (
	"errors"
	"log"

	"bhelpuri/internal/models"
	"bhelpuri/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler handles the checkout submission.
type CheckoutHandler struct {
	checkout *services.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkout *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
	}
}

// RegisterRoutes registers the checkout route with the Fiber app.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/checkout", h.HandleCheckout)
}

// HandleCheckout validates the delivery form and places the order.
// Reaching this handler without a session is impossible (AuthRequired
// runs first); an empty cart comes back as 409 so the client can send
// the user back to the cart view.
func (h *CheckoutHandler) HandleCheckout(c *fiber.Ctx) error {
	var details models.DeliveryDetails
	if err := c.BodyParser(&details); err != nil {
		log.Printf("Error parsing checkout request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	userID, _ := c.Locals("user_id").(string)
	userEmail, _ := c.Locals("email").(string)

	order, err := h.checkout.PlaceOrder(userID, userEmail, details)
	if err != nil {
		var validationErr *services.ValidationError
		switch {
		case errors.As(err, &validationErr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": validationErr.Message,
				"field":   validationErr.Field,
			})
		case errors.Is(err, services.ErrEmptyCart):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Your cart is empty.",
			})
		default:
			// Persistence failure. The cart is intact so the user can retry.
			log.Printf("Error placing order for user %s: %v", userID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Failed to place order. Please try again.",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order placed successfully!",
		"order":   order,
	})
}
