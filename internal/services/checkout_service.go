package services

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"bhelpuri/internal/models"
	"bhelpuri/internal/repositories"
	"bhelpuri/pkg/feed"
	"bhelpuri/pkg/rabbitmq"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Indian mobile numbers: 10 digits, first digit 6-9.
var mobilePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

// deliveryForm carries the trimmed delivery details through validation.
type deliveryForm struct {
	Name   string `validate:"required,min=2,max=100"`
	Mobile string `validate:"required,inmobile"`
	Hostel string `validate:"required,min=2,max=100"`
	Room   string `validate:"required,min=1,max=20"`
}

// deliveryMessages maps a failing form field to the message shown to
// the user. Only the first failing field is reported.
var deliveryMessages = map[string]string{
	"Name":   "Name must be at least 2 characters",
	"Mobile": "Invalid mobile number",
	"Hostel": "Hostel name is required",
	"Room":   "Room number is required",
}

// CheckoutService turns a user's cart plus delivery details into a
// persisted order. The order is a single atomic insert: on failure the
// cart is left intact so the user can retry, on success the cart is
// cleared and the admin feed gets a fresh snapshot.
type CheckoutService struct {
	orderRepo repositories.OrderRepository
	cart      *CartService
	hub       *feed.Hub        // may be nil (no live feed)
	mqClient  *rabbitmq.Client // may be nil (no event publishing)
	validate  *validator.Validate
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(orderRepo repositories.OrderRepository, cart *CartService, hub *feed.Hub, mqClient *rabbitmq.Client) *CheckoutService {
	v := validator.New()
	// The standard tags don't cover the Indian mobile prefix rule.
	_ = v.RegisterValidation("inmobile", func(fl validator.FieldLevel) bool {
		return mobilePattern.MatchString(fl.Field().String())
	})

	return &CheckoutService{
		orderRepo: orderRepo,
		cart:      cart,
		hub:       hub,
		mqClient:  mqClient,
		validate:  v,
	}
}

// ValidateDeliveryDetails checks the delivery form and returns a
// *ValidationError describing the first failing field, or nil.
func (s *CheckoutService) ValidateDeliveryDetails(details models.DeliveryDetails) error {
	form := deliveryForm{
		Name:   strings.TrimSpace(details.Name),
		Mobile: strings.TrimSpace(details.Mobile),
		Hostel: strings.TrimSpace(details.Hostel),
		Room:   strings.TrimSpace(details.Room),
	}

	if err := s.validate.Struct(form); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		first := validationErrors[0]
		message, ok := deliveryMessages[first.Field()]
		if !ok {
			message = fmt.Sprintf("Field '%s' failed on the '%s' tag", first.Field(), first.Tag())
		}
		return &ValidationError{Field: first.Field(), Message: message}
	}
	return nil
}

// PlaceOrder validates the delivery form, snapshots the user's cart
// into a new order, and persists it. Preconditions: the caller is
// authenticated (enforced upstream) and the cart is non-empty.
func (s *CheckoutService) PlaceOrder(userID, userEmail string, details models.DeliveryDetails) (*models.Order, error) {
	// Items is already a copy; the order owns this snapshot and later
	// cart mutations cannot reach it.
	items := s.cart.Items(userID)
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	if err := s.ValidateDeliveryDetails(details); err != nil {
		return nil, err
	}

	var total int64
	for _, item := range items {
		total += item.Subtotal()
	}

	order := &models.Order{
		ID:            uuid.New().String(),
		UserID:        userID,
		UserEmail:     userEmail,
		CustomerName:  strings.TrimSpace(details.Name),
		Mobile:        strings.TrimSpace(details.Mobile),
		Hostel:        strings.TrimSpace(details.Hostel),
		Room:          strings.TrimSpace(details.Room),
		Items:         items,
		Total:         total,
		PaymentMethod: models.PaymentCashOnDelivery,
		Status:        models.OrderStatusPending,
	}

	// Single atomic insert. On failure the cart stays intact so the
	// user can simply retry.
	if err := s.orderRepo.Create(order); err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	s.cart.Clear(userID)

	// Event publishing and the live feed are best effort: the order is
	// already committed, a delivery hiccup must not fail the checkout.
	if s.mqClient != nil {
		if err := s.mqClient.PublishOrderCreated(*order); err != nil {
			log.Printf("Warning: Failed to publish order created event for order %s: %v", order.ID, err)
		}
	}
	s.publishSnapshot()

	return order, nil
}

// publishSnapshot pushes the current full order list to the feed hub.
func (s *CheckoutService) publishSnapshot() {
	if s.hub == nil {
		return
	}
	orders, err := s.orderRepo.GetAllNewestFirst()
	if err != nil {
		log.Printf("Warning: Failed to load orders for feed snapshot: %v", err)
		return
	}
	s.hub.Publish(orders)
}
