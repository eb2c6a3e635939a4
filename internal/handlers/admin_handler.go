package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"

	"bhelpuri/internal/repositories"
	"bhelpuri/pkg/feed"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// AdminHandler serves the read-only admin order feed. It is mounted
// behind AdminRequired; there is no mutation surface here at all.
type AdminHandler struct {
	orderRepo repositories.OrderRepository
	hub       *feed.Hub
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(orderRepo repositories.OrderRepository, hub *feed.Hub) *AdminHandler {
	return &AdminHandler{
		orderRepo: orderRepo,
		hub:       hub,
	}
}

// RegisterRoutes registers the admin routes with the Fiber app.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/orders", h.HandleGetOrders)
	router.Get("/orders/stream", h.HandleStreamOrders)
}

// HandleGetOrders returns the current order list, newest first.
func (h *AdminHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.orderRepo.GetAllNewestFirst()
	if err != nil {
		log.Printf("Error getting all orders: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve orders",
			"error":   err.Error(),
		})
	}
	return c.JSON(orders)
}

// HandleStreamOrders streams order snapshots over Server-Sent Events.
// The client gets the full current list on connect and a complete
// replacement list on every subsequent change; it discards whatever it
// held before. The subscription ends when the client disconnects.
func (h *AdminHandler) HandleStreamOrders(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	// Snapshot before subscribing so the initial state is never older
	// than the first hub delivery.
	initial, err := h.orderRepo.GetAllNewestFirst()
	if err != nil {
		log.Printf("Error loading initial order snapshot: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not open order stream",
		})
	}

	snapshots, cancel := h.hub.Subscribe()

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		if err := writeSnapshot(w, initial); err != nil {
			return
		}
		for snapshot := range snapshots {
			if err := writeSnapshot(w, snapshot); err != nil {
				// Client is gone; cancel tears down the subscription.
				return
			}
		}
	}))
	return nil
}

// writeSnapshot sends one SSE event carrying the full order list.
func writeSnapshot(w *bufio.Writer, snapshot interface{}) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		log.Printf("Error marshaling order snapshot: %v", err)
		return nil // skip this snapshot, keep the stream alive
	}
	if _, err := fmt.Fprintf(w, "event: orders\ndata: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}
