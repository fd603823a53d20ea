package dashboard

import (
	"fmt"
	"time"

	"payment-integrator/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// Handler handles HTTP requests for dashboard metrics.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the dashboard routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/dashboard")
	group.Get("/summary", h.HandleSummary)
	group.Get("/status", h.HandleStatus)
	group.Get("/aging", h.HandleAging)
	group.Get("/overpaid", h.HandleOverpaid)
	group.Get("/outstanding", h.HandleOutstanding)
	group.Get("/methods", h.HandleMethods)
	group.Post("/refresh", h.HandleRefresh)
}

// parseFilter reads the filter query parameters.
// Dates use YYYY-MM-DD; method may be repeated.
func parseFilter(c *fiber.Ctx) (Filter, error) {
	f := Filter{StudentID: c.Query("student")}

	dates := []struct {
		key string
		dst *time.Time
	}{
		{"invoice_from", &f.InvoiceFrom},
		{"invoice_to", &f.InvoiceTo},
		{"payment_from", &f.PaymentFrom},
		{"payment_to", &f.PaymentTo},
	}
	for _, d := range dates {
		raw := c.Query(d.key)
		if raw == "" {
			continue
		}
		t, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			return f, fmt.Errorf("invalid %s %q, expected YYYY-MM-DD", d.key, raw)
		}
		*d.dst = t
	}

	for _, m := range c.Context().QueryArgs().PeekMulti("method") {
		if len(m) > 0 {
			f.Methods = append(f.Methods, string(m))
		}
	}
	return f, nil
}

// view resolves the filtered snapshot or writes the error response.
func (h *Handler) view(c *fiber.Ctx) (*View, error) {
	l := logger.WithRayID(h.service.logger, c)

	f, err := parseFilter(c)
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	v, err := h.service.View(c.Context(), f)
	if err != nil {
		l.Error("Failed to load ledger snapshot", zap.Error(err))
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return v, nil
}

// HandleSummary returns invoiced, paid, outstanding and overpaid totals.
func (h *Handler) HandleSummary(c *fiber.Ctx) error {
	v, err := h.view(c)
	if v == nil {
		return err
	}
	return c.JSON(v.Summary())
}

// HandleStatus returns invoice counts per status.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	v, err := h.view(c)
	if v == nil {
		return err
	}
	return c.JSON(v.StatusCounts())
}

// HandleAging returns outstanding amounts per age bucket.
func (h *Handler) HandleAging(c *fiber.Ctx) error {
	v, err := h.view(c)
	if v == nil {
		return err
	}
	return c.JSON(v.Aging(h.service.clock()))
}

// HandleOverpaid lists overpaid students.
func (h *Handler) HandleOverpaid(c *fiber.Ctx) error {
	v, err := h.view(c)
	if v == nil {
		return err
	}
	return c.JSON(v.Overpaid())
}

// HandleOutstanding lists the students with the largest outstanding amount.
func (h *Handler) HandleOutstanding(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	if limit <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be positive"})
	}
	v, err := h.view(c)
	if v == nil {
		return err
	}
	return c.JSON(v.TopOutstanding(limit))
}

// HandleMethods returns payment totals per method.
func (h *Handler) HandleMethods(c *fiber.Ctx) error {
	v, err := h.view(c)
	if v == nil {
		return err
	}
	return c.JSON(v.Methods())
}

// HandleRefresh drops the cached snapshot.
func (h *Handler) HandleRefresh(c *fiber.Ctx) error {
	logger.WithRayID(h.service.logger, c).Info("Dashboard snapshot invalidated")
	h.service.Refresh()
	return c.SendStatus(fiber.StatusNoContent)
}
