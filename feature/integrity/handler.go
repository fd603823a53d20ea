package integrity

import (
	"payment-integrator/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/schema", h.HandleSchemaCheck)
	group.Get("/archive", h.HandleArchiveCheck)
}

// HandleIntegrityCheck runs every check.
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	schema := h.service.CheckSchema()
	report := fiber.Map{
		"schema":  schema,
		"matched": Healthy(schema),
	}

	if h.service.ArchiveEnabled() {
		if archive, err := h.service.CheckArchive(c.Context()); err != nil {
			report["archive"] = fiber.Map{"status": "error", "error": err.Error()}
		} else {
			report["archive"] = archive
		}
	}

	return c.JSON(report)
}

// HandleSchemaCheck compares the ledger and gateway tables with the models.
func (h *Handler) HandleSchemaCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Starting schema check")

	reports := h.service.CheckSchema()
	if !Healthy(reports) {
		l.Warn("Schema drift detected")
	}
	return c.JSON(fiber.Map{
		"matched": Healthy(reports),
		"stores":  reports,
	})
}

// HandleArchiveCheck checks and optionally creates the report archive bucket.
func (h *Handler) HandleArchiveCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	if !h.service.ArchiveEnabled() {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "report archive is not configured"})
	}
	fix := c.Query("fix") == "true"

	report, err := h.service.CheckArchive(c.Context())
	if err != nil {
		l.Error("Archive check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if !report.BucketExists && fix {
		l.Info("Attempting to create archive bucket")
		if err := h.service.FixArchive(c.Context()); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to create archive bucket",
				"details": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"status": "fixed", "bucket": report.Bucket})
	}

	return c.JSON(fiber.Map{"status": "checked", "archive": report})
}
