package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"github.com/insightdelivered/receipt-savings-parser/internal/catalog"
	"github.com/insightdelivered/receipt-savings-parser/internal/extractor"
	"github.com/insightdelivered/receipt-savings-parser/internal/models"
	"github.com/insightdelivered/receipt-savings-parser/internal/parser"
)

const (
	// Version is reported by the health endpoint.
	Version = "1.0.0"

	maxUploadBytes = 20 << 20
	requestIDKey   = "requestID"
)

// Receipt modes, as chosen on the capture screen.
const (
	// ModeOtoku records savings: discounts are detected first and shown alone when present.
	ModeOtoku = "otoku"
	// ModeGaman records spending held back: totals win.
	ModeGaman = "gaman"
)

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Recognizer extractor.Recognizer
	Catalog    *catalog.Catalog
	Logger     *slog.Logger
	// Timeout bounds one OCR call; 0 means no limit.
	Timeout time.Duration
	// PrioritizeDiscounts is the default when a request does not say.
	PrioritizeDiscounts bool
	Trace               bool
}

// NewApp returns a fiber app with the API routes registered.
func NewApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "receipt-savings-parser",
		BodyLimit:             maxUploadBytes,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "POST, GET, OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api", h.withRequestID)
	api.Get("/health", HandleHealth)
	api.Post("/ocr", h.HandleOCR)
	api.Post("/parse", h.HandleParse)
}

// HandleHealth reports liveness.
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": Version,
	})
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

func (h *Handler) withRequestID(c *fiber.Ctx) error {
	id := c.Get(fiber.HeaderXRequestID)
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	c.Locals(requestIDKey, id)
	c.Set(fiber.HeaderXRequestID, id)
	return c.Next()
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}

// HandleOCR recognizes an uploaded receipt image (or digital PDF) and parses it.
// Form fields: image (file), testMode, prioritizeDiscounts, mode (otoku|gaman).
func (h *Handler) HandleOCR(c *fiber.Ctx) error {
	log := h.logger().With("request_id", requestID(c))

	fh, err := c.FormFile("image")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, msgNoImage, nil)
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, msgNoImage, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, msgNoImage, err)
	}
	log.Info("ocr.request", "file", fh.Filename, "size", fh.Size)

	rec, err := h.recognize(c.UserContext(), data)
	if err != nil {
		status, msg := ErrorMessage(err)
		log.Warn("ocr.request.failed", "error", err, "status", status)
		if errors.Is(err, extractor.ErrNoText) {
			// an empty photo is not a server fault
			err = nil
		}
		return writeError(c, status, msg, err)
	}

	if formBool(c.FormValue("testMode")) {
		return c.JSON(OCRResponse{
			Success:   true,
			Message:   msgTestMode,
			RequestID: requestID(c),
			RawText:   rec.Text,
			Tokens:    rec.Tokens,
		})
	}

	mode := strings.ToLower(c.FormValue("mode"))
	prioritize := h.prioritize(c.FormValue("prioritizeDiscounts"), mode)
	return c.JSON(h.parse(c, rec.Text, prioritize, mode, log))
}

// ParseRequest is the body of /api/parse.
type ParseRequest struct {
	Text                string `json:"text"`
	PrioritizeDiscounts *bool  `json:"prioritizeDiscounts,omitempty"`
	Mode                string `json:"mode,omitempty"`
}

// HandleParse parses already-recognized text.
func (h *Handler) HandleParse(c *fiber.Ctx) error {
	log := h.logger().With("request_id", requestID(c))

	var req ParseRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, msgBadRequest, err)
	}
	mode := strings.ToLower(req.Mode)
	prioritize := h.PrioritizeDiscounts || mode == ModeOtoku
	if req.PrioritizeDiscounts != nil {
		prioritize = *req.PrioritizeDiscounts
	}
	return c.JSON(h.parse(c, req.Text, prioritize, mode, log))
}

func (h *Handler) recognize(ctx context.Context, data []byte) (extractor.Recognition, error) {
	format, err := extractor.DetectFormat(data)
	if err != nil {
		return extractor.Recognition{}, err
	}
	if format == extractor.FormatPDF {
		text, err := extractor.ExtractPDFText(data)
		if err != nil {
			return extractor.Recognition{}, err
		}
		return extractor.Recognition{Text: text}, nil
	}
	if h.Recognizer == nil {
		return extractor.Recognition{}, extractor.ErrOCRNotEnabled
	}
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}
	rec, err := h.Recognizer.Recognize(ctx, data)
	if err != nil {
		return extractor.Recognition{}, err
	}
	if strings.TrimSpace(rec.Text) == "" {
		return extractor.Recognition{}, extractor.ErrNoText
	}
	return rec, nil
}

func (h *Handler) prioritize(flag, mode string) bool {
	if flag != "" {
		return formBool(flag)
	}
	return h.PrioritizeDiscounts || mode == ModeOtoku
}

func (h *Handler) parse(c *fiber.Ctx, text string, prioritize bool, mode string, log *slog.Logger) OCRResponse {
	p := parser.NewWithCatalog(h.Catalog, parser.Options{
		PrioritizeDiscounts: prioritize,
		Trace:               h.Trace,
		Logger:              log,
	})
	res := p.Parse(text)
	items := itemsForMode(res.Items, mode)

	log.Info("parse.done",
		"method", string(res.Method),
		"items", len(items),
		"confidence", res.OverallConfidence,
	)
	return OCRResponse{
		Success:       true,
		Message:       resultMessage(res.OverallConfidence),
		RequestID:     requestID(c),
		RawText:       text,
		ExtractedData: extractedData(res),
		Enhanced: &Enhanced{
			Items:             items,
			OverallConfidence: res.OverallConfidence,
			Method:            res.Method,
		},
		Trace: res.Trace,
	}
}

// itemsForMode keeps only discount items in otoku mode when any exist.
func itemsForMode(items []models.LineItem, mode string) []models.LineItem {
	if mode != ModeOtoku {
		return items
	}
	var discounts []models.LineItem
	for _, it := range items {
		if it.Kind == models.ItemDiscount {
			it.ID = len(discounts) + 1
			discounts = append(discounts, it)
		}
	}
	if len(discounts) == 0 {
		return items
	}
	return discounts
}

func formBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "on", "yes":
		return true
	}
	return false
}
