package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ledgerbridge/faktura/internal/application/port"
	"github.com/ledgerbridge/faktura/internal/application/service"
	"github.com/ledgerbridge/faktura/internal/domain/entity"
	"github.com/ledgerbridge/faktura/internal/invoice"
	"github.com/ledgerbridge/faktura/pkg/validation"
)

// Version is reported by the health check.
var Version = "dev"

// Handlers contains all HTTP request handlers
type Handlers struct {
	invoiceService service.InvoiceService
	renderer       port.InvoiceRenderer
	healthCheck    func(ctx context.Context) error
	now            func() time.Time
	logger         Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(invoiceService service.InvoiceService, renderer port.InvoiceRenderer, logger Logger) *Handlers {
	return &Handlers{
		invoiceService: invoiceService,
		renderer:       renderer,
		now:            time.Now,
		logger:         logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool                 `json:"success"`
	Data    interface{}          `json:"data,omitempty"`
	Error   string               `json:"error,omitempty"`
	Fields  []invoice.FieldError `json:"fields,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ListInvoicesRequest represents query parameters for listing invoices
type ListInvoicesRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// PreviewRequest is the body of POST /api/invoices/preview
type PreviewRequest struct {
	Items []invoice.ItemDraft `json:"items"`
}

// PeekNumberRequest represents query parameters for GET /api/numbering/next
type PeekNumberRequest struct {
	Prefix string `form:"prefix"`
	Date   string `form:"date"`
}

// ValidateRequest is the body of POST /api/validate
type ValidateRequest struct {
	Kind  string `json:"kind" binding:"required"`
	Value string `json:"value"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Version:   Version,
	}

	if h.healthCheck != nil {
		if err := h.healthCheck(c.Request.Context()); err != nil {
			h.logger.Error("Health check failed", "error", err)
			response.Status = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, Response{
				Success: false,
				Data:    response,
				Error:   "database unavailable",
			})
			return
		}
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// CreateInvoice handles POST /api/invoices
func (h *Handlers) CreateInvoice(c *gin.Context) {
	var draft invoice.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		h.logger.Error("Invalid invoice payload", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	view, err := h.invoiceService.CreateInvoice(c.Request.Context(), draft)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    view,
	})
}

// PreviewInvoice handles POST /api/invoices/preview
func (h *Handlers) PreviewInvoice(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	preview, err := h.invoiceService.Preview(c.Request.Context(), req.Items)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    preview,
	})
}

// ListInvoices handles GET /api/invoices
func (h *Handlers) ListInvoices(c *gin.Context) {
	var req ListInvoicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid query parameters",
		})
		return
	}

	views, err := h.invoiceService.ListInvoices(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    views,
	})
}

// GetInvoice handles GET /api/invoices/:number
func (h *Handlers) GetInvoice(c *gin.Context) {
	view, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    view,
	})
}

// ExportInvoice handles GET /api/invoices/:number/xlsx
func (h *Handlers) ExportInvoice(c *gin.Context) {
	number := c.Param("number")

	// render into memory so a failure can still be reported as JSON
	var buf bytes.Buffer
	if err := h.invoiceService.ExportInvoice(c.Request.Context(), number, &buf); err != nil {
		h.writeError(c, err)
		return
	}

	filename := strings.ReplaceAll(number, "/", "_") + h.renderer.Extension()
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, h.renderer.ContentType(), buf.Bytes())
}

// PeekNumber handles GET /api/numbering/next
func (h *Handlers) PeekNumber(c *gin.Context) {
	var req PeekNumberRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid query parameters",
		})
		return
	}

	date := h.now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, Response{
				Success: false,
				Error:   "date must be YYYY-MM-DD",
			})
			return
		}
		date = parsed
	}

	number, err := h.invoiceService.PeekNumber(c.Request.Context(), req.Prefix, date)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    gin.H{"number": number},
	})
}

// GetSellerProfile handles GET /api/settings/seller
func (h *Handlers) GetSellerProfile(c *gin.Context) {
	profile, err := h.invoiceService.SellerProfile(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    profile,
	})
}

// SaveSellerProfile handles PUT /api/settings/seller
func (h *Handlers) SaveSellerProfile(c *gin.Context) {
	var party entity.Party
	if err := c.ShouldBindJSON(&party); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	profile, err := h.invoiceService.SaveSellerProfile(c.Request.Context(), party)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    profile,
	})
}

// DeleteSellerProfile handles DELETE /api/settings/seller
func (h *Handlers) DeleteSellerProfile(c *gin.Context) {
	if err := h.invoiceService.DeleteSellerProfile(c.Request.Context()); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// RecentAddresses handles GET /api/addresses
func (h *Handlers) RecentAddresses(c *gin.Context) {
	addresses, err := h.invoiceService.RecentAddresses(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    addresses,
	})
}

// Validate handles POST /api/validate
func (h *Handlers) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	result, ok := validation.Check(req.Kind, req.Value)
	if !ok {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "kind must be one of nip, iban, postal, address",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    result,
	})
}

// writeError maps service errors to HTTP statuses.
func (h *Handlers) writeError(c *gin.Context, err error) {
	if verrs, ok := invoice.AsValidationErrors(err); ok {
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Error:   "validation failed",
			Fields:  verrs,
		})
		return
	}

	status, message := http.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, port.ErrNotFound):
		status, message = http.StatusNotFound, "not found"
	case errors.Is(err, port.ErrDuplicateNumber):
		status, message = http.StatusConflict, "invoice number already exists"
	case errors.Is(err, invoice.ErrInvalidPrefix):
		status, message = http.StatusBadRequest, "invalid prefix"
	case errors.Is(err, invoice.ErrSequencing):
		status, message = http.StatusServiceUnavailable, "invoice numbering unavailable"
	case errors.Is(err, port.ErrBusy):
		status, message = http.StatusServiceUnavailable, "database busy, retry"
	}

	if status == http.StatusServiceUnavailable {
		c.Header("Retry-After", "1")
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "path", c.Request.URL.Path, "error", err)
	}

	c.JSON(status, Response{
		Success: false,
		Error:   message,
	})
}
