package resolver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

// Handler serves the resolver's HTTP/JSON API.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the API routes on rg.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/resolve", h.Resolve)
	rg.POST("/resolve/batch", h.ResolveBatch)
	rg.GET("/validate", h.Validate)
}

// Resolve handles GET /v1/resolve?payid=alice$example.com&network=xrpl-testnet&insecure=false
func (h *Handler) Resolve(c *gin.Context) {
	payID := c.Query("payid")
	if payID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payid query parameter is required"})
		return
	}

	insecure, err := strconv.ParseBool(c.DefaultQuery("insecure", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "insecure must be a boolean"})
		return
	}

	info, err := h.svc.Resolve(c.Request.Context(), Request{
		PayID:    payID,
		Network:  c.Query("network"),
		Insecure: insecure,
	})
	if err != nil {
		c.JSON(httpStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, info)
}

type batchRequest struct {
	Requests []Request `json:"requests" binding:"required"`
}

// ResolveBatch handles POST /v1/resolve/batch
//
// Body: {"requests":[{"payid":"alice$example.com","network":"btc-mainnet"}]}
func (h *Handler) ResolveBatch(c *gin.Context) {
	var body batchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	results, err := h.svc.ResolveMany(c.Request.Context(), body.Requests)
	if err != nil {
		c.JSON(httpStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// ValidateResponse is the body of GET /v1/validate.
type ValidateResponse struct {
	PayID string `json:"payid"`
	Valid bool   `json:"valid"`
	Host  string `json:"host,omitempty"`
	Path  string `json:"path,omitempty"`
}

// Validate handles GET /v1/validate?payid=alice$example.com
//
// Always responds 200; validity is reported in the body.
func (h *Handler) Validate(c *gin.Context) {
	payID := c.Query("payid")
	comps, ok := h.svc.Validate(payID)
	c.JSON(http.StatusOK, ValidateResponse{
		PayID: payID,
		Valid: ok,
		Host:  comps.Host,
		Path:  comps.Path,
	})
}

// RequestID returns a Gin middleware that propagates or assigns X-Request-ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
