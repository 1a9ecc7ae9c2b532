package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/oakhaven/contracts/internal/catalog"
	"github.com/oakhaven/contracts/internal/http/middleware"
	"github.com/oakhaven/contracts/internal/model"
	"github.com/oakhaven/contracts/internal/service"
)

type Handler struct {
	contracts *service.ContractService
	catalog   catalog.Lookup
	log       zerolog.Logger
}

func NewHandler(contracts *service.ContractService, lookup catalog.Lookup, log zerolog.Logger) *Handler {
	return &Handler{contracts: contracts, catalog: lookup, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)
	protected.GET("/contracts/:id", h.getContract)
	protected.POST("/contracts/validate", h.validateContract)
	protected.POST("/contracts/commit/:token", h.commitContract)
	protected.GET("/catalog/items/:id", h.getCatalogItem)
	protected.GET("/catalog/tax-rates/:category", h.getTaxRate)
	protected.POST("/contracts/:id/export", h.exportStatement)
	protected.POST("/contracts/:id/export/pdf", h.exportStatementPDF)
}

func (h *Handler) getContract(c *gin.Context) {
	doc, err := h.contracts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	if doc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
		return
	}
	c.JSON(http.StatusOK, doc)
}

// validateContract is the first phase of the save protocol: the candidate
// payload comes back as either path-keyed field errors or a save token.
func (h *Handler) validateContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var payload model.Contract
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if payload.LocationID != "" && principal.LocationID != "" && payload.LocationID != principal.LocationID {
		c.JSON(http.StatusForbidden, gin.H{"error": "contract belongs to another location"})
		return
	}

	outcome, err := h.contracts.Validate(c.Request.Context(), &payload)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if len(outcome.Errors) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": outcome.Errors})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": outcome.Token})
}

func (h *Handler) commitContract(c *gin.Context) {
	doc, err := h.contracts.Commit(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) getCatalogItem(c *gin.Context) {
	item, ok := h.catalog.ItemByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "catalog item not found"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) getTaxRate(c *gin.Context) {
	rate, ok := h.catalog.TaxRateForCategory(c.Param("category"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "tax category not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rate": rate})
}

func (h *Handler) exportStatement(c *gin.Context) {
	fileName, content, err := h.contracts.ExportStatement(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}

func (h *Handler) exportStatementPDF(c *gin.Context) {
	fileName, content, err := h.contracts.ExportStatementPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	c.Data(http.StatusOK, "application/pdf", content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrTokenExpired):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("contract request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
