package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/ramuneri/tillpoint-api/internal/application/service"
	"github.com/ramuneri/tillpoint-api/internal/presentation/http/dto/request"
	"github.com/ramuneri/tillpoint-api/internal/presentation/http/dto/response"
)

// TaxHandler handles tax category and rate HTTP requests
type TaxHandler struct {
	taxService *service.TaxService
}

// NewTaxHandler creates a new tax handler
func NewTaxHandler(taxService *service.TaxService) *TaxHandler {
	return &TaxHandler{taxService: taxService}
}

// CreateCategory handles creating a tax category
func (h *TaxHandler) CreateCategory(c *gin.Context) {
	var req request.CreateTaxCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	category, err := h.taxService.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Tax category created successfully", category)
}

// GetCategory handles retrieving a tax category with its rates
func (h *TaxHandler) GetCategory(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid tax category ID")
		return
	}

	category, err := h.taxService.GetCategory(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Tax category retrieved successfully", category)
}

// ListCategories handles listing tax categories
func (h *TaxHandler) ListCategories(c *gin.Context) {
	categories, err := h.taxService.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Tax categories retrieved successfully", categories)
}

// AddRate handles appending an effective-dated rate to a category
func (h *TaxHandler) AddRate(c *gin.Context) {
	categoryID, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid tax category ID")
		return
	}

	var req request.AddTaxRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	rate, err := h.taxService.AddRate(c.Request.Context(), &service.AddRateInput{
		CategoryID:    categoryID,
		Percent:       decimal.NewFromFloat(req.Percent),
		EffectiveFrom: req.EffectiveFrom,
		EffectiveTo:   req.EffectiveTo,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Tax rate added successfully", rate)
}

// ListRates handles listing a category's rates
func (h *TaxHandler) ListRates(c *gin.Context) {
	categoryID, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid tax category ID")
		return
	}

	rates, err := h.taxService.ListRates(c.Request.Context(), categoryID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Tax rates retrieved successfully", rates)
}
