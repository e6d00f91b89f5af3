package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ramuneri/tillpoint-api/internal/application/service"
	"github.com/ramuneri/tillpoint-api/internal/presentation/http/dto/request"
	"github.com/ramuneri/tillpoint-api/internal/presentation/http/dto/response"
	"github.com/ramuneri/tillpoint-api/pkg/money"
	"github.com/ramuneri/tillpoint-api/pkg/pagination"
)

// CatalogHandler handles product and service HTTP requests
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func paginationFromQuery(c *gin.Context) *pagination.PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))
	return &pagination.PaginationParams{Page: page, PerPage: perPage}
}

// CreateProduct handles product creation
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req request.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), &service.ProductInput{
		Name:          req.Name,
		PriceCents:    money.CentsFromFloat(req.Price),
		TaxCategoryID: req.TaxCategoryID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Product created successfully", product)
}

// GetProduct handles retrieving a product
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product retrieved successfully", product)
}

// UpdateProduct handles updating a product
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	var req request.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), id, &service.ProductInput{
		Name:          req.Name,
		PriceCents:    money.CentsFromFloat(req.Price),
		TaxCategoryID: req.TaxCategoryID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product updated successfully", product)
}

// DeleteProduct handles deleting a product
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	if err := h.catalogService.DeleteProduct(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListProducts handles listing products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	result, err := h.catalogService.ListProducts(c.Request.Context(), paginationFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Products retrieved successfully", result)
}

// CreateService handles creating a bookable service
func (h *CatalogHandler) CreateService(c *gin.Context) {
	var req request.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	svc, err := h.catalogService.CreateService(c.Request.Context(), &service.ServiceInput{
		Name:              req.Name,
		DefaultPriceCents: money.CentsFromFloat(req.DefaultPrice),
		TaxCategoryID:     req.TaxCategoryID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Service created successfully", svc)
}

// GetService handles retrieving a bookable service
func (h *CatalogHandler) GetService(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid service ID")
		return
	}

	svc, err := h.catalogService.GetService(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Service retrieved successfully", svc)
}

// UpdateService handles updating a bookable service
func (h *CatalogHandler) UpdateService(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid service ID")
		return
	}

	var req request.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	svc, err := h.catalogService.UpdateService(c.Request.Context(), id, &service.ServiceInput{
		Name:              req.Name,
		DefaultPriceCents: money.CentsFromFloat(req.DefaultPrice),
		TaxCategoryID:     req.TaxCategoryID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Service updated successfully", svc)
}

// DeleteService handles deleting a bookable service
func (h *CatalogHandler) DeleteService(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid service ID")
		return
	}

	if err := h.catalogService.DeleteService(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListServices handles listing bookable services
func (h *CatalogHandler) ListServices(c *gin.Context) {
	result, err := h.catalogService.ListServices(c.Request.Context(), paginationFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Services retrieved successfully", result)
}
