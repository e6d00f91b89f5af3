package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ramuneri/tillpoint-api/internal/application/service"
	"github.com/ramuneri/tillpoint-api/internal/presentation/http/dto/request"
	"github.com/ramuneri/tillpoint-api/internal/presentation/http/dto/response"
)

// CustomerHandler handles customer HTTP requests
type CustomerHandler struct {
	customerService *service.CustomerService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// Create handles registering a customer
func (h *CustomerHandler) Create(c *gin.Context) {
	var req request.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	customer, err := h.customerService.Create(c.Request.Context(), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Customer created successfully", customer)
}

// Get handles retrieving a customer
func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid customer ID")
		return
	}

	customer, err := h.customerService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Customer retrieved successfully", customer)
}

// List handles listing customers
func (h *CustomerHandler) List(c *gin.Context) {
	result, err := h.customerService.List(c.Request.Context(), paginationFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Customers retrieved successfully", result)
}
