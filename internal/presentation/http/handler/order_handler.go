package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ramuneri/tillpoint-api/internal/application/service"
	"github.com/ramuneri/tillpoint-api/internal/domain/enum"
	"github.com/ramuneri/tillpoint-api/internal/domain/repository"
	"github.com/ramuneri/tillpoint-api/internal/presentation/http/dto/request"
	"github.com/ramuneri/tillpoint-api/internal/presentation/http/dto/response"
	"github.com/ramuneri/tillpoint-api/internal/presentation/http/middleware"
	"github.com/ramuneri/tillpoint-api/pkg/money"
	"github.com/ramuneri/tillpoint-api/pkg/pagination"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	orderService *service.OrderService
	settlement   *service.SettlementService
	split        *service.SplitService
	refunds      *service.RefundService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(
	orderService *service.OrderService,
	settlement *service.SettlementService,
	split *service.SplitService,
	refunds *service.RefundService,
) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		settlement:   settlement,
		split:        split,
		refunds:      refunds,
	}
}

// Create handles opening a new order
func (h *OrderHandler) Create(c *gin.Context) {
	var req request.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), &service.CreateOrderInput{
		EmployeeID: req.EmployeeID,
		CustomerID: req.CustomerID,
		Note:       req.Note,
		Items:      request.ToItemInputs(req.Items),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Order opened successfully", order)
}

// Get handles retrieving an order with its totals
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	order, totals, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Order retrieved successfully", gin.H{
		"order":  order,
		"totals": totals,
	})
}

// GetTotals handles retrieving just the derived totals of an order
func (h *OrderHandler) GetTotals(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	totals, err := h.orderService.GetTotals(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Totals computed successfully", totals)
}

// Update handles editing an open order
func (h *OrderHandler) Update(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	var req request.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	input := &service.UpdateOrderInput{Note: req.Note}
	if req.Items != nil {
		input.Items = request.ToItemInputs(req.Items)
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Order updated successfully", order)
}

// Cancel handles voiding an open order
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.CancelOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Order cancelled successfully", order)
}

// Close handles settling an order
func (h *OrderHandler) Close(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	var req request.CloseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	payments := make([]service.PaymentRequest, 0, len(req.Payments))
	for i := range req.Payments {
		payment, err := req.Payments[i].ToPaymentRequest()
		if err != nil {
			response.Error(c, err)
			return
		}
		payments = append(payments, payment)
	}

	result, err := h.settlement.CloseOrder(c.Request.Context(), &service.CloseOrderInput{
		OrderID:   id,
		Payments:  payments,
		Tip:       req.Tip.ToTipInput(),
		Overrides: request.ToOverrides(req.Discount, req.ServiceCharge),
	})
	if err != nil {
		middleware.RecordSettlement("failed")
		response.Error(c, err)
		return
	}
	middleware.RecordSettlement("closed")
	response.OK(c, "Order closed successfully", gin.H{
		"order":  result.Order,
		"totals": result.Totals,
		"change": money.Float(result.ChangeCents),
	})
}

// SplitClose handles settling an order split across payers by items
func (h *OrderHandler) SplitClose(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	var req request.SplitCloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	groups := make([]service.SplitGroup, 0, len(req.Groups))
	for i := range req.Groups {
		payment, err := req.Groups[i].Payment.ToPaymentRequest()
		if err != nil {
			response.Error(c, err)
			return
		}
		groups = append(groups, service.SplitGroup{
			PayerName: req.Groups[i].PayerName,
			ItemIDs:   req.Groups[i].ItemIDs,
			Payment:   payment,
		})
	}

	result, err := h.split.SplitClose(c.Request.Context(), &service.SplitCloseInput{
		OrderID:   id,
		Groups:    groups,
		Tip:       req.Tip.ToTipInput(),
		Overrides: request.ToOverrides(req.Discount, req.ServiceCharge),
	})
	if err != nil {
		middleware.RecordSettlement("failed")
		response.Error(c, err)
		return
	}
	middleware.RecordSettlement("split_closed")
	response.OK(c, "Order closed successfully", gin.H{
		"order":  result.Order,
		"totals": result.Totals,
		"change": money.Float(result.ChangeCents),
		"shares": result.Shares,
	})
}

// Refund handles refunding a closed order
func (h *OrderHandler) Refund(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	var req request.CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	refund, err := h.refunds.CreateRefund(c.Request.Context(), &service.CreateRefundInput{
		OrderID:     id,
		AmountCents: money.CentsFromFloat(req.Amount),
		Reason:      req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.RecordRefund()
	response.Created(c, "Refund issued successfully", refund)
}

// List handles listing orders with filters
func (h *OrderHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &repository.OrderFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    page,
			PerPage: perPage,
		},
	}

	if statusStr := c.Query("status"); statusStr != "" {
		if status, err := enum.ParseOrderStatus(statusStr); err == nil {
			params.Status = &status
		}
	}
	if customerIDStr := c.Query("customer_id"); customerIDStr != "" {
		if customerID, err := uuid.Parse(customerIDStr); err == nil {
			params.CustomerID = &customerID
		}
	}
	if startDateStr := c.Query("start_date"); startDateStr != "" {
		if startDate, err := time.Parse("2006-01-02", startDateStr); err == nil {
			params.StartDate = &startDate
		}
	}
	if endDateStr := c.Query("end_date"); endDateStr != "" {
		if endDate, err := time.Parse("2006-01-02", endDateStr); err == nil {
			params.EndDate = &endDate
		}
	}

	result, err := h.orderService.ListOrders(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Orders retrieved successfully", result)
}
