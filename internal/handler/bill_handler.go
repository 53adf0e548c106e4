package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type BillHandler struct {
	billService service.BillService
}

func NewBillHandler(billService service.BillService) *BillHandler {
	return &BillHandler{billService: billService}
}

func (h *BillHandler) RegisterRoutes(router *gin.RouterGroup) {
	bills := router.Group("/api/bills")
	bills.Use(middleware.RequireRole(model.RoleAdmin, model.RoleStaff))
	{
		bills.POST("", h.CreateBill)
		bills.GET("", h.ListBills)
		bills.GET("/:id", h.GetBill)
		bills.PUT("/:id/payments", h.RecordPayment)
	}
}

// CreateBill creates a new bill from the submitted draft
// @Summary      Create bill
// @Description  Validates the draft, assigns the next bill number, computes amounts, and attaches a payment QR when a balance remains
// @Tags         bills
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateBillRequest  true  "Bill draft"
// @Success      201      {object}  response.Response{data=service.BillResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/bills [post]
func (h *BillHandler) CreateBill(c *gin.Context) {
	var req service.CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	bill, err := h.billService.CreateBill(c.Request.Context(), req, actorID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, bill))
}

// ListBills returns a paginated list of bills
// @Summary      List bills
// @Tags         bills
// @Security     BearerAuth
// @Produce      json
// @Param        status       query     string  false  "Filter by status (pending, partially_paid, paid)"
// @Param        customer_id  query     string  false  "Filter by customer"
// @Param        search       query     string  false  "Search by bill number or customer name"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Items per page (default 20)"
// @Success      200          {object}  response.Response{data=[]service.BillResponse}
// @Failure      500          {object}  response.Response
// @Router       /api/bills [get]
func (h *BillHandler) ListBills(c *gin.Context) {
	params := pagination.Parse(c)

	filter := service.BillFilter{
		Status:     c.Query("status"),
		CustomerID: c.Query("customer_id"),
		Search:     c.Query("search"),
		Page:       params.Page,
		Limit:      params.Limit,
	}

	bills, total, err := h.billService.ListBills(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, bills, params.Page, params.Limit, total))
}

// GetBill returns a single bill with items and attachments
// @Summary      Get bill
// @Tags         bills
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Bill ID"
// @Success      200  {object}  response.Response{data=service.BillResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/bills/{id} [get]
func (h *BillHandler) GetBill(c *gin.Context) {
	bill, err := h.billService.GetBill(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, bill))
}

// RecordPayment records an additional payment against an open bill
// @Summary      Record payment
// @Description  Adds the amount to the bill's advance and re-derives balance and status
// @Tags         bills
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Bill ID"
// @Param        payload  body      service.RecordPaymentRequest  true  "Payment"
// @Success      200      {object}  response.Response{data=service.BillResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/bills/{id}/payments [put]
func (h *BillHandler) RecordPayment(c *gin.Context) {
	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	bill, err := h.billService.RecordPayment(c.Request.Context(), c.Param("id"), req, actorID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, bill))
}

// actorID returns the authenticated user's id from the gin context, empty when absent.
func actorID(c *gin.Context) string {
	userID, _ := c.Get("userID")
	s, _ := userID.(string)
	return s
}
