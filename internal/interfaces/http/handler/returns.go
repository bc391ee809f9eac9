package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	returnsapp "github.com/returns/backend/internal/application/returns"
	"github.com/returns/backend/internal/domain/rma"
	"github.com/returns/backend/internal/interfaces/http/middleware"
)

// ReturnsHandler handles the customer-facing return request endpoints
type ReturnsHandler struct {
	BaseHandler
	service *returnsapp.Service
	labels  *returnsapp.LabelService
}

// NewReturnsHandler creates a new ReturnsHandler
func NewReturnsHandler(service *returnsapp.Service, labels *returnsapp.LabelService) *ReturnsHandler {
	return &ReturnsHandler{
		service: service,
		labels:  labels,
	}
}

// ValidateOrderRequest asks whether a return may be opened for an order
type ValidateOrderRequest struct {
	OrderNumber string `json:"order_number" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
}

// CreateReturnItemRequest is one requested return position
type CreateReturnItemRequest struct {
	ProductID   int64   `json:"product_id" binding:"required,gt=0"`
	VariationID *int64  `json:"variation_id"`
	Quantity    int     `json:"quantity" binding:"required,gt=0"`
	ReasonID    int64   `json:"reason_id" binding:"required,gt=0"`
	Comment     *string `json:"comment"`
}

// CreateReturnRequest opens a new return request for an order
type CreateReturnRequest struct {
	OrderID         int64                     `json:"order_id" binding:"required,gt=0"`
	CustomerID      int64                     `json:"customer_id" binding:"required,gt=0"`
	ReturnAddressID *int64                    `json:"return_address_id"`
	Items           []CreateReturnItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateStatusRequest moves a return request to a new status
type UpdateStatusRequest struct {
	Status  int    `json:"status" binding:"min=0,max=4"`
	Comment string `json:"comment"`
	ActorID *int64 `json:"actor_id"`
}

// ReturnItemResponse represents a return position in API responses
type ReturnItemResponse struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"product_id"`
	VariationID  *int64          `json:"variation_id,omitempty"`
	Quantity     int             `json:"quantity"`
	ReasonID     int64           `json:"reason_id"`
	Status       string          `json:"status"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
	Comment      *string         `json:"comment,omitempty"`
}

// ReturnResponse represents a return request in API responses
type ReturnResponse struct {
	ID         int64                `json:"id"`
	Number     string               `json:"number"`
	OrderID    int64                `json:"order_id"`
	CustomerID *int64               `json:"customer_id,omitempty"`
	Status     string               `json:"status"`
	TotalGross decimal.Decimal      `json:"total_gross"`
	LabelPath  *string              `json:"label_path,omitempty"`
	Synced     bool                 `json:"synced"`
	Items      []ReturnItemResponse `json:"items"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

// HistoryEventResponse represents one audit log entry
type HistoryEventResponse struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Payload   string    `json:"payload"`
	ActorID   *int64    `json:"actor_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ReasonResponse represents one return reason
type ReasonResponse struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

func toReturnResponse(r *rma.RMA) ReturnResponse {
	items := make([]ReturnItemResponse, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, ReturnItemResponse{
			ID:           item.ID,
			ProductID:    item.ProductID,
			VariationID:  item.VariationID,
			Quantity:     item.Quantity,
			ReasonID:     item.ReasonID,
			Status:       item.Status.String(),
			RefundAmount: item.RefundAmount,
			Comment:      item.Comment,
		})
	}
	return ReturnResponse{
		ID:         r.ID,
		Number:     r.Number,
		OrderID:    r.OrderID,
		CustomerID: r.CustomerID,
		Status:     r.Status.String(),
		TotalGross: r.TotalGross,
		LabelPath:  r.LabelPath,
		Synced:     r.Synced,
		Items:      items,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ValidateOrder checks whether a return may be opened for an order.
// A failed check is a 200 response with valid=false, not an error.
func (h *ReturnsHandler) ValidateOrder(c *gin.Context) {
	var req ValidateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.service.ValidateOrderAccess(c.Request.Context(), req.OrderNumber, req.Email)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ReturnableProducts lists order positions with remaining returnable quantity
func (h *ReturnsHandler) ReturnableProducts(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	result, err := h.service.ReturnableProducts(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Create opens a new return request
func (h *ReturnsHandler) Create(c *gin.Context) {
	var req CreateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	input := returnsapp.CreateReturnRequestInput{
		OrderID:         req.OrderID,
		CustomerID:      req.CustomerID,
		ReturnAddressID: req.ReturnAddressID,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, returnsapp.CreateReturnItemInput{
			ProductID:   item.ProductID,
			VariationID: item.VariationID,
			Quantity:    item.Quantity,
			ReasonID:    item.ReasonID,
			Comment:     item.Comment,
		})
	}

	request, err := h.service.CreateReturnRequest(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toReturnResponse(request))
}

// GetByNumber looks up a return request by its RMA number
func (h *ReturnsHandler) GetByNumber(c *gin.Context) {
	number := c.Param("ref")
	if number == "" {
		h.BadRequest(c, "RMA number is required")
		return
	}

	request, err := h.service.GetByNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toReturnResponse(request))
}

// History returns the audit log of a return request, newest first
func (h *ReturnsHandler) History(c *gin.Context) {
	rmaID, ok := pathID(c, "ref")
	if !ok {
		h.BadRequest(c, "Invalid return request ID")
		return
	}

	events, err := h.service.History(c.Request.Context(), rmaID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := make([]HistoryEventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, HistoryEventResponse{
			ID:        e.ID,
			Kind:      string(e.Kind),
			Payload:   e.Payload,
			ActorID:   e.ActorID,
			CreatedAt: e.CreatedAt,
		})
	}
	h.Success(c, resp)
}

// UpdateStatus moves a return request to a new status
func (h *ReturnsHandler) UpdateStatus(c *gin.Context) {
	rmaID, ok := pathID(c, "ref")
	if !ok {
		h.BadRequest(c, "Invalid return request ID")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	err := h.service.UpdateStatus(c.Request.Context(), rmaID, rma.Status(req.Status), req.Comment, req.ActorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CreateLabel requests a return shipping label. Carrier failures come back
// as success=false inside a 200 response so the request flow can continue.
func (h *ReturnsHandler) CreateLabel(c *gin.Context) {
	rmaID, ok := pathID(c, "ref")
	if !ok {
		h.BadRequest(c, "Invalid return request ID")
		return
	}

	result, err := h.labels.CreateLabel(c.Request.Context(), rmaID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Reasons lists active return reasons for a language
func (h *ReturnsHandler) Reasons(c *gin.Context) {
	language := c.DefaultQuery("language", "ger")

	reasons, err := h.service.ReturnReasons(c.Request.Context(), language)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := make([]ReasonResponse, 0, len(reasons))
	for _, r := range reasons {
		resp = append(resp, ReasonResponse{ID: r.ID, Reason: r.Reason})
	}
	h.Success(c, resp)
}

// AnonymizeCustomer erases the customer's personal data from their return
// requests. The shop calls it when a customer account is deleted.
func (h *ReturnsHandler) AnonymizeCustomer(c *gin.Context) {
	customerID, ok := pathID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	if err := h.service.AnonymizeCustomer(c.Request.Context(), customerID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers the return request routes. Gin allows only one
// wildcard name per path position, so the lookup by RMA number and the
// ID-based subresources share the :ref segment.
func (h *ReturnsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/returns/validate-order", h.ValidateOrder)
	rg.POST("/returns", h.Create)
	rg.GET("/returns/:ref", h.GetByNumber)
	rg.GET("/returns/:ref/history", h.History)
	rg.PUT("/returns/:ref/status", h.UpdateStatus)
	rg.POST("/returns/:ref/label", h.CreateLabel)
	rg.GET("/orders/:id/returnable", h.ReturnableProducts)
	rg.GET("/reasons", h.Reasons)
	rg.POST("/customers/:id/anonymize", h.AnonymizeCustomer)
}
