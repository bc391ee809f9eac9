package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	syncapp "github.com/returns/backend/internal/application/sync"
	"github.com/returns/backend/internal/domain/rma"
	"github.com/returns/backend/internal/interfaces/http/middleware"
)

// WawiHandler handles the inbound back office webhook
type WawiHandler struct {
	BaseHandler
	service *syncapp.Service
}

// NewWawiHandler creates a new WawiHandler
func NewWawiHandler(service *syncapp.Service) *WawiHandler {
	return &WawiHandler{service: service}
}

// WawiItemUpdateRequest is a partial change to one return item
type WawiItemUpdateRequest struct {
	ID           int64            `json:"id" binding:"required,gt=0"`
	Status       *int             `json:"status" binding:"omitempty,min=0,max=3"`
	RefundAmount *decimal.Decimal `json:"refund_amount"`
}

// WawiUpdateRequest is a partial change to a return request pushed by the
// back office. Absent fields are left untouched.
type WawiUpdateRequest struct {
	RMAID  int64                   `json:"rma_id" binding:"required,gt=0"`
	Status *int                    `json:"status" binding:"omitempty,min=0,max=4"`
	WawiID *int64                  `json:"wawi_id"`
	Items  []WawiItemUpdateRequest `json:"items" binding:"omitempty,dive"`
}

// Update applies a partial inbound change. Updates for unknown requests are
// acknowledged without effect so the back office feed never stalls.
func (h *WawiHandler) Update(c *gin.Context) {
	var req WawiUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	upd := syncapp.Update{
		RMAID:  req.RMAID,
		WawiID: req.WawiID,
	}
	if req.Status != nil {
		status := rma.Status(*req.Status)
		upd.Status = &status
	}
	for _, item := range req.Items {
		itemUpd := syncapp.ItemUpdate{
			ID:           item.ID,
			RefundAmount: item.RefundAmount,
		}
		if item.Status != nil {
			status := rma.ItemStatus(*item.Status)
			itemUpd.Status = &status
		}
		upd.Items = append(upd.Items, itemUpd)
	}

	if err := h.service.HandleWawiUpdate(c.Request.Context(), upd); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers the back office webhook routes
func (h *WawiHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/wawi/updates", h.Update)
}
