package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReserveHandler books a slot for the caller.
func (hb *HandlerBundle) ReserveHandler(c *gin.Context) {
	var body struct {
		SlotID int64 `json:"slotId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.SlotID <= 0 {
		badRequest(c, "slotId is required")
		return
	}
	view, err := hb.Bookings.Reserve(c.Request.Context(), body.SlotID, actor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": view})
}

func (hb *HandlerBundle) ListMyBookingsHandler(c *gin.Context) {
	views, err := hb.Bookings.ListClientBookings(c.Request.Context(), actor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": views})
}

func (hb *HandlerBundle) CancelBookingHandler(c *gin.Context) {
	id, ok := pathID(c, "bookingID")
	if !ok {
		return
	}
	view, err := hb.Bookings.CancelByClient(c.Request.Context(), id, actor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": view})
}
