package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListPublicServicesHandler lists every bookable service.
func (hb *HandlerBundle) ListPublicServicesHandler(c *gin.Context) {
	services, err := hb.Catalog.ListPublicServices(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

// ListServiceSlotsHandler lists the open future slots of one service.
func (hb *HandlerBundle) ListServiceSlotsHandler(c *gin.Context) {
	id, ok := pathID(c, "serviceID")
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	slots, err := hb.Ledger.ListAvailableFutureSlots(c.Request.Context(), id, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}
