package handlers

import (
	"net/http"
	"time"

	"slotbook/models"
	"slotbook/services/catalog"
	"slotbook/services/command"

	"github.com/gin-gonic/gin"
)

// RegisterProviderHandler registers the caller as a provider.
func (hb *HandlerBundle) RegisterProviderHandler(c *gin.Context) {
	var body struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "name is required")
		return
	}
	p, err := hb.Providers.RegisterProvider(c.Request.Context(), actor(c), body.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"provider": p})
}

func (hb *HandlerBundle) ListMyServicesHandler(c *gin.Context) {
	services, err := hb.Catalog.ListServices(c.Request.Context(), actor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

func (hb *HandlerBundle) AddServiceHandler(c *gin.Context) {
	var in catalog.ServiceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "expected {name, description?, durationMinutes, price?}")
		return
	}
	svc, err := hb.Catalog.AddService(c.Request.Context(), actor(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"service": svc})
}

func (hb *HandlerBundle) UpdateServiceHandler(c *gin.Context) {
	id, ok := pathID(c, "serviceID")
	if !ok {
		return
	}
	var patch models.ServicePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid service patch")
		return
	}
	svc, err := hb.Catalog.UpdateService(c.Request.Context(), actor(c), id, patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": svc})
}

func (hb *HandlerBundle) DeleteServiceHandler(c *gin.Context) {
	id, ok := pathID(c, "serviceID")
	if !ok {
		return
	}
	removed, err := hb.Catalog.DeleteService(c.Request.Context(), actor(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id, "bookingsRemoved": removed})
}

type addSlotRequest struct {
	ServiceID int64      `json:"serviceId" binding:"required"`
	Date      string     `json:"date"`
	Time      string     `json:"time"`
	Start     *time.Time `json:"start"`
}

// AddSlotHandler accepts either an RFC 3339 start or a wall-clock date and
// time in the configured zone.
func (hb *HandlerBundle) AddSlotHandler(c *gin.Context) {
	var req addSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "expected {serviceId, date: YYYY-MM-DD, time: HH:MM} or {serviceId, start}")
		return
	}

	var start time.Time
	if req.Start != nil {
		start = *req.Start
	} else {
		var err error
		start, err = command.ParseStart(req.Date, req.Time, hb.Location)
		if err != nil {
			writeError(c, err)
			return
		}
	}

	slot, err := hb.Ledger.AddSlot(c.Request.Context(), actor(c), req.ServiceID, start)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"slot": slot})
}

func (hb *HandlerBundle) ListMySlotsHandler(c *gin.Context) {
	slots, err := hb.Ledger.ListSlots(c.Request.Context(), actor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

func (hb *HandlerBundle) CancelBookingByProviderHandler(c *gin.Context) {
	id, ok := pathID(c, "bookingID")
	if !ok {
		return
	}
	view, err := hb.Bookings.CancelByProvider(c.Request.Context(), id, actor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": view})
}
