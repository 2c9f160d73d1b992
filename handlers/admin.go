package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetProviderActiveHandler toggles whether a provider is visible and
// allowed to act.
func (hb *HandlerBundle) SetProviderActiveHandler(c *gin.Context) {
	id, ok := pathID(c, "providerID")
	if !ok {
		return
	}
	var body struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Active == nil {
		badRequest(c, "active is required")
		return
	}
	p, err := hb.Providers.SetProviderActive(c.Request.Context(), id, *body.Active)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"provider": p})
}
