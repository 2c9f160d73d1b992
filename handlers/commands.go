package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CommandHandler runs one textual bot command for the caller and returns
// both the rendered reply and the typed payload.
func (hb *HandlerBundle) CommandHandler(c *gin.Context) {
	var body struct {
		Command string `json:"command" binding:"required"`
		Args    string `json:"args"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "expected {command, args}")
		return
	}
	res, err := hb.Commands.Execute(c.Request.Context(), actor(c), body.Command, body.Args)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
