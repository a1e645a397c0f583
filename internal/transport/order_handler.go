package transport

import (
	"net/http"

	"storefront-be/internal/order"

	"github.com/gin-gonic/gin"
)

type orderHandler struct {
	svc order.Service
}

func (h *orderHandler) create(c *gin.Context) {
	var input order.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid JSON payload")
		return
	}

	created, err := h.svc.Create(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *orderHandler) list(c *gin.Context) {
	p, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *orderHandler) get(c *gin.Context) {
	o, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *orderHandler) markDelivered(c *gin.Context) {
	o, err := h.svc.MarkDelivered(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
