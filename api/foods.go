package api

import (
	"net/http"

	"github.com/Domenick1991/cinemabooking/internal/service/foods"
	"github.com/gin-gonic/gin"
)

type FoodHandler struct {
	service foods.FoodUseCase
}

func NewFoodHandler(service foods.FoodUseCase) *FoodHandler {
	return &FoodHandler{service: service}
}

func (h *FoodHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.listAvailable)
}

func (h *FoodHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.POST("", h.create)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.delete)
}

func (h *FoodHandler) listAvailable(c *gin.Context) {
	list, err := h.service.ListAvailable(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *FoodHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *FoodHandler) create(c *gin.Context) {
	var req foods.CreateFoodInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	food, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, food)
}

func (h *FoodHandler) update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req foods.UpdateFoodInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	food, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, food)
}

func (h *FoodHandler) delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
