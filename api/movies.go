package api

import (
	"net/http"

	"github.com/Domenick1991/cinemabooking/internal/service/movies"
	"github.com/gin-gonic/gin"
)

type MovieHandler struct {
	service movies.MovieUseCase
}

func NewMovieHandler(service movies.MovieUseCase) *MovieHandler {
	return &MovieHandler{service: service}
}

func (h *MovieHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.GET("/slug/:slug", h.getBySlug)
	router.GET("/status/:status", h.listByStatus)
}

func (h *MovieHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.delete)
	router.POST("/refresh-status", h.refreshStatus)
}

func (h *MovieHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *MovieHandler) get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	movie, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, movie)
}

func (h *MovieHandler) getBySlug(c *gin.Context) {
	movie, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, movie)
}

func (h *MovieHandler) listByStatus(c *gin.Context) {
	list, err := h.service.ListByStatus(c.Request.Context(), c.Param("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *MovieHandler) create(c *gin.Context) {
	var req movies.CreateMovieInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	movie, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, movie)
}

func (h *MovieHandler) update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req movies.UpdateMovieInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	movie, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, movie)
}

func (h *MovieHandler) delete(c *gin.Context) {
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

func (h *MovieHandler) refreshStatus(c *gin.Context) {
	changed, err := h.service.RefreshStatuses(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}
