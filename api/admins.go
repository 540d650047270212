package api

import (
	"net/http"

	"github.com/Domenick1991/cinemabooking/internal/service/admins"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	service admins.AdminUseCase
}

func NewAdminHandler(service admins.AdminUseCase) *AdminHandler {
	return &AdminHandler{service: service}
}

// Register mounts the public login endpoint.
func (h *AdminHandler) Register(router *gin.RouterGroup) {
	router.POST("/login", h.login)
}

func (h *AdminHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.POST("", h.create)
	router.DELETE("/:id", h.delete)
}

func (h *AdminHandler) login(c *gin.Context) {
	var req admins.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	token, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

func (h *AdminHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *AdminHandler) create(c *gin.Context) {
	var req admins.CreateAdminInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	admin, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, admin)
}

func (h *AdminHandler) delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), adminID(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
