package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/cinemabooking/internal/domain"
	"github.com/Domenick1991/cinemabooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	MovieID      int64     `json:"movie_id"`
	Showtime     time.Time `json:"showtime"`
	SeatNumber   string    `json:"seat_number"`
	CustomerName string    `json:"customer_name"`
	Email        string    `json:"email"`
}

type bookingResponse struct {
	Token        string `json:"token"`
	Status       string `json:"status"`
	ExpiresAt    string `json:"expires_at"`
	MovieID      int64  `json:"movie_id"`
	Showtime     string `json:"showtime"`
	SeatNumber   string `json:"seat_number"`
	CustomerName string `json:"customer_name"`
	Email        string `json:"email"`
}

func newBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		Token:        b.Token,
		Status:       string(b.Status),
		ExpiresAt:    b.ExpiresAt.Format(time.RFC3339),
		MovieID:      b.MovieID,
		Showtime:     b.Showtime.Format(time.RFC3339),
		SeatNumber:   b.SeatNumber,
		CustomerName: b.CustomerName,
		Email:        b.Email,
	}
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/:token", h.get)
	router.PUT("/:token", h.confirm)
	router.DELETE("/:token", h.cancel)
	router.GET("/:token/qr", h.ticketQR)
}

func (h *BookingHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.DELETE("/:token", h.delete)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		MovieID:      req.MovieID,
		Showtime:     req.Showtime,
		SeatNumber:   req.SeatNumber,
		CustomerName: req.CustomerName,
		Email:        req.Email,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newBookingResponse(b))
}

func (h *BookingHandler) get(c *gin.Context) {
	b, err := h.service.GetByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b))
}

func (h *BookingHandler) confirm(c *gin.Context) {
	b, err := h.service.ConfirmBooking(c.Request.Context(), c.Param("token"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	b, err := h.service.CancelBooking(c.Request.Context(), c.Param("token"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b))
}

func (h *BookingHandler) ticketQR(c *gin.Context) {
	png, err := h.service.TicketQR(c.Request.Context(), c.Param("token"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *BookingHandler) list(c *gin.Context) {
	var movieID int64
	if raw := c.Query("movie_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid movie_id"})
			return
		}
		movieID = id
	}

	list, err := h.service.List(c.Request.Context(), movieID)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]bookingResponse, 0, len(list))
	for i := range list {
		resp = append(resp, newBookingResponse(&list[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("token")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
