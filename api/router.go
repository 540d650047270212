package api

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
)

const swaggerDocFile = "cinema.swagger.json"

type Handlers struct {
	Movies   *MovieHandler
	Foods    *FoodHandler
	Bookings *BookingHandler
	Orders   *OrderHandler
	Admins   *AdminHandler
	Buddies  *BuddyHandler
}

type RouterConfig struct {
	JWTSecret  string
	SwaggerDir string
}

func NewRouter(h Handlers, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.SwaggerDir != "" {
		r.StaticFile("/swagger/"+swaggerDocFile, filepath.Join(cfg.SwaggerDir, swaggerDocFile))
		r.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/"+swaggerDocFile))))
	}

	public := r.Group("/api")
	h.Admins.Register(public.Group("/auth"))
	h.Movies.Register(public.Group("/movies"))
	h.Foods.Register(public.Group("/foods"))
	h.Bookings.Register(public.Group("/bookings"))
	h.Orders.Register(public.Group("/orders"))
	h.Buddies.RegisterWS(r)

	admin := r.Group("/api/admin", RequireAdmin(cfg.JWTSecret))
	h.Movies.RegisterAdmin(admin.Group("/movies"))
	h.Foods.RegisterAdmin(admin.Group("/foods"))
	h.Bookings.RegisterAdmin(admin.Group("/bookings"))
	h.Orders.RegisterAdmin(admin.Group("/orders"))
	h.Admins.RegisterAdmin(admin.Group("/accounts"))
	h.Buddies.RegisterAdmin(admin.Group("/buddies"))

	return r
}
