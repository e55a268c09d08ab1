package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"volunteer-slots/internal/handler/api"
	"volunteer-slots/internal/handler/middleware"
	"volunteer-slots/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	bookingHandler *api.BookingHandler,
	volunteerHandler *api.VolunteerHandler,
	adminHandler *api.AdminHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, bookingHandler, volunteerHandler, adminHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	bookingHandler *api.BookingHandler,
	volunteerHandler *api.VolunteerHandler,
	adminHandler *api.AdminHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	apiGroup.Use(authMiddleware.RequireAuth())
	{
		reservations := apiGroup.Group("/reservations")
		{
			addRoutes(reservations, []route{
				{Method: http.MethodPost, Path: "", Handler: bookingHandler.CreateReservation},
				{Method: http.MethodGet, Path: "", Handler: bookingHandler.ListMyReservations},
				{Method: http.MethodGet, Path: "/:id", Handler: bookingHandler.GetReservation},
			})
		}

		volunteers := apiGroup.Group("/volunteers")
		{
			addRoutes(volunteers, []route{
				{Method: http.MethodGet, Path: "/me", Handler: volunteerHandler.Me},
				{Method: http.MethodPut, Path: "/me", Handler: volunteerHandler.UpdateMe},
			})
		}

		admin := apiGroup.Group("/admin")
		admin.Use(authMiddleware.RequireAdmin())
		{
			addRoutes(admin, []route{
				{Method: http.MethodPost, Path: "/reservations/:id/decision", Handler: adminHandler.Decide},
				{Method: http.MethodGet, Path: "/reservations", Handler: adminHandler.ListReservationsByDate},
				{Method: http.MethodGet, Path: "/policy", Handler: adminHandler.GetPolicy},
				{Method: http.MethodPut, Path: "/policy", Handler: adminHandler.UpdatePolicy},
				{Method: http.MethodPost, Path: "/volunteers", Handler: adminHandler.RegisterVolunteer},
				{Method: http.MethodGet, Path: "/volunteers", Handler: adminHandler.LookupVolunteer},
				{Method: http.MethodDelete, Path: "/volunteers/:id", Handler: adminHandler.DeactivateVolunteer},
				{Method: http.MethodGet, Path: "/deliveries", Handler: adminHandler.ListDeliveries},
				{Method: http.MethodPost, Path: "/checks/unfilled", Handler: adminHandler.RunUnfilledCheck},
				{Method: http.MethodPost, Path: "/test-notification", Handler: adminHandler.SendTestNotification},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
