package server

import (
	"photo-paywall-api/internal/config"
	"photo-paywall-api/internal/handler"
	custommw "photo-paywall-api/internal/middleware"
	"photo-paywall-api/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo            *echo.Echo
	checkoutHandler *handler.CheckoutHandler
	webhookHandler  *handler.WebhookHandler
	photoHandler    *handler.PhotoHandler
	jwtSecret       string
}

func NewServer(
	cfg *config.Config,
	checkoutService service.CheckoutService,
	reconcileService service.ReconcileService,
	photoService service.PhotoService,
) *Server {
	e := echo.New()

	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:            e,
		checkoutHandler: handler.NewCheckoutHandler(checkoutService),
		webhookHandler:  handler.NewWebhookHandler(reconcileService, &cfg.MercadoPago),
		photoHandler:    handler.NewPhotoHandler(photoService),
		jwtSecret:       cfg.JWTSecret,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	api.POST("/checkout", s.checkoutHandler.CreateCheckout)

	// -------- mercadopago webhooks --------
	mp := api.Group("/mercadopago")
	mp.GET("/webhook", s.webhookHandler.Healthcheck)
	mp.POST("/webhook", s.webhookHandler.HandleNotification)

	// -------- creator panel --------
	photos := api.Group("/photos", custommw.JWTAuth(s.jwtSecret))
	photos.POST("", s.photoHandler.CreatePhoto)
	photos.GET("", s.photoHandler.ListPhotos)
	photos.PATCH("/:id/hidden", s.photoHandler.SetHidden)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
