package main

import (
	"context"
	"net/http"
	"os"

	"github.com/damacus/bucket-listing/internal/config"
	"github.com/damacus/bucket-listing/internal/handlers"
	customMiddleware "github.com/damacus/bucket-listing/internal/middleware"
	"github.com/damacus/bucket-listing/internal/renderer"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newServer(cfg *config.Config, service handlers.ListingService, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadHeaderTimeout = cfg.Server.ReadHeaderTimeout

	listingHandler := handlers.NewListingHandler(service, cfg.Bucket)

	// Middleware
	e.Use(customMiddleware.RequestID())
	e.Use(customMiddleware.RequestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(customMiddleware.SecurityHeaders())
	e.Use(customMiddleware.ContextLogger(logger))

	// Template Renderer
	e.Renderer = renderer.New()

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	// Every other path is a directory of the bucket
	e.GET("/", listingHandler.ShowListing)
	e.GET("/*", listingHandler.ShowListing)

	return e
}
