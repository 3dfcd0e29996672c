package site

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Serve hosts the built site on a local port for previewing. It blocks until
// the context is cancelled or the server fails.
func Serve(ctx context.Context, outputDir string, port int) error {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Gzip())
	e.Static("/", outputDir)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}()

	err := e.Start(fmt.Sprintf(":%d", port))
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
