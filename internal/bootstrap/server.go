package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dkrylova/aftersale/api"
	"github.com/dkrylova/aftersale/config"
	"github.com/dkrylova/aftersale/internal/service/application"
	"github.com/gin-gonic/gin"
)

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, appSvc application.ApplicationUseCase) error {
	router := gin.Default()

	refunds := api.NewRefundHandler(appSvc)
	rebookings := api.NewRebookingHandler(appSvc)
	refunds.Register(router.Group("/refunds"))
	rebookings.Register(router.Group("/rebookings"))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
