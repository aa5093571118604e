package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"clubfees/cmd/fx/billing_fx"
	"clubfees/cmd/fx/controllers_fx"
	"clubfees/cmd/fx/core_fx"
	"clubfees/internal/api/controllers"
	"clubfees/internal/config"
	"clubfees/pkg/middleware"
	"clubfees/pkg/utils"
)

func main() {
	app := fx.New(
		core_fx.Module,
		billing_fx.JobModule,
		controllers_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine, cfg *config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log = log.Named("http")

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("starting HTTP server", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("HTTP server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}

func ProvideRouter(cs controllers.Controllers, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	utils.RegisterValidators()

	r := gin.New()
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.RequestLogger(log))
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		utils.RespondSuccess(c, nil, "ok")
	})
	controllers.RegisterRoutes(r, cs)

	return r
}
