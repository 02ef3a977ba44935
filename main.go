package main

import (
	"log"
	"os"

	"github.com/opentracing/opentracing-go"

	"github.com/operatorhq/mailops/config"
	"github.com/operatorhq/mailops/internal/logger"
	"github.com/operatorhq/mailops/internal/tracing"
	"github.com/operatorhq/mailops/services"
)

func main() {
	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("Config initialization failed: %v", err)
	}

	appLogger := logger.NewAppLogger(cfg.Logger)
	appLogger.InitLogger()

	if cfg.Tracing.Enabled {
		tracer, closer, err := tracing.NewJaegerTracer(cfg.Tracing, appLogger)
		if err != nil {
			appLogger.Fatalf("Could not initialize jaeger tracer: %v", err)
		}
		defer closer.Close()
		opentracing.SetGlobalTracer(tracer)
	}

	svcs := services.InitServices(cfg, appLogger)

	app := newApp(svcs, appLogger)
	if err := app.Run(os.Args); err != nil {
		appLogger.Fatalf("%v", err)
	}
}
