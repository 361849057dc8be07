package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/salonluxe/SalonLuxe/app/repository"
	"github.com/salonluxe/SalonLuxe/internal/pkg/cache"
	"github.com/salonluxe/SalonLuxe/internal/pkg/database"
	"github.com/salonluxe/SalonLuxe/internal/pkg/env"
	"github.com/salonluxe/SalonLuxe/internal/pkg/jobqueue"
	"github.com/salonluxe/SalonLuxe/internal/pkg/router"
)

func main() {
	app := NewApplication()

	// graceful shutdown: drain jobs before closing the listener
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		jobqueue.GetManager().Stop()
		_ = app.Shutdown()
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	// Repositories share the gorm handle opened above
	repository.InitializeFactory(database.GetDB())

	// Background workers: catalog sync jobs and billing emails
	jobqueue.GetManager().Start()

	// init fiber app
	app := fiber.New(fiber.Config{
		AppName: "SalonLuxe",
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			"admin": env.GetEnv("METRICS_PASSWORD", "test"),
		},
	}), monitor.New())

	// SWAGGER / OPENAPI
	if _, err := os.Stat("public/docs/v1/openapi.yml"); err == nil {
		openAPICfg := swagger.Config{
			BasePath: "/docs/api/",
			FilePath: "public/docs/v1/openapi.yml",
			Path:     "v1",
		}
		app.Use(swagger.New(openAPICfg))
	}

	// ROUTER
	router.InstallRouter(app)

	return app
}
