package main

import (
	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/edforge-labs/coursegen_api/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using system environment variables")
	}

	ctx, err := context.NewCtx(
		&services.PostgresService{},
		&services.DraftStoreService{},
		&services.RedisService{},
		&services.MinIOService{},
		&services.MonitoringService{},
		&services.RateLimitService{},

		&services.CourseService{},
		&services.GenerationService{},
		&services.PDFService{},
		&services.DriveService{},

		&services.HttpService{},
	)
	if err != nil {
		log.WithError(err).Fatal("failed to build service context")
		return
	}

	if err = ctx.Run(); err != nil {
		log.WithError(err).Fatal("service context stopped")
		return
	}
}
