package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/edforge-labs/coursegen_api/model"
	"github.com/edforge-labs/coursegen_api/seed/seeders"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	var (
		seedType = flag.String("type", "all", "Type of seeding: all, courses, settings")
		dsn      = flag.String("dsn", "", "Postgres DSN (overrides DATABASE_URL env var)")
		help     = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	databaseURL := *dsn
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
		if databaseURL == "" {
			log.Fatal("DATABASE_URL is required (or pass -dsn)")
		}
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Connected to database")

	if err := db.AutoMigrate(
		&model.Course{},
		&model.Module{},
		&model.Lesson{},
		&model.PhaseDataRecord{},
		&model.AISettings{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	mainSeeder := seeders.NewMainSeeder(db)

	switch *seedType {
	case "all":
		log.Println("Running complete database seeding...")
		err = mainSeeder.SeedAll()
	case "courses":
		log.Println("Seeding courses only...")
		err = mainSeeder.SeedCoursesOnly()
	case "settings":
		log.Println("Seeding AI settings only...")
		err = mainSeeder.SeedSettingsOnly()
	default:
		log.Fatalf("Unknown seed type: %s", *seedType)
	}

	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}

func showHelp() {
	fmt.Println("Database seeder")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  seed [-type all|courses|settings] [-dsn postgres://...]")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  DATABASE_URL  Postgres connection string used when -dsn is not set")
}
