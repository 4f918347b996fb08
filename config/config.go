package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	dsn := os.Getenv("DB_DSN")
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := Migrations(DB); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	if err := SeedUltraAdmin(DB); err != nil {
		log.Fatal("Failed to seed ultra admin:", err)
	}

	if os.Getenv("SEED_DEMO") == "true" {
		if err := SeedDemoData(DB); err != nil {
			log.Printf("Warning: demo seeding encountered issues: %v", err)
		}
	}
}

// Getenv returns the env var value or a default when unset.
func Getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
