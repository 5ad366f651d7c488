package config

import (
	"fmt"
	"log"
	"os"

	"github.com/onboard-hq/onboard-server/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// ConnectDB opens the PostgreSQL connection and migrates all tables.
func ConnectDB() {
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, user, password, dbName, port)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	DB = db
	log.Println("Connected to PostgreSQL & migrated successfully")
}

// Migrate runs AutoMigrate for every model. Shared with the seeder and
// the sqlite test setup.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.AppUser{},
		&models.Template{},
		&models.Section{},
		&models.Group{},
		&models.Question{},
		&models.SelectOption{},
		&models.Submission{},
		&models.Assignment{},
		&models.Media{},
		&models.Ticket{},
		&models.Message{},
		&models.ExportJob{},
	)
}
