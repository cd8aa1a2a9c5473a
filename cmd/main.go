package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kvejborg/regatta-server/cmd/api"
	"github.com/kvejborg/regatta-server/cmd/models"
	"github.com/kvejborg/regatta-server/db"
	"gorm.io/gorm"
)

func main() {
    if len(os.Args) > 1 {
        switch os.Args[1] {
        case "migrate":
            runMigrations()
            return
        case "clear-db":
            runDatabaseClear()
            return
        default:
            log.Fatalf("Unknown command: %s", os.Args[1])
        }
    }

    startServer()
}

func runMigrations() {
	DB, err := db.NewPSQLStorage()
	if err != nil {
		log.Fatalf("Database initialization error: %v", err)
	}
	defer func() {
		sqlDB, _ := DB.DB()
		sqlDB.Close()
		log.Println("Database connection closed")
	}()
	log.Println("Connected to the database for migrations")

	if err := performMigrations(DB); err != nil {
		log.Fatalf("Migration error: %v", err)
	}
	log.Println("Migrations completed successfully")
}

func performMigrations(DB *gorm.DB) error {

	migrations := map[interface{}]string{
		&models.User{}:                "User",
		&models.PasswordResetToken{}:  "PasswordResetToken",
		&models.ProfileLink{}:         "ProfileLink",
		&models.Series{}:              "Series",
		&models.Event{}:               "Event",
		&models.RaceResult{}:          "RaceResult",
		&models.Notice{}:              "Notice",
		&models.Timeline{}:            "Timeline",
		&models.TimelinePost{}:        "TimelinePost",
		&models.TimelineComment{}:     "TimelineComment",
		&models.TimelineLike{}:        "TimelineLike",
		&models.TimelineAccess{}:      "TimelineAccess",
		&models.Device{}:              "Device",
		&models.NotificationHistory{}: "NotificationHistory",
	}

	log.Println("Starting database migrations...")
	for model, name := range migrations {
		log.Printf("Migrating %s table...", name)
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("error migrating %s table: %w", name, err)
		}
		log.Printf("%s migration successful", name)
	}

	directories := []string{
		"uploads/media",
	}

	for _, dir := range directories {
		if err := createDirectoryIfNotExist(dir); err != nil {
			log.Fatalf("Error creating directory %s: %v", dir, err)
		}
		log.Printf("Directory %s created/verified", dir)
	}

	log.Println("All migrations and directory setup completed successfully")
	return nil
}

func createDirectoryIfNotExist(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("could not create directory %s: %w", path, err)
		}
	}
	return nil
}

func startServer() {
	DB, err := db.NewPSQLStorage()
	if err != nil {
		log.Fatalf("Database initialization error: %v", err)
	}
	defer func() {
		sqlDB, _ := DB.DB()
		sqlDB.Close()
		log.Println("Database connection closed")
	}()
	log.Println("Connected to the database")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	server := api.NewApiServer(":"+port, DB)

	go func() {
		if err := server.Run(); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()
	log.Printf("Server running on port %s", port)

	<-quit
	log.Println("Shutting down server...")
}

func clearDatabase(DB *gorm.DB, tables []interface{}) error {
    if len(tables) == 0 {
        // Default: drop everything, children first.
        tables = []interface{}{
            &models.TimelineLike{},
            &models.TimelineComment{},
            &models.TimelinePost{},
            &models.TimelineAccess{},
            &models.Timeline{},
            &models.RaceResult{},
            &models.Event{},
            &models.Series{},
            &models.Notice{},
            &models.ProfileLink{},
            &models.PasswordResetToken{},
            &models.Device{},
            &models.NotificationHistory{},
            &models.User{},
        }
    }

    log.Println("Dropping tables...")

    for _, table := range tables {
        if err := DB.Migrator().DropTable(table); err != nil {
            log.Printf("Warning dropping table %T: %v", table, err)
        } else {
            log.Printf("Table %T dropped", table)
        }
    }

    return nil
}

func runDatabaseClear() {
    DB, err := db.NewPSQLStorage()
    if err != nil {
        log.Fatalf("Database initialization error: %v", err)
    }
    defer func() {
        sqlDB, _ := DB.DB()
        sqlDB.Close()
        log.Println("Database connection closed")
    }()

    log.Println("Preparing to clear database...")

    var confirmation string
    fmt.Print("Are you sure you want to clear the database? (yes/no): ")
    fmt.Scanln(&confirmation)

    if confirmation != "yes" {
        log.Println("Database clearing cancelled.")
        return
    }

    var tableNames string
    fmt.Print("Enter table names to clear (comma separated) or leave blank to clear all: ")
    fmt.Scanln(&tableNames)

    var tables []interface{}
    if tableNames != "" {
        for _, table := range strings.Split(tableNames, ",") {
            switch strings.TrimSpace(table) {
            case "User":
                tables = append(tables, &models.User{})
            case "PasswordResetToken":
                tables = append(tables, &models.PasswordResetToken{})
            case "ProfileLink":
                tables = append(tables, &models.ProfileLink{})
            case "Series":
                tables = append(tables, &models.Series{})
            case "Event":
                tables = append(tables, &models.Event{})
            case "RaceResult":
                tables = append(tables, &models.RaceResult{})
            case "Notice":
                tables = append(tables, &models.Notice{})
            case "Timeline":
                tables = append(tables, &models.Timeline{})
            case "TimelinePost":
                tables = append(tables, &models.TimelinePost{})
            case "TimelineComment":
                tables = append(tables, &models.TimelineComment{})
            case "TimelineLike":
                tables = append(tables, &models.TimelineLike{})
            case "TimelineAccess":
                tables = append(tables, &models.TimelineAccess{})
            case "Device":
                tables = append(tables, &models.Device{})
            case "NotificationHistory":
                tables = append(tables, &models.NotificationHistory{})
            default:
                log.Printf("Unknown table: %s", table)
            }
        }
    }

    if err := clearDatabase(DB, tables); err != nil {
        log.Fatalf("Error clearing database: %v", err)
    }

    log.Println("Database cleared successfully")
}
