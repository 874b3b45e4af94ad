package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"pollstream/config"
	"pollstream/pkg/database"
)

const usage = `
Pollstream - Database CLI Tool

Usage:
  migrate [command]

Commands:
  up          Run GORM automigrations
  status      Show database connection status and table counts
  reset       Drop all tables and re-run migrations (DANGEROUS)
  truncate    Truncate all tables (DANGEROUS)

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go status
  go run cmd/migrate/main.go reset
`

var tables = []string{"users", "poll", "poll_options", "votes", "likes"}

func main() {
	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)

	cfg := config.LoadConfig()
	database.Connect(cfg)
	defer database.Close()

	switch command {
	case "up":
		runMigrationsUp()
	case "status":
		showStatus()
	case "reset":
		runReset()
	case "truncate":
		runTruncate()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp() {
	if err := database.Migrate(database.DB); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	fmt.Println("Migrations applied")
}

func showStatus() {
	if err := database.Ping(); err != nil {
		log.Fatalf("Database unreachable: %v", err)
	}
	fmt.Println("Database connection: OK")

	for _, table := range tables {
		exists, err := database.TableExists(table)
		if err != nil || !exists {
			fmt.Printf("  %-14s missing\n", table)
			continue
		}
		count, err := database.TableCount(table)
		if err != nil {
			fmt.Printf("  %-14s error: %v\n", table, err)
			continue
		}
		fmt.Printf("  %-14s %d rows\n", table, count)
	}
}

func runReset() {
	fmt.Println("Dropping all tables...")
	for _, table := range tables {
		if err := database.DB.Migrator().DropTable(table); err != nil {
			log.Fatalf("Failed to drop %s: %v", table, err)
		}
	}
	runMigrationsUp()
	fmt.Println("Reset complete")
}

func runTruncate() {
	fmt.Println("Truncating all tables...")
	for _, table := range tables {
		if err := database.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			log.Fatalf("Failed to truncate %s: %v", table, err)
		}
	}
	fmt.Println("Truncate complete")
}
