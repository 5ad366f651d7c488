package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/onboard-hq/onboard-server/config"
	"github.com/onboard-hq/onboard-server/seeder"
)

// One-shot importer: go run ./cmd/seed -file form_export.json
func main() {
	file := flag.String("file", "", "path to a JotForm export JSON file")
	flag.Parse()
	if *file == "" {
		log.Fatal("usage: seed -file <export.json>")
	}

	_ = godotenv.Load()
	config.ConnectDB()

	t, err := seeder.ImportFile(config.DB, *file)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}
	log.Printf("imported template %q (id %d)", t.Name, t.ID)
}
