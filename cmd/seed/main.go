package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/marketmapper/marketmapper/config"
	"github.com/marketmapper/marketmapper/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	dsn := cfg.PostgresDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@marketmapper.dev"
	password := "password123"
	username := "demoUser"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (email, username, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET username=EXCLUDED.username
		RETURNING id
	`, email, username, hash).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s username=%s password=%s\n", id, email, username, password)

	// Sample reports so the dashboard and history pages have content.
	samples := []struct {
		title    string
		location string
	}{
		{"Coffee shop in Ahmedabad", "Ahmedabad"},
		{"Coworking space in Surat", "Surat"},
		{"Organic grocery in Ahmedabad", "Ahmedabad"},
	}
	for _, s := range samples {
		if _, err := db.Exec(`
			INSERT INTO reports (title, user_id, location)
			SELECT $1, $2, $3
			WHERE NOT EXISTS (
				SELECT 1 FROM reports WHERE title = $1 AND user_id = $2
			)
		`, s.title, id, s.location); err != nil {
			log.Fatalf("failed to seed report %q: %v", s.title, err)
		}
	}
	fmt.Printf("seeded %d sample reports for user %s\n", len(samples), id)
}
