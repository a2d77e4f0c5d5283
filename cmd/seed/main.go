package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/homehunt/homehunt-api/config"
	"github.com/homehunt/homehunt-api/pkg/helpers"
)

// Seeds a verified demo agent, a verified demo user and a few listings so a
// fresh environment has something to browse.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	agentID := seedAccount(db, "agent@homehunt.dev", "password123", "Demo Agent", "agent")
	userID := seedAccount(db, "user@homehunt.dev", "password123", "Demo User", "user")
	fmt.Printf("seeded accounts: agent=%s user=%s (password: password123)\n", agentID, userID)

	listings := []struct {
		title, description, location, propertyType string
		price                                      float64
	}{
		{"Sunny 2BR Apartment", "Bright two-bedroom close to the waterfront.", "Amsterdam", "apartment", 385000},
		{"Family House with Garden", "Four bedrooms, quiet street, large garden.", "Utrecht", "house", 610000},
		{"City Center Studio", "Compact studio above the market square.", "Rotterdam", "studio", 245000},
	}
	for _, l := range listings {
		var id string
		err := db.QueryRow(`
			INSERT INTO properties (title, description, price, location, property_type, created_by)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, l.title, l.description, l.price, l.location, l.propertyType, agentID).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed listing %q: %v", l.title, err)
		}
		fmt.Printf("seeded listing: id=%s title=%q\n", id, l.title)
	}
}

func seedAccount(db *sql.DB, email, password, name, role string) string {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	var id string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, name, role, is_active, is_verified)
		VALUES ($1, $2, $3, $4, TRUE, TRUE)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, email, hash, name, role).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed %s account: %v", role, err)
	}
	return id
}
