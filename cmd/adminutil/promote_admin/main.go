package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/campusgig/campusgig/internal/db"
)

func main() {
	email := flag.String("email", "", "Email of the profile to promote to admin")
	flag.Parse()

	if *email == "" {
		log.Fatalf("usage: go run cmd/adminutil/promote_admin/main.go -email user@example.com")
	}

	_ = godotenv.Load()

	// Initialize DB from environment variables
	db.Init()
	defer db.Close()

	ct, err := db.Conn.Exec(context.Background(), `UPDATE profiles SET role = 'admin' WHERE email = $1`, *email)
	if err != nil {
		log.Fatalf("failed to promote profile to admin: %v", err)
	}

	if ct.RowsAffected() == 0 {
		log.Fatalf("no profile found with email: %s", *email)
	}

	fmt.Printf("Profile %s promoted to admin.\n", *email)
}
