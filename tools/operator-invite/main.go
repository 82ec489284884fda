// operator-invite provisions a dashboard operator: it bcrypt-hashes the given
// password and upserts the operators row for a tenant.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	var (
		dbURL    = flag.String("database-url", getenv("DATABASE_URL", ""), "postgres connection url")
		client   = flag.String("client", getenv("CLIENT_ID", ""), "tenant id the operator manages")
		email    = flag.String("email", "", "operator login email")
		password = flag.String("password", "", "operator password (hashed before storage)")
	)
	flag.Parse()

	if strings.TrimSpace(*dbURL) == "" {
		fatal("DATABASE_URL is required")
	}
	if strings.TrimSpace(*client) == "" || strings.TrimSpace(*email) == "" || strings.TrimSpace(*password) == "" {
		fatal("client, email, and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		fatal(err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, *dbURL)
	if err != nil {
		fatal(err.Error())
	}
	defer conn.Close(ctx)

	loginEmail := strings.ToLower(strings.TrimSpace(*email))
	_, err = conn.Exec(ctx, `
		INSERT INTO operators (client_id, email, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE
		SET client_id = EXCLUDED.client_id,
			password_hash = EXCLUDED.password_hash
	`, strings.TrimSpace(*client), loginEmail, string(hash))
	if err != nil {
		fatal(err.Error())
	}

	fmt.Printf("operator %s provisioned for client %s\n", loginEmail, *client)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, "error: "+msg)
	os.Exit(1)
}
