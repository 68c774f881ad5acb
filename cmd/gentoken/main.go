// Test program to generate JWT tokens for local API testing.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gatherhall/server/internal/auth"
)

func main() {
	subject := flag.String("subject", "01ARZ3NDEKTSV4RRFFQ69G5FAV", "user id for the token subject")
	role := flag.String("role", "admin", "role claim (admin, event_creator, regular_user)")
	email := flag.String("email", "dev@example.com", "email claim")
	expiry := flag.Duration("expiry", 24*time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is required")
		os.Exit(1)
	}

	manager := auth.NewJWTManager(secret, *expiry, "gatherhall")
	token, err := manager.Generate(*subject, *role, *email)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("JWT Token:")
	fmt.Println(token)
	fmt.Println("\nTest with:")
	fmt.Printf("curl -H 'Authorization: Bearer %s' http://localhost:8080/api/v1/events\n", token)
}
