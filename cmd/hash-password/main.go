package main

import (
	"fmt"
	"log"
	"os"

	"github.com/baseplate/persons/internal/core/auth"
)

// Prints the bcrypt hash to use as OPERATOR_PASSWORD_HASH.
func main() {
	password := os.Getenv("OPERATOR_PASSWORD")
	if password == "" {
		log.Fatal("OPERATOR_PASSWORD environment variable is required")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	fmt.Println(hash)
}
