// Prints a bcrypt hash for seeding an admin row by hand:
//
//	go run scripts/hash-password.go <password>
package main

import (
	"fmt"
	"os"

	"github.com/techplan/admin-server-go/internal/config"
	"github.com/techplan/admin-server-go/internal/util"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: go run scripts/hash-password.go <password>\n")
		os.Exit(1)
	}

	hash, err := util.HashPassword(os.Args[1], config.BcryptCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
