package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"cvtailor/internal/cli"
)

func main() {
	// Local development keys live in .env; absence is fine.
	_ = godotenv.Load()

	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
