package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"tonbridge/cmd"
)

func main() {
	// .env is optional; configuration can come entirely from the environment
	// or a .tonbridge.yaml file.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
