package main

import (
	"github.com/joho/godotenv"

	"github.com/millianlmx/rag/internal/cli"
)

func main() {
	// Optional .env for API keys; missing file is fine.
	_ = godotenv.Load()

	cli.Execute()
}
