package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/danielpatrickdp/deliberate/internal/cli"
)

// #region main
func main() {
	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// #endregion
