// sheetnest packs rectangular parts onto stock sheets.
//
// Build:
//
//	go build -o sheetnest ./cmd/sheetnest
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/piwi3910/sheetnest/internal/cli"
)

var Version = "dev"

func main() {
	// .env is optional
	_ = godotenv.Load()

	err := cli.NewRootCmd(Version).ExecuteContext(context.Background())
	switch {
	case err == nil:
	case errors.Is(err, cli.ErrIncomplete):
		fmt.Fprintln(os.Stderr, "sheetnest:", err)
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, "sheetnest:", err)
		os.Exit(1)
	}
}
