package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/SnideAnteater/openapi-to-axum/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, cli.ErrUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
