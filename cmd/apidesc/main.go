// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

// Package main is the entry point for the apidesc CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/api2spec/apidesc/internal/cli"
)

func main() {
	if err := cli.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
