// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command contactsctl is the operator CLI for Contactbook: schema migrations
// and account administration against the configured database.
package main

import (
	"log/slog"
	"os"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := newRootCommand(newEnvironment(logger)).Execute(); err != nil {
		os.Exit(1)
	}
}
