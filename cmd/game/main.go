package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/user"

	"golang.org/x/term"

	"github.com/tomz197/frogduel/internal/config"
	"github.com/tomz197/frogduel/internal/logging"
	"github.com/tomz197/frogduel/internal/loop/client"
	"github.com/tomz197/frogduel/internal/loop/server"
)

// Plays a duel in the local terminal with an in-process server. Logs go to
// the file named by FROGDUEL_LOG, if set, since the terminal is in use.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.Discard()
	if path := os.Getenv("FROGDUEL_LOG"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logger = logging.New(f, cfg.LogLevel, "game")
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enabling raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	gs := server.NewServer(server.Options{
		Round:    cfg.SessionOptions(),
		Viewport: config.Viewport(),
		Seed:     cfg.Seed,
		Logger:   logger,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go gs.Run(ctx)

	name := "player"
	if u, err := user.Current(); err == nil && u.Username != "" {
		name = u.Username
	}

	c := client.NewClient(gs, bufio.NewReader(os.Stdin), os.Stdout, client.ClientOptions{Username: name})
	return c.Run()
}
