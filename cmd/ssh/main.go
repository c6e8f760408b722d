package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	wishlogging "github.com/charmbracelet/wish/logging"
	wishrecover "github.com/charmbracelet/wish/recover"
	"golang.org/x/sync/errgroup"

	"github.com/tomz197/frogduel/internal/config"
	"github.com/tomz197/frogduel/internal/logging"
	"github.com/tomz197/frogduel/internal/loop/client"
	loopconfig "github.com/tomz197/frogduel/internal/loop/config"
	"github.com/tomz197/frogduel/internal/loop/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	handler := logging.NewHandler(os.Stderr, cfg.LogLevel, "ssh")
	logger := slog.New(handler)
	logger.Info("ssh config", "host", cfg.SSH.Host, "port", cfg.SSH.Port, "host_key", cfg.SSH.HostKeyPath)

	gameServer := server.NewServer(server.Options{
		Round:    cfg.SessionOptions(),
		Viewport: config.Viewport(),
		Seed:     cfg.Seed,
		Logger:   logger,
	})

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(cfg.SSH.Host, cfg.SSH.Port)),
		wish.WithMiddleware(
			wishrecover.MiddlewareWithLogger(handler, gameMiddleware(gameServer, logger)),
			activeterm.Middleware(),
			wishlogging.StructuredMiddlewareWithLogger(handler, log.InfoLevel),
		),
		// Set TCP_NODELAY to reduce latency for clicks
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if cfg.SSH.HostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(cfg.SSH.HostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		return fmt.Errorf("creating ssh server: %w", err)
	}

	serverCtx, stopGame := context.WithCancel(context.Background())
	defer stopGame()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("game server started")
		gameServer.Run(serverCtx)
		return nil
	})
	g.Go(func() error {
		logger.Info("starting ssh server", "addr", s.Addr)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			return fmt.Errorf("ssh server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("notifying connected players about shutdown")
		gameServer.Shutdown(15 * time.Second)
		stopGame()
		logger.Info("game server stopped", "status", gameServer.Status())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// gameMiddleware runs a duel client for every session with a PTY.
func gameMiddleware(gameServer *server.Server, logger *slog.Logger) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			pty, winCh, ok := sess.Pty()
			if !ok {
				fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
				return
			}

			logger.Info("new game session",
				"user", sess.User(), "term", pty.Term,
				"width", pty.Window.Width, "height", pty.Window.Height)

			sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
			go func() {
				for win := range winCh {
					sizeTracker.update(win.Width, win.Height)
				}
			}()

			c := client.NewClient(gameServer, bufio.NewReader(sess), sess, client.ClientOptions{
				TermSizeFunc: sizeTracker.getSize,
				Username:     displayName(sess.User()),
			})
			if err := c.Run(); err != nil {
				logger.Error("game error", "user", sess.User(), "error", err)
			}

			logger.Info("session ended", "user", sess.User())
			next(sess)
		}
	}
}

// displayName trims the SSH user to something that fits the leaderboard.
func displayName(user string) string {
	user = strings.TrimSpace(user)
	if user == "" {
		user = "anonymous"
	}
	if r := []rune(user); len(r) > loopconfig.MaxUsernameLength {
		user = string(r[:loopconfig.MaxUsernameLength])
	}
	return user
}

// sizeTracker follows window-change requests so the client can resize.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}
