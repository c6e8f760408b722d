// Package client renders a player's duel into a terminal and forwards the
// player's clicks to the game server.
package client

import (
	"bufio"
	"io"
	"time"

	"github.com/tomz197/frogduel/internal/draw"
	"github.com/tomz197/frogduel/internal/input"
	"github.com/tomz197/frogduel/internal/loop/config"
	"github.com/tomz197/frogduel/internal/loop/server"
	"github.com/tomz197/frogduel/internal/session"
	"github.com/tomz197/frogduel/internal/view"
)

// Client is one player's terminal: it reads their keys and mouse, draws their
// round and talks to the host.
type Client struct {
	server       server.GameServer
	handle       *server.ClientHandle // Nil until the player starts
	state        *ClientState
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter
	viewport     *view.Viewport
	writer       io.Writer
	inputStream  *input.Stream
	lastInput    time.Time
	username     string
	termSizeFunc draw.TermSizeFunc
}

// ClientOptions configures a Client. Zero values pick defaults.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string
	Viewport     *view.Viewport // Defaults to the full play area
}

// NewClient creates a client for the given server. The client joins the
// server when the player leaves the title screen.
func NewClient(gs server.GameServer, r *bufio.Reader, w io.Writer, opts ClientOptions) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	viewport := opts.Viewport
	if viewport == nil {
		viewport = view.NewViewport(config.ViewWidth, config.ViewHeight, config.ViewScale)
	}

	state := NewClientState(viewport.Width, viewport.Height)
	state.termSizeFunc = termSizeFunc

	termWidth, termHeight, _ := termSizeFunc()
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	canvas := draw.NewCanvas(renderWidth, renderHeight, viewport.Width, viewport.Height)
	canvas.SetOffset(offsetCol, offsetRow)

	return &Client{
		server:       gs,
		state:        state,
		canvas:       canvas,
		chunkWriter:  draw.NewChunkWriter(w, offsetCol, offsetRow),
		viewport:     viewport,
		writer:       w,
		lastInput:    time.Now(),
		inputStream:  input.StartStream(r),
		username:     opts.Username,
		termSizeFunc: termSizeFunc,
	}
}

// Run draws frames until the player quits, idles out or the host shuts down.
func (c *Client) Run() error {
	draw.HideCursor(c.writer)
	defer draw.ShowCursor(c.writer)
	if err := input.WriteMouseMode(c.writer, true); err != nil {
		return err
	}
	defer input.WriteMouseMode(c.writer, false)
	draw.ClearScreen(c.writer)

	lastTime := time.Now()
	for c.state.Running {
		frameStart := time.Now()
		c.state.delta = frameStart.Sub(lastTime)
		lastTime = frameStart

		c.handleInput(input.ReadInput(c.inputStream))
		c.processServerEvents()
		c.updateScreen()
		if c.state.GameState == GameStateShutdown {
			c.updateShutdownState()
		}

		if err := c.drawFrame(); err != nil {
			return err
		}

		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}

	if c.handle != nil {
		c.server.UnregisterClient(c.handle.ID)
	}
	draw.ClearScreen(c.writer)
	return nil
}

// handleInput applies one frame of input.
func (c *Client) handleInput(in input.Input) {
	c.state.Input = in

	if len(in.Pressed) > 0 {
		c.lastInput = time.Now()
		c.state.isInactive = false
	} else if time.Since(c.lastInput).Seconds() > config.InactivityDisconnectUser {
		c.state.Running = false
	} else if time.Since(c.lastInput).Seconds() > config.InactivityWarnUser {
		c.state.isInactive = true
	}

	if in.Quit {
		c.state.Running = false
		return
	}

	switch c.state.GameState {
	case GameStateStart:
		if in.Tapped(' ', '\r', '\n') || len(in.Clicks) > 0 {
			c.startGame()
		}
	case GameStateRound:
		c.updateRoundState(in)
	}
}

// updateRoundState moves the crosshair and forwards actions.
func (c *Client) updateRoundState(in input.Input) {
	step := config.CrosshairSpeed * c.state.delta.Seconds()
	switch {
	case in.Left:
		c.state.CrossX -= step
	case in.Right:
		c.state.CrossX += step
	}
	switch {
	case in.Up:
		c.state.CrossY -= step
	case in.Down:
		c.state.CrossY += step
	}
	c.state.CrossX = min(max(c.state.CrossX, 0), c.viewport.Width)
	c.state.CrossY = min(max(c.state.CrossY, 0), c.viewport.Height)

	for _, click := range in.Clicks {
		p, ok := c.canvas.TerminalToLogical(click.Col, click.Row)
		if !ok {
			continue
		}
		c.state.CrossX, c.state.CrossY = p.X, p.Y
		c.sendClick(p.X, p.Y, click.At)
	}
	if in.Tapped(' ') {
		c.sendClick(c.state.CrossX, c.state.CrossY, time.Now())
	}
	if in.Tapped('r', 'R', '\r', '\n') && c.state.Outcome != nil {
		c.server.SendInput(c.handle.ID, server.Input{Type: server.InputReplay, At: time.Now()})
	}
}

func (c *Client) sendClick(x, y float64, at time.Time) {
	c.server.SendInput(c.handle.ID, server.Input{
		Type:    server.InputClick,
		ScreenX: x,
		ScreenY: y,
		At:      at,
	})
}

// processServerEvents drains the round events pushed by the host.
func (c *Client) processServerEvents() {
	if c.handle == nil {
		return
	}
	for {
		select {
		case event, ok := <-c.handle.EventsCh:
			if !ok {
				c.state.Running = false
				return
			}
			c.applyEvent(event)
		default:
			return
		}
	}
}

func (c *Client) applyEvent(event server.ClientEvent) {
	switch event.Type {
	case server.EventPhaseChanged:
		if event.Phase == session.PhaseWaiting {
			// A new round started.
			c.state.Outcome = nil
			c.state.Opportunities = 0
			c.state.Countdown = 0
		}
	case server.EventCountdown:
		c.state.Countdown = event.Countdown
	case server.EventOpportunity:
		c.state.Opportunities++
	case server.EventOutcome:
		out := event.Outcome
		c.state.Outcome = &out
		if out.Won() {
			c.state.Wins++
		} else {
			c.state.Losses++
		}
	case server.EventServerShutdown:
		c.state.GameState = GameStateShutdown
		c.state.shutdownTimer = config.ShutdownDisplaySeconds
	}
}

// updateScreen follows terminal resizes. The frame is capped at the view size
// and centred; a size change wipes the screen.
func (c *Client) updateScreen() {
	termWidth, termHeight, err := c.termSizeFunc()
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	if renderWidth != c.canvas.TerminalWidth() || renderHeight != c.canvas.TerminalHeight() ||
		offsetCol != c.canvas.OffsetCol() || offsetRow != c.canvas.OffsetRow() {
		draw.ClearScreen(c.writer)
		c.canvas.Resize(renderWidth, renderHeight)
		c.canvas.SetOffset(offsetCol, offsetRow)
		c.chunkWriter.SetOffset(offsetCol, offsetRow)
	}
}

// clampTermSize returns the render size and the offset that centres it.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = min(termWidth, config.MaxTermWidth)
	renderHeight = min(termHeight, config.MaxTermHeight)
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - renderHeight) / 2
	return
}

// startGame joins the server, which starts the first round.
func (c *Client) startGame() {
	if c.handle == nil {
		c.handle = c.server.RegisterClient(c.username)
	}
	c.state.GameState = GameStateRound
}

// updateShutdownState disconnects once the shutdown notice has been shown.
func (c *Client) updateShutdownState() {
	c.state.shutdownTimer -= c.state.delta.Seconds()
	if c.state.shutdownTimer <= 0 {
		c.state.Running = false
	}
}
