package client

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/tomz197/frogduel/internal/draw"
	"github.com/tomz197/frogduel/internal/loop/config"
	"github.com/tomz197/frogduel/internal/loop/server"
	"github.com/tomz197/frogduel/internal/object"
	"github.com/tomz197/frogduel/internal/session"
)

var titleArt = []string{
	`  ___ ___  ___   ___   ___  _   _ ___ _    `,
	` | __| _ \/ _ \ / __| |   \| | | | __| |   `,
	` | _||   / (_) | (_ | | |) | |_| | _|| |__ `,
	` |_| |_|_\\___/ \___| |___/ \___/|___|____|`,
}

// drawFrame draws the current frame.
func (c *Client) drawFrame() error {
	var snap *server.Snapshot
	if c.handle != nil {
		snap = c.server.GetSnapshot(c.handle.ID)
	}
	phase := session.PhaseWaiting
	if snap != nil && snap.Round != nil {
		phase = snap.Round.Phase
	}

	// Screen, phase or inactivity transitions clear the terminal so text from
	// the previous screen does not persist.
	if c.state.GameState != c.state.prevGameState || phase != c.state.prevPhase ||
		c.state.isInactive != c.state.wasInactive {
		c.chunkWriter.WriteString("\033[H\033[2J")
		c.canvas.ForceRedraw()
		c.state.prevGameState = c.state.GameState
		c.state.prevPhase = phase
		c.state.wasInactive = c.state.isInactive
	}

	c.canvas.Clear()
	if c.state.GameState == GameStateRound && snap != nil && snap.Round != nil {
		c.drawArena(snap.Round)
		c.drawCrosshair()
	}

	c.canvas.Render(c.chunkWriter)
	c.canvas.RenderBorder(c.chunkWriter)
	c.drawUI(snap)

	return c.chunkWriter.Flush()
}

// drawArena draws the zone and the entities. The zone color follows the race.
func (c *Client) drawArena(r *session.Snapshot) {
	vp := c.viewport
	zoneColor := draw.ColorCyan
	switch {
	case r.RaceFired:
		zoneColor = draw.ColorRed
	case r.RaceStarted:
		zoneColor = draw.ColorYellow
	}
	zx, zy := vp.WorldToScreen(r.ZoneX, r.ZoneY)
	c.canvas.DrawCircle(draw.Point{X: zx, Y: zy}, r.ZoneRadius*vp.Scale, zoneColor)

	for _, e := range r.Entities {
		color := draw.ColorGreen
		if e.Kind == object.KindDecoy {
			color = draw.ColorRed
		}
		x0, y0 := vp.WorldToScreen(e.X-e.W/2, e.Y+e.H/2)
		x1, y1 := vp.WorldToScreen(e.X+e.W/2, e.Y-e.H/2)
		c.canvas.FillRect(draw.Point{X: x0, Y: y0}, draw.Point{X: x1, Y: y1}, color)
	}
}

func (c *Client) drawCrosshair() {
	x, y := c.state.CrossX, c.state.CrossY
	const arm = 3.0
	c.canvas.DrawLine(draw.Point{X: x - arm, Y: y}, draw.Point{X: x - 1, Y: y}, draw.ColorWhite)
	c.canvas.DrawLine(draw.Point{X: x + 1, Y: y}, draw.Point{X: x + arm, Y: y}, draw.ColorWhite)
	c.canvas.DrawLine(draw.Point{X: x, Y: y - arm}, draw.Point{X: x, Y: y - 1}, draw.ColorWhite)
	c.canvas.DrawLine(draw.Point{X: x, Y: y + 1}, draw.Point{X: x, Y: y + arm}, draw.ColorWhite)
}

// text writes s over the canvas and marks the cells so the canvas repaints them.
func (c *Client) text(col, row int, s string, color draw.Color) {
	if row < 1 || row > c.canvas.TerminalHeight() {
		return
	}
	col = max(col, 1)
	if color == draw.ColorNone {
		c.chunkWriter.WriteAt(col, row, s)
	} else {
		c.chunkWriter.WriteColorAt(col, row, s, color)
	}
	c.canvas.MarkTextDirty(col, row, utf8.RuneCountInString(s))
}

// centered writes s centered on row.
func (c *Client) centered(row int, s string, color draw.Color) {
	c.text(draw.CenteredCol(c.canvas.TerminalWidth(), s), row, s, color)
}

// drawUI draws the text overlay for the current screen.
func (c *Client) drawUI(snap *server.Snapshot) {
	centerY := c.canvas.TerminalHeight() / 2

	switch {
	case c.state.GameState == GameStateShutdown:
		c.drawShutdownScreen(centerY)
	case c.state.isInactive:
		c.drawInactivityScreen(centerY)
	case c.state.GameState == GameStateStart:
		c.drawStartScreen(centerY)
	case snap != nil && snap.Round != nil:
		c.drawRoundHUD(snap)
	}
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen(centerY int) {
	c.centered(centerY-2, "INACTIVITY WARNING", draw.ColorYellow)
	msg := fmt.Sprintf(
		"You have been inactive for too long. You will be disconnected in %d seconds.",
		int(config.InactivityDisconnectUser-time.Since(c.lastInput).Seconds()),
	)
	c.centered(centerY, msg, draw.ColorNone)
	c.centered(centerY+2, "Press any key to continue", draw.ColorNone)
}

// drawStartScreen draws the title screen.
func (c *Client) drawStartScreen(centerY int) {
	row := centerY - 8
	for i, line := range titleArt {
		c.centered(row+i, line, draw.ColorGreen)
	}
	row += len(titleArt) + 1
	c.centered(row, "~ Out-react the frog over SSH ~", draw.ColorNone)

	rules := []string{
		"Wait for the ring to go live, then catch the green bug inside it",
		"before the frog does. Red bugs are decoys. Too early and you lose.",
	}
	for i, line := range rules {
		c.centered(row+2+i, line, draw.ColorGray)
	}

	row += 5
	c.centered(row, "Controls", draw.ColorNone)
	controls := []string{
		"Mouse click  . . . . Catch",
		"Arrows / HJKL  . . . . Aim",
		"SPACE  . Catch at crosshair",
		"R  . . . . . . . .  Replay",
		"Q  . . . . . . . . .  Quit",
	}
	for i, line := range controls {
		c.centered(row+1+i, line, draw.ColorNone)
	}

	if time.Now().UnixMilli()/600%2 == 0 {
		c.centered(row+len(controls)+2, ">>  Press SPACE to Start  <<", draw.ColorYellow)
	}
}

// drawRoundHUD draws the round status line and the phase message.
// Text fields use fixed-width formatting so shrinking values don't leave
// residual characters on screen.
func (c *Client) drawRoundHUD(snap *server.Snapshot) {
	r := snap.Round
	width := c.canvas.TerminalWidth()
	height := c.canvas.TerminalHeight()
	centerY := height / 2

	c.text(2, 1, fmt.Sprintf("Round %-4d %-8s", snap.Rounds, r.Phase), draw.ColorNone)
	score := fmt.Sprintf("Won %-3d Lost %-3d", c.state.Wins, c.state.Losses)
	c.text(width-len(score)-1, 1, score, draw.ColorNone)

	// The round's statistics are discarded when it ends; the event count is not.
	opp := fmt.Sprintf("Chances %d/%-3d", c.state.Opportunities, r.Opportunities.Required)
	c.text(2, height, opp, draw.ColorGray)
	players := fmt.Sprintf("Players: %-4d", snap.Players)
	c.text(width-len(players)-1, height, players, draw.ColorGray)

	switch r.Phase {
	case session.PhaseWaiting:
		c.centered(centerY-3, fmt.Sprintf("Get ready... %d", max(c.state.Countdown, r.Countdown)), draw.ColorYellow)
	case session.PhaseReady:
		c.centered(2, "Steady... don't move yet", draw.ColorYellow)
	case session.PhasePlaying:
		if r.RaceStarted {
			c.centered(2, "The frog has seen it!", draw.ColorRed)
		}
	default:
		c.drawResult(snap, centerY)
	}
}

// drawResult draws the outcome, the leaderboard and the replay prompt.
func (c *Client) drawResult(snap *server.Snapshot, centerY int) {
	out := snap.Round.Outcome
	if out.Won() {
		c.centered(centerY-6, "YOU WIN", draw.ColorGreen)
	} else {
		c.centered(centerY-6, "YOU LOSE", draw.ColorRed)
	}
	c.centered(centerY-4, out.Reason.String(), draw.ColorNone)
	if out.ReactionTime > 0 {
		c.centered(centerY-3, fmt.Sprintf("Reaction: %d ms", out.ReactionTime.Milliseconds()), draw.ColorNone)
	}
	c.centered(centerY-2, fmt.Sprintf("Clean chances this round: %d", c.state.Opportunities), draw.ColorGray)

	if len(snap.TopScores) > 0 {
		c.centered(centerY-1, "Fastest catches", draw.ColorCyan)
		for i, e := range snap.TopScores {
			line := fmt.Sprintf("%d. %-*s %6d ms", i+1, config.MaxUsernameLength, e.Username, e.Reaction.Milliseconds())
			c.centered(centerY+i, line, draw.ColorNone)
		}
	}

	if snap.CanReplay && time.Now().UnixMilli()/600%2 == 0 {
		c.centered(centerY+len(snap.TopScores)+2, ">>  Press R to play again  <<", draw.ColorYellow)
	}
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen(centerY int) {
	c.centered(centerY-3, "SERVER SHUTTING DOWN", draw.ColorRed)
	c.centered(centerY-1, "The server is restarting for maintenance.", draw.ColorNone)
	c.centered(centerY, "Please reconnect in a moment.", draw.ColorNone)
	remaining := int(c.state.shutdownTimer) + 1
	c.centered(centerY+2, fmt.Sprintf("Disconnecting in %d seconds...", remaining), draw.ColorNone)
	c.centered(centerY+4, "Press Q to disconnect now", draw.ColorGray)
}
