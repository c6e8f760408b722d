package server

import (
	"cmp"
	"slices"
	"time"

	"github.com/tomz197/frogduel/internal/session"
)

// topScoreCount is the number of leaderboard entries published to clients.
const topScoreCount = 5

// TopScoreEntry represents a single entry on the leaderboard.
type TopScoreEntry struct {
	Username string
	Reaction time.Duration
	clientID int // Used for deterministic tie-break when reactions are equal
}

// Snapshot is an immutable view of one client's state for rendering.
type Snapshot struct {
	Round     *session.Snapshot // Nil if the round could not be created
	Players   int
	Rounds    int // Rounds played by this client, including the current one
	CanReplay bool
	TopScores []TopScoreEntry
}

// Leaderboard keeps the fastest catch per username.
type Leaderboard struct {
	size int
	best map[string]TopScoreEntry
	top  []TopScoreEntry
}

// NewLeaderboard creates a leaderboard publishing up to size entries.
func NewLeaderboard(size int) *Leaderboard {
	return &Leaderboard{
		size: size,
		best: make(map[string]TopScoreEntry),
	}
}

// Submit records a catch. Only the fastest catch per username is kept.
func (l *Leaderboard) Submit(username string, clientID int, reaction time.Duration) {
	if reaction <= 0 {
		return
	}
	if prev, ok := l.best[username]; ok && prev.Reaction <= reaction {
		return
	}
	l.best[username] = TopScoreEntry{Username: username, Reaction: reaction, clientID: clientID}
	l.rebuild()
}

// Top returns the ranked entries. The slice is shared and must not be modified.
func (l *Leaderboard) Top() []TopScoreEntry {
	return l.top
}

func (l *Leaderboard) rebuild() {
	all := make([]TopScoreEntry, 0, len(l.best))
	for _, e := range l.best {
		all = append(all, e)
	}
	slices.SortFunc(all, func(a, b TopScoreEntry) int {
		if c := cmp.Compare(a.Reaction, b.Reaction); c != 0 {
			return c
		}
		return cmp.Compare(a.clientID, b.clientID)
	})
	if len(all) > l.size {
		all = all[:l.size]
	}
	l.top = all
}
