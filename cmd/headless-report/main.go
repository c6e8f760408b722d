package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"text/tabwriter"
	"time"

	"github.com/tomz197/frogduel/internal/config"
	"github.com/tomz197/frogduel/internal/logging"
	loopconfig "github.com/tomz197/frogduel/internal/loop/config"
	"github.com/tomz197/frogduel/internal/object"
	"github.com/tomz197/frogduel/internal/session"
)

// Plays seeded rounds with a scripted player and prints how each one ended
// and how many clean opportunities the round offered.
func main() {
	rounds := flag.Int("rounds", 20, "number of rounds to play")
	seed := flag.Int64("seed", 1, "base random seed")
	reaction := flag.Duration("reaction", 400*time.Millisecond, "scripted player reaction time once a target is in the zone")
	maxRound := flag.Duration("max-round", 2*time.Minute, "session time after which a round is abandoned")
	verbose := flag.Bool("v", false, "log round events to stderr")
	flag.Parse()

	if err := run(os.Stdout, *rounds, *seed, *reaction, *maxRound, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type roundResult struct {
	id        string
	outcome   session.Outcome
	finished  bool
	stats     sessionStats
	simulated time.Duration
}

type sessionStats struct {
	recorded, required int
	guaranteed         int // Recorded opportunities from compensation spawns
	spawned            int // Guaranteed entities spawned
}

// tally counts opportunities as the round reports them. The scheduler drops
// its statistics when a round ends early, so they cannot be read afterwards.
type tally struct {
	recorded, guaranteed int
}

func (t *tally) Present(e session.Event) {
	if e.Type != session.EventOpportunity {
		return
	}
	t.recorded++
	if e.Opportunity.Guaranteed {
		t.guaranteed++
	}
}

func run(out io.Writer, rounds int, seed int64, reaction, maxRound time.Duration, verbose bool) error {
	if rounds < 1 {
		return fmt.Errorf("rounds must be positive, got %d", rounds)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := logging.Discard()
	if verbose {
		logger = logging.New(os.Stderr, cfg.LogLevel, "report")
	}

	results := make([]roundResult, 0, rounds)
	for i := range rounds {
		rnd := rand.New(rand.NewSource(seed + int64(i)))
		res, err := playRound(cfg.SessionOptions(), rnd, logger.With("round", i), reaction, maxRound)
		if err != nil {
			return fmt.Errorf("round %d: %w", i, err)
		}
		results = append(results, res)
	}
	return report(out, results)
}

// playRound plays one round at the server tick rate. The scripted player
// clicks a target once it has sat in the zone for the reaction time.
func playRound(opts session.Options, rnd *rand.Rand, logger *slog.Logger, reaction, maxRound time.Duration) (roundResult, error) {
	counts := &tally{}
	s, err := session.New(opts, config.Viewport(), counts, rnd, logger)
	if err != nil {
		return roundResult{}, fmt.Errorf("creating round: %w", err)
	}

	dt := loopconfig.ServerTickTime
	seen := make(map[uint64]time.Duration)
	start := time.Now()
	spawned := 0

	for s.Clock() < maxRound && !s.Phase().Terminal() {
		s.Update(dt)
		snap := s.Snapshot()
		if !snap.Phase.Terminal() {
			spawned = snap.Opportunities.GuaranteedSpawned
		}
		if snap.Phase != session.PhasePlaying {
			continue
		}
		for _, e := range snap.Entities {
			if e.Kind != object.KindTarget || !e.InZone {
				delete(seen, e.ID)
				continue
			}
			first, ok := seen[e.ID]
			if !ok {
				seen[e.ID] = snap.Clock
				continue
			}
			if snap.Clock-first >= reaction {
				sx, sy := s.Viewport().WorldToScreen(e.X, e.Y)
				s.SubmitAction(sx, sy, start.Add(snap.Clock))
				break
			}
		}
	}

	res := roundResult{id: s.ID(), simulated: s.Clock()}
	res.outcome, res.finished = s.Outcome()
	res.stats = sessionStats{
		recorded:   counts.recorded,
		required:   opts.Opportunity.Required,
		guaranteed: counts.guaranteed,
		spawned:    spawned,
	}
	return res, nil
}

func report(out io.Writer, results []roundResult) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROUND\tRESULT\tREASON\tREACTION\tOPPORTUNITIES\tGUARANTEED\tCLOCK")

	var wins, losses, unfinished, metGuarantee int
	var totalReaction time.Duration
	for _, r := range results {
		result := "unfinished"
		switch {
		case !r.finished:
			unfinished++
		case r.outcome.Won():
			wins++
			totalReaction += r.outcome.ReactionTime
			result = "won"
		default:
			losses++
			result = "lost"
		}
		if r.stats.recorded >= r.stats.required {
			metGuarantee++
		}
		reaction := "-"
		if r.outcome.ReactionTime > 0 {
			reaction = r.outcome.ReactionTime.Round(time.Millisecond).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d/%d\t%d/%d\t%s\n",
			r.id, result, r.outcome.Reason, reaction,
			r.stats.recorded, r.stats.required, r.stats.guaranteed, r.stats.spawned,
			r.simulated.Round(time.Millisecond))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nrounds %d  won %d  lost %d  unfinished %d\n", len(results), wins, losses, unfinished)
	fmt.Fprintf(out, "opportunity guarantee met in %d of %d rounds\n", metGuarantee, len(results))
	if wins > 0 {
		fmt.Fprintf(out, "mean winning reaction %s\n", (totalReaction / time.Duration(wins)).Round(time.Millisecond))
	}
	return nil
}
