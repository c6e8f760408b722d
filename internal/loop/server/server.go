// Package server hosts duels for connected clients. Every client plays its
// own round; the server owns the tick loop and publishes snapshots and events.
package server

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomz197/frogduel/internal/loop/config"
	"github.com/tomz197/frogduel/internal/opportunity"
	"github.com/tomz197/frogduel/internal/session"
	"github.com/tomz197/frogduel/internal/view"
)

// GameServer is what a terminal client needs from the host.
type GameServer interface {
	RegisterClient(username string) *ClientHandle
	UnregisterClient(clientID int)
	SendInput(clientID int, input Input)
	GetSnapshot(clientID int) *Snapshot
}

var _ GameServer = (*Server)(nil)

// InputType identifies a client input.
type InputType int

const (
	InputClick  InputType = iota // Catch attempt at a screen position
	InputReplay                  // Start another round after a result
)

// Input is a single client input. Screen coordinates are logical view units.
type Input struct {
	Type             InputType
	ScreenX, ScreenY float64
	At               time.Time // Device time of the action
}

// ClientInput tags an input with the client that sent it.
type ClientInput struct {
	ClientID int
	Input    Input
}

// ClientEventType identifies a ClientEvent.
type ClientEventType int

const (
	EventPhaseChanged ClientEventType = iota
	EventCountdown
	EventOpportunity
	EventOutcome
	EventServerShutdown
)

// ClientEvent is pushed to a client when its round changes.
type ClientEvent struct {
	Type        ClientEventType
	Phase       session.Phase
	Countdown   int
	Opportunity opportunity.Record
	Outcome     session.Outcome
}

// ClientHandle is a joined player and the round they are playing.
type ClientHandle struct {
	ID       int
	Username string
	EventsCh chan ClientEvent

	round     *session.Session
	rounds    int
	resultAge time.Duration // Time since the current round ended
	snapshot  atomic.Pointer[Snapshot]
}

// Options configures the server.
type Options struct {
	Round    session.Options
	Viewport *view.Viewport
	Seed     int64 // Zero seeds each round from the clock
	Logger   *slog.Logger
}

// Status summarizes server activity.
type Status struct {
	Players int
	Rounds  int
	Wins    int
	Losses  int
}

// Server manages the rounds of all clients and processes their inputs.
type Server struct {
	opts   Options
	logger *slog.Logger

	clients      map[int]*ClientHandle
	nextClientID int
	inputChan    chan ClientInput
	registerCh   chan *ClientHandle
	unregisterCh chan int
	mu           sync.RWMutex

	scores *Leaderboard

	players atomic.Int64
	rounds  atomic.Int64
	wins    atomic.Int64
	losses  atomic.Int64
}

// NewServer returns a host with no players.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		opts:         opts,
		logger:       logger,
		clients:      make(map[int]*ClientHandle),
		nextClientID: 1,
		inputChan:    make(chan ClientInput, 256),
		registerCh:   make(chan *ClientHandle, 16),
		unregisterCh: make(chan int, 16),
		scores:       NewLeaderboard(topScoreCount),
	}
}

// Run ticks every round at the server tick rate until ctx is done.
func (s *Server) Run(ctx context.Context) {
	lastTime := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		frameStart := time.Now()
		dt := frameStart.Sub(lastTime)
		lastTime = frameStart

		s.Step(dt)

		elapsed := time.Since(frameStart)
		if elapsed < config.ServerTickTime {
			time.Sleep(config.ServerTickTime - elapsed)
		}
	}
}

// Step runs one server tick: registrations, inputs, then every round.
func (s *Server) Step(dt time.Duration) {
	s.processRegistrations()
	s.collectInputs()

	s.mu.Lock()
	defer s.mu.Unlock()
	top := s.scores.Top()
	for _, handle := range s.clients {
		s.updateClient(handle, dt)
		s.publish(handle, top)
	}
}

// Shutdown tells every player the host is going away and waits up to timeout
// for them to leave. Cancel the Run context afterwards.
func (s *Server) Shutdown(timeout time.Duration) {
	s.mu.RLock()
	for _, handle := range s.clients {
		select {
		case handle.EventsCh <- ClientEvent{Type: EventServerShutdown}:
		default:
		}
	}
	s.mu.RUnlock()

	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			s.logger.Warn("shutdown timed out", "clients", s.players.Load())
			return
		case <-ticker.C:
			if s.players.Load() == 0 {
				return
			}
		}
	}
}

// RegisterClient adds a player. Their first round starts on the next tick.
func (s *Server) RegisterClient(username string) *ClientHandle {
	s.mu.Lock()
	id := s.nextClientID
	s.nextClientID++
	s.mu.Unlock()

	handle := &ClientHandle{
		ID:       id,
		Username: username,
		EventsCh: make(chan ClientEvent, 32),
	}

	s.registerCh <- handle
	return handle
}

// UnregisterClient removes a client from the server and aborts its round.
func (s *Server) UnregisterClient(clientID int) {
	s.unregisterCh <- clientID
}

// SendInput queues a player's input for the next tick. Inputs are dropped when
// the queue is full.
func (s *Server) SendInput(clientID int, input Input) {
	select {
	case s.inputChan <- ClientInput{ClientID: clientID, Input: input}:
	default:
	}
}

// GetSnapshot returns the latest snapshot for a client, or nil before its
// first tick.
func (s *Server) GetSnapshot(clientID int) *Snapshot {
	s.mu.RLock()
	handle, ok := s.clients[clientID]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	return handle.snapshot.Load()
}

// Status returns activity counters. Safe for concurrent use.
func (s *Server) Status() Status {
	return Status{
		Players: int(s.players.Load()),
		Rounds:  int(s.rounds.Load()),
		Wins:    int(s.wins.Load()),
		Losses:  int(s.losses.Load()),
	}
}

// TopScores returns the fastest catches.
func (s *Server) TopScores() []TopScoreEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scores.Top()
}

// processRegistrations applies queued joins and leaves.
func (s *Server) processRegistrations() {
	for {
		select {
		case handle := <-s.registerCh:
			s.mu.Lock()
			s.clients[handle.ID] = handle
			s.startRound(handle)
			s.mu.Unlock()
			s.players.Add(1)
			s.logger.Info("client joined", "client", handle.ID, "username", handle.Username)
		case clientID := <-s.unregisterCh:
			s.mu.Lock()
			if handle, ok := s.clients[clientID]; ok {
				if handle.round != nil {
					handle.round.Abort()
				}
				close(handle.EventsCh)
				delete(s.clients, clientID)
				s.players.Add(-1)
				s.logger.Info("client left", "client", clientID, "rounds", handle.rounds)
			}
			s.mu.Unlock()
		default:
			return
		}
	}
}

// collectInputs forwards pending inputs to the clients' rounds.
func (s *Server) collectInputs() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		select {
		case ci := <-s.inputChan:
			handle, ok := s.clients[ci.ClientID]
			if !ok {
				continue
			}
			s.applyInput(handle, ci.Input)
		default:
			return
		}
	}
}

func (s *Server) applyInput(handle *ClientHandle, in Input) {
	switch in.Type {
	case InputClick:
		if handle.round != nil {
			handle.round.SubmitAction(in.ScreenX, in.ScreenY, in.At)
		}
	case InputReplay:
		if !canReplay(handle) {
			return
		}
		s.startRound(handle)
	}
}

func canReplay(handle *ClientHandle) bool {
	if handle.round == nil {
		return true
	}
	return handle.round.Phase().Terminal() &&
		handle.resultAge.Seconds() >= config.ResultDisplaySeconds
}

// startRound replaces the client's round with a fresh one.
// Must be called with lock held.
func (s *Server) startRound(handle *ClientHandle) {
	if handle.round != nil {
		handle.round.Abort()
	}
	seed := time.Now().UnixNano()
	if s.opts.Seed != 0 {
		seed = s.opts.Seed + int64(handle.ID)*7919 + int64(handle.rounds)
	}
	presenter := session.PresenterFunc(func(e session.Event) {
		s.forward(handle, e)
	})
	logger := s.logger.With("client", handle.ID)
	round, err := session.New(s.opts.Round, s.opts.Viewport, presenter, rand.New(rand.NewSource(seed)), logger)
	if err != nil {
		s.logger.Error("could not start round", "client", handle.ID, "error", err)
		handle.round = nil
		return
	}
	handle.round = round
	handle.rounds++
	handle.resultAge = 0
	s.rounds.Add(1)
}

// forward converts a round event into a client event. Events are dropped when
// the client is not keeping up.
func (s *Server) forward(handle *ClientHandle, e session.Event) {
	ev := ClientEvent{Phase: e.Phase}
	switch e.Type {
	case session.EventPhaseChanged:
		ev.Type = EventPhaseChanged
	case session.EventCountdown:
		ev.Type = EventCountdown
		ev.Countdown = e.Countdown
	case session.EventOpportunity:
		ev.Type = EventOpportunity
		ev.Opportunity = e.Opportunity
	case session.EventOutcome:
		ev.Type = EventOutcome
		ev.Outcome = e.Outcome
		s.record(handle, e.Outcome)
	default:
		return
	}
	select {
	case handle.EventsCh <- ev:
	default:
		s.logger.Debug("client event dropped", "client", handle.ID, "type", ev.Type)
	}
}

// record tallies a finished round. Must be called with lock held.
func (s *Server) record(handle *ClientHandle, out session.Outcome) {
	if out.Won() {
		s.wins.Add(1)
		s.scores.Submit(handle.Username, handle.ID, out.ReactionTime)
		return
	}
	s.losses.Add(1)
}

// updateClient advances one client's round. Must be called with lock held.
func (s *Server) updateClient(handle *ClientHandle, dt time.Duration) {
	if handle.round == nil {
		return
	}
	if handle.round.Phase().Terminal() {
		handle.resultAge += dt
		return
	}
	handle.round.Update(dt)
}

// publish stores an immutable snapshot for the client. Must be called with lock held.
func (s *Server) publish(handle *ClientHandle, top []TopScoreEntry) {
	snap := &Snapshot{
		Players:   len(s.clients),
		Rounds:    handle.rounds,
		TopScores: top,
		CanReplay: canReplay(handle),
	}
	if handle.round != nil {
		snap.Round = handle.round.Snapshot()
	}
	handle.snapshot.Store(snap)
}
