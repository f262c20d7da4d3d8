package game

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/backgammon/internal/dependencies/clock"
	"github.com/mcoot/backgammon/internal/dependencies/random"
	"github.com/mcoot/backgammon/internal/model"
	"github.com/mcoot/backgammon/internal/services/movegen"
	"github.com/mcoot/backgammon/internal/services/rules"
)

// StatsRecorder receives the outcome of every finished game
type StatsRecorder interface {
	RecordWin(ctx context.Context, playerID model.PlayerID) error
	RecordLoss(ctx context.Context, playerID model.PlayerID) error
}

// ResultRecorder is optionally implemented by a StatsRecorder that also
// keeps game history
type ResultRecorder interface {
	RecordResult(ctx context.Context, result model.GameResult) error
}

// GameOverListener is notified after a game has been finalized
type GameOverListener func(result model.GameResult)

// Config holds configuration for the registry
type Config struct {
	// TurnClock is the thinking time each player starts with
	TurnClock time.Duration
	// StatsTimeout bounds a single win/loss report
	StatsTimeout time.Duration
}

// DefaultConfig returns default registry configuration
func DefaultConfig() Config {
	return Config{
		TurnClock:    model.DefaultTurnClock,
		StatsTimeout: 5 * time.Second,
	}
}

// session owns one live game. Every read or write of state happens under mu.
type session struct {
	mu    sync.RWMutex
	state *model.GameState
	done  bool
}

// MoveResult describes an applied move
type MoveResult struct {
	State  *model.GameState
	Play   rules.Play
	Hits   int
	Result *model.GameResult // set when the move won the game
}

// Registry holds every live game and the player to game index.
//
// Lock order is session before registry. The registry lock only guards
// the two maps and is never held while acquiring a session lock.
type Registry struct {
	mu       sync.RWMutex
	games    map[model.GameID]*session
	byPlayer map[model.PlayerID]model.GameID

	listenersMu sync.RWMutex
	listeners   []GameOverListener

	stats  StatsRecorder
	clock  clock.Clock
	random random.Random
	logger *slog.Logger
	cfg    Config

	pending sync.WaitGroup
}

// NewRegistry creates an empty Registry
func NewRegistry(stats StatsRecorder, clk clock.Clock, rnd random.Random, logger *slog.Logger, cfg Config) *Registry {
	if cfg.TurnClock <= 0 {
		cfg.TurnClock = DefaultConfig().TurnClock
	}
	if cfg.StatsTimeout <= 0 {
		cfg.StatsTimeout = DefaultConfig().StatsTimeout
	}
	return &Registry{
		games:    make(map[model.GameID]*session),
		byPlayer: make(map[model.PlayerID]model.GameID),
		stats:    stats,
		clock:    clk,
		random:   rnd,
		logger:   logger.With(slog.String("component", "game-registry")),
		cfg:      cfg,
	}
}

// OnGameOver registers a listener called after every finalization
func (r *Registry) OnGameOver(fn GameOverListener) {
	r.listenersMu.Lock()
	defer r.listenersMu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Close waits for outstanding statistics reports to finish
func (r *Registry) Close() {
	r.pending.Wait()
}

// CreateGame registers a new game waiting for its second player. Only
// the creator is bound to it; the opponent is bound when they join, and
// is merely required to be free now. An empty gameID is replaced with a
// generated one.
func (r *Registry) CreateGame(ctx context.Context, creator, opponent model.PlayerID, gameID model.GameID) (*model.GameState, error) {
	if creator == "" || opponent == "" {
		return nil, model.ErrPlayerNotFound
	}
	if creator == opponent {
		return nil, model.ErrSamePlayer
	}
	if gameID == "" {
		gameID = model.GameID(uuid.NewString())
	}

	state := model.NewGameState(gameID, creator, opponent, r.cfg.TurnClock, r.clock.Now())

	r.mu.Lock()
	if _, exists := r.games[gameID]; exists {
		r.mu.Unlock()
		return nil, model.ErrGameExists
	}
	if _, busy := r.byPlayer[creator]; busy {
		r.mu.Unlock()
		return nil, model.ErrPlayerInGame
	}
	if _, busy := r.byPlayer[opponent]; busy {
		r.mu.Unlock()
		return nil, model.ErrPlayerInGame
	}
	r.games[gameID] = &session{state: state}
	r.byPlayer[creator] = gameID
	r.mu.Unlock()

	r.logger.Info("game created",
		slog.String("game_id", string(gameID)),
		slog.String("creator", string(creator)),
		slog.String("opponent", string(opponent)),
	)

	return state.Clone(), nil
}

// JoinGame seats a designated player and binds them to the game. Once
// both players are bound, a waiting game assigns colors by coin flip and
// starts with White to move; started reports whether this call did so.
// Joining a game that is still waiting for the other player, or one
// already in progress, returns its current state.
func (r *Registry) JoinGame(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (state *model.GameState, started bool, err error) {
	sess := r.lookup(gameID)
	if sess == nil {
		return nil, false, model.ErrGameNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.done {
		return nil, false, model.ErrGameNotFound
	}
	g := sess.state
	if g.Status == model.GameStatusFinished {
		return nil, false, model.ErrGameFinished
	}
	if !g.HasPlayer(playerID) {
		return nil, false, model.ErrNotParticipant
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if bound, ok := r.byPlayer[playerID]; ok && bound != gameID {
		return nil, false, model.ErrPlayerInGame
	}
	r.byPlayer[playerID] = gameID

	if g.Status == model.GameStatusWaiting && r.byPlayer[g.Opponent(playerID)] == gameID {
		if r.random.Intn(2) == 0 {
			g.Player1Color, g.Player2Color = model.White, model.Black
		} else {
			g.Player1Color, g.Player2Color = model.Black, model.White
		}
		now := r.clock.Now()
		g.CurrentTurn = model.White
		g.Status = model.GameStatusInProgress
		g.StartedAt = now
		g.UpdatedAt = now
		started = true

		r.logger.Info("game started",
			slog.String("game_id", string(gameID)),
			slog.String("white", string(g.PlayerOf(model.White))),
			slog.String("black", string(g.PlayerOf(model.Black))),
		)
	}

	return g.Clone(), started, nil
}

// RollDice rolls for the player on turn and starts their clock.
// A turn may only roll once.
func (r *Registry) RollDice(ctx context.Context, gameID model.GameID) (model.Dice, error) {
	return r.rollDice(ctx, gameID, "")
}

// RollDiceAs is RollDice for a specific player, who must be on turn
func (r *Registry) RollDiceAs(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (model.Dice, error) {
	if playerID == "" {
		return model.Dice{}, model.ErrNotParticipant
	}
	return r.rollDice(ctx, gameID, playerID)
}

func (r *Registry) rollDice(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (model.Dice, error) {
	sess := r.lookup(gameID)
	if sess == nil {
		return model.Dice{}, model.ErrGameNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.done {
		return model.Dice{}, model.ErrGameNotFound
	}
	g := sess.state
	if g.Status != model.GameStatusInProgress {
		return model.Dice{}, model.ErrGameNotInProgress
	}
	if err := checkTurn(g, playerID); err != nil {
		return model.Dice{}, err
	}
	if g.Rolled {
		return model.Dice{}, model.ErrAlreadyRolled
	}

	now := r.clock.Now()
	g.Dice = model.NewDice(random.RollDie(r.random), random.RollDie(r.random))
	g.Rolled = true
	g.Timer(g.CurrentTurn.Opponent()).Stop(now)
	g.Timer(g.CurrentTurn).Start(now)
	g.UpdatedAt = now

	r.logger.Debug("dice rolled",
		slog.String("game_id", string(gameID)),
		slog.String("turn", g.CurrentTurn.String()),
		slog.Any("dice", g.Dice.Rolls),
	)

	return g.Dice.Clone(), nil
}

// MakeMove applies a move for the player on turn. It reports false, with
// no side effects, when the move is illegal.
func (r *Registry) MakeMove(ctx context.Context, gameID model.GameID, from, to int) (bool, error) {
	_, err := r.Move(ctx, gameID, model.Move{From: from, To: to})
	if errors.Is(err, model.ErrInvalidMove) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Move validates and applies move for the player on turn. Rejections
// wrap model.ErrInvalidMove and leave the game untouched. A winning move
// finalizes the game before the session lock is released.
func (r *Registry) Move(ctx context.Context, gameID model.GameID, move model.Move) (*MoveResult, error) {
	return r.move(ctx, gameID, "", move)
}

// MoveAs is Move for a specific player, who must be on turn
func (r *Registry) MoveAs(ctx context.Context, gameID model.GameID, playerID model.PlayerID, move model.Move) (*MoveResult, error) {
	if playerID == "" {
		return nil, model.ErrNotParticipant
	}
	return r.move(ctx, gameID, playerID, move)
}

func (r *Registry) move(ctx context.Context, gameID model.GameID, playerID model.PlayerID, move model.Move) (*MoveResult, error) {
	sess := r.lookup(gameID)
	if sess == nil {
		return nil, model.ErrGameNotFound
	}

	sess.mu.Lock()
	if sess.done {
		sess.mu.Unlock()
		return nil, model.ErrGameNotFound
	}
	g := sess.state
	if g.Status != model.GameStatusInProgress {
		sess.mu.Unlock()
		return nil, model.ErrGameNotInProgress
	}
	if err := checkTurn(g, playerID); err != nil {
		sess.mu.Unlock()
		return nil, err
	}

	play, err := rules.Resolve(&g.Board, g.CurrentTurn, g.Dice, move)
	if err != nil {
		sess.mu.Unlock()
		return nil, err
	}

	hits := rules.Execute(&g.Board, g.CurrentTurn, play)
	for _, d := range play.Dice() {
		g.Dice.Consume(d)
	}
	g.UpdatedAt = r.clock.Now()

	var result *model.GameResult
	if CheckWinCondition(g) {
		result = r.finalizeLocked(sess, g.CurrentPlayer(), model.ReasonBorneOff)
	}
	out := &MoveResult{State: g.Clone(), Play: play, Hits: hits, Result: result}
	sess.mu.Unlock()

	r.dispatch(ctx, result)
	return out, nil
}

// GetPossibleMoves returns the legal moves for the player on turn
func (r *Registry) GetPossibleMoves(ctx context.Context, gameID model.GameID) ([]model.Move, error) {
	sess := r.lookup(gameID)
	if sess == nil {
		return nil, model.ErrGameNotFound
	}

	sess.mu.RLock()
	defer sess.mu.RUnlock()

	if sess.done {
		return nil, model.ErrGameNotFound
	}
	return movegen.Generate(sess.state), nil
}

// EndTurn stops the current clock, passes the turn and clears any unused
// dice. The caller rolls for the next player.
func (r *Registry) EndTurn(ctx context.Context, gameID model.GameID) (*model.GameState, error) {
	return r.endTurn(ctx, gameID, "")
}

// EndTurnAs is EndTurn for a specific player, who must be on turn
func (r *Registry) EndTurnAs(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (*model.GameState, error) {
	if playerID == "" {
		return nil, model.ErrNotParticipant
	}
	return r.endTurn(ctx, gameID, playerID)
}

func (r *Registry) endTurn(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (*model.GameState, error) {
	sess := r.lookup(gameID)
	if sess == nil {
		return nil, model.ErrGameNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.done {
		return nil, model.ErrGameNotFound
	}
	g := sess.state
	if g.Status != model.GameStatusInProgress {
		return nil, model.ErrGameNotInProgress
	}
	if err := checkTurn(g, playerID); err != nil {
		return nil, err
	}

	now := r.clock.Now()
	g.Timer(g.CurrentTurn).Stop(now)
	g.CurrentTurn = g.CurrentTurn.Opponent()
	g.Dice = model.Dice{}
	g.Rolled = false
	g.UpdatedAt = now

	return g.Clone(), nil
}

// TimeOut declares the opponent of expiredPlayer the winner
func (r *Registry) TimeOut(ctx context.Context, gameID model.GameID, expiredPlayer model.PlayerID) (model.PlayerID, error) {
	sess := r.lookup(gameID)
	if sess == nil {
		return "", model.ErrGameNotFound
	}

	sess.mu.Lock()
	if sess.done {
		sess.mu.Unlock()
		return "", model.ErrGameNotFound
	}
	g := sess.state
	if !g.HasPlayer(expiredPlayer) {
		sess.mu.Unlock()
		return "", model.ErrNotParticipant
	}
	if g.Status != model.GameStatusInProgress {
		sess.mu.Unlock()
		return "", model.ErrGameNotInProgress
	}

	winner := g.Opponent(expiredPlayer)
	result := r.finalizeLocked(sess, winner, model.ReasonTimeout)
	sess.mu.Unlock()

	r.dispatch(ctx, result)
	return winner, nil
}

// EndGame finalizes a game with the given winner. It is idempotent: only
// the first call for a game reports statistics, later calls return false.
func (r *Registry) EndGame(ctx context.Context, gameID model.GameID, winner model.PlayerID, reason model.GameOverReason) (*model.GameResult, bool) {
	sess := r.lookup(gameID)
	if sess == nil {
		return nil, false
	}

	sess.mu.Lock()
	if winner != "" && !sess.state.HasPlayer(winner) {
		sess.mu.Unlock()
		return nil, false
	}
	result := r.finalizeLocked(sess, winner, reason)
	sess.mu.Unlock()

	if result == nil {
		return nil, false
	}
	r.dispatch(ctx, result)
	return result, true
}

// HandleDisconnection ends the player's active game. A game in progress
// is awarded to the other player; a game still waiting is cancelled.
func (r *Registry) HandleDisconnection(ctx context.Context, playerID model.PlayerID) (*model.GameResult, bool) {
	gameID, ok := r.GetPlayerGame(playerID)
	if !ok {
		return nil, false
	}
	sess := r.lookup(gameID)
	if sess == nil {
		return nil, false
	}

	sess.mu.Lock()
	var result *model.GameResult
	switch sess.state.Status {
	case model.GameStatusInProgress:
		result = r.finalizeLocked(sess, sess.state.Opponent(playerID), model.ReasonDisconnected)
	case model.GameStatusWaiting:
		result = r.finalizeLocked(sess, "", model.ReasonCancelled)
	}
	sess.mu.Unlock()

	if result == nil {
		return nil, false
	}
	r.dispatch(ctx, result)
	return result, true
}

// checkTurn verifies that playerID, when given, holds the color on turn
func checkTurn(g *model.GameState, playerID model.PlayerID) error {
	if playerID == "" {
		return nil
	}
	if !g.HasPlayer(playerID) {
		return model.ErrNotParticipant
	}
	if g.CurrentPlayer() != playerID {
		return model.ErrNotPlayerTurn
	}
	return nil
}

// CheckWinCondition reports whether either color has borne off every checker
func CheckWinCondition(g *model.GameState) bool {
	return g.Board.BorneOff(model.White) == model.PiecesPerColor ||
		g.Board.BorneOff(model.Black) == model.PiecesPerColor
}

// GetGameState returns a snapshot of a live game
func (r *Registry) GetGameState(ctx context.Context, gameID model.GameID) (*model.GameState, error) {
	sess := r.lookup(gameID)
	if sess == nil {
		return nil, model.ErrGameNotFound
	}

	sess.mu.RLock()
	defer sess.mu.RUnlock()

	if sess.done {
		return nil, model.ErrGameNotFound
	}
	return sess.state.Clone(), nil
}

// IsPlayersTurn reports whether playerID holds the color on turn
func (r *Registry) IsPlayersTurn(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (bool, error) {
	g, err := r.GetGameState(ctx, gameID)
	if err != nil {
		return false, err
	}
	if !g.HasPlayer(playerID) {
		return false, model.ErrNotParticipant
	}
	return g.Status == model.GameStatusInProgress && g.CurrentPlayer() == playerID, nil
}

// IsPlayerInGame reports whether the player is bound to a live game
func (r *Registry) IsPlayerInGame(playerID model.PlayerID) bool {
	_, ok := r.GetPlayerGame(playerID)
	return ok
}

// GetPlayerGame returns the live game the player is bound to
func (r *Registry) GetPlayerGame(playerID model.PlayerID) (model.GameID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gameID, ok := r.byPlayer[playerID]
	return gameID, ok
}

// ActiveGames returns the number of live games
func (r *Registry) ActiveGames() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// ExpireClocks times out every player whose running clock has reached zero
func (r *Registry) ExpireClocks(ctx context.Context) []model.GameResult {
	now := r.clock.Now()
	var results []model.GameResult

	for _, sess := range r.sessions() {
		sess.mu.Lock()
		var result *model.GameResult
		g := sess.state
		if !sess.done && g.Status == model.GameStatusInProgress {
			timer := g.Timer(g.CurrentTurn)
			if timer.Running && timer.Expired(now) {
				timer.Stop(now)
				result = r.finalizeLocked(sess, g.Opponent(g.CurrentPlayer()), model.ReasonTimeout)
			}
		}
		sess.mu.Unlock()

		if result != nil {
			r.dispatch(ctx, result)
			results = append(results, *result)
		}
	}
	return results
}

// PurgeWaiting cancels games that have waited longer than maxAge for
// their second player and returns how many were removed
func (r *Registry) PurgeWaiting(ctx context.Context, maxAge time.Duration) int {
	cutoff := r.clock.Now().Add(-maxAge)
	purged := 0

	for _, sess := range r.sessions() {
		sess.mu.Lock()
		var result *model.GameResult
		g := sess.state
		if !sess.done && g.Status == model.GameStatusWaiting && !g.CreatedAt.After(cutoff) {
			result = r.finalizeLocked(sess, "", model.ReasonCancelled)
		}
		sess.mu.Unlock()

		if result != nil {
			r.dispatch(ctx, result)
			purged++
		}
	}
	return purged
}

// lookup returns the session for gameID, or nil
func (r *Registry) lookup(gameID model.GameID) *session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.games[gameID]
}

// sessions snapshots the live sessions
func (r *Registry) sessions() []*session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*session, 0, len(r.games))
	for _, sess := range r.games {
		out = append(out, sess)
	}
	return out
}

// finalizeLocked marks the game finished and removes it from both
// indices. The caller holds sess.mu. It returns nil if the game was
// already finalized.
func (r *Registry) finalizeLocked(sess *session, winner model.PlayerID, reason model.GameOverReason) *model.GameResult {
	if sess.done {
		return nil
	}
	sess.done = true

	g := sess.state
	now := r.clock.Now()
	g.WhiteTimer.Stop(now)
	g.BlackTimer.Stop(now)
	g.Status = model.GameStatusFinished
	g.IsOver = true
	g.Winner = winner
	g.UpdatedAt = now

	r.mu.Lock()
	if r.games[g.ID] == sess {
		delete(r.games, g.ID)
	}
	for _, p := range []model.PlayerID{g.Player1, g.Player2} {
		if r.byPlayer[p] == g.ID {
			delete(r.byPlayer, p)
		}
	}
	r.mu.Unlock()

	result := &model.GameResult{
		GameID:     g.ID,
		Winner:     winner,
		Reason:     reason,
		FinishedAt: now,
	}
	if winner != "" {
		result.Loser = g.Opponent(winner)
	}
	return result
}

// dispatch notifies listeners and reports statistics for a finalized
// game. It must be called without holding any session lock.
func (r *Registry) dispatch(ctx context.Context, result *model.GameResult) {
	if result == nil {
		return
	}

	r.logger.Info("game over",
		slog.String("game_id", string(result.GameID)),
		slog.String("winner", string(result.Winner)),
		slog.String("reason", string(result.Reason)),
	)

	r.listenersMu.RLock()
	listeners := append([]GameOverListener(nil), r.listeners...)
	r.listenersMu.RUnlock()
	for _, fn := range listeners {
		fn(*result)
	}

	if result.Winner == "" || r.stats == nil {
		return
	}

	r.pending.Add(1)
	go func(res model.GameResult) {
		defer r.pending.Done()

		statsCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.StatsTimeout)
		defer cancel()

		if err := r.stats.RecordWin(statsCtx, res.Winner); err != nil {
			r.logger.Error("failed to record win",
				slog.String("game_id", string(res.GameID)),
				slog.String("player_id", string(res.Winner)),
				slog.String("error", err.Error()),
			)
		}
		if err := r.stats.RecordLoss(statsCtx, res.Loser); err != nil {
			r.logger.Error("failed to record loss",
				slog.String("game_id", string(res.GameID)),
				slog.String("player_id", string(res.Loser)),
				slog.String("error", err.Error()),
			)
		}
		if history, ok := r.stats.(ResultRecorder); ok {
			if err := history.RecordResult(statsCtx, res); err != nil {
				r.logger.Error("failed to record result",
					slog.String("game_id", string(res.GameID)),
					slog.String("error", err.Error()),
				)
			}
		}
	}(*result)
}
