package game

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/backgammon/internal/dependencies/mocks"
	"github.com/mcoot/backgammon/internal/dependencies/random"
	"github.com/mcoot/backgammon/internal/model"
	"github.com/mcoot/backgammon/internal/testutil"
)

// recordingStats is a StatsRecorder that remembers every report
type recordingStats struct {
	mu     sync.Mutex
	wins   map[model.PlayerID]int
	losses map[model.PlayerID]int
	fail   error
}

func newRecordingStats() *recordingStats {
	return &recordingStats{
		wins:   make(map[model.PlayerID]int),
		losses: make(map[model.PlayerID]int),
	}
}

func (s *recordingStats) RecordWin(ctx context.Context, p model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.wins[p]++
	return nil
}

func (s *recordingStats) RecordLoss(ctx context.Context, p model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.losses[p]++
	return nil
}

func (s *recordingStats) counts(p model.PlayerID) (wins, losses int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wins[p], s.losses[p]
}

type RegistrySuite struct {
	suite.Suite
	stats    *recordingStats
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	registry *Registry
	ctx      context.Context
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.stats = newRecordingStats()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.registry = NewRegistry(s.stats, s.clock, s.random, testutil.NopLogger(), DefaultConfig())
	s.ctx = context.Background()
}

func (s *RegistrySuite) TearDownTest() {
	s.registry.Close()
}

// startGame creates and starts a game where alice plays White
func (s *RegistrySuite) startGame(id model.GameID) *model.GameState {
	_, err := s.registry.CreateGame(s.ctx, "alice", "bob", id)
	s.Require().NoError(err)
	s.random.QueueIntn(0)
	state, started, err := s.registry.JoinGame(s.ctx, id, "bob")
	s.Require().NoError(err)
	s.Require().True(started)
	return state
}

// setBoard replaces the live board of a game
func (s *RegistrySuite) setBoard(id model.GameID, b *model.Board) {
	sess := s.registry.lookup(id)
	s.Require().NotNil(sess)
	sess.mu.Lock()
	sess.state.Board = *b
	sess.mu.Unlock()
}

// CreateGame tests

func (s *RegistrySuite) TestCreateGameSucceeds() {
	state, err := s.registry.CreateGame(s.ctx, "alice", "bob", "g1")
	s.Require().NoError(err)

	s.Equal(model.GameID("g1"), state.ID)
	s.Equal(model.PlayerID("alice"), state.Player1)
	s.Equal(model.PlayerID("bob"), state.Player2)
	s.Equal(model.GameStatusWaiting, state.Status)
	s.Equal(*model.NewStandardBoard(), state.Board)
	s.False(state.WhiteTimer.Running)
	s.False(state.BlackTimer.Running)
}

func (s *RegistrySuite) TestCreateGameBindsOnlyCreator() {
	_, _ = s.registry.CreateGame(s.ctx, "alice", "bob", "g1")

	gameID, ok := s.registry.GetPlayerGame("alice")
	s.True(ok)
	s.Equal(model.GameID("g1"), gameID)
	s.False(s.registry.IsPlayerInGame("bob"), "opponent is bound on join")
	s.False(s.registry.IsPlayerInGame("carol"))
}

func (s *RegistrySuite) TestUnjoinedOpponentStaysFree() {
	_, err := s.registry.CreateGame(s.ctx, "mallory", "bob", "g1")
	s.Require().NoError(err)

	// bob can still set up his own game and play it
	_, err = s.registry.CreateGame(s.ctx, "bob", "carol", "g2")
	s.Require().NoError(err)
	s.random.QueueIntn(0)
	_, started, err := s.registry.JoinGame(s.ctx, "g2", "carol")
	s.Require().NoError(err)
	s.True(started)

	// and the game he never joined cannot seat him
	_, _, err = s.registry.JoinGame(s.ctx, "g1", "bob")
	s.ErrorIs(err, model.ErrPlayerInGame)
	state, err := s.registry.GetGameState(s.ctx, "g1")
	s.Require().NoError(err)
	s.Equal(model.GameStatusWaiting, state.Status)
}

func (s *RegistrySuite) TestCreateGameGeneratesID() {
	state, err := s.registry.CreateGame(s.ctx, "alice", "bob", "")
	s.Require().NoError(err)
	s.NotEmpty(state.ID)
}

func (s *RegistrySuite) TestCreateGameRejectsDuplicateID() {
	_, _ = s.registry.CreateGame(s.ctx, "alice", "bob", "g1")

	_, err := s.registry.CreateGame(s.ctx, "carol", "dave", "g1")
	s.ErrorIs(err, model.ErrGameExists)
	s.False(s.registry.IsPlayerInGame("carol"))
}

func (s *RegistrySuite) TestCreateGameRejectsSeatedPlayer() {
	_, _ = s.registry.CreateGame(s.ctx, "alice", "bob", "g1")

	_, err := s.registry.CreateGame(s.ctx, "carol", "alice", "g2")
	s.ErrorIs(err, model.ErrPlayerInGame)
	s.False(s.registry.IsPlayerInGame("carol"), "no partial binding")

	_, err = s.registry.GetGameState(s.ctx, "g2")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *RegistrySuite) TestCreateGameRejectsSelfPlay() {
	_, err := s.registry.CreateGame(s.ctx, "alice", "alice", "g1")
	s.ErrorIs(err, model.ErrSamePlayer)
}

// JoinGame tests

func (s *RegistrySuite) TestJoinGameStartsGame() {
	_, _ = s.registry.CreateGame(s.ctx, "alice", "bob", "g1")
	s.random.QueueIntn(1)

	state, started, err := s.registry.JoinGame(s.ctx, "g1", "bob")
	s.Require().NoError(err)

	s.True(started)
	s.Equal(model.GameStatusInProgress, state.Status)
	s.Equal(model.White, state.CurrentTurn)
	s.Equal(model.Black, state.Player1Color)
	s.Equal(model.White, state.Player2Color)
	s.Equal(model.PlayerID("bob"), state.CurrentPlayer())
	s.True(s.registry.IsPlayerInGame("bob"))
}

func (s *RegistrySuite) TestJoinGameByCreatorKeepsWaiting() {
	_, _ = s.registry.CreateGame(s.ctx, "alice", "bob", "g1")

	state, started, err := s.registry.JoinGame(s.ctx, "g1", "alice")
	s.Require().NoError(err)
	s.False(started)
	s.Equal(model.GameStatusWaiting, state.Status)
	s.False(s.registry.IsPlayerInGame("bob"))
}

func (s *RegistrySuite) TestJoinGameCoinFlipAssignsComplementaryColors() {
	state := s.startGame("g1")
	s.Equal(model.White, state.Player1Color)
	s.Equal(model.Black, state.Player2Color)
}

func (s *RegistrySuite) TestJoinGameAgainReturnsCurrentState() {
	s.startGame("g1")

	state, started, err := s.registry.JoinGame(s.ctx, "g1", "alice")
	s.Require().NoError(err)
	s.False(started)
	s.Equal(model.GameStatusInProgress, state.Status)
}

func (s *RegistrySuite) TestJoinGameRejectsStranger() {
	_, _ = s.registry.CreateGame(s.ctx, "alice", "bob", "g1")

	_, _, err := s.registry.JoinGame(s.ctx, "g1", "carol")
	s.ErrorIs(err, model.ErrNotParticipant)
}

func (s *RegistrySuite) TestJoinGameUnknownGame() {
	_, _, err := s.registry.JoinGame(s.ctx, "nope", "alice")
	s.ErrorIs(err, model.ErrGameNotFound)
}

// RollDice tests

func (s *RegistrySuite) TestRollDiceStartsCurrentClock() {
	s.startGame("g1")
	s.random.QueueDice(3, 5)

	dice, err := s.registry.RollDice(s.ctx, "g1")
	s.Require().NoError(err)
	s.Equal([]int{3, 5}, dice.Rolls)

	state, _ := s.registry.GetGameState(s.ctx, "g1")
	s.True(state.WhiteTimer.Running)
	s.False(state.BlackTimer.Running)
	s.True(state.Rolled)
}

func (s *RegistrySuite) TestRollDiceDoubles() {
	s.startGame("g1")
	s.random.QueueDice(4, 4)

	dice, err := s.registry.RollDice(s.ctx, "g1")
	s.Require().NoError(err)
	s.Equal([]int{4, 4, 4, 4}, dice.Rolls)
}

func (s *RegistrySuite) TestRollDiceTwiceInOneTurnFails() {
	s.startGame("g1")
	_, _ = s.registry.RollDice(s.ctx, "g1")

	_, err := s.registry.RollDice(s.ctx, "g1")
	s.ErrorIs(err, model.ErrAlreadyRolled)
}

func (s *RegistrySuite) TestRollDiceUnknownGame() {
	_, err := s.registry.RollDice(s.ctx, "nope")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *RegistrySuite) TestRollDiceBeforeStartFails() {
	_, _ = s.registry.CreateGame(s.ctx, "alice", "bob", "g1")
	_, err := s.registry.RollDice(s.ctx, "g1")
	s.ErrorIs(err, model.ErrGameNotInProgress)
}

// MakeMove tests

func (s *RegistrySuite) TestMakeMoveAppliesAndConsumesDie() {
	s.startGame("g1")
	s.random.QueueDice(3, 5)
	_, _ = s.registry.RollDice(s.ctx, "g1")

	ok, err := s.registry.MakeMove(s.ctx, "g1", 23, 20)
	s.Require().NoError(err)
	s.True(ok)

	state, _ := s.registry.GetGameState(s.ctx, "g1")
	s.Equal(1, state.Board.Point(23).Count)
	s.Equal(model.Point{Color: model.White, Count: 1}, state.Board.Point(20))
	s.Equal([]int{5}, state.Dice.Rolls)
}

func (s *RegistrySuite) TestMakeMoveRejectionHasNoSideEffects() {
	s.startGame("g1")
	s.random.QueueDice(3, 5)
	_, _ = s.registry.RollDice(s.ctx, "g1")
	before, _ := s.registry.GetGameState(s.ctx, "g1")

	for _, m := range []model.Move{{From: 23, To: 19}, {From: 0, To: 3}, {From: 12, To: 15}, {From: 5, To: model.OffPoint}} {
		ok, err := s.registry.MakeMove(s.ctx, "g1", m.From, m.To)
		s.Require().NoError(err)
		s.False(ok, "move %v", m)
	}

	after, _ := s.registry.GetGameState(s.ctx, "g1")
	s.Equal(before, after)
}

func (s *RegistrySuite) TestMoveReportsReason() {
	s.startGame("g1")
	s.random.QueueDice(3, 5)
	_, _ = s.registry.RollDice(s.ctx, "g1")

	_, err := s.registry.Move(s.ctx, "g1", model.Move{From: 23, To: 18})
	s.ErrorIs(err, model.ErrInvalidMove)
}

func (s *RegistrySuite) TestMakeMoveWithoutRollFails() {
	s.startGame("g1")
	ok, err := s.registry.MakeMove(s.ctx, "g1", 23, 20)
	s.NoError(err)
	s.False(ok)
}

func (s *RegistrySuite) TestMakeMoveUnknownGame() {
	_, err := s.registry.MakeMove(s.ctx, "nope", 23, 20)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *RegistrySuite) TestDoublesAllowFourMovesThenNone() {
	s.startGame("g1")
	s.random.QueueDice(3, 3)
	_, _ = s.registry.RollDice(s.ctx, "g1")

	for _, m := range []model.Move{{From: 23, To: 20}, {From: 20, To: 17}, {From: 17, To: 14}, {From: 23, To: 20}} {
		ok, err := s.registry.MakeMove(s.ctx, "g1", m.From, m.To)
		s.Require().NoError(err)
		s.Require().True(ok, "move %v", m)
	}

	moves, err := s.registry.GetPossibleMoves(s.ctx, "g1")
	s.Require().NoError(err)
	s.Empty(moves)
}

// raceMoves starts a fresh game with alice as White on the given roll and
// submits every move at once. It returns how many were applied and the
// dice left afterwards.
func (s *RegistrySuite) raceMoves(d1, d2 int, moves ...model.Move) (int32, []int) {
	rnd := mocks.NewMockRandom()
	registry := NewRegistry(nil, s.clock, rnd, testutil.NopLogger(), DefaultConfig())
	defer registry.Close()

	_, err := registry.CreateGame(s.ctx, "alice", "bob", "race")
	s.Require().NoError(err)
	rnd.QueueIntn(0)
	_, _, err = registry.JoinGame(s.ctx, "race", "bob")
	s.Require().NoError(err)
	rnd.QueueDice(d1, d2)
	_, err = registry.RollDice(s.ctx, "race")
	s.Require().NoError(err)

	var successes atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for _, m := range moves {
		wg.Add(1)
		go func(m model.Move) {
			defer wg.Done()
			<-start
			ok, err := registry.MakeMove(s.ctx, "race", m.From, m.To)
			if err == nil && ok {
				successes.Add(1)
			}
		}(m)
	}
	close(start)
	wg.Wait()

	state, err := registry.GetGameState(s.ctx, "race")
	s.Require().NoError(err)
	return successes.Load(), state.Dice.Rolls
}

func (s *RegistrySuite) TestConcurrentMovesUsingSameDie() {
	for range 50 {
		applied, left := s.raceMoves(3, 5, model.Move{From: 23, To: 20}, model.Move{From: 12, To: 9})
		s.Equal(int32(1), applied)
		s.Equal([]int{5}, left)
	}
}

func (s *RegistrySuite) TestConcurrentMovesOnDoublesBothApply() {
	for range 50 {
		applied, left := s.raceMoves(3, 3, model.Move{From: 23, To: 20}, model.Move{From: 12, To: 9})
		s.Equal(int32(2), applied)
		s.Equal([]int{3, 3}, left)
	}
}

func (s *RegistrySuite) TestWinningMoveFinalizes() {
	s.startGame("g1")
	b := &model.Board{}
	b.Off[model.White] = 14
	b.Points[0] = model.Point{Color: model.White, Count: 1}
	b.Points[20] = model.Point{Color: model.Black, Count: 15}
	s.setBoard("g1", b)

	var results []model.GameResult
	s.registry.OnGameOver(func(r model.GameResult) { results = append(results, r) })

	s.random.QueueDice(1, 2)
	_, _ = s.registry.RollDice(s.ctx, "g1")

	res, err := s.registry.Move(s.ctx, "g1", model.Move{From: 0, To: model.OffPoint})
	s.Require().NoError(err)
	s.Require().NotNil(res.Result)
	s.Equal(model.PlayerID("alice"), res.Result.Winner)
	s.Equal(model.PlayerID("bob"), res.Result.Loser)
	s.Equal(model.ReasonBorneOff, res.Result.Reason)
	s.True(res.State.IsOver)
	s.Equal(model.GameStatusFinished, res.State.Status)

	_, err = s.registry.GetGameState(s.ctx, "g1")
	s.ErrorIs(err, model.ErrGameNotFound)
	s.False(s.registry.IsPlayerInGame("alice"))
	s.False(s.registry.IsPlayerInGame("bob"))
	s.Len(results, 1)

	s.registry.Close()
	wins, _ := s.stats.counts("alice")
	_, losses := s.stats.counts("bob")
	s.Equal(1, wins)
	s.Equal(1, losses)
}

func (s *RegistrySuite) TestCheckWinCondition() {
	g := model.NewGameState("g", "a", "b", time.Minute, s.clock.Now())
	s.False(CheckWinCondition(g))
	g.Board.Off[model.Black] = model.PiecesPerColor
	s.True(CheckWinCondition(g))
}

// EndTurn tests

func (s *RegistrySuite) TestEndTurnPassesTurnAndStopsClock() {
	s.startGame("g1")
	s.random.QueueDice(6, 1)
	_, _ = s.registry.RollDice(s.ctx, "g1")
	s.clock.Advance(30 * time.Second)

	state, err := s.registry.EndTurn(s.ctx, "g1")
	s.Require().NoError(err)

	s.Equal(model.Black, state.CurrentTurn)
	s.True(state.Dice.Empty())
	s.False(state.Rolled)
	s.False(state.WhiteTimer.Running)
	s.Equal(4*time.Minute+30*time.Second, state.WhiteTimer.Remaining)

	s.random.QueueDice(2, 4)
	_, err = s.registry.RollDice(s.ctx, "g1")
	s.Require().NoError(err)

	state, _ = s.registry.GetGameState(s.ctx, "g1")
	s.True(state.BlackTimer.Running)
	s.False(state.WhiteTimer.Running)
}

func (s *RegistrySuite) TestEndTurnUnknownGame() {
	_, err := s.registry.EndTurn(s.ctx, "nope")
	s.ErrorIs(err, model.ErrGameNotFound)
}

// TimeOut tests

func (s *RegistrySuite) TestTimeOutAwardsOpponent() {
	s.startGame("g1")

	winner, err := s.registry.TimeOut(s.ctx, "g1", "alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("bob"), winner)

	_, err = s.registry.GetGameState(s.ctx, "g1")
	s.ErrorIs(err, model.ErrGameNotFound)

	_, err = s.registry.TimeOut(s.ctx, "g1", "alice")
	s.ErrorIs(err, model.ErrGameNotFound)

	s.registry.Close()
	wins, _ := s.stats.counts("bob")
	s.Equal(1, wins)
}

func (s *RegistrySuite) TestTimeOutRejectsStranger() {
	s.startGame("g1")
	_, err := s.registry.TimeOut(s.ctx, "g1", "carol")
	s.ErrorIs(err, model.ErrNotParticipant)
}

// EndGame tests

func (s *RegistrySuite) TestEndGameIsIdempotent() {
	s.startGame("g1")

	res, ok := s.registry.EndGame(s.ctx, "g1", "bob", model.ReasonEnded)
	s.True(ok)
	s.Equal(model.PlayerID("alice"), res.Loser)

	_, ok = s.registry.EndGame(s.ctx, "g1", "bob", model.ReasonEnded)
	s.False(ok)
	_, ok = s.registry.EndGame(s.ctx, "g1", "alice", model.ReasonEnded)
	s.False(ok)

	s.registry.Close()
	wins, losses := s.stats.counts("bob")
	s.Equal(1, wins)
	s.Equal(0, losses)
	_, losses = s.stats.counts("alice")
	s.Equal(1, losses)
	s.Zero(s.registry.ActiveGames())
}

func (s *RegistrySuite) TestEndGameStatsFailureIsTolerated() {
	s.stats.fail = errors.New("store unavailable")
	s.startGame("g1")

	_, ok := s.registry.EndGame(s.ctx, "g1", "alice", model.ReasonEnded)
	s.True(ok)
	s.registry.Close()
	s.False(s.registry.IsPlayerInGame("alice"))
}

// HandleDisconnection tests

func (s *RegistrySuite) TestDisconnectMidGameAwardsOpponentOnce() {
	s.startGame("g1")

	res, ok := s.registry.HandleDisconnection(s.ctx, "bob")
	s.Require().True(ok)
	s.Equal(model.PlayerID("alice"), res.Winner)
	s.Equal(model.ReasonDisconnected, res.Reason)

	_, ok = s.registry.HandleDisconnection(s.ctx, "bob")
	s.False(ok)
	_, ok = s.registry.HandleDisconnection(s.ctx, "alice")
	s.False(ok)

	_, err := s.registry.GetGameState(s.ctx, "g1")
	s.ErrorIs(err, model.ErrGameNotFound)

	s.registry.Close()
	wins, _ := s.stats.counts("alice")
	s.Equal(1, wins)
}

func (s *RegistrySuite) TestDisconnectWhileWaitingCancels() {
	_, _ = s.registry.CreateGame(s.ctx, "alice", "bob", "g1")

	res, ok := s.registry.HandleDisconnection(s.ctx, "alice")
	s.Require().True(ok)
	s.Empty(res.Winner)
	s.Equal(model.ReasonCancelled, res.Reason)

	s.registry.Close()
	wins, losses := s.stats.counts("bob")
	s.Zero(wins)
	s.Zero(losses)
	s.False(s.registry.IsPlayerInGame("bob"))
}

func (s *RegistrySuite) TestDisconnectRacingWinningMoveFinalizesOnce() {
	for i := 0; i < 50; i++ {
		s.TearDownTest()
		s.SetupTest()
		s.startGame("g1")
		b := &model.Board{}
		b.Off[model.White] = 14
		b.Points[0] = model.Point{Color: model.White, Count: 1}
		b.Points[20] = model.Point{Color: model.Black, Count: 15}
		s.setBoard("g1", b)
		s.random.QueueDice(1, 2)
		_, _ = s.registry.RollDice(s.ctx, "g1")

		var finals atomic.Int32
		s.registry.OnGameOver(func(model.GameResult) { finals.Add(1) })

		var wg sync.WaitGroup
		start := make(chan struct{})
		wg.Add(3)
		go func() {
			defer wg.Done()
			<-start
			_, _ = s.registry.MakeMove(s.ctx, "g1", 0, model.OffPoint)
		}()
		go func() {
			defer wg.Done()
			<-start
			_, _ = s.registry.HandleDisconnection(s.ctx, "bob")
		}()
		go func() {
			defer wg.Done()
			<-start
			_, _ = s.registry.TimeOut(s.ctx, "g1", "alice")
		}()
		close(start)
		wg.Wait()
		s.registry.Close()

		s.Equal(int32(1), finals.Load())
		aliceWins, aliceLosses := s.stats.counts("alice")
		bobWins, bobLosses := s.stats.counts("bob")
		s.Equal(1, aliceWins+bobWins)
		s.Equal(1, aliceLosses+bobLosses)
	}
}

// Clock enforcement tests

func (s *RegistrySuite) TestExpireClocks() {
	s.startGame("g1")
	_, _ = s.registry.RollDice(s.ctx, "g1")

	s.clock.Advance(4 * time.Minute)
	s.Empty(s.registry.ExpireClocks(s.ctx))

	s.clock.Advance(time.Minute)
	results := s.registry.ExpireClocks(s.ctx)
	s.Require().Len(results, 1)
	s.Equal(model.PlayerID("bob"), results[0].Winner)
	s.Equal(model.ReasonTimeout, results[0].Reason)
	s.Zero(s.registry.ActiveGames())
}

func (s *RegistrySuite) TestPurgeWaiting() {
	_, _ = s.registry.CreateGame(s.ctx, "alice", "bob", "old")
	s.clock.Advance(5 * time.Minute)
	_, _ = s.registry.CreateGame(s.ctx, "carol", "dave", "new")
	s.clock.Advance(5 * time.Minute)

	s.Equal(1, s.registry.PurgeWaiting(s.ctx, 10*time.Minute))
	s.False(s.registry.IsPlayerInGame("alice"))
	s.True(s.registry.IsPlayerInGame("carol"))
}

// IsPlayersTurn tests

func (s *RegistrySuite) TestIsPlayersTurn() {
	s.startGame("g1")

	ok, err := s.registry.IsPlayersTurn(s.ctx, "g1", "alice")
	s.Require().NoError(err)
	s.True(ok)

	ok, _ = s.registry.IsPlayersTurn(s.ctx, "g1", "bob")
	s.False(ok)

	_, err = s.registry.IsPlayersTurn(s.ctx, "g1", "carol")
	s.ErrorIs(err, model.ErrNotParticipant)
}

// Player-scoped actions check turn ownership under the session lock

func (s *RegistrySuite) TestActionsAsPlayerRequireTurn() {
	s.startGame("g1")

	_, err := s.registry.RollDiceAs(s.ctx, "g1", "bob")
	s.ErrorIs(err, model.ErrNotPlayerTurn)
	_, err = s.registry.RollDiceAs(s.ctx, "g1", "carol")
	s.ErrorIs(err, model.ErrNotParticipant)

	s.random.QueueDice(3, 1)
	dice, err := s.registry.RollDiceAs(s.ctx, "g1", "alice")
	s.Require().NoError(err)
	s.Equal([]int{3, 1}, dice.Rolls)

	_, err = s.registry.MoveAs(s.ctx, "g1", "bob", model.Move{From: 7, To: 4})
	s.ErrorIs(err, model.ErrNotPlayerTurn)
	res, err := s.registry.MoveAs(s.ctx, "g1", "alice", model.Move{From: 7, To: 4})
	s.Require().NoError(err)
	s.Equal(1, res.State.Board.Point(4).Count)

	_, err = s.registry.EndTurnAs(s.ctx, "g1", "bob")
	s.ErrorIs(err, model.ErrNotPlayerTurn)
	state, err := s.registry.EndTurnAs(s.ctx, "g1", "alice")
	s.Require().NoError(err)
	s.Equal(model.Black, state.CurrentTurn)

	// After the turn passes, alice can no longer act
	_, err = s.registry.MoveAs(s.ctx, "g1", "alice", model.Move{From: 5, To: 4})
	s.ErrorIs(err, model.ErrNotPlayerTurn)
}

// Full games with a seeded source conserve checkers and end cleanly
func (s *RegistrySuite) TestSeededGamesConserveCheckers() {
	rng := random.NewSeeded(99)
	registry := NewRegistry(s.stats, s.clock, rng, testutil.NopLogger(), DefaultConfig())
	defer registry.Close()

	for i := 0; i < 5; i++ {
		id := model.GameID("sim")
		_, err := registry.CreateGame(s.ctx, "alice", "bob", id)
		s.Require().NoError(err)
		_, _, err = registry.JoinGame(s.ctx, id, "bob")
		s.Require().NoError(err)

		finished := false
		for turn := 0; turn < 2000 && !finished; turn++ {
			_, err := registry.RollDice(s.ctx, id)
			s.Require().NoError(err)

			for {
				moves, err := registry.GetPossibleMoves(s.ctx, id)
				s.Require().NoError(err)
				if len(moves) == 0 {
					break
				}
				m := moves[rng.Intn(len(moves))]
				res, err := registry.Move(s.ctx, id, m)
				s.Require().NoError(err)
				s.Equal(model.PiecesPerColor, res.State.Board.Total(model.White))
				s.Equal(model.PiecesPerColor, res.State.Board.Total(model.Black))
				if res.Result != nil {
					finished = true
					break
				}
			}
			if !finished {
				_, err = registry.EndTurn(s.ctx, id)
				s.Require().NoError(err)
			}
		}
		s.Require().True(finished)
		s.Zero(registry.ActiveGames())
	}
}
