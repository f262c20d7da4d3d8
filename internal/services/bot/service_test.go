package bot_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/backgammon/internal/dependencies/mocks"
	"github.com/mcoot/backgammon/internal/dependencies/random"
	"github.com/mcoot/backgammon/internal/model"
	"github.com/mcoot/backgammon/internal/services/bot"
	"github.com/mcoot/backgammon/internal/services/game"
	"github.com/mcoot/backgammon/internal/storage/memory"
	"github.com/mcoot/backgammon/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	store      *memory.Storage
	mockClock  *mocks.MockClock
	mockRandom *mocks.MockRandom

	registry   *game.Registry
	botService *bot.Service

	ctx context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = memory.New()
	s.mockClock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.mockRandom = mocks.NewMockRandom()
	logger := testutil.NopLogger()
	s.ctx = context.Background()

	s.registry = game.NewRegistry(nil, s.mockClock, s.mockRandom, logger, game.DefaultConfig())
	s.botService = bot.NewService(s.store, s.registry, bot.DefaultStrategies(s.mockRandom), s.mockClock, s.mockRandom, logger)
}

func (s *ServiceSuite) createPlayer(id, name string) model.Player {
	p := model.Player{
		ID:          model.PlayerID(id),
		DisplayName: name,
		IsGuest:     true,
		CreatedAt:   s.mockClock.Now(),
	}
	_ = s.store.SavePlayer(s.ctx, &p)
	return p
}

// startAgainstBot seats a human and a racer bot. coin 0 gives the human White.
func (s *ServiceSuite) startAgainstBot(coin int) (model.Player, *model.Player) {
	human := s.createPlayer("human", "Human")
	s.mockRandom.QueueString("abcdefghijklmnop")
	botPlayer, err := s.botService.CreateBotPlayer(s.ctx, "", model.BotStrategyRacer)
	s.Require().NoError(err)

	_, err = s.registry.CreateGame(s.ctx, human.ID, botPlayer.ID, "g1")
	s.Require().NoError(err)
	s.mockRandom.QueueIntn(coin)
	_, started, err := s.registry.JoinGame(s.ctx, "g1", botPlayer.ID)
	s.Require().NoError(err)
	s.Require().True(started)
	return human, botPlayer
}

func (s *ServiceSuite) TestCreateBotPlayer() {
	s.mockRandom.QueueString("abcdefghijklmnop")

	player, err := s.botService.CreateBotPlayer(s.ctx, "Bot 1", model.BotStrategyRandom)
	s.Require().NoError(err)

	s.Equal("Bot 1", player.DisplayName)
	s.True(player.IsBot)
	s.True(player.IsGuest)
	s.Equal(model.BotStrategyRandom, player.BotStrategy)
	s.Equal(model.PlayerID("bot-abcdefghijklmnop"), player.ID)

	// Verify saved to storage
	retrieved, err := s.store.GetPlayer(s.ctx, player.ID)
	s.Require().NoError(err)
	s.True(retrieved.IsBot)
	s.True(s.botService.IsBot(s.ctx, player.ID))
}

func (s *ServiceSuite) TestCreateBotPlayerDefaultName() {
	s.mockRandom.QueueString("abcdefghijklmnop")

	player, err := s.botService.CreateBotPlayer(s.ctx, "", model.BotStrategyRacer)
	s.Require().NoError(err)
	s.Equal("Racer Bot", player.DisplayName)
}

func (s *ServiceSuite) TestCreateBotPlayerDefaultStrategy() {
	s.mockRandom.QueueString("defaultbot123456")

	player, err := s.botService.CreateBotPlayer(s.ctx, "", "")
	s.Require().NoError(err)
	s.Equal(model.DefaultBotStrategy, player.BotStrategy)
	s.Equal("Random Bot", player.DisplayName)
}

func (s *ServiceSuite) TestCreateBotPlayerUnknownStrategy() {
	_, err := s.botService.CreateBotPlayer(s.ctx, "Bot", "grandmaster")
	s.ErrorIs(err, bot.ErrUnknownStrategy)
}

func (s *ServiceSuite) TestProcessBotActions_BotPlaysWholeTurn() {
	_, botPlayer := s.startAgainstBot(1) // human Black, bot White
	s.mockRandom.QueueDice(3, 1)

	actions, err := s.botService.ProcessBotActions(s.ctx, "g1")
	s.Require().NoError(err)
	s.Require().GreaterOrEqual(len(actions), 3)

	s.Equal(bot.ActionRoll, actions[0].Type)
	s.Equal(botPlayer.ID, actions[0].PlayerID)
	s.Equal([]int{3, 1}, actions[0].Dice.Rolls)

	last := actions[len(actions)-1]
	s.Equal(bot.ActionEndTurn, last.Type)
	for _, a := range actions[1 : len(actions)-1] {
		s.Equal(bot.ActionMove, a.Type)
		s.Equal(botPlayer.ID, a.PlayerID)
	}

	g, err := s.registry.GetGameState(s.ctx, "g1")
	s.Require().NoError(err)
	s.Equal(model.Black, g.CurrentTurn)
	s.False(g.Rolled)
	s.Equal(model.PiecesPerColor, g.Board.Total(model.White))
	s.Equal(model.PiecesPerColor, g.Board.Total(model.Black))
}

func (s *ServiceSuite) TestProcessBotActions_HumanOnTurn() {
	s.startAgainstBot(0) // human White

	actions, err := s.botService.ProcessBotActions(s.ctx, "g1")
	s.Require().NoError(err)
	s.Empty(actions)
}

func (s *ServiceSuite) TestProcessBotActions_WaitingGame() {
	human := s.createPlayer("human", "Human")
	s.mockRandom.QueueString("abcdefghijklmnop")
	botPlayer, _ := s.botService.CreateBotPlayer(s.ctx, "", model.BotStrategyRacer)
	_, err := s.registry.CreateGame(s.ctx, human.ID, botPlayer.ID, "g1")
	s.Require().NoError(err)

	actions, err := s.botService.ProcessBotActions(s.ctx, "g1")
	s.Require().NoError(err)
	s.Empty(actions)
}

func (s *ServiceSuite) TestProcessBotActions_GameAlreadyOver() {
	human, _ := s.startAgainstBot(1)
	_, ok := s.registry.EndGame(s.ctx, "g1", human.ID, model.ReasonEnded)
	s.Require().True(ok)

	actions, err := s.botService.ProcessBotActions(s.ctx, "g1")
	s.Require().NoError(err)
	s.Empty(actions)
}

func (s *ServiceSuite) TestProcessBotActions_BotsPlayToTheEnd() {
	seeded := random.NewSeeded(42)
	logger := testutil.NopLogger()
	registry := game.NewRegistry(nil, s.mockClock, seeded, logger, game.DefaultConfig())
	service := bot.NewService(s.store, registry, bot.DefaultStrategies(seeded), s.mockClock, seeded, logger)

	var (
		mu      sync.Mutex
		results []model.GameResult
	)
	registry.OnGameOver(func(r model.GameResult) {
		mu.Lock()
		defer mu.Unlock()
		results = append(results, r)
	})

	first, err := service.CreateBotPlayer(s.ctx, "", model.BotStrategyRacer)
	s.Require().NoError(err)
	second, err := service.CreateBotPlayer(s.ctx, "", model.BotStrategyRacer)
	s.Require().NoError(err)
	s.Require().NotEqual(first.ID, second.ID)

	_, err = registry.CreateGame(s.ctx, first.ID, second.ID, "bots")
	s.Require().NoError(err)
	_, _, err = registry.JoinGame(s.ctx, "bots", second.ID)
	s.Require().NoError(err)

	finished := false
	for range 50 {
		actions, err := service.ProcessBotActions(s.ctx, "bots")
		s.Require().NoError(err)
		if len(actions) > 0 && actions[len(actions)-1].Type == bot.ActionGameComplete {
			finished = true
			break
		}
	}
	s.Require().True(finished)

	mu.Lock()
	defer mu.Unlock()
	s.Require().Len(results, 1)
	s.Equal(model.ReasonBorneOff, results[0].Reason)
	s.Contains([]model.PlayerID{first.ID, second.ID}, results[0].Winner)
	s.False(registry.IsPlayerInGame(first.ID))
}
