package invite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/backgammon/internal/dependencies/mocks"
	"github.com/mcoot/backgammon/internal/model"
	"github.com/mcoot/backgammon/internal/services/game"
	"github.com/mcoot/backgammon/internal/storage/memory"
	"github.com/mcoot/backgammon/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage  *memory.Storage
	clock    *mocks.MockClock
	registry *game.Registry
	service  *Service
	notified *testutil.Notifications
	ctx      context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	logger := testutil.NopLogger()
	s.registry = game.NewRegistry(nil, s.clock, mocks.NewMockRandom(), logger, game.DefaultConfig())
	s.notified = &testutil.Notifications{}
	s.service = New(s.storage, s.registry, s.notified, s.clock, logger, 0)
	s.ctx = context.Background()

	for _, id := range []model.PlayerID{"alice", "bob", "carol"} {
		_ = s.storage.SavePlayer(s.ctx, &model.Player{ID: id, DisplayName: string(id), CreatedAt: s.clock.Now()})
	}
}

// Send tests

func (s *ServiceSuite) TestSendSucceeds() {
	invite, err := s.service.Send(s.ctx, "alice", "bob")
	s.Require().NoError(err)

	s.NotEmpty(invite.ID)
	s.Equal(model.PlayerID("alice"), invite.From)
	s.Equal(model.PlayerID("bob"), invite.To)
	s.Equal(s.clock.Now().Add(model.DefaultInviteTTL), invite.ExpiresAt)

	stored, err := s.storage.GetInvite(s.ctx, invite.ID)
	s.Require().NoError(err)
	s.Equal(invite.From, stored.From)
}

func (s *ServiceSuite) TestSendNotifiesRecipient() {
	invite, err := s.service.Send(s.ctx, "alice", "bob")
	s.Require().NoError(err)

	sent := s.notified.For("bob")
	s.Require().Len(sent, 1)
	s.Equal(model.NotifyGameInvite, sent[0].Type)
	s.Equal(invite.ID, sent[0].Payload.(model.GameInvitePayload).Invite.ID)
	s.Empty(s.notified.For("alice"))
}

func (s *ServiceSuite) TestSendRejectsSelf() {
	_, err := s.service.Send(s.ctx, "alice", "alice")
	s.ErrorIs(err, model.ErrInviteSelf)
}

func (s *ServiceSuite) TestSendRejectsUnknownRecipient() {
	_, err := s.service.Send(s.ctx, "alice", "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *ServiceSuite) TestSendRejectsBusyPlayers() {
	_, err := s.registry.CreateGame(s.ctx, "bob", "carol", "g1")
	s.Require().NoError(err)

	_, err = s.service.Send(s.ctx, "alice", "bob")
	s.ErrorIs(err, model.ErrPlayerInGame)
}

// List tests

func (s *ServiceSuite) TestListHidesExpiredInvites() {
	_, err := s.service.Send(s.ctx, "alice", "bob")
	s.Require().NoError(err)
	s.clock.Advance(30 * time.Second)
	second, err := s.service.Send(s.ctx, "carol", "bob")
	s.Require().NoError(err)

	s.clock.Advance(40 * time.Second)
	invites, err := s.service.List(s.ctx, "bob")
	s.Require().NoError(err)
	s.Require().Len(invites, 1)
	s.Equal(second.ID, invites[0].ID)
}

// Accept tests

func (s *ServiceSuite) TestAcceptCreatesGame() {
	invite, _ := s.service.Send(s.ctx, "alice", "bob")

	state, err := s.service.Accept(s.ctx, invite.ID, "bob")
	s.Require().NoError(err)

	s.Equal(model.PlayerID("alice"), state.Player1)
	s.Equal(model.PlayerID("bob"), state.Player2)
	s.Equal(model.GameStatusWaiting, state.Status)
	s.True(s.registry.IsPlayerInGame("alice"))
	s.False(s.registry.IsPlayerInGame("bob"), "bound once bob joins")

	_, err = s.storage.GetInvite(s.ctx, invite.ID)
	s.ErrorIs(err, model.ErrInviteNotFound)
}

func (s *ServiceSuite) TestAcceptRejectsWrongPlayer() {
	invite, _ := s.service.Send(s.ctx, "alice", "bob")

	_, err := s.service.Accept(s.ctx, invite.ID, "carol")
	s.ErrorIs(err, model.ErrNotInviteTarget)
}

func (s *ServiceSuite) TestAcceptRejectsExpiredInvite() {
	invite, _ := s.service.Send(s.ctx, "alice", "bob")
	s.clock.Advance(model.DefaultInviteTTL)

	_, err := s.service.Accept(s.ctx, invite.ID, "bob")
	s.ErrorIs(err, model.ErrInviteExpired)
	s.False(s.registry.IsPlayerInGame("bob"))

	_, err = s.storage.GetInvite(s.ctx, invite.ID)
	s.ErrorIs(err, model.ErrInviteNotFound)
}

func (s *ServiceSuite) TestAcceptUnknownInvite() {
	_, err := s.service.Accept(s.ctx, "missing", "bob")
	s.ErrorIs(err, model.ErrInviteNotFound)
}

func (s *ServiceSuite) TestAcceptKeepsInviteWhenGameCannotStart() {
	invite, _ := s.service.Send(s.ctx, "alice", "bob")
	_, err := s.registry.CreateGame(s.ctx, "alice", "carol", "g1")
	s.Require().NoError(err)

	_, err = s.service.Accept(s.ctx, invite.ID, "bob")
	s.ErrorIs(err, model.ErrPlayerInGame)

	_, err = s.storage.GetInvite(s.ctx, invite.ID)
	s.NoError(err)
}

// Decline tests

func (s *ServiceSuite) TestDeclineByRecipientOrSender() {
	first, _ := s.service.Send(s.ctx, "alice", "bob")
	second, _ := s.service.Send(s.ctx, "carol", "bob")

	s.Require().NoError(s.service.Decline(s.ctx, first.ID, "bob"))
	s.Require().NoError(s.service.Decline(s.ctx, second.ID, "carol"))

	invites, err := s.service.List(s.ctx, "bob")
	s.Require().NoError(err)
	s.Empty(invites)
}

func (s *ServiceSuite) TestDeclineRejectsBystander() {
	invite, _ := s.service.Send(s.ctx, "alice", "bob")

	err := s.service.Decline(s.ctx, invite.ID, "carol")
	s.ErrorIs(err, model.ErrNotInviteTarget)
}

// PurgeExpired tests

func (s *ServiceSuite) TestPurgeExpired() {
	_, _ = s.service.Send(s.ctx, "alice", "bob")
	s.clock.Advance(2 * time.Minute)
	_, _ = s.service.Send(s.ctx, "carol", "bob")

	removed, err := s.service.PurgeExpired(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, removed)

	invites, _ := s.storage.ListInvitesFor(s.ctx, "bob")
	s.Len(invites, 1)
}
