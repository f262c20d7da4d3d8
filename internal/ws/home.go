package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/mcoot/backgammon/internal/api/response"
	"github.com/mcoot/backgammon/internal/dependencies/clock"
	"github.com/mcoot/backgammon/internal/model"
	"github.com/mcoot/backgammon/internal/services/presence"
	"github.com/mcoot/backgammon/internal/services/social"
)

// Inbound home action names
const (
	HomeActionChat          = "chat"
	HomeActionMarkRead      = "mark_read"
	HomeActionFriendRequest = "friend_request"
	HomeActionAcceptFriend  = "accept_friend"
	HomeActionDeclineFriend = "decline_friend"
	HomeActionRefresh       = "refresh"
)

// HomeAction is a message sent on a home connection. Player names the
// other side of the action.
type HomeAction struct {
	Action string `json:"action"`
	Player string `json:"player"`
	Body   string `json:"body,omitempty"`
}

// Home is the shared hub of every player's home connection. It delivers
// social notifications and keeps the presence tracker in step with who is
// connected.
type Home struct {
	hub      *Hub
	presence *presence.Tracker
	syncMu   sync.Mutex
	logger   *slog.Logger
}

// NewHome creates the home hub and starts its loop
func NewHome(tracker *presence.Tracker, logger *slog.Logger) *Home {
	logger = logger.With(slog.String("component", "ws-home"))
	h := &Home{
		hub:      newHub("", logger),
		presence: tracker,
		logger:   logger,
	}
	h.hub.onJoin = h.syncPresence
	h.hub.onLeave = h.syncPresence
	go h.hub.Run()
	return h
}

// syncPresence copies the hub's view of a player into the tracker. Join and
// leave callbacks may run out of order, so the current state is read under
// a lock instead of trusting the callback kind.
func (h *Home) syncPresence(_ model.GameID, playerID model.PlayerID) {
	h.syncMu.Lock()
	defer h.syncMu.Unlock()
	if h.hub.Connected(playerID) {
		h.presence.SetOnline(playerID)
	} else {
		h.presence.SetOffline(playerID)
	}
}

// Notify pushes a notification to every home connection of its recipient.
// Players without a home connection miss it.
func (h *Home) Notify(n model.Notification) {
	data, err := json.Marshal(response.NotificationFromModel(n))
	if err != nil {
		h.logger.Error("ws failed to encode notification",
			slog.String("type", string(n.Type)),
			slog.String("error", err.Error()))
		return
	}
	h.hub.Send(n.To, data)
}

// Connections returns the number of open home connections
func (h *Home) Connections() int {
	return h.hub.ClientCount()
}

// Close ends every home connection and marks everyone offline
func (h *Home) Close() {
	h.hub.Close()
	h.presence.Reset()
}

// HomeServer upgrades home connections and runs their social actions
type HomeServer struct {
	home     *Home
	social   *social.Service
	clock    clock.Clock
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHomeServer creates a new HomeServer
func NewHomeServer(home *Home, socialService *social.Service, clk clock.Clock, logger *slog.Logger) *HomeServer {
	return &HomeServer{
		home:   home,
		social: socialService,
		clock:  clk,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "ws-home-server")),
	}
}

// Serve upgrades the request of an authenticated player and sends them
// their home snapshot
func (s *HomeServer) Serve(w http.ResponseWriter, r *http.Request, playerID model.PlayerID) error {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("ws upgrade failed", slog.String("error", err.Error()))
		return nil
	}

	client := NewClient(s.home.hub, conn, playerID)
	s.home.hub.Register(client)

	go client.writePump()
	go client.readPump(s.handle)

	s.sendSnapshot(playerID)
	s.logger.Info("home connection established", slog.String("player_id", string(playerID)))
	return nil
}

func (s *HomeServer) handle(c *Client, message []byte) {
	ctx := context.Background()

	var action HomeAction
	if err := json.Unmarshal(message, &action); err != nil {
		s.sendError(c.playerID, errors.New("malformed message"))
		return
	}
	other := model.PlayerID(action.Player)

	var err error
	switch action.Action {
	case HomeActionChat:
		_, err = s.social.SendMessage(ctx, c.playerID, other, action.Body)
	case HomeActionMarkRead:
		err = s.social.MarkRead(ctx, c.playerID, other)
	case HomeActionFriendRequest:
		_, err = s.social.SendRequest(ctx, c.playerID, other)
	case HomeActionAcceptFriend:
		err = s.social.AcceptRequest(ctx, c.playerID, other)
	case HomeActionDeclineFriend:
		err = s.social.DeclineRequest(ctx, c.playerID, other)
	case HomeActionRefresh:
		s.sendSnapshot(c.playerID)
	default:
		err = fmt.Errorf("unknown action %q", action.Action)
	}
	if err != nil {
		s.sendError(c.playerID, err)
	}
}

func (s *HomeServer) sendSnapshot(playerID model.PlayerID) {
	snapshot, err := s.social.Snapshot(context.Background(), playerID)
	if err != nil {
		s.sendError(playerID, err)
		return
	}
	s.home.Notify(model.Notification{
		Type:      model.NotifyHomeSnapshot,
		Timestamp: s.clock.Now(),
		To:        playerID,
		Payload:   snapshot,
	})
}

func (s *HomeServer) sendError(playerID model.PlayerID, err error) {
	s.home.Notify(model.Notification{
		Type:      model.NotifyHomeError,
		Timestamp: s.clock.Now(),
		To:        playerID,
		Payload:   model.GameErrorPayload{Message: err.Error()},
	})
}
