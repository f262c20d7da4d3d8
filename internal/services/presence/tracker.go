package presence

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/mcoot/backgammon/internal/model"
)

// Tracker records which players have a live home connection. It is owned by
// the application and injected into the services that need it.
type Tracker struct {
	mu       sync.RWMutex
	online   map[model.PlayerID]struct{}
	watchers []func(playerID model.PlayerID, online bool)
	logger   *slog.Logger
}

// New creates an empty Tracker
func New(logger *slog.Logger) *Tracker {
	return &Tracker{
		online: make(map[model.PlayerID]struct{}),
		logger: logger.With(slog.String("component", "presence")),
	}
}

// Watch registers fn to run after every change of a player's presence
func (t *Tracker) Watch(fn func(playerID model.PlayerID, online bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.watchers = append(t.watchers, fn)
}

// SetOnline marks a player online and reports whether that changed anything
func (t *Tracker) SetOnline(playerID model.PlayerID) bool {
	return t.set(playerID, true)
}

// SetOffline marks a player offline and reports whether that changed anything
func (t *Tracker) SetOffline(playerID model.PlayerID) bool {
	return t.set(playerID, false)
}

func (t *Tracker) set(playerID model.PlayerID, online bool) bool {
	t.mu.Lock()
	_, was := t.online[playerID]
	if was == online {
		t.mu.Unlock()
		return false
	}
	if online {
		t.online[playerID] = struct{}{}
	} else {
		delete(t.online, playerID)
	}
	watchers := append([]func(model.PlayerID, bool){}, t.watchers...)
	count := len(t.online)
	t.mu.Unlock()

	t.logger.Debug("presence changed",
		slog.String("player_id", string(playerID)),
		slog.Bool("online", online),
		slog.Int("online_count", count))
	for _, fn := range watchers {
		fn(playerID, online)
	}
	return true
}

// IsOnline reports whether the player has a live home connection
func (t *Tracker) IsOnline(playerID model.PlayerID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.online[playerID]
	return ok
}

// Online returns every online player, sorted
func (t *Tracker) Online() []model.PlayerID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]model.PlayerID, 0, len(t.online))
	for id := range t.online {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Reset marks everyone offline without notifying watchers
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.online = make(map[model.PlayerID]struct{})
}
