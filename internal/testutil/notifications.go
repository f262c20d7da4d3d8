package testutil

import (
	"sync"

	"github.com/mcoot/backgammon/internal/model"
)

// Notifications records every notification it is given
type Notifications struct {
	mu   sync.Mutex
	sent []model.Notification
}

// Notify records n
func (r *Notifications) Notify(n model.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

// For returns the notifications addressed to a player, in order
func (r *Notifications) For(to model.PlayerID) []model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Notification
	for _, n := range r.sent {
		if n.To == to {
			out = append(out, n)
		}
	}
	return out
}

// Reset forgets everything recorded so far
func (r *Notifications) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}
