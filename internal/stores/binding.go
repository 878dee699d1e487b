package stores

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/vaporisers/reelist/internal/models"
	"github.com/vaporisers/reelist/internal/shared"
)

// Binding keeps a WatchlistStore aligned with a SessionStore's identity.
//
// On every identity change it re-keys the watchlist: identity present means
// load that user's collection; identity absent means clear the collection
// locally with zero backend calls. This is what empties the watchlist on
// logout without the logout path knowing the watchlist exists.
//
// The binding is the only writer of the watchlist's user ID.
type Binding struct {
	ctx       context.Context
	watchlist *WatchlistStore
	logger    *log.Logger
}

// BindWatchlist subscribes the watchlist to the session's identity changes.
//
// The context bounds the reloads the binding issues; cancelling it stops
// future reloads but does not unsubscribe.
func BindWatchlist(ctx context.Context, session *SessionStore, watchlist *WatchlistStore, logger *log.Logger) *Binding {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	b := &Binding{ctx: ctx, watchlist: watchlist, logger: logger}
	session.Subscribe(b.onIdentity)
	return b
}

func (b *Binding) onIdentity(identity *models.Identity) {
	if identity == nil {
		b.logger.Debug("identity cleared, emptying watchlist")
		b.watchlist.clear()
		return
	}

	b.watchlist.setUser(identity.ID)
	if err := b.watchlist.Load(b.ctx, identity.ID); err != nil {
		b.logger.Error("failed to reload watchlist after identity change",
			"user_id", identity.ID, "error", err)
	}
}
