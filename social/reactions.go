package social

import (
	"context"
	"errors"
	"slices"

	"go.uber.org/zap"

	"github.com/pulsefeed/pulse/app"
	"github.com/pulsefeed/pulse/domain"
	"github.com/pulsefeed/pulse/store"
)

// Reactions toggles likes. A toggle is one transactional mutation: the
// ownership check, the set-add or set-remove, and the counter change
// commit together, so the likes array and likesCount can never diverge
// and concurrent double-likes collapse into one.
type Reactions struct {
	st      store.Store
	session app.SessionService
	log     *zap.Logger
}

var _ app.ReactionService = (*Reactions)(nil)

func NewReactions(st store.Store, session app.SessionService, log *zap.Logger) *Reactions {
	return &Reactions{st: st, session: session, log: log}
}

// ToggleLike adds or removes the caller from a post's like set.
func (r *Reactions) ToggleLike(ctx context.Context, postID string, currentlyLiked bool) error {
	user, ok := r.session.Current()
	if !ok {
		return domain.ErrUnauthorized
	}

	return r.st.RunTransaction(ctx, func(tx store.Tx) error {
		post, err := tx.Get(colPosts, postID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if !currentlyLiked && post.Str("userId") == user.UID {
			return domain.ErrSelfLike
		}
		liked := slices.Contains(post.Strs("likes"), user.UID)
		if liked != currentlyLiked {
			// The caller's view was stale; the toggle already happened.
			return nil
		}
		if currentlyLiked {
			return tx.Update(colPosts, postID,
				store.ArrayRemove("likes", user.UID),
				store.Increment("likesCount", -1),
			)
		}
		return tx.Update(colPosts, postID,
			store.ArrayUnion("likes", user.UID),
			store.Increment("likesCount", 1),
		)
	})
}
