package social

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pulsefeed/pulse/app"
	"github.com/pulsefeed/pulse/domain"
)

// DefaultBulkDelay is the pause between consecutive bulk-like requests.
const DefaultBulkDelay = 500 * time.Millisecond

// Bulk likes every eligible visible post one at a time. The run is
// strictly sequential with a fixed pause between requests so the
// backend never sees a burst; per-item failures are logged and skipped,
// and cancellation stops the run after the in-flight item.
type Bulk struct {
	reactions app.ReactionService
	session   app.SessionService
	log       *zap.Logger
	delay     time.Duration
}

var _ app.BulkLiker = (*Bulk)(nil)

func NewBulk(reactions app.ReactionService, session app.SessionService, log *zap.Logger) *Bulk {
	return &Bulk{reactions: reactions, session: session, log: log, delay: DefaultBulkDelay}
}

// SetDelay overrides the inter-request pause. Tests use this to avoid
// real sleeps.
func (b *Bulk) SetDelay(d time.Duration) { b.delay = d }

// LikeAll toggles a like on every post the caller neither owns nor has
// already liked, reporting progress after each step.
func (b *Bulk) LikeAll(ctx context.Context, posts []domain.Post, onProgress func(app.BulkProgress)) (app.BulkReport, error) {
	user, ok := b.session.Current()
	if !ok {
		return app.BulkReport{}, domain.ErrUnauthorized
	}

	eligible := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		if p.IsOwn(user.UID) || p.LikedBy(user.UID) {
			continue
		}
		eligible = append(eligible, p)
	}

	report := app.BulkReport{Total: len(eligible)}
	if report.Total == 0 {
		return report, nil
	}
	b.log.Info("bulk like started", zap.Int("eligible", report.Total), zap.Int("visible", len(posts)))

	for i, p := range eligible {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := b.reactions.ToggleLike(ctx, p.ID, false); err != nil {
			b.log.Warn("bulk like skipped", zap.String("post", p.ID), zap.Error(err))
		} else {
			report.Succeeded++
		}
		if onProgress != nil {
			onProgress(app.BulkProgress{Done: i + 1, Total: report.Total, Succeeded: report.Succeeded})
		}
		if i < len(eligible)-1 {
			select {
			case <-time.After(b.delay):
			case <-ctx.Done():
				return report, ctx.Err()
			}
		}
	}

	b.log.Info("bulk like finished", zap.Int("succeeded", report.Succeeded), zap.Int("total", report.Total))
	return report, nil
}
