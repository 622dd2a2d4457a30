package social

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pulsefeed/pulse/app"
	"github.com/pulsefeed/pulse/domain"
	"github.com/pulsefeed/pulse/store"
)

// Profile edits the current user's profile and manages the follow
// relation. A save touches up to three places in order: blob storage
// (uploaded photo), the auth record, and the profile document; the
// session is then re-merged in place so every open view sees the new
// identity without reloading.
type Profile struct {
	st      store.Store
	auth    store.AuthClient
	blobs   store.BlobClient
	session app.SessionService
	log     *zap.Logger
}

var _ app.ProfileService = (*Profile)(nil)

func NewProfile(st store.Store, auth store.AuthClient, blobs store.BlobClient, session app.SessionService, log *zap.Logger) *Profile {
	return &Profile{st: st, auth: auth, blobs: blobs, session: session, log: log}
}

// Update applies a profile edit for the current user.
func (p *Profile) Update(ctx context.Context, upd app.ProfileUpdate) error {
	user, ok := p.session.Current()
	if !ok {
		return domain.ErrUnauthorized
	}

	photoURL, photoSet, err := p.resolvePhoto(ctx, user, upd)
	if err != nil {
		return err
	}

	fields := map[string]any{}
	var displayName string
	if upd.DisplayName != nil {
		displayName = strings.TrimSpace(*upd.DisplayName)
		fields["displayName"] = displayName
	}
	if upd.Bio != nil {
		fields["bio"] = strings.TrimSpace(*upd.Bio)
	}
	if photoSet {
		fields["photoURL"] = photoURL
	}
	if len(fields) == 0 {
		return nil
	}

	if displayName != "" || photoSet {
		if err := p.auth.UpdateProfile(ctx, displayName, photoURL); err != nil {
			return fmt.Errorf("update auth record: %w", err)
		}
	}
	if err := p.st.Set(ctx, colUsers, user.UID, fields, true); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	if err := p.session.Refresh(ctx); err != nil {
		p.log.Warn("session refresh after profile save failed", zap.Error(err))
	}
	p.log.Info("profile updated", zap.String("uid", user.UID), zap.Bool("photo", photoSet))
	return nil
}

// resolvePhoto turns the update's avatar choice into the reference to
// store: a symbolic ID as-is, or an uploaded blob URL. When new bytes
// replace a previously uploaded blob, the old one is deleted best
// effort; a leaked blob is preferable to a failed save.
func (p *Profile) resolvePhoto(ctx context.Context, user domain.User, upd app.ProfileUpdate) (string, bool, error) {
	switch {
	case upd.AvatarID != "":
		if !domain.IsAvatarID(upd.AvatarID) {
			return "", false, fmt.Errorf("unknown avatar %q", upd.AvatarID)
		}
		return upd.AvatarID, true, nil

	case len(upd.PhotoData) > 0:
		name := upd.PhotoName
		if name == "" {
			name = "avatar"
		}
		contentType := mime.TypeByExtension(filepath.Ext(name))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		url, err := p.blobs.Upload(ctx, name, upd.PhotoData, contentType)
		if err != nil {
			return "", false, fmt.Errorf("upload avatar: %w", err)
		}
		if old := user.PhotoURL; old != "" && !domain.IsAvatarID(old) {
			if err := p.blobs.Delete(ctx, old); err != nil {
				p.log.Warn("old avatar delete failed", zap.String("url", old), zap.Error(err))
			}
		}
		return url, true, nil
	}
	return "", false, nil
}

// Follow subscribes the current user to target's profile. The pair is
// unique: a second Follow for the same pair is a no-op.
func (p *Profile) Follow(ctx context.Context, targetUID string) error {
	user, ok := p.session.Current()
	if !ok {
		return domain.ErrUnauthorized
	}
	if targetUID == "" || targetUID == user.UID {
		return fmt.Errorf("cannot follow %q", targetUID)
	}

	existing, err := p.pairDocs(ctx, user.UID, targetUID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	if _, err := p.st.Add(ctx, colSubscriptions, map[string]any{
		"subscriberId": user.UID,
		"targetUserId": targetUID,
		"createdAt":    store.ServerTime,
	}); err != nil {
		return fmt.Errorf("follow: %w", err)
	}

	err = p.st.Update(ctx, colUsers, targetUID, store.Increment("subscribersCount", 1))
	if errors.Is(err, store.ErrNotFound) {
		err = p.st.Set(ctx, colUsers, targetUID, map[string]any{"subscribersCount": 1}, true)
	}
	if err != nil {
		return fmt.Errorf("bump subscriber count: %w", err)
	}
	p.log.Info("followed", zap.String("subscriber", user.UID), zap.String("target", targetUID))
	return nil
}

// Unfollow removes the relation. The subscriber counter never drops
// below zero even if it was already inconsistent.
func (p *Profile) Unfollow(ctx context.Context, targetUID string) error {
	user, ok := p.session.Current()
	if !ok {
		return domain.ErrUnauthorized
	}

	existing, err := p.pairDocs(ctx, user.UID, targetUID)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		return nil
	}
	for _, d := range existing {
		if err := p.st.Delete(ctx, colSubscriptions, d.ID); err != nil {
			return fmt.Errorf("unfollow: %w", err)
		}
	}

	target, err := p.st.Get(ctx, colUsers, targetUID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load target profile: %w", err)
	}
	count := target.Int("subscribersCount") - len(existing)
	if count < 0 {
		count = 0
	}
	if err := p.st.Set(ctx, colUsers, targetUID, map[string]any{"subscribersCount": count}, true); err != nil {
		return fmt.Errorf("drop subscriber count: %w", err)
	}
	p.log.Info("unfollowed", zap.String("subscriber", user.UID), zap.String("target", targetUID))
	return nil
}

// IsFollowing reports whether the current user follows targetUID.
func (p *Profile) IsFollowing(ctx context.Context, targetUID string) (bool, error) {
	user, ok := p.session.Current()
	if !ok {
		return false, domain.ErrUnauthorized
	}
	docs, err := p.pairDocs(ctx, user.UID, targetUID)
	if err != nil {
		return false, err
	}
	return len(docs) > 0, nil
}

func (p *Profile) pairDocs(ctx context.Context, subscriberUID, targetUID string) ([]store.Document, error) {
	q := store.Query{Collection: colSubscriptions}.
		Where("subscriberId", subscriberUID).
		Where("targetUserId", targetUID)
	docs, err := p.st.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	return docs, nil
}
