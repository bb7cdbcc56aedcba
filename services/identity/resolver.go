// Package identity resolves Supabase subjects to local user records,
// linking the two identity sources on first sight.
package identity

import (
	"context"

	"github.com/claraconfirms/backend/models"
	"github.com/claraconfirms/backend/repositories"
	"go.uber.org/zap"
)

// Resolver maps Supabase subjects to local users. Results are cached; the
// user store remains the source of truth and is re-read whenever the cache
// misses or an entry has expired.
type Resolver struct {
	users  repositories.UserRepository
	cache  *Cache
	logger *zap.Logger
}

// NewResolver creates a Resolver backed by the given user store and cache
func NewResolver(users repositories.UserRepository, cache *Cache, logger *zap.Logger) *Resolver {
	return &Resolver{
		users:  users,
		cache:  cache,
		logger: logger,
	}
}

// Resolve finds the local user for a Supabase subject.
//
// Lookup order: cache, store by Supabase UID, store by email hint. When the
// email lookup finds a user that has never signed in through Supabase, the
// subject is linked to that account and the link persisted — a locally
// registered user signing in via Supabase for the first time is merged, not
// duplicated. Two concurrent first-sight resolutions may both attempt the
// link; the write is idempotent so both succeed.
//
// Returns (nil, nil) when no user matches; errors only on store faults.
func (r *Resolver) Resolve(ctx context.Context, supabaseUID, emailHint string) (*models.User, error) {
	if supabaseUID == "" {
		return nil, nil
	}

	if user := r.cache.Get(supabaseUID); user != nil {
		r.logger.Debug("identity cache hit", zap.String("supabase_uid", supabaseUID))
		return user, nil
	}

	user, err := r.users.GetBySupabaseUID(ctx, supabaseUID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		r.cache.Set(supabaseUID, user)
		return user, nil
	}

	if emailHint == "" {
		return nil, nil
	}

	user, err = r.users.GetByEmail(ctx, emailHint)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	if !user.HasSupabaseIdentity() {
		if err := r.users.LinkSupabaseUID(ctx, user.ID, supabaseUID); err != nil {
			return nil, err
		}
		uid := supabaseUID
		user.SupabaseUID = &uid
		r.logger.Info("linked supabase identity to existing account",
			zap.String("user_id", user.ID.String()),
			zap.String("supabase_uid", supabaseUID))
	} else if *user.SupabaseUID != supabaseUID {
		// The email belongs to an account already linked to a different
		// Supabase subject; do not steal the account.
		r.logger.Warn("email matches a user linked to a different supabase subject",
			zap.String("user_id", user.ID.String()))
		return nil, nil
	}

	r.cache.Set(supabaseUID, user)
	return user, nil
}

// Invalidate drops the cached snapshot for a single Supabase subject.
// Called by collaborators whenever a user's credentials change.
func (r *Resolver) Invalidate(supabaseUID string) {
	r.cache.Invalidate(supabaseUID)
}

// InvalidateAll drops every cached snapshot
func (r *Resolver) InvalidateAll() {
	r.cache.InvalidateAll()
}
