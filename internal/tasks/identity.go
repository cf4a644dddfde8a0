package tasks

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/vthunder/taskdesk/internal/integrations/notion"
	"github.com/vthunder/taskdesk/internal/logging"
	"github.com/vthunder/taskdesk/internal/metrics"
)

const (
	defaultUserCacheSize = 256
	defaultUserCacheTTL  = 10 * time.Minute
)

// identityCache maps lower-cased email to a resolved identity. Only hits are
// cached so a user invited later is found on the next lookup.
type identityCache struct {
	lru *expirable.LRU[string, Identity]
}

func newIdentityCache(size int, ttl time.Duration) *identityCache {
	if size <= 0 {
		size = defaultUserCacheSize
	}
	if ttl <= 0 {
		ttl = defaultUserCacheTTL
	}
	return &identityCache{lru: expirable.NewLRU[string, Identity](size, nil, ttl)}
}

func (c *identityCache) get(email string) (Identity, bool) {
	id, ok := c.lru.Get(email)
	if ok {
		metrics.IdentityCacheLookups.WithLabelValues("hit").Inc()
	} else {
		metrics.IdentityCacheLookups.WithLabelValues("miss").Inc()
	}
	return id, ok
}

func (c *identityCache) add(email string, id Identity) {
	c.lru.Add(email, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ResolveIdentity maps an email address to a workspace user, listing every
// user page until a match is found.
func (m *Manager) ResolveIdentity(ctx context.Context, email string) (Identity, error) {
	key := normalizeEmail(email)
	if key == "" {
		return Identity{}, &ValidationError{Field: "assignee", Value: email, Message: "email is empty"}
	}
	if id, ok := m.users.get(key); ok {
		return id, nil
	}

	ctx, cancel := m.callContext(ctx)
	defer cancel()

	var found *Identity
	_, err := notion.Paginate(ctx, func(ctx context.Context, cursor string) ([]notion.User, string, bool, error) {
		page, err := m.store.ListUsers(ctx, cursor)
		if err != nil {
			return nil, "", false, err
		}
		for _, u := range page.Results {
			if normalizeEmail(u.Email()) == key {
				found = &Identity{ID: u.ID, Name: u.Name, Email: u.Email()}
				// stop paging once matched
				return nil, "", false, nil
			}
		}
		return nil, page.NextCursor, page.HasMore, nil
	})
	if err != nil {
		return Identity{}, &RemoteError{Op: "list users", Err: err}
	}
	if found == nil {
		return Identity{}, &NotFoundError{Kind: "user", Key: email}
	}

	m.users.add(key, *found)
	logging.Debug("tasks", "resolved %s to user %s", key, found.ID)
	return *found, nil
}
