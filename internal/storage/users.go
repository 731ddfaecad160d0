package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

// UserRepository reads and writes bot users.
// Get returns nil, nil when the user does not exist.
type UserRepository interface {
	Get(ctx context.Context, id int64) (*User, error)
	Save(ctx context.Context, user *User) error
}

type GormUsers struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *GormUsers {
	return &GormUsers{db: db}
}

func (r *GormUsers) Get(ctx context.Context, id int64) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &u, nil
}

// Save inserts or updates the user.
func (r *GormUsers) Save(ctx context.Context, user *User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("failed to save user %d: %w", user.ID, err)
	}
	return nil
}

// CachedUsers keeps recently read users in memory.
// Every update goes through the cache, so it never serves stale rows
// written by this process.
type CachedUsers struct {
	next  UserRepository
	cache *cache.Cache
}

// NewCachedUsers caches users for ttl, purging expired entries every 2*ttl.
func NewCachedUsers(next UserRepository, ttl time.Duration) *CachedUsers {
	return &CachedUsers{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func cacheKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (c *CachedUsers) Get(ctx context.Context, id int64) (*User, error) {
	if x, found := c.cache.Get(cacheKey(id)); found {
		u := *x.(*User)
		return &u, nil
	}

	u, err := c.next.Get(ctx, id)
	if err != nil || u == nil {
		return u, err
	}
	stored := *u
	c.cache.Set(cacheKey(id), &stored, cache.DefaultExpiration)
	return u, nil
}

func (c *CachedUsers) Save(ctx context.Context, user *User) error {
	if err := c.next.Save(ctx, user); err != nil {
		c.cache.Delete(cacheKey(user.ID))
		return err
	}
	stored := *user
	c.cache.Set(cacheKey(user.ID), &stored, cache.DefaultExpiration)
	return nil
}
