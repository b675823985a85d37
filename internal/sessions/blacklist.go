package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const blacklistPrefix = "blacklist:access:"

// RevocationStore keeps revoked access tokens until they would have expired.
type RevocationStore interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	Revoked(ctx context.Context, token string) (bool, error)
}

// Blacklist records revoked access tokens. A nil Blacklist, or one without a
// store, is a no-op.
type Blacklist struct {
	store RevocationStore
}

// NewBlacklist stores revocations in Redis as keys with a TTL.
func NewBlacklist(c *redis.Client) *Blacklist {
	if c == nil {
		return &Blacklist{}
	}
	return &Blacklist{store: redisRevocations{client: c}}
}

// NewMongoBlacklist stores revocations in col, which carries a TTL index on
// expiresAt.
func NewMongoBlacklist(col *mongo.Collection) *Blacklist {
	return &Blacklist{store: &mongoRevocations{col: col, now: time.Now}}
}

// NewMemoryBlacklist keeps revocations in process.
func NewMemoryBlacklist() *Blacklist {
	return &Blacklist{store: newMemoryRevocations(time.Now)}
}

func (b *Blacklist) enabled() bool { return b != nil && b.store != nil }

// Add stores the given token with TTL. Non-positive TTLs are ignored since the
// token is already expired.
func (b *Blacklist) Add(ctx context.Context, token string, ttl time.Duration) error {
	if !b.enabled() || ttl <= 0 {
		return nil
	}
	return b.store.Revoke(ctx, token, ttl)
}

// Contains returns true when the token exists in the blacklist.
func (b *Blacklist) Contains(ctx context.Context, token string) (bool, error) {
	if !b.enabled() {
		return false, nil
	}
	return b.store.Revoked(ctx, token)
}

type redisRevocations struct {
	client *redis.Client
}

func (r redisRevocations) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	return r.client.Set(ctx, blacklistPrefix+token, "1", ttl).Err()
}

func (r redisRevocations) Revoked(ctx context.Context, token string) (bool, error) {
	exists, err := r.client.Exists(ctx, blacklistPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

// mongoRevocations filters on expiresAt as well, since the TTL monitor only
// sweeps about once a minute.
type mongoRevocations struct {
	col *mongo.Collection
	now func() time.Time
}

func (r *mongoRevocations) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": token},
		bson.M{"$set": bson.M{"expiresAt": r.now().UTC().Add(ttl)}},
		options.Update().SetUpsert(true))
	return err
}

func (r *mongoRevocations) Revoked(ctx context.Context, token string) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": token, "expiresAt": bson.M{"$gt": r.now().UTC()}})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type memoryRevocations struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

func newMemoryRevocations(now func() time.Time) *memoryRevocations {
	return &memoryRevocations{expires: map[string]time.Time{}, now: now}
}

func (m *memoryRevocations) Revoke(_ context.Context, token string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for t, exp := range m.expires {
		if !exp.After(now) {
			delete(m.expires, t)
		}
	}
	m.expires[token] = now.Add(ttl)
	return nil
}

func (m *memoryRevocations) Revoked(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.expires[token]
	return ok && exp.After(m.now()), nil
}
