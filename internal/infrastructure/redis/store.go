package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/email-otp-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "otp:pending:"

// consumeScript deletes KEYS[1] only if its id field equals ARGV[1].
var consumeScript = redis.NewScript(`
if redis.call("HGET", KEYS[1], "id") == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Store keeps one hash per email: id, code and expires_at (unix millis).
// The Redis key outlives the code by the retention window so a late verify
// still reports the code as expired rather than missing.
type Store struct {
	client    *redis.Client
	retention time.Duration
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// NewStore wraps client. retention <= 0 defaults to domain.CodeTTL.
func NewStore(client *redis.Client, retention time.Duration) *Store {
	if retention <= 0 {
		retention = domain.CodeTTL
	}
	return &Store{client: client, retention: retention}
}

func (s *Store) Put(ctx context.Context, p *domain.PendingCode) error {
	key := keyFor(p.Email)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			"id", p.ID,
			"code", p.Code,
			"expires_at", p.ExpiresAt.UnixMilli(),
		)
		pipe.PExpireAt(ctx, key, p.ExpiresAt.Add(s.retention))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put pending code: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, email string) (*domain.PendingCode, error) {
	fields, err := s.client.HGetAll(ctx, keyFor(email)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get pending code: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("pending code: %w", domain.ErrNotFound)
	}
	return fromHash(email, fields)
}

func (s *Store) Delete(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, keyFor(email)).Err(); err != nil {
		return fmt.Errorf("redis delete pending code: %w", err)
	}
	return nil
}

// Consume deletes the hash for email only while it still holds issuance id.
// The check and the delete run as one script, so concurrent callers cannot
// both succeed.
func (s *Store) Consume(ctx context.Context, email, id string) (bool, error) {
	n, err := consumeScript.Run(ctx, s.client, []string{keyFor(email)}, id).Int()
	if err != nil {
		return false, fmt.Errorf("redis consume pending code: %w", err)
	}
	return n == 1, nil
}

func keyFor(email string) string {
	return keyPrefix + email
}

func fromHash(email string, fields map[string]string) (*domain.PendingCode, error) {
	code, ok := fields["code"]
	if !ok || code == "" {
		return nil, errors.New("redis pending code: missing code field")
	}
	ms, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("redis pending code: bad expires_at: %w", err)
	}
	return &domain.PendingCode{
		ID:        fields["id"],
		Email:     email,
		Code:      code,
		ExpiresAt: time.UnixMilli(ms),
	}, nil
}
