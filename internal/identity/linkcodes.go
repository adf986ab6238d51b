package identity

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// LinkCodes — одноразовые коды привязки Telegram-чата к аккаунту.
type LinkCodes interface {
	Put(ctx context.Context, code, accountID string, ttl time.Duration) error
	// Take возвращает аккаунт и сразу гасит код; "" — кода нет или он истёк.
	Take(ctx context.Context, code string) (string, error)
}

const linkPrefix = "portal:tglink:"

type RedisLinkCodes struct {
	client *redis.Client
}

func NewRedisLinkCodes(client *redis.Client) *RedisLinkCodes {
	return &RedisLinkCodes{client: client}
}

func (r *RedisLinkCodes) Put(ctx context.Context, code, accountID string, ttl time.Duration) error {
	return r.client.Set(ctx, linkPrefix+code, accountID, ttl).Err()
}

func (r *RedisLinkCodes) Take(ctx context.Context, code string) (string, error) {
	v, err := r.client.GetDel(ctx, linkPrefix+code).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

type linkEntry struct {
	accountID string
	expires   time.Time
}

type MemoryLinkCodes struct {
	mu     sync.Mutex
	byCode map[string]linkEntry
	now    func() time.Time
}

func NewMemoryLinkCodes() *MemoryLinkCodes {
	return &MemoryLinkCodes{byCode: make(map[string]linkEntry), now: time.Now}
}

func (m *MemoryLinkCodes) Put(_ context.Context, code, accountID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for c, e := range m.byCode {
		if !e.expires.After(now) {
			delete(m.byCode, c)
		}
	}
	m.byCode[code] = linkEntry{accountID: accountID, expires: now.Add(ttl)}
	return nil
}

func (m *MemoryLinkCodes) Take(_ context.Context, code string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byCode[code]
	if !ok {
		return "", nil
	}
	delete(m.byCode, code)
	if !e.expires.After(m.now()) {
		return "", nil
	}
	return e.accountID, nil
}
