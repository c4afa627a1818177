package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// Redis is a Gateway shared by several processes. Keys live under a
// namespace prefix; every write is announced on a pub/sub channel so other
// handles can apply it.
type Redis struct {
	rdb       *goredis.Client
	namespace string
	channel   string
	origin    string
}

type redisChange struct {
	Origin    string `json:"origin"`
	Namespace string `json:"namespace"`
	Change
}

// NewRedis wraps a connected client. namespace is prepended to every key.
// An empty channel defaults to namespace+"changes". Handles under other
// namespaces may share a channel; their changes are ignored.
func NewRedis(rdb *goredis.Client, namespace, channel string) *Redis {
	if channel == "" {
		channel = namespace + "changes"
	}
	return &Redis{
		rdb:       rdb,
		namespace: namespace,
		channel:   channel,
		origin:    uuid.NewString(),
	}
}

// DialRedis connects to addr and verifies the connection with a ping.
func DialRedis(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.rdb.Get(ctx, r.namespace+key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.rdb.Set(ctx, r.namespace+key, value, 0).Err(); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return r.publish(ctx, Change{Key: key, NewValue: strPtr(value)})
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	n, err := r.rdb.Del(ctx, r.namespace+key).Result()
	if err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	if n == 0 {
		return nil
	}
	return r.publish(ctx, Change{Key: key})
}

func (r *Redis) Keys(ctx context.Context) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := r.rdb.Scan(ctx, cursor, r.namespace+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scan keys: %w", err)
		}
		for _, k := range batch {
			keys = append(keys, strings.TrimPrefix(k, r.namespace))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Watch subscribes to the change channel.
func (r *Redis) Watch(ctx context.Context, fn func(Change)) error {
	sub := r.rdb.Subscribe(ctx, r.channel)

	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var rc redisChange
				if err := json.Unmarshal([]byte(m.Payload), &rc); err != nil {
					continue
				}
				if rc.Origin == r.origin || rc.Namespace != r.namespace {
					continue
				}
				fn(rc.Change)
			}
		}
	}()
	return nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.rdb.Close()
}

func (r *Redis) publish(ctx context.Context, c Change) error {
	raw, err := json.Marshal(redisChange{Origin: r.origin, Namespace: r.namespace, Change: c})
	if err != nil {
		return err
	}
	if err := r.rdb.Publish(ctx, r.channel, raw).Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}
