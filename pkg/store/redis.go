package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	ferrors "github.com/matzehuels/framecraft/pkg/errors"
	"github.com/matzehuels/framecraft/pkg/template"
)

// DefaultRedisPrefix namespaces template keys.
const DefaultRedisPrefix = "framecraft:"

// RedisStore keeps each template under "<prefix>template:<id>" and the set
// of ids under "<prefix>templates".
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

type redisEntry struct {
	Document  json.RawMessage `json:"document"`
	Frames    int             `json:"frames"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewRedisStore connects to url (redis://[:password@]host:port/db).
func NewRedisStore(ctx context.Context, url, prefix string) (*RedisStore, error) {
	if url == "" {
		return nil, ferrors.New(ferrors.ErrCodeInvalidInput, "redis store requires a URL")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return NewRedisStoreFromClient(client, prefix), nil
}

// NewRedisStoreFromClient wraps an existing client. The store owns the
// client and closes it on Close.
func NewRedisStoreFromClient(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(id string) string { return s.prefix + "template:" + id }
func (s *RedisStore) index() string        { return s.prefix + "templates" }

func (s *RedisStore) Get(ctx context.Context, id string) (*template.Document, error) {
	if err := ferrors.ValidateID(id); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	var e redisEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("parse template entry: %w", err)
	}
	return template.Decode(e.Document)
}

func (s *RedisStore) Put(ctx context.Context, id string, doc *template.Document) error {
	if err := checkPut(id, doc); err != nil {
		return err
	}
	body, err := encode(doc)
	if err != nil {
		return err
	}
	data, err := json.Marshal(redisEntry{Document: body, Frames: len(doc.Frames), UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal template entry: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.key(id), data, 0)
		p.SAdd(ctx, s.index(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("put template: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		del = p.Del(ctx, s.key(id))
		p.SRem(ctx, s.index(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if del.Val() == 0 {
		return notFound(id)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]Summary, error) {
	ids, err := s.client.SMembers(ctx, s.index()).Result()
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	if len(ids) == 0 {
		return []Summary{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	out := make([]Summary, 0, len(ids))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var e redisEntry
		if json.Unmarshal([]byte(raw), &e) != nil {
			continue
		}
		out = append(out, Summary{ID: ids[i], Frames: e.Frames, UpdatedAt: e.UpdatedAt})
	}
	sortSummaries(out)
	return out, nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
