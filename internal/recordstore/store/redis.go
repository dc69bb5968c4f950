package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"recordsync/internal/records/models"
)

const (
	redisSeqKey        = "records:seq"
	redisIndexKey      = "records:ids"
	redisItemKeyPrefix = "records:item:"
)

// RedisStore keeps one hash per record, a sorted set of ids scored by their
// numeric value, and an INCR counter for id assignment.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func itemKey(id int64) string {
	return redisItemKeyPrefix + strconv.FormatInt(id, 10)
}

func fieldsToHash(f models.Fields) map[string]any {
	h := make(map[string]any, len(models.AllFields()))
	for _, field := range models.AllFields() {
		h[field.String()] = f.Get(field)
	}
	return h
}

func hashToFields(h map[string]string) models.Fields {
	var f models.Fields
	for _, field := range models.AllFields() {
		// With only fails on unknown fields.
		f, _ = f.With(field, h[field.String()])
	}
	return f
}

func (s *RedisStore) List(ctx context.Context) ([]models.Record, error) {
	ids, err := s.client.ZRange(ctx, redisIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list record ids: %w", err)
	}
	if len(ids) == 0 {
		return []models.Record{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, redisItemKeyPrefix+id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	out := make([]models.Record, 0, len(ids))
	for i, cmd := range cmds {
		h := cmd.Val()
		if len(h) == 0 {
			// deleted between ZRANGE and HGETALL
			continue
		}
		out = append(out, models.Record{ID: models.RecordID(ids[i]), Fields: hashToFields(h)})
	}
	return out, nil
}

func (s *RedisStore) Get(ctx context.Context, id models.RecordID) (models.Record, error) {
	n, err := parseID(id)
	if err != nil {
		return models.Record{}, err
	}
	h, err := s.client.HGetAll(ctx, itemKey(n)).Result()
	if err != nil {
		return models.Record{}, fmt.Errorf("get record %s: %w", id, err)
	}
	if len(h) == 0 {
		return models.Record{}, notFound(id)
	}
	return models.Record{ID: formatID(n), Fields: hashToFields(h)}, nil
}

func (s *RedisStore) Create(ctx context.Context, fields models.Fields) (models.Record, error) {
	n, err := s.client.Incr(ctx, redisSeqKey).Result()
	if err != nil {
		return models.Record{}, fmt.Errorf("assign record id: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, itemKey(n), fieldsToHash(fields))
		pipe.ZAdd(ctx, redisIndexKey, redis.Z{Score: float64(n), Member: strconv.FormatInt(n, 10)})
		return nil
	})
	if err != nil {
		return models.Record{}, fmt.Errorf("create record: %w", err)
	}
	return models.Record{ID: formatID(n), Fields: fields}, nil
}

// replaceScript writes the hash only while the record exists, so a late
// write cannot resurrect a deleted record. Concurrent replaces of the same
// record all apply in arrival order.
var replaceScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 0
end
redis.call("HSET", KEYS[1], unpack(ARGV))
return 1
`)

func (s *RedisStore) Replace(ctx context.Context, id models.RecordID, fields models.Fields) (models.Record, error) {
	n, err := parseID(id)
	if err != nil {
		return models.Record{}, err
	}

	args := make([]any, 0, 2*len(models.AllFields()))
	for _, field := range models.AllFields() {
		args = append(args, field.String(), fields.Get(field))
	}
	written, err := replaceScript.Run(ctx, s.client, []string{itemKey(n)}, args...).Int()
	if err != nil {
		return models.Record{}, fmt.Errorf("replace record %s: %w", id, err)
	}
	if written == 0 {
		return models.Record{}, notFound(id)
	}
	return models.Record{ID: formatID(n), Fields: fields}, nil
}

func (s *RedisStore) Delete(ctx context.Context, id models.RecordID) error {
	n, err := parseID(id)
	if err != nil {
		return err
	}
	var del *redis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, itemKey(n))
		pipe.ZRem(ctx, redisIndexKey, strconv.FormatInt(n, 10))
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	if del.Val() == 0 {
		return notFound(id)
	}
	return nil
}
