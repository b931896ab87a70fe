package infra

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"enlistment-gateway/enlistment/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStatsStore grava contadores de resultado em hashes do Redis:
//
//	<prefix>:total                 outcome -> n
//	<prefix>:section:<id>          outcome -> n
//	<prefix>:minute:<yyyymmddhhmm> outcome -> n (expira em ttl)
//	<prefix>:student:<id>          outcome -> n (opcional, expira em ttl)
type RedisStatsStore struct {
	rdb redis.Cmdable

	prefix string
	// ttl aplica apenas em chaves de série temporal / por aluno.
	// total e por turma são cumulativos e não expiram.
	ttl time.Duration

	bucket string // "minute" (padrão) ou "none"

	trackStudents bool
}

var (
	_ domain.StatsStore  = (*RedisStatsStore)(nil)
	_ domain.StatsReader = (*RedisStatsStore)(nil)
)

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func WithStatsTrackStudents(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackStudents = track }
}

func NewRedisStatsStore(rdb redis.Cmdable, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "enlistment:stats",
		ttl:    24 * time.Hour,
		bucket: "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStatsStore) Prefix() string { return s.prefix }

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	field := string(ev.Outcome)
	if field == "" {
		field = string(domain.OutcomeInvalid)
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)

	if sec := strings.TrimSpace(ev.SectionID); sec != "" {
		pipe.HIncrBy(ctx, s.prefix+":section:"+sec, field, 1)
	}

	if s.bucket == "minute" {
		bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
		pipe.HIncrBy(ctx, bucketKey, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, bucketKey, s.ttl)
		}
	}

	if s.trackStudents {
		studentKey := s.prefix + ":student:" + strconv.Itoa(ev.StudentID)
		pipe.HIncrBy(ctx, studentKey, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, studentKey, s.ttl)
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}

// SectionCounts lê o hash <prefix>:section:<id>. Implementa domain.StatsReader.
func (s *RedisStatsStore) SectionCounts(ctx context.Context, sectionID string) (map[domain.Outcome]int64, error) {
	if s == nil || s.rdb == nil {
		return map[domain.Outcome]int64{}, nil
	}
	raw, err := s.rdb.HGetAll(ctx, s.prefix+":section:"+sectionID).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[domain.Outcome]int64, len(raw))
	for k, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("section %s field %s: %w", sectionID, k, err)
		}
		out[domain.Outcome(k)] = n
	}
	return out, nil
}
