package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRecorder stores samples in a sorted set scored by timestamp and
// counters in a hash, so several server replicas share one view.
type RedisRecorder struct {
	client *redis.Client
	policy Policy
	prefix string
	now    func() time.Time
}

func NewRedisRecorder(client *redis.Client, p Policy, prefix string) *RedisRecorder {
	if prefix == "" {
		prefix = "creatorcalc:metrics"
	}
	return &RedisRecorder{client: client, policy: p, prefix: prefix, now: func() time.Time { return time.Now().UTC() }}
}

// ConnectRedis accepts either a redis:// URL or a bare host:port.
func ConnectRedis(redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

// incrCounter mirrors MemoryRecorder.counterKey atomically on the server.
const incrCounter = `
local name = ARGV[1]
local max = tonumber(ARGV[3])
if max > 0 and redis.call('HEXISTS', KEYS[1], name) == 0 and redis.call('HLEN', KEYS[1]) >= max then
	name = ARGV[4]
end
return redis.call('HINCRBYFLOAT', KEYS[1], name, ARGV[2])
`

func (r *RedisRecorder) samplesKey() string  { return r.prefix + ":samples" }
func (r *RedisRecorder) countersKey() string { return r.prefix + ":counters" }

func (r *RedisRecorder) Record(ctx context.Context, m Metric) error {
	if err := m.Validate(); err != nil {
		return err
	}
	m = stamp(m, r.now)
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal metric: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZAdd(ctx, r.samplesKey(), redis.Z{Score: float64(m.Timestamp.UnixNano()), Member: raw})
		p.Eval(ctx, incrCounter, []string{r.countersKey()}, m.Name, counterDelta(m), r.policy.MaxCounters, OverflowCounter)
		if r.policy.MaxSamples > 0 {
			p.ZRemRangeByRank(ctx, r.samplesKey(), 0, int64(-r.policy.MaxSamples-1))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record metric: %w", err)
	}
	return nil
}

func (r *RedisRecorder) Snapshot(ctx context.Context) (Snapshot, error) {
	members, err := r.client.ZRange(ctx, r.samplesKey(), 0, -1).Result()
	if err != nil {
		return Snapshot{}, fmt.Errorf("read samples: %w", err)
	}
	rawCounters, err := r.client.HGetAll(ctx, r.countersKey()).Result()
	if err != nil {
		return Snapshot{}, fmt.Errorf("read counters: %w", err)
	}

	samples := make([]Metric, 0, len(members))
	for _, raw := range members {
		var m Metric
		if json.Unmarshal([]byte(raw), &m) == nil {
			samples = append(samples, m)
		}
	}
	counters := make(map[string]float64, len(rawCounters))
	for k, v := range rawCounters {
		if f, convErr := strconv.ParseFloat(v, 64); convErr == nil {
			counters[k] = f
		}
	}
	return summarize(samples, counters, r.now(), r.policy.MaxErrors), nil
}

func (r *RedisRecorder) Prune(ctx context.Context, now time.Time) (int, error) {
	var dropped int64
	if r.policy.MaxAge > 0 {
		cutoff := now.Add(-r.policy.MaxAge).UnixNano()
		n, err := r.client.ZRemRangeByScore(ctx, r.samplesKey(), "-inf", "("+strconv.FormatInt(cutoff, 10)).Result()
		if err != nil {
			return 0, fmt.Errorf("prune by age: %w", err)
		}
		dropped += n
	}
	if r.policy.MaxSamples > 0 {
		n, err := r.client.ZRemRangeByRank(ctx, r.samplesKey(), 0, int64(-r.policy.MaxSamples-1)).Result()
		if err != nil {
			return int(dropped), fmt.Errorf("prune by size: %w", err)
		}
		dropped += n
	}
	return int(dropped), nil
}
