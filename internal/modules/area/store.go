// README: Area status cache backed by Redis string keys with a TTL.
package area

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	statusKeyPrefix = "area:status:%s"
	// Cached readings older than this are re-polled even if the poller stalls.
	statusTTL = 5 * time.Minute
)

type Store struct {
	redis *redis.Client
}

func NewStore(redis *redis.Client) *Store {
	return &Store{redis: redis}
}

// Get returns the cached status for an area and whether one was present.
func (s *Store) Get(ctx context.Context, area string) (Status, bool, error) {
	raw, err := s.redis.Get(ctx, statusKey(area)).Bytes()
	if err == redis.Nil {
		return Status{}, false, nil
	}
	if err != nil {
		return Status{}, false, err
	}
	var st Status
	if err := json.Unmarshal(raw, &st); err != nil {
		return Status{}, false, fmt.Errorf("decode cached area status: %w", err)
	}
	return st, true, nil
}

func (s *Store) Put(ctx context.Context, st Status) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, statusKey(st.Area), raw, statusTTL).Err()
}

func statusKey(area string) string {
	return fmt.Sprintf(statusKeyPrefix, area)
}
