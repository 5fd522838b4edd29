package snapshot

import (
	"context"
	"encoding/json"

	snapshotv1 "github.com/quantonr/exchange/internal/domain/snapshot/v1"
	"github.com/quantonr/exchange/pkg/errors"
	"github.com/quantonr/exchange/pkg/logger"
	"github.com/quantonr/exchange/pkg/redis"
)

const keyPrefix = "book-snapshot:"

// Store persists book snapshots in Redis, one key per symbol.
type Store struct {
	logger      *logger.Logger
	redisclient redis.Client
}

// NewSnapshotStore creates a new snapshot store backed by the given Redis
// client.
func NewSnapshotStore(redisclient redis.Client, logger *logger.Logger) *Store {
	return &Store{
		redisclient: redisclient,
		logger:      logger,
	}
}

// Store serializes the snapshot and stores it in Redis.
func (s *Store) Store(ctx context.Context, snapshot *snapshotv1.Snapshot) error {
	s.logger.InfoContext(ctx, "Storing snapshot",
		logger.Field{Key: "symbol", Value: snapshot.Symbol},
		logger.Field{Key: "orders", Value: len(snapshot.Orders)},
	)

	buf, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "symbol",
			Value: snapshot.Symbol,
		})
		return errors.NewTracer("snapshot_marshal_error").Wrap(err)
	}

	if err := s.redisclient.Set(ctx, keyPrefix+snapshot.Symbol, buf, 0); err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "symbol",
			Value: snapshot.Symbol,
		})
		return errors.NewTracer("snapshot_store_error").Wrap(err)
	}

	return nil
}

// Load loads the snapshot of one symbol from Redis. A missing snapshot
// returns nil without error.
func (s *Store) Load(ctx context.Context, symbol string) (*snapshotv1.Snapshot, error) {
	data, err := s.redisclient.Get(ctx, keyPrefix+symbol)
	if err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "symbol",
			Value: symbol,
		})
		return nil, errors.NewTracer("snapshot_load_error").Wrap(err)
	}

	if data == "" {
		s.logger.WarnContext(ctx, "No snapshot found", logger.Field{
			Key:   "symbol",
			Value: symbol,
		})
		return nil, nil
	}

	var snapshot snapshotv1.Snapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "symbol",
			Value: symbol,
		})
		return nil, errors.NewTracer("snapshot_unmarshal_error").Wrap(err)
	}

	return &snapshot, nil
}
