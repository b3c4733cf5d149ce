package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

const finishedSessionsKey = "sessions:finished"

var ErrSessionNotArchived = errors.New("session not archived")

// ArchiveRepository keeps finished sessions. In-progress games are never written here.
type ArchiveRepository interface {
	Save(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	ListRecent(ctx context.Context, limit int64) ([]*entity.Session, error)
}

type dbArchive struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewArchiveRepository stores sessions for ttl; zero keeps them forever.
func NewArchiveRepository(client *redis.Client, ttl time.Duration) ArchiveRepository {
	return &dbArchive{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Save writes one entry per finished game. A session code handed out again later
// gets a new entry and GetByID resolves to the newest one.
func (that *dbArchive) Save(ctx context.Context, session *entity.Session) error {
	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("could not marshal session: %w", err)
	}

	now := that.now()
	entry := entryID(session.ID, now)

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, entryKey(entry), sessionJSON, that.ttl)
		pipe.Set(ctx, latestKey(session.ID), entry, that.ttl)
		pipe.ZAdd(ctx, finishedSessionsKey, redis.Z{
			Score:  float64(now.UnixMilli()),
			Member: entry,
		})

		if that.ttl > 0 {
			cutoff := now.Add(-that.ttl).UnixMilli()
			pipe.ZRemRangeByScore(ctx, finishedSessionsKey, "-inf", "("+strconv.FormatInt(cutoff, 10))
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to archive session: %w", err)
	}

	return nil
}

func (that *dbArchive) GetByID(ctx context.Context, id string) (*entity.Session, error) {
	entry, err := that.client.Get(ctx, latestKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotArchived
	}

	if err != nil {
		return nil, fmt.Errorf("failed to resolve session id: %w", err)
	}

	response, err := that.client.Get(ctx, entryKey(entry)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotArchived
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	var session entity.Session
	if err = json.Unmarshal([]byte(response), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

// ListRecent returns the newest archived sessions first. Expired entries are skipped.
func (that *dbArchive) ListRecent(ctx context.Context, limit int64) ([]*entity.Session, error) {
	entries, err := that.client.ZRevRange(ctx, finishedSessionsKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list finished sessions: %w", err)
	}

	sessions := make([]*entity.Session, 0, len(entries))
	if len(entries) == 0 {
		return sessions, nil
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		keys = append(keys, entryKey(entry))
	}

	values, err := that.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get finished sessions: %w", err)
	}

	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}

		var session entity.Session
		if err = json.Unmarshal([]byte(raw), &session); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session: %w", err)
		}

		sessions = append(sessions, &session)
	}

	return sessions, nil
}

func entryID(id string, finishedAt time.Time) string {
	return id + ":" + strconv.FormatInt(finishedAt.UnixMilli(), 10)
}

func entryKey(entry string) string {
	return "session:" + entry
}

func latestKey(id string) string {
	return "session:" + id + ":latest"
}
