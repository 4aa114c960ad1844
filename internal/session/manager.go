package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/park285/cheese-checkers/internal/checkers"
	"github.com/park285/cheese-checkers/internal/obslog"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultTTL = 24 * time.Hour

// Manager keeps game sessions in Redis and archives finished games.
type Manager struct {
	rdb     *redis.Client
	ttl     time.Duration
	results ResultStore
	now     func() time.Time
}

type Option func(*Manager)

// WithTTL sets how long an idle game survives in Redis.
func WithTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.ttl = d
		}
	}
}

// WithResultStore attaches the archive for finished games.
func WithResultStore(s ResultStore) Option {
	return func(m *Manager) { m.results = s }
}

func withClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(redisURL string, opts ...Option) (*Manager, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for session manager")
	}
	ropts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(ropts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	m := &Manager{rdb: rdb, ttl: defaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Manager) Close() error {
	if m == nil || m.rdb == nil {
		return nil
	}
	return m.rdb.Close()
}

// Create starts a new game with the standard setup and Red to move.
func (m *Manager) Create(ctx context.Context) (*Record, error) {
	now := m.now()
	rec := &Record{ID: uuid.NewString(), Round: 1, CreatedAt: now}
	rec.sync(checkers.NewGame(), now)

	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	_, err = m.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, gameKey(rec.ID), raw, m.ttl)
		m.touchIndex(ctx, pipe, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	obslog.L().Info("game_create", zap.String("game_id", rec.ID))
	return rec, nil
}

// List returns stored games, most recently updated first. Index entries whose
// record has expired are pruned on the way.
func (m *Manager) List(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 20
	}
	ids, err := m.rdb.ZRevRange(ctx, indexKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*Record, 0, len(ids))
	var stale []any
	for _, id := range ids {
		rec, err := m.get(ctx, m.rdb, id)
		if errors.Is(err, ErrGameNotFound) {
			stale = append(stale, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if len(stale) > 0 {
		if err := m.rdb.ZRem(ctx, indexKey, stale...).Err(); err != nil {
			obslog.L().Warn("game_index_prune_error", zap.Int("stale", len(stale)), zap.Error(err))
		}
	}
	return out, nil
}

func (m *Manager) touchIndex(ctx context.Context, pipe redis.Pipeliner, rec *Record) {
	pipe.ZAdd(ctx, indexKey, redis.Z{Score: float64(rec.UpdatedAt.UnixMilli()), Member: rec.ID})
	pipe.Expire(ctx, indexKey, m.ttl)
}

// Load returns the stored record or ErrGameNotFound.
func (m *Manager) Load(ctx context.Context, id string) (*Record, error) {
	return m.get(ctx, m.rdb, id)
}

// Select forwards a board click to the game. The boolean is the core result:
// true when a move was applied or a piece was selected.
func (m *Manager) Select(ctx context.Context, id string, row, col int) (*Record, bool, error) {
	if !checkers.InBounds(row, col) {
		return nil, false, fmt.Errorf("%w: %d,%d", ErrBadSquare, row, col)
	}

	var (
		handled bool
		moved   bool
	)
	rec, err := m.update(ctx, id, func(cur *Record, g *checkers.Game) error {
		if cur.Status == StatusFinished {
			return ErrGameFinished
		}
		turn := g.Turn()
		handled = g.Select(row, col)
		moved = g.Turn() != turn
		if moved {
			cur.Plies++
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if moved {
		obslog.L().Info("game_move",
			zap.String("game_id", rec.ID),
			zap.Int("row", row),
			zap.Int("col", col),
			zap.String("turn", string(rec.Snapshot.Turn)),
			zap.Int("white_left", rec.WhiteLeft),
			zap.Int("red_left", rec.RedLeft),
		)
	} else {
		obslog.L().Debug("game_select",
			zap.String("game_id", rec.ID),
			zap.Int("row", row),
			zap.Int("col", col),
			zap.Bool("handled", handled),
		)
	}
	if moved && rec.Status == StatusFinished {
		obslog.L().Info("game_finished", zap.String("game_id", rec.ID), zap.String("winner", string(rec.Winner)), zap.Int("plies", rec.Plies))
		_ = m.persistIfFinal(ctx, rec)
	}
	return rec, handled, nil
}

// Reset puts the session back to the starting position, finished or not, and
// opens the next round so its result is archived separately.
func (m *Manager) Reset(ctx context.Context, id string) (*Record, error) {
	rec, err := m.update(ctx, id, func(cur *Record, g *checkers.Game) error {
		g.Reset()
		cur.Round++
		cur.Plies = 0
		cur.CreatedAt = m.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	obslog.L().Info("game_reset", zap.String("game_id", rec.ID), zap.Int("round", rec.Round))
	return rec, nil
}

// update runs fn against a freshly loaded record under WATCH and writes the result back.
func (m *Manager) update(ctx context.Context, id string, fn func(cur *Record, g *checkers.Game) error) (*Record, error) {
	key := gameKey(id)
	var out *Record
	err := m.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := m.get(ctx, tx, id)
		if err != nil {
			return err
		}
		g, err := cur.Game()
		if err != nil {
			return err
		}
		if err := fn(cur, g); err != nil {
			return err
		}
		cur.sync(g, m.now())

		raw, err := json.Marshal(cur)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, m.ttl)
			m.touchIndex(ctx, pipe, cur)
			return nil
		})
		if err != nil {
			return err
		}
		out = cur
		return nil
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		obslog.L().Warn("game_update_conflict", zap.String("game_id", id))
		return nil, ErrConcurrentUpdate
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (m *Manager) get(ctx context.Context, c getter, id string) (*Record, error) {
	raw, err := c.Get(ctx, gameKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", id, err)
	}
	return &rec, nil
}

// persistIfFinal archives a finished game when a result store is attached.
func (m *Manager) persistIfFinal(ctx context.Context, rec *Record) error {
	if m.results == nil || rec == nil || rec.Status != StatusFinished {
		return nil
	}
	if err := m.results.SaveResult(ctx, resultFrom(rec)); err != nil {
		obslog.L().Error("game_result_persist_error", zap.String("game_id", rec.ID), zap.Error(err))
		return err
	}
	obslog.L().Info("game_result_persist", zap.String("game_id", rec.ID), zap.Int("round", rec.Round), zap.String("winner", string(rec.Winner)))
	return nil
}

const indexKey = "checkers:index:games"

func gameKey(id string) string { return "checkers:game:" + strings.TrimSpace(id) }

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redis db %q", p)
		}
		db = n
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
