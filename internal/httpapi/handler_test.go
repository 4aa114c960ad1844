package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/park285/cheese-checkers/internal/checkers"
	"github.com/park285/cheese-checkers/internal/msgcat"
	"github.com/park285/cheese-checkers/internal/render"
	"github.com/park285/cheese-checkers/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func newTestHandler(t *testing.T, sessions Sessions, results session.ResultStore) *Handler {
	t.Helper()
	cat, err := msgcat.New("")
	require.NoError(t, err)
	return NewHandler(sessions, results, render.New(render.Config{SquareSize: 40}), cat)
}

func newRedisSessions(t *testing.T) *session.Manager {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })
	m, err := session.NewManager(fmt.Sprintf("redis://%s/0", mr.Addr()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func do(h *Handler, method, uri string, body string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	if body != "" {
		req.SetBodyString(body)
	}
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	h.Handle(ctx)
	return ctx
}

func decodeGame(t *testing.T, ctx *fasthttp.RequestCtx) GameView {
	t.Helper()
	var v GameView
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &v), "body=%s", ctx.Response.Body())
	return v
}

func TestCreateAndGet(t *testing.T) {
	h := newTestHandler(t, newRedisSessions(t), nil)

	ctx := do(h, "POST", "/api/games", "")
	require.Equal(t, fasthttp.StatusCreated, ctx.Response.StatusCode())
	created := decodeGame(t, ctx)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 1, created.Round)
	assert.Equal(t, checkers.Red, created.Turn)
	assert.Equal(t, "ACTIVE", created.Status)
	assert.Equal(t, ".w.w.w.w", created.Rows[0])
	assert.Equal(t, "r.r.r.r.", created.Rows[7])
	assert.Equal(t, "Red to move", created.Message)
	assert.Empty(t, created.Offered)

	ctx = do(h, "GET", "/api/games/"+created.ID, "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, created.ID, decodeGame(t, ctx).ID)

	ctx = do(h, "GET", "/api/games?limit=5", "")
	var list []GameView
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	ctx = do(h, "GET", "/api/games/nope", "")
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}

func TestSelectFlow(t *testing.T) {
	h := newTestHandler(t, newRedisSessions(t), nil)
	id := decodeGame(t, do(h, "POST", "/api/games", "")).ID

	ctx := do(h, "POST", "/api/games/"+id+"/select", `{"row":5,"col":0}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode(), "body=%s", ctx.Response.Body())
	var resp SelectResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.True(t, resp.Handled)
	assert.Equal(t, []checkers.Pos{{Row: 4, Col: 1}}, resp.Game.Offered)
	assert.Contains(t, resp.Game.Message, "1 destination")

	ctx = do(h, "POST", "/api/games/"+id+"/select", `{"row":4,"col":1}`)
	resp = SelectResponse{}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.True(t, resp.Handled)
	assert.Equal(t, checkers.White, resp.Game.Turn)
	assert.Equal(t, 1, resp.Game.Plies)

	reset := decodeGame(t, do(h, "POST", "/api/games/"+id+"/reset", ""))
	assert.Equal(t, checkers.Red, reset.Turn)
	assert.Equal(t, 0, reset.Plies)
	assert.Equal(t, 2, reset.Round)
}

func TestSelectValidation(t *testing.T) {
	h := newTestHandler(t, newRedisSessions(t), nil)
	id := decodeGame(t, do(h, "POST", "/api/games", "")).ID

	cases := map[string]string{
		"not json":     `row=1`,
		"missing col":  `{"row":1}`,
		"row too big":  `{"row":8,"col":1}`,
		"negative col": `{"row":1,"col":-1}`,
	}
	for name, body := range cases {
		ctx := do(h, "POST", "/api/games/"+id+"/select", body)
		assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode(), name)
	}
	ctx := do(h, "GET", "/api/games/"+id+"/select", "")
	assert.Equal(t, fasthttp.StatusMethodNotAllowed, ctx.Response.StatusCode())
}

func TestBoardPNG(t *testing.T) {
	h := newTestHandler(t, newRedisSessions(t), nil)
	id := decodeGame(t, do(h, "POST", "/api/games", "")).ID

	ctx := do(h, "GET", "/api/games/"+id+"/board.png", "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "image/png", string(ctx.Response.Header.ContentType()))
	img, err := png.Decode(bytes.NewReader(ctx.Response.Body()))
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 320, img.Bounds().Dy())
}

// stubSessions serves a fixed record and fails Select with err.
type stubSessions struct {
	rec *session.Record
	err error
}

func (s *stubSessions) Create(ctx context.Context) (*session.Record, error) { return s.rec, nil }
func (s *stubSessions) Load(ctx context.Context, id string) (*session.Record, error) {
	return s.rec, nil
}
func (s *stubSessions) Select(ctx context.Context, id string, row, col int) (*session.Record, bool, error) {
	return nil, false, s.err
}
func (s *stubSessions) Reset(ctx context.Context, id string) (*session.Record, error) {
	return nil, s.err
}
func (s *stubSessions) List(ctx context.Context, limit int) ([]*session.Record, error) {
	if s.rec == nil {
		return nil, nil
	}
	return []*session.Record{s.rec}, nil
}

func finishedRecord(t *testing.T) *session.Record {
	t.Helper()
	snap := checkers.Snapshot{Turn: checkers.White}
	for i := range snap.Rows {
		snap.Rows[i] = "........"
	}
	snap.Rows[3] = "R......."
	return &session.Record{ID: "g1", Round: 1, Snapshot: snap, Status: session.StatusFinished, Winner: checkers.Red, RedLeft: 1}
}

func TestConflictStatuses(t *testing.T) {
	rec := finishedRecord(t)
	for _, err := range []error{session.ErrGameFinished, session.ErrConcurrentUpdate} {
		h := newTestHandler(t, &stubSessions{rec: rec, err: err}, nil)
		ctx := do(h, "POST", "/api/games/g1/select", `{"row":3,"col":0}`)
		assert.Equal(t, fasthttp.StatusConflict, ctx.Response.StatusCode(), err.Error())
	}

	h := newTestHandler(t, &stubSessions{rec: rec, err: session.ErrGameFinished}, nil)
	got := decodeGame(t, do(h, "GET", "/api/games/g1", ""))
	assert.Equal(t, "Game over: Red wins", got.Message)
	assert.Equal(t, checkers.Red, got.Winner)
}

func TestFinishedBoardCarriesBanner(t *testing.T) {
	rec := finishedRecord(t)
	h := newTestHandler(t, &stubSessions{rec: rec}, nil)
	finished := do(h, "GET", "/api/games/g1/board.png", "")
	require.Equal(t, fasthttp.StatusOK, finished.Response.StatusCode())

	rec.Status, rec.Winner = session.StatusActive, checkers.NoColor
	active := do(h, "GET", "/api/games/g1/board.png", "")
	require.Equal(t, fasthttp.StatusOK, active.Response.StatusCode())
	assert.NotEqual(t, active.Response.Body(), finished.Response.Body())
}

func TestListResults(t *testing.T) {
	store := session.NewMemoryResults()
	end := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveResult(context.Background(), session.Result{GameID: "g1", Round: 1, Winner: checkers.White, Plies: 40, StartedAt: end.Add(-time.Minute), EndedAt: end}))
	require.NoError(t, store.SaveResult(context.Background(), session.Result{GameID: "g1", Round: 2, Winner: checkers.Red, Plies: 30, StartedAt: end, EndedAt: end.Add(time.Minute)}))
	h := newTestHandler(t, &stubSessions{}, store)

	ctx := do(h, "GET", "/api/results?limit=5", "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var list []ResultView
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, 2, list[0].Round)
	assert.Equal(t, checkers.Red, list[0].Winner)
	assert.Equal(t, 1, list[1].Round)
	assert.EqualValues(t, 60000, list[1].DurationMS)

	ctx = do(h, "GET", "/api/results?limit=zero", "")
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}
