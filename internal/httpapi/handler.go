package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/park285/cheese-checkers/internal/checkers"
	"github.com/park285/cheese-checkers/internal/msgcat"
	"github.com/park285/cheese-checkers/internal/obslog"
	"github.com/park285/cheese-checkers/internal/render"
	"github.com/park285/cheese-checkers/internal/session"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Sessions is the part of session.Manager the handler needs.
type Sessions interface {
	Create(ctx context.Context) (*session.Record, error)
	Load(ctx context.Context, id string) (*session.Record, error)
	Select(ctx context.Context, id string, row, col int) (*session.Record, bool, error)
	Reset(ctx context.Context, id string) (*session.Record, error)
	List(ctx context.Context, limit int) ([]*session.Record, error)
}

type Handler struct {
	sessions Sessions
	results  session.ResultStore
	renderer render.Renderer
	catalog  *msgcat.Catalog
	timeout  time.Duration
}

type Option func(*Handler)

func WithTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

func NewHandler(sessions Sessions, results session.ResultStore, renderer render.Renderer, catalog *msgcat.Catalog, opts ...Option) *Handler {
	h := &Handler{
		sessions: sessions,
		results:  results,
		renderer: renderer,
		catalog:  catalog,
		timeout:  5 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

const gamesPrefix = "/api/games"

// Handle routes a request. It is a fasthttp.RequestHandler.
func (h *Handler) Handle(ctx *fasthttp.RequestCtx) {
	start := time.Now()
	h.route(ctx)
	obslog.L().Debug("http_request",
		zap.ByteString("method", ctx.Method()),
		zap.ByteString("path", ctx.Path()),
		zap.Int("status", ctx.Response.StatusCode()),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func (h *Handler) route(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	switch {
	case path == "/healthz":
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
		return
	case path == "/api/results":
		if !ctx.IsGet() {
			h.methodNotAllowed(ctx)
			return
		}
		h.listResults(ctx)
		return
	case path == gamesPrefix:
		switch {
		case ctx.IsPost():
			h.createGame(ctx)
		case ctx.IsGet():
			h.listGames(ctx)
		default:
			h.methodNotAllowed(ctx)
		}
		return
	case !strings.HasPrefix(path, gamesPrefix+"/"):
		h.writeError(ctx, fasthttp.StatusNotFound, "not found")
		return
	}

	// /api/games/{id}[/action]
	parts := strings.Split(strings.TrimPrefix(path, gamesPrefix+"/"), "/")
	id := parts[0]
	if id == "" || len(parts) > 2 {
		h.writeError(ctx, fasthttp.StatusNotFound, "not found")
		return
	}
	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	switch {
	case action == "" && ctx.IsGet():
		h.getGame(ctx, id)
	case action == "select" && ctx.IsPost():
		h.selectSquare(ctx, id)
	case action == "reset" && ctx.IsPost():
		h.resetGame(ctx, id)
	case action == "board.png" && ctx.IsGet():
		h.boardPNG(ctx, id)
	case action == "" || action == "select" || action == "reset" || action == "board.png":
		h.methodNotAllowed(ctx)
	default:
		h.writeError(ctx, fasthttp.StatusNotFound, "not found")
	}
}

func (h *Handler) createGame(ctx *fasthttp.RequestCtx) {
	c, cancel := h.context()
	defer cancel()
	rec, err := h.sessions.Create(c)
	if err != nil {
		h.writeSessionError(ctx, err)
		return
	}
	h.writeGame(ctx, fasthttp.StatusCreated, rec)
}

func (h *Handler) getGame(ctx *fasthttp.RequestCtx, id string) {
	c, cancel := h.context()
	defer cancel()
	rec, err := h.sessions.Load(c, id)
	if err != nil {
		h.writeSessionError(ctx, err)
		return
	}
	h.writeGame(ctx, fasthttp.StatusOK, rec)
}

func (h *Handler) selectSquare(ctx *fasthttp.RequestCtx, id string) {
	var req SelectRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Row == nil || req.Col == nil {
		h.writeError(ctx, fasthttp.StatusBadRequest, "body must be {\"row\":int,\"col\":int}")
		return
	}
	if !checkers.InBounds(*req.Row, *req.Col) {
		h.writeError(ctx, fasthttp.StatusBadRequest, h.catalog.Text("error.bad_square", nil, session.ErrBadSquare.Error()))
		return
	}

	c, cancel := h.context()
	defer cancel()
	rec, handled, err := h.sessions.Select(c, id, *req.Row, *req.Col)
	if err != nil {
		h.writeSessionError(ctx, err)
		return
	}
	view, err := h.view(rec)
	if err != nil {
		h.writeSessionError(ctx, err)
		return
	}
	h.writeJSON(ctx, fasthttp.StatusOK, SelectResponse{Handled: handled, Game: view})
}

func (h *Handler) resetGame(ctx *fasthttp.RequestCtx, id string) {
	c, cancel := h.context()
	defer cancel()
	rec, err := h.sessions.Reset(c, id)
	if err != nil {
		h.writeSessionError(ctx, err)
		return
	}
	h.writeGame(ctx, fasthttp.StatusOK, rec)
}

func (h *Handler) boardPNG(ctx *fasthttp.RequestCtx, id string) {
	c, cancel := h.context()
	defer cancel()
	rec, err := h.sessions.Load(c, id)
	if err != nil {
		h.writeSessionError(ctx, err)
		return
	}
	g, err := rec.Game()
	if err != nil {
		h.writeSessionError(ctx, err)
		return
	}
	banner := ""
	if rec.Status == session.StatusFinished {
		banner = h.winnerText(rec.Winner)
	}
	img, err := h.renderer.RenderPNG(c, g, banner)
	if err != nil {
		obslog.L().Error("board_render_error", zap.String("game_id", id), zap.Error(err))
		h.writeError(ctx, fasthttp.StatusInternalServerError, "render failed")
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("image/png")
	ctx.Response.Header.Set("Cache-Control", "no-store")
	ctx.SetBody(img)
}

func (h *Handler) listGames(ctx *fasthttp.RequestCtx) {
	limit, ok := h.limit(ctx)
	if !ok {
		return
	}
	c, cancel := h.context()
	defer cancel()
	recs, err := h.sessions.List(c, limit)
	if err != nil {
		h.writeSessionError(ctx, err)
		return
	}
	out := make([]GameView, 0, len(recs))
	for _, rec := range recs {
		v, err := h.view(rec)
		if err != nil {
			obslog.L().Warn("game_view_skip", zap.String("game_id", rec.ID), zap.Error(err))
			continue
		}
		out = append(out, v)
	}
	h.writeJSON(ctx, fasthttp.StatusOK, out)
}

func (h *Handler) listResults(ctx *fasthttp.RequestCtx) {
	limit, ok := h.limit(ctx)
	if !ok {
		return
	}
	if h.results == nil {
		h.writeJSON(ctx, fasthttp.StatusOK, []ResultView{})
		return
	}

	c, cancel := h.context()
	defer cancel()
	list, err := h.results.RecentResults(c, limit)
	if err != nil {
		obslog.L().Error("results_list_error", zap.Error(err))
		h.writeError(ctx, fasthttp.StatusInternalServerError, "results unavailable")
		return
	}
	out := make([]ResultView, 0, len(list))
	for _, r := range list {
		out = append(out, ResultView{
			GameID:     r.GameID,
			Round:      r.Round,
			Winner:     r.Winner,
			Plies:      r.Plies,
			WhiteLeft:  r.WhiteLeft,
			RedLeft:    r.RedLeft,
			EndedAt:    r.EndedAt,
			DurationMS: r.Duration().Milliseconds(),
		})
	}
	h.writeJSON(ctx, fasthttp.StatusOK, out)
}

// limit reads ?limit=, defaulting to 20. It writes a 400 and returns false when invalid.
func (h *Handler) limit(ctx *fasthttp.RequestCtx) (int, bool) {
	raw := ctx.QueryArgs().Peek("limit")
	if len(raw) == 0 {
		return 20, true
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil || n <= 0 || n > 200 {
		h.writeError(ctx, fasthttp.StatusBadRequest, "limit must be within 1..200")
		return 0, false
	}
	return n, true
}

func (h *Handler) view(rec *session.Record) (GameView, error) {
	g, err := rec.Game()
	if err != nil {
		return GameView{}, err
	}
	v := GameView{
		ID:        rec.ID,
		Round:     rec.Round,
		Rows:      rec.Snapshot.Rows,
		Turn:      rec.Snapshot.Turn,
		Selected:  rec.Snapshot.Selected,
		Offered:   g.OfferedMoves().Destinations(),
		Status:    string(rec.Status),
		Winner:    rec.Winner,
		WhiteLeft: rec.WhiteLeft,
		RedLeft:   rec.RedLeft,
		Plies:     rec.Plies,
		UpdatedAt: rec.UpdatedAt,
	}
	v.Message = h.statusText(rec, len(v.Offered))
	return v, nil
}

func (h *Handler) statusText(rec *session.Record, offered int) string {
	if rec.Status == session.StatusFinished {
		name := h.colorName(rec.Winner)
		return h.catalog.Text("status.finished", map[string]any{"Winner": name}, name+" wins")
	}
	turn := h.colorName(rec.Snapshot.Turn)
	if sel := rec.Snapshot.Selected; sel != nil {
		return h.catalog.Text("status.selected", map[string]any{
			"Turn": turn, "Count": offered, "Row": sel.Row, "Col": sel.Col,
		}, turn)
	}
	return h.catalog.Text("status.turn", map[string]any{"Turn": turn}, turn)
}

func (h *Handler) winnerText(winner checkers.Color) string {
	name := h.colorName(winner)
	return h.catalog.Text("banner.winner", map[string]any{"Winner": name}, name+" Wins!")
}

func (h *Handler) colorName(c checkers.Color) string {
	return h.catalog.Text("color."+string(c), nil, string(c))
}

func (h *Handler) writeGame(ctx *fasthttp.RequestCtx, status int, rec *session.Record) {
	view, err := h.view(rec)
	if err != nil {
		h.writeSessionError(ctx, err)
		return
	}
	h.writeJSON(ctx, status, view)
}

func (h *Handler) writeSessionError(ctx *fasthttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, session.ErrGameNotFound):
		h.writeError(ctx, fasthttp.StatusNotFound, h.catalog.Text("error.not_found", nil, err.Error()))
	case errors.Is(err, session.ErrGameFinished):
		h.writeError(ctx, fasthttp.StatusConflict, h.catalog.Text("error.finished", nil, err.Error()))
	case errors.Is(err, session.ErrConcurrentUpdate):
		h.writeError(ctx, fasthttp.StatusConflict, h.catalog.Text("error.conflict", nil, err.Error()))
	case errors.Is(err, session.ErrBadSquare):
		h.writeError(ctx, fasthttp.StatusBadRequest, h.catalog.Text("error.bad_square", nil, err.Error()))
	default:
		obslog.L().Error("http_session_error", zap.ByteString("path", ctx.Path()), zap.Error(err))
		h.writeError(ctx, fasthttp.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) methodNotAllowed(ctx *fasthttp.RequestCtx) {
	h.writeError(ctx, fasthttp.StatusMethodNotAllowed, "method not allowed")
}

func (h *Handler) writeError(ctx *fasthttp.RequestCtx, status int, msg string) {
	h.writeJSON(ctx, status, errorResponse{Error: msg})
}

func (h *Handler) writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		obslog.L().Error("http_encode_error", zap.Error(err))
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(raw)
}

func (h *Handler) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), h.timeout)
}
