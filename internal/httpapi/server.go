package httpapi

import (
	"fmt"
	"time"

	"github.com/park285/cheese-checkers/internal/obslog"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// NewServer wraps h in a fasthttp server with conservative timeouts.
func NewServer(h *Handler) *fasthttp.Server {
	return &fasthttp.Server{
		Handler:            h.Handle,
		Name:               "checkers",
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       10 * time.Second,
		IdleTimeout:        60 * time.Second,
		MaxRequestBodySize: 4 << 10,
		Logger:             serverLogger{},
	}
}

// serverLogger forwards fasthttp's internal messages to the global zap logger.
type serverLogger struct{}

func (serverLogger) Printf(format string, args ...any) {
	obslog.L().Warn("fasthttp_server", zap.String("message", fmt.Sprintf(format, args...)))
}
