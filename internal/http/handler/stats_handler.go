package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sandeepkv93/authplus-license-service/internal/codec"
	"github.com/sandeepkv93/authplus-license-service/internal/http/response"
	"github.com/sandeepkv93/authplus-license-service/internal/observability"
	"github.com/sandeepkv93/authplus-license-service/internal/service"
)

type StatsHandler struct {
	stats service.StatsReader
	out   encodedWriter
}

func NewStatsHandler(stats service.StatsReader, enc *codec.ResponseEncoder, logger *slog.Logger) *StatsHandler {
	if logger == nil {
		logger = observability.NewLogger()
	}
	return &StatsHandler{stats: stats, out: encodedWriter{enc: enc, logger: logger}}
}

func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.stats.Snapshot(r.Context())
	if err != nil {
		h.out.storeFault(w, r, "stats", err)
		return
	}
	h.out.fields(w, r, map[string]string{
		"user_count":    strconv.FormatInt(s.UserCount, 10),
		"license_count": strconv.FormatInt(s.LicenseCount, 10),
	})
}

// Root is the unauthenticated liveness banner existing clients poll.
func Root(w http.ResponseWriter, _ *http.Request) {
	response.Fields(w, map[string]string{"status": "online"})
}
