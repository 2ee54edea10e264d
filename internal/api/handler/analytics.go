package handler

import (
	"net/http"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/ai-tailor/internal/analytics"
	apperrors "github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/logger"
)

// StatsSource provides aggregated analysis statistics.
type StatsSource interface {
	Stats() analytics.AggregatedStats
}

// Analytics serves aggregated analysis statistics. An optional top=N query
// parameter trims the missing-skill leaderboard.
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		h.writeJSON(w, http.StatusOK, map[string]any{"enabled": false})
		return
	}

	top := -1
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeAppError(w, apperrors.Newf(apperrors.ErrMalformedBody, http.StatusBadRequest,
				"top must be a non-negative integer, got %q", raw))
			return
		}
		top = n
	}

	stats := h.stats.Stats()
	if top >= 0 && len(stats.TopMissingSkills) > top {
		stats.TopMissingSkills = stats.TopMissingSkills[:top]
	}
	logger.FromContext(r.Context()).Debug("served analytics",
		"total_analyses", stats.TotalAnalyses,
		"top", top,
	)
	h.writeJSON(w, http.StatusOK, stats)
}
