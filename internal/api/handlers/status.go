package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/atelis/pisweep/internal/journal"
	"github.com/atelis/pisweep/internal/scheduler"
)

const defaultSubmissionLimit = 50

// StatusHandler reports the monitor's latest cycle snapshot.
func StatusHandler(status *scheduler.StatusStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status.Get()); err != nil {
			slog.Error("failed to encode status response", "error", err)
		}
	}
}

// SubmissionsHandler lists recent journal entries, newest first.
// Supports ?limit=N (default 50, max 500).
func SubmissionsHandler(db *journal.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultSubmissionLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > 500 {
				http.Error(w, "limit must be 1-500", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		subs, err := db.RecentSubmissions(r.Context(), limit)
		if err != nil {
			slog.Error("failed to list submissions", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"count":       len(subs),
			"submissions": subs,
		})
	}
}
