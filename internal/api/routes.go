package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/verte-zerg/pomodex/internal/catch"
	"github.com/verte-zerg/pomodex/internal/model"
	"github.com/verte-zerg/pomodex/internal/rarity"
	"github.com/verte-zerg/pomodex/internal/roster"
	"github.com/verte-zerg/pomodex/internal/sprites"
	"github.com/verte-zerg/pomodex/internal/stats"
)

const loadTimeout = 5 * time.Second

func addRoutes(r chi.Router, deps Deps) {
	r.Get("/healthz", handleHealth(deps.Logger, deps.Checks))
	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", handleStats(deps))
		r.Get("/collection", handleCollection(deps))
		r.Get("/dex", handleDex(deps))
		r.Get("/dex/{id}", handleDexEntry(deps))
		r.Get("/rarity", handleRarity())
		r.Get("/catch", handleCatch())
	})
	r.Get("/sprites/{file}", handleSprite(deps.SpriteDir))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// Best-effort: the client may already be gone.
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func handleHealth(logger *zap.Logger, checks map[string]Checker) http.HandlerFunc {
	type result struct {
		Status string `json:"status"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		out := map[string]result{}
		status := http.StatusOK
		for name, c := range checks {
			if err := c.Check(ctx); err != nil {
				logger.Error("health check failed", zap.String("name", name), zap.Error(err))
				out[name] = result{Status: "error"}
				status = http.StatusServiceUnavailable
				continue
			}
			out[name] = result{Status: "ok"}
		}
		writeJSON(w, status, out)
	}
}

func loadReport(w http.ResponseWriter, r *http.Request, deps Deps) (stats.Report, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), loadTimeout)
	defer cancel()
	report, err := stats.BuildReport(ctx, deps.Source, deps.Now())
	if err != nil {
		deps.Logger.Error("failed to load report", zap.Error(err))
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrStoreUnavailable) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, "collection store unavailable")
		return stats.Report{}, false
	}
	return report, true
}

type statsResponse struct {
	stats.Card
	Daily []stats.DayTotal `json:"daily,omitempty"`
}

func handleStats(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, ok := loadReport(w, r, deps)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, statsResponse{Card: report.Card, Daily: report.Daily})
	}
}

type dexEntry struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Tier        string `json:"tier"`
	Seen        bool   `json:"seen"`
	Caught      bool   `json:"caught"`
	CaughtCount int    `json:"caught_count"`
	SpriteURL   string `json:"sprite_url"`
}

func newDexEntry(id model.CreatureID, col model.Collection) dexEntry {
	rec := col.Record(id)
	return dexEntry{
		ID:          int(id),
		Name:        roster.Name(id),
		Tier:        rarity.TierOf(id).String(),
		Seen:        rec.Seen,
		Caught:      rec.Caught,
		CaughtCount: rec.CaughtCount,
		SpriteURL:   "/sprites/" + roster.SpriteFile(id),
	}
}

type collectionResponse struct {
	Seen   int        `json:"seen"`
	Caught int        `json:"caught"`
	Total  int        `json:"total"`
	Items  []dexEntry `json:"items"`
}

func handleCollection(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, ok := loadReport(w, r, deps)
		if !ok {
			return
		}
		col := report.Collection
		ids := make([]model.CreatureID, 0, col.SeenTotal())
		for id := range col.Seen {
			ids = append(ids, id)
		}
		for id := range col.Caught {
			if _, seen := col.Seen[id]; !seen {
				ids = append(ids, id)
			}
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		items := make([]dexEntry, 0, len(ids))
		for _, id := range ids {
			items = append(items, newDexEntry(id, col))
		}
		writeJSON(w, http.StatusOK, collectionResponse{
			Seen:   col.SeenTotal(),
			Caught: col.CaughtTotal(),
			Total:  model.RosterSize,
			Items:  items,
		})
	}
}

func handleDex(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, ok := loadReport(w, r, deps)
		if !ok {
			return
		}
		ids := roster.Filter(r.URL.Query().Get("q"))
		if tier := r.URL.Query().Get("tier"); tier != "" {
			t, ok := model.ParseTier(tier)
			if !ok {
				writeError(w, http.StatusBadRequest, "unknown tier")
				return
			}
			kept := ids[:0:0]
			for _, id := range ids {
				if rarity.TierOf(id) == t {
					kept = append(kept, id)
				}
			}
			ids = kept
		}
		items := make([]dexEntry, 0, len(ids))
		for _, id := range ids {
			items = append(items, newDexEntry(id, report.Collection))
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func parseID(raw string) (model.CreatureID, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	id := model.CreatureID(n)
	return id, model.ValidCreature(id)
}

func handleDexEntry(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusBadRequest, model.ErrInvalidCreature.Error())
			return
		}
		report, ok := loadReport(w, r, deps)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, newDexEntry(id, report.Collection))
	}
}

type oddsEntry struct {
	Tier    string  `json:"tier"`
	Weight  int     `json:"weight"`
	Percent float64 `json:"percent"`
	Count   int     `json:"count"`
}

func handleRarity() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		odds := rarity.Default().TierOdds()
		out := make([]oddsEntry, 0, len(odds))
		for _, o := range odds {
			out = append(out, oddsEntry{Tier: o.Tier.String(), Weight: o.Weight, Percent: o.Percent, Count: o.Count})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type catchEntry struct {
	Minutes       int     `json:"minutes"`
	ChancePercent float64 `json:"chance_percent"`
}

func handleCatch() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		var out []catchEntry
		for m := model.MinDurationMinutes; m <= model.MaxDurationMinutes; m += model.DurationStepMinutes {
			out = append(out, catchEntry{Minutes: m, ChancePercent: catch.ChancePercent(m)})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleSprite(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, found := strings.CutSuffix(chi.URLParam(r, "file"), ".png")
		id, ok := parseID(raw)
		if !found || !ok {
			writeError(w, http.StatusBadRequest, model.ErrInvalidCreature.Error())
			return
		}
		if dir == "" {
			writeError(w, http.StatusNotFound, "sprite not found")
			return
		}
		path := sprites.Path(dir, id)
		if _, err := os.Stat(path); err != nil {
			writeError(w, http.StatusNotFound, "sprite not found")
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=86400")
		http.ServeFile(w, r, path)
	}
}
