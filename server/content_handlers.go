package server

import (
	"encoding/json"
	"net/http"
	"time"

	"HomeStatus/logger"
	"HomeStatus/model"

	"github.com/gorilla/mux"
)

// ScheduleListHandler 返回全部日程
func (h *APIHandler) ScheduleListHandler(w http.ResponseWriter, r *http.Request) {
	items, err := h.scheduleRepo.ListItems()
	if err != nil {
		logger.Error("schedule list failed", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

// ScheduleUpdateHandler replaces the whole schedule set atomically. A failure
// anywhere in the batch leaves the previous set untouched.
func (h *APIHandler) ScheduleUpdateHandler(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var payload model.SchedulePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.scheduleRepo.ReplaceAll(payload.Items, h.now()); err != nil {
		logger.Error("schedule replace failed", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	logger.Info("schedule replaced", logger.Int("items", len(payload.Items)))
	w.WriteHeader(http.StatusOK)
}

// BlogListHandler 返回博客摘要列表
func (h *APIHandler) BlogListHandler(w http.ResponseWriter, r *http.Request) {
	posts, err := h.blogRepo.ListSummaries()
	if err != nil {
		logger.Error("blog list failed", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(posts)
}

// BlogDetailHandler 返回单篇博客全文
func (h *APIHandler) BlogDetailHandler(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	post, err := h.blogRepo.GetBySlug(slug)
	if err != nil {
		logger.Error("blog detail failed", logger.String("slug", slug), logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if post == nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(post)
}

// BlogUpdateHandler replaces the whole post set atomically.
func (h *APIHandler) BlogUpdateHandler(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var payload model.BlogPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.blogRepo.ReplaceAll(payload.Items, h.now()); err != nil {
		logger.Error("blog replace failed", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	logger.Info("blog replaced", logger.Int("posts", len(payload.Items)))
	w.WriteHeader(http.StatusOK)
}

// VisitorVisitHandler records one visitor for today. No auth: the visitor id
// is an opaque client-generated value and repeats are ignored.
func (h *APIHandler) VisitorVisitHandler(w http.ResponseWriter, r *http.Request) {
	var payload model.VisitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.VisitorID == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.visitorRepo.RecordVisit(payload.VisitorID, h.todayKey(), h.now()); err != nil {
		logger.Error("visit record failed", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// VisitorStatsHandler 返回访客统计
func (h *APIHandler) VisitorStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.visitorRepo.Stats(h.todayKey(), h.monthKey(), h.now())
	if err != nil {
		logger.Error("visitor stats failed", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// Visit dates are keyed by UTC day so counting does not depend on the
// server's timezone. Keys come off the handler clock so both stay in step
// with every other timestamp written through it.
func (h *APIHandler) todayKey() string {
	return time.Unix(h.now(), 0).UTC().Format("2006-01-02")
}

func (h *APIHandler) monthKey() string {
	return time.Unix(h.now(), 0).UTC().Format("2006-01")
}
