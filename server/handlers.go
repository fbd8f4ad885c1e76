package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"HomeStatus/config"
	"HomeStatus/core/presence"
	"HomeStatus/logger"
	"HomeStatus/model"
	"HomeStatus/repository"
)

// APIHandler 处理所有API请求
type APIHandler struct {
	deviceRepo   repository.DeviceRepository
	controlRepo  repository.ControlRepository
	scheduleRepo repository.ScheduleRepository
	blogRepo     repository.BlogRepository
	visitorRepo  repository.VisitorRepository
	cfg          *config.Config

	// now is swappable so handler tests can pin the clock.
	now func() int64
}

// NewAPIHandler 创建新的API处理器
func NewAPIHandler(
	deviceRepo repository.DeviceRepository,
	controlRepo repository.ControlRepository,
	scheduleRepo repository.ScheduleRepository,
	blogRepo repository.BlogRepository,
	visitorRepo repository.VisitorRepository,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		deviceRepo:   deviceRepo,
		controlRepo:  controlRepo,
		scheduleRepo: scheduleRepo,
		blogRepo:     blogRepo,
		visitorRepo:  visitorRepo,
		cfg:          cfg,
		now:          func() int64 { return time.Now().Unix() },
	}
}

// authorized checks the shared token, first in the X-Token header, then in a
// bearer-style Authorization header. Stateless per-request check, no detail
// beyond the status code is leaked on failure.
func (h *APIHandler) authorized(r *http.Request) bool {
	if r.Header.Get("X-Token") == h.cfg.Token {
		return true
	}
	authHeader := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return token == h.cfg.Token
	}
	return false
}

// RootHandler 健康检查
func (h *APIHandler) RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
}

// VersionHandler reports the build string so clients can tell which fields
// the collector understands.
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.VersionInfo{
		Service:     "homestatus",
		Version:     h.cfg.BuildVersion,
		MusicFields: true,
	})
}

// HeartbeatHandler ingests a device report. When the global override is on,
// the heartbeat is accepted but discarded: the override is a hard mute switch
// and the device keeps believing everything is fine.
func (h *APIHandler) HeartbeatHandler(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var payload model.Heartbeat
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	control, err := h.controlRepo.GetControl()
	if err != nil {
		logger.Error("heartbeat: failed to read global control", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if control.ManualOffline {
		logger.Debug("heartbeat suppressed by global override",
			logger.String("deviceId", payload.DeviceID))
		w.WriteHeader(http.StatusOK)
		return
	}

	logger.Info("heartbeat recv",
		logger.String("deviceId", payload.DeviceID),
		logger.Bool("online", payload.Online),
		logger.Any("idleSeconds", payload.IdleSeconds),
		logger.Any("musicTitle", payload.MusicTitle),
		logger.Any("musicArtist", payload.MusicArtist))

	if err := h.deviceRepo.UpsertHeartbeat(&payload, h.now()); err != nil {
		logger.Error("heartbeat: failed to upsert device", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// StatusHandler returns the effective status of every known device. The view
// is recomputed from the stored rows on every call, never cached.
func (h *APIHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	control, err := h.controlRepo.GetControl()
	if err != nil {
		logger.Error("status: failed to read global control", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	devices, err := h.deviceRepo.ListDevices()
	if err != nil {
		logger.Error("status: failed to list devices", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	view := presence.ComputeStatus(h.now(), control, devices)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

// DeviceStatusUpdateHandler applies a partial, field-by-field update. This is
// the only path allowed to change a device's manual_offline flag.
func (h *APIHandler) DeviceStatusUpdateHandler(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var payload model.DeviceStatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.DeviceID == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.deviceRepo.ApplyStatusUpdate(&payload, h.now()); err != nil {
		logger.Error("device status update failed",
			logger.String("deviceId", payload.DeviceID),
			logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// DeleteDeviceHandler removes a device row. This endpoint is meant to be hit
// from a browser, so the token travels in the query string instead of a header.
func (h *APIHandler) DeleteDeviceHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("token") != h.cfg.Token {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.deviceRepo.DeleteDevice(q.Get("id")); err != nil {
		logger.Error("device delete failed", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// GetManualStatusHandler 读取全局手动离线开关
func (h *APIHandler) GetManualStatusHandler(w http.ResponseWriter, r *http.Request) {
	control, err := h.controlRepo.GetControl()
	if err != nil {
		logger.Error("manual status read failed", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.ManualStatusResponse{
		Enabled:   control.ManualOffline,
		UpdatedAt: control.UpdatedAt,
	})
}

// SetManualStatusHandler 设置全局手动离线开关
func (h *APIHandler) SetManualStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var payload model.ManualStatusPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	control, err := h.controlRepo.SetGlobalManualOffline(payload.Enabled, h.now())
	if err != nil {
		logger.Error("manual status write failed", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	logger.Info("global manual offline changed", logger.Bool("enabled", payload.Enabled))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.ManualStatusResponse{
		Enabled:   control.ManualOffline,
		UpdatedAt: control.UpdatedAt,
	})
}
