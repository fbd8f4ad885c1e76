package client

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"HomeStatus/client/probe"
	"HomeStatus/logger"
	"HomeStatus/model"
)

// Reporter runs the two unattended loops: a fixed-interval heartbeat loop and
// a fast-poll, push-throttled media-change loop. The loops share only the
// status cell; a heartbeat push and a media push may be in flight at the same
// time. Neither loop ever terminates; the process runs until killed.
type Reporter struct {
	cfg    Config
	client *http.Client
	status *StatusCell
	prober probe.Prober
	now    func() time.Time

	// Media-loop state, touched only from the media goroutine. The remembered
	// state is the last *pushed* observation, not the last observed one.
	lastMusic *probe.MusicState
	lastPush  time.Time
}

// NewReporter builds a reporter against the real system prober and clock.
func NewReporter(cfg Config) *Reporter {
	return &Reporter{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
		status: NewStatusCell(),
		prober: probe.System{},
		now:    time.Now,
	}
}

// Run initializes logging, starts both loops and blocks forever.
func Run() {
	cfg := LoadConfig()

	logger.InitLogger(logger.Config{
		Level:      logger.InfoLevel,
		OutputPath: cfg.LogFile,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: 1,
		MaxAge:     14,
	})

	logger.Info("status client starting",
		logger.String("endpoint", cfg.Endpoint),
		logger.String("deviceId", cfg.DeviceID))

	r := NewReporter(cfg)
	go r.heartbeatLoop()
	go r.musicLoop()

	select {}
}

func (r *Reporter) heartbeatLoop() {
	for {
		runTick("heartbeat", r.heartbeatTick)
		time.Sleep(r.cfg.HeartbeatInterval)
	}
}

func (r *Reporter) musicLoop() {
	for {
		runTick("music-change", r.musicTick)
		time.Sleep(r.cfg.MusicPollInterval)
	}
}

// runTick isolates one loop iteration: a panic inside a tick is logged and
// the loop continues on its next interval instead of dying.
func runTick(name string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("loop tick panic recovered",
				logger.String("loop", name),
				logger.Any("panic", rec))
		}
	}()
	fn()
}

// heartbeatTick pushes the full current state. The payload always carries the
// latest media snapshot too, so a collector that only saw heartbeats still
// gets a best-effort last-known media state.
func (r *Reporter) heartbeatTick() {
	payload := r.buildPayload()
	r.push(payload, "heartbeat")
}

// musicTick samples the media session and pushes only when the observation
// differs from the last pushed state and the throttle window has elapsed. A
// never-pushed state bypasses the throttle so the very first observation goes
// out immediately. A failed push still counts as pushed: the reporter is
// optimistic and relies on the next heartbeat to repair the server's view.
func (r *Reporter) musicTick() {
	payload := r.buildPayload()
	current := musicStateOf(payload)

	changed := r.lastMusic == nil || *r.lastMusic != current
	if !changed {
		return
	}
	now := r.now()
	if !r.lastPush.IsZero() && now.Sub(r.lastPush) < r.cfg.MusicPushMin {
		return
	}

	logger.Info("music changed",
		logger.Bool("playing", current.Playing),
		logger.String("title", current.Title),
		logger.String("artist", current.Artist),
		logger.String("source", current.Source))

	r.push(payload, "music-change")
	r.lastMusic = &current
	r.lastPush = now
}

// buildPayload samples both probes. The reported online flag is purely local:
// idle time under the configured timeout, and optimistically online when idle
// time is unknown. It is not the server's effective-status computation.
func (r *Reporter) buildPayload() *model.Heartbeat {
	payload := &model.Heartbeat{
		DeviceID:     r.cfg.DeviceID,
		DeviceName:   r.cfg.DeviceName,
		Online:       true,
		MusicPlaying: boolPtr(false),
	}

	if idle, ok := r.prober.IdleSeconds(); ok {
		payload.IdleSeconds = &idle
		payload.Online = idle < int64(r.cfg.IdleTimeout/time.Second)
	}

	if music, ok := r.prober.NowPlaying(); ok {
		payload.MusicPlaying = boolPtr(music.Playing)
		payload.MusicTitle = strPtr(music.Title)
		payload.MusicArtist = strPtr(music.Artist)
		payload.MusicSource = strPtr(music.Source)
	}

	return payload
}

// push POSTs the payload and records the outcome in the shared status cell.
// Failures are logged; the loop retries on its normal schedule, no backoff.
func (r *Reporter) push(payload *model.Heartbeat, reason string) {
	body, err := json.Marshal(payload)
	if err != nil {
		r.status.Set("error")
		logger.Error("payload encode failed", logger.String("reason", reason), logger.ErrorField(err))
		return
	}

	req, err := http.NewRequest(http.MethodPost, r.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		r.status.Set("error")
		logger.Error("request build failed", logger.String("reason", reason), logger.ErrorField(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Token", r.cfg.Token)

	resp, err := r.client.Do(req)
	if err != nil {
		r.status.Set("error")
		logger.Warn("push request error", logger.String("reason", reason), logger.ErrorField(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		r.status.Set("online")
		logger.Debug("push sent",
			logger.String("reason", reason),
			logger.Int("status", resp.StatusCode))
	} else {
		r.status.Set("error")
		logger.Warn("push rejected",
			logger.String("reason", reason),
			logger.Int("status", resp.StatusCode))
	}
}

// musicStateOf folds the payload's media fields back into a comparable value.
func musicStateOf(p *model.Heartbeat) probe.MusicState {
	s := probe.MusicState{}
	if p.MusicPlaying != nil {
		s.Playing = *p.MusicPlaying
	}
	s.Title = strVal(p.MusicTitle)
	s.Artist = strVal(p.MusicArtist)
	s.Source = strVal(p.MusicSource)
	return s
}

func boolPtr(b bool) *bool { return &b }

// strPtr maps empty strings to absent fields on the wire.
func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
