package client

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "status-client.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearReporterEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STATUS_CONFIG", "STATUS_ENDPOINT", "STATUS_TOKEN", "DEVICE_ID", "DEVICE_NAME",
		"IDLE_TIMEOUT_SECS", "HEARTBEAT_INTERVAL_SECS", "MUSIC_POLL_INTERVAL_SECS",
		"MUSIC_PUSH_MIN_INTERVAL_SECS", "LOG_FILE", "LOG_MAX_MB",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearReporterEnv(t)
	// Point at a missing file so only defaults apply.
	t.Setenv("STATUS_CONFIG", filepath.Join(t.TempDir(), "absent.toml"))

	cfg := LoadConfig()

	if cfg.Endpoint != "http://127.0.0.1:7999/heartbeat" {
		t.Errorf("endpoint = %q", cfg.Endpoint)
	}
	if cfg.IdleTimeout != 300*time.Second {
		t.Errorf("idle timeout = %v", cfg.IdleTimeout)
	}
	if cfg.HeartbeatInterval != 60*time.Second {
		t.Errorf("heartbeat interval = %v", cfg.HeartbeatInterval)
	}
	if cfg.MusicPollInterval != 5*time.Second {
		t.Errorf("music poll interval = %v", cfg.MusicPollInterval)
	}
	if cfg.MusicPushMin != 6*time.Second {
		t.Errorf("music push min = %v", cfg.MusicPushMin)
	}
	if cfg.DeviceID == "" {
		t.Error("device id should fall back to hostname")
	}
	if cfg.DeviceName != cfg.DeviceID {
		t.Errorf("device name should default to device id, got %q", cfg.DeviceName)
	}
	if cfg.LogMaxSize != 2 {
		t.Errorf("log max size = %d, want 2", cfg.LogMaxSize)
	}
}

func TestLoadConfig_FileValues(t *testing.T) {
	clearReporterEnv(t)
	path := writeConfigFile(t, `
endpoint = "http://collector.lan:7999/heartbeat"
token = "file-token"
device_id = "desk"
heartbeat_interval_secs = 120
music_push_min_interval_secs = 10
`)
	t.Setenv("STATUS_CONFIG", path)

	cfg := LoadConfig()

	if cfg.Endpoint != "http://collector.lan:7999/heartbeat" {
		t.Errorf("endpoint = %q", cfg.Endpoint)
	}
	if cfg.Token != "file-token" {
		t.Errorf("token = %q", cfg.Token)
	}
	if cfg.DeviceID != "desk" || cfg.DeviceName != "desk" {
		t.Errorf("device = %q/%q", cfg.DeviceID, cfg.DeviceName)
	}
	if cfg.HeartbeatInterval != 120*time.Second {
		t.Errorf("heartbeat interval = %v", cfg.HeartbeatInterval)
	}
	if cfg.MusicPushMin != 10*time.Second {
		t.Errorf("music push min = %v", cfg.MusicPushMin)
	}
	// Keys absent from the file keep their defaults.
	if cfg.MusicPollInterval != 5*time.Second {
		t.Errorf("music poll interval = %v", cfg.MusicPollInterval)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	clearReporterEnv(t)
	path := writeConfigFile(t, `
endpoint = "http://file.lan/heartbeat"
token = "file-token"
idle_timeout_secs = 100
`)
	t.Setenv("STATUS_CONFIG", path)
	t.Setenv("STATUS_ENDPOINT", "http://env.lan/heartbeat")
	t.Setenv("IDLE_TIMEOUT_SECS", "900")

	cfg := LoadConfig()

	if cfg.Endpoint != "http://env.lan/heartbeat" {
		t.Errorf("env should win: endpoint = %q", cfg.Endpoint)
	}
	if cfg.IdleTimeout != 900*time.Second {
		t.Errorf("env should win: idle timeout = %v", cfg.IdleTimeout)
	}
	// Env untouched for token: file value survives.
	if cfg.Token != "file-token" {
		t.Errorf("token = %q", cfg.Token)
	}
}

func TestLoadConfig_EmptyEnvValueStillWins(t *testing.T) {
	clearReporterEnv(t)
	path := writeConfigFile(t, `
token = "file-token"
device_name = "file-name"
`)
	t.Setenv("STATUS_CONFIG", path)
	// Present but empty: the environment is authoritative, the file value
	// must not leak through.
	t.Setenv("STATUS_TOKEN", "")

	cfg := LoadConfig()

	if cfg.Token != "" {
		t.Errorf("token = %q, want empty from env", cfg.Token)
	}
	// Token was the only key touched; the file still feeds the rest.
	if cfg.DeviceName != "file-name" {
		t.Errorf("device name = %q", cfg.DeviceName)
	}
}

func TestLoadConfig_RelativeLogPathAnchoredToExecutable(t *testing.T) {
	clearReporterEnv(t)
	t.Setenv("STATUS_CONFIG", filepath.Join(t.TempDir(), "absent.toml"))

	cfg := LoadConfig()

	if !filepath.IsAbs(cfg.LogFile) {
		t.Errorf("log file %q not anchored", cfg.LogFile)
	}
	if filepath.Base(cfg.LogFile) != "status-client.log" {
		t.Errorf("log file name = %q", filepath.Base(cfg.LogFile))
	}

	// Absolute paths pass through untouched.
	abs := filepath.Join(t.TempDir(), "client.log")
	t.Setenv("LOG_FILE", abs)
	if cfg = LoadConfig(); cfg.LogFile != abs {
		t.Errorf("absolute log file rewritten: %q", cfg.LogFile)
	}
}

func TestAnchorPath(t *testing.T) {
	tests := []struct {
		dir, path, want string
	}{
		{"/opt/status", "client.log", filepath.Join("/opt/status", "client.log")},
		{"/opt/status", "/var/log/client.log", "/var/log/client.log"},
		{"", "client.log", "client.log"},
		{"/opt/status", "", ""},
	}
	for _, tt := range tests {
		if got := anchorPath(tt.dir, tt.path); got != tt.want {
			t.Errorf("anchorPath(%q, %q) = %q, want %q", tt.dir, tt.path, got, tt.want)
		}
	}
}

func TestLoadConfig_UnparseableFileFallsBackToDefaults(t *testing.T) {
	clearReporterEnv(t)
	path := writeConfigFile(t, `this is not toml {{{`)
	t.Setenv("STATUS_CONFIG", path)

	cfg := LoadConfig()

	if cfg.Endpoint != "http://127.0.0.1:7999/heartbeat" {
		t.Errorf("endpoint = %q, want default", cfg.Endpoint)
	}
}
