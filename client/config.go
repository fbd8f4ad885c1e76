package client

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is the reporter configuration. Values resolve in precedence order:
// environment variable, then config file key, then default.
type Config struct {
	Endpoint   string // heartbeat endpoint URL
	Token      string
	DeviceID   string
	DeviceName string

	IdleTimeout       time.Duration // local idle threshold for the reported online flag
	HeartbeatInterval time.Duration
	MusicPollInterval time.Duration // deliberately shorter than the heartbeat interval
	MusicPushMin      time.Duration // minimum gap between two media pushes

	LogFile    string
	LogMaxSize int // megabytes before rotation
}

// fileConfig mirrors the optional status-client.toml. Pointers distinguish
// "absent" from zero values.
type fileConfig struct {
	Endpoint             *string `toml:"endpoint"`
	Token                *string `toml:"token"`
	DeviceID             *string `toml:"device_id"`
	DeviceName           *string `toml:"device_name"`
	IdleTimeoutSecs      *int64  `toml:"idle_timeout_secs"`
	HeartbeatIntervalSec *int64  `toml:"heartbeat_interval_secs"`
	MusicPollIntervalSec *int64  `toml:"music_poll_interval_secs"`
	MusicPushMinSecs     *int64  `toml:"music_push_min_interval_secs"`
	LogFile              *string `toml:"log_file"`
	LogMaxMB             *int64  `toml:"log_max_mb"`
}

// LoadConfig reads the config file (if any) and applies env overrides.
func LoadConfig() Config {
	fc := readConfigFile()

	deviceID := resolveString("DEVICE_ID", fc.DeviceID, hostname())

	return Config{
		Endpoint:   resolveString("STATUS_ENDPOINT", fc.Endpoint, "http://127.0.0.1:7999/heartbeat"),
		Token:      resolveString("STATUS_TOKEN", fc.Token, "dev-token"),
		DeviceID:   deviceID,
		DeviceName: resolveString("DEVICE_NAME", fc.DeviceName, deviceID),

		IdleTimeout:       resolveSeconds("IDLE_TIMEOUT_SECS", fc.IdleTimeoutSecs, 300),
		HeartbeatInterval: resolveSeconds("HEARTBEAT_INTERVAL_SECS", fc.HeartbeatIntervalSec, 60),
		MusicPollInterval: resolveSeconds("MUSIC_POLL_INTERVAL_SECS", fc.MusicPollIntervalSec, 5),
		MusicPushMin:      resolveSeconds("MUSIC_PUSH_MIN_INTERVAL_SECS", fc.MusicPushMinSecs, 6),

		LogFile:    resolveLogPath("LOG_FILE", fc.LogFile, "status-client.log"),
		LogMaxSize: int(resolveInt64("LOG_MAX_MB", fc.LogMaxMB, 2)),
	}
}

// readConfigFile loads STATUS_CONFIG, or status-client.toml next to the
// executable. A missing or unparseable file just means defaults.
func readConfigFile() fileConfig {
	path := os.Getenv("STATUS_CONFIG")
	if path == "" {
		path = defaultConfigPath()
	}

	var fc fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc
	}
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fileConfig{}
	}
	return fc
}

func defaultConfigPath() string {
	return anchorPath(exeDir(), "status-client.toml")
}

// resolveLogPath anchors a relative log path next to the executable, the same
// way the config file is looked up, so the log does not land in whatever
// directory the process happened to start from.
func resolveLogPath(envKey string, fileVal *string, fallback string) string {
	return anchorPath(exeDir(), resolveString(envKey, fileVal, fallback))
}

func anchorPath(dir, path string) string {
	if path == "" || dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func exeDir() string {
	if exe, err := os.Executable(); err == nil {
		return filepath.Dir(exe)
	}
	return ""
}

// resolveString prefers the environment, then the config file, then the
// default. A variable that is set but empty still wins: the environment is
// authoritative whenever the key is present at all.
func resolveString(envKey string, fileVal *string, fallback string) string {
	if v, ok := os.LookupEnv(envKey); ok {
		return v
	}
	if fileVal != nil && *fileVal != "" {
		return *fileVal
	}
	return fallback
}

func resolveInt64(envKey string, fileVal *int64, fallback int64) int64 {
	if v := os.Getenv(envKey); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	if fileVal != nil {
		return *fileVal
	}
	return fallback
}

func resolveSeconds(envKey string, fileVal *int64, fallbackSecs int64) time.Duration {
	return time.Duration(resolveInt64(envKey, fileVal, fallbackSecs)) * time.Second
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "unknown-device"
	}
	return name
}
