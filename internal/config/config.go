package config

import (
	"flag"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration: fusion thresholds,
// transport endpoints, storage paths, and the operator control plane.
type Config struct {
	// Fusion thresholds (spec.md §6 CONFIG table).
	WindowSec              time.Duration
	MinSources             int
	PerSnifferFreshSec     time.Duration
	MatchDiffDBM           float64
	MarginGate             float64
	L1Weight               float64
	RankWeight             float64
	RankMatchThreshold     float64
	TransitionConfirmCount int
	StaleMACSec            time.Duration
	SessionRankThreshold   float64
	SessionMaxAgeSec       time.Duration
	SessionCleanupInterval int
	RSSIMinDBM             int
	RSSIMaxDBM             int
	MACHashEnabled         bool
	MACHashSalt            string

	// Operator control plane and ambient infrastructure.
	ControlAddr         string
	ControlUser         string
	ControlPasswordHash string
	UploadEndpoint      string
	UploadMaxRetries    int
	UploadQueueSize     int
	UploadBatchSize     int
	UploadInterval      time.Duration
	WSBrokerURL         string
	DBPath              string
	ZonesCSV            string
	EventDir            string
	MockMode            bool
	Debug               bool
}

// Load parses command line flags and environment variables to populate
// Config. Flags take precedence over environment variables.
func Load() *Config {
	cfg := &Config{}

	windowSec := getEnvFloat("WINDOW_SEC", 5)
	minSources := int(getEnvFloat("MIN_SOURCES", 8))
	perPiFresh := getEnvFloat("PER_PI_FRESH_SEC", 3.0)
	matchDiff := getEnvFloat("MATCH_DIFF_DBM", 7.0)
	marginGate := getEnvFloat("MARGIN_GATE", 0.15)
	l1Weight := getEnvFloat("L1_WEIGHT", 0.6)
	rankWeight := getEnvFloat("RANK_WEIGHT", 0.4)
	rankMatchThreshold := getEnvFloat("RANK_MATCH_THRESHOLD", 1.5)
	confirmCount := int(getEnvFloat("TRANSITION_CONFIRM_COUNT", 3))
	staleMAC := getEnvFloat("STALE_MAC_SEC", 30.0)
	sessionRankThreshold := getEnvFloat("SESSION_RANK_THRESHOLD", 1.5)
	sessionMaxAge := getEnvFloat("SESSION_MAX_AGE_SEC", 3600)
	sessionCleanupInterval := int(getEnvFloat("SESSION_CLEANUP_INTERVAL", 50))
	rssiMin := int(getEnvFloat("RSSI_MIN_DBM", -95))
	rssiMax := int(getEnvFloat("RSSI_MAX_DBM", -20))
	macHashEnabled := getEnvBool("MAC_HASH_ENABLED", false)
	macHashSalt := getEnv("MAC_HASH_SALT", "")

	controlAddr := getEnv("CONTROL_ADDR", ":8080")
	controlUser := getEnv("CONTROL_USER", "admin")
	controlPasswordHash := getEnv("CONTROL_PASSWORD_HASH", "")
	uploadEndpoint := getEnv("UPLOAD_ENDPOINT", "")
	uploadMaxRetries := int(getEnvFloat("UPLOAD_MAX_RETRIES", 5))
	uploadQueueSize := int(getEnvFloat("UPLOAD_QUEUE_SIZE", 256))
	uploadBatchSize := int(getEnvFloat("UPLOAD_BATCH_SIZE", 32))
	uploadIntervalSec := getEnvFloat("UPLOAD_INTERVAL_SEC", 5)
	wsBrokerURL := getEnv("WS_BROKER_URL", "ws://localhost:8765/rssi")
	dbPath := getEnv("DB_PATH", "neuralsense.db")
	zonesCSV := getEnv("ZONES_CSV", "zones.csv")
	eventDir := getEnv("EVENT_DIR", "events")
	mockMode := getEnvBool("MOCK_MODE", false)
	debug := getEnvBool("DEBUG", false)

	flag.Float64Var(&windowSec, "window-sec", windowSec, "Device buffer window, seconds")
	flag.IntVar(&minSources, "min-sources", minSources, "Minimum fresh sniffers required for a prediction")
	flag.Float64Var(&perPiFresh, "per-pi-fresh-sec", perPiFresh, "Max per-sniffer staleness, seconds")
	flag.Float64Var(&matchDiff, "match-diff-dbm", matchDiff, "L1 match threshold, dBm")
	flag.Float64Var(&marginGate, "margin-gate", marginGate, "Top-1/top-2 confidence margin gate")
	flag.Float64Var(&l1Weight, "l1-weight", l1Weight, "Composite score L1 weight")
	flag.Float64Var(&rankWeight, "rank-weight", rankWeight, "Composite score rank weight")
	flag.Float64Var(&rankMatchThreshold, "rank-match-threshold", rankMatchThreshold, "Rank distance match cutoff")
	flag.IntVar(&confirmCount, "transition-confirm-count", confirmCount, "Consecutive confirmations required to fire a transition")
	flag.Float64Var(&staleMAC, "stale-mac-sec", staleMAC, "Grace period before a device is considered gone, seconds")
	flag.Float64Var(&sessionRankThreshold, "session-rank-threshold", sessionRankThreshold, "Session link rank-distance cutoff")
	flag.Float64Var(&sessionMaxAge, "session-max-age-sec", sessionMaxAge, "Session GC horizon, seconds")
	flag.IntVar(&sessionCleanupInterval, "session-cleanup-interval", sessionCleanupInterval, "Assignments between session cleanup sweeps")
	flag.IntVar(&rssiMin, "rssi-min-dbm", rssiMin, "Minimum sane RSSI value, dBm")
	flag.IntVar(&rssiMax, "rssi-max-dbm", rssiMax, "Maximum sane RSSI value, dBm")
	flag.BoolVar(&macHashEnabled, "mac-hash-enabled", macHashEnabled, "Hash device MACs before use")
	flag.StringVar(&macHashSalt, "mac-hash-salt", macHashSalt, "Salt for MAC hashing")

	flag.StringVar(&controlAddr, "addr", controlAddr, "Control plane HTTP listen address")
	flag.StringVar(&controlUser, "control-user", controlUser, "Control plane default admin username")
	flag.StringVar(&controlPasswordHash, "control-password-hash", controlPasswordHash, "Control plane default admin bcrypt password hash")
	flag.StringVar(&uploadEndpoint, "upload-endpoint", uploadEndpoint, "Remote upload HTTP endpoint")
	flag.IntVar(&uploadMaxRetries, "upload-max-retries", uploadMaxRetries, "Max upload retries per batch")
	flag.IntVar(&uploadQueueSize, "upload-queue-size", uploadQueueSize, "Upload sidecar queue capacity")
	flag.IntVar(&uploadBatchSize, "upload-batch-size", uploadBatchSize, "Upload sidecar batch size")
	flag.Float64Var(&uploadIntervalSec, "upload-interval-sec", uploadIntervalSec, "Upload sidecar flush interval, seconds")
	flag.StringVar(&wsBrokerURL, "ws-broker-url", wsBrokerURL, "Inbound RSSI WebSocket broker URL")
	flag.StringVar(&dbPath, "db", dbPath, "Path to SQLite database")
	flag.StringVar(&zonesCSV, "zones-csv", zonesCSV, "Path to zone geometry CSV")
	flag.StringVar(&eventDir, "event-dir", eventDir, "Directory for JSONL event streams")
	flag.BoolVar(&mockMode, "mock", mockMode, "Run with a mock broker instead of dialing out")
	flag.BoolVar(&debug, "debug", debug, "Enable verbose debug logging")

	flag.Parse()

	cfg.WindowSec = secondsToDuration(windowSec)
	cfg.MinSources = minSources
	cfg.PerSnifferFreshSec = secondsToDuration(perPiFresh)
	cfg.MatchDiffDBM = matchDiff
	cfg.MarginGate = marginGate
	cfg.L1Weight = l1Weight
	cfg.RankWeight = rankWeight
	cfg.RankMatchThreshold = rankMatchThreshold
	cfg.TransitionConfirmCount = confirmCount
	cfg.StaleMACSec = secondsToDuration(staleMAC)
	cfg.SessionRankThreshold = sessionRankThreshold
	cfg.SessionMaxAgeSec = secondsToDuration(sessionMaxAge)
	cfg.SessionCleanupInterval = sessionCleanupInterval
	cfg.RSSIMinDBM = rssiMin
	cfg.RSSIMaxDBM = rssiMax
	cfg.MACHashEnabled = macHashEnabled
	cfg.MACHashSalt = macHashSalt

	cfg.ControlAddr = controlAddr
	cfg.ControlUser = controlUser
	cfg.ControlPasswordHash = controlPasswordHash
	cfg.UploadEndpoint = uploadEndpoint
	cfg.UploadMaxRetries = uploadMaxRetries
	cfg.UploadQueueSize = uploadQueueSize
	cfg.UploadBatchSize = uploadBatchSize
	cfg.UploadInterval = secondsToDuration(uploadIntervalSec)
	cfg.WSBrokerURL = wsBrokerURL
	cfg.DBPath = dbPath
	cfg.ZonesCSV = zonesCSV
	cfg.EventDir = eventDir
	cfg.MockMode = mockMode
	cfg.Debug = debug

	return cfg
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
