package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"enlistment-gateway/enlistment"
	"enlistment-gateway/enlistment/application"
	"enlistment-gateway/enlistment/domain"
	"enlistment-gateway/enlistment/infra"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	cat, roster, err := loadSeed(cfg)
	if err != nil {
		log.Fatalf("seed error: %v", err)
	}

	var statsStore domain.StatsStore = infra.NewMemoryStatsStore()
	statsBackend := "memory"
	if cfg.statsEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.statsRedisAddr,
			Password: cfg.statsRedisPassword,
			DB:       cfg.statsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			log.Fatalf("redis stats ping error: %v", err)
		}

		redisStats := infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.statsPrefix),
			infra.WithStatsTTL(cfg.statsTTL),
			infra.WithStatsTrackStudents(cfg.statsTrackStudents),
		)
		statsStore = redisStats
		statsBackend = "redis prefix=" + redisStats.Prefix()
	}

	gate := infra.NewSectionGate(cfg.sectionQueueMax)

	svc := application.EnlistmentService{
		Catalog: cat,
		Roster:  roster,
		Stats:   statsStore,
		Logger:  log.Default(),

		Gate:        gate,
		GateTimeout: cfg.sectionQueueTimeout,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store := infra.NewStore(
		cfg.throttleRPS, cfg.throttleBurst,
		infra.WithClassRate("ip", cfg.ipThrottleRPS, cfg.ipThrottleBurst),
	)
	store.StartJanitor(ctx)

	h := enlistment.NewHandler(svc)
	if cfg.throttleEnabled {
		h = enlistment.ThrottleMiddleware(enlistment.ThrottleOptions{
			Store:              store,
			RejectStatus:       http.StatusTooManyRequests,
			RetryAfter:         cfg.retryAfter,
			Methods:            []string{http.MethodPost, http.MethodDelete},
			AddThrottleHeaders: cfg.addHeaders,
		})(h)
	}

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("enlistd listening on %s", cfg.listenAddr)
	log.Printf("catalog: file=%q sections=%d students=%d", cfg.catalogFile, len(cat.Sections()), roster.Len())
	log.Printf("throttle: enabled=%v student=%.3f/%d ip=%.3f/%d retryAfter=%s", cfg.throttleEnabled, cfg.throttleRPS, cfg.throttleBurst, cfg.ipThrottleRPS, cfg.ipThrottleBurst, cfg.retryAfter)
	log.Printf("stats: backend=%s ttl=%s trackStudents=%v", statsBackend, cfg.statsTTL, cfg.statsTrackStudents)
	log.Printf("section queue: max=%d timeout=%s", gate.Limit(), cfg.sectionQueueTimeout)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

func loadSeed(cfg config) (*infra.Catalog, *infra.Roster, error) {
	f, err := os.Open(cfg.catalogFile)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	cat, err := infra.LoadCatalog(f, cfg.delimiter)
	if err != nil {
		return nil, nil, err
	}

	roster := infra.NewRoster()
	if cfg.studentsFile == "" {
		return cat, roster, nil
	}
	sf, err := os.Open(cfg.studentsFile)
	if err != nil {
		return nil, nil, err
	}
	defer sf.Close()
	if _, err := infra.LoadStudents(sf, cfg.delimiter, cat, roster); err != nil {
		return nil, nil, err
	}
	return cat, roster, nil
}

type config struct {
	listenAddr   string
	catalogFile  string
	studentsFile string
	delimiter    rune

	throttleEnabled bool
	throttleRPS     float64
	throttleBurst   int
	ipThrottleRPS   float64
	ipThrottleBurst int
	retryAfter      time.Duration
	addHeaders      bool

	sectionQueueMax     int
	sectionQueueTimeout time.Duration

	statsEnabled       bool
	statsRedisAddr     string
	statsRedisPassword string
	statsRedisDB       int
	statsPrefix        string
	statsTTL           time.Duration
	statsTrackStudents bool
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.catalogFile = os.Getenv("CATALOG_FILE")
	cfg.studentsFile = os.Getenv("STUDENTS_FILE")
	delim := getenvDefault("CSV_DELIMITER", ",")

	cfg.throttleEnabled = getenvBoolDefault("THROTTLE_ENABLED", true)
	cfg.throttleRPS = getenvFloatDefault("THROTTLE_RPS", 5)
	cfg.throttleBurst = getenvIntDefault("THROTTLE_BURST", 10)
	cfg.ipThrottleRPS = getenvFloatDefault("IP_THROTTLE_RPS", 1)
	cfg.ipThrottleBurst = getenvIntDefault("IP_THROTTLE_BURST", 5)
	cfg.retryAfter = getenvDurationDefault("RETRY_AFTER", 1*time.Second)
	cfg.addHeaders = getenvBoolDefault("ADD_THROTTLE_HEADERS", false)

	cfg.sectionQueueMax = getenvIntDefault("SECTION_QUEUE_MAX", 100)
	cfg.sectionQueueTimeout = getenvDurationDefault("SECTION_QUEUE_TIMEOUT", 2*time.Second)

	cfg.statsEnabled = getenvBoolDefault("STATS_ENABLED", false)
	cfg.statsRedisAddr = os.Getenv("STATS_REDIS_ADDR")
	cfg.statsRedisPassword = os.Getenv("STATS_REDIS_PASSWORD")
	cfg.statsRedisDB = getenvIntDefault("STATS_REDIS_DB", 0)
	cfg.statsPrefix = getenvDefault("STATS_PREFIX", "enlistment:stats")
	cfg.statsTTL = getenvDurationDefault("STATS_TTL", 24*time.Hour)
	cfg.statsTrackStudents = getenvBoolDefault("STATS_TRACK_STUDENTS", false)

	if strings.TrimSpace(cfg.catalogFile) == "" {
		return config{}, errors.New("CATALOG_FILE is required")
	}
	if utf8.RuneCountInString(delim) != 1 {
		return config{}, errors.New("CSV_DELIMITER must be a single character")
	}
	cfg.delimiter, _ = utf8.DecodeRuneInString(delim)

	if cfg.statsEnabled && strings.TrimSpace(cfg.statsRedisAddr) == "" {
		return config{}, errors.New("STATS_REDIS_ADDR is required when STATS_ENABLED=true")
	}
	if cfg.throttleRPS <= 0 {
		return config{}, errors.New("THROTTLE_RPS must be > 0")
	}
	if cfg.throttleBurst <= 0 {
		return config{}, errors.New("THROTTLE_BURST must be > 0")
	}
	if cfg.ipThrottleRPS <= 0 || cfg.ipThrottleBurst <= 0 {
		return config{}, errors.New("IP_THROTTLE_RPS and IP_THROTTLE_BURST must be > 0")
	}
	if cfg.sectionQueueMax < 0 {
		return config{}, errors.New("SECTION_QUEUE_MAX must be >= 0")
	}
	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
