// Command authgate runs the authentication service over HTTP.
//
// Infrastructure comes from the environment (see serverEnv); the engine itself
// is configured through the AUTH_* variables read by authgate.LoadConfigFromEnv.
// Without REDIS_ADDR an embedded miniredis is started, which is only suitable
// for local development.
//
// Run:
//
//	AUTH_BASE_URL=http://localhost:8080 \
//	AUTH_SECRET=$(openssl rand -hex 32) \
//	ENVIRONMENT=development \
//	go run ./cmd/authgate
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/caarlos0/env/v11"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/alon-poshil/authgate"
	"github.com/alon-poshil/authgate/internal/memusers"
	promexport "github.com/alon-poshil/authgate/metrics/export/prometheus"
	"github.com/alon-poshil/authgate/objectstore"
)

// serverEnv is process infrastructure, separate from the engine Config.
type serverEnv struct {
	Addr            string        `env:"HTTP_ADDR"          envDefault:":8080"`
	LogLevel        string        `env:"LOG_LEVEL"          envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"   envDefault:"10s"`
	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB"`

	S3Bucket          string `env:"S3_BUCKET"`
	S3Region          string `env:"S3_REGION"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	S3ForcePathStyle  bool   `env:"S3_FORCE_PATH_STYLE"`
}

func initLogger(loglevel string) log.Logger {
	logger := log.NewJSONLogger(log.NewSyncWriter(os.Stdout))
	logger = log.With(logger,
		"ts", log.DefaultTimestampUTC,
		"caller", log.DefaultCaller,
	)

	switch strings.ToLower(loglevel) {
	case "debug":
		logger = level.NewFilter(logger, level.AllowDebug())
	case "warn":
		logger = level.NewFilter(logger, level.AllowWarn())
	case "error":
		logger = level.NewFilter(logger, level.AllowError())
	default:
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	return logger
}

func main() {
	var srv serverEnv
	if err := env.Parse(&srv); err != nil {
		fmt.Fprintf(os.Stderr, "parse server env: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(srv.LogLevel)
	if err := run(srv, logger); err != nil {
		level.Error(logger).Log("msg", "authgate exited", "err", err)
		os.Exit(1)
	}
}

func run(srv serverEnv, logger log.Logger) error {
	cfg, err := authgate.LoadConfigFromEnv()
	if err != nil {
		return err
	}

	// ---------- secondary storage ----------
	redisAddr := srv.RedisAddr
	if redisAddr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return fmt.Errorf("start miniredis: %w", err)
		}
		defer mr.Close()
		redisAddr = mr.Addr()
		level.Warn(logger).Log("msg", "REDIS_ADDR not set, using embedded miniredis", "addr", redisAddr)
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: srv.RedisPassword,
		DB:       srv.RedisDB,
	})
	defer rdb.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = rdb.Ping(pingCtx).Err()
	cancel()
	if err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	// ---------- engine ----------
	builder := authgate.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserProvider(memusers.New(time.Now)).
		WithLogger(logger).
		WithAuditSink(authgate.NewLogAuditSink(logger))

	if srv.S3Bucket != "" {
		store, err := objectstore.NewS3Store(objectstore.S3Config{
			Bucket:          srv.S3Bucket,
			Region:          srv.S3Region,
			Endpoint:        srv.S3Endpoint,
			AccessKeyID:     srv.S3AccessKeyID,
			SecretAccessKey: srv.S3SecretAccessKey,
			ForcePathStyle:  srv.S3ForcePathStyle,
		})
		if err != nil {
			return err
		}
		builder = builder.WithObjectStore(store)
	} else {
		level.Info(logger).Log("msg", "S3_BUCKET not set, avatar cleanup disabled")
	}

	engine, err := builder.Build()
	if err != nil {
		return fmt.Errorf("engine build: %w", err)
	}
	defer engine.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(promexport.NewCollector(engine))

	mux := http.NewServeMux()
	mux.Handle("/api/auth/", newAuthHandler(engine))
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              srv.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		level.Info(logger).Log("msg", "listening", "addr", srv.Addr, "base_url", cfg.BaseURL)
		errc <- server.ListenAndServe()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case s := <-sig:
		level.Info(logger).Log("msg", "shutting down", "signal", s.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), srv.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(ctx)
}
