package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/lectern-ai/lectern-go/internal/config"
	"github.com/lectern-ai/lectern-go/internal/embedder"
	"github.com/lectern-ai/lectern-go/internal/index"
	"github.com/lectern-ai/lectern-go/internal/provider"
	"github.com/lectern-ai/lectern-go/internal/server"
	"github.com/lectern-ai/lectern-go/internal/session"
)

// buildIndex constructs the vector index selected by INDEX_BACKEND: "qdrant"
// (the default) or "memory" for credential-free local runs. The caller owns
// the returned index and must Close it.
func buildIndex(ctx context.Context, log *slog.Logger) (index.Index, error) {
	backend := getEnvOrDefault("INDEX_BACKEND", "qdrant")
	switch backend {
	case "memory":
		log.Info("index ready", slog.String("backend", "memory"))
		return index.NewMemoryIndex(), nil

	case "qdrant":
		host := getEnvOrDefault("QDRANT_HOST", "localhost")
		port := getEnvInt("QDRANT_PORT", 6334)
		idx, err := index.NewQdrantIndex(ctx, &index.QdrantConfig{
			Host:              host,
			Port:              port,
			APIKey:            os.Getenv("QDRANT_API_KEY"),
			UseTLS:            os.Getenv("QDRANT_TLS") == "true",
			CatalogCollection: os.Getenv("QDRANT_CATALOG_COLLECTION"),
			ContentCollection: os.Getenv("QDRANT_CONTENT_COLLECTION"),
			VectorSize:        uint64(embedder.DefaultDimensions(embedder.ResolveBackend())), //nolint:gosec // dimensions are bounded
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Qdrant at %s:%d: %w", host, port, err)
		}
		log.Info("index ready",
			slog.String("backend", "qdrant"),
			slog.String("host", host),
			slog.Int("port", port))
		return idx, nil

	default:
		return nil, fmt.Errorf("unknown INDEX_BACKEND %q — valid values: qdrant, memory", backend)
	}
}

// buildSessions constructs the session store selected by SESSIONS_BACKEND:
// "memory" (the default), "sqlite", or "redis". The caller owns the returned
// store and must Close it.
func buildSessions(log *slog.Logger) (session.Store, error) {
	backend := getEnvOrDefault("SESSIONS_BACKEND", "memory")
	maxExchanges := config.MaxExchanges()

	switch backend {
	case "memory":
		log.Info("session store ready", slog.String("backend", "memory"))
		return session.NewMemoryStore(maxExchanges), nil

	case "sqlite":
		path := os.Getenv("SESSIONS_DB")
		if path == "" {
			var err error
			path, err = session.DefaultDBPath()
			if err != nil {
				return nil, err
			}
		}
		store, err := session.OpenSQLite(path, maxExchanges)
		if err != nil {
			return nil, err
		}
		log.Info("session store ready",
			slog.String("backend", "sqlite"),
			slog.String("path", path))
		return store, nil

	case "redis":
		addr := getEnvOrDefault("REDIS_ADDR", "localhost:6379")
		store := session.NewRedisStore(addr, os.Getenv("REDIS_PASSWORD"), getEnvInt("REDIS_DB", 0), maxExchanges, 0)
		log.Info("session store ready",
			slog.String("backend", "redis"),
			slog.String("addr", addr))
		return store, nil

	default:
		return nil, fmt.Errorf("unknown SESSIONS_BACKEND %q — valid values: memory, sqlite, redis", backend)
	}
}

// buildPingers assembles the readiness probes for GET /api/ready: the chat
// backend, Qdrant when it backs the index, and Redis when it backs sessions.
// A probe that cannot be built is logged and skipped rather than failing
// startup.
func buildPingers(providerCfg *provider.Config, idx index.Index, sessions session.Store, log *slog.Logger) []server.Pinger {
	var pingers []server.Pinger

	hc, err := provider.NewHealthCheck(providerCfg)
	if err != nil {
		log.Warn("llm readiness probe unavailable", slog.Any("error", err))
	} else {
		pingers = append(pingers, server.NewLLMPinger(hc, string(providerCfg.Backend)))
	}

	if p, ok := idx.(server.Pinger); ok {
		pingers = append(pingers, p)
	}

	if p, ok := sessions.(interface{ Ping(context.Context) error }); ok {
		pingers = append(pingers, server.NewSessionPinger(p, "redis"))
	}

	return pingers
}

// dirExists reports whether path exists and is a directory.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
