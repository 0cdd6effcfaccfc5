package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todo-manager/backend/internal/auth"
	"todo-manager/backend/internal/cache"
	"todo-manager/backend/internal/config"
	"todo-manager/backend/internal/database"
	"todo-manager/backend/internal/monitoring"
	"todo-manager/backend/internal/ratelimit"
	"todo-manager/backend/internal/repositories"
	"todo-manager/backend/internal/router"
	"todo-manager/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serveCmd := newServeCmd()

	rootCmd := &cobra.Command{
		Use:          "todo-manager",
		Short:        "Personal task manager backend",
		SilenceUsage: true,
		RunE:         serveCmd.RunE,
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newTokenCmd())
	return rootCmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			pool, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := pool.Migrate(); err != nil {
				return err
			}
			log.Println("Database migrated")
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	var (
		userID string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.IsProduction() {
				return errors.New("token minting is disabled in production")
			}
			if ttl <= 0 {
				ttl = cfg.Auth.TokenTTL
			}

			token, err := auth.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer).IssueToken(userID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id to place in the token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to TOKEN_TTL)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func openDatabase(cfg *config.Config) (*database.DatabasePool, error) {
	logLevel := logger.Warn
	if cfg.IsProduction() {
		logLevel = logger.Error
	}

	return database.NewDatabasePool(&database.PoolConfig{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.GetDatabaseDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		LogLevel:        logLevel,
	})
}

func connectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := cache.NewRedisClient(&cache.CacheConfig{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Redis.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return client, fmt.Errorf("failed to reach redis at %s: %w", cfg.GetRedisAddr(), err)
	}
	return client, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	pool, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Migrate(); err != nil {
		return err
	}

	monitor := monitoring.NewMonitor()
	monitor.RegisterHealthCheck("database", func(ctx context.Context) error { return pool.Health() })
	monitor.RegisterStats("database", func() interface{} { return pool.Stats() })

	var redisClient *redis.Client
	if cfg.UsesRedis() {
		redisClient, err = connectRedis(ctx, cfg)
		if err != nil {
			if cfg.RateLimit.Enabled && cfg.RateLimit.Backend == ratelimit.BackendRedis {
				redisClient.Close()
				return err
			}
			// the cache degrades to its in-process level while redis is away
			log.Printf("Warning: %v", err)
		}
		defer redisClient.Close()
		monitor.RegisterHealthCheck("redis", func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}

	limiter, err := ratelimit.New(ratelimit.Config{
		Enabled:         cfg.RateLimit.Enabled,
		Backend:         cfg.RateLimit.Backend,
		CleanupInterval: cfg.RateLimit.CleanupInterval,
	}, redisClient)
	if err != nil {
		return err
	}
	if memory, ok := limiter.(*ratelimit.MemoryLimiter); ok {
		defer memory.Close()
		monitor.RegisterStats("rate_limiter", func() interface{} { return gin.H{"buckets": memory.Size()} })
	}

	var summaries *services.SummaryCache
	if cfg.Cache.Enabled {
		var l2 *cache.RedisCache
		if redisClient != nil {
			l2 = cache.NewRedisCache(redisClient)
		}
		multiLevel := cache.NewMultiLevelCache(l2, &cache.CircuitBreakerConfig{
			MaxFailures:      cfg.Cache.BreakerMaxFailures,
			Timeout:          cfg.Cache.BreakerTimeout,
			HalfOpenMaxCalls: 1,
		}, cfg.Cache.L1TTL)
		summaries = services.NewSummaryCache(multiLevel, cfg.Cache.TTL)
		monitor.RegisterStats("cache", func() interface{} { return multiLevel.Stats() })
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	svc := services.New(repositories.New(pool.DB), limiter, summaries)
	engine := router.New(svc, router.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Verifier:       auth.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		Monitor:        monitor,
		RequestLogging: true,
	})

	server := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Println("Server stopped")
	return nil
}
