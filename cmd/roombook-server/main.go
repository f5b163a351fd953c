package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"roombook/backend/internal/cache"
	"roombook/backend/internal/config"
	"roombook/backend/internal/events"
	"roombook/backend/internal/service/meetings"
	"roombook/backend/internal/service/rooms"
	"roombook/backend/internal/service/seats"
	"roombook/backend/internal/store/postgres"
	grpcTransport "roombook/backend/internal/transport/grpc"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", "roombook-server"),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", "roombook-server"),
	)
	slog.SetDefault(log)

	loc, err := cfg.Location()
	if err != nil {
		log.Error("facility timezone invalid", slog.Any("err", err), slog.String("timezone", cfg.Timezone))
		os.Exit(1)
	}

	log.Info(
		"starting",
		slog.String("grpc_addr", cfg.GRPCAddr()),
		slog.String("log_level", cfg.LogLevel),
		slog.String("timezone", loc.String()),
		slog.String("cache_backend", cfg.CacheBackend),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
		SlowQuery:       cfg.DBSlowQuery,
		Logger:          log,
	})
	if err != nil {
		args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
		os.Exit(1)
	}
	defer func() {
		if err := postgres.Close(db); err != nil {
			log.Warn("database close failed", slog.Any("err", err))
		}
	}()

	repo := postgres.NewRepo(db)

	backend, closeBackend := cacheBackend(ctx, log, cfg)
	defer closeBackend()
	schedules := cache.NewSchedules(backend, rooms.ScheduledLoader(repo), log)

	publisher, closePublisher := eventPublisher(log, cfg)
	defer closePublisher()

	meetingSvc := meetings.NewService(repo,
		meetings.WithLocation(loc),
		meetings.WithSchedules(schedules),
		meetings.WithPublisher(publisher),
		meetings.WithLogger(log),
	)
	seatSvc := seats.NewService(repo,
		seats.WithLocation(loc),
		seats.WithPublisher(publisher),
		seats.WithLogger(log),
		seats.WithSeatsPerRegistration(cfg.SeatsPerRegistration),
		seats.WithMinDuration(cfg.MinSeatDuration),
	)
	roomSvc := rooms.NewService(repo,
		rooms.WithLocation(loc),
		rooms.WithSchedules(schedules),
		rooms.WithLogger(log),
	)

	grpcServer := grpc.NewServer(
		grpc.ForceServerCodec(grpcTransport.Codec{}),
		grpc.ChainUnaryInterceptor(
			grpcTransport.RequestID(log),
			grpcTransport.RateLimit(grpcTransport.NewPeerLimiter(cfg.GRPCRateLimit, cfg.GRPCRateBurst)),
			grpcTransport.RequestTimeout(cfg.GRPCRequestTimeout),
		),
	)
	grpcTransport.RegisterBookingServiceServer(grpcServer, grpcTransport.NewBookingServer(meetingSvc, seatSvc, roomSvc, loc, log))

	lis, err := net.Listen("tcp", cfg.GRPCAddr())
	if err != nil {
		log.Error("grpc listen failed", slog.Any("err", err), slog.String("grpc_addr", cfg.GRPCAddr()))
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- grpcServer.Serve(lis)
	}()

	log.Info("grpc server started", slog.String("grpc_addr", cfg.GRPCAddr()))

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdown(log, grpcServer, cfg.ShutdownTimeout)
	case err := <-errCh:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			log.Error("grpc server stopped with error", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func cacheBackend(ctx context.Context, log *slog.Logger, cfg config.Config) (cache.Backend, func()) {
	switch cfg.CacheBackend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable; schedule cache reads will fall through", slog.Any("err", err), slog.String("redis_addr", cfg.RedisAddr))
		}
		return cache.NewRedis(rdb, "", cfg.CacheTTL), func() {
			if err := rdb.Close(); err != nil {
				log.Warn("redis close failed", slog.Any("err", err))
			}
		}
	case "none":
		return nil, func() {}
	default:
		return cache.NewLocal(cfg.CacheTTL), func() {}
	}
}

func eventPublisher(log *slog.Logger, cfg config.Config) (events.Publisher, func()) {
	if cfg.AMQPURL == "" {
		return events.Nop{}, func() {}
	}
	p := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, log)
	return p, func() {
		if err := p.Close(); err != nil {
			log.Warn("amqp close failed", slog.Any("err", err))
		}
	}
}

func shutdown(log *slog.Logger, s *grpc.Server, timeout time.Duration) {
	log.Info("shutting down grpc server", slog.Duration("timeout", timeout))

	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		log.Info("grpc server stopped")
	case <-timer.C:
		log.Warn("grpc graceful shutdown timed out; forcing stop")
		s.Stop()
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
