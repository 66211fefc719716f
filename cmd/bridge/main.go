package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/wyfcoding/mt5bridge/internal/bridge/application"
	"github.com/wyfcoding/mt5bridge/internal/bridge/domain"
	"github.com/wyfcoding/mt5bridge/internal/bridge/infrastructure/messaging"
	"github.com/wyfcoding/mt5bridge/internal/bridge/infrastructure/persistence/mysql"
	redisrepo "github.com/wyfcoding/mt5bridge/internal/bridge/infrastructure/persistence/redis"
	"github.com/wyfcoding/mt5bridge/internal/bridge/infrastructure/terminal"
	bridgegrpc "github.com/wyfcoding/mt5bridge/internal/bridge/interfaces/grpc"
	bridgehttp "github.com/wyfcoding/mt5bridge/internal/bridge/interfaces/http"
	"github.com/wyfcoding/mt5bridge/pkg/cache"
	"github.com/wyfcoding/mt5bridge/pkg/config"
	"github.com/wyfcoding/mt5bridge/pkg/db"
	"github.com/wyfcoding/mt5bridge/pkg/logger"
	"github.com/wyfcoding/mt5bridge/pkg/metrics"
	"github.com/wyfcoding/mt5bridge/pkg/middleware"
	"github.com/wyfcoding/mt5bridge/pkg/mq"
	"github.com/wyfcoding/mt5bridge/pkg/trace"
)

func main() {
	configPath := flag.String("config", "configs/bridge/config.toml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "bridge exited with error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. 配置
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. 日志
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	logger.Info(ctx, "Starting bridge service", "version", cfg.Version, "environment", cfg.Environment)

	// 3. 追踪
	if cfg.Tracing.Enabled {
		shutdownTracer, err := trace.InitTracer(cfg.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return fmt.Errorf("failed to init tracer: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracer(shutdownCtx); err != nil {
				logger.Error(shutdownCtx, "Tracer shutdown failed", "error", err)
			}
		}()
	}

	// 4. 指标
	m := metrics.New(cfg.ServiceName)
	if err := m.Register(); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}
	if cfg.Metrics.Enabled {
		if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
	}

	// 5. 数据库
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		return fmt.Errorf("failed to init database: %w", err)
	}
	defer database.Close()

	if err := database.AutoMigrate(&mysql.TradeRecordModel{}); err != nil {
		return fmt.Errorf("failed to migrate tables: %w", err)
	}

	// 6. Redis
	redisCache, err := cache.New(cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxPoolSize:  cfg.Redis.MaxPoolSize,
		ConnTimeout:  cfg.Redis.ConnTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to init redis: %w", err)
	}
	defer redisCache.Close()

	// 7. Kafka
	var publisher domain.EventPublisher = messaging.NewNoopEventPublisher()
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		if err != nil {
			return fmt.Errorf("failed to init kafka producer: %w", err)
		}
		defer producer.Close()
		publisher = messaging.NewKafkaEventPublisher(producer, cfg.Kafka.TradeTopic)
	} else {
		logger.Warn(ctx, "Kafka brokers not configured, trade events disabled")
	}

	// 8. 终端会话
	session := terminal.NewClient(terminal.Config{
		GatewayAddr:    cfg.Terminal.GatewayAddr,
		RequestTimeout: time.Duration(cfg.Terminal.RequestTimeout) * time.Second,
	})
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := session.Shutdown(shutdownCtx); err != nil {
			logger.Warn(shutdownCtx, "Session shutdown failed", "error", err)
		}
	}()

	if cfg.Terminal.Login > 0 {
		if _, err := session.Login(ctx, cfg.Terminal.Login, cfg.Terminal.Password, cfg.Terminal.Server); err != nil {
			// 启动时登录失败不致命，巡检会持续探测，API 返回未连接
			logger.Error(ctx, "Initial terminal login failed", "login", cfg.Terminal.Login, "error", err)
		}
	}

	// 9. 仓储与缓存
	tradeRepo := mysql.NewTradeRepository(database.DB)
	quoteCache := redisrepo.NewQuoteCache(redisCache, time.Duration(cfg.Trading.QuoteCacheTTL)*time.Second)
	accountCache := redisrepo.NewAccountCache(redisCache, 30*time.Second)

	// 10. 应用服务
	fillModes, err := domain.ParseFillModes(cfg.Trading.FillModes)
	if err != nil {
		return fmt.Errorf("invalid fill modes in config: %w", err)
	}
	executor := application.NewExecutorService(session, tradeRepo, publisher, m, application.ExecutorConfig{
		FillModes: fillModes,
		Deviation: cfg.Trading.Deviation,
		Magic:     cfg.Trading.Magic,
		Comment:   cfg.Trading.Comment,
	})
	query := application.NewQueryService(session, tradeRepo, quoteCache, accountCache, m, cfg.Trading.SymbolLimit)
	service := application.NewBridgeService(session, executor, query)

	// 11. 连接巡检
	monitor := application.NewConnectionMonitor(session, accountCache, m, time.Duration(cfg.Terminal.ProbeInterval)*time.Second)
	monitor.Start(ctx)
	defer monitor.Stop()

	// 12. HTTP 服务
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		middleware.GinRecoveryMiddleware(),
		middleware.GinLoggingMiddleware(),
		middleware.GinCORSMiddleware(),
		middleware.GinMetricsMiddleware(m),
		otelgin.Middleware(cfg.ServiceName),
	)
	if cfg.RateLimit.Enabled {
		router.Use(middleware.GinRateLimitMiddleware(middleware.NewRateLimiter(cfg.RateLimit.MaxTokens, cfg.RateLimit.RefillRate)))
	}
	bridgehttp.NewBridgeHandler(service).RegisterRoutes(router)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
	go func() {
		logger.Info(ctx, "HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "HTTP server stopped", "error", err)
			stop()
		}
	}()

	// 13. gRPC 服务
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			middleware.GRPCRecoveryInterceptor(),
			middleware.GRPCLoggingInterceptor(),
		),
	)
	grpc_health_v1.RegisterHealthServer(grpcServer, bridgegrpc.NewHealthServer(monitor))

	grpcAddr := fmt.Sprintf("%s:%d", cfg.GRPC.Host, cfg.GRPC.Port)
	listener, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", grpcAddr, err)
	}
	go func() {
		logger.Info(ctx, "gRPC server listening", "addr", grpcAddr)
		if err := grpcServer.Serve(listener); err != nil {
			logger.Error(ctx, "gRPC server stopped", "error", err)
			stop()
		}
	}()

	// 14. 等待退出信号
	<-ctx.Done()
	logger.Info(context.Background(), "Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "HTTP server shutdown failed", "error", err)
	}
	grpcServer.GracefulStop()

	logger.Info(context.Background(), "Bridge service stopped")
	return nil
}
