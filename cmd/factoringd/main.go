package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ban68/LePret-sub001/internal/application/usecase"
	"github.com/Ban68/LePret-sub001/internal/domain/port"
	"github.com/Ban68/LePret-sub001/internal/domain/service"
	"github.com/Ban68/LePret-sub001/internal/infrastructure/config"
	"github.com/Ban68/LePret-sub001/internal/infrastructure/messaging"
	"github.com/Ban68/LePret-sub001/internal/infrastructure/persistence/memory"
	"github.com/Ban68/LePret-sub001/internal/infrastructure/persistence/postgres"
	grpcPresentation "github.com/Ban68/LePret-sub001/internal/presentation/grpc"
	"github.com/Ban68/LePret-sub001/internal/presentation/rest"
	"github.com/Ban68/LePret-sub001/pkg/auth"
	pkgkafka "github.com/Ban68/LePret-sub001/pkg/kafka"
	"github.com/Ban68/LePret-sub001/pkg/observability"
	pkgpostgres "github.com/Ban68/LePret-sub001/pkg/postgres"
)

// store is a unit of work that can be probed for readiness.
type store interface {
	port.UnitOfWork
	rest.Pinger
}

func main() {
	if err := run(); err != nil {
		slog.Error("factoring-engine failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.ServiceName,
	})
	logger.Info("starting factoring-engine",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"storage", cfg.StorageDriver,
	)

	// Metrics.
	metrics, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: cfg.ServiceName})
	if err != nil {
		return err
	}
	defer func() { _ = metrics.Provider.Shutdown(context.Background()) }() //nolint:errcheck // best-effort flush
	eventMetrics, err := messaging.NewMetrics(metrics.Meter(messaging.MeterName))
	if err != nil {
		return err
	}

	// Storage.
	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// Event delivery: sink -> instrumentation -> async dispatcher.
	var sink port.EventPublisher = messaging.NewLogEventPublisher(logger)
	if cfg.Kafka.Enabled() {
		producer, err := pkgkafka.NewProducer(kafkaConfig(cfg.Kafka))
		if err != nil {
			return fmt.Errorf("kafka producer: %w", err)
		}
		defer producer.Close()
		sink = messaging.NewKafkaEventPublisher(producer, cfg.Kafka.EventsTopic, logger)
		logger.Info("publishing events to kafka", "topic", cfg.Kafka.EventsTopic)
	}
	dispatcher := messaging.NewDispatcher(
		messaging.NewInstrumentedPublisher(sink, eventMetrics),
		cfg.NotifyBuffer,
		logger,
		messaging.WithMetrics(eventMetrics),
	)
	go dispatcher.Run(ctx)

	// Domain services and use cases.
	clock := port.SystemClock{}
	resolver := service.NewParameterResolver()
	calculator := service.NewOfferCalculator(cfg.Offer)
	gate := service.NewAutoApprovalGate()

	openCase := usecase.NewOpenCollectionCaseUseCase(st, dispatcher, clock)
	useCases := grpcPresentation.UseCases{
		TransitionRequest:       usecase.NewTransitionRequestUseCase(st, dispatcher, clock),
		CancelRequest:           usecase.NewCancelRequestUseCase(st, dispatcher, clock),
		ComputeOffer:            usecase.NewComputeOfferUseCase(st, resolver, calculator, clock),
		CreateOffer:             usecase.NewCreateOfferUseCase(st, dispatcher, resolver, calculator, clock),
		AcceptOffer:             usecase.NewAcceptOfferUseCase(st, dispatcher, clock),
		RejectOffer:             usecase.NewRejectOfferUseCase(st, dispatcher, clock),
		EvaluateAutoApproval:    usecase.NewEvaluateAutoApprovalUseCase(st, dispatcher, resolver, calculator, gate, clock),
		Disburse:                usecase.NewDisburseUseCase(st, dispatcher, clock),
		GetNextSteps:            usecase.NewGetNextStepsUseCase(st),
		GetEffectiveParameters:  usecase.NewGetEffectiveParametersUseCase(st, resolver),
		UpsertParameterOverride: usecase.NewUpsertParameterOverrideUseCase(st, dispatcher, clock),
		ResetParameterOverride:  usecase.NewResetParameterOverrideUseCase(st, dispatcher, clock),
		GetGlobalSettings:       usecase.NewGetGlobalSettingsUseCase(st),
		UpdateGlobalSettings:    usecase.NewUpdateGlobalSettingsUseCase(st, dispatcher, clock),
		OpenCollectionCase:      openCase,
		RecordCollectionAction:  usecase.NewRecordCollectionActionUseCase(st, dispatcher, clock),
		UpdateCollectionPromise: usecase.NewUpdateCollectionPromiseUseCase(st, dispatcher, clock),
		CloseCollectionCase:     usecase.NewCloseCollectionCaseUseCase(st, dispatcher, clock),
		ListCollectionActions:   usecase.NewListCollectionActionsUseCase(st),
	}

	// JWT validation.
	jwtSvc, err := auth.NewJWTService(auth.JWTConfig{
		Secret:       cfg.JWT.Secret,
		PublicKeyPEM: cfg.JWT.PublicKeyPEM,
		Issuer:       cfg.JWT.Issuer,
		Expiration:   cfg.JWT.Expiration,
	})
	if err != nil {
		return fmt.Errorf("jwt: %w", err)
	}

	// gRPC server.
	grpcServer, err := grpcPresentation.NewServer(cfg.GRPC, grpcPresentation.NewFactoringHandler(useCases), jwtSvc, logger)
	if err != nil {
		return err
	}

	// HTTP server (probes and metrics).
	mux := http.NewServeMux()
	rest.NewHealthHandler(st, metrics.Handler, logger).RegisterRoutes(mux)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start servers and the delinquency consumer.
	errCh := make(chan error, 3)

	go func() {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	if cfg.Kafka.Enabled() {
		handler := messaging.NewDelinquencyHandler(openCase, logger)
		consumer, err := pkgkafka.NewConsumer(kafkaConfig(cfg.Kafka), cfg.Kafka.DelinquencyTopic, handler.Handle, logger)
		if err != nil {
			return fmt.Errorf("kafka consumer: %w", err)
		}
		defer consumer.Close()
		go func() {
			if err := consumer.Start(ctx); err != nil {
				errCh <- fmt.Errorf("delinquency consumer error: %w", err)
			}
		}()
	}

	// Wait for shutdown signal.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	// Graceful shutdown: stop intake first, then drain queued events.
	cancel()
	grpcServer.GracefulStop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Warn("event dispatcher did not drain", "error", err)
	}

	logger.Info("factoring-engine stopped")
	return nil
}

// openStore connects the configured storage driver and returns its closer.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (store, func(), error) {
	if cfg.StorageDriver == config.StorageMemory {
		logger.Warn("using in-memory storage; data is lost on restart")
		return memory.NewStore(), func() {}, nil
	}

	dbCfg := databaseConfig(cfg.DB)

	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pool, err := pkgpostgres.NewPool(dbCtx, dbCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	logger.Info("connected to database")

	if err := pkgpostgres.RunMigrations(postgres.Migrations(), postgres.MigrationsDir, dbCfg.DSN()); err != nil {
		logger.Warn("migration warning", "error", err)
	}

	return postgres.NewUnitOfWork(pool), pool.Close, nil
}

func databaseConfig(db config.DatabaseConfig) pkgpostgres.Config {
	return pkgpostgres.Config{
		Host:     db.Host,
		Port:     db.Port,
		User:     db.User,
		Password: db.Password,
		Database: db.Name,
		SSLMode:  db.SSLMode,
	}
}

func kafkaConfig(k config.KafkaConfig) pkgkafka.Config {
	return pkgkafka.Config{
		ClientID:      k.ClientID,
		ConsumerGroup: k.ConsumerGroup,
		SASLMechanism: k.SASLMechanism,
		SASLUsername:  k.SASLUsername,
		SASLPassword:  k.SASLPassword,
		Brokers:       k.Brokers,
		TLS:           k.TLS,
		SASLEnabled:   k.SASLEnabled,
	}
}
