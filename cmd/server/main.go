// Package main is the entry point for the clinicash API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinicash/internal/config"
	"clinicash/internal/core/tx"
	"clinicash/internal/domain/adjustment"
	"clinicash/internal/domain/appointment"
	"clinicash/internal/domain/auth"
	"clinicash/internal/domain/catalogs/professional"
	"clinicash/internal/domain/catalogs/treatment"
	"clinicash/internal/domain/ledger"
	"clinicash/internal/domain/reception"
	"clinicash/internal/domain/settlement"
	"clinicash/internal/storage/memory"
	"clinicash/internal/storage/postgres"
	v1 "clinicash/internal/transport/http/v1"
	"clinicash/pkg/logger"
)

// repositories groups the storage layer behind the domain interfaces so the
// service wiring below does not care which backend produced them.
type repositories struct {
	ledger        ledger.Repository
	appointments  appointment.Repository
	settlements   settlement.Repository
	adjustments   adjustment.Repository
	reception     reception.Repository
	professionals professional.Repository
	treatments    treatment.Repository
	users         auth.Repository

	txManager tx.Manager
	pool      *postgres.Pool
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	ctx := context.Background()
	log.Infow("starting clinicash server", "storage", cfg.StorageBackend)

	repos, err := buildRepositories(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to initialize storage", "error", err)
	}
	if repos.pool != nil {
		defer repos.pool.Close()
	}

	// --- Auth ---
	jwtConfig := auth.DefaultJWTConfig(cfg.JWTSecret)
	jwtConfig.AccessTokenTTL = cfg.JWTTTL
	jwtService := auth.NewJWTService(jwtConfig)
	authService := auth.NewService(repos.users, jwtService)

	// --- Domain services ---
	ledgerService := ledger.NewService(repos.ledger, repos.professionals, repos.txManager)
	appointmentService := appointment.NewService(repos.appointments, ledgerService, repos.txManager)
	settlementService := settlement.NewService(
		repos.settlements,
		repos.appointments,
		repos.professionals,
		repos.treatments,
		ledgerService,
		repos.txManager,
	)
	adjustmentService := adjustment.NewService(repos.adjustments, repos.appointments, repos.txManager)
	receptionService := reception.NewService(repos.reception, ledgerService, repos.txManager)

	router := v1.NewRouter(v1.RouterConfig{
		Logger:             log,
		JWTValidator:       jwtService,
		Pool:               repos.pool,
		AuthService:        authService,
		LedgerService:      ledgerService,
		AppointmentService: appointmentService,
		SettlementService:  settlementService,
		AdjustmentService:  adjustmentService,
		ReceptionService:   receptionService,
		Professionals:      repos.professionals,
		Treatments:         repos.treatments,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("forced shutdown", "error", err)
	}
	log.Info("server stopped")
}

func buildRepositories(ctx context.Context, cfg *config.Config, log *logger.Logger) (*repositories, error) {
	switch cfg.StorageBackend {
	case "memory":
		store := memory.NewStore()
		return &repositories{
			ledger:        store.Ledger(),
			appointments:  store.Appointments(),
			settlements:   store.Settlements(),
			adjustments:   store.Adjustments(),
			reception:     store.Reception(),
			professionals: store.Professionals(),
			treatments:    store.Treatments(),
			users:         store.Users(),
			txManager:     memory.NewTxManager(store),
		}, nil

	case "postgres":
		poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
		poolCfg.MaxConns = cfg.DBMaxConns
		pool, err := postgres.NewPool(ctx, poolCfg)
		if err != nil {
			return nil, err
		}
		log.Infow("database connection established", "max_conns", poolCfg.MaxConns)

		txManager := postgres.NewTxManager(pool)
		return &repositories{
			ledger:        postgres.NewLedgerRepo(txManager),
			appointments:  postgres.NewAppointmentRepo(txManager),
			settlements:   postgres.NewSettlementRepo(txManager),
			adjustments:   postgres.NewAdjustmentRepo(txManager),
			reception:     postgres.NewReceptionRepo(txManager),
			professionals: postgres.NewProfessionalRepo(txManager),
			treatments:    postgres.NewTreatmentRepo(txManager),
			users:         postgres.NewUserRepo(txManager),
			txManager:     txManager,
			pool:          pool,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
