// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"clinicash/internal/core/apperror"
	appctx "clinicash/internal/core/context"
	"clinicash/internal/core/id"
	"clinicash/internal/domain/auth"
	"clinicash/internal/domain/catalogs/professional"
	"clinicash/internal/domain/catalogs/treatment"
	"clinicash/internal/storage/postgres"
	"clinicash/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)
	professionals := postgres.NewProfessionalRepo(txManager)
	treatments := postgres.NewTreatmentRepo(txManager)
	users := postgres.NewUserRepo(txManager)

	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(getEnv("JWT_SECRET", "dev-only-secret")))
	authService := auth.NewService(users, jwtService)

	if err := seedAdminUser(ctx, authService, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedCatalogs(ctx, professionals, treatments, authService, log); err != nil {
			log.Fatalw("failed to seed demo catalogs", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, authService *auth.Service, log *logger.Logger) error {
	email := getEnv("ADMIN_EMAIL", "admin@clinicash.local")
	password := getEnv("ADMIN_PASSWORD", "Admin123!")

	user, err := authService.Register(ctx, email, password, "Administrator", appctx.RoleAdmin, id.Nil())
	if err != nil {
		if app, ok := apperror.AsAppError(err); ok && app.Code == apperror.CodeConflict {
			log.Infow("admin user already exists", "email", email)
			return nil
		}
		return err
	}

	log.Infow("admin user created", "email", email, "user_id", user.ID)
	return nil
}

// seedCatalogs loads a small working set: two professionals with different
// commission rates, the common treatments, and one reception user.
func seedCatalogs(
	ctx context.Context,
	professionals professional.Repository,
	treatments treatment.Repository,
	authService *auth.Service,
	log *logger.Logger,
) error {
	existing, err := professionals.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Infow("catalogs already seeded", "professionals", len(existing))
		return nil
	}

	demoProfessionals := []*professional.Professional{
		professional.New("Dra. Elena Vargas", decimal.NewFromInt(35)),
		professional.New("Dr. Marcos Pineda", decimal.NewFromInt(40)),
	}
	for _, p := range demoProfessionals {
		if err := professionals.Create(ctx, p); err != nil {
			return fmt.Errorf("create professional %s: %w", p.Name, err)
		}
		log.Infow("professional created", "name", p.Name, "commission_rate", p.CommissionRate)
	}

	demoTreatments := []*treatment.Treatment{
		treatment.New("Limpieza facial profunda", decimal.NewFromInt(10000), decimal.NewFromInt(30), decimal.NewFromInt(5000)),
		treatment.New("Depilación láser", decimal.NewFromInt(18000), decimal.NewFromInt(25), decimal.NewFromInt(5000)),
		treatment.New("Masaje descontracturante", decimal.NewFromInt(7500), decimal.NewFromInt(20), decimal.NewFromInt(2000)),
	}
	for _, t := range demoTreatments {
		if err := treatments.Create(ctx, t); err != nil {
			return fmt.Errorf("create treatment %s: %w", t.Name, err)
		}
		log.Infow("treatment created", "name", t.Name, "base_price", t.BasePrice)
	}

	reception, err := authService.Register(ctx,
		"reception@clinicash.local", "Reception123!", "Front Desk", appctx.RoleReception, id.Nil())
	if err != nil {
		return fmt.Errorf("create reception user: %w", err)
	}
	log.Infow("reception user created", "email", reception.Email)

	professionalUser, err := authService.Register(ctx,
		"elena@clinicash.local", "Elena123!", demoProfessionals[0].Name,
		appctx.RoleProfessional, demoProfessionals[0].ID)
	if err != nil {
		return fmt.Errorf("create professional user: %w", err)
	}
	log.Infow("professional user created", "email", professionalUser.Email)

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
