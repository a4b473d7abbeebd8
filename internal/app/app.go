package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "agencycrm/docs"
	"agencycrm/internal/config"
	"agencycrm/internal/handlers"
	"agencycrm/internal/middleware"
	"agencycrm/internal/pdf"
	"agencycrm/internal/repositories"
	"agencycrm/internal/routes"
	"agencycrm/internal/services"
)

const shutdownTimeout = 10 * time.Second

// Services is the wired service layer, shared by the HTTP server and CLI.
type Services struct {
	Auth      *services.AuthService
	Leads     *services.LeadService
	Contracts *services.ContractService
	Reminders *services.ReminderNotifier
}

// Wire builds repositories and services over an open database.
func Wire(cfg *config.Config, db *sql.DB, log *zap.Logger) (*Services, error) {
	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	leadRepo := repositories.NewLeadRepository(db)
	assignmentRepo := repositories.NewAssignmentRepository(db)
	contractRepo := repositories.NewContractRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	workerRepo := repositories.NewWorkerRepository(db)

	// === Services ===
	notifier, err := services.NewTelegramNotifier(cfg.Telegram.Token, userRepo, log)
	if err != nil {
		return nil, err
	}
	var email services.EmailService
	if cfg.Email.SMTPHost != "" {
		email = services.NewEmailService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
		)
	}
	pdfGen := pdf.NewDocumentGenerator(cfg.PDF.CompanyName, cfg.PDF.FontPath)

	policy := services.NewLeastRecentlyAssignedPolicy(userRepo, assignmentRepo)
	leadService := services.NewLeadService(leadRepo, userRepo, policy, notifier, log)
	contractService := services.NewContractService(
		contractRepo,
		paymentRepo,
		workerRepo,
		leadService,
		pdfGen,
		email,
		cfg.Contracts.DefaultVATRate,
		log,
	)

	return &Services{
		Auth:      services.NewAuthService(userRepo, []byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL, log),
		Leads:     leadService,
		Contracts: contractService,
		Reminders: services.NewReminderNotifier(leadService, notifier, cfg.Telegram.ReminderInterval, log),
	}, nil
}

// NewRouter mounts every HTTP route on a fresh gin engine.
func NewRouter(cfg *config.Config, svc *Services, log *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(log.Named("http")))
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())

	routes.SetupRoutes(router, routes.Handlers{
		Auth:      handlers.NewAuthHandler(svc.Auth, log),
		Leads:     handlers.NewLeadHandler(svc.Leads, svc.Contracts, log),
		Contracts: handlers.NewContractHandler(svc.Contracts, log),
		Reports:   handlers.NewReportHandler(svc.Contracts, log),
	}, []byte(cfg.Auth.JWTSecret))
	return router
}

// Run serves HTTP and the reminder loop until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, db *sql.DB, log *zap.Logger) error {
	svc, err := Wire(cfg, db, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           NewRouter(cfg, svc, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	reminderCtx, stopReminders := context.WithCancel(ctx)
	defer stopReminders()
	remindersDone := make(chan struct{})
	go func() {
		defer close(remindersDone)
		svc.Reminders.Run(reminderCtx)
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		stopReminders()
		<-remindersDone
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	stopReminders()
	<-remindersDone
	return err
}
