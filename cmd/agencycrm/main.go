package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"agencycrm/internal/app"
	"agencycrm/internal/authz"
	"agencycrm/internal/config"
	"agencycrm/internal/db"
	"agencycrm/internal/logging"
	"agencycrm/internal/services"
	"agencycrm/internal/utils"
)

var configPath string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:           "agencycrm",
	Short:         "Staffing agency CRM: leads, contracts and receivables",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the reminder loop",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

var receivablesCmd = &cobra.Command{
	Use:   "receivables",
	Short: "Print the receivables report, or write it as xlsx with --out",
	RunE:  runReceivables,
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage CRM users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an active user",
	RunE:  runUserCreate,
}

var (
	autoMigrate bool
	asOfFlag    string
	outFlag     string

	userName     string
	userEmail    string
	userPassword string
	userRole     int
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to config.yaml")

	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", true, "Apply migrations before serving")
	receivablesCmd.Flags().StringVar(&asOfFlag, "as-of", "", "Report date YYYY-MM-DD (default: today)")
	receivablesCmd.Flags().StringVarP(&outFlag, "out", "o", "", "Write an xlsx workbook to this path")

	userCreateCmd.Flags().StringVar(&userName, "name", "", "Full name")
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "Login email")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "Initial password")
	userCreateCmd.Flags().IntVar(&userRole, "role", authz.RoleSales, "Role id (10 sales, 20 operations, 30 audit, 40 management, 50 admin)")
	_ = userCreateCmd.MarkFlagRequired("name")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")
	userCmd.AddCommand(userCreateCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(receivablesCmd)
	rootCmd.AddCommand(userCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// env bundles what every subcommand needs.
type env struct {
	cfg *config.Config
	log *zap.Logger
}

func setup() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Env)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log}, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = e.log.Sync() }()

	conn, err := db.Open(cmd.Context(), e.cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer conn.Close()

	if autoMigrate {
		if err := db.Migrate(conn, e.log); err != nil {
			return err
		}
	}
	return app.Run(cmd.Context(), e.cfg, conn, e.log)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = e.log.Sync() }()

	conn, err := db.Open(cmd.Context(), e.cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer conn.Close()
	return db.Migrate(conn, e.log)
}

func runReceivables(cmd *cobra.Command, _ []string) error {
	asOf := time.Now()
	if asOfFlag != "" {
		t, ok := utils.ParseDate(asOfFlag)
		if !ok {
			return fmt.Errorf("invalid --as-of %q", asOfFlag)
		}
		asOf = t
	}

	e, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = e.log.Sync() }()

	conn, err := db.Open(cmd.Context(), e.cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer conn.Close()

	svc, err := app.Wire(e.cfg, conn, e.log)
	if err != nil {
		return err
	}
	report, err := svc.Contracts.Receivables(cmd.Context(), asOf)
	if err != nil {
		return err
	}

	if outFlag != "" {
		data, err := services.ReceivablesWorkbook(report)
		if err != nil {
			return err
		}
		if err := os.WriteFile(outFlag, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outFlag, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d contracts to %s\n", report.Summary.Contracts, outFlag)
		return nil
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func runUserCreate(cmd *cobra.Command, _ []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = e.log.Sync() }()

	conn, err := db.Open(cmd.Context(), e.cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer conn.Close()

	svc, err := app.Wire(e.cfg, conn, e.log)
	if err != nil {
		return err
	}
	u, err := svc.Auth.Register(cmd.Context(), userName, userEmail, userPassword, userRole)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s)\n", u.ID, u.Email)
	return nil
}
