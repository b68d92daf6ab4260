package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/closebooks-dev/closebooks/internal/accounts"
	"github.com/closebooks-dev/closebooks/internal/balance"
	"github.com/closebooks-dev/closebooks/internal/budget"
	"github.com/closebooks-dev/closebooks/internal/closing"
	"github.com/closebooks-dev/closebooks/internal/config"
	"github.com/closebooks-dev/closebooks/internal/importer"
	"github.com/closebooks-dev/closebooks/internal/ledger"
	"github.com/closebooks-dev/closebooks/internal/reporting"
	"github.com/closebooks-dev/closebooks/internal/store/postgres"
)

// app wires the services behind every command.
type app struct {
	cfg       *config.Config
	companyID uuid.UUID
	logger    *zap.Logger
	db        *postgres.DB

	accounts *accounts.Service
	ledger   *ledger.Service
	calc     *balance.Calculator
	budgets  *budget.Service
	reports  *reporting.Service
	closing  *closing.Coordinator
	importer *importer.Service
}

// openApp loads .env and the config file, connects to the database, and
// builds the service graph.
func openApp(ctx context.Context, configPath string) (*app, error) {
	// .env is optional; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	companyID, err := cfg.Company.CompanyID()
	if err != nil {
		return nil, err
	}
	logger, err := cfg.Logging.Build()
	if err != nil {
		return nil, err
	}

	db, err := postgres.Connect(ctx, cfg.Database.URL())
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	st := db.Store()
	calc := balance.NewCalculator(st)
	accountSvc := accounts.NewService(st, logger)
	ledgerSvc := ledger.NewService(st, calc, logger)

	return &app{
		cfg:       cfg,
		companyID: companyID,
		logger:    logger,
		db:        db,
		accounts:  accountSvc,
		ledger:    ledgerSvc,
		calc:      calc,
		budgets:   budget.NewService(st, logger),
		reports:   reporting.NewService(st, logger),
		closing:   closing.NewCoordinator(st, calc, logger),
		importer:  importer.NewService(importer.DefaultRegistry(), accountSvc, ledgerSvc),
	}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
	a.db.Close()
}
