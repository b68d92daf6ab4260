package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/closebooks-dev/closebooks/internal/accounts"
	"github.com/closebooks-dev/closebooks/internal/config"
	"github.com/closebooks-dev/closebooks/internal/store/postgres"
)

func newInitCommand(configPath *string) *cobra.Command {
	var name string
	var skipSeed bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new set of books",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runInit(cmd.Context(), cmd, absDir, name, skipSeed)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "company name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().BoolVar(&skipSeed, "skip-seed", false, "do not seed the default chart of accounts")

	return cmd
}

func runInit(ctx context.Context, cmd *cobra.Command, dir, name string, skipSeed bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	path := filepath.Join(dir, "closebooks.yaml")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	cfg := config.Default(name)
	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	_ = godotenv.Load()

	db, err := postgres.Connect(ctx, cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}

	if !skipSeed {
		companyID, err := cfg.Company.CompanyID()
		if err != nil {
			return err
		}
		logger, err := cfg.Logging.Build()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		if err := seedChart(ctx, accounts.NewService(db.Store(), logger), companyID); err != nil {
			return fmt.Errorf("seeding chart of accounts: %w", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s in %s\n", name, dir)
	return nil
}

// seedChart registers the default chart in order, resolving parent links
// by code as it goes.
func seedChart(ctx context.Context, svc *accounts.Service, companyID uuid.UUID) error {
	ids := make(map[string]uuid.UUID)
	for i, entry := range accounts.DefaultChart() {
		parentID := uuid.Nil
		if entry.ParentCode != "" {
			parentID = ids[entry.ParentCode]
		}
		account, err := svc.Register(ctx, accounts.RegisterParams{
			CompanyID:    companyID,
			Code:         entry.Code,
			Name:         entry.Name,
			Type:         entry.Type,
			Category:     entry.Category,
			ParentID:     parentID,
			TrackBalance: true,
			SortOrder:    i,
		})
		if err != nil {
			return fmt.Errorf("account %s: %w", entry.Code, err)
		}
		ids[entry.Code] = account.ID
	}
	return nil
}
