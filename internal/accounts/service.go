// Package accounts owns the chart of accounts: registration, hierarchy,
// leaf resolution, and the budget-type compatibility rule.
package accounts

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/closebooks-dev/closebooks/internal/apperrors"
	"github.com/closebooks-dev/closebooks/internal/model"
	"github.com/closebooks-dev/closebooks/internal/store"
)

// MaxCodeLength bounds account codes.
const MaxCodeLength = 20

// Service provides chart-of-accounts operations over the store.
type Service struct {
	store  store.Store
	logger *zap.Logger
}

// NewService creates an account registry service.
func NewService(st store.Store, logger *zap.Logger) *Service {
	return &Service{store: st, logger: logger}
}

// RegisterParams holds parameters for registering an account.
type RegisterParams struct {
	CompanyID      uuid.UUID
	Code           string
	Name           string
	Type           model.AccountType
	Category       model.AccountCategory
	ParentID       uuid.UUID // uuid.Nil = root account
	TrackBalance   bool
	SortOrder      int
	Description    string
	OpeningBalance decimal.Decimal
}

// Register creates an account. The level is derived from the parent
// (parent.Level+1, or 1 for roots) and the parent stops being a leaf.
// New accounts are always leaves until they get children of their own.
func (s *Service) Register(ctx context.Context, p RegisterParams) (model.Account, error) {
	if err := validateCode(p.Code); err != nil {
		return model.Account{}, err
	}
	if p.Name == "" {
		return model.Account{}, apperrors.Validationf("account name is required")
	}
	if p.Type.NormalSide() == "" {
		return model.Account{}, apperrors.Validationf("unknown account type %q", p.Type)
	}

	account := model.Account{
		ID:             uuid.New(),
		CompanyID:      p.CompanyID,
		Code:           p.Code,
		Name:           p.Name,
		Type:           p.Type,
		Category:       p.Category,
		Side:           p.Type.NormalSide(),
		Level:          1,
		ParentID:       p.ParentID,
		Leaf:           true,
		TrackBalance:   p.TrackBalance,
		SortOrder:      p.SortOrder,
		Description:    p.Description,
		OpeningBalance: p.OpeningBalance,
		CurrentBalance: p.OpeningBalance,
	}

	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		if p.ParentID != uuid.Nil {
			parent, err := tx.Accounts().Get(ctx, p.ParentID)
			if err != nil {
				return err
			}
			if parent.Deleted {
				return apperrors.NotFoundf("parent account %s is deleted", parent.Code)
			}
			if parent.CompanyID != p.CompanyID {
				return apperrors.Validationf("parent account %s belongs to a different company", parent.Code)
			}
			account.Level = parent.Level + 1
			if account.Level > model.MaxAccountLevel {
				return apperrors.Validationf("account level %d exceeds maximum %d", account.Level, model.MaxAccountLevel)
			}
			if parent.Leaf {
				parent.Leaf = false
				if err := tx.Accounts().Update(ctx, parent); err != nil {
					return err
				}
			}
		}
		return tx.Accounts().Create(ctx, account)
	})
	if err != nil {
		return model.Account{}, err
	}

	s.logger.Info("account registered",
		zap.String("code", account.Code),
		zap.String("type", string(account.Type)),
		zap.Int("level", account.Level))
	return account, nil
}

// Get returns a non-deleted account by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (model.Account, error) {
	a, err := s.store.Accounts().Get(ctx, id)
	if err != nil {
		return model.Account{}, err
	}
	if a.Deleted {
		return model.Account{}, apperrors.NotFoundf("account %s is deleted", a.Code)
	}
	return a, nil
}

// GetByCode returns a non-deleted account by company and code.
func (s *Service) GetByCode(ctx context.Context, companyID uuid.UUID, code string) (model.Account, error) {
	a, err := s.store.Accounts().GetByCode(ctx, companyID, code)
	if err != nil {
		return model.Account{}, err
	}
	if a.Deleted {
		return model.Account{}, apperrors.NotFoundf("account %s is deleted", code)
	}
	return a, nil
}

// List returns the company's non-deleted accounts in statement order.
func (s *Service) List(ctx context.Context, companyID uuid.UUID) ([]model.Account, error) {
	return s.store.Accounts().ListByCompany(ctx, companyID)
}

// LeafAccounts returns the accounts with no non-deleted children: the only
// valid posting targets.
func (s *Service) LeafAccounts(ctx context.Context, companyID uuid.UUID) ([]model.Account, error) {
	all, err := s.store.Accounts().ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	var leaves []model.Account
	for _, a := range all {
		if a.Leaf {
			leaves = append(leaves, a)
		}
	}
	return leaves, nil
}

// Deactivate soft-deletes an account. Accounts with live children cannot be
// deactivated; when the last child goes, the parent becomes a leaf again.
func (s *Service) Deactivate(ctx context.Context, accountID uuid.UUID) error {
	return s.store.WithinTx(ctx, func(tx store.Store) error {
		account, err := tx.Accounts().Get(ctx, accountID)
		if err != nil {
			return err
		}
		if account.Deleted {
			return apperrors.StateConflictf("account %s is already deleted", account.Code)
		}
		children, err := tx.Accounts().ListChildren(ctx, accountID)
		if err != nil {
			return err
		}
		if len(children) > 0 {
			return apperrors.StateConflictf("account %s has %d active sub-accounts", account.Code, len(children))
		}

		account.Deleted = true
		if err := tx.Accounts().Update(ctx, account); err != nil {
			return err
		}

		if account.ParentID == uuid.Nil {
			return nil
		}
		siblings, err := tx.Accounts().ListChildren(ctx, account.ParentID)
		if err != nil {
			return err
		}
		if len(siblings) == 0 {
			parent, err := tx.Accounts().Get(ctx, account.ParentID)
			if err != nil {
				return err
			}
			parent.Leaf = true
			return tx.Accounts().Update(ctx, parent)
		}
		return nil
	})
}

// ValidateBudgetTypeMatch enforces budget/account type compatibility:
// revenue budgets on revenue accounts, expense budgets on expense accounts,
// capital budgets on asset or equity accounts.
func ValidateBudgetTypeMatch(budgetType model.BudgetType, accountType model.AccountType) error {
	ok := false
	switch budgetType {
	case model.BudgetTypeRevenue:
		ok = accountType == model.AccountTypeRevenue
	case model.BudgetTypeExpense:
		ok = accountType == model.AccountTypeExpense
	case model.BudgetTypeCapital:
		ok = accountType == model.AccountTypeAsset || accountType == model.AccountTypeEquity
	}
	if !ok {
		return apperrors.Validationf("budget type %s is not valid for %s accounts", budgetType, accountType)
	}
	return nil
}

func validateCode(code string) error {
	if code == "" {
		return apperrors.Validationf("account code is required")
	}
	if len(code) > MaxCodeLength {
		return apperrors.Validationf("account code %q exceeds %d characters", code, MaxCodeLength)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return apperrors.Validationf("account code %q must be numeric", code)
		}
	}
	return nil
}
