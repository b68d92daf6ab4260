package model

// Display labels for enum tags, kept out of the domain types themselves so
// presentation never leaks into bookkeeping logic.

var accountTypeLabels = map[AccountType]string{
	AccountTypeAsset:     "Asset",
	AccountTypeLiability: "Liability",
	AccountTypeEquity:    "Equity",
	AccountTypeRevenue:   "Revenue",
	AccountTypeExpense:   "Expense",
}

var transactionStatusLabels = map[TransactionStatus]string{
	StatusDraft:     "Draft",
	StatusPending:   "Pending Approval",
	StatusApproved:  "Approved",
	StatusPosted:    "Posted",
	StatusCancelled: "Cancelled",
}

var budgetStatusLabels = map[BudgetStatus]string{
	BudgetDraft:     "Draft",
	BudgetSubmitted: "Submitted",
	BudgetApproved:  "Approved",
	BudgetActive:    "Active",
	BudgetClosed:    "Closed",
	BudgetCancelled: "Cancelled",
}

var reportTypeLabels = map[ReportType]string{
	ReportBalanceSheet:    "Balance Sheet",
	ReportIncomeStatement: "Income Statement",
}

// Label returns the display label for an account type.
func (t AccountType) Label() string { return labelOr(accountTypeLabels[t], string(t)) }

// Label returns the display label for a transaction status.
func (s TransactionStatus) Label() string { return labelOr(transactionStatusLabels[s], string(s)) }

// Label returns the display label for a budget status.
func (s BudgetStatus) Label() string { return labelOr(budgetStatusLabels[s], string(s)) }

// Label returns the display label for a report type.
func (t ReportType) Label() string { return labelOr(reportTypeLabels[t], string(t)) }

func labelOr(label, fallback string) string {
	if label == "" {
		return fallback
	}
	return label
}
