package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/closebooks-dev/closebooks/internal/model"
	"github.com/closebooks-dev/closebooks/internal/store"
)

type reportRepo struct{ s *pgStore }

func (r reportRepo) Upsert(ctx context.Context, report model.FinancialReport) (model.FinancialReport, error) {
	var saved model.FinancialReport
	err := r.s.WithinTx(ctx, func(tx store.Store) error {
		inner := tx.(*pgStore)

		if report.ID == uuid.Nil {
			report.ID = uuid.New()
		}
		// The conflict target is the report key: regenerating keeps the
		// existing row and its id.
		err := inner.q.QueryRow(ctx, `
			INSERT INTO financial_reports (
				id, company_id, report_type, fiscal_year, fiscal_period, base_date,
				generated_at, total_assets, total_liabilities, total_equity,
				total_revenue, total_expenses, net_income, current_ratio, debt_ratio,
				equity_ratio, return_on_assets, return_on_equity, gross_margin, net_margin
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
			ON CONFLICT (company_id, report_type, fiscal_year, fiscal_period) DO UPDATE SET
				base_date = EXCLUDED.base_date,
				generated_at = EXCLUDED.generated_at,
				total_assets = EXCLUDED.total_assets,
				total_liabilities = EXCLUDED.total_liabilities,
				total_equity = EXCLUDED.total_equity,
				total_revenue = EXCLUDED.total_revenue,
				total_expenses = EXCLUDED.total_expenses,
				net_income = EXCLUDED.net_income,
				current_ratio = EXCLUDED.current_ratio,
				debt_ratio = EXCLUDED.debt_ratio,
				equity_ratio = EXCLUDED.equity_ratio,
				return_on_assets = EXCLUDED.return_on_assets,
				return_on_equity = EXCLUDED.return_on_equity,
				gross_margin = EXCLUDED.gross_margin,
				net_margin = EXCLUDED.net_margin
			RETURNING id`,
			report.ID, report.CompanyID, report.Type, report.FiscalYear, report.FiscalPeriod,
			report.BaseDate, report.GeneratedAt, report.TotalAssets.String(),
			report.TotalLiabilities.String(), report.TotalEquity.String(),
			report.TotalRevenue.String(), report.TotalExpenses.String(),
			report.NetIncome.String(), report.CurrentRatio.String(), report.DebtRatio.String(),
			report.EquityRatio.String(), report.ReturnOnAssets.String(),
			report.ReturnOnEquity.String(), report.GrossMargin.String(),
			report.NetMargin.String()).Scan(&report.ID)
		if err != nil {
			return fmt.Errorf("upserting report: %w", err)
		}

		if _, err := inner.q.Exec(ctx,
			`DELETE FROM financial_report_items WHERE report_id = $1`, report.ID); err != nil {
			return fmt.Errorf("clearing report items: %w", err)
		}
		for i := range report.Items {
			item := &report.Items[i]
			item.ReportID = report.ID
			if item.ID == uuid.Nil {
				item.ID = uuid.New()
			}
			if _, err := inner.q.Exec(ctx, `
				INSERT INTO financial_report_items (
					id, report_id, parent_id, kind, account_id, label, sort_order,
					current, previous, change_amount, change_rate
				) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
				item.ID, item.ReportID, uuidArg(item.ParentID), item.Kind,
				uuidArg(item.AccountID), item.Label, item.SortOrder,
				item.Current.String(), item.Previous.String(),
				item.ChangeAmount.String(), item.ChangeRate.String()); err != nil {
				return fmt.Errorf("inserting report item: %w", err)
			}
		}
		saved = report
		return nil
	})
	if err != nil {
		return model.FinancialReport{}, err
	}
	return saved, nil
}

func (r reportRepo) GetByKey(ctx context.Context, companyID uuid.UUID, reportType model.ReportType, fiscalYear, fiscalPeriod int) (model.FinancialReport, error) {
	var (
		report model.FinancialReport
		totals [13]string
	)
	err := r.s.q.QueryRow(ctx, `
		SELECT id, company_id, report_type, fiscal_year, fiscal_period, base_date,
			generated_at, total_assets::text, total_liabilities::text, total_equity::text,
			total_revenue::text, total_expenses::text, net_income::text, current_ratio::text,
			debt_ratio::text, equity_ratio::text, return_on_assets::text,
			return_on_equity::text, gross_margin::text, net_margin::text
		FROM financial_reports
		WHERE company_id = $1 AND report_type = $2 AND fiscal_year = $3 AND fiscal_period = $4`,
		companyID, reportType, fiscalYear, fiscalPeriod).Scan(
		&report.ID, &report.CompanyID, &report.Type, &report.FiscalYear,
		&report.FiscalPeriod, &report.BaseDate, &report.GeneratedAt,
		&totals[0], &totals[1], &totals[2], &totals[3], &totals[4], &totals[5],
		&totals[6], &totals[7], &totals[8], &totals[9], &totals[10], &totals[11], &totals[12])
	if err != nil {
		return model.FinancialReport{}, wrapErr(err, "report %s not found for year %d period %d",
			reportType, fiscalYear, fiscalPeriod)
	}

	dests := []*decimalField{
		{&report.TotalAssets, totals[0]}, {&report.TotalLiabilities, totals[1]},
		{&report.TotalEquity, totals[2]}, {&report.TotalRevenue, totals[3]},
		{&report.TotalExpenses, totals[4]}, {&report.NetIncome, totals[5]},
		{&report.CurrentRatio, totals[6]}, {&report.DebtRatio, totals[7]},
		{&report.EquityRatio, totals[8]}, {&report.ReturnOnAssets, totals[9]},
		{&report.ReturnOnEquity, totals[10]}, {&report.GrossMargin, totals[11]},
		{&report.NetMargin, totals[12]},
	}
	for _, d := range dests {
		v, err := dec(d.raw)
		if err != nil {
			return model.FinancialReport{}, err
		}
		*d.dst = v
	}

	items, err := r.listItems(ctx, report.ID)
	if err != nil {
		return model.FinancialReport{}, err
	}
	report.Items = items
	return report, nil
}

type decimalField struct {
	dst *decimal.Decimal
	raw string
}

func (r reportRepo) listItems(ctx context.Context, reportID uuid.UUID) ([]model.FinancialReportItem, error) {
	rows, err := r.s.q.Query(ctx, `
		SELECT id, report_id, parent_id, kind, account_id, label, sort_order,
			current::text, previous::text, change_amount::text, change_rate::text
		FROM financial_report_items WHERE report_id = $1 ORDER BY sort_order`,
		reportID)
	if err != nil {
		return nil, fmt.Errorf("listing report items: %w", err)
	}
	defer rows.Close()

	var out []model.FinancialReportItem
	for rows.Next() {
		var (
			item                model.FinancialReportItem
			parentID, accountID *uuid.UUID
			current, previous, changeAmount, changeRate string
		)
		if err := rows.Scan(&item.ID, &item.ReportID, &parentID, &item.Kind, &accountID,
			&item.Label, &item.SortOrder, &current, &previous, &changeAmount, &changeRate); err != nil {
			return nil, err
		}
		item.ParentID = uuidVal(parentID)
		item.AccountID = uuidVal(accountID)
		if item.Current, err = dec(current); err != nil {
			return nil, err
		}
		if item.Previous, err = dec(previous); err != nil {
			return nil, err
		}
		if item.ChangeAmount, err = dec(changeAmount); err != nil {
			return nil, err
		}
		if item.ChangeRate, err = dec(changeRate); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
