package main

import (
	"fmt"

	appevent "github.com/bizcms/backend/internal/application/event"
	financeapp "github.com/bizcms/backend/internal/application/finance"
	ledgerapp "github.com/bizcms/backend/internal/application/ledger"
	"github.com/bizcms/backend/internal/infrastructure/logger"
	"github.com/bizcms/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func (a *app) ledgerService() (*ledgerapp.ChartOfAccountsService, error) {
	db, err := a.database()
	if err != nil {
		return nil, err
	}
	dispatcher := appevent.NewDispatcher(a.log, appevent.WithAuditLogger(logger.NewAuditLogger(a.log)))
	return ledgerapp.NewChartOfAccountsService(
		persistence.NewLedgerTransactionScope(db.DB),
		persistence.NewLedgerRepositories(db.DB),
		dispatcher, a.log,
	), nil
}

func (a *app) balanceService() (*financeapp.BalanceService, error) {
	db, err := a.database()
	if err != nil {
		return nil, err
	}
	return financeapp.NewBalanceService(
		persistence.NewFinanceTransactionScope(db.DB),
		persistence.NewFinanceRepositories(db.DB),
		a.log,
	), nil
}

func newInitChartCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init-chart",
		Short: "Create the standard chart of accounts for the tenant",
		Long: `Creates every standard account the tenant does not have yet.
Existing accounts are left untouched, so the command can be rerun safely.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.ledgerService()
			if err != nil {
				return err
			}
			created, err := svc.InitializeChartOfAccounts(cmd.Context(), a.tenantID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d accounts\n", created)
			return nil
		},
	}
}

func newRecalculateCmd(a *app) *cobra.Command {
	var customer string
	cmd := &cobra.Command{
		Use:   "recalculate",
		Short: "Recompute derived customer balances",
		Example: `  # every customer of the tenant
  financectl recalculate --tenant 3f0c...

  # one customer
  financectl recalculate --tenant 3f0c... --customer 9a41...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var customerID uuid.UUID
			if customer != "" {
				id, err := uuid.Parse(customer)
				if err != nil {
					return fmt.Errorf("invalid --customer %q", customer)
				}
				customerID = id
			}

			svc, err := a.balanceService()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if customerID != uuid.Nil {
				bal, changed, err := svc.RecalculateCustomer(cmd.Context(), a.tenantID, customerID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "customer %s: outstanding %s, credit %s, changed %t\n",
					bal.Code, bal.OutstandingBalance.StringFixed(2), bal.CreditBalance.StringFixed(2), changed)
				return nil
			}
			res, err := svc.RecalculateAll(cmd.Context(), a.tenantID)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "customers %d, changed %d\n", res.Customers, res.Changed)
			return nil
		},
	}
	cmd.Flags().StringVar(&customer, "customer", "", "Only this customer ID")
	return cmd
}

func newTrialBalanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "trial-balance",
		Short: "Print the trial balance over active accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.ledgerService()
			if err != nil {
				return err
			}
			tb, err := svc.GetTrialBalance(cmd.Context(), a.tenantID)
			if err != nil {
				return err
			}
			f, err := newAmountFormatter(a.cfg.Finance.Locale, a.cfg.Finance.DefaultCurrency)
			if err != nil {
				return err
			}
			if err := writeTrialBalance(cmd.OutOrStdout(), tb, f); err != nil {
				return err
			}
			if !tb.IsBalanced {
				return fmt.Errorf("trial balance is off by %s", f.Format(tb.Difference()))
			}
			return nil
		},
	}
}
