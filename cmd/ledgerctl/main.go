// Command ledgerctl runs operator tasks against the ledger database.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"bondbook-backend/bootstrap"
	"bondbook-backend/internal/application/aggregates"
	authsvc "bondbook-backend/internal/application/auth"
	"bondbook-backend/internal/application/rates"
	"bondbook-backend/internal/application/reports"
	"bondbook-backend/internal/config"
	"bondbook-backend/internal/domain"
	"bondbook-backend/internal/infrastructure/database"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

func main() {
	app := &cli.App{
		Name:  "ledgerctl",
		Usage: "bond ledger maintenance",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "create or update the schema",
				Action: withDB(func(c *cli.Context, _ *config.Config, db *gorm.DB) error {
					if err := database.AutoMigrate(db); err != nil {
						return err
					}
					log.Info().Msg("schema up to date")
					return nil
				}),
			},
			{
				Name:  "reconcile",
				Usage: "recompute stored investor totals from the ledger",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "investor", Usage: "investor id"},
					&cli.BoolFlag{Name: "all", Usage: "every investor"},
				},
				Action: withDB(reconcile),
			},
			{
				Name:  "create-admin",
				Usage: "add an administrator account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"ADMIN_PASSWORD"}},
				},
				Action: withDB(createAdmin),
			},
			{
				Name:  "export-yearly",
				Usage: "write the yearly investment report as xlsx",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "year", Value: time.Now().Year()},
					&cli.StringFlag{Name: "out", Usage: "output file (default yearly-investments-<year>.xlsx)"},
				},
				Action: withDB(exportYearly),
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("ledgerctl")
	}
}

func withDB(fn func(*cli.Context, *config.Config, *gorm.DB) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		bootstrap.SetupLogger(cfg)
		db, err := bootstrap.OpenDB(cfg)
		if err != nil {
			return err
		}
		defer database.Close(db)
		return fn(c, cfg, db)
	}
}

func reconcile(c *cli.Context, cfg *config.Config, db *gorm.DB) error {
	agg := aggregates.NewService(database.NewLedgerStore(db), cfg.ReconcileConcurrency)
	switch {
	case c.Bool("all"):
		res, err := agg.ReconcileAll(c.Context)
		if err != nil {
			return err
		}
		fmt.Printf("reconciled %d investors, %d failed\n", res.Investors, res.Failed)
		if res.Failed > 0 {
			return cli.Exit("some investors failed to reconcile", 1)
		}
		return nil
	case c.Uint("investor") != 0:
		t, err := agg.RecomputeAll(c.Context, c.Uint("investor"))
		if err != nil {
			return err
		}
		fmt.Printf("investor %d: total_bonds=%s total_contributions=%s\n",
			t.InvestorID, t.TotalBonds.StringFixed(2), t.TotalContributions.StringFixed(2))
		return nil
	}
	return cli.Exit("pass --investor ID or --all", 2)
}

func createAdmin(c *cli.Context, _ *config.Config, db *gorm.DB) error {
	hash, err := authsvc.HashPassword(c.String("password"))
	if err != nil {
		return err
	}
	a := domain.Admin{
		Username:     strings.TrimSpace(c.String("username")),
		Email:        strings.ToLower(strings.TrimSpace(c.String("email"))),
		PasswordHash: hash,
	}
	if err := db.WithContext(c.Context).Create(&a).Error; err != nil {
		return err
	}
	fmt.Printf("admin %d created\n", a.ID)
	return nil
}

func exportYearly(c *cli.Context, _ *config.Config, db *gorm.DB) error {
	svc := &reports.Service{DB: db, Rates: &rates.Service{DB: db}}
	rep, err := svc.YearlyInvestments(c.Context, c.Int("year"))
	if err != nil {
		return err
	}
	out := c.String("out")
	if out == "" {
		out = fmt.Sprintf("yearly-investments-%d.xlsx", rep.Year)
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := reports.WriteYearlyInvestmentsXLSX(f, rep); err != nil {
		return errors.Join(err, f.Close())
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d rows)\n", out, len(rep.Transactions))
	return nil
}
