package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
)

func runMigrate(c *cli.Context) error {
	if err := dbFrom(c).Migrate(c.Context); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "migrations applied")
	return nil
}

func runSeedRecord(c *cli.Context) error {
	rec, err := appFrom(c).Services.Ledger.SeedRecord(c.Context,
		c.String("tenant"), c.String("property"), c.String("supply"),
		c.Float64("initial"), c.Float64("min"), c.Float64("max"))
	if err != nil {
		return fmt.Errorf("failed to seed record: %w", err)
	}
	return printJSON(c, rec)
}

func runRecount(c *cli.Context) error {
	result := appFrom(c).Services.Reconcile.Recount(c.Context, c.String("tenant"), c.String("property"))
	if err := printJSON(c, result); err != nil {
		return err
	}
	if !result.Success {
		return cli.Exit(result.Error, 1)
	}
	return nil
}

func runConsumption(c *cli.Context) error {
	to := time.Now().UTC()
	if ts := c.Timestamp("to"); ts != nil {
		to = *ts
	}
	from := to.AddDate(0, 0, -30)
	if ts := c.Timestamp("from"); ts != nil {
		from = *ts
	}

	report, err := appFrom(c).Services.Consumption.Calculate(c.Context, c.String("tenant"), c.String("property"), from, to)
	if err != nil {
		return err
	}
	return printJSON(c, report)
}

func runShoppingList(c *cli.Context) error {
	list, err := appFrom(c).Services.Recommendation.GetShoppingList(c.Context,
		c.String("tenant"), c.String("property"), c.Int("horizon-days"))
	if err != nil {
		return err
	}
	return printJSON(c, list)
}

func runAlerts(c *cli.Context) error {
	alerts, err := appFrom(c).Services.Recommendation.GetLowStockAlerts(c.Context, c.String("tenant"), c.String("property"))
	if err != nil {
		return err
	}
	return printJSON(c, alerts)
}

func runExport(c *cli.Context) error {
	exports := appFrom(c).Services.Export
	if exports == nil {
		return cli.Exit("exports are disabled; set EXPORT_ENABLED=true", 1)
	}

	tenant, property := c.String("tenant"), c.String("property")
	switch c.String("kind") {
	case "shopping-list":
		res, err := exports.ExportShoppingList(c.Context, tenant, property, c.Int("horizon-days"))
		if err != nil {
			return err
		}
		return printJSON(c, res)
	case "consumption":
		to := time.Now().UTC()
		res, err := exports.ExportConsumption(c.Context, tenant, property, to.AddDate(0, 0, -30), to)
		if err != nil {
			return err
		}
		return printJSON(c, res)
	default:
		return cli.Exit(fmt.Sprintf("unknown export kind %q", c.String("kind")), 2)
	}
}
