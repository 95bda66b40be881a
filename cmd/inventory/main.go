package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/cleanops/backend-go/internal/app"
	"github.com/andresuchdata/cleanops/backend-go/internal/config"
	"github.com/andresuchdata/cleanops/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/cleanops/backend-go/pkg/logger"
)

type ctxKey string

const (
	dbKey  ctxKey = "db"
	appKey ctxKey = "app"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL", "DB_URL"},
	}
}

var (
	tenantFlag   = &cli.StringFlag{Name: "tenant", Usage: "Tenant id", Required: true}
	propertyFlag = &cli.StringFlag{Name: "property", Usage: "Property id", Required: true}
	horizonFlag  = &cli.IntFlag{Name: "horizon-days", Usage: "Planning horizon in days (0 = configured default)"}
)

// initDB opens the database through the pgx driver and wires the services.
func initDB(c *cli.Context) error {
	cfg := config.Load()
	logger.Configure(cfg.Log.Level, cfg.Log.Format)

	sqlDB, err := sqlx.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := sqlDB.PingContext(c.Context); err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}
	db := postgres.Wrap(sqlDB, &cfg.Database)

	application, err := app.Build(cfg, postgres.NewStore(db))
	if err != nil {
		_ = db.Close()
		return err
	}

	c.Context = context.WithValue(c.Context, dbKey, db)
	c.Context = context.WithValue(c.Context, appKey, application)
	return nil
}

func closeDB(c *cli.Context) error {
	if application, ok := c.Context.Value(appKey).(*app.App); ok && application != nil {
		application.Close()
	}
	if db, ok := c.Context.Value(dbKey).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) *postgres.DB {
	return c.Context.Value(dbKey).(*postgres.DB)
}

func appFrom(c *cli.Context) *app.App {
	return c.Context.Value(appKey).(*app.App)
}

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "inventory",
		Usage: "Administer supply inventory from the command line",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Apply pending schema migrations",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: initDB,
				After:  closeDB,
				Action: runMigrate,
			},
			{
				Name:  "import-supplies",
				Usage: "Import supplies and aliases from a CSV file (name,unit,sku,aliases)",
				Flags: []cli.Flag{
					newDBURLFlag(),
					tenantFlag,
					&cli.StringFlag{Name: "file", Usage: "CSV file", Required: true},
				},
				Before: initDB,
				After:  closeDB,
				Action: runImportSupplies,
			},
			{
				Name:  "seed-record",
				Usage: "Create an inventory record with an initial quantity",
				Flags: []cli.Flag{
					newDBURLFlag(),
					tenantFlag,
					propertyFlag,
					&cli.StringFlag{Name: "supply", Usage: "Supply id", Required: true},
					&cli.Float64Flag{Name: "initial", Usage: "Initial quantity"},
					&cli.Float64Flag{Name: "min", Usage: "Minimum quantity"},
					&cli.Float64Flag{Name: "max", Usage: "Maximum quantity (0 = uncapped)"},
				},
				Before: initDB,
				After:  closeDB,
				Action: runSeedRecord,
			},
			{
				Name:   "recount",
				Usage:  "Rebuild cached quantities of a property from its movement ledger",
				Flags:  []cli.Flag{newDBURLFlag(), tenantFlag, propertyFlag},
				Before: initDB,
				After:  closeDB,
				Action: runRecount,
			},
			{
				Name:  "consumption",
				Usage: "Report consumption per supply",
				Flags: []cli.Flag{
					newDBURLFlag(),
					tenantFlag,
					propertyFlag,
					&cli.TimestampFlag{Name: "from", Layout: "2006-01-02"},
					&cli.TimestampFlag{Name: "to", Layout: "2006-01-02"},
				},
				Before: initDB,
				After:  closeDB,
				Action: runConsumption,
			},
			{
				Name:   "shopping-list",
				Usage:  "Print the shopping list of a property",
				Flags:  []cli.Flag{newDBURLFlag(), tenantFlag, propertyFlag, horizonFlag},
				Before: initDB,
				After:  closeDB,
				Action: runShoppingList,
			},
			{
				Name:  "alerts",
				Usage: "Print low-stock alerts",
				Flags: []cli.Flag{
					newDBURLFlag(),
					tenantFlag,
					&cli.StringFlag{Name: "property", Usage: "Property id (empty = all properties)"},
				},
				Before: initDB,
				After:  closeDB,
				Action: runAlerts,
			},
			{
				Name:  "export",
				Usage: "Upload a shopping list or consumption CSV to object storage",
				Flags: []cli.Flag{
					newDBURLFlag(),
					tenantFlag,
					propertyFlag,
					horizonFlag,
					&cli.StringFlag{Name: "kind", Usage: "shopping-list or consumption", Value: "shopping-list"},
				},
				Before: initDB,
				After:  closeDB,
				Action: runExport,
			},
		},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debug().Err(err).Msg("no .env file loaded")
	}

	if err := newApp().Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("inventory command failed")
	}
}
