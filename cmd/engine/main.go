// cmd/engine/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

type ctxKey string

const dbKey ctxKey = "db"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	db, err := sqlx.Connect("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*sqlx.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "engine",
		Usage: "Inventory intelligence engine CLI",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a full batch over every active item and write the results",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:  "granularity",
						Usage: "Aggregation granularity (day, week or month)",
						Value: "day",
					},
					&cli.IntFlag{
						Name:  "horizon",
						Usage: "Forecast horizon in periods",
						Value: 7,
					},
					&cli.StringFlag{
						Name:  "out-dir",
						Usage: "Directory for result files",
						Value: "./out",
					},
					&cli.BoolFlag{
						Name:  "upload",
						Usage: "Upload the result JSON to object storage",
						Value: false,
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runBatchCommand,
			},
			{
				Name:  "csv",
				Usage: "Run the engine offline over a consumption CSV export",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Usage:    "Consumption CSV (item_id,timestamp,quantity)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "granularity",
						Usage: "Aggregation granularity (day, week or month)",
						Value: "day",
					},
					&cli.IntFlag{
						Name:  "horizon",
						Usage: "Forecast horizon in periods",
						Value: 7,
					},
					&cli.StringFlag{
						Name:  "out-dir",
						Usage: "Directory for result files",
						Value: "./out",
					},
				},
				Action: runCSVCommand,
			},
			{
				Name:  "fetch",
				Usage: "List archived run results in object storage, or download one",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "prefix",
						Usage: "Key prefix to list",
						Value: "runs/",
					},
					&cli.StringFlag{
						Name:  "key",
						Usage: "Object key to download instead of listing",
					},
					&cli.StringFlag{
						Name:  "dest",
						Usage: "Destination path for the downloaded object",
						Value: "./out",
					},
				},
				Action: fetchCommand,
			},
			{
				Name:      "check",
				Usage:     "Check a set of drug names for known interactions",
				ArgsUsage: "DRUG DRUG [DRUG...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "rules",
						Usage:   "Interaction rule base YAML",
						Value:   "./data/interaction_rules.yaml",
						EnvVars: []string{"RULES_PATH"},
					},
				},
				Action: checkCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
