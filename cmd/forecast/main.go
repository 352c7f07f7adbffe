// backend-go/cmd/forecast/main.go
package main

import (
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/stockwise/backend-go/internal/cache"
	"github.com/stockwise/backend-go/internal/config"
	"github.com/stockwise/backend-go/internal/pretrained"
	"github.com/stockwise/backend-go/internal/repository/postgres"
	"github.com/stockwise/backend-go/internal/service"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newBundleDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "bundle-dir",
		Usage:   "Directory holding the pretrained model bundle",
		Value:   "./data/models",
		EnvVars: []string{"BUNDLE_DIR"},
	}
}

func buildService(c *cli.Context) (*service.ForecastService, *sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", c.String("db-url"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	cfg := config.Load()
	svc := service.NewForecastService(service.Dependencies{
		Products:    postgres.NewProductRepository(db),
		Sales:       postgres.NewSalesRepository(db),
		Forecasts:   postgres.NewForecastRepository(db),
		Stored:      postgres.NewForecastReader(db),
		Evaluations: postgres.NewEvaluationRepository(db),
		AlertWriter: postgres.NewAlertRepository(db),
		AlertReader: postgres.NewAlertReader(db),
		Cache:       cache.NewNoopForecastCache(),
		Pretrained:  pretrained.NewModelCache(c.String("bundle-dir")),
	}, cfg.Forecast)

	return svc, db, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "forecast",
		Usage: "Generate demand forecasts and inventory alerts",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Forecast every product in the catalog",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newBundleDirFlag(),
				},
				Action: runBatch,
			},
			{
				Name:  "verify",
				Usage: "Run the full pipeline for one product and print the outcome",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newBundleDirFlag(),
					&cli.Int64Flag{
						Name:     "product-id",
						Usage:    "Product to verify",
						Required: true,
					},
				},
				Action: runVerify,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runBatch(c *cli.Context) error {
	svc, db, err := buildService(c)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := svc.ForecastAll(c.Context)
	if err != nil {
		return err
	}

	fmt.Printf("forecasted %d/%d products (%d skipped, %d failed) in %s\n",
		result.Forecast, result.Total, result.Skipped, result.Failed, result.Duration)
	for _, item := range result.Items {
		if item.Error != "" {
			fmt.Printf("  %s (id=%d): %s\n", item.SKU, item.ProductID, item.Error)
		}
	}
	return nil
}

func runVerify(c *cli.Context) error {
	svc, db, err := buildService(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if meta := svc.PretrainedInfo(); meta != nil {
		fmt.Printf("pretrained model: %s (MAE=%.2f, R2=%.2f, samples=%d)\n",
			meta.ModelName, meta.MAE, meta.R2, meta.TrainingSamples)
	} else {
		fmt.Println("no pretrained model available, relying on per-product training")
	}

	productID := c.Int64("product-id")

	trained, err := svc.TrainProduct(c.Context, productID)
	if err != nil {
		return err
	}
	if !trained.Success {
		fmt.Printf("training skipped: %s\n", trained.Message)
	} else {
		fmt.Printf("trained on %d rows\n", trained.Rows)
		if m := trained.Linear.Metrics; m != nil {
			fmt.Printf("  linear_regression: MAE=%.2f RMSE=%.2f R2=%.2f\n", m.MAE, m.RMSE, m.R2)
		}
		if m := trained.Forest.Metrics; m != nil {
			fmt.Printf("  random_forest:     MAE=%.2f RMSE=%.2f R2=%.2f\n", m.MAE, m.RMSE, m.R2)
		}
	}

	result, err := svc.ForecastProduct(c.Context, productID)
	if err != nil {
		return err
	}

	fmt.Printf("product %s (%s), stock %d, source %s\n",
		result.Product.SKU, result.Product.Name, result.Product.CurrentStock, result.Source)
	for _, row := range result.Forecasts {
		fmt.Printf("  %s  %6.1f units  (confidence %.2f)\n",
			row.ForecastDate.Format("2006-01-02"), row.PredictedDemand, row.Confidence)
	}
	fmt.Printf("daily demand %.2f, 7-day demand %.1f\n", result.DailyDemand, result.Forecast7d)
	fmt.Printf("reorder point %d, order quantity %d, reorder now: %v\n",
		result.ReorderPoint, result.OrderQuantity, result.ShouldReorder)
	if result.DaysUntilStockout != nil {
		fmt.Printf("stock depletes in %.1f days\n", *result.DaysUntilStockout)
	}
	fmt.Println(result.Recommendation)
	for _, alert := range result.Alerts {
		fmt.Printf("ALERT [%s/%s]: %s\n", alert.Type, alert.Level, alert.Explanation)
	}

	stored, err := svc.StoredForecasts(c.Context, productID)
	if err != nil {
		return err
	}
	fmt.Printf("%d forecast rows stored from today onward\n", len(stored))
	return nil
}
