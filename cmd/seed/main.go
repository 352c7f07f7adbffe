// backend-go/cmd/seed/main.go
package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/stockwise/backend-go/internal/domain"
	"github.com/stockwise/backend-go/internal/repository/postgres"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func openDB(c *cli.Context) (*sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", c.String("db-url"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Seed the database with demo inventory data",
		Commands: []*cli.Command{
			{
				Name:  "products",
				Usage: "Seed the demo product catalog",
				Flags: []cli.Flag{
					newDBURLFlag(),
				},
				Action: seedProducts,
			},
			{
				Name:  "sales",
				Usage: "Generate random sales history for all products",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.IntFlag{
						Name:  "count",
						Usage: "Number of sales records to generate",
						Value: 300,
					},
					&cli.IntFlag{
						Name:  "days",
						Usage: "Spread sales over this many past days",
						Value: 90,
					},
				},
				Action: seedSales,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// demoProducts mirrors a small office-and-electronics catalog. Reorder point
// starts at safety stock plus five units per lead-time day; the forecaster
// recomputes it from real demand later.
var demoProducts = []domain.Product{
	{SKU: "WM-001", Name: "Wireless Mouse", Category: "Electronics", Price: 24.99, CurrentStock: 150, LeadTimeDays: 7, SafetyStock: 20},
	{SKU: "UC-001", Name: "USB-C Cable", Category: "Electronics", Price: 12.99, CurrentStock: 300, LeadTimeDays: 5, SafetyStock: 50},
	{SKU: "MK-001", Name: "Mechanical Keyboard", Category: "Electronics", Price: 89.99, CurrentStock: 45, LeadTimeDays: 10, SafetyStock: 10},
	{SKU: "MS-001", Name: "Monitor Stand", Category: "Office Supplies", Price: 34.99, CurrentStock: 80, LeadTimeDays: 7, SafetyStock: 15},
	{SKU: "DL-001", Name: "Desk Lamp", Category: "Office Supplies", Price: 44.99, CurrentStock: 60, LeadTimeDays: 7, SafetyStock: 10},
	{SKU: "WC-001", Name: "Webcam HD", Category: "Electronics", Price: 59.99, CurrentStock: 35, LeadTimeDays: 7, SafetyStock: 8},
	{SKU: "NB-001", Name: "Notebook A4 (Pack)", Category: "Office Supplies", Price: 8.99, CurrentStock: 250, LeadTimeDays: 3, SafetyStock: 50},
	{SKU: "PS-001", Name: "Pen Set (50 pcs)", Category: "Office Supplies", Price: 15.99, CurrentStock: 180, LeadTimeDays: 3, SafetyStock: 30},
	{SKU: "WH-001", Name: "Wireless Headphones", Category: "Electronics", Price: 79.99, CurrentStock: 28, LeadTimeDays: 7, SafetyStock: 5},
	{SKU: "UH-001", Name: "USB Hub", Category: "Electronics", Price: 29.99, CurrentStock: 95, LeadTimeDays: 5, SafetyStock: 20},
	{SKU: "SP-001", Name: "Screen Protector", Category: "Electronics", Price: 9.99, CurrentStock: 400, LeadTimeDays: 3, SafetyStock: 100},
	{SKU: "PC-001", Name: "Phone Case", Category: "Electronics", Price: 19.99, CurrentStock: 200, LeadTimeDays: 5, SafetyStock: 40},
	{SKU: "PC-002", Name: "Portable Charger", Category: "Electronics", Price: 34.99, CurrentStock: 70, LeadTimeDays: 7, SafetyStock: 12},
	{SKU: "MP-001", Name: "Mouse Pad", Category: "Office Supplies", Price: 14.99, CurrentStock: 120, LeadTimeDays: 4, SafetyStock: 25},
	{SKU: "HC-001", Name: "HDMI Cable", Category: "Electronics", Price: 11.99, CurrentStock: 180, LeadTimeDays: 5, SafetyStock: 30},
}

// highVolume and mediumVolume bucket SKUs by how briskly they sell, so the
// generated history has products at every demand level.
var (
	highVolume   = map[string]bool{"UC-001": true, "SP-001": true, "NB-001": true, "PS-001": true}
	mediumVolume = map[string]bool{"WM-001": true, "PC-001": true, "UH-001": true, "HC-001": true}
)

func seedProducts(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	products := postgres.NewProductWriter(db)
	for i := range demoProducts {
		product := demoProducts[i]
		product.ReorderPoint = product.SafetyStock + product.LeadTimeDays*5

		if err := products.Upsert(c.Context, &product); err != nil {
			return err
		}
		fmt.Printf("seeded product %s (%s) id=%d\n", product.SKU, product.Name, product.ID)
	}

	fmt.Printf("seeded %d products\n", len(demoProducts))
	return nil
}

func seedSales(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	catalog, err := postgres.NewProductRepository(db).List(c.Context)
	if err != nil {
		return err
	}
	if len(catalog) == 0 {
		return fmt.Errorf("no products found, run `seed products` first")
	}

	count := c.Int("count")
	days := c.Int("days")
	sales := postgres.NewSalesWriter(db)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	baseDate := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -days)

	for i := 0; i < count; i++ {
		product := catalog[rng.Intn(len(catalog))]
		saleDate := baseDate.AddDate(0, 0, rng.Intn(days))

		var quantity int
		switch {
		case highVolume[product.SKU]:
			quantity = 8 + rng.Intn(23)
		case mediumVolume[product.SKU]:
			quantity = 2 + rng.Intn(11)
		default:
			quantity = 1 + rng.Intn(8)
		}

		obs := domain.SalesObservation{
			ProductID:    product.ID,
			SaleDate:     saleDate,
			QuantitySold: quantity,
		}
		if err := sales.Upsert(c.Context, obs); err != nil {
			return err
		}
	}

	fmt.Printf("generated %d sales records across %d products over %d days\n", count, len(catalog), days)
	return nil
}
