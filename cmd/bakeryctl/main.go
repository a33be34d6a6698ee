// Command bakeryctl runs maintenance tasks against the storefront database.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/sweetdreams-bakery/storefront/auth"
	"github.com/sweetdreams-bakery/storefront/config"
	"github.com/sweetdreams-bakery/storefront/database"
	"github.com/sweetdreams-bakery/storefront/models"
	"gorm.io/gorm"
)

const usage = `usage: bakeryctl [-config path] <command> [flags]

commands:
  seed           insert default categories, products and admin account
  stock          list products and stock levels (-low N shows only stock <= N)
  orders         list recent orders (-status, -limit)
  purge-guests   delete expired guest sessions and their carts
`

func main() {
	cfgPath := flag.String("config", "configs/default.yaml", "config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	db, err := database.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	ctx := context.Background()
	args := flag.Args()[1:]
	switch flag.Arg(0) {
	case "seed":
		err = runSeed(ctx, db, cfg)
	case "stock":
		err = runStock(ctx, db, args, os.Stdout)
	case "orders":
		err = runOrders(ctx, db, args, os.Stdout)
	case "purge-guests":
		var n int64
		n, err = auth.PurgeExpiredGuests(ctx, db, time.Now())
		if err == nil {
			fmt.Printf("purged %d expired guests\n", n)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
}

func runSeed(ctx context.Context, db *gorm.DB, cfg config.Config) error {
	tokens := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL, cfg.GuestTTL, cfg.BcryptCost)
	hash, err := tokens.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	res, err := database.Seed(ctx, db, hash)
	if err != nil {
		return err
	}
	fmt.Printf("inserted %d categories, %d products, admin created: %t\n", res.Categories, res.Products, res.Admin)
	return nil
}

func runStock(ctx context.Context, db *gorm.DB, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("stock", flag.ContinueOnError)
	low := fs.Int("low", -1, "only show products with stock at or below this level")
	if err := fs.Parse(args); err != nil {
		return err
	}

	query := db.WithContext(ctx).Preload("Category").Order("stock_quantity ASC, id ASC")
	if *low >= 0 {
		query = query.Where("stock_quantity <= ?", *low)
	}
	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return err
	}
	return renderStock(out, products)
}

func renderStock(out io.Writer, products []models.Product) error {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		category := "-"
		if p.Category != nil {
			category = p.Category.NameEN
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(p.ID), 10),
			p.Name,
			p.NameEN,
			category,
			p.Price.StringFixed(2),
			strconv.Itoa(p.StockQuantity),
			yesNo(p.IsAvailable),
		})
	}

	table := tablewriter.NewWriter(out)
	table.Header([]string{"ID", "Name", "Name (EN)", "Category", "Price", "Stock", "Available"})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func runOrders(ctx context.Context, db *gorm.DB, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("orders", flag.ContinueOnError)
	status := fs.String("status", "", "only show orders in this status")
	limit := fs.Int("limit", 20, "maximum number of orders")
	if err := fs.Parse(args); err != nil {
		return err
	}

	query := db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(*limit)
	if *status != "" {
		s, err := models.ParseOrderStatus(*status)
		if err != nil {
			return err
		}
		query = query.Where("status = ?", s)
	}
	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return err
	}
	return renderOrders(out, orders)
}

func renderOrders(out io.Writer, orders []models.Order) error {
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		customer := "guest"
		if o.UserID != nil {
			customer = "user " + strconv.FormatUint(uint64(*o.UserID), 10)
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(o.ID), 10),
			o.OrderRef,
			customer,
			o.CustomerName,
			string(o.Status),
			o.TotalAmount.StringFixed(2),
			o.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	table := tablewriter.NewWriter(out)
	table.Header([]string{"ID", "Ref", "Customer", "Name", "Status", "Total", "Placed"})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
