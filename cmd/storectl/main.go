package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fjod/go_prasad/domain"
	"github.com/fjod/go_prasad/internal/address"
	"github.com/fjod/go_prasad/internal/backend"
	"github.com/fjod/go_prasad/internal/cart"
	"github.com/fjod/go_prasad/internal/config"
	"github.com/fjod/go_prasad/internal/repository"
	"github.com/fjod/go_prasad/internal/session"
	"github.com/fjod/go_prasad/pkg/logger"
)

const usage = "expected one of 'login', 'logout', 'cart', 'addresses', 'orders', 'pending'"

func main() {
	loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
	token := loginCmd.String("token", "", "Bearer token issued by the store backend")

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg := config.Load()
	// keep stdout for command output
	lg := logger.New(logger.Options{Service: "storectl", Env: cfg.AppEnv, Level: "warn", Output: os.Stderr})

	repo, err := repository.NewRepository(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer repo.Close()
	// Ensure tables exist if running cli before server
	if err := repo.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	sess := session.NewPersisted(repo)
	client := backend.NewClient(backend.Options{
		BaseURL:             cfg.BackendURL,
		Timeout:             cfg.BackendTimeout,
		BreakerFailures:     cfg.BreakerFailures,
		BreakerOpenDuration: cfg.BreakerOpenDuration,
		Logger:              lg,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	switch os.Args[1] {
	case "login":
		loginCmd.Parse(os.Args[2:])
		if *token == "" && loginCmd.NArg() > 0 {
			*token = loginCmd.Arg(0)
		}
		if *token == "" {
			fmt.Println("token is required")
			loginCmd.PrintDefaults()
			os.Exit(1)
		}
		if err := sess.Save(ctx, *token); err != nil {
			log.Fatalf("Failed to save token: %v", err)
		}
		if _, err := sess.Token(ctx); err != nil {
			log.Fatalf("Token stored but not usable: %v", err)
		}
		fmt.Printf("Logged in as %s.\n", sess.Subject())
	case "logout":
		if err := sess.Clear(ctx); err != nil {
			log.Fatalf("Failed to clear token: %v", err)
		}
		fmt.Println("Logged out.")
	case "cart":
		printCart(ctx, cart.NewStore(client, sess, lg))
	case "addresses":
		printAddresses(ctx, address.NewDirectory(client, sess, lg))
	case "orders":
		printOrders(ctx, client, sess)
	case "pending":
		blob, ok, err := repo.LoadPending(ctx, sess.Subject())
		if err != nil {
			log.Fatalf("Failed to read pending checkout: %v", err)
		}
		if !ok {
			fmt.Println("No pending checkout.")
			return
		}
		fmt.Println(string(blob))
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

func printCart(ctx context.Context, store *cart.Store) {
	if _, err := store.Load(ctx); err != nil {
		log.Fatalf("Failed to load cart: %v", err)
	}
	items := store.Items()
	if len(items) == 0 {
		fmt.Println("Cart is empty.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCT\tNAME\tQTY\tPRICE")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", it.Product.ID, it.Product.Name, it.Quantity, it.Product.EffectivePrice().StringFixed(2))
	}
	fmt.Fprintf(w, "\t\tTOTAL\t%s\n", store.Total().StringFixed(2))
	w.Flush()
}

func printAddresses(ctx context.Context, dir *address.Directory) {
	list, defaultID := dir.Load(ctx)
	if len(list) == 0 {
		fmt.Println("No saved addresses.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCITY\tPINCODE\tTYPE\t")
	for _, a := range list {
		mark := ""
		if a.ID == defaultID {
			mark = "default"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", a.ID, a.FullName, a.City, a.Pincode, a.Type, mark)
	}
	w.Flush()
}

func printOrders(ctx context.Context, client *backend.Client, sess session.Session) {
	orders, err := client.ListOrders(ctx, sess)
	if err != nil {
		log.Fatalf("Failed to list orders: %v", err)
	}
	if len(orders) == 0 {
		fmt.Println("No orders yet.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPLACED\tSTATUS\tPAYMENT\tAMOUNT")
	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", o.ID, placedAt(o), o.Status, o.PaymentStatus, formatAmount(o))
	}
	w.Flush()
}

func placedAt(o domain.Order) string {
	if o.CreatedAt.IsZero() {
		return "-"
	}
	return o.CreatedAt.Local().Format(time.DateTime)
}

func formatAmount(o domain.Order) string {
	return fmt.Sprintf("%.2f %s", o.Amount, o.Currency)
}
