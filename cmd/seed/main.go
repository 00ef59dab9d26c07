package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5"
	"github.com/rumahkopi/api/internal/auth"
	"github.com/rumahkopi/api/internal/config"
	"github.com/rumahkopi/api/internal/database"
	"github.com/rumahkopi/api/internal/domain"
	"github.com/rumahkopi/api/internal/enum"
	"github.com/rumahkopi/api/internal/logger"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func main() {
	if err := seedCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	email    string
	password string
	name     string
	menu     string
}

func seedCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Create the admin account and load a menu fixture",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.email, "email", os.Getenv("SEED_EMAIL"), "admin email address")
	cmd.Flags().StringVar(&opts.password, "password", os.Getenv("SEED_PASSWORD"), "admin password")
	cmd.Flags().StringVar(&opts.name, "name", os.Getenv("SEED_NAME"), "admin full name")
	cmd.Flags().StringVar(&opts.menu, "menu", "", "YAML menu fixture to load")
	return cmd
}

// fixture is the YAML shape of --menu:
//
//	categories:
//	  - name: Kopi
//	    items:
//	      - {name: Kopi Susu Gula Aren, price: "22000"}
//	packages:
//	  - {name: Paket Arisan, price: "75000", min_guests: 8, max_guests: 20}
type fixture struct {
	Categories []struct {
		Name  string `yaml:"name"`
		Items []struct {
			Name        string          `yaml:"name"`
			Description string          `yaml:"description"`
			Price       decimal.Decimal `yaml:"price"`
			ImageURL    string          `yaml:"image_url"`
		} `yaml:"items"`
	} `yaml:"categories"`
	Packages []struct {
		Name        string          `yaml:"name"`
		Description string          `yaml:"description"`
		Price       decimal.Decimal `yaml:"price"`
		MinGuests   int32           `yaml:"min_guests"`
		MaxGuests   int32           `yaml:"max_guests"`
	} `yaml:"packages"`
}

func loadFixture(path string) (*fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read menu fixture: %w", err)
	}
	var f fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse menu fixture: %w", err)
	}
	return &f, nil
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	if opts.email == "" {
		opts.email = "admin@rumahkopi.id"
	}
	if opts.password == "" {
		opts.password = "password123"
		log.Warn("using default password 'password123', change it immediately in production")
	}
	if opts.name == "" {
		opts.name = "Admin Rumah Kopi"
	}

	var menu *fixture
	if opts.menu != "" {
		if menu, err = loadFixture(opts.menu); err != nil {
			return err
		}
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Info("connected to database")

	// Admin account and menu are seeded together or not at all.
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)
	q := database.New(tx)

	if err := seedAdmin(ctx, q, log, opts); err != nil {
		return err
	}
	if menu != nil {
		if err := seedMenu(ctx, q, log, menu); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	log.Info("seed completed")
	return nil
}

// seedAdmin creates the admin user unless the email is already taken.
func seedAdmin(ctx context.Context, q *database.Queries, log *logger.Logger, opts options) error {
	existing, err := q.GetUserByEmail(ctx, opts.email)
	if err == nil {
		log.Info("user already exists, skipping", zap.String("email", opts.email), zap.String("id", existing.ID.String()))
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check user: %w", err)
	}

	hash, err := auth.HashPassword(opts.password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user, err := q.CreateUser(ctx, database.CreateUserParams{
		Name:           opts.name,
		Email:          opts.email,
		Role:           enum.UserRoleAdmin,
		HashedPassword: hash,
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Info("created admin", zap.String("email", user.Email), zap.String("id", user.ID.String()))
	return nil
}

// seedMenu inserts the fixture's categories, items and packages. Rows
// whose slug already exists are skipped so the fixture can be re-applied.
func seedMenu(ctx context.Context, q *database.Queries, log *logger.Logger, f *fixture) error {
	cats, err := q.ListCategories(ctx)
	if err != nil {
		return err
	}
	byName := make(map[string]domain.Category, len(cats))
	for _, c := range cats {
		byName[strings.ToLower(c.Name)] = c
	}

	items, err := q.ListMenuItems(ctx, false)
	if err != nil {
		return err
	}
	haveItem := make(map[string]bool, len(items))
	for _, it := range items {
		haveItem[it.Slug] = true
	}

	created := 0
	for _, fc := range f.Categories {
		cat, ok := byName[strings.ToLower(fc.Name)]
		if !ok {
			if cat, err = q.CreateCategory(ctx, fc.Name); err != nil {
				return fmt.Errorf("create category %q: %w", fc.Name, err)
			}
		}
		for _, fi := range fc.Items {
			s := slug.Make(fi.Name)
			if haveItem[s] {
				continue
			}
			_, err := q.CreateMenuItem(ctx, database.CreateMenuItemParams{
				CategoryID:  &cat.ID,
				Name:        fi.Name,
				Slug:        s,
				Description: fi.Description,
				Price:       fi.Price,
				ImageURL:    fi.ImageURL,
			})
			if err != nil {
				return fmt.Errorf("create menu item %q: %w", fi.Name, err)
			}
			haveItem[s] = true
			created++
		}
	}

	pkgs, err := q.ListPackages(ctx, false)
	if err != nil {
		return err
	}
	havePkg := make(map[string]bool, len(pkgs))
	for _, p := range pkgs {
		havePkg[p.Slug] = true
	}
	for _, fp := range f.Packages {
		s := slug.Make(fp.Name)
		if havePkg[s] {
			continue
		}
		_, err := q.CreatePackage(ctx, database.CreatePackageParams{
			Name:        fp.Name,
			Slug:        s,
			Description: fp.Description,
			Price:       fp.Price,
			MinGuests:   fp.MinGuests,
			MaxGuests:   fp.MaxGuests,
		})
		if err != nil {
			return fmt.Errorf("create package %q: %w", fp.Name, err)
		}
		havePkg[s] = true
		created++
	}

	log.Info("menu fixture applied", zap.Int("created", created))
	return nil
}
