package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"os"
	"strings"
	"time"

	"coinmate/internal/app"
	"coinmate/internal/config"
	"coinmate/internal/db"
	"coinmate/internal/logger"
	"coinmate/internal/money"
	"coinmate/internal/scope"
	"coinmate/internal/services"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures/default.yaml
var defaultFixtures []byte

var (
	seedFixtures   string
	seedRandomSeed int64
)

var seedCmd = &cobra.Command{
	Use:   "seed [name]",
	Short: "Seed a local database with a user, categories and transactions",
	Long: `Sign up <name>@coinmate.com and fill their Personal space with the
fixture categories and random transactions. Every row goes through the
services, so every row is audited.

Refuses to run unless DATABASE_URL points at localhost.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedFixtures, "fixtures", "", "YAML fixture file (defaults to the embedded fixtures)")
	seedCmd.Flags().Int64Var(&seedRandomSeed, "random-seed", 0, "seed for generated transactions (0 uses the clock)")
}

type fixtures struct {
	Password     string   `yaml:"password"`
	Categories   []string `yaml:"categories"`
	Transactions struct {
		Count    int      `yaml:"count"`
		Currency string   `yaml:"currency"`
		MinCents int64    `yaml:"min_cents"`
		MaxCents int64    `yaml:"max_cents"`
		DaysBack int      `yaml:"days_back"`
		Types    []string `yaml:"types"`
	} `yaml:"transactions"`
}

func loadFixtures(path string) (fixtures, error) {
	raw := defaultFixtures
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return fixtures{}, err
		}
		raw = content
	}
	var f fixtures
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fixtures{}, fmt.Errorf("parse fixtures: %w", err)
	}
	if f.Password == "" || len(f.Transactions.Types) == 0 || f.Transactions.MaxCents <= f.Transactions.MinCents {
		return fixtures{}, errors.New("fixtures need a password, transaction types and max_cents above min_cents")
	}
	if f.Transactions.DaysBack <= 0 {
		f.Transactions.DaysBack = 1
	}
	return f, nil
}

// isLocalDatabase reports whether databaseURL points at this machine.
func isLocalDatabase(databaseURL string) bool {
	parsed, err := url.Parse(databaseURL)
	if err != nil {
		return false
	}
	switch parsed.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)
	if !isLocalDatabase(cfg.DatabaseURL) {
		return errors.New("cannot run seeds on a non-local database")
	}
	f, err := loadFixtures(seedFixtures)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("demo+%d", time.Now().Unix())
	if len(args) == 1 {
		name = args[0]
	}
	randomSeed := seedRandomSeed
	if randomSeed == 0 {
		randomSeed = time.Now().UnixNano()
	}

	ctx := cmd.Context()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer database.Close()
	application := app.New(ctx, cfg, database)
	defer application.Close()

	out := cmd.OutOrStdout()
	email := strings.ToLower(name) + "@coinmate.com"
	fmt.Fprintf(out, "Seeding data for user: %s...\n", email)
	return seed(ctx, application, email, f, rand.New(rand.NewSource(randomSeed)), func(format string, a ...any) {
		fmt.Fprintf(out, format+"\n", a...)
	})
}

type seedServices interface {
	signUp(ctx context.Context, input services.SignUpInput) (services.AuthResult, error)
	createCategory(ctx context.Context, sc *scope.Scope, input services.CreateCategoryInput) (string, error)
	createTransaction(ctx context.Context, sc *scope.Scope, input services.CreateTransactionInput) error
}

type appSeeder struct {
	app *app.App
}

func (s appSeeder) signUp(ctx context.Context, input services.SignUpInput) (services.AuthResult, error) {
	return s.app.Users.SignUp(ctx, scope.Anonymous(), input)
}

func (s appSeeder) createCategory(ctx context.Context, sc *scope.Scope, input services.CreateCategoryInput) (string, error) {
	category, err := s.app.Categories.Create(ctx, sc, input)
	if err != nil {
		return "", err
	}
	return category.ID, nil
}

func (s appSeeder) createTransaction(ctx context.Context, sc *scope.Scope, input services.CreateTransactionInput) error {
	_, err := s.app.Transactions.Create(ctx, sc, input)
	return err
}

func seed(ctx context.Context, application *app.App, email string, f fixtures, rng *rand.Rand, logf func(string, ...any)) error {
	return seedWith(ctx, appSeeder{app: application}, email, f, rng, time.Now(), logf)
}

func seedWith(ctx context.Context, svc seedServices, email string, f fixtures, rng *rand.Rand, now time.Time, logf func(string, ...any)) error {
	result, err := svc.signUp(ctx, services.SignUpInput{Email: email, Password: f.Password, ConfirmPassword: f.Password})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	logf("Created user with ID: %s", result.User.ID)
	sc := scope.New(scope.Session{UserID: result.User.ID, IssuedAt: now}, scope.Metadata{"source": "ledgerctl seed"})

	categoryIDs := make([]string, 0, len(f.Categories))
	for _, name := range f.Categories {
		id, err := svc.createCategory(ctx, sc, services.CreateCategoryInput{Name: name})
		if err != nil {
			return fmt.Errorf("create category %q: %w", name, err)
		}
		categoryIDs = append(categoryIDs, id)
	}
	logf("Created %d categories", len(categoryIDs))
	if len(categoryIDs) == 0 {
		return nil
	}

	tx := f.Transactions
	for i := 0; i < tx.Count; i++ {
		cents := tx.MinCents + rng.Int63n(tx.MaxCents-tx.MinCents)
		at := now.AddDate(0, 0, -rng.Intn(tx.DaysBack)).UTC()
		err := svc.createTransaction(ctx, sc, services.CreateTransactionInput{
			Concept:      fmt.Sprintf("Transaction %d", i+1),
			Currency:     tx.Currency,
			Amount:       money.FormatMinor(cents),
			TransactedAt: at.Format(time.RFC3339),
			Type:         tx.Types[rng.Intn(len(tx.Types))],
			CategoryID:   categoryIDs[rng.Intn(len(categoryIDs))],
		})
		if err != nil {
			return fmt.Errorf("create transaction %d: %w", i+1, err)
		}
	}
	logf("Created %d transactions", tx.Count)
	return nil
}
