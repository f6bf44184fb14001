// Command seed loads a catalog fixture into a running storefront API through
// the typed client. It mints its own admin token with the API's JWT secret.
package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/utafrali/FurnitureStore/internal/identity"
	"github.com/utafrali/FurnitureStore/internal/service"
	pkgconfig "github.com/utafrali/FurnitureStore/pkg/config"
	"github.com/utafrali/FurnitureStore/pkg/logger"
	"github.com/utafrali/FurnitureStore/pkg/storefront"
)

//go:embed seed.json
var defaultFixture []byte

type seedConfig struct {
	APIURL    string `env:"SEED_API_URL" envDefault:"http://localhost:8080"`
	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-only-change-me"`
	JWTIssuer string `env:"JWT_ISSUER" envDefault:"furniture-store"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	Workers   int    `env:"SEED_WORKERS" envDefault:"4"`
}

// collectionFixture lists member products by name; ids are only known after
// the products are created.
type collectionFixture struct {
	service.CreateCollectionInput
	Products []string `json:"products"`
}

type fixture struct {
	Products    []service.CreateProductInput `json:"products"`
	Collections []collectionFixture          `json:"collections"`
	Projects    []service.CreateProjectInput `json:"projects"`
}

func main() {
	file := flag.String("file", "", "fixture JSON file (defaults to the embedded fixture)")
	flag.Parse()

	var cfg seedConfig
	if err := pkgconfig.Load(&cfg); err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New("furniture-seed", cfg.LogLevel)

	raw := defaultFixture
	if *file != "" {
		var err error
		if raw, err = os.ReadFile(*file); err != nil {
			log.Error("failed to read fixture", slog.String("file", *file), slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
	var fx fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		log.Error("failed to parse fixture", slog.String("error", err.Error()))
		os.Exit(1)
	}

	token, err := identity.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, 10*time.Minute).Issue("seed", identity.RoleAdmin)
	if err != nil {
		log.Error("failed to mint admin token", slog.String("error", err.Error()))
		os.Exit(1)
	}
	client := storefront.New(cfg.APIURL, storefront.NewDefaultDoer(log)).WithToken(token)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, client, fx, cfg.Workers, log); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run creates products first, then collections referencing them by name,
// then projects.
func run(ctx context.Context, client *storefront.Client, fx fixture, workers int, log *slog.Logger) error {
	ids := make([]string, len(fx.Products))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, in := range fx.Products {
		g.Go(func() error {
			p, err := client.Products().Create(gctx, in)
			if err != nil {
				return fmt.Errorf("create product %q: %w", in.Name, err)
			}
			ids[i] = p.ID
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	byName := make(map[string]string, len(ids))
	for i, in := range fx.Products {
		byName[in.Name] = ids[i]
	}
	log.Info("products seeded", slog.Int("count", len(ids)))

	for _, cf := range fx.Collections {
		in := cf.CreateCollectionInput
		in.Products = make([]string, 0, len(cf.Products))
		for _, name := range cf.Products {
			id, ok := byName[name]
			if !ok {
				return fmt.Errorf("collection %q references unknown product %q", in.Name, name)
			}
			in.Products = append(in.Products, id)
		}
		if _, err := client.Collections().Create(ctx, in); err != nil {
			return fmt.Errorf("create collection %q: %w", in.Name, err)
		}
	}
	log.Info("collections seeded", slog.Int("count", len(fx.Collections)))

	for _, in := range fx.Projects {
		if _, err := client.Projects().Create(ctx, in); err != nil {
			return fmt.Errorf("create project %q: %w", in.Title, err)
		}
	}
	log.Info("projects seeded", slog.Int("count", len(fx.Projects)))
	return nil
}
