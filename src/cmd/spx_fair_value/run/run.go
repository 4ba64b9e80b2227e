package run

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jiaming2012/spx-fair-value/src/eventmodels"
	"github.com/jiaming2012/spx-fair-value/src/eventservices"
	"github.com/jiaming2012/spx-fair-value/src/utils"
)

type RunArgs struct {
	Symbol     eventmodels.StockSymbol
	Expiration string
	ConfigPath string
	Save       bool
	GoEnv      string
}

type RunResult struct {
	Estimate *eventmodels.FairPriceEstimate
}

// fixedExpirationFetcher pins the snapshot to one expiration instead of the nearest listed one.
type fixedExpirationFetcher struct {
	*eventservices.TradierClient
	expiration time.Time
}

func (f *fixedExpirationFetcher) FetchSnapshot(ctx context.Context, symbol eventmodels.StockSymbol, root string, now time.Time) (*eventmodels.OptionChainSnapshot, error) {
	return f.FetchSnapshotForExpiration(ctx, symbol, root, f.expiration, now)
}

type Env struct {
	ProjectsDir          string
	BearerToken          string
	OptionChainURL       string
	OptionExpirationsURL string
	StockQuotesURL       string
	MarketCalendarURL    string
	SessionsDir          string
	SessionStore         string
}

func LoadEnv(goEnv string) (*Env, error) {
	projectsDir := os.Getenv("PROJECTS_DIR")
	if err := utils.InitEnvironmentVariables(projectsDir, goEnv); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %v", err)
	}

	env := &Env{ProjectsDir: projectsDir}

	for key, dst := range map[string]*string{
		"TRADIER_BEARER_TOKEN":   &env.BearerToken,
		"OPTION_CHAIN_URL":       &env.OptionChainURL,
		"OPTION_EXPIRATIONS_URL": &env.OptionExpirationsURL,
		"STOCK_QUOTES_URL":       &env.StockQuotesURL,
	} {
		value, err := utils.GetEnv(key)
		if err != nil {
			return nil, err
		}

		*dst = value
	}

	env.MarketCalendarURL = os.Getenv("MARKET_CALENDAR_URL")

	env.SessionsDir = os.Getenv("SESSIONS_DIR")
	if env.SessionsDir == "" {
		env.SessionsDir = filepath.Join(projectsDir, "spx-fair-value", "data")
	}

	env.SessionStore = os.Getenv("SESSION_STORE")

	return env, nil
}

// OpenSessionStore opens the store named by SESSION_STORE: "file" (default) or "sqlite".
func OpenSessionStore(env *Env) (eventservices.SessionStore, func() error, error) {
	switch env.SessionStore {
	case "", "file":
		return eventservices.NewFileSessionStore(env.SessionsDir), func() error { return nil }, nil
	case "sqlite":
		store, err := eventservices.OpenSQLiteSessionStore(filepath.Join(env.SessionsDir, "sessions.db"))
		if err != nil {
			return nil, nil, err
		}

		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("OpenSessionStore: unknown session store %q", env.SessionStore)
	}
}

func DefaultConfigPath(projectsDir string) string {
	return filepath.Join(projectsDir, "spx-fair-value", "src", "parity_config.yaml")
}

func Run(ctx context.Context, args RunArgs) (RunResult, error) {
	env, err := LoadEnv(args.GoEnv)
	if err != nil {
		return RunResult{}, err
	}

	configPath := args.ConfigPath
	if configPath == "" {
		configPath = DefaultConfigPath(env.ProjectsDir)
	}

	config, err := eventservices.LoadParityConfigYAML(configPath)
	if err != nil {
		return RunResult{}, fmt.Errorf("error loading parity config: %w", err)
	}

	client := eventservices.NewTradierClient(env.BearerToken, env.OptionChainURL, env.OptionExpirationsURL, env.StockQuotesURL)

	var fetcher eventservices.SnapshotFetcher = client
	if args.Expiration != "" {
		expiration, err := utils.ParseDate(args.Expiration)
		if err != nil {
			return RunResult{}, fmt.Errorf("error parsing expiration: %w", err)
		}

		fetcher = &fixedExpirationFetcher{TradierClient: client, expiration: expiration}
	}

	store, closeStore, err := OpenSessionStore(env)
	if err != nil {
		return RunResult{}, fmt.Errorf("error opening session store: %w", err)
	}

	defer closeStore()

	service := eventservices.NewFairValueService(fetcher, store, config)
	if env.MarketCalendarURL != "" {
		service.Clock = eventservices.NewMarketCalendarCache(env.MarketCalendarURL, env.BearerToken)
	}

	estimate, err := service.Estimate(ctx, eventservices.EstimateRequest{
		Symbol: args.Symbol,
		Save:   args.Save,
	})
	if err != nil {
		return RunResult{}, fmt.Errorf("error estimating fair price: %w", err)
	}

	return RunResult{Estimate: estimate}, nil
}
