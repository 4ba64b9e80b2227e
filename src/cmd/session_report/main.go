package main

import (
	"context"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jiaming2012/spx-fair-value/src/cmd/spx_fair_value/run"
	"github.com/jiaming2012/spx-fair-value/src/eventmodels"
	"github.com/jiaming2012/spx-fair-value/src/eventservices"
	"github.com/jiaming2012/spx-fair-value/src/logger"
	"github.com/jiaming2012/spx-fair-value/src/utils"
)

type RunArgs struct {
	Date      string
	Symbol    eventmodels.StockSymbol
	ExportCSV string
	GoEnv     string
}

func Run(ctx context.Context, args RunArgs) error {
	env, err := run.LoadEnv(args.GoEnv)
	if err != nil {
		return err
	}

	store, closeStore, err := run.OpenSessionStore(env)
	if err != nil {
		return fmt.Errorf("error opening session store: %w", err)
	}

	defer closeStore()

	session, err := store.Load(ctx, args.Date)
	if err != nil {
		return fmt.Errorf("error loading session: %w", err)
	}

	summary, err := eventservices.SummarizeSession(session, args.Symbol)
	if err != nil {
		return fmt.Errorf("error summarizing session: %w", err)
	}

	fmt.Print(summary.String())

	if args.ExportCSV != "" {
		file, err := os.Create(args.ExportCSV)
		if err != nil {
			return fmt.Errorf("error creating csv file: %w", err)
		}

		defer file.Close()

		if err := eventservices.ExportSessionCSV(file, session); err != nil {
			return err
		}

		log.Infof("exported %d estimates to %s", len(session.Estimates), args.ExportCSV)
	}

	return nil
}

var runCmd = &cobra.Command{
	Use:   "go run src/cmd/session_report/main.go --date 2025-10-17 --export-csv spx.csv",
	Short: "Summarize the fair price estimates stored for a trading day",
	Run: func(cmd *cobra.Command, args []string) {
		goEnv, err := cmd.Flags().GetString("go-env")
		if err != nil {
			log.Fatalf("error getting go-env: %v", err)
		}

		date, err := cmd.Flags().GetString("date")
		if err != nil {
			log.Fatalf("error getting date: %v", err)
		}

		if date == "" {
			if date, err = utils.TradingDate(time.Now()); err != nil {
				log.Fatalf("error getting trading date: %v", err)
			}
		}

		symbol, err := cmd.Flags().GetString("symbol")
		if err != nil {
			log.Fatalf("error getting symbol: %v", err)
		}

		exportCSV, err := cmd.Flags().GetString("export-csv")
		if err != nil {
			log.Fatalf("error getting export-csv: %v", err)
		}

		if err := Run(context.Background(), RunArgs{
			Date:      date,
			Symbol:    eventmodels.NewStockSymbol(symbol),
			ExportCSV: exportCSV,
			GoEnv:     goEnv,
		}); err != nil {
			log.Fatalf("Error: %v", err)
		}
	},
}

func main() {
	logger.Setup()

	runCmd.PersistentFlags().String("go-env", "development", "The go environment to run the command in.")
	runCmd.PersistentFlags().String("date", "", "Trading day (YYYY-MM-DD). Defaults to today in New York.")
	runCmd.PersistentFlags().String("symbol", "SPX", "The index to summarize.")
	runCmd.PersistentFlags().String("export-csv", "", "Write the session estimates to this csv file.")

	runCmd.Execute()
}
