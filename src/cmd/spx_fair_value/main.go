package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jiaming2012/spx-fair-value/src/cmd/spx_fair_value/run"
	"github.com/jiaming2012/spx-fair-value/src/eventmodels"
	"github.com/jiaming2012/spx-fair-value/src/logger"
)

var runCmd = &cobra.Command{
	Use:   "go run src/cmd/spx_fair_value/main.go --symbol spx --save",
	Short: "Estimate the SPX fair price from SPXW put-call parity",
	Run: func(cmd *cobra.Command, args []string) {
		goEnv, err := cmd.Flags().GetString("go-env")
		if err != nil {
			log.Fatalf("error getting go-env: %v", err)
		}

		symbol, err := cmd.Flags().GetString("symbol")
		if err != nil {
			log.Fatalf("error getting symbol: %v", err)
		}

		expiration, err := cmd.Flags().GetString("expiration")
		if err != nil {
			log.Fatalf("error getting expiration: %v", err)
		}

		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			log.Fatalf("error getting config: %v", err)
		}

		save, err := cmd.Flags().GetBool("save")
		if err != nil {
			log.Fatalf("error getting save: %v", err)
		}

		result, err := run.Run(context.Background(), run.RunArgs{
			Symbol:     eventmodels.NewStockSymbol(symbol),
			Expiration: expiration,
			ConfigPath: configPath,
			Save:       save,
			GoEnv:      goEnv,
		})

		if err != nil {
			if errors.Is(err, eventmodels.ErrInsufficientData) || errors.Is(err, eventmodels.ErrDegenerateEstimate) {
				log.Errorf("no estimate: %v", err)
				os.Exit(2)
			}

			log.Fatalf("Error: %v", err)
		}

		fmt.Print(result.Estimate.String())
	},
}

func main() {
	logger.Setup()

	runCmd.PersistentFlags().String("go-env", "development", "The go environment to run the command in.")
	runCmd.PersistentFlags().String("symbol", "SPX", "The index to estimate.")
	runCmd.PersistentFlags().String("expiration", "", "Option expiration (YYYY-MM-DD). Defaults to the nearest listed expiration.")
	runCmd.PersistentFlags().String("config", "", "Path to the parity config yaml.")
	runCmd.PersistentFlags().Bool("save", false, "Append the estimate to today's session file.")

	runCmd.Execute()
}
