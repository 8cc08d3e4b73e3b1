package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/hrms-portal/internal/hrmsapi"
	"github.com/frahmantamala/hrms-portal/pkg/logger"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Connectivity checks",
}

var checkBackendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Check that the HRMS backend answers",
	Long:  `Send a request to the configured HRMS backend and report whether it answers`,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig(configPath)
		if err != nil {
			return err
		}

		client := hrmsapi.NewClient(hrmsapi.Config{
			BaseURL:        config.Backend.BaseURL,
			RequestTimeout: config.Backend.RequestTimeout,
		}, logger.LoggerWrapper())

		ctx, cancel := context.WithTimeout(cmd.Context(), config.Backend.RequestTimeout)
		defer cancel()

		start := time.Now()
		if err := client.Ping(ctx); err != nil {
			return fmt.Errorf("backend %s unreachable: %w", config.Backend.BaseURL, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "backend %s reachable in %s\n", config.Backend.BaseURL, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	checkCmd.AddCommand(checkBackendCmd)
}
