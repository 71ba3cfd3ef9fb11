package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hotelacd/internal/logger"
)

var (
	dbPath   string
	logLevel string

	rootCmd = &cobra.Command{
		Use:   "hotelacd",
		Short: "Hotel central air-conditioning scheduler",
		Long:  "hotelacd runs the priority-plus-time-slice AC scheduling engine for a small hotel's guest rooms.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			switch logLevel {
			case "debug":
				logger.SetLevel(logger.DebugLevel)
			case "warn":
				logger.SetLevel(logger.WarnLevel)
			case "error":
				logger.SetLevel(logger.ErrorLevel)
			default:
				logger.SetLevel(logger.InfoLevel)
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the detail-record SQLite database (empty keeps records in memory only)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(demoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
