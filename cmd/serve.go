package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/btaeng/trivia-map/internal/logger"
	"github.com/btaeng/trivia-map/internal/web"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive trivia map",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("host") {
			serveHost = cfg.Server.Host
		}
		if !cmd.Flags().Changed("port") {
			servePort = cfg.Server.Port
		}

		ds, err := loadDataset()
		if err != nil {
			return err
		}

		relay, ex, closeStore, err := newRelay(nil)
		if err != nil {
			return err
		}
		defer closeStore()

		logger.L().Info("serve_start",
			"features", ds.Len(),
			"provider", cfg.Oracle.Provider,
			"model", cfg.Oracle.Model,
			"cache", cfg.Cache.Backend,
		)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		srv := &web.Server{
			Dataset:    ds,
			Relay:      relay,
			Exclusions: ex,
			Logger:     logger.L(),
			Addr:       fmt.Sprintf("%s:%d", serveHost, servePort),
		}
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "localhost", "Host to listen on")
	serveCmd.Flags().IntVar(&servePort, "port", 3001, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}
