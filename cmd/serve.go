package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hackmate/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the matching API over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger, config := bootstrap()
		logger.Info("starting the hackmate server", zap.String("version", version))

		m := newMetrics(config.Metrics)

		e, err := newEngine(ctx, config, logger, m)
		if err != nil {
			logger.Fatal("building engine", zap.Error(err))
		}

		server := &ServerConfig{Addr: ":8080"}
		if config.Server != nil {
			server = config.Server
		}

		if err := api.New(e, logger, m, server.AllowedOrigins).ListenAndServe(ctx, server.Addr); err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}

		logger.Info("application exited")
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", "", "listen address (default from config, :8080)")

	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}
