package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend teams from skill clusters of all participants",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		logger, config := bootstrap()

		e, err := newEngine(ctx, config, logger, nil)
		if err != nil {
			logger.Fatal("building engine", zap.Error(err))
		}

		clusters, err := e.Recommend(ctx)
		if err != nil {
			logger.Fatal("recommending teams", zap.Error(err))
		}

		logger.Info("team clusters found", zap.Int("count", len(clusters)))

		if err := printJSON(cmd.OutOrStdout(), map[string]any{"clusters": clusters}); err != nil {
			logger.Fatal("printing clusters", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().IntP("threshold", "t", 0, "minimum number of shared skills for a link (default from config)")
	recommendCmd.Flags().IntP("max-results", "n", 0, "maximum number of clusters (default from config)")

	viper.BindPFlag("matching.threshold", recommendCmd.Flags().Lookup("threshold"))
	viper.BindPFlag("matching.max-results", recommendCmd.Flags().Lookup("max-results"))
}
