package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/hackmate/internal/filtering"
	"github.com/spigell/hackmate/internal/matching"
	"github.com/spigell/hackmate/internal/profiles"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search teammates by skills and filters",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		logger, config := bootstrap()

		q, err := queryFromFlags(cmd)
		if err != nil {
			logger.Fatal("reading search flags", zap.Error(err))
		}

		e, err := newEngine(ctx, config, logger, nil)
		if err != nil {
			logger.Fatal("building engine", zap.Error(err))
		}

		results, err := e.Search(ctx, q)
		if err != nil {
			logger.Fatal("searching teammates", zap.Error(err))
		}

		logger.Info("teammates found", zap.Int("count", len(results)))

		if err := printJSON(cmd.OutOrStdout(), map[string]any{"results": results}); err != nil {
			logger.Fatal("printing results", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringSliceP("skill", "s", nil, "skill to look for, repeatable or comma separated")
	searchCmd.Flags().StringSlice("tech", nil, "tech stack entry, repeatable or comma separated")
	searchCmd.Flags().String("region", "", "exact region")
	searchCmd.Flags().String("availability", "", "exact availability")
	searchCmd.Flags().String("expertise", "", "exact expertise tier (Beginner, Intermediate, Advanced)")
	searchCmd.Flags().IntP("limit", "l", 0, "maximum number of results (default from config)")
}

func queryFromFlags(cmd *cobra.Command) (matching.Query, error) {
	flags := cmd.Flags()

	skills, err := flags.GetStringSlice("skill")
	if err != nil {
		return matching.Query{}, err
	}
	tech, err := flags.GetStringSlice("tech")
	if err != nil {
		return matching.Query{}, err
	}
	region, err := flags.GetString("region")
	if err != nil {
		return matching.Query{}, err
	}
	availability, err := flags.GetString("availability")
	if err != nil {
		return matching.Query{}, err
	}
	expertise, err := flags.GetString("expertise")
	if err != nil {
		return matching.Query{}, err
	}
	limit, err := flags.GetInt("limit")
	if err != nil {
		return matching.Query{}, err
	}

	return matching.Query{
		Criteria: filtering.Criteria{
			Skills:       skills,
			TechStack:    tech,
			Region:       region,
			Availability: availability,
			Expertise:    profiles.Expertise(expertise),
		},
		Limit: limit,
	}, nil
}
