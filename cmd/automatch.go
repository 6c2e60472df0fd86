package cmd

import (
	"context"
	"errors"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/hackmate/internal/engine"
	"github.com/spigell/hackmate/internal/profiles"
)

var errBack = errors.New("nothing selected")

var automatchCmd = &cobra.Command{
	Use:   "automatch",
	Short: "Rank teammates for a participant with the configured AI provider",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		logger, config := bootstrap()

		e, err := newEngine(ctx, config, logger, nil)
		if err != nil {
			logger.Fatal("building engine", zap.Error(err))
		}

		userID, err := cmd.Flags().GetString("user")
		if err != nil {
			logger.Fatal("reading user flag", zap.Error(err))
		}

		if userID == "" {
			participants, err := e.Participants(ctx)
			if err != nil {
				logger.Fatal("loading participants", zap.Error(err))
			}
			userID, err = pickParticipant(participants)
			if errors.Is(err, errBack) {
				logger.Info("exiting", zap.String("reason", "no participant selected"))
				return
			}
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		resp, err := e.AutoMatch(ctx, engine.AutoMatchRequest{UserID: userID})
		if err != nil {
			logger.Fatal("matching teammates", zap.Error(err))
		}

		logger.Info("teammates ranked",
			zap.String("user_id", resp.UserID),
			zap.String("provider", resp.Provider),
			zap.Int("count", len(resp.Matches)),
		)

		if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
			logger.Fatal("printing matches", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(automatchCmd)

	automatchCmd.Flags().StringP("user", "u", "", "participant id to match; pick interactively when omitted")
}

func pickParticipant(participants *profiles.Participants) (string, error) {
	userPrompt := promptui.Select{
		Label: "Choose a participant and press ENTER",
		Items: append(participants.Labels(), PromptBack),
		Size:  10,
	}

	_, choice, err := userPrompt.Run()
	if err != nil {
		return "", err
	}
	if choice == PromptBack {
		return "", errBack
	}

	return labelID(choice), nil
}
