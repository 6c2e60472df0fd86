package cmd

import (
	"context"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/hackmate/internal/engine"
	"github.com/spigell/hackmate/internal/profiles"
)

const (
	PromptDone = "done"
	PromptBack = "back"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Suggest roles and a leader for a team",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		logger, config := bootstrap()

		e, err := newEngine(ctx, config, logger, nil)
		if err != nil {
			logger.Fatal("building engine", zap.Error(err))
		}

		members, err := cmd.Flags().GetStringSlice("member")
		if err != nil {
			logger.Fatal("reading member flag", zap.Error(err))
		}

		if len(members) == 0 {
			participants, err := e.Participants(ctx)
			if err != nil {
				logger.Fatal("loading participants", zap.Error(err))
			}
			members, err = pickMembers(participants)
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		if len(members) == 0 {
			logger.Info("exiting", zap.String("reason", "no members selected"))
			return
		}

		assignments, err := e.AssignRoles(ctx, engine.RolesRequest{MemberIDs: members})
		if err != nil {
			logger.Fatal("assigning roles", zap.Error(err))
		}

		if err := printJSON(cmd.OutOrStdout(), map[string]any{"roles": assignments}); err != nil {
			logger.Fatal("printing roles", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(rolesCmd)

	rolesCmd.Flags().StringSliceP("member", "m", nil, "team member id, repeatable; pick interactively when omitted")
}

// pickMembers lets the user add members one by one until done is chosen.
func pickMembers(participants *profiles.Participants) ([]string, error) {
	remaining := participants.Clone()
	var selected []string

	for {
		items := append(remaining.Labels(), PromptDone)

		memberPrompt := promptui.Select{
			Label: fmt.Sprintf("Add a team member (%d selected) and press ENTER", len(selected)),
			Items: items,
			Size:  10,
		}

		_, choice, err := memberPrompt.Run()
		if err != nil {
			return nil, err
		}

		if choice == PromptDone {
			return selected, nil
		}

		id := labelID(choice)
		selected = append(selected, id)
		remaining.Exclude(id)
	}
}
