package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	profilemodels "ballot/internal/profile/models"
	"ballot/internal/voterclient"
	"ballot/internal/voting/models"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func categoriesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			categories, err := a.client.Categories(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), categories)
		}),
	}
}

func candidatesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "candidates <category-id>",
		Short: "List a category's candidates by votes",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			candidates, err := a.client.Candidates(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), candidates)
		}),
	}
}

func statsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show totals, leaders and daily growth",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			stats, err := a.client.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stats)
		}),
	}
}

func voteCommand(a *app) *cobra.Command {
	var (
		profileID      string
		noLocalStorage bool
		noIndexedDB    bool
	)
	cmd := &cobra.Command{
		Use:   "vote <candidate-id>",
		Short: "Cast a vote",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			in := voterclient.VoteInput{CandidateID: args[0], VoterProfileID: profileID}
			if noLocalStorage {
				in.LocalStorage = new(bool)
			}
			if noIndexedDB {
				in.IndexedDB = new(bool)
			}
			result, err := a.client.SubmitVote(cmd.Context(), in)
			if err != nil && !voterclient.IsRejection(err) {
				return err
			}
			if perr := printJSON(cmd.OutOrStdout(), result); perr != nil {
				return perr
			}
			if !result.Success {
				return fmt.Errorf("vote rejected: %s", result.Error)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&profileID, "profile", "", "voter profile id")
	cmd.Flags().BoolVar(&noLocalStorage, "no-local-storage", false, "report local storage as unavailable")
	cmd.Flags().BoolVar(&noIndexedDB, "no-indexed-db", false, "report the embedded database as unavailable")
	return cmd
}

func validateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check and record the server cooldown for this network",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			if err := a.client.ValidateVote(cmd.Context()); err != nil {
				result := models.ResultFromError(err)
				if perr := printJSON(cmd.OutOrStdout(), result); perr != nil {
					return perr
				}
				return fmt.Errorf("validation rejected: %s", result.Error)
			}
			return printJSON(cmd.OutOrStdout(), models.VoteResult{Success: true})
		}),
	}
}

type statusOutput struct {
	CanVote        bool   `json:"can_vote"`
	RemainingHours int    `json:"remaining_hours,omitempty"`
	Message        string `json:"message,omitempty"`
	Selection      string `json:"selection,omitempty"`
	Validated      bool   `json:"validated,omitempty"`
}

func statusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether this device may vote",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			decision, err := a.client.CanVote()
			if err != nil {
				return err
			}
			selection, err := a.state.Vote()
			if err != nil {
				return err
			}
			validatedAt, _, err := a.state.Validation()
			if err != nil {
				return err
			}
			out := statusOutput{CanVote: decision.Allowed, Selection: selection, Validated: !validatedAt.IsZero()}
			if !decision.Allowed {
				out.RemainingHours = decision.RemainingHours
				out.Message = models.CooldownMessage(decision.RemainingHours)
			}
			return printJSON(cmd.OutOrStdout(), out)
		}),
	}
}

func selectionCommand(a *app) *cobra.Command {
	var clearSelection bool
	cmd := &cobra.Command{
		Use:   "selection",
		Short: "Show or clear the stored vote selection",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			if clearSelection {
				return a.state.ClearVote()
			}
			selection, err := a.state.Vote()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), selection)
			return err
		}),
	}
	cmd.Flags().BoolVar(&clearSelection, "clear", false, "clear the stored selection")
	return cmd
}

func registerCommand(a *app) *cobra.Command {
	var reg profilemodels.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a voter profile",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			profile, err := a.client.Register(cmd.Context(), reg)
			if err != nil {
				if voterclient.IsRejection(err) {
					result := models.ResultFromError(err)
					_ = printJSON(cmd.OutOrStdout(), result)
					return fmt.Errorf("registration rejected: %s", result.Error)
				}
				return err
			}
			return printJSON(cmd.OutOrStdout(), profile)
		}),
	}
	cmd.Flags().StringVar(&reg.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&reg.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&reg.Email, "email", "", "email address")
	return cmd
}

func watchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <category-id>",
		Short: "Follow a category's tally live",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			err := a.client.Watch(ctx, args[0], func(candidates []*models.Candidate) {
				for _, c := range candidates {
					fmt.Fprintf(out, "%s\t%d\t%s\n", c.ID, c.VotesCount, c.Name)
				}
				fmt.Fprintln(out)
			})
			if ctx.Err() != nil {
				return nil
			}
			return err
		}),
	}
}
