package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/windoze95/chefremy-api/internal/router"
	"github.com/windoze95/chefremy-api/internal/voice"
)

type askResult struct {
	Command  string        `json:"command"`
	Response string        `json:"response"`
	Action   *voice.Action `json:"action,omitempty"`
	Intent   string        `json:"intent"`
	Source   string        `json:"source"`
}

func newAskCommand(ctx *commandContext) *cobra.Command {
	var page string
	var step int
	var recipe string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ask <command>",
		Short: "Route a voice command locally and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			providers := router.NewProviders(cmd.Context(), cfg)
			r := voice.NewRouter(voice.Deps{
				Text:      providers.Text,
				Recipes:   providers.Recipes,
				Nutrition: providers.Nutrition,
				Prompts:   cfg.Prompts,
			})

			req := voice.Request{
				Command: strings.Join(args, " "),
				Context: &voice.CommandContext{CurrentPage: page, CurrentRecipe: recipe},
			}
			if cmd.Flags().Changed("step") {
				req.Context.CurrentStep = &step
			}

			resp, err := r.Route(cmd.Context(), req)
			if err != nil {
				return err
			}

			result := askResult{
				Command:  req.Command,
				Response: resp.Response,
				Action:   resp.Action,
				Intent:   resp.Intent,
				Source:   resp.Source,
			}
			if asJSON {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Remy: %s\n", result.Response)
			fmt.Fprintf(out, "Intent: %s (%s)\n", result.Intent, result.Source)
			if result.Action != nil {
				data, err := json.Marshal(result.Action.Data)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Action: %s %s\n", result.Action.Type, data)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&page, "page", voice.PageHome, "Page the command is spoken on (home or cooking-mode)")
	cmd.Flags().IntVar(&step, "step", 0, "Current step number in cooking mode")
	cmd.Flags().StringVar(&recipe, "recipe", "", "Recipe title in cooking mode")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}
