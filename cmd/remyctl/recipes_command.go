package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/windoze95/chefremy-api/internal/config"
	"github.com/windoze95/chefremy-api/internal/repository"
	"github.com/windoze95/chefremy-api/internal/service"
)

func newRecipesCommand() *cobra.Command {
	var query string
	var category string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "List the demo recipe catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := service.NewRecipeService(&config.Config{}, repository.NewMemoryRecipeRepository(repository.DemoRecipes()))
			recipes, err := svc.ListRecipes(query, category)
			if err != nil {
				return fmt.Errorf("list recipes: %w", err)
			}
			if asJSON {
				return writeJSON(cmd, recipes)
			}
			if len(recipes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recipes match")
				return nil
			}

			rows := make([][]string, 0, len(recipes))
			for _, r := range recipes {
				rows = append(rows, []string{
					r.ID,
					r.Title,
					r.Category,
					string(r.Difficulty),
					strconv.Itoa(r.TotalTime) + " min",
					strconv.Itoa(r.Servings),
					strconv.Itoa(len(r.Steps)),
				})
			}
			headers := []string{"ID", "Title", "Category", "Difficulty", "Time", "Serves", "Steps"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Match title or description")
	cmd.Flags().StringVar(&category, "category", "", "Breakfast, Lunch, Dinner, Snacks, Dessert or All")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}
