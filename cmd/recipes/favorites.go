package main

import (
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"recipebrowser/favorites"
	"recipebrowser/slack"
)

var shareChannel string

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"fav"},
	Short:   "Manage favorite recipes",
	Long: `Manage favorite recipes.

Available subcommands:
  list         - List favorites in the order they were added
  toggle       - Add a recipe, or remove it if it is already a favorite
  add          - Add a recipe
  remove       - Remove a recipe
  ingredients  - Combined shopping list of all favorites
  share        - Post the shopping list to Slack`,
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorite recipes",
	Args:  cobra.NoArgs,
	RunE:  runFavoritesList,
}

var favoritesToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Toggle a recipe in favorites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleFavorite(cmd, cmd.OutOrStdout(), args[0])
	},
}

var favoritesAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Add a recipe to favorites",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavoritesAdd,
}

var favoritesRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a recipe from favorites",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavoritesRemove,
}

var favoritesIngredientsCmd = &cobra.Command{
	Use:   "ingredients",
	Short: "Show the combined ingredients of all favorites",
	Args:  cobra.NoArgs,
	RunE:  runFavoritesIngredients,
}

var favoritesShareCmd = &cobra.Command{
	Use:   "share",
	Short: "Post the favorites shopping list to Slack",
	Long:  `Post the favorites shopping list to the Slack webhook in SLACK_WEBHOOK_URL.`,
	Args:  cobra.NoArgs,
	RunE:  runFavoritesShare,
}

func init() {
	favoritesIngredientsCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the list as JSON")
	favoritesShareCmd.Flags().StringVar(&shareChannel, "channel", "", "Slack channel (default SLACK_CHANNEL)")

	favoritesCmd.AddCommand(
		favoritesListCmd,
		favoritesToggleCmd,
		favoritesAddCmd,
		favoritesRemoveCmd,
		favoritesIngredientsCmd,
		favoritesShareCmd,
	)
	rootCmd.AddCommand(favoritesCmd)
}

func runFavoritesList(cmd *cobra.Command, args []string) error {
	list := current.favorites.List()
	out := cmd.OutOrStdout()
	if len(list) == 0 {
		fmt.Fprintln(out, "No favorites yet.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, r := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d ingredients\n", r.ID, r.Name, r.Category, len(r.Ingredients))
	}
	return tw.Flush()
}

// toggleFavorite drops a stored favorite without asking the catalog. Adding
// stores the full recipe so the shopping list has its ingredients.
func toggleFavorite(cmd *cobra.Command, w io.Writer, id string) error {
	ctx, end := current.span(cmd, attribute.String("recipe.id", id))
	defer end()

	for _, r := range current.favorites.List() {
		if r.ID != id {
			continue
		}
		if err := current.favorites.Remove(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(w, "Removed %s from favorites.\n", r.Name)
		return nil
	}

	d, err := current.ctrl.Detail(ctx, id)
	if err != nil {
		return err
	}
	if d.NotFound {
		return fmt.Errorf("recipe %s not found", id)
	}

	if err := current.favorites.Add(ctx, *d.Recipe); err != nil {
		return err
	}
	fmt.Fprintf(w, "Added %s to favorites.\n", d.Recipe.Name)
	return nil
}

func runFavoritesAdd(cmd *cobra.Command, args []string) error {
	ctx, end := current.span(cmd, attribute.String("recipe.id", args[0]))
	defer end()

	if current.favorites.IsFavorite(args[0]) {
		fmt.Fprintln(cmd.OutOrStdout(), "Already a favorite.")
		return nil
	}
	d, err := current.ctrl.Detail(ctx, args[0])
	if err != nil {
		return err
	}
	if d.NotFound {
		return fmt.Errorf("recipe %s not found", args[0])
	}
	if err := current.favorites.Add(ctx, *d.Recipe); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s to favorites.\n", d.Recipe.Name)
	return nil
}

func runFavoritesRemove(cmd *cobra.Command, args []string) error {
	ctx, end := current.span(cmd, attribute.String("recipe.id", args[0]))
	defer end()

	if !current.favorites.IsFavorite(args[0]) {
		return fmt.Errorf("recipe %s is not a favorite", args[0])
	}
	if err := current.favorites.Remove(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Removed.")
	return nil
}

func runFavoritesIngredients(cmd *cobra.Command, args []string) error {
	items := current.favorites.AggregateIngredients()
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, items)
	}
	if len(items) == 0 {
		fmt.Fprintln(out, "No favorites yet.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INGREDIENT\tMEASURE\tRECIPES")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", it.Name, it.Measure, it.Count)
	}
	return tw.Flush()
}

func runFavoritesShare(cmd *cobra.Command, args []string) error {
	ctx, end := current.span(cmd)
	defer end()

	channel := shareChannel
	if channel == "" {
		channel = current.shareCfg.SlackChannel
	}

	client := slack.NewClient(current.shareCfg.SlackWebhookURL, http.DefaultClient)
	items := favorites.Aggregate(current.favorites.List())
	if err := slack.PostShoppingList(ctx, client, channel, current.favorites.Len(), items); err != nil {
		current.logger.Error("Failed to post shopping list to Slack", "error", err)
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Shared %d ingredients to %s.\n", len(items), channel)
	return nil
}
