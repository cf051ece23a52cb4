package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"recipebrowser"
	"recipebrowser/listing"
)

var (
	listSearch   string
	listCategory string
	listPage     int
	jsonOutput   bool
	dumpOutput   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of recipes",
	Long: `List one page of recipes.

A search term wins over the category. With neither, recipes of every category
are listed.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a recipe with its ingredients",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List recipe categories",
	Args:  cobra.NoArgs,
	RunE:  runCategories,
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse recipes interactively",
	Long: `Browse recipes interactively.

Type to search. Commands:
  :cat <name>   filter by category (:cat alone clears it)
  :page <n>     go to page n
  :next :prev   move between pages
  :fav <id>     toggle a favorite
  :quit         leave`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Search recipes by name")
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "Filter by category")
	listCmd.Flags().IntVarP(&listPage, "page", "p", 1, "Page to show")
	listCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")

	showCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the recipe as JSON")
	showCmd.Flags().BoolVar(&dumpOutput, "dump", false, "Dump the recipe value for debugging")

	rootCmd.AddCommand(listCmd, showCmd, categoriesCmd, browseCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx, end := current.span(cmd,
		attribute.String("list.search", listSearch),
		attribute.String("list.category", listCategory),
		attribute.Int("list.page", listPage),
	)
	defer end()

	res, err := current.ctrl.Resolve(ctx, listing.Query{Search: listSearch, Category: listCategory, Page: listPage})
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), res)
	}
	printResult(cmd.OutOrStdout(), res, current.favorites.IsFavorite)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx, end := current.span(cmd, attribute.String("recipe.id", args[0]))
	defer end()

	d, err := current.ctrl.Detail(ctx, args[0])
	if err != nil {
		return err
	}
	if d.NotFound {
		return fmt.Errorf("recipe %s not found", args[0])
	}

	out := cmd.OutOrStdout()
	switch {
	case dumpOutput:
		recipebrowser.Fdump(out, d.Recipe)
		return nil
	case jsonOutput:
		return printJSON(out, d.Recipe)
	}
	printRecipe(out, *d.Recipe, current.favorites.IsFavorite(d.Recipe.ID))
	return nil
}

func runCategories(cmd *cobra.Command, args []string) error {
	ctx, end := current.span(cmd)
	defer end()

	cats, err := current.ctrl.Categories(ctx)
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		return fmt.Errorf("no categories available")
	}
	for _, c := range cats {
		fmt.Fprintln(cmd.OutOrStdout(), c)
	}
	return nil
}

func runBrowse(cmd *cobra.Command, args []string) error {
	out := &prompt{w: cmd.OutOrStdout(), isFavorite: current.favorites.IsFavorite}

	session := listing.NewSession(cmd.Context(), current.ctrl,
		listing.WithSearchDebounce(current.listCfg.SearchDebounce),
		listing.WithSessionLogger(current.logger),
		listing.WithOnChange(out.render),
	)
	defer session.Close()

	out.render(session.View())

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, ":") {
			session.SetSearch(line)
			continue
		}

		verb, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
		arg = strings.TrimSpace(arg)
		switch verb {
		case "q", "quit":
			return nil
		case "cat":
			session.SetCategory(arg)
		case "page":
			n, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Fprintf(out, "invalid page %q\n> ", arg)
				continue
			}
			session.SetPage(n)
		case "next":
			session.SetPage(session.Query().Page + 1)
		case "prev":
			if p := session.Query().Page; p > 1 {
				session.SetPage(p - 1)
			}
		case "fav":
			if err := toggleFavorite(cmd, out, arg); err != nil {
				fmt.Fprintf(out, "%v\n", err)
			}
			out.render(session.View())
		default:
			fmt.Fprintf(out, "unknown command %q\n> ", verb)
		}
	}
	return scanner.Err()
}

// prompt serializes browse output. Session callbacks render from background
// goroutines while the input loop writes replies.
type prompt struct {
	mu         sync.Mutex
	w          io.Writer
	isFavorite func(id string) bool
}

func (p *prompt) render(res listing.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	printResult(p.w, res, p.isFavorite)
	fmt.Fprint(p.w, "> ")
}

func (p *prompt) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.w.Write(b)
}

func printResult(w io.Writer, res listing.Result, isFavorite func(string) bool) {
	if res.IsLoading {
		fmt.Fprintln(w, "Loading...")
		return
	}
	if res.ResetPage {
		fmt.Fprintln(w, "Page out of range, showing page 1.")
	}
	if len(res.Items) == 0 {
		fmt.Fprintln(w, "No recipes found.")
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range res.Items {
		mark := " "
		if isFavorite(r.ID) {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", mark, r.ID, r.Name, r.Category)
	}
	tw.Flush()

	status := fmt.Sprintf("Page %d of %d (%d recipes, %s)", res.Page, res.TotalPages, res.Total, res.Source)
	if res.Stale {
		status += ", refreshing"
	}
	fmt.Fprintln(w, status)
}

func printRecipe(w io.Writer, r recipebrowser.Recipe, favorite bool) {
	title := r.Name
	if favorite {
		title += " *"
	}
	fmt.Fprintln(w, title)
	if meta := strings.Join(nonEmpty(r.Category, r.Area), " / "); meta != "" {
		fmt.Fprintln(w, meta)
	}
	if len(r.Tags) > 0 {
		fmt.Fprintf(w, "Tags: %s\n", strings.Join(r.Tags, ", "))
	}

	fmt.Fprintln(w, "\nIngredients:")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, ing := range r.Ingredients {
		fmt.Fprintf(tw, "  %s\t%s\n", ing.Name, ing.Measure)
	}
	tw.Flush()

	if r.Instructions != "" {
		fmt.Fprintf(w, "\n%s\n", r.Instructions)
	}
	if r.HasVideo() {
		fmt.Fprintf(w, "\nVideo: %s\n", r.Video)
	}
	if r.Source != "" {
		fmt.Fprintf(w, "Source: %s\n", r.Source)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
