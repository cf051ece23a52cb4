package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"recipebrowser/tools"
)

var toolCmd = &cobra.Command{
	Use:   "tool",
	Short: "List or run the named tools",
	Long: `List or run the named tools.

Tools take a JSON object as input and print a JSON object, for use by scripts
or function-calling models.`,
}

var toolListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tools with their input schemas",
	Args:  cobra.NoArgs,
	RunE:  runToolList,
}

var toolRunCmd = &cobra.Command{
	Use:   "run <name> [json-input]",
	Short: "Run a tool",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runToolRun,
}

func init() {
	toolListCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print tool schemas as JSON")
	toolCmd.AddCommand(toolListCmd, toolRunCmd)
	rootCmd.AddCommand(toolCmd)
}

func newRegistry() (*tools.Registry, error) {
	return tools.NewRegistry(current.ctrl, current.favorites)
}

func runToolList(cmd *cobra.Command, args []string) error {
	registry, err := newRegistry()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		type toolInfo struct {
			Name         string `json:"name"`
			Title        string `json:"title"`
			Description  string `json:"description"`
			InputSchema  any    `json:"input_schema"`
			OutputSchema any    `json:"output_schema"`
		}
		infos := make([]toolInfo, 0)
		for _, t := range registry.GetTools() {
			infos = append(infos, toolInfo{
				Name:         t.Name(),
				Title:        t.Title(),
				Description:  t.Description(),
				InputSchema:  t.InputSchema(),
				OutputSchema: t.OutputSchema(),
			})
		}
		return printJSON(out, infos)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, t := range registry.GetTools() {
		fmt.Fprintf(tw, "%s\t%s\n", t.Name(), t.Description())
	}
	return tw.Flush()
}

func runToolRun(cmd *cobra.Command, args []string) error {
	registry, err := newRegistry()
	if err != nil {
		return err
	}

	call := tools.Call{Name: args[0], Input: map[string]any{}}
	if len(args) == 2 {
		if err := json.Unmarshal([]byte(args[1]), &call.Input); err != nil {
			return fmt.Errorf("parse tool input: %w", err)
		}
	}

	ctx, end := current.span(cmd, attribute.String("tool.name", call.Name))
	defer end()

	output, err := registry.Dispatch(ctx, call)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), output)
}
