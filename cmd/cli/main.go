package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"stokhos/adapters/llm/heuristic"
	"stokhos/adapters/stats/engine"
	"stokhos/adapters/tabular"
	"stokhos/app"
	"stokhos/domain/analysis"
	"stokhos/domain/variable"
	"stokhos/internal"
	"stokhos/internal/testkit"
	"stokhos/ports"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "stokhos-cli",
		Short: "Stokhos CLI for distribution, transition and memory-order analysis",
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newTransitionsCmd(),
		newSelfDepCmd(),
		newDemoCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newService(maxJointStates int) *app.AnalysisService {
	logger := internal.NewDefaultLogger()
	return app.NewAnalysisService(logger, heuristic.NewSummarizer(), nil,
		engine.SelfDependenceConfig{MaxJointStates: maxJointStates})
}

func newAnalyzeCmd() *cobra.Command {
	var mode string
	var types string
	var summarize bool

	cmd := &cobra.Command{
		Use:   "analyze [file.csv|file.xlsx]",
		Short: "Build empirical joint and marginal distributions from a tabular file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := tabular.NewReader().ReadTable(context.Background(), args[0])
			if err != nil {
				return err
			}
			vars, err := variablesFromTable(table, types)
			if err != nil {
				return err
			}
			result, err := newService(0).AnalyzeDataset(context.Background(), app.DatasetRequest{
				Rows:      table.Rows,
				Variables: vars,
				Mode:      analysis.Mode(mode),
				Summarize: summarize,
			})
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(analysis.ModeCrossSectional),
		"analysis mode: cross_sectional or time_series")
	cmd.Flags().StringVar(&types, "types", "",
		"comma-separated measurement type per column (numerical, ordinal, nominal); default nominal")
	cmd.Flags().BoolVar(&summarize, "summarize", false, "include a prose summary")
	return cmd
}

func newTransitionsCmd() *cobra.Command {
	var column string

	cmd := &cobra.Command{
		Use:   "transitions [file.csv|file.xlsx]",
		Short: "Derive the Markov transition view of one ordered column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := tabular.NewReader().ReadTable(context.Background(), args[0])
			if err != nil {
				return err
			}
			idx := 0
			if column != "" {
				idx = -1
				for i, h := range table.Headers {
					if h == column {
						idx = i
						break
					}
				}
				if idx < 0 {
					return fmt.Errorf("column %q not found in %v", column, table.Headers)
				}
			}
			trace := make([]string, len(table.Rows))
			for i, row := range table.Rows {
				trace[i] = row[idx]
			}
			result, err := newService(0).AnalyzeTransitions(trace)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&column, "column", "", "column to treat as the trace (default: first)")
	return cmd
}

func newSelfDepCmd() *cobra.Command {
	var maxJointStates int
	var summarize bool

	cmd := &cobra.Command{
		Use:   "self-dep [file.csv|file.xlsx]",
		Short: "Determine the memory order of an ensemble (one trace per row, one time step per column)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := tabular.NewReader().ReadTable(context.Background(), args[0])
			if err != nil {
				return err
			}
			svc := newService(maxJointStates)

			stateSpace := observedStates(table.Rows)
			if cost, ok := svc.EstimateSelfDependenceCost(len(stateSpace), len(table.Headers)); !ok {
				return fmt.Errorf("analysis would enumerate %.0f joint states; raise --max-joint-states or reduce the data", cost)
			}

			result, err := svc.AnalyzeSelfDependence(context.Background(), app.SelfDependenceRequest{
				Traces:     table.Rows,
				StateSpace: stateSpace,
				TimeLabels: table.Headers,
				Summarize:  summarize,
			})
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().IntVar(&maxJointStates, "max-joint-states", 0,
		"joint enumeration budget (0 uses the default)")
	cmd.Flags().BoolVar(&summarize, "summarize", false, "include a prose summary")
	return cmd
}

func newDemoCmd() *cobra.Command {
	var seed int64

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the full analysis pipeline on deterministic synthetic data",
		RunE: func(cmd *cobra.Command, args []string) error {
			kit := testkit.NewKit(seed)
			svc := newService(0)
			ctx := context.Background()

			dataset, err := svc.AnalyzeDataset(ctx, app.DatasetRequest{
				Rows:      kit.RetailRows(200),
				Variables: testkit.RetailVariables(),
				Mode:      analysis.ModeCrossSectional,
				Summarize: true,
			})
			if err != nil {
				return err
			}

			states := []string{"up", "flat", "down"}
			selfDep, err := svc.AnalyzeSelfDependence(ctx, app.SelfDependenceRequest{
				Traces:     kit.MarkovEnsemble(300, 4, states),
				StateSpace: states,
				Summarize:  true,
			})
			if err != nil {
				return err
			}

			return printJSON(map[string]interface{}{
				"dataset":         dataset,
				"self_dependence": selfDep,
			})
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "generator seed")
	return cmd
}

// variablesFromTable declares one variable per column. State spaces are
// the observed column values; measurement types come from the --types
// flag, defaulting to nominal.
func variablesFromTable(table *ports.Table, types string) ([]variable.Info, error) {
	var declared []string
	if types != "" {
		declared = strings.Split(types, ",")
		if len(declared) != len(table.Headers) {
			return nil, fmt.Errorf("got %d types for %d columns", len(declared), len(table.Headers))
		}
	}

	vars := make([]variable.Info, len(table.Headers))
	for i, header := range table.Headers {
		measurement := variable.Nominal
		if declared != nil {
			measurement = variable.MeasurementType(strings.TrimSpace(declared[i]))
			if !measurement.Valid() {
				return nil, fmt.Errorf("unknown measurement type %q for column %q", declared[i], header)
			}
		}
		seen := make(map[string]bool)
		var states []string
		for _, row := range table.Rows {
			if v := row[i]; v != "" && !seen[v] {
				seen[v] = true
				states = append(states, v)
			}
		}
		sort.Strings(states)
		vars[i] = variable.Info{Name: header, StateSpace: states, Measurement: measurement}
	}
	return vars, nil
}

// observedStates collects the distinct non-empty states across an ensemble
func observedStates(traces [][]string) []string {
	seen := make(map[string]bool)
	var states []string
	for _, trace := range traces {
		for _, s := range trace {
			if s != "" && !seen[s] {
				seen[s] = true
				states = append(states, s)
			}
		}
	}
	sort.Strings(states)
	return states
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
