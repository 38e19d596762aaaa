package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zen-systems/opsgate/pkg/adapter"
	"github.com/zen-systems/opsgate/pkg/agent"
	"github.com/zen-systems/opsgate/pkg/catalog"
	"github.com/zen-systems/opsgate/pkg/config"
	"github.com/zen-systems/opsgate/pkg/dispatch"
	"github.com/zen-systems/opsgate/pkg/intent"
	"github.com/zen-systems/opsgate/pkg/invoke"
	"github.com/zen-systems/opsgate/pkg/router"
	"github.com/zen-systems/opsgate/pkg/turn"
	"github.com/zen-systems/opsgate/pkg/workflow"
)

var (
	debugFlag   bool
	patternOnly bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "opsgate",
		Short: "Natural-language dispatch for developer backends",
		Long: `Opsgate interprets one line of free-form text, decides which
	capability domain and operation it maps to, extracts parameters, and
	dispatches to the registered backend handler. Multi-step requests run
	as one ordered workflow with rollback on failure.`,
	}

	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&patternOnly, "pattern-only", false, "skip the LLM classifier and use pattern matching only")

	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(domainsCmd())
	rootCmd.AddCommand(execCmd())
	rootCmd.AddCommand(validateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [text]",
		Short: "Interpret a request and execute it",
		Long: `Classifies the text against the domain catalog, resolves the
	operation and parameters, and runs the resulting workflow. Legacy
	slash commands such as "/build status-query folder=deploy-all"
	bypass classification.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := buildCore()
			if err != nil {
				return err
			}

			result, err := core.RouteAndExecute(cmd.Context(), args[0])
			if err != nil {
				if ue, ok := dispatch.IsUserError(err); ok {
					color.Yellow("%s", ue.Message)
					return nil
				}
				return err
			}

			if result.Clarification != nil {
				color.Cyan("%s", result.Clarification.Prompt)
				return nil
			}

			fmt.Fprintf(os.Stderr, "matched %s/%s (confidence %.2f)\n", result.Domain, result.Operation, result.Confidence)
			if result.LowConfidence {
				color.Yellow("low confidence match; re-run with /%s if this is wrong", result.Domain)
			}
			printWorkflow(result.Workflow)
			return nil
		},
	}
}

func domainsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "domains",
		Short: "List the domain catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := buildCore()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DOMAIN\tOPERATION\tPARAMETERS")
			for _, d := range core.DomainCatalog() {
				for _, op := range d.Operations {
					var params []string
					for _, p := range op.Params {
						name := p.Name
						if p.Required {
							name += "*"
						}
						params = append(params, name)
					}
					fmt.Fprintf(w, "%s\t%s\t%s\n", d.Name, op.Name, strings.Join(params, ", "))
				}
			}
			return w.Flush()
		},
	}
}

func execCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec [domain] [operation] [key=value...]",
		Short: "Execute an operation directly, bypassing classification",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := buildCore()
			if err != nil {
				return err
			}

			params := make(map[string]string)
			for _, kv := range args[2:] {
				name, value, found := strings.Cut(kv, "=")
				if !found {
					return fmt.Errorf("expected key=value, got %q", kv)
				}
				params[name] = value
			}

			step, err := core.ExecuteExplicit(cmd.Context(), args[0], args[1], params)
			if err != nil {
				return err
			}

			printStepStatus(string(step.Status))
			if step.Err != nil {
				return step.Err
			}
			if step.Result != nil {
				fmt.Println(step.Result)
			}
			return nil
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check configuration, catalog, and handler registration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			cat, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			fmt.Printf("catalog: %d domains ok\n", len(cat.Domains))

			registry := demoRegistry()
			if err := registry.Validate(cat); err != nil {
				return err
			}
			fmt.Println("handlers: all operations registered")

			for _, name := range []string{"anthropic", "openai", "google", "deepseek"} {
				status := "not configured"
				if cfg.HasAdapter(name) {
					status = "ok"
				}
				fmt.Printf("adapter %s: %s\n", name, status)
			}
			return nil
		},
	}
}

// buildCore assembles the dispatch core from configuration: catalog,
// detector, router, registry and workflow engine.
func buildCore() (*turn.Core, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	var primary intent.Strategy
	if !patternOnly {
		if a, model, ok := classifierAdapter(cfg); ok {
			primary = intent.NewLLMStrategy(a, model)
		}
	}

	detector := intent.NewDetector(primary, intent.NewPatternStrategy(),
		intent.WithThresholds(intent.Thresholds{High: cfg.Classifier.HighThreshold, Low: cfg.Classifier.LowThreshold}),
		intent.WithTimeout(time.Duration(cfg.Classifier.TimeoutMs)*time.Millisecond),
		intent.WithBackoff(time.Duration(cfg.Classifier.BaseBackoffMs)*time.Millisecond),
		intent.WithDebug(debugFlag),
	)

	rt, err := router.New(cat, detector, agent.Extractors(), router.WithDebug(debugFlag))
	if err != nil {
		return nil, err
	}

	registry := demoRegistry()
	if err := registry.Validate(cat); err != nil {
		return nil, fmt.Errorf("handler registration: %w", err)
	}

	engine := workflow.NewEngine(invoke.NewInvoker(registry), debugFlag)
	return turn.New(rt, engine, registry), nil
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogPath == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(cfg.CatalogPath)
}

// classifierAdapter picks the configured classifier adapter, or the
// first one with an API key.
func classifierAdapter(cfg *config.Config) (adapter.Adapter, string, bool) {
	adapters := createAdapters(cfg)
	if len(adapters) == 0 {
		return nil, "", false
	}

	if name := cfg.Classifier.Adapter; name != "" {
		a, ok := adapters[name]
		if !ok {
			return nil, "", false
		}
		model := cfg.Classifier.Model
		if model == "" && len(a.Models()) > 0 {
			model = a.Models()[0]
		}
		return a, model, model != ""
	}

	for _, name := range []string{"anthropic", "openai", "google", "deepseek"} {
		if a, ok := adapters[name]; ok && len(a.Models()) > 0 {
			return a, a.Models()[0], true
		}
	}
	return nil, "", false
}

// createAdapters builds an adapter per configured API key.
func createAdapters(cfg *config.Config) map[string]adapter.Adapter {
	adapters := make(map[string]adapter.Adapter)

	if cfg.AnthropicAPIKey != "" {
		if a, err := adapter.NewAnthropicAdapter(cfg.AnthropicAPIKey); err == nil {
			adapters[a.Name()] = a
		}
	}
	if cfg.OpenAIAPIKey != "" {
		if a, err := adapter.NewOpenAIAdapter(cfg.OpenAIAPIKey); err == nil {
			adapters[a.Name()] = a
		}
	}
	if cfg.GoogleAPIKey != "" {
		if a, err := adapter.NewGoogleAdapter(cfg.GoogleAPIKey); err == nil {
			adapters[a.Name()] = a
		}
	}
	if cfg.DeepSeekAPIKey != "" {
		if a, err := adapter.NewDeepSeekAdapter(cfg.DeepSeekAPIKey); err == nil {
			adapters[a.Name()] = a
		}
	}

	return adapters
}

func printWorkflow(w *workflow.Workflow) {
	if w == nil {
		return
	}
	fmt.Printf("workflow %s: %s\n", w.ID, w.Status)
	for _, row := range w.StatusTable() {
		printStepRow(row)
	}
	for _, step := range w.Succeeded() {
		if step.Result != nil {
			fmt.Println(step.Result)
		}
	}
}

func printStepRow(row string) {
	switch {
	case strings.Contains(row, string(workflow.StepSucceeded)):
		color.Green("  %s", row)
	case strings.Contains(row, string(workflow.StepFailed)):
		color.Red("  %s", row)
	case strings.Contains(row, string(workflow.StepRolledBack)):
		color.Yellow("  %s", row)
	default:
		fmt.Printf("  %s\n", row)
	}
}

func printStepStatus(status string) {
	switch workflow.StepStatus(status) {
	case workflow.StepSucceeded:
		color.Green("%s", status)
	case workflow.StepFailed:
		color.Red("%s", status)
	default:
		fmt.Println(status)
	}
}
