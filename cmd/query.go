package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/sierra/sierra"
)

var (
	queryParams  []string
	queryMARC    bool
	queryPost    bool
	filterExpr   string
	preset       string
	outputFormat string
)

// queryCmd represents the query command
var queryCmd = &cobra.Command{
	Use:   "query <resource>",
	Short: "Fetch a Sierra resource and print the result",
	Long: `Send a request for a resource under the configured endpoint and print the
decoded JSON response.

Examples:
  sierra query items -p bibIds=3996024 -p fields=id,status,location
  sierra query bibs/3996024 --marc
  sierra query items -p bibIds=3996024 --filter 'status.code == "-"'`,
	Args:    cobra.ExactArgs(1),
	PreRunE: initializeApp,
	RunE:    runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringArrayVarP(&queryParams, "param", "p", nil, "query parameter as key=value (repeatable)")
	queryCmd.Flags().BoolVar(&queryMARC, "marc", false, "request MARC-in-JSON records")
	queryCmd.Flags().BoolVar(&queryPost, "post", false, "send the parameters as a POST form body")
	queryCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression applied to the response entries")
	queryCmd.Flags().StringVar(&preset, "preset", "", "use a filter preset from config")
	queryCmd.Flags().StringVarP(&outputFormat, "output", "o", "", "output format (json or yaml)")
}

func runQuery(cmd *cobra.Command, args []string) error {
	resource := args[0]

	params, err := parseParams(queryParams)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	logger.Info().
		Str("resource", resource).
		Int("params", len(params)).
		Bool("marc", queryMARC).
		Msg("Querying Sierra")

	var result any
	if queryPost {
		result, err = sierraClient.Post(ctx, resource, params, queryMARC)
	} else {
		result, err = sierraClient.Query(ctx, resource, params, queryMARC)
	}
	if err != nil {
		return err
	}

	switch {
	case filterExpr != "" && preset != "":
		return fmt.Errorf("--filter and --preset cannot be combined")
	case filterExpr != "":
		result, err = filters.ApplyExpression(ctx, filterExpr, result)
	case preset != "":
		result, err = filters.Apply(ctx, strings.ToLower(preset), result)
	}
	if err != nil {
		return fmt.Errorf("failed to filter response: %w", err)
	}

	format := cfg.Output.Format
	if outputFormat != "" {
		format = outputFormat
	}
	return render(cmd.OutOrStdout(), result, format, cfg.Output.Indent)
}

// parseParams turns key=value arguments into request parameters
func parseParams(raw []string) (sierra.Params, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	params := make(sierra.Params, len(raw))
	for _, kv := range raw {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q (expected key=value)", kv)
		}
		params[key] = value
	}
	return params, nil
}
