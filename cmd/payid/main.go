package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/intelliot/payid-core/pkg/client"
	"github.com/intelliot/payid-core/pkg/payid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// version is overridden via -ldflags "-X main.version=...".
var version = "dev"

const defaultTimeout = 10 * time.Second

var (
	cfgFile string
	debug   bool
	noColor bool

	logger = zap.NewNop()
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "payid",
	Short: "PayID command-line client",
	Long: `payid resolves PayIDs (alice$example.com) to payment information.

Lookups go straight to the PayID host over HTTPS. Use --resolver to send
them through a payid-resolver service instead.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".payid"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
		viper.SetEnvPrefix("PAYID")
		viper.AutomaticEnv()
		_ = viper.ReadInConfig()

		if debug {
			l, err := zap.NewDevelopment()
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			logger = l
			logger.Debug("config loaded", zap.String("file", viper.ConfigFileUsed()))
		}
		if noColor {
			color.NoColor = true
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.payid/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log lookups to stderr")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured output")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(networksCmd)
	rootCmd.AddCommand(versionCmd)
}

// ── resolve ──────────────────────────────────────────────────────────────────

var (
	resolveNetwork        string
	resolveInsecure       bool
	resolveFormat         string
	resolveQuery          string
	resolveTimeout        time.Duration
	resolveValidateSchema bool
	resolverURL           string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <payid> [payid] ...",
	Short: "Resolve one or more PayIDs to payment information",
	Long: `Resolve fetches the payment information for each PayID.

  payid resolve alice$example.com --network xrpl-mainnet

Multiple PayIDs are resolved concurrently and displayed as a table:

  payid resolve alice$example.com bob$example.net

--query extracts a single field with a gjson path and prints only that:

  payid resolve alice$example.com --query addressDetails.address`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runResolve,
}

func init() {
	resolveCmd.Flags().StringVarP(&resolveNetwork, "network", "n", "", "payment network, e.g. xrpl-mainnet, btc-testnet, ach (default payid)")
	resolveCmd.Flags().BoolVar(&resolveInsecure, "insecure", false, "use plain http (local testing only)")
	resolveCmd.Flags().StringVarP(&resolveFormat, "format", "o", formatText, "output format: text, json or yaml")
	resolveCmd.Flags().StringVarP(&resolveQuery, "query", "q", "", "gjson path to extract from each result")
	resolveCmd.Flags().DurationVar(&resolveTimeout, "timeout", 0, "per-lookup timeout (default 10s)")
	resolveCmd.Flags().BoolVar(&resolveValidateSchema, "validate-schema", false, "reject responses that do not match the PaymentInformation schema")
	resolveCmd.Flags().StringVar(&resolverURL, "resolver", "", "payid-resolver base URL (e.g. http://localhost:9091)")
}

func runResolve(cmd *cobra.Command, args []string) error {
	// Validate all PayIDs up-front.
	for _, id := range args {
		if !payid.IsValid(id) {
			return fmt.Errorf("%w: %q", client.ErrInvalidPayID, id)
		}
	}
	if !isKnownFormat(resolveFormat) {
		return fmt.Errorf("unknown format %q (want text, json or yaml)", resolveFormat)
	}

	network := resolveNetwork
	if network == "" {
		network = viper.GetString("network")
	}
	timeout := resolveTimeout
	if timeout == 0 {
		timeout = viper.GetDuration("timeout")
	}
	if timeout == 0 {
		timeout = defaultTimeout
	}
	service := resolverURL
	if service == "" {
		service = viper.GetString("resolver_url")
	}

	opts := []client.Option{client.WithTimeout(timeout)}
	if resolveValidateSchema {
		opts = append(opts, client.WithSchemaValidation())
	}
	c, err := client.New(opts...)
	if err != nil {
		return err
	}

	rows := resolveAll(cmd.Context(), c, args, service, client.ResolveOptions{
		Network:         payid.PaymentNetwork(network),
		UseInsecureHTTP: resolveInsecure,
	})
	if err := printRows(os.Stdout, rows, resolveFormat, resolveQuery, newColorScheme()); err != nil {
		return err
	}

	failed := 0
	for _, r := range rows {
		if r.err != nil {
			failed++
		}
	}
	if failed > 0 && len(rows) > 1 {
		return fmt.Errorf("%d of %d lookups failed", failed, len(rows))
	}
	return nil
}

// resolveAll resolves every PayID concurrently and returns rows in input order.
func resolveAll(ctx context.Context, c *client.Client, ids []string, service string, opts client.ResolveOptions) []resolveRow {
	if ctx == nil {
		ctx = context.Background()
	}

	type indexedRow struct {
		idx int
		row resolveRow
	}
	rowCh := make(chan indexedRow, len(ids))

	for i, id := range ids {
		i, id := i, id
		go func() {
			start := time.Now()
			var info *payid.PaymentInformation
			var err error
			if service != "" {
				info, err = c.ResolveViaService(ctx, service, id, opts)
			} else {
				info, err = c.Resolve(ctx, id, opts)
			}
			logger.Debug("lookup",
				zap.String("payid", id),
				zap.String("network", string(opts.Network)),
				zap.String("via", service),
				zap.Duration("latency", time.Since(start)),
				zap.Error(err),
			)
			rowCh <- indexedRow{idx: i, row: resolveRow{payID: id, result: info, err: err}}
		}()
	}

	rows := make([]resolveRow, len(ids))
	for range ids {
		ir := <-rowCh
		rows[ir.idx] = ir.row
	}
	return rows
}

// ── validate ─────────────────────────────────────────────────────────────────

var validateCmd = &cobra.Command{
	Use:          "validate <payid> [payid] ...",
	Short:        "Check PayID syntax without any network access",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if invalid := printValidation(os.Stdout, args, newColorScheme()); invalid > 0 {
			return fmt.Errorf("%d invalid PayID(s)", invalid)
		}
		return nil
	},
}

// ── parse ────────────────────────────────────────────────────────────────────

var parseInsecure bool

var parseCmd = &cobra.Command{
	Use:   "parse <payid>",
	Short:        "Show the host, path and lookup URL of a PayID",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		comps, ok := payid.Parse(args[0])
		if !ok {
			return fmt.Errorf("%w: %q", client.ErrInvalidPayID, args[0])
		}
		printComponents(os.Stdout, comps, parseInsecure, newColorScheme())
		return nil
	},
}

func init() {
	parseCmd.Flags().BoolVar(&parseInsecure, "insecure", false, "show the plain-http lookup URL")
}

// ── networks ─────────────────────────────────────────────────────────────────

var networksCmd = &cobra.Command{
	Use:   "networks",
	Short: "List well-known payment networks and their Accept media types",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NETWORK\tACCEPT")
		for _, n := range payid.KnownNetworks {
			fmt.Fprintf(w, "%s\t%s\n", n, n.MediaType())
		}
		return w.Flush()
	},
}

// ── version ──────────────────────────────────────────────────────────────────

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the payid CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("payid %s (PayID protocol %s)\n", version, client.ProtocolVersion)
	},
}
