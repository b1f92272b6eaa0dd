// Command shovels exports Shovels permitting data as NDJSON on stdout.
//
// The API key is read from SHOVELS_API_KEY (a .env file is honored via
// --env-file); logs go to stderr so the output stream stays parseable.
package main

import (
	"bufio"
	"fmt"
	"net/url"
	"os"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/shovels-data/shovels-go/pkg/client"
	"github.com/shovels-data/shovels-go/pkg/logging"
	"github.com/shovels-data/shovels-go/pkg/pagination"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	envFile  string
	baseURL  string
	logLevel string
	pretty   bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "shovels",
		Short:         "Export Shovels permitting data as NDJSON",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.envFile != "" {
				if err := godotenv.Load(opts.envFile); err != nil {
					return fmt.Errorf("load env file %s: %w", opts.envFile, err)
				}
			} else {
				// A missing default .env is fine.
				_ = godotenv.Load()
			}

			logging.Setup(logging.Config{
				Level:  logging.LogLevel(opts.logLevel),
				Pretty: opts.pretty,
				Output: os.Stderr,
			})
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "path to a .env file with SHOVELS_API_KEY")
	cmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "Shovels API base URL override")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&opts.pretty, "pretty", false, "human-readable log output")

	cmd.AddCommand(newPermitsCommand(opts))
	cmd.AddCommand(newContractorsCommand(opts))
	cmd.AddCommand(newTagsCommand(opts))

	return cmd
}

// newClient builds a client from the environment and root flags.
func newClient(opts *rootOptions) (*client.Client, error) {
	apiKey := os.Getenv("SHOVELS_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("SHOVELS_API_KEY is not set")
	}

	cfg := client.DefaultConfig(apiKey)
	if opts.baseURL != "" {
		cfg.BaseURL = opts.baseURL
	} else if url := os.Getenv("SHOVELS_API_URL"); url != "" {
		cfg.BaseURL = url
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg.Redis = redis.NewClient(&redis.Options{Addr: redisURL})
	}

	return client.New(cfg)
}

type searchOptions struct {
	geoIDs        []string
	from          string
	to            string
	size          int
	maxIterations int
}

func (o *searchOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&o.geoIDs, "geo-ids", nil, "geo IDs to search (default: all US states)")
	cmd.Flags().StringVar(&o.from, "from", "", "start of the permit date window (YYYY-MM-DD)")
	cmd.Flags().StringVar(&o.to, "to", "", "end of the permit date window (YYYY-MM-DD)")
	cmd.Flags().IntVar(&o.size, "size", 100, "page size (1-100)")
	cmd.Flags().IntVar(&o.maxIterations, "max-iterations", 0, "cap on page fetches per geo ID (0 = unlimited)")
}

func (o *searchOptions) params() url.Values {
	params := url.Values{}
	if o.from != "" {
		params.Set("permit_from", o.from)
	}
	if o.to != "" {
		params.Set("permit_to", o.to)
	}
	return params
}

func (o *searchOptions) pagination() pagination.Options {
	return pagination.Options{
		Size:          o.size,
		MaxIterations: o.maxIterations,
	}
}

func newPermitsCommand(root *rootOptions) *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "permits",
		Short: "Search permits and print them as NDJSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(root)
			if err != nil {
				return err
			}
			defer c.Close()

			records, err := c.SearchPermits(cmd.Context(), opts.geoIDs, opts.params(), opts.pagination())
			if err != nil {
				return err
			}
			return writeRecords(records)
		},
	}

	opts.register(cmd)
	return cmd
}

func newContractorsCommand(root *rootOptions) *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "contractors",
		Short: "Search contractors and print them as NDJSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(root)
			if err != nil {
				return err
			}
			defer c.Close()

			records, err := c.SearchContractors(cmd.Context(), opts.geoIDs, opts.params(), opts.pagination())
			if err != nil {
				return err
			}
			return writeRecords(records)
		},
	}

	opts.register(cmd)
	return cmd
}

func newTagsCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List all permit tags as NDJSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(root)
			if err != nil {
				return err
			}
			defer c.Close()

			records, err := c.GetTags(cmd.Context())
			if err != nil {
				return err
			}
			return writeRecords(records)
		},
	}
}

// writeRecords prints one JSON record per line. Records are already raw
// JSON, so no re-encoding happens.
func writeRecords(records []pagination.Record) error {
	w := bufio.NewWriter(os.Stdout)
	for _, record := range records {
		if _, err := w.Write(record); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.Flush()
}
