package commands

import (
	"encoding/json"
	"time"

	"github.com/Keksclan/goMensaSquirrel/meal"
	"github.com/Keksclan/goMensaSquirrel/upstream"
	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

type fetchOptions struct {
	mensa string
	lang  string
	day   string
}

func (c *CLI) newFetchCmd() *cobra.Command {
	var opts fetchOptions
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch one plan from the upstream API and print it as JSON",
		Long: `Fetch downloads the plan of --mensa once, without any cache or
durable store, and prints it. With --day only that day is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runFetch(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.mensa, "mensa", "", "facility id")
	cmd.Flags().StringVar(&opts.lang, "lang", "", "language, e.g. de or en")
	cmd.Flags().StringVar(&opts.day, "day", "", "today, tomorrow, a weekday or YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("mensa")
	return cmd
}

func (c *CLI) runFetch(cmd *cobra.Command, opts fetchOptions) error {
	cfg, log, err := c.loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	var spec meal.DateSpec
	if opts.day != "" {
		if spec, err = meal.ParseDateSpec(opts.day); err != nil {
			return err
		}
	}

	client := upstream.NewClient(
		upstream.WithURL(cfg.Upstream.URL),
		upstream.WithTimeout(cfg.Upstream.Timeout),
		upstream.WithLogger(log),
	)
	plan, err := client.Fetch(cmd.Context(), opts.mensa, opts.lang)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if opts.day == "" {
		return enc.Encode(plan)
	}
	date := spec.Resolve(time.Now().In(loc))
	day, ok := plan.Day(date)
	if !ok {
		return zerr.With(zerr.With(zerr.New("day not in plan"), "mensa", opts.mensa), "date", date.String())
	}
	return enc.Encode(day)
}
