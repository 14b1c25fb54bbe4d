package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/samber/do"
	"github.com/serroba/shortener-demo-go/internal/batch"
	"github.com/serroba/shortener-demo-go/internal/container"
	"github.com/serroba/shortener-demo-go/internal/session"
	"github.com/serroba/shortener-demo-go/internal/shortener"
	"github.com/serroba/shortener-demo-go/internal/stats"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newShortenCommand() *cobra.Command {
	var (
		validity   string
		shortcodes []string
		wait       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "shorten URL [URL...]",
		Short: "Shorten up to 5 URLs and print the results",
		Long: "Submits the URLs as one batch, waits for every request to settle and prints a table.\n" +
			"Without --service-url the in-process mock backend is used.",
		Args: cobra.RangeArgs(1, batch.MaxBatchSize),
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, options *container.Options) {
			drafts := buildDrafts(args, validity, shortcodes)

			if options.ServiceURL == "" {
				options.Backend = container.BackendMock
			}

			code := runShorten(cmd.Context(), options, drafts, wait, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if code != 0 {
				os.Exit(code)
			}
		}),
	}

	cmd.Flags().StringVar(&validity, "validity", "", "Validity in minutes for every URL (default 30)")
	cmd.Flags().StringSliceVar(&shortcodes, "shortcode", nil, "Custom shortcodes, matched to URLs by position")
	cmd.Flags().DurationVar(&wait, "wait", time.Minute, "How long to wait for the batch to settle")

	return cmd
}

func buildDrafts(urls []string, validity string, shortcodes []string) []shortener.Draft {
	drafts := make([]shortener.Draft, len(urls))
	for i, u := range urls {
		drafts[i] = shortener.Draft{LongURL: u, Validity: validity}
		if i < len(shortcodes) {
			drafts[i].Shortcode = shortcodes[i]
		}
	}

	return drafts
}

func runShorten(
	ctx context.Context,
	options *container.Options,
	drafts []shortener.Draft,
	wait time.Duration,
	stdout, stderr io.Writer,
) int {
	if ctx == nil {
		ctx = context.Background()
	}

	injector := do.New()
	registerPackages(injector, options)

	logger := do.MustInvoke[*zap.Logger](injector)

	defer func() {
		if err := injector.Shutdown(); err != nil {
			logger.Error("service shutdown error", zap.Error(err))
		}
	}()

	if err := startLocalForwarder(ctx, injector, options); err != nil {
		logger.Error("failed to start log forwarder", zap.Error(err))
	}

	orchestrator := do.MustInvoke[*batch.Orchestrator](injector)

	b, err := orchestrator.Submit(ctx, session.NewWorkspace(), drafts)
	if err != nil {
		var vErr *batch.ValidationError
		if errors.As(err, &vErr) {
			for _, m := range vErr.Messages {
				_, _ = fmt.Fprintln(stderr, m)
			}

			return 2
		}

		_, _ = fmt.Fprintln(stderr, err)

		return 1
	}

	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	if err := b.Wait(waitCtx); err != nil {
		_, _ = fmt.Fprintln(stderr, "gave up waiting for results:", err)

		return 1
	}

	printEntries(stdout, b.Entries(), time.Now())

	if b.Err() != nil {
		_, _ = fmt.Fprintln(stderr, batch.FailureMessage)

		return 1
	}

	if !b.Succeeded() {
		return 1
	}

	return 0
}

func printEntries(w io.Writer, entries []shortener.Entry, now time.Time) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STATUS\tORIGINAL\tSHORT\tEXPIRES")

	for _, e := range entries {
		switch e.Status() {
		case shortener.StatusSuccess:
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Status(), e.Original, e.Short(), stats.FormatExpiry(e.Expiry(), now))
		default:
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t\n", e.Status(), e.Original, e.Failure())
		}
	}

	_ = tw.Flush()
}
