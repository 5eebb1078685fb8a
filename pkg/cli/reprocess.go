package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/cli/config"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/usecase"
	"github.com/secmon-lab/releaseboard/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdReprocess() *cli.Command {
	var ids []string
	var start, end string
	var dryRun bool
	var appCfg config.AppConfig
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "id",
			Usage:       "Error log ID to replay (repeatable)",
			Destination: &ids,
		},
		&cli.StringFlag{
			Name:        "start",
			Usage:       "Replay unresolved entries logged at or after this time (RFC3339 or YYYY-MM-DD)",
			Destination: &start,
		},
		&cli.StringFlag{
			Name:        "end",
			Usage:       "Replay unresolved entries logged at or before this time (RFC3339 or YYYY-MM-DD)",
			Destination: &end,
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Validate payloads without storing events or resolving entries",
			Destination: &dryRun,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "reprocess",
		Usage: "Replay failed usage events from the error log",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			req := usecase.ReprocessRequest{ErrorLogIDs: ids, DryRun: dryRun}

			var err error
			if req.Start, err = parseFlagDate("start", start, false); err != nil {
				return err
			}
			if req.End, err = parseFlagDate("end", end, true); err != nil {
				return err
			}

			tuning, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load tuning configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(context.Background()); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			uc := usecase.New(repo, usecase.WithTuning(tuning))
			result, err := uc.Reprocess.Reprocess(ctx, req)
			if err != nil {
				return goerr.Wrap(err, "failed to reprocess error logs")
			}

			printReprocessResult(c.Root().Writer, result)
			return nil
		},
	}
}

func printReprocessResult(w io.Writer, result *model.ReprocessResult) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	title := "Reprocess result"
	if result.DryRun {
		title += " (dry run)"
	}
	_, _ = bold.Fprintln(w, title)
	_, _ = fmt.Fprintf(w, "  processed: %d\n", result.TotalProcessed)
	_, _ = green.Fprintf(w, "  succeeded: %d\n", result.SuccessCount)
	_, _ = red.Fprintf(w, "  failed:    %d\n", result.FailedCount)

	for _, e := range result.Errors {
		_, _ = red.Fprintf(w, "  - %s: %s\n", e.ErrorLogID, e.Message)
	}
}

func parseFlagDate(name, raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, goerr.New("date must be RFC3339 or YYYY-MM-DD", goerr.V("flag", name), goerr.V("value", raw))
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
