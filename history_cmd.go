package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"xsmodels/db"
)

func (a *app) historyCmd() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recorded model evaluations (see XSMODELS_RECORD_CALLS)",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Usage: "number of calls to show", Value: 20},
			&cli.BoolFlag{Name: "prune", Usage: "delete calls older than XSMODELS_HISTORY_DAYS first"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			database, err := db.Open(a.cfg.StateDB)
			if err != nil {
				return fmt.Errorf("open call history: %w", err)
			}
			defer database.Close()
			store := db.NewStore(database)

			if cmd.Bool("prune") {
				res, err := store.PruneHistory(ctx, a.cfg.HistoryDays)
				if err != nil {
					return err
				}
				if !a.jsonOut {
					fmt.Fprintf(a.out, "pruned %d call(s)\n", res.Deleted)
				}
			}
			total, err := store.CountCalls(ctx)
			if err != nil {
				return err
			}
			calls, err := store.RecentCalls(ctx, cmd.Int("limit"))
			if err != nil {
				return err
			}
			return a.emit(calls, func(w io.Writer) {
				headerColor.Fprintf(w, "%d recorded call(s)\n", total)
				for _, c := range calls {
					status := okColor
					if c.Status != "success" {
						status = failColor
					}
					fmt.Fprintf(w, "%s %-10s %5d bins %8s ", c.CreatedAt.Format("2006-01-02 15:04:05"), c.Model, c.Bins, c.Duration)
					status.Fprintln(w, c.Status)
				}
			})
		},
	}
}
