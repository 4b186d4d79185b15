package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errInvalidEvents = errors.New("one or more events are invalid")

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <events-file>",
		Short: "Check that every event history is a directed acyclic graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, rec := range records {
				if err := rec.Event.Validate(); err != nil {
					failed++
					a.logger.Debug("invalid event", zap.String("event", rec.ID), zap.Error(err))
					fmt.Fprintf(out, "%s: %v\n", rec.ID, err)
					continue
				}
				hard := rec.Event.HardMask()
				fmt.Fprintf(out, "%s: ok (%d particles, %d hard partons)\n",
					rec.ID, rec.Event.Len(), hard.Partons().Count())
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d of %d", errInvalidEvents, failed, len(records))
			}
			return nil
		},
	}
}
