package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jacanchaplais/phenograph"
	"github.com/jacanchaplais/phenograph/codec"
)

func newDotCmd(a *app) *cobra.Command {
	var (
		eventID string
		rankDir string
	)

	cmd := &cobra.Command{
		Use:   "dot <events-file>",
		Short: "Render an event history as Graphviz DOT",
		Long: `dot writes the history of one event in Graphviz DOT format. Particles are
edges labelled by name; the vertices of hard-process partons are outlined.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords(args[0])
			if err != nil {
				return err
			}
			rec, err := findRecord(records, eventID)
			if err != nil {
				return err
			}

			hard := rec.Event.HardMask().Partons()
			basis := make([]phenograph.Vertex, 0, hard.Count())
			for _, i := range hard.Indices() {
				basis = append(basis, rec.Event.Particle(i).Edge.Out)
			}
			a.logger.Debug("rendering event",
				zap.String("event", rec.ID),
				zap.Int("particles", rec.Event.Len()),
				zap.Int("hard", len(basis)),
			)

			return phenograph.ExportDOT(cmd.OutOrStdout(), rec.Event,
				phenograph.DOTWithGraphName(rec.ID),
				phenograph.DOTWithRankDir(rankDir),
				phenograph.DOTWithBasis(basis...),
			)
		},
	}
	cmd.Flags().StringVarP(&eventID, "event", "e", "", "Event ID to render (default: first event)")
	cmd.Flags().StringVar(&rankDir, "rankdir", "LR", "Graphviz rank direction")
	return cmd
}

func findRecord(records []codec.Record, id string) (codec.Record, error) {
	if id == "" {
		return records[0], nil
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return codec.Record{}, fmt.Errorf("event %q not found", id)
}
