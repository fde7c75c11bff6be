package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newSegmentsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "segments",
		Short: "List stored segments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			infos, err := s.Segments()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SEGMENT\tDOCS\tFIELDS\tTERMS\tPOSTINGS BYTES\tCREATED")
			for _, info := range infos {
				terms, bytes := 0, 0
				for _, fs := range info.Fields {
					terms += fs.TermCount
					bytes += fs.PostingsBytes
				}
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\n",
					info.SegmentID, info.MaxDoc, len(info.Fields), terms, bytes,
					info.CreatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <segment>",
		Short: "Delete a stored segment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			return s.DeleteSegment(args[0])
		},
	}
}
