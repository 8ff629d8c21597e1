package cli

import (
	"fmt"
	"time"

	"github.com/IvanBrykalov/campaigncache/cache"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	var (
		ttl time.Duration
		now int64
	)
	cmd := &cobra.Command{
		Use:   "inspect <shard-file>",
		Short: "Summarise a persisted shard file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			at := time.Now()
			if now > 0 {
				at = time.Unix(now, 0)
			}
			st, err := cache.InspectFile(args[0], ttl, at)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "file:      %s\n", args[0])
			fmt.Fprintf(out, "buckets:   %d (%d colliding)\n", st.Buckets, st.Colliding)
			fmt.Fprintf(out, "entries:   %d\n", st.Entries)
			if ttl > 0 {
				fmt.Fprintf(out, "expired:   %d (ttl %s)\n", st.Expired, ttl)
			}
			if st.Entries > 0 {
				fmt.Fprintf(out, "oldest:    %s\n", st.Oldest.Format(time.RFC3339))
				fmt.Fprintf(out, "newest:    %s\n", st.Newest.Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "count entries at least this old as expired (0 = skip)")
	cmd.Flags().Int64Var(&now, "now", 0, "inspection time as unix seconds (0 = current time)")
	_ = cmd.Flags().MarkHidden("now")
	return cmd
}
