package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/wekeepgrowing/salon-billing/internal/domain/entity"
)

func newAuditTailCommand() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "audit-tail",
		Short: "Follow the audit channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envFrom(cmd)
			if env.Subscriber == nil {
				return errors.New("audit-tail requires redis")
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			messages, err := env.Subscriber.Subscribe(ctx, env.AuditChannel)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			seen := 0
			for msg := range messages {
				var rec entity.AuditRecord
				if err := msg.Decode(&rec); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "skipping undecodable message: %v\n", err)
					continue
				}
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\n",
					rec.OccurredAt.UTC().Format(time.RFC3339), rec.Action, rec.Subject, rec.EventID)

				seen++
				if count > 0 && seen >= count {
					return nil
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "stop after n records; 0 follows until interrupted")
	return cmd
}
