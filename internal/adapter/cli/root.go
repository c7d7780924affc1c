package cli

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/wekeepgrowing/salon-billing/internal/analytics"
	"github.com/wekeepgrowing/salon-billing/internal/usecase"
	"github.com/wekeepgrowing/salon-billing/pkg/messaging"
)

type Exporter interface {
	Export(ctx context.Context, salonID uuid.UUID, req usecase.ExportRequest) (*usecase.ExportFile, error)
}

type Reporter interface {
	Report(ctx context.Context, period analytics.Period, now time.Time) (*analytics.Report, error)
}

type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan messaging.Message, error)
}

// Env is what the commands run against. Nil members mean the backing
// resource is unavailable.
type Env struct {
	Migrate      func(ctx context.Context) error
	Exporter     Exporter
	Reporter     Reporter
	Subscriber   Subscriber
	AuditChannel string
	Location     *time.Location
	Now          func() time.Time
	Close        func(ctx context.Context) error
}

// Opener builds the Env once flags are parsed.
type Opener func(ctx context.Context, configPath string) (*Env, error)

type envKey struct{}

// NewRootCommand returns billingctl with every subcommand attached.
func NewRootCommand(open Opener) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "billingctl",
		Short:         "Salon billing administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			env, err := open(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			if env.Location == nil {
				env.Location = time.UTC
			}
			if env.Now == nil {
				env.Now = time.Now
			}
			cmd.SetContext(context.WithValue(cmd.Context(), envKey{}, env))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			env := envFrom(cmd)
			if env == nil || env.Close == nil {
				return nil
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return env.Close(ctx)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (default $CONFIG_PATH or ./configs/billing.yaml)")

	root.AddCommand(
		newMigrateCommand(),
		newExportCommand(),
		newMetricsCommand(),
		newAuditTailCommand(),
	)
	return root
}

func envFrom(cmd *cobra.Command) *Env {
	env, _ := cmd.Context().Value(envKey{}).(*Env)
	return env
}
