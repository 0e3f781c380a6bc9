package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"govengine/internal/cli/render"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type contextKey string

const appKey contextKey = "govctl"

// app carries the per-invocation client and renderer.
type app struct {
	client   *Client
	renderer *render.Renderer
	memberID string
}

// NewRootCmd creates the govctl root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "govctl",
		Short:         "Operate the governance proposal engine",
		Long:          "govctl registers members, creates proposals and casts votes, then drives proposals through finalization and execution over the governance HTTP API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load .env: %w", err)
			}
			v := setupViper(cmd)

			renderer, err := render.New(cmd.OutOrStdout(), v.GetString("output"))
			if err != nil {
				return err
			}
			instance := &app{
				client:   NewClient(v.GetString("server"), v.GetString("member"), v.GetDuration("timeout")),
				renderer: renderer,
				memberID: strings.TrimSpace(v.GetString("member")),
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, instance))
			return nil
		},
	}

	rootCmd.PersistentFlags().String("server", "http://localhost:8080", "Governance API base URL")
	rootCmd.PersistentFlags().StringP("output", "o", render.FormatTable, "Output format (table or json)")
	rootCmd.PersistentFlags().String("member", "", "Acting member id, sent as X-Member-Id")
	rootCmd.PersistentFlags().Duration("timeout", 0, "HTTP request timeout")

	rootCmd.AddGroup(&cobra.Group{ID: "governance", Title: "Governance Commands"})

	membersCmd := newMembersCmd()
	membersCmd.GroupID = "governance"
	rootCmd.AddCommand(membersCmd)

	proposalsCmd := newProposalsCmd()
	proposalsCmd.GroupID = "governance"
	rootCmd.AddCommand(proposalsCmd)

	return rootCmd
}

// setupViper resolves flags, then GOVCTL_* environment variables, then
// defaults.
func setupViper(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("GOVCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server", "http://localhost:8080")
	v.SetDefault("output", render.FormatTable)
	v.SetDefault("timeout", "15s")

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
	})
	return v
}

func getApp(cmd *cobra.Command) (*app, error) {
	instance, ok := cmd.Context().Value(appKey).(*app)
	if !ok || instance == nil {
		return nil, fmt.Errorf("govctl not initialized")
	}
	return instance, nil
}
