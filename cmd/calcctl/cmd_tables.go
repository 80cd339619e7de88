package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/AngelCh415/creator-calc/internal/auth"
)

func newTablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "tables config|benchmarks",
		Short:     "Print the payload served by GET /calculator?type=...",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"config", "benchmarks"},
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := loadTables(cmd)
			if err != nil {
				return err
			}
			if args[0] == "config" {
				return printJSON(cmd.OutOrStdout(), tables.Config())
			}
			return printJSON(cmd.OutOrStdout(), tables.Benchmarks())
		},
	}
}

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Mint a development JWT",
		Long: `Mint an HS256 token accepted by the server's auth middleware.
The secret defaults to $JWT_SECRET.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			secret, _ := f.GetString("secret")
			role, _ := f.GetString("role")
			ttl, _ := f.GetDuration("ttl")
			if secret == "" {
				return fmt.Errorf("no secret: set --secret or JWT_SECRET")
			}
			tok, err := auth.NewIssuer(secret, ttl).Issue(args[0], role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().String("secret", envOr("JWT_SECRET", ""), "HMAC secret")
	cmd.Flags().String("role", auth.RoleUser, "user or admin")
	cmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
	return cmd
}
