package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"extmedia/internal/app"
	"extmedia/internal/auth"
	"extmedia/internal/config"
	"extmedia/internal/imagesizes"
	"extmedia/internal/logger"
	"extmedia/internal/media"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "extmediactl",
		Short: "Operate the external media mirror",
		Long: `extmediactl runs media snapshot imports against the configured database,
mints admin tokens for the REST API and lists registered image sizes.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage: true,
	}

	root.AddCommand(newTokenCmd(), newImportCmd(), newSizesCmd())
	return root
}

func newTokenCmd() *cobra.Command {
	var (
		subject      string
		role         string
		capabilities []string
		ttl          time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			token, expiresAt, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, ttl).Issue(subject, role, capabilities)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "admin", "Token subject")
	cmd.Flags().StringVar(&role, "role", auth.RoleAdministrator, "Role claim")
	cmd.Flags().StringSliceVar(&capabilities, "cap", nil, "Capability claims, comma separated")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	return cmd
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <snapshot.json>",
		Short: "Reconcile the mirror against a JSON snapshot file",
		Long: `Reads a JSON array of external media items ("-" reads stdin) and runs the same
reconciliation as POST /external-media/v1/import.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			items, err := media.DecodeSnapshot(data)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a, err := app.New(cfg, logger.New(cfg.LogLevel))
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.Media.Import(context.Background(), "cli", items)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	return cmd
}

func newSizesCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "sizes",
		Short: "List registered image sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			sizes := imagesizes.New(cfg.BuiltinSizes)
			if cfg.ImageSizesFile != "" {
				if err := sizes.LoadFile(cfg.ImageSizesFile); err != nil {
					return err
				}
			}
			return printSizes(cmd.OutOrStdout(), sizes, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json, yaml)")
	return cmd
}

func printSizes(w io.Writer, sizes *imagesizes.Registry, output string) error {
	all := sizes.All()
	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(all)
	case "yaml":
		return yaml.NewEncoder(w).Encode(map[string]interface{}{"sizes": all})
	case "table":
		fmt.Fprintf(w, "%-24s %6s %6s %s\n", "NAME", "WIDTH", "HEIGHT", "CROP")
		for _, name := range sizes.Names() {
			s := all[name]
			fmt.Fprintf(w, "%-24s %6d %6d %t\n", name, s.Width, s.Height, s.Crop)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
