package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"resourcebank/internal/admin"
	"resourcebank/internal/app"
	"resourcebank/internal/config"
	"resourcebank/internal/export"
	"resourcebank/pkg/domain"
)

// NewRootCommand builds the resourcebank command tree.
func NewRootCommand(ctx context.Context, out, errOut io.Writer) *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "resourcebank",
		Short:         "Browse, filter, favorite and export the learning resource catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config (default "+config.DefaultPath+" when present)")

	withApp := func(fn func(*cobra.Command, *app.App, []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			a, err := app.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()
			return fn(cmd, a, args)
		}
	}

	root.AddCommand(
		newServeCommand(withApp),
		newListCommand(withApp),
		newTypesCommand(withApp),
		newCompetenciesCommand(withApp),
		newFavoriteCommand(withApp),
		newAddCommand(withApp),
		newExportCommand(withApp),
		newExportsCommand(withApp),
		newHashPasswordCommand(),
		newEnvCommand(),
	)
	return root
}

type appRunner func(func(*cobra.Command, *app.App, []string) error) func(*cobra.Command, []string) error

func addCriteriaFlags(fs *pflag.FlagSet, c *domain.Criteria) {
	fs.StringVar(&c.Search, "search", "", "case-insensitive text search across every field")
	fs.StringVar(&c.Competency, "competency", "", "exact competency filter")
	fs.StringVar(&c.Type, "type", "", "exact resource type filter")
	fs.BoolVar(&c.FavoritesOnly, "favorites", false, "only favorited resources")
}

func newServeCommand(run appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app.App, _ []string) error {
			return a.Serve(cmd.Context())
		}),
	}
}

func newListCommand(run appRunner) *cobra.Command {
	var criteria domain.Criteria
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the visible resources",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app.App, _ []string) error {
			rows := a.Service.Browse(criteria)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			for _, r := range rows {
				marker := "☆"
				if r.Favorite {
					marker = "★"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\t%s\t%s\t%s\n", marker, r.Title, r.Type, r.Source, r.Link)
			}
			return nil
		}),
	}
	addCriteriaFlags(cmd.Flags(), &criteria)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newTypesCommand(run appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the distinct resource types in the catalog",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app.App, _ []string) error {
			for _, t := range a.Service.Types() {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		}),
	}
}

func newCompetenciesCommand(run appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "competencies",
		Short: "List the competency vocabulary",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app.App, _ []string) error {
			for _, c := range a.Service.Competencies() {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		}),
	}
}

func newFavoriteCommand(run appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "favorite <title>",
		Short: "Toggle a resource in the favorites",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app.App, args []string) error {
			fav := a.Service.ToggleFavorite(cmd.Context(), args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "favorite: %t\n", fav)
			return nil
		}),
	}
}

func newAddCommand(run appRunner) *cobra.Command {
	var c domain.Candidate
	var password string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a resource (admin)",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app.App, _ []string) error {
			if err := a.Service.CheckAdmin(password); err != nil {
				return err
			}
			if err := a.Service.SubmitResource(cmd.Context(), c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %q\n", c.Title)
			return nil
		}),
	}
	fs := cmd.Flags()
	fs.StringVar(&password, "password", "", "admin password")
	fs.StringVar(&c.Title, "title", "", "resource title (required)")
	fs.StringVar(&c.Source, "source", "", "source")
	fs.StringVar(&c.Competencies, "competencies", "", "comma separated competencies")
	fs.StringVar(&c.Theme, "theme", "", "theme")
	fs.StringVar(&c.Type, "type", "", "resource type")
	fs.StringVar(&c.Format, "format", "", "format and duration")
	fs.StringVar(&c.Link, "link", "", "link (required)")
	return cmd
}

func newExportCommand(run appRunner) *cobra.Command {
	var criteria domain.Criteria
	var out string
	var archive bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the visible resources as CSV",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app.App, _ []string) error {
			body := a.Service.ExportCSV(criteria)
			if out == "-" {
				if _, err := io.WriteString(cmd.OutOrStdout(), body); err != nil {
					return err
				}
			} else {
				if err := os.WriteFile(out, []byte(body), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
			}
			if archive {
				art, err := a.Service.ArchiveExport(cmd.Context(), criteria)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "archived %s\n", art.Key)
			}
			return nil
		}),
	}
	addCriteriaFlags(cmd.Flags(), &criteria)
	cmd.Flags().StringVar(&out, "out", export.Filename, `output file, or "-" for stdout`)
	cmd.Flags().BoolVar(&archive, "archive", false, "also archive the export to storage (requires export.archive)")
	return cmd
}

func newExportsCommand(run appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "exports [id]",
		Short: "List archived exports, or print one as CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app.App, args []string) error {
			if len(args) == 1 {
				body, err := a.Service.OpenExport(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				_, err = io.WriteString(cmd.OutOrStdout(), body)
				return err
			}
			list, err := a.Service.Exports(cmd.Context())
			if err != nil {
				return err
			}
			for _, art := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%d\t%s\n", art.ID, art.Records, art.Size, art.CreatedAt.Format(time.RFC3339))
			}
			return nil
		}),
	}
}

func newHashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for admin.password_hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return errors.New("password must not be empty")
			}
			hash, err := admin.Hash(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func newEnvCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Describe the environment variables read at startup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := io.WriteString(cmd.OutOrStdout(), config.Usage())
			return err
		},
	}
}
