package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	site "github.com/monynha/site"
	"github.com/monynha/site/seed"
	"github.com/monynha/site/views"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app := site.New(*cfg, views.Funcs(), log, site.WithStaticDir(viper.GetString("static_dir")))
		defer app.Close()
		if err := app.Start(ctx); err != nil {
			log.Error("server stopped", zap.Error(err))
			return err
		}
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status|redo|version]",
	Short:     "Run database migrations",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"up", "down", "status", "redo", "version"},
	RunE: func(cmd *cobra.Command, args []string) error {
		command := "up"
		if len(args) == 1 {
			command = args[0]
		}
		return withStore(cmd.Context(), func(ctx context.Context, store *site.Store, log *zap.Logger) error {
			// Opening the store already applied pending migrations.
			if command == "up" {
				log.Info("migrations applied")
				return nil
			}
			return store.Migrate(ctx, command)
		})
	},
}

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample content into the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := seed.Default()
		if seedFile != "" {
			b, err := os.ReadFile(seedFile)
			if err != nil {
				return err
			}
			if f, err = seed.Parse(b); err != nil {
				return err
			}
		}
		return withStore(cmd.Context(), func(ctx context.Context, store *site.Store, log *zap.Logger) error {
			res, err := seed.Run(ctx, store, f, log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d authors, %d categories, %d projects, %d docs, %d posts\n",
				res.Authors, res.Categories, res.Projects, res.Docs, res.Posts)
			return nil
		})
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print a bcrypt hash for admin.password_hash",
	Long:  "Print a bcrypt hash for admin.password_hash. The password is read from stdin when not given as an argument.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var pass string
		if len(args) == 1 {
			pass = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			pass = strings.TrimRight(line, "\r\n")
		}
		if pass == "" {
			return errors.New("password must not be empty")
		}
		hash, err := site.HashPassword(pass)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "monynha %s\n", version)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :3000)")
	serveCmd.Flags().String("static-dir", "public", "directory served under /public")
	_ = viper.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("static_dir", serveCmd.Flags().Lookup("static-dir"))

	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "seed file (default is the built-in sample content)")
}

// withStore opens the configured store, runs fn and closes it.
func withStore(ctx context.Context, fn func(context.Context, *site.Store, *zap.Logger) error) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	store, err := site.OpenStore(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(ctx, store, log)
}
