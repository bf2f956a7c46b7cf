package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	site "github.com/monynha/site"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "monynha",
	Short: "Monynha Softwares website",
	Long: `monynha serves the Monynha Softwares website: a bilingual blog, project
portfolio and documentation site with an admin panel.

Configuration is read from monynha.yaml, then MONYNHA_* environment variables
(also loaded from .env), then flags. Nested keys use underscores in the
environment, e.g. MONYNHA_ADMIN_SESSION_SECRET for admin.session_secret.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./monynha.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("db-driver", "", "database driver: sqlite or postgres")
	rootCmd.PersistentFlags().String("db-dsn", "", "SQLite path or PostgreSQL URL")
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("database.driver", rootCmd.PersistentFlags().Lookup("db-driver"))
	_ = viper.BindPFlag("database.dsn", rootCmd.PersistentFlags().Lookup("db-dsn"))

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, hashPasswordCmd, versionCmd)
}

// initConfig wires viper: defaults, optional config file, .env and the
// MONYNHA_ environment.
func initConfig() {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: .env:", err)
	}

	site.SetDefaults(viper.GetViper())
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("monynha")
	}

	viper.SetEnvPrefix("MONYNHA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "error reading config:", err)
			os.Exit(1)
		}
	}
}

// setup loads the configuration and builds the logger shared by every command.
func setup() (*site.Config, *zap.Logger, error) {
	cfg, err := site.Load(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}
	log, err := site.NewLogger(cfg.Debug)
	if err != nil {
		return nil, nil, err
	}
	if f := viper.ConfigFileUsed(); f != "" {
		log.Debug("using config file", zap.String("path", f))
	}
	return cfg, log, nil
}
