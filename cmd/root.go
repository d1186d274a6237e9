package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile    string
	dbPath     string
	redisURL   string
	backendURL string
	logLevel   string
	logFile    string
	ingestDir  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "signalroot",
	Short: "Terminal console for SignalRoot incidents, services and integrations",
	Long: `SignalRoot Console is a terminal-first companion to the SignalRoot incident
management backend.

Features:
- Incident list with search, status/severity filters, sorting and detail view
- Service registry stored in SQLite
- Changelog and API explorer backed by the SignalRoot backend
- Webhook integration guides with a built-in webhook tester
- Folder and HTTP incident ingestion with a Redis Streams activity feed`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.signalroot.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "./data/signalroot.db", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&redisURL, "redis", "", "Redis connection URL for the activity stream (empty disables it)")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "http://localhost:8080", "SignalRoot backend base URL")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "./data/signalroot.log", "Log file used while the TUI is running")
	rootCmd.PersistentFlags().StringVar(&ingestDir, "ingest-dir", "./data/incoming", "Directory watched for incident files")

	viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("redis.url", rootCmd.PersistentFlags().Lookup("redis"))
	viper.BindPFlag("backend.url", rootCmd.PersistentFlags().Lookup("backend"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.file", rootCmd.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag("ingest.dir", rootCmd.PersistentFlags().Lookup("ingest-dir"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".signalroot")
	}

	// SIGNALROOT_DATABASE_PATH, SIGNALROOT_BACKEND_URL, ...
	viper.SetEnvPrefix("SIGNALROOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	viper.SetDefault("database.path", "./data/signalroot.db")
	viper.SetDefault("redis.url", "")
	viper.SetDefault("backend.url", "http://localhost:8080")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.file", "./data/signalroot.log")
	viper.SetDefault("ingest.dir", "./data/incoming")
}

// GetConfig returns the current configuration values
func GetConfig() Config {
	return Config{
		Database: DatabaseConfig{Path: viper.GetString("database.path")},
		Redis:    RedisConfig{URL: viper.GetString("redis.url")},
		Backend:  BackendConfig{URL: viper.GetString("backend.url")},
		Log: LogConfig{
			Level: viper.GetString("log.level"),
			File:  viper.GetString("log.file"),
		},
		Ingest: IngestConfig{Dir: viper.GetString("ingest.dir")},
	}
}

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Log      LogConfig      `mapstructure:"log"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type BackendConfig struct {
	URL string `mapstructure:"url"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type IngestConfig struct {
	Dir string `mapstructure:"dir"`
}

// Debug reports whether debug lines should be logged.
func (c LogConfig) Debug() bool {
	return strings.EqualFold(c.Level, "debug")
}

// newLogger returns a stderr logger for a command, or a silent one for
// components whose chatter is only useful at debug level.
func newLogger(component string, cfg LogConfig, debugOnly bool) *log.Logger {
	if debugOnly && !cfg.Debug() {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "["+component+"] ", log.LstdFlags)
}
