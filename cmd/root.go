package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:          "temperature-assistant",
	Short:        "Temperature sensor sampler and LLM assistant API",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	logger = slog.Default()
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.temperature-assistant/config.toml)")
	rootCmd.PersistentFlags().String("state.file", "", "shared state file holding the latest reading")
	rootCmd.PersistentFlags().String("log.level", "", "log level (debug, info, warn, error)")

	cobra.CheckErr(viper.BindPFlags(rootCmd.PersistentFlags()))

	viper.SetDefault("state.file", homePath("temperature.json"))
	viper.SetDefault("log.level", "info")
}

func initConfig() {
	if err := godotenv.Load(); err == nil {
		logger.LogAttrs(context.Background(), slog.LevelDebug, "Loaded .env file")
	}
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("/etc/temperature-assistant")
		viper.AddConfigPath("$HOME/.temperature-assistant")
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
	}
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	err := viper.ReadInConfig()
	logger = newLogger(viper.GetString("log.level"))
	slog.SetDefault(logger)
	if err == nil {
		logger.LogAttrs(context.Background(), slog.LevelInfo, "Using config file", slog.String("config", viper.ConfigFileUsed()))
	}
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

func homePath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, name)
}
