package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/niktheblak/temperature-assistant/pkg/sampler"
	"github.com/niktheblak/temperature-assistant/pkg/sensor"
	"github.com/niktheblak/temperature-assistant/pkg/statefile"
)

var samplerCmd = &cobra.Command{
	Use:          "sampler",
	Short:        "Read the temperature sensor periodically and save the latest reading",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			stateFile = viper.GetString("state.file")
			interval  = viper.GetDuration("sampler.interval")
			cfg       = sensor.Config{
				Driver:      viper.GetString("sensor.driver"),
				Bus:         viper.GetString("sensor.bus"),
				Address:     viper.GetUint16("sensor.address"),
				ThermalZone: viper.GetString("sensor.thermal_zone"),
			}
		)
		logger.LogAttrs(
			nil,
			slog.LevelInfo,
			"Initializing sensor",
			slog.String("driver", cfg.Driver),
			slog.String("bus", cfg.Bus),
			slog.Int("address", int(cfg.Address)),
		)
		s, err := sensor.Open(cfg)
		if err != nil {
			logger.Error("Failed to initialize sensor", "err", err)
			return err
		}
		defer func() {
			if err := s.Close(); err != nil {
				logger.Error("Failed to close sensor", "err", err)
			}
		}()
		logger.LogAttrs(nil, slog.LevelInfo, "Saving readings", slog.String("state_file", stateFile))
		smp, err := sampler.New(sampler.Config{
			Interval: interval,
			Logger:   logger,
		}, s, statefile.New(stateFile))
		if err != nil {
			return err
		}
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return smp.Run(ctx)
	},
}

func init() {
	samplerCmd.Flags().Duration("sampler.interval", 0, "Sampling interval")
	samplerCmd.Flags().String("sensor.driver", "", "Sensor driver (mcp9808, thermal)")
	samplerCmd.Flags().String("sensor.bus", "", "I2C bus name; empty selects the first bus")
	samplerCmd.Flags().Uint16("sensor.address", 0, "MCP9808 I2C address")
	samplerCmd.Flags().String("sensor.thermal_zone", "", "Thermal zone temperature file")

	cobra.CheckErr(viper.BindPFlags(samplerCmd.Flags()))

	viper.SetDefault("sampler.interval", sampler.DefaultInterval)
	viper.SetDefault("sensor.driver", sensor.DriverMCP9808)
	viper.SetDefault("sensor.address", sensor.DefaultMCP9808Address)
	viper.SetDefault("sensor.thermal_zone", sensor.DefaultThermalZone)

	rootCmd.AddCommand(samplerCmd)
}
