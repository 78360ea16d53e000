package sensor

import (
	"context"
	"errors"
	"fmt"
	"io"
)

const (
	DriverMCP9808 = "mcp9808"
	DriverThermal = "thermal"

	DefaultThermalZone = "/sys/class/thermal/thermal_zone0/temp"
)

var ErrUnknownDriver = errors.New("unknown sensor driver")

// Sensor reads the current temperature in degrees Celsius
type Sensor interface {
	Temperature(ctx context.Context) (float64, error)
	io.Closer
}

type Config struct {
	Driver      string
	Bus         string
	Address     uint16
	ThermalZone string
}

// Open acquires the sensor selected by cfg.Driver
func Open(cfg Config) (Sensor, error) {
	switch cfg.Driver {
	case DriverMCP9808, "":
		return OpenMCP9808(MCP9808Config{
			Bus:     cfg.Bus,
			Address: cfg.Address,
		})
	case DriverThermal:
		zone := cfg.ThermalZone
		if zone == "" {
			zone = DefaultThermalZone
		}
		return OpenThermalZone(zone)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.Driver)
	}
}
