package sensor

import (
	"context"
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/mcp9808"
	"periph.io/x/host/v3"
)

const DefaultMCP9808Address = 0x18

type MCP9808Config struct {
	// Bus is the I2C bus name; empty selects the first available bus
	Bus     string
	Address uint16
}

type mcp9808Sensor struct {
	bus i2c.BusCloser
	dev *mcp9808.Dev
}

// OpenMCP9808 initializes the host drivers and opens an MCP9808 on the given I2C bus
func OpenMCP9808(cfg MCP9808Config) (Sensor, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("initialize host: %w", err)
	}
	bus, err := i2creg.Open(cfg.Bus)
	if err != nil {
		return nil, fmt.Errorf("open I2C bus %q: %w", cfg.Bus, err)
	}
	opts := mcp9808.DefaultOpts
	if cfg.Address != 0 {
		opts.Addr = int(cfg.Address)
	}
	dev, err := mcp9808.New(bus, &opts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("open MCP9808 at 0x%02x: %w", opts.Addr, err)
	}
	return &mcp9808Sensor{bus: bus, dev: dev}, nil
}

func (s *mcp9808Sensor) Temperature(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var env physic.Env
	if err := s.dev.Sense(&env); err != nil {
		return 0, err
	}
	return env.Temperature.Celsius(), nil
}

func (s *mcp9808Sensor) Close() error {
	if err := s.dev.Halt(); err != nil {
		s.bus.Close()
		return err
	}
	return s.bus.Close()
}
