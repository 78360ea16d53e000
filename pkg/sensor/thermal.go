package sensor

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// thermalZone reads a Linux sysfs thermal zone, which reports millidegrees Celsius
type thermalZone struct {
	path string
}

func OpenThermalZone(path string) (Sensor, error) {
	s := &thermalZone{path: path}
	if _, err := s.Temperature(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *thermalZone) Temperature(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return 0, err
	}
	milli, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid thermal zone value in %s: %w", s.path, err)
	}
	return float64(milli) / 1000, nil
}

func (s *thermalZone) Close() error {
	return nil
}
