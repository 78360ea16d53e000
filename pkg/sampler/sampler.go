package sampler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/go-playground/validator/v10"

	"github.com/niktheblak/temperature-assistant/pkg/reading"
	"github.com/niktheblak/temperature-assistant/pkg/sensor"
)

const DefaultInterval = 60 * time.Second

var validate = validator.New()

// Writer persists the latest reading
type Writer interface {
	Write(r reading.Reading) error
}

type Config struct {
	Interval time.Duration `validate:"gt=0"`
	Logger   *slog.Logger
	// Now returns the current time; defaults to time.Now
	Now func() time.Time
}

// Sampler periodically reads the sensor and overwrites the state with the latest reading
type Sampler struct {
	sensor   sensor.Sensor
	writer   Writer
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func New(cfg Config, s sensor.Sensor, w Writer) (*Sampler, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid sampler config: %w", err)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Sampler{
		sensor:   s,
		writer:   w,
		interval: cfg.Interval,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}, nil
}

// Sample performs one cycle. Sensor errors are returned; a failed write is only logged.
func (s *Sampler) Sample(ctx context.Context) (reading.Reading, error) {
	celsius, err := s.sensor.Temperature(ctx)
	if err != nil {
		return reading.Reading{}, fmt.Errorf("read temperature: %w", err)
	}
	r := reading.New(celsius, s.now())
	s.logger.LogAttrs(ctx, slog.LevelInfo, "Temperature", slog.String("timestamp", r.Timestamp), slog.Float64("celsius", *r.Celsius), slog.Float64("fahrenheit", *r.Fahrenheit))
	if err := s.writer.Write(r); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "Could not save reading", slog.Any("error", err))
	}
	return r, nil
}

// Run samples immediately and then on every interval until ctx is cancelled or a cycle fails
func (s *Sampler) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	scheduler := gocron.NewScheduler(time.Local)
	scheduler.SingletonModeAll()
	_, err := scheduler.Every(s.interval).Do(func() {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.Sample(ctx); err != nil {
			select {
			case errc <- err:
			default:
			}
		}
	})
	if err != nil {
		return fmt.Errorf("schedule sampler: %w", err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "Starting sampler", slog.Duration("interval", s.interval))
	scheduler.StartAsync()
	defer scheduler.Stop()
	select {
	case <-ctx.Done():
		s.logger.Info("Sampler stopped")
		return nil
	case err := <-errc:
		s.logger.LogAttrs(ctx, slog.LevelError, "Sampler failed", slog.Any("error", err))
		return err
	}
}
