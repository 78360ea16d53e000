package sampler

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niktheblak/temperature-assistant/pkg/reading"
	"github.com/niktheblak/temperature-assistant/pkg/statefile"
)

type mockSensor struct {
	Celsius float64
	Err     error
}

func (s *mockSensor) Temperature(ctx context.Context) (float64, error) {
	return s.Celsius, s.Err
}

func (s *mockSensor) Close() error {
	return nil
}

type failingWriter struct {
	mu    sync.Mutex
	calls int
}

func (w *failingWriter) Write(r reading.Reading) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	return errors.New("permission denied")
}

var testTime = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.Local)

func fixedNow() time.Time {
	return testTime
}

func TestSample(t *testing.T) {
	t.Parallel()

	t.Run("Writes reading", func(t *testing.T) {
		t.Parallel()

		store := statefile.New(filepath.Join(t.TempDir(), "temperature.json"))
		s, err := New(Config{Interval: time.Minute, Now: fixedNow}, &mockSensor{Celsius: 22.5}, store)
		require.NoError(t, err)
		r, err := s.Sample(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 72.5, *r.Fahrenheit)

		saved, err := store.Read()
		require.NoError(t, err)
		assert.Equal(t, 22.5, *saved.Celsius)
		assert.Equal(t, reading.CelsiusToFahrenheit(*saved.Celsius), *saved.Fahrenheit)
		assert.Equal(t, "2024-01-01 12:00:00", saved.Timestamp)
	})
	t.Run("Write failure is not fatal", func(t *testing.T) {
		t.Parallel()

		w := new(failingWriter)
		s, err := New(Config{Interval: time.Minute, Now: fixedNow}, &mockSensor{Celsius: 18}, w)
		require.NoError(t, err)
		r, err := s.Sample(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 18.0, *r.Celsius)
		assert.Equal(t, 1, w.calls)
	})
	t.Run("Sensor failure", func(t *testing.T) {
		t.Parallel()

		w := new(failingWriter)
		s, err := New(Config{Interval: time.Minute}, &mockSensor{Err: errors.New("i2c: no ack")}, w)
		require.NoError(t, err)
		_, err = s.Sample(context.Background())
		assert.Error(t, err)
		assert.Equal(t, 0, w.calls)
	})
}

func TestNewInvalidInterval(t *testing.T) {
	t.Parallel()

	_, err := New(Config{}, &mockSensor{}, new(failingWriter))
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("Stops on cancel", func(t *testing.T) {
		t.Parallel()

		store := statefile.New(filepath.Join(t.TempDir(), "temperature.json"))
		s, err := New(Config{Interval: time.Hour}, &mockSensor{Celsius: 19.5}, store)
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- s.Run(ctx)
		}()
		require.Eventually(t, func() bool {
			_, err := store.Read()
			return err == nil
		}, 5*time.Second, 10*time.Millisecond)
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("sampler did not stop")
		}
		saved, err := store.Read()
		require.NoError(t, err)
		assert.Equal(t, 19.5, *saved.Celsius)
		assert.NotEmpty(t, saved.Timestamp)
	})
	t.Run("Stops on sensor failure", func(t *testing.T) {
		t.Parallel()

		s, err := New(Config{Interval: time.Hour}, &mockSensor{Err: errors.New("i2c: no ack")}, new(failingWriter))
		require.NoError(t, err)
		done := make(chan error, 1)
		go func() {
			done <- s.Run(context.Background())
		}()
		select {
		case err := <-done:
			assert.Error(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("sampler did not fail")
		}
	})
	t.Run("Keeps running after write failure", func(t *testing.T) {
		t.Parallel()

		w := new(failingWriter)
		s, err := New(Config{Interval: time.Hour}, &mockSensor{Celsius: 20}, w)
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- s.Run(ctx)
		}()
		require.Eventually(t, func() bool {
			w.mu.Lock()
			defer w.mu.Unlock()
			return w.calls > 0
		}, 5*time.Second, 10*time.Millisecond)
		select {
		case err := <-done:
			t.Fatalf("sampler stopped: %v", err)
		case <-time.After(50 * time.Millisecond):
		}
		cancel()
		assert.NoError(t, <-done)
	})
}
