package assistant

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultTimeout = 60 * time.Second

	// promptMarker starts lines in which the executable echoes its input
	promptMarker = ">"
	waitDelay    = time.Second
)

var (
	ErrTimeout = errors.New("LLM timed out")

	validate = validator.New()
)

// Asker answers a free-text query about the snapshot stored in stateFile
type Asker interface {
	Ask(ctx context.Context, stateFile, query string) (string, error)
}

type ExecConfig struct {
	Path    string        `validate:"required"`
	Timeout time.Duration `validate:"gt=0"`
	Logger  *slog.Logger
}

// Exec runs an external LLM executable as `<path> --json <state file> <query>`
type Exec struct {
	path    string
	timeout time.Duration
	logger  *slog.Logger
}

func NewExec(cfg ExecConfig) (*Exec, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid assistant config: %w", err)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Exec{
		path:    cfg.Path,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}, nil
}

func (e *Exec) Ask(ctx context.Context, stateFile, query string) (string, error) {
	if err := e.ensureExecutable(ctx); err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, e.path, "--json", stateFile, query)
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	started := time.Now()
	err := cmd.Run()
	e.logger.LogAttrs(ctx, slog.LevelDebug, "LLM finished", slog.Duration("elapsed", time.Since(started)), slog.Int("stdout_bytes", stdout.Len()))
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
	}
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	return CleanOutput(stdout.String()), nil
}

// ensureExecutable adds execute permissions to an existing executable that lacks them
func (e *Exec) ensureExecutable(ctx context.Context) error {
	info, err := os.Stat(e.path)
	if err != nil {
		// let the invocation itself report a missing executable
		return nil
	}
	if info.Mode().Perm()&0100 != 0 {
		return nil
	}
	e.logger.LogAttrs(ctx, slog.LevelInfo, "Making LLM executable", slog.String("path", e.path))
	return os.Chmod(e.path, 0755)
}

// CleanOutput removes echoed prompt lines from the executable's output
func CleanOutput(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	var response []string
	for _, line := range lines {
		if strings.HasPrefix(line, promptMarker) {
			continue
		}
		response = append(response, line)
	}
	return strings.TrimSpace(strings.Join(response, "\n"))
}
