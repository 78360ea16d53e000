package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/niktheblak/temperature-assistant/pkg/assistant"
	"github.com/niktheblak/temperature-assistant/pkg/reading"
)

// StateReader reads the shared state file written by the sampler
type StateReader interface {
	Read() (reading.Reading, error)
	Path() string
}

// Answer is the outcome of a question. Err is set when the assistant failed.
type Answer struct {
	Response    string
	Err         error
	Temperature reading.Reading
}

type Service interface {
	GetReading(ctx context.Context) reading.Reading
	AskQuestion(ctx context.Context, query string) Answer
}

type service struct {
	state  StateReader
	asker  assistant.Asker
	logger *slog.Logger
}

func New(state StateReader, asker assistant.Asker, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &service{
		state:  state,
		asker:  asker,
		logger: logger,
	}
}

// GetReading returns the latest reading, or the unknown reading if the state file cannot be read
func (s *service) GetReading(ctx context.Context) reading.Reading {
	r, err := s.state.Read()
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "Error reading temperature data", slog.Any("error", err))
		return reading.UnknownReading()
	}
	return r
}

func (s *service) AskQuestion(ctx context.Context, query string) Answer {
	s.logger.LogAttrs(ctx, slog.LevelInfo, "Sending query to LLM", slog.String("query", query))
	response, err := s.asker.Ask(ctx, s.state.Path(), query)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "Error running LLM", slog.Any("error", err))
	}
	return Answer{
		Response:    response,
		Err:         err,
		Temperature: s.GetReading(ctx),
	}
}
