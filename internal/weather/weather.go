// Package weather fetches daily weather for the plot from Open-Meteo.
package weather

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/squaremeter/squarelog/internal/conf"
	"github.com/squaremeter/squarelog/internal/logging"
	"github.com/squaremeter/squarelog/internal/model"
)

// Package-level logger for the weather service
var (
	serviceLogger   *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	serviceLogger, closeLogger, err = logging.NewFileLogger("logs/weather.log", "weather", serviceLevelVar)
	if err != nil || serviceLogger == nil {
		// Fallback to a disabled logger
		serviceLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
		closeLogger = func() error { return nil }
	}
}

// Provider fetches the daily weather block for a single calendar date.
type Provider interface {
	FetchDaily(ctx context.Context, date time.Time) (*model.Weather, error)
}

// Service wraps a provider with the fetch-or-fallback policy: a record is
// always written with a weather block, a failed fetch degrades to the all-null
// block instead of aborting the pipeline.
type Service struct {
	provider Provider
	logger   *slog.Logger
}

// NewService creates a weather service around a provider.
func NewService(provider Provider, settings *conf.Settings) *Service {
	if settings.Debug {
		serviceLevelVar.Set(slog.LevelDebug)
	}
	return &Service{
		provider: provider,
		logger:   serviceLogger,
	}
}

// Fetch fetches the daily weather for a date, returning the provider error
// as-is. Callers that must not write a record without weather use
// FetchOrFallback instead.
func (s *Service) Fetch(ctx context.Context, date time.Time) (*model.Weather, error) {
	return s.provider.FetchDaily(ctx, date)
}

// FetchOrFallback fetches the daily weather for a date. On any failure it
// logs a warning and returns the null weather block, never an error.
func (s *Service) FetchOrFallback(ctx context.Context, date time.Time) *model.Weather {
	weather, err := s.provider.FetchDaily(ctx, date)
	if err != nil {
		s.logger.Warn("weather fetch failed, recording null weather block",
			"date", date.Format("2006-01-02"),
			"error", err)
		return model.NullWeather()
	}
	return weather
}
