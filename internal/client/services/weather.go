package services

import (
	"context"
	"fmt"
	"math"

	"github.com/dmitrijs2005/clouddash/internal/client/client"
	"github.com/dmitrijs2005/clouddash/internal/client/models"
)

type WeatherService struct {
	api client.WeatherAPI
}

func NewWeatherService(api client.WeatherAPI) *WeatherService {
	return &WeatherService{api: api}
}

// Current returns the conditions at the given coordinates.
func (s *WeatherService) Current(ctx context.Context, latitude, longitude float64) (models.Weather, error) {
	if math.IsNaN(latitude) || latitude < -90 || latitude > 90 {
		return models.Weather{}, fmt.Errorf("%w: latitude must be within [-90, 90]", ErrValidation)
	}
	if math.IsNaN(longitude) || longitude < -180 || longitude > 180 {
		return models.Weather{}, fmt.Errorf("%w: longitude must be within [-180, 180]", ErrValidation)
	}

	w, err := s.api.Weather(ctx, latitude, longitude)
	if err != nil {
		return models.Weather{}, fmt.Errorf("weather: %w", err)
	}
	return w, nil
}
