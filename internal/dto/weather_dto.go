package dto

import "github.com/noah-isme/cloudlab-api/pkg/kma"

// WeatherRequest carries the device position. Pointers distinguish 0 from missing.
type WeatherRequest struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
}

// WeatherResponse describes current conditions at the caller's grid cell.
type WeatherResponse struct {
	Grid          kma.Grid `json:"grid"`
	BaseDate      string   `json:"baseDate"`
	BaseTime      string   `json:"baseTime"`
	Temperature   *float64 `json:"temperature"`
	Humidity      *float64 `json:"humidity"`
	Precipitation *float64 `json:"precipitation"`
	PrecipType    *int     `json:"precipType"`
	PrecipLabel   string   `json:"precipLabel"`
	WindSpeed     *float64 `json:"windSpeed"`
	WindDirection *float64 `json:"windDirection"`
	Summary       string   `json:"summary"`
}
