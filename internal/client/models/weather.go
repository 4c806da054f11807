package models

// Weather mirrors the subset of the weather provider payload the backend
// passes through.
type Weather struct {
	Current struct {
		TempC      float64 `json:"temp_c"`
		FeelsLikeC float64 `json:"feelslike_c"`
		DewpointC  float64 `json:"dewpoint_c"`
		WindMph    float64 `json:"wind_mph"`
		GustMph    float64 `json:"gust_mph"`
		PressureMb float64 `json:"pressure_mb"`
		PrecipMm   float64 `json:"precip_mm"`
		Humidity   float64 `json:"humidity"`
		VisKm      float64 `json:"vis_km"`
		UV         float64 `json:"uv"`
		Condition  struct {
			Text string `json:"text"`
			Icon string `json:"icon"`
		} `json:"condition"`
	} `json:"current"`
	Location struct {
		Name    string  `json:"name"`
		Country string  `json:"country"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	} `json:"location"`
}
