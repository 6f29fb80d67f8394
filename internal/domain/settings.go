package domain

// Configuration keys, as stored by the storefront.
const (
	KeyDebugMode = "RATECOMPASS_DEBUG_MODE"
	KeyHost      = "RATECOMPASS_HOST"
	KeyAPIKey    = "RATECOMPASS_APIKEY"
	KeyCompassID = "RATECOMPASS_ID"
	KeyEnabled   = "RATECOMPASS_ENABLED"
)

type Settings struct {
	Host      string `json:"host"`
	APIKey    string `json:"apikey"`
	Debug     bool   `json:"debug"`
	CompassID string `json:"compass_id,omitempty"`
	Enabled   bool   `json:"enabled"`
}

func (s Settings) Configured() bool {
	return s.Host != "" && s.APIKey != "" && s.CompassID != ""
}
