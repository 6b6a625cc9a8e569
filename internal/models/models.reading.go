// FilePath: internal/models/models.reading.go
package models

import (
	"encoding/json"
	"math"
	"time"
)

// Reading represents one stored telemetry record
type Reading struct {
	Temperature float64   `json:"temperature" db:"temperature"`
	Latitude    float64   `json:"latitude" db:"latitude"`
	Longitude   float64   `json:"longitude" db:"longitude"`
	ReceivedAt  time.Time `json:"receivedAt" db:"received_at"`
}

// ReadingInput is a reading as pushed by a device or fetched from the sensor.
// Fields are pointers so that absent values can be told apart from zero.
type ReadingInput struct {
	Temperature *float64 `json:"temperature" schema:"temperature"`
	Latitude    *float64 `json:"latitude" schema:"latitude"`
	Longitude   *float64 `json:"longitude" schema:"longitude"`
}

// UnmarshalJSON accepts the firmware's "temperatura" key as an alias
func (in *ReadingInput) UnmarshalJSON(data []byte) error {
	var raw struct {
		Temperature *float64 `json:"temperature"`
		Temperatura *float64 `json:"temperatura"`
		Latitude    *float64 `json:"latitude"`
		Longitude   *float64 `json:"longitude"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	in.Temperature = raw.Temperature
	if in.Temperature == nil {
		in.Temperature = raw.Temperatura
	}
	in.Latitude = raw.Latitude
	in.Longitude = raw.Longitude
	return nil
}

// Missing returns the names of the fields that were not provided
func (in ReadingInput) Missing() []string {
	var missing []string
	if in.Temperature == nil {
		missing = append(missing, "temperature")
	}
	if in.Latitude == nil {
		missing = append(missing, "latitude")
	}
	if in.Longitude == nil {
		missing = append(missing, "longitude")
	}
	return missing
}

// NonFinite returns the names of the provided fields holding NaN or an infinity
func (in ReadingInput) NonFinite() []string {
	var bad []string
	for _, f := range []struct {
		name  string
		value *float64
	}{
		{"temperature", in.Temperature},
		{"latitude", in.Latitude},
		{"longitude", in.Longitude},
	} {
		if f.value != nil && (math.IsNaN(*f.value) || math.IsInf(*f.value, 0)) {
			bad = append(bad, f.name)
		}
	}
	return bad
}

// NewReadingInput builds a complete input from plain values
func NewReadingInput(temperature, latitude, longitude float64) ReadingInput {
	return ReadingInput{
		Temperature: &temperature,
		Latitude:    &latitude,
		Longitude:   &longitude,
	}
}
