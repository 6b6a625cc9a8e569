package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadingInput_Unmarshal(t *testing.T) {
	var in ReadingInput
	require.NoError(t, json.Unmarshal([]byte(`{"temperature":36.5,"latitude":-23.5,"longitude":-46.6}`), &in))
	require.Empty(t, in.Missing())
	assert.Equal(t, 36.5, *in.Temperature)
	assert.Equal(t, -23.5, *in.Latitude)
	assert.Equal(t, -46.6, *in.Longitude)
}

func TestReadingInput_FirmwareKeys(t *testing.T) {
	body := `{"temperatura":5.25,"latitude":-23.550520,"longitude":-46.633308,"dataHora":""}`

	var in ReadingInput
	require.NoError(t, json.Unmarshal([]byte(body), &in))
	require.Empty(t, in.Missing())
	assert.Equal(t, 5.25, *in.Temperature)
}

func TestReadingInput_Missing(t *testing.T) {
	var in ReadingInput
	require.NoError(t, json.Unmarshal([]byte(`{"temperature":0,"latitude":0}`), &in))
	assert.Equal(t, []string{"longitude"}, in.Missing())

	assert.Equal(t, []string{"temperature", "latitude", "longitude"}, ReadingInput{}.Missing())
}

func TestReadingInput_Malformed(t *testing.T) {
	var in ReadingInput
	assert.Error(t, json.Unmarshal([]byte(`{"temperature":"hot"}`), &in))
	assert.Error(t, json.Unmarshal([]byte(`<html>`), &in))
}

func TestReadingInput_NonFinite(t *testing.T) {
	assert.Empty(t, NewReadingInput(1, 2, 3).NonFinite())
	assert.Empty(t, ReadingInput{}.NonFinite())

	in := NewReadingInput(math.Inf(1), 2, math.NaN())
	assert.Equal(t, []string{"temperature", "longitude"}, in.NonFinite())
}
