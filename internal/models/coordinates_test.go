package models_test

import (
	"encoding/json"
	"testing"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeoPoint_LatLng(t *testing.T) {
	point := models.NewGeoPoint(-73.99, 40.75)

	assert.InDelta(t, -73.99, point.Lon(), 1e-9)
	assert.InDelta(t, 40.75, point.Lat(), 1e-9)
	assert.Equal(t, models.LatLng{Lat: 40.75, Lng: -73.99}, point.LatLng())
	assert.Equal(t, point, point.LatLng().GeoPoint())
}

func TestGeoPoint_JSON(t *testing.T) {
	data, err := json.Marshal(models.NewGeoPoint(8.68, 49.41))
	require.NoError(t, err)
	assert.JSONEq(t, `[8.68,49.41]`, string(data))

	var point models.GeoPoint
	require.NoError(t, json.Unmarshal([]byte(`[-71.06,42.36]`), &point))
	assert.Equal(t, models.NewGeoPoint(-71.06, 42.36), point)
}

func TestBoundingBox_JSON(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		var box models.BoundingBox
		require.NoError(t, json.Unmarshal([]byte(`[[8.681495,49.41461],[8.686507,49.41943]]`), &box))

		assert.Equal(t, models.NewGeoPoint(8.681495, 49.41461), box.SouthWest)
		assert.Equal(t, models.NewGeoPoint(8.686507, 49.41943), box.NorthEast)

		data, err := json.Marshal(box)
		require.NoError(t, err)
		assert.JSONEq(t, `[[8.681495,49.41461],[8.686507,49.41943]]`, string(data))
	})

	t.Run("wrong corner count", func(t *testing.T) {
		var box models.BoundingBox
		err := json.Unmarshal([]byte(`[[8.68,49.41]]`), &box)

		require.ErrorIs(t, err, models.ErrInvalidBoundingBox)
	})

	t.Run("not an array", func(t *testing.T) {
		var box models.BoundingBox
		err := json.Unmarshal([]byte(`{"sw":[1,2]}`), &box)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode bounding box")
	})
}

func TestBoundingBox_Bound(t *testing.T) {
	box := models.BoundingBox{
		SouthWest: models.NewGeoPoint(8.686507, 49.41943),
		NorthEast: models.NewGeoPoint(8.681495, 49.41461),
	}

	bound := box.Bound()

	assert.InDelta(t, 8.681495, bound.Min[0], 1e-9)
	assert.InDelta(t, 49.41461, bound.Min[1], 1e-9)
	assert.InDelta(t, 8.686507, bound.Max[0], 1e-9)
	assert.InDelta(t, 49.41943, bound.Max[1], 1e-9)
}
