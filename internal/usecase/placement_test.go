package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastylog/backend/internal/domain"
)

func TestJavaStringHash(t *testing.T) {
	tests := []struct {
		in   string
		want int32
	}{
		{"", 0},
		{"abc", 96354},
		{"hello", 99162322},
		{"Hello World", -862545276},
		{"某个小吃街", -606842263},
		{"🍜面馆", 1705301252},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, javaStringHash(tt.in))
		})
	}
}

func TestLookupCity(t *testing.T) {
	point, ok := LookupCity("北京市朝阳区三里屯")
	require.True(t, ok)
	assert.Equal(t, GeoPoint{Lat: 39.904989, Lng: 116.405285}, point)

	_, ok = LookupCity("")
	assert.False(t, ok)

	_, ok = LookupCity("Somewhere else")
	assert.False(t, ok)
}

func TestLookupCity_FirstTableEntryWins(t *testing.T) {
	// Both 长春 and 吉林 appear; 长春 is declared first
	point, ok := LookupCity("吉林省长春市")
	require.True(t, ok)
	assert.Equal(t, GeoPoint{Lat: 43.817071, Lng: 125.323544}, point)
}

func TestPlacer_Locate(t *testing.T) {
	placer := NewPlacer(DefaultCenter, "key")

	t.Run("empty location is not placed", func(t *testing.T) {
		_, ok := placer.Locate("")
		assert.False(t, ok)
	})

	t.Run("known city", func(t *testing.T) {
		point, ok := placer.Locate("成都市武侯区")
		require.True(t, ok)
		assert.Equal(t, GeoPoint{Lat: 30.572816, Lng: 104.066801}, point)
	})

	t.Run("unknown location is deterministic", func(t *testing.T) {
		first, ok := placer.Locate("某个小吃街")
		require.True(t, ok)
		second, _ := placer.Locate("某个小吃街")
		assert.Equal(t, first, second)

		assert.InDelta(t, DefaultCenter.Lat-0.0263, first.Lat, 1e-9)
		assert.InDelta(t, DefaultCenter.Lng-0.0526, first.Lng, 1e-9)
	})

	t.Run("positive hash offset", func(t *testing.T) {
		point, ok := NewPlacer(GeoPoint{}, "").Locate("abc")
		require.True(t, ok)
		assert.InDelta(t, 0.0354, point.Lat, 1e-9)
		assert.InDelta(t, 0.0708, point.Lng, 1e-9)
	})
}

func TestPlacer_Markers(t *testing.T) {
	placer := NewPlacer(DefaultCenter, "key")
	records := []domain.FoodRecord{
		{RemoteID: "a", Title: "Roast duck", Location: "北京", Rating: 5, Price: "¥198"},
		{RemoteID: "b", Title: "No place"},
		{RemoteID: "c", Title: "Street snack", Location: "某个小吃街"},
	}

	markers := placer.Markers(records)

	require.Len(t, markers, 2)
	assert.Equal(t, "a", markers[0].RemoteID)
	assert.False(t, markers[0].Approximate)
	assert.Equal(t, "¥198", markers[0].Price)
	assert.Equal(t, "c", markers[1].RemoteID)
	assert.True(t, markers[1].Approximate)
}

func TestBounds(t *testing.T) {
	_, ok := Bounds(nil)
	assert.False(t, ok)

	box, ok := Bounds([]Marker{
		{Point: GeoPoint{Lat: 39.9, Lng: 116.4}},
		{Point: GeoPoint{Lat: 22.5, Lng: 114.0}},
		{Point: GeoPoint{Lat: 30.5, Lng: 104.0}},
	})
	require.True(t, ok)
	assert.Equal(t, BoundingBox{North: 39.9, South: 22.5, East: 116.4, West: 104.0}, box)
}

func TestPlacer_TileURL(t *testing.T) {
	placer := NewPlacer(DefaultCenter, "map-key")

	got, err := placer.TileURL(LayerVector, 3, 6, 2)
	require.NoError(t, err)
	assert.Equal(t,
		"https://t0.tianditu.gov.cn/vec_w/wmts?SERVICE=WMTS&REQUEST=GetTile&VERSION=1.0.0"+
			"&LAYER=vec&STYLE=default&TILEMATRIXSET=w&FORMAT=tiles&TILEMATRIX=3&TILEROW=2&TILECOL=6&tk=map-key",
		got)

	got, err = placer.TileURL(LayerAnnotation, 0, 0, 0)
	require.NoError(t, err)
	assert.Contains(t, got, "https://t0.tianditu.gov.cn/cva_w/wmts?")
	assert.Contains(t, got, "&LAYER=cva&")

	for _, tc := range []struct {
		layer   string
		z, x, y int
	}{
		{"img", 3, 0, 0},
		{LayerVector, 21, 0, 0},
		{LayerVector, -1, 0, 0},
		{LayerVector, 2, 4, 0},
		{LayerVector, 2, 0, -1},
	} {
		_, err := placer.TileURL(tc.layer, tc.z, tc.x, tc.y)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
}
