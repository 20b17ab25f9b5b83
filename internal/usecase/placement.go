package usecase

import (
	"fmt"
	"log"
	"strings"
	"unicode/utf16"

	"github.com/tastylog/backend/internal/domain"
)

// GeoPoint is a WGS84 coordinate
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DefaultCenter is the geographic centre of China, the base for approximate placements
var DefaultCenter = GeoPoint{Lat: 35.86166, Lng: 104.195397}

// Marker places one record on the map
type Marker struct {
	RemoteID    string   `json:"remoteId"`
	Title       string   `json:"title"`
	Rating      float64  `json:"rating"`
	Price       string   `json:"price"`
	Location    string   `json:"location"`
	Point       GeoPoint `json:"point"`
	Approximate bool     `json:"approximate"`
}

// BoundingBox encloses a set of markers
type BoundingBox struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

type city struct {
	name  string
	point GeoPoint
}

// cities is scanned in order; the first name contained in a location wins
var cities = []city{
	// municipalities and SARs
	{"北京", GeoPoint{39.904989, 116.405285}},
	{"上海", GeoPoint{31.230416, 121.473701}},
	{"天津", GeoPoint{39.125596, 117.190182}},
	{"重庆", GeoPoint{29.563010, 106.551556}},
	{"香港", GeoPoint{22.396428, 114.109497}},
	{"澳门", GeoPoint{22.198745, 113.543873}},

	// south
	{"广州", GeoPoint{23.129110, 113.264385}},
	{"深圳", GeoPoint{22.543096, 114.057865}},
	{"珠海", GeoPoint{22.270715, 113.576726}},
	{"佛山", GeoPoint{23.021841, 113.121841}},
	{"东莞", GeoPoint{23.020673, 113.751765}},
	{"惠州", GeoPoint{23.111847, 114.416786}},
	{"中山", GeoPoint{22.517645, 113.392782}},
	{"江门", GeoPoint{22.578738, 113.081901}},
	{"顺德", GeoPoint{22.7653, 113.2418}},

	// east
	{"杭州", GeoPoint{30.274084, 120.155070}},
	{"南京", GeoPoint{32.060255, 118.796877}},
	{"苏州", GeoPoint{31.299379, 120.585316}},
	{"无锡", GeoPoint{31.491169, 120.311910}},
	{"宁波", GeoPoint{29.868336, 121.549792}},
	{"温州", GeoPoint{27.993828, 120.699367}},
	{"绍兴", GeoPoint{30.029752, 120.592467}},
	{"嘉兴", GeoPoint{30.746129, 120.755486}},
	{"金华", GeoPoint{29.079059, 119.649506}},
	{"常州", GeoPoint{31.810689, 119.974061}},

	// central
	{"武汉", GeoPoint{30.592849, 114.305539}},
	{"长沙", GeoPoint{28.228209, 112.938814}},
	{"郑州", GeoPoint{34.746611, 113.625328}},
	{"洛阳", GeoPoint{34.618124, 112.454420}},
	{"株洲", GeoPoint{27.827433, 113.134002}},
	{"岳阳", GeoPoint{29.357280, 113.128958}},

	// southwest
	{"成都", GeoPoint{30.572816, 104.066801}},
	{"贵阳", GeoPoint{26.578343, 106.713478}},
	{"昆明", GeoPoint{24.880095, 102.832891}},
	{"乐山", GeoPoint{29.552115, 103.765568}},
	{"绵阳", GeoPoint{31.467459, 104.679114}},

	// north
	{"石家庄", GeoPoint{38.042307, 114.515358}},
	{"太原", GeoPoint{37.870590, 112.548879}},
	{"呼和浩特", GeoPoint{40.842585, 111.749181}},
	{"保定", GeoPoint{38.873958, 115.464589}},
	{"唐山", GeoPoint{39.630867, 118.180194}},
	{"秦皇岛", GeoPoint{39.935385, 119.600493}},

	// northeast
	{"沈阳", GeoPoint{41.805698, 123.431474}},
	{"大连", GeoPoint{38.914003, 121.614682}},
	{"长春", GeoPoint{43.817071, 125.323544}},
	{"哈尔滨", GeoPoint{45.803775, 126.534967}},
	{"鞍山", GeoPoint{41.107769, 123.007763}},
	{"吉林", GeoPoint{43.837883, 126.549572}},

	// northwest
	{"西安", GeoPoint{34.341575, 108.940175}},
	{"兰州", GeoPoint{36.061089, 103.834304}},
	{"西宁", GeoPoint{36.617144, 101.778228}},
	{"银川", GeoPoint{38.487194, 106.230909}},
	{"乌鲁木齐", GeoPoint{43.825592, 87.616848}},
	{"咸阳", GeoPoint{34.329605, 108.708991}},

	// tourist destinations
	{"桂林", GeoPoint{25.274215, 110.290195}},
	{"三亚", GeoPoint{18.252847, 109.511909}},
	{"丽江", GeoPoint{26.855047, 100.227750}},
	{"大理", GeoPoint{25.606486, 100.267638}},
	{"张家界", GeoPoint{29.117096, 110.479191}},
	{"黄山", GeoPoint{29.714699, 118.337481}},

	// other
	{"厦门", GeoPoint{24.479834, 118.089425}},
	{"福州", GeoPoint{26.074208, 119.296494}},
	{"泉州", GeoPoint{24.874132, 118.675675}},
	{"莆田", GeoPoint{25.454085, 119.007558}},
	{"南通", GeoPoint{31.980172, 120.894291}},
	{"徐州", GeoPoint{34.205768, 117.284124}},
	{"烟台", GeoPoint{37.463822, 121.447935}},
	{"威海", GeoPoint{37.513068, 122.120420}},
	{"济南", GeoPoint{36.651216, 117.120095}},
	{"青岛", GeoPoint{36.067082, 120.382639}},
}

// Tile layers served by TileURL
const (
	LayerVector     = "vec"
	LayerAnnotation = "cva"

	maxTileZoom = 20
)

// Placer turns free-text locations into map coordinates
type Placer struct {
	base   GeoPoint
	mapKey string
}

// NewPlacer creates a placer. base anchors approximate placements; mapKey signs tile URLs.
func NewPlacer(base GeoPoint, mapKey string) *Placer {
	return &Placer{base: base, mapKey: mapKey}
}

// LookupCity returns the coordinate of the first known city named in location
func LookupCity(location string) (GeoPoint, bool) {
	if location == "" {
		return GeoPoint{}, false
	}
	for _, c := range cities {
		if strings.Contains(location, c.name) {
			return c.point, true
		}
	}
	return GeoPoint{}, false
}

// Locate places a location. Known cities get their real coordinate; anything
// else gets a stable pseudo-coordinate near the base point, which is not a geocode.
// Empty locations are not placed.
func (p *Placer) Locate(location string) (GeoPoint, bool) {
	point, _, ok := p.place(location)
	return point, ok
}

func (p *Placer) place(location string) (GeoPoint, bool, bool) {
	if location == "" {
		return GeoPoint{}, false, false
	}
	if point, ok := LookupCity(location); ok {
		return point, false, true
	}

	log.Printf("[Placer] No city match for %q, using approximate position", location)
	return p.approximate(location), true, true
}

func (p *Placer) approximate(location string) GeoPoint {
	h := javaStringHash(location)
	return GeoPoint{
		Lat: p.base.Lat + float64(h%1000)/10000.0,
		Lng: p.base.Lng + float64(h%500)/5000.0,
	}
}

// javaStringHash is s[0]*31^(n-1) + ... + s[n-1] over UTF-16 code units with
// int32 wraparound, so placements match the ones the mobile client draws.
func javaStringHash(s string) int32 {
	var h int32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = 31*h + int32(unit)
	}
	return h
}

// Markers places every record that has a location
func (p *Placer) Markers(records []domain.FoodRecord) []Marker {
	markers := make([]Marker, 0, len(records))
	for _, record := range records {
		point, approximate, ok := p.place(record.Location)
		if !ok {
			continue
		}
		markers = append(markers, Marker{
			RemoteID:    record.RemoteID,
			Title:       record.Title,
			Rating:      record.Rating,
			Price:       record.Price,
			Location:    record.Location,
			Point:       point,
			Approximate: approximate,
		})
	}
	return markers
}

// Bounds returns the smallest box holding every marker
func Bounds(markers []Marker) (BoundingBox, bool) {
	if len(markers) == 0 {
		return BoundingBox{}, false
	}
	box := BoundingBox{North: -90, South: 90, East: -180, West: 180}
	for _, m := range markers {
		box.North = max(box.North, m.Point.Lat)
		box.South = min(box.South, m.Point.Lat)
		box.East = max(box.East, m.Point.Lng)
		box.West = min(box.West, m.Point.Lng)
	}
	return box, true
}

// TileURL builds the Tianditu WMTS URL of one web-mercator tile
func (p *Placer) TileURL(layer string, zoom, x, y int) (string, error) {
	if layer != LayerVector && layer != LayerAnnotation {
		return "", domain.Validationf("unknown tile layer %q", layer)
	}
	if zoom < 0 || zoom > maxTileZoom {
		return "", domain.Validationf("zoom must be between 0 and %d", maxTileZoom)
	}
	if x < 0 || y < 0 || x >= 1<<zoom || y >= 1<<zoom {
		return "", domain.Validationf("tile %d/%d is outside zoom level %d", x, y, zoom)
	}

	return fmt.Sprintf(
		"https://t0.tianditu.gov.cn/%s_w/wmts?SERVICE=WMTS&REQUEST=GetTile&VERSION=1.0.0"+
			"&LAYER=%s&STYLE=default&TILEMATRIXSET=w&FORMAT=tiles&TILEMATRIX=%d&TILEROW=%d&TILECOL=%d&tk=%s",
		layer, layer, zoom, y, x, p.mapKey,
	), nil
}
