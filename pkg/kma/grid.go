package kma

import (
	"errors"
	"math"
)

// Projection parameters published by the Korea Meteorological Administration
// for the 5 km village forecast grid.
const (
	EarthRadiusKm = 6371.00877
	GridSpacingKm = 5.0
	StandardLat1  = 30.0
	StandardLat2  = 60.0
	OriginLon     = 126.0
	OriginLat     = 38.0
	OriginX       = 43
	OriginY       = 136

	// Extent of the village forecast grid; cells are numbered from 1.
	GridMaxX = 149
	GridMaxY = 253

	degToRad = math.Pi / 180.0
	radToDeg = 180.0 / math.Pi
)

var (
	// ErrDegenerateCone is returned when both standard parallels coincide.
	ErrDegenerateCone = errors.New("standard latitudes must differ")
	// ErrOutsideGrid is returned by Locate for coordinates the forecast grid does not cover.
	ErrOutsideGrid = errors.New("coordinate is outside the forecast grid")
)

// Grid is an integer cell of the forecast grid.
type Grid struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// LatLng is a geographic coordinate in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Params defines a Lambert Conformal Conic grid.
type Params struct {
	EarthRadiusKm float64
	GridSpacingKm float64
	StandardLat1  float64
	StandardLat2  float64
	OriginLon     float64
	OriginLat     float64
	OriginX       float64
	OriginY       float64
}

// DefaultParams are the KMA grid constants.
var DefaultParams = Params{
	EarthRadiusKm: EarthRadiusKm,
	GridSpacingKm: GridSpacingKm,
	StandardLat1:  StandardLat1,
	StandardLat2:  StandardLat2,
	OriginLon:     OriginLon,
	OriginLat:     OriginLat,
	OriginX:       OriginX,
	OriginY:       OriginY,
}

// Projection converts between geographic coordinates and grid cells.
// All derived constants are fixed at construction.
type Projection struct {
	re   float64
	sn   float64
	sf   float64
	ro   float64
	olon float64
	xo   float64
	yo   float64
}

var defaultProjection = mustProjection(DefaultParams)

// NewProjection derives the cone constant, scale factor and origin radius.
func NewProjection(p Params) (Projection, error) {
	if p.StandardLat1 == p.StandardLat2 {
		return Projection{}, ErrDegenerateCone
	}

	re := p.EarthRadiusKm / p.GridSpacingKm
	slat1 := p.StandardLat1 * degToRad
	slat2 := p.StandardLat2 * degToRad
	olat := p.OriginLat * degToRad

	sn := math.Tan(math.Pi*0.25+slat2*0.5) / math.Tan(math.Pi*0.25+slat1*0.5)
	sn = math.Log(math.Cos(slat1)/math.Cos(slat2)) / math.Log(sn)

	sf := math.Tan(math.Pi*0.25 + slat1*0.5)
	sf = math.Pow(sf, sn) * math.Cos(slat1) / sn

	ro := math.Tan(math.Pi*0.25 + olat*0.5)
	ro = re * sf / math.Pow(ro, sn)

	return Projection{
		re:   re,
		sn:   sn,
		sf:   sf,
		ro:   ro,
		olon: p.OriginLon * degToRad,
		xo:   p.OriginX,
		yo:   p.OriginY,
	}, nil
}

func mustProjection(p Params) Projection {
	projection, err := NewProjection(p)
	if err != nil {
		panic(err)
	}
	return projection
}

// ToGrid maps a coordinate onto the KMA grid.
func ToGrid(lat, lng float64) Grid {
	return defaultProjection.ToGrid(lat, lng)
}

// ToLatLng maps a KMA grid cell back to the coordinate of its centre.
func ToLatLng(x, y int) LatLng {
	return defaultProjection.ToLatLng(x, y)
}

// Locate maps a coordinate onto the KMA grid and rejects cells the grid does not cover.
func Locate(lat, lng float64) (Grid, error) {
	return defaultProjection.Locate(lat, lng)
}

// ToGrid rounds the projected point to the nearest cell.
func (p Projection) ToGrid(lat, lng float64) Grid {
	x, y := p.project(lat, lng)
	return Grid{X: int(x), Y: int(y)}
}

// Locate is ToGrid for untrusted input. Points that do not project to a finite
// cell inside 1..GridMaxX by 1..GridMaxY yield ErrOutsideGrid.
func (p Projection) Locate(lat, lng float64) (Grid, error) {
	x, y := p.project(lat, lng)
	if math.IsNaN(x) || math.IsNaN(y) || x < 1 || x > GridMaxX || y < 1 || y > GridMaxY {
		return Grid{}, ErrOutsideGrid
	}
	return Grid{X: int(x), Y: int(y)}, nil
}

func (p Projection) project(lat, lng float64) (float64, float64) {
	ra := math.Tan(math.Pi*0.25 + lat*degToRad*0.5)
	ra = p.re * p.sf / math.Pow(ra, p.sn)

	theta := lng*degToRad - p.olon
	if theta > math.Pi {
		theta -= 2.0 * math.Pi
	}
	if theta < -math.Pi {
		theta += 2.0 * math.Pi
	}
	theta *= p.sn

	return math.Floor(ra*math.Sin(theta) + p.xo + 0.5), math.Floor(p.ro - ra*math.Cos(theta) + p.yo + 0.5)
}

// ToLatLng inverts ToGrid for the cell centre.
func (p Projection) ToLatLng(x, y int) LatLng {
	xn := float64(x) - p.xo
	yn := p.ro - float64(y) + p.yo

	ra := math.Sqrt(xn*xn + yn*yn)
	if p.sn < 0.0 {
		ra = -ra
	}
	alat := math.Pow(p.re*p.sf/ra, 1.0/p.sn)
	alat = 2.0*math.Atan(alat) - math.Pi*0.5

	var theta float64
	switch {
	case math.Abs(xn) <= 0.0:
		theta = 0.0
	case math.Abs(yn) <= 0.0:
		theta = math.Pi * 0.5
		if xn < 0.0 {
			theta = -theta
		}
	default:
		theta = math.Atan2(xn, yn)
	}
	alon := theta/p.sn + p.olon

	return LatLng{
		Lat: alat * radToDeg,
		Lng: alon * radToDeg,
	}
}
