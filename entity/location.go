package entity

import "math"

// coordPrecision is the fixed-point scale for coordinates: 1e-7 degrees per
// unit, about 1cm at the equator.
const coordPrecision = 1e7

// Location is a point on the globe in 1e-7 degree fixed-point coordinates.
// Storing int32 pairs keeps node records fixed-size and comparison exact;
// conversion to float64 degrees happens only at the API edges.
type Location struct {
	Lon int32
	Lat int32
}

// LocationFromDegrees converts floating-point degrees to a fixed-point
// Location, rounding to the nearest 1e-7 degree.
func LocationFromDegrees(lon, lat float64) Location {
	return Location{
		Lon: int32(math.Round(lon * coordPrecision)),
		Lat: int32(math.Round(lat * coordPrecision)),
	}
}

// LonDegrees returns the longitude in degrees.
func (l Location) LonDegrees() float64 {
	return float64(l.Lon) / coordPrecision
}

// LatDegrees returns the latitude in degrees.
func (l Location) LatDegrees() float64 {
	return float64(l.Lat) / coordPrecision
}
