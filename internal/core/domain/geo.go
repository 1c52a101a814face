package domain

import "math"

// earthRadiusKM is the mean Earth radius in kilometers.
const earthRadiusKM = 6371.0

// HaversineKM returns the great-circle distance in kilometers between
// two coordinate pairs.
func HaversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKM * c
}

// Contains reports whether a coordinate pair lies within the point's
// search radius.
func (g *GeoPoint) Contains(lat, lon float64) bool {
	return HaversineKM(g.Latitude, g.Longitude, lat, lon) <= g.RadiusKM
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
