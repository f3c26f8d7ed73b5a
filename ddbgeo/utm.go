package ddbgeo

import "math"

// UTMToWGS84 converts an easting/northing pair in a UTM zone to geographic
// coordinates on the WGS84 ellipsoid, using the standard Karney/Snyder
// closed-form inverse transverse Mercator series. This is the one
// reprojection raster/point-cloud extractors need for the common case of a
// UTM-projected source (§4.2's "reproject to EPSG:4326" contract) without
// pulling in a full PROJ binding, which is an explicit external
// collaborator per §1.
func UTMToWGS84(easting, northing float64, zone int, northernHemisphere bool) Point {
	const (
		a  = 6378137.0
		f  = 1 / 298.257223563
		e2 = f * (2 - f)
		ep2 = e2 / (1 - e2)
		k0 = 0.9996
	)

	x := easting - 500000.0
	y := northing
	if !northernHemisphere {
		y -= 10000000.0
	}

	m := y / k0
	mu := m / (a * (1 - e2/4 - 3*e2*e2/64 - 5*e2*e2*e2/256))

	e1 := (1 - math.Sqrt(1-e2)) / (1 + math.Sqrt(1-e2))
	j1 := 3*e1/2 - 27*e1*e1*e1/32
	j2 := 21*e1*e1/16 - 55*e1*e1*e1*e1/32
	j3 := 151 * e1 * e1 * e1 / 96
	j4 := 1097 * e1 * e1 * e1 * e1 / 512

	fp := mu + j1*math.Sin(2*mu) + j2*math.Sin(4*mu) + j3*math.Sin(6*mu) + j4*math.Sin(8*mu)

	sinFp := math.Sin(fp)
	cosFp := math.Cos(fp)
	tanFp := sinFp / cosFp

	c1 := ep2 * cosFp * cosFp
	t1 := tanFp * tanFp
	r1 := a * (1 - e2) / math.Pow(1-e2*sinFp*sinFp, 1.5)
	n1 := a / math.Sqrt(1-e2*sinFp*sinFp)
	d := x / (n1 * k0)

	lat := fp - (n1*tanFp/r1)*(d*d/2-(5+3*t1+10*c1-4*c1*c1-9*ep2)*d*d*d*d/24+
		(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*d*d*d*d*d*d/720)

	lon := (d - (1+2*t1+c1)*d*d*d/6 +
		(5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*d*d*d*d*d/120) / cosFp

	centralMeridian := float64(zone)*6 - 183

	return Point{
		Lat: lat * 180 / math.Pi,
		Lon: centralMeridian + lon*180/math.Pi,
	}
}

// UTMZoneFromEPSG reports the UTM zone and hemisphere encoded by a WGS84
// UTM EPSG code (326xx northern, 327xx southern), or ok=false if epsg is
// not a recognized UTM code.
func UTMZoneFromEPSG(epsg int) (zone int, north bool, ok bool) {
	switch {
	case epsg >= 32601 && epsg <= 32660:
		return epsg - 32600, true, true
	case epsg >= 32701 && epsg <= 32760:
		return epsg - 32700, false, true
	default:
		return 0, false, false
	}
}

// ReprojectToWGS84 converts a point from a source EPSG code to EPSG:4326.
// EPSG:4326 and an unset code (0) are returned unchanged with ok=true; a
// recognized UTM code is run
// through UTMToWGS84; any other code is returned unchanged with ok=false
// so the caller can decide whether to keep or discard the geometry — full
// general-purpose reprojection is an explicit non-goal (§1).
func ReprojectToWGS84(x, y float64, epsg int) (Point, bool) {
	if epsg == 4326 || epsg == 0 {
		return Point{Lon: x, Lat: y}, true
	}
	if zone, north, ok := UTMZoneFromEPSG(epsg); ok {
		return UTMToWGS84(x, y, zone, north), true
	}
	return Point{Lon: x, Lat: y}, false
}
