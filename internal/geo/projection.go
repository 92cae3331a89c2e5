package geo

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ErrUnknownProjection is returned by ParseProjection for unsupported names.
var ErrUnknownProjection = errors.New("unknown projection")

// Projection maps between a planar source coordinate system and
// geographic lon/lat degrees.
type Projection interface {
	Name() string
	Inverse(x, y float64) (lon, lat float64)
	Forward(lon, lat float64) (x, y float64)
}

// usSurveyFoot is the length of one US survey foot in metres.
const usSurveyFoot = 1200.0 / 3937.0

var projections = map[string]func() Projection{
	"EPSG:2893": func() Projection {
		// NAD83(HARN) / Maryland (ftUS)
		return newLambertConic("EPSG:2893", ellipsoidGRS80, lccParams{
			lat1: 39.45, lat2: 38.3, lat0: 37.66666666666666, lon0: -77,
			x0: 399999.9998983998, y0: 0, unit: usSurveyFoot,
		})
	},
	"EPSG:26985": func() Projection {
		// NAD83 / Maryland
		return newLambertConic("EPSG:26985", ellipsoidGRS80, lccParams{
			lat1: 39.45, lat2: 38.3, lat0: 37.66666666666666, lon0: -77,
			x0: 400000, y0: 0, unit: 1,
		})
	},
	"EPSG:4326": func() Projection { return passthrough{} },
}

// DefaultProjection is the source coordinate system of the DC ATM dataset.
const DefaultProjection = "EPSG:2893"

// ParseProjection resolves a projection by EPSG code, case-insensitively.
func ParseProjection(name string) (Projection, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	if key == "" {
		key = DefaultProjection
	}
	if !strings.HasPrefix(key, "EPSG:") {
		key = "EPSG:" + key
	}
	ctor, ok := projections[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s (supported: %s)", ErrUnknownProjection, name, strings.Join(SupportedProjections(), ", "))
	}
	return ctor(), nil
}

// SupportedProjections lists the registered projection codes.
func SupportedProjections() []string {
	out := make([]string, 0, len(projections))
	for k := range projections {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type passthrough struct{}

func (passthrough) Name() string { return "EPSG:4326" }

func (passthrough) Inverse(x, y float64) (float64, float64) { return x, y }

func (passthrough) Forward(lon, lat float64) (float64, float64) { return lon, lat }

type ellipsoid struct {
	a float64
	e float64
}

func newEllipsoid(a, rf float64) ellipsoid {
	f := 1.0 / rf
	return ellipsoid{a: a, e: math.Sqrt(2*f - f*f)}
}

var ellipsoidGRS80 = newEllipsoid(6378137.0, 298.257222101)

type lccParams struct {
	lat1, lat2 float64 // standard parallels, degrees
	lat0, lon0 float64 // origin, degrees
	x0, y0     float64 // false easting/northing, metres
	unit       float64 // metres per input unit
}

// lambertConic is a Lambert Conformal Conic (2SP) projection on an ellipsoid.
type lambertConic struct {
	name string
	ell  ellipsoid
	p    lccParams
	n    float64
	f    float64
	rho0 float64
	lon0 float64
}

func newLambertConic(name string, ell ellipsoid, p lccParams) *lambertConic {
	phi1 := degToRad(p.lat1)
	phi2 := degToRad(p.lat2)
	phi0 := degToRad(p.lat0)
	m1 := msfn(ell.e, phi1)
	m2 := msfn(ell.e, phi2)
	t1 := tsfn(ell.e, phi1)
	t2 := tsfn(ell.e, phi2)
	t0 := tsfn(ell.e, phi0)

	l := &lambertConic{name: name, ell: ell, p: p, lon0: degToRad(p.lon0)}
	if math.Abs(phi1-phi2) > 1e-10 {
		l.n = (math.Log(m1) - math.Log(m2)) / (math.Log(t1) - math.Log(t2))
	} else {
		l.n = math.Sin(phi1)
	}
	l.f = m1 / (l.n * math.Pow(t1, l.n))
	l.rho0 = ell.a * l.f * math.Pow(t0, l.n)
	return l
}

func (l *lambertConic) Name() string { return l.name }

// Inverse converts planar x/y in the projection's unit to lon/lat degrees.
// Inputs far outside the projection's domain produce NaN or out-of-range
// values, which the Converter treats as invalid.
func (l *lambertConic) Inverse(x, y float64) (float64, float64) {
	xm := x*l.p.unit - l.p.x0
	ym := l.rho0 - (y*l.p.unit - l.p.y0)
	sign := 1.0
	if l.n < 0 {
		sign = -1
	}
	rho := sign * math.Hypot(xm, ym)
	theta := math.Atan2(sign*xm, sign*ym)
	if rho == 0 {
		lat := math.Copysign(90, l.n)
		return radToDeg(l.lon0), lat
	}
	t := math.Pow(rho/(l.ell.a*l.f), 1/l.n)
	lat, ok := phi2z(l.ell.e, t)
	if !ok {
		return math.NaN(), math.NaN()
	}
	lon := theta/l.n + l.lon0
	return radToDeg(lon), radToDeg(lat)
}

// Forward converts lon/lat degrees to planar x/y in the projection's unit.
func (l *lambertConic) Forward(lon, lat float64) (float64, float64) {
	phi := degToRad(lat)
	rho := l.ell.a * l.f * math.Pow(tsfn(l.ell.e, phi), l.n)
	theta := l.n * (degToRad(lon) - l.lon0)
	x := l.p.x0 + rho*math.Sin(theta)
	y := l.p.y0 + l.rho0 - rho*math.Cos(theta)
	return x / l.p.unit, y / l.p.unit
}

func msfn(e, phi float64) float64 {
	s := math.Sin(phi)
	return math.Cos(phi) / math.Sqrt(1-e*e*s*s)
}

func tsfn(e, phi float64) float64 {
	s := e * math.Sin(phi)
	return math.Tan(math.Pi/4-phi/2) / math.Pow((1-s)/(1+s), e/2)
}

// phi2z iterates latitude from the isometric t value.
func phi2z(e, t float64) (float64, bool) {
	const (
		maxIter = 15
		eps     = 1e-12
	)
	phi := math.Pi/2 - 2*math.Atan(t)
	for i := 0; i < maxIter; i++ {
		s := e * math.Sin(phi)
		next := math.Pi/2 - 2*math.Atan(t*math.Pow((1-s)/(1+s), e/2))
		if math.Abs(next-phi) < eps {
			return next, true
		}
		phi = next
	}
	return phi, !math.IsNaN(phi)
}

func degToRad(v float64) float64 { return v * math.Pi / 180.0 }
func radToDeg(v float64) float64 { return v * 180.0 / math.Pi }
