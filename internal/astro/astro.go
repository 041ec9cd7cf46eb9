// Package astro computes sun and moon figures for the UTC day containing a
// given instant. Sun times follow the NOAA solar calculator formulas; the moon
// phase uses a mean synodic month, which is good to within a few hours.
package astro

import (
	"math"
	"time"
)

const (
	zenithOfficial = 90.833
	zenithCivil    = 96.0

	// JD of a reference new moon (2000-01-06) and the mean synodic month.
	newMoonEpochJD = 2451550.1
	synodicMonth   = 29.530588853

	unixEpochJD = 2440587.5
)

var segmentNames = [8]string{
	"New",
	"Waxing Crescent",
	"First Quarter",
	"Waxing Gibbous",
	"Full",
	"Waning Gibbous",
	"Last Quarter",
	"Waning Crescent",
}

// Sun holds event instants in unix seconds. An instant is nil when the event
// does not happen that day (polar day or night).
type Sun struct {
	SunriseTS          *int64 `json:"sunrise_ts"`
	SunsetTS           *int64 `json:"sunset_ts"`
	CivilSunriseTS     *int64 `json:"civil_sunrise_ts"`
	CivilSunsetTS      *int64 `json:"civil_sunset_ts"`
	LengthOfDaySec     int64  `json:"length_of_day_sec"`
	LengthOfVisibleSec int64  `json:"length_of_visible_sec"`
}

type Moon struct {
	JulianDay int     `json:"julian_day"`
	Phase     float64 `json:"phase"`
	Segment   string  `json:"segment"`
	// Visible is the illuminated fraction of the disc.
	Visible float64 `json:"visible"`
}

type Report struct {
	Sun        Sun    `json:"sun"`
	Moon       Moon   `json:"moon"`
	GMTOffset  int    `json:"gmt_offset"`
	MidnightTS int64  `json:"midnight_ts"`
	TimeZone   string `json:"time_zone"`
}

// Compute returns the report for the UTC day containing now at the given
// position (degrees, north and east positive).
func Compute(now time.Time, lat, lon float64) Report {
	u := now.UTC()
	midnight := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).Unix()
	jd0 := float64(midnight)/86400 + unixEpochJD

	rise, riseState := eventMinutes(jd0, lat, lon, zenithOfficial, true)
	set, _ := eventMinutes(jd0, lat, lon, zenithOfficial, false)
	civilRise, civilState := eventMinutes(jd0, lat, lon, zenithCivil, true)
	civilSet, _ := eventMinutes(jd0, lat, lon, zenithCivil, false)

	sun := Sun{
		SunriseTS:      toTS(midnight, rise),
		SunsetTS:       toTS(midnight, set),
		CivilSunriseTS: toTS(midnight, civilRise),
		CivilSunsetTS:  toTS(midnight, civilSet),
	}
	sun.LengthOfDaySec = span(sun.SunriseTS, sun.SunsetTS, riseState)
	sun.LengthOfVisibleSec = span(sun.CivilSunriseTS, sun.CivilSunsetTS, civilState)

	return Report{
		Sun:        sun,
		Moon:       moonFor(jd0),
		GMTOffset:  0,
		MidnightTS: midnight,
		TimeZone:   "UTC",
	}
}

type horizonState int

const (
	crosses horizonState = iota
	alwaysAbove
	alwaysBelow
)

// eventMinutes returns the event time in minutes after UTC midnight of jd0.
func eventMinutes(jd0, lat, lon, zenith float64, rising bool) (float64, horizonState) {
	t := julianCent(jd0)
	mins, state := solveEvent(t, lat, lon, zenith, rising)
	if state != crosses {
		return math.NaN(), state
	}
	// One refinement with the sun's position at the first estimate.
	t = julianCent(jd0 + mins/1440)
	return solveEvent(t, lat, lon, zenith, rising)
}

func solveEvent(t, lat, lon, zenith float64, rising bool) (float64, horizonState) {
	eqTime := equationOfTime(t)
	decl := sunDeclination(t)

	latR := radians(lat)
	declR := radians(decl)
	cosHA := math.Cos(radians(zenith))/(math.Cos(latR)*math.Cos(declR)) - math.Tan(latR)*math.Tan(declR)
	switch {
	case cosHA > 1:
		return math.NaN(), alwaysBelow
	case cosHA < -1:
		return math.NaN(), alwaysAbove
	}

	ha := degrees(math.Acos(cosHA))
	if !rising {
		ha = -ha
	}
	return 720 - 4*(lon+ha) - eqTime, crosses
}

func toTS(midnight int64, mins float64) *int64 {
	if math.IsNaN(mins) {
		return nil
	}
	ts := midnight + int64(math.Round(mins*60))
	return &ts
}

func span(from, to *int64, state horizonState) int64 {
	if from == nil || to == nil {
		if state == alwaysAbove {
			return 86400
		}
		return 0
	}
	return max(*to-*from, 0)
}

func moonFor(jd0 float64) Moon {
	jdn := int(math.Floor(jd0 + 0.5))

	phase := math.Mod((float64(jdn)-newMoonEpochJD)/synodicMonth, 1)
	if phase < 0 {
		phase++
	}

	return Moon{
		JulianDay: jdn,
		Phase:     phase,
		Segment:   segmentNames[int(phase*8+0.5)%8],
		Visible:   (1 - math.Cos(2*math.Pi*phase)) / 2,
	}
}

func julianCent(jd float64) float64 {
	return (jd - 2451545.0) / 36525.0
}

func geomMeanLongSun(t float64) float64 {
	l0 := math.Mod(280.46646+t*(36000.76983+0.0003032*t), 360)
	if l0 < 0 {
		l0 += 360
	}
	return l0
}

func geomMeanAnomalySun(t float64) float64 {
	return 357.52911 + t*(35999.05029-0.0001537*t)
}

func eccentricityEarthOrbit(t float64) float64 {
	return 0.016708634 - t*(0.000042037+0.0000001267*t)
}

func sunEqOfCenter(t float64) float64 {
	m := radians(geomMeanAnomalySun(t))
	return math.Sin(m)*(1.914602-t*(0.004817+0.000014*t)) +
		math.Sin(2*m)*(0.019993-0.000101*t) +
		math.Sin(3*m)*0.000289
}

func sunApparentLong(t float64) float64 {
	trueLong := geomMeanLongSun(t) + sunEqOfCenter(t)
	omega := 125.04 - 1934.136*t
	return trueLong - 0.00569 - 0.00478*math.Sin(radians(omega))
}

func meanObliquityOfEcliptic(t float64) float64 {
	seconds := 21.448 - t*(46.8150+t*(0.00059-t*0.001813))
	return 23 + (26+seconds/60)/60
}

func obliquityCorrection(t float64) float64 {
	omega := 125.04 - 1934.136*t
	return meanObliquityOfEcliptic(t) + 0.00256*math.Cos(radians(omega))
}

func sunDeclination(t float64) float64 {
	e := radians(obliquityCorrection(t))
	lambda := radians(sunApparentLong(t))
	return degrees(math.Asin(math.Sin(e) * math.Sin(lambda)))
}

// equationOfTime is in minutes.
func equationOfTime(t float64) float64 {
	epsilon := radians(obliquityCorrection(t))
	l0 := radians(geomMeanLongSun(t))
	e := eccentricityEarthOrbit(t)
	m := radians(geomMeanAnomalySun(t))

	y := math.Tan(epsilon / 2)
	y *= y

	eTime := y*math.Sin(2*l0) -
		2*e*math.Sin(m) +
		4*e*y*math.Sin(m)*math.Cos(2*l0) -
		0.5*y*y*math.Sin(4*l0) -
		1.25*e*e*math.Sin(2*m)
	return degrees(eTime) * 4
}

func radians(d float64) float64 { return d * math.Pi / 180 }
func degrees(r float64) float64 { return r * 180 / math.Pi }
