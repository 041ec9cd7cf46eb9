package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"

	"github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/types"
)

var validate = validator.New()

// Station describes where the sensor is and the rain totals it had already
// recorded before this service began tracking them.
type Station struct {
	Latitude  float64 `yaml:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `yaml:"longitude" validate:"gte=-180,lte=180"`
	// Timezone is an IANA name used for calendar rollovers. Empty means the
	// process local zone.
	Timezone string `yaml:"timezone" validate:"omitempty,timezone"`
	TZOffset int    `yaml:"tz_offset" validate:"gte=-14,lte=14"`
	TZName   string `yaml:"tz_name"`

	Historical HistoricalSeed `yaml:"historical"`

	// Loaded is false when the file was missing and defaults are in use.
	Loaded bool `yaml:"-"`
}

type HistoricalSeed struct {
	TotalIn   float64 `yaml:"total_in" validate:"gte=0"`
	YearlyIn  float64 `yaml:"yearly_in" validate:"gte=0"`
	MonthlyIn float64 `yaml:"monthly_in" validate:"gte=0"`
	WeeklyIn  float64 `yaml:"weekly_in" validate:"gte=0"`
}

func DefaultStation() Station {
	return Station{
		TZName: "UTC",
		Historical: HistoricalSeed{
			TotalIn:   62.77,
			YearlyIn:  62.77,
			MonthlyIn: 4.27,
			WeeklyIn:  1.96,
		},
	}
}

// LoadStation reads the station YAML file. A missing file yields
// DefaultStation with Loaded=false; a malformed or out-of-range file is an
// error.
func LoadStation(path string) (Station, error) {
	st := DefaultStation()

	buf, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return Station{}, fmt.Errorf("read station config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(buf, &st); err != nil {
		return Station{}, fmt.Errorf("parse station config %s: %w", path, err)
	}
	if err := validate.Struct(st); err != nil {
		return Station{}, fmt.Errorf("invalid station config %s: %w", path, err)
	}

	st.Loaded = true
	return st, nil
}

// Location resolves the calendar zone.
func (s Station) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("station timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

func (s Station) Seed() types.HistoricalSeed {
	return types.HistoricalSeed{
		TotalIn:   s.Historical.TotalIn,
		YearlyIn:  s.Historical.YearlyIn,
		MonthlyIn: s.Historical.MonthlyIn,
		WeeklyIn:  s.Historical.WeeklyIn,
	}
}
