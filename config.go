package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ttpr0/go-transit/raptor"
	"golang.org/x/exp/slog"
	"gopkg.in/yaml.v3"
)

//**********************************************************
// config
//**********************************************************

// Reads and validates the config file. Missing values keep their defaults.
func ReadConfig(file string) (Config, error) {
	slog.Info("reading config file", "path", file)
	config := DefaultConfig()
	data, err := os.ReadFile(file)
	if err != nil {
		return config, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parse config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

type Config struct {
	Server  ServerOptions  `yaml:"server"`
	Sources SourceOptions  `yaml:"sources"`
	Planner PlannerOptions `yaml:"planner"`
}

type ServerOptions struct {
	Port        int      `yaml:"port" validate:"gt=0,lte=65535"`
	CorsOrigins []string `yaml:"cors-origins"`
	// deadline of a single plan request, <= 0 is unbounded
	RequestTimeout time.Duration `yaml:"request-timeout"`
}

type SourceOptions struct {
	OSM  string `yaml:"osm" validate:"required"`
	GTFS string `yaml:"gtfs" validate:"required"`
	// sqlite file holding the region transit-time table, empty disables it
	TransitTimes string `yaml:"transit-times"`
	// max distance in meters between a stop and its street node
	MaxSnap float64 `yaml:"max-snap" validate:"gt=0"`
	// region size in degrees, used by the prepare command
	CellSize  float64 `yaml:"cell-size" validate:"gt=0"`
	WalkSpeed float64 `yaml:"walk-speed" validate:"gt=0"`
}

type PlannerOptions struct {
	raptor.Options `yaml:",inline"`
	// default direction of requests that do not name one
	Mode SearchMode `yaml:"mode"`
}

func DefaultConfig() Config {
	return Config{
		Server: ServerOptions{
			Port:           5002,
			CorsOrigins:    []string{"*"},
			RequestTimeout: 30 * time.Second,
		},
		Sources: SourceOptions{
			MaxSnap:   300,
			CellSize:  0.05,
			WalkSpeed: 1.33,
		},
		Planner: PlannerOptions{
			Options: raptor.DefaultOptions(),
			Mode:    DEPART_AFTER,
		},
	}
}

var _validate = validator.New()

func (self *Config) Validate() error {
	if err := _validate.Struct(&self.Server); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}
	if err := _validate.Struct(&self.Sources); err != nil {
		return fmt.Errorf("invalid sources config: %w", err)
	}
	if err := self.Planner.Options.Validate(); err != nil {
		return fmt.Errorf("invalid planner defaults: %w", err)
	}
	return nil
}

//**********************************************************
// enums
//**********************************************************

type SearchMode byte

const (
	DEPART_AFTER SearchMode = 0
	ARRIVE_BY    SearchMode = 1
)

func (self SearchMode) String() string {
	switch self {
	case DEPART_AFTER:
		return "depart-after"
	case ARRIVE_BY:
		return "arrive-by"
	default:
		panic("unknown search mode")
	}
}
func (self SearchMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(self.String())
}
func (self *SearchMode) UnmarshalJSON(data []byte) error {
	var typ string
	err := json.Unmarshal(data, &typ)
	if err != nil {
		return err
	}
	*self, err = SearchModeFromString(typ)
	return err
}
func (self SearchMode) MarshalYAML() (any, error) {
	return self.String(), nil
}
func (self *SearchMode) UnmarshalYAML(value *yaml.Node) error {
	typ, err := SearchModeFromString(value.Value)
	if err != nil {
		return err
	}
	*self = typ
	return nil
}

func SearchModeFromString(s string) (SearchMode, error) {
	switch s {
	case "depart-after":
		return DEPART_AFTER, nil
	case "arrive-by":
		return ARRIVE_BY, nil
	default:
		return DEPART_AFTER, errors.New("unknown search mode")
	}
}
