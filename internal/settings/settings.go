// Package settings holds the reticle settings snapshot, its persistent key-value
// store and the saved profiles built on top of it.
package settings

import (
	"errors"
	"fmt"
	"math"

	"github.com/spf13/cast"
)

const (
	// MaxMagnitude bounds every numeric setting. Past it geometry no longer fits the
	// float32 coordinates used to rasterize the reticle.
	MaxMagnitude = 1 << 24
	// MaxSpinPeriod is the slowest spin in milliseconds: one turn a day.
	MaxSpinPeriod = 24 * 60 * 60 * 1000
)

var ErrOutOfRange = errors.New("value out of range")

type CenterShape string

const (
	CenterCircle CenterShape = "circle"
	CenterSquare CenterShape = "square"
)

// Settings is one immutable snapshot of every user-configurable reticle field.
type Settings struct {
	ShapeRendering string  `json:"shapeRendering"`
	Opacity        float64 `json:"opacity"`

	CircleDiameter    float64 `json:"circleDiameter"`
	CircleColor       string  `json:"circleColor"`
	CircleStrokeColor string  `json:"circleStrokeColor"`
	CircleStrokeSize  float64 `json:"circleStrokeSize"`
	CircleThickness   float64 `json:"circleThickness"`
	CircleEnabled     bool    `json:"circleEnabled"`

	CenterDiameter    float64     `json:"centerDiameter"`
	CenterColor       string      `json:"centerColor"`
	CenterStrokeColor string      `json:"centerStrokeColor"`
	CenterStrokeSize  float64     `json:"centerStrokeSize"`
	CenterEnabled     bool        `json:"centerEnabled"`
	CenterShape       CenterShape `json:"centerShape"`

	CrossLength      float64 `json:"crossLength"`
	CrossSpread      float64 `json:"crossSpread"`
	CrossThickness   float64 `json:"crossThickness"`
	CrossColor       string  `json:"crossColor"`
	CrossStrokeColor string  `json:"crossStrokeColor"`
	CrossStrokeSize  float64 `json:"crossStrokeSize"`
	CrossEnabled     bool    `json:"crossEnabled"`
	CrossSpinPeriod  int     `json:"crossSpinPeriod"`
	CrossRotation    float64 `json:"crossRotation"`
}

// Defaults returns the factory settings.
func Defaults() Settings {
	return Settings{
		ShapeRendering: "crispEdges",
		Opacity:        1,

		CircleDiameter:    40,
		CircleColor:       "#00ff00",
		CircleStrokeColor: "#000000",
		CircleStrokeSize:  1,
		CircleThickness:   2,
		CircleEnabled:     false,

		CenterDiameter:    4,
		CenterColor:       "#00ff00",
		CenterStrokeColor: "#000000",
		CenterStrokeSize:  1,
		CenterEnabled:     true,
		CenterShape:       CenterCircle,

		CrossLength:      10,
		CrossSpread:      4,
		CrossThickness:   2,
		CrossColor:       "#00ff00",
		CrossStrokeColor: "#000000",
		CrossStrokeSize:  1,
		CrossEnabled:     true,
		CrossSpinPeriod:  0,
		CrossRotation:    0,
	}
}

type field struct {
	key    string
	get    func(Settings) any
	decode func(*Settings, any) error
}

func stringField(key string, p func(*Settings) *string) field {
	return field{
		key: key,
		get: func(s Settings) any { return *p(&s) },
		decode: func(s *Settings, v any) error {
			str, err := cast.ToStringE(v)
			if err == nil {
				*p(s) = str
			}
			return err
		},
	}
}

func floatField(key string, p func(*Settings) *float64) field {
	return field{
		key: key,
		get: func(s Settings) any { return *p(&s) },
		decode: func(s *Settings, v any) error {
			f, err := toNumber(v, MaxMagnitude)
			if err == nil {
				*p(s) = f
			}
			return err
		},
	}
}

func boolField(key string, p func(*Settings) *bool) field {
	return field{
		key: key,
		get: func(s Settings) any { return *p(&s) },
		decode: func(s *Settings, v any) error {
			b, err := cast.ToBoolE(v)
			if err == nil {
				*p(s) = b
			}
			return err
		},
	}
}

// toNumber converts v leniently and rejects NaN, infinities and anything beyond limit.
func toNumber(v any, limit float64) (float64, error) {
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > limit {
		return 0, fmt.Errorf("%w: %v", ErrOutOfRange, v)
	}
	return f, nil
}

var fields = []field{
	stringField("shapeRendering", func(s *Settings) *string { return &s.ShapeRendering }),
	floatField("opacity", func(s *Settings) *float64 { return &s.Opacity }),

	floatField("circleDiameter", func(s *Settings) *float64 { return &s.CircleDiameter }),
	stringField("circleColor", func(s *Settings) *string { return &s.CircleColor }),
	stringField("circleStrokeColor", func(s *Settings) *string { return &s.CircleStrokeColor }),
	floatField("circleStrokeSize", func(s *Settings) *float64 { return &s.CircleStrokeSize }),
	floatField("circleThickness", func(s *Settings) *float64 { return &s.CircleThickness }),
	boolField("circleEnabled", func(s *Settings) *bool { return &s.CircleEnabled }),

	floatField("centerDiameter", func(s *Settings) *float64 { return &s.CenterDiameter }),
	stringField("centerColor", func(s *Settings) *string { return &s.CenterColor }),
	stringField("centerStrokeColor", func(s *Settings) *string { return &s.CenterStrokeColor }),
	floatField("centerStrokeSize", func(s *Settings) *float64 { return &s.CenterStrokeSize }),
	boolField("centerEnabled", func(s *Settings) *bool { return &s.CenterEnabled }),
	{
		key: "centerShape",
		get: func(s Settings) any { return string(s.CenterShape) },
		decode: func(s *Settings, v any) error {
			str, err := cast.ToStringE(v)
			if err == nil {
				s.CenterShape = CenterShape(str)
			}
			return err
		},
	},

	floatField("crossLength", func(s *Settings) *float64 { return &s.CrossLength }),
	floatField("crossSpread", func(s *Settings) *float64 { return &s.CrossSpread }),
	floatField("crossThickness", func(s *Settings) *float64 { return &s.CrossThickness }),
	stringField("crossColor", func(s *Settings) *string { return &s.CrossColor }),
	stringField("crossStrokeColor", func(s *Settings) *string { return &s.CrossStrokeColor }),
	floatField("crossStrokeSize", func(s *Settings) *float64 { return &s.CrossStrokeSize }),
	boolField("crossEnabled", func(s *Settings) *bool { return &s.CrossEnabled }),
	{
		key: "crossSpinPeriod",
		get: func(s Settings) any { return s.CrossSpinPeriod },
		decode: func(s *Settings, v any) error {
			// form values may carry a fraction; the period is whole milliseconds
			f, err := toNumber(v, MaxSpinPeriod)
			if err == nil {
				s.CrossSpinPeriod = int(f)
			}
			return err
		},
	},
	floatField("crossRotation", func(s *Settings) *float64 { return &s.CrossRotation }),
}

var fieldIndex = func() map[string]field {
	m := make(map[string]field, len(fields))
	for _, f := range fields {
		m[f.key] = f
	}
	return m
}()

// Keys returns the canonical setting keys in declaration order.
func Keys() []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.key
	}
	return out
}

// IsKey reports whether key is a canonical setting key.
func IsKey(key string) bool {
	_, ok := fieldIndex[key]
	return ok
}

// Values returns the snapshot as a key → value map.
func (s Settings) Values() map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		out[f.key] = f.get(s)
	}
	return out
}

// FromValues builds a snapshot on top of Defaults. Unknown keys are ignored and values
// that cannot be converted keep the default for their key.
func FromValues(values map[string]any) Settings {
	s := Defaults()
	s.Merge(values)
	return s
}

// Merge overwrites the fields present in values and returns the keys that failed to convert.
func (s *Settings) Merge(values map[string]any) (invalid []string) {
	for key, value := range values {
		f, ok := fieldIndex[key]
		if !ok {
			continue
		}
		if err := f.decode(s, value); err != nil {
			invalid = append(invalid, key)
		}
	}
	return invalid
}
