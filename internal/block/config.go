package block

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// DefaultInterval is used when a fragment has no interval.
const DefaultInterval = 5 * time.Second

// IntervalConfig is the fragment shape shared by polling blocks.
type IntervalConfig struct {
	// Interval accepts seconds (5, 2.5, "5") or a duration literal ("750ms").
	Interval time.Duration `mapstructure:"interval"`
}

// DecodeIntervalConfig decodes a fragment that only knows "interval".
func DecodeIntervalConfig(kind string, fragment map[string]any) (IntervalConfig, error) {
	cfg := IntervalConfig{Interval: DefaultInterval}
	if err := Decode(kind, fragment, &cfg); err != nil {
		return IntervalConfig{}, err
	}
	if cfg.Interval <= 0 {
		return IntervalConfig{}, &ConfigError{
			Block: kind,
			Field: "interval",
			Err:   fmt.Errorf("must be positive, got %s", cfg.Interval),
		}
	}
	return cfg, nil
}

// Decode fills out from fragment. Fields already set on out act as defaults.
// Keys that do not map onto a field are rejected.
func Decode(kind string, fragment map[string]any, out any) error {
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       durationHook,
		Metadata:         &md,
		Result:           out,
		WeaklyTypedInput: false,
	})
	if err != nil {
		return &ConfigError{Block: kind, Err: err}
	}

	if err := dec.Decode(fragment); err != nil {
		return &ConfigError{Block: kind, Err: err}
	}

	if len(md.Unused) > 0 {
		sort.Strings(md.Unused)
		return &ConfigError{
			Block: kind,
			Field: md.Unused[0],
			Err:   fmt.Errorf("unknown field(s) %s", strings.Join(md.Unused, ", ")),
		}
	}
	return nil
}

var durationType = reflect.TypeOf(time.Duration(0))

var errBadDuration = errors.New("expected seconds or a duration literal")

func durationHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != durationType {
		return data, nil
	}

	switch v := data.(type) {
	case time.Duration:
		return v, nil
	case int:
		return intSeconds(int64(v))
	case int64:
		return intSeconds(v)
	case int32:
		return intSeconds(int64(v))
	case uint:
		return uintSeconds(uint64(v))
	case uint64:
		return uintSeconds(v)
	case float64:
		return floatSeconds(v)
	case float32:
		return floatSeconds(float64(v))
	case string:
		s := strings.TrimSpace(v)
		if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
			return intSeconds(secs)
		}
		if secs, err := strconv.ParseFloat(s, 64); err == nil {
			return floatSeconds(secs)
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", errBadDuration, v)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("%w: %T", errBadDuration, data)
	}
}

// maxSeconds is the largest whole number of seconds a time.Duration holds.
const maxSeconds = math.MaxInt64 / int64(time.Second)

func intSeconds(secs int64) (time.Duration, error) {
	if secs > maxSeconds || secs < -maxSeconds {
		return 0, fmt.Errorf("%w: %d seconds out of range", errBadDuration, secs)
	}
	return time.Duration(secs) * time.Second, nil
}

func uintSeconds(secs uint64) (time.Duration, error) {
	if secs > uint64(maxSeconds) {
		return 0, fmt.Errorf("%w: %d seconds out of range", errBadDuration, secs)
	}
	return time.Duration(secs) * time.Second, nil
}

func floatSeconds(secs float64) (time.Duration, error) {
	ns := secs * float64(time.Second)
	if math.IsNaN(ns) || ns >= math.MaxInt64 || ns <= math.MinInt64 {
		return 0, fmt.Errorf("%w: %v seconds out of range", errBadDuration, secs)
	}
	return time.Duration(ns), nil
}
