package startup

import (
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Values is a read-only view over the loaded configuration. It satisfies
// preview.Config.
type Values struct {
	v *viper.Viper
}

// NewValues wraps v. A nil v behaves as an empty configuration.
func NewValues(v *viper.Viper) *Values {
	if v == nil {
		v = viper.New()
	}
	return &Values{v: v}
}

// Bool returns the boolean stored under key, or def when it is unset or not a
// boolean.
func (c *Values) Bool(key string, def bool) bool {
	if !c.v.IsSet(key) {
		return def
	}
	b, err := cast.ToBoolE(c.v.Get(key))
	if err != nil {
		return def
	}
	return b
}

// String returns the string stored under key, or def when it is unset or empty.
func (c *Values) String(key, def string) string {
	if !c.v.IsSet(key) {
		return def
	}
	s := strings.TrimSpace(c.v.GetString(key))
	if s == "" {
		return def
	}
	return s
}

// Strings returns the list stored under key. Values coming from the
// environment are split on commas.
func (c *Values) Strings(key string, def []string) []string {
	if !c.v.IsSet(key) {
		return def
	}

	var raw []string
	switch val := c.v.Get(key).(type) {
	case string:
		raw = strings.Split(val, ",")
	default:
		var err error
		raw, err = cast.ToStringSliceE(val)
		if err != nil {
			return def
		}
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// Int returns the integer stored under key, or def when it is unset or not a
// number.
func (c *Values) Int(key string, def int) int {
	if !c.v.IsSet(key) {
		return def
	}
	n, err := cast.ToIntE(c.v.Get(key))
	if err != nil {
		return def
	}
	return n
}

// Int64 returns the integer stored under key, or def when it is unset or not
// a number.
func (c *Values) Int64(key string, def int64) int64 {
	if !c.v.IsSet(key) {
		return def
	}
	n, err := cast.ToInt64E(c.v.Get(key))
	if err != nil {
		return def
	}
	return n
}

// Float64 returns the number stored under key, or def when it is unset or not
// a number.
func (c *Values) Float64(key string, def float64) float64 {
	if !c.v.IsSet(key) {
		return def
	}
	f, err := cast.ToFloat64E(c.v.Get(key))
	if err != nil {
		return def
	}
	return f
}
