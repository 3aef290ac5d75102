// Package featureflags switches site features on and off from configuration.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Known flags. Both default to on.
const (
	// Registration controls the sign-up pages.
	Registration = "registration"
	// Comments controls adding new comments. Editing and deleting stay available.
	Comments = "comments"
)

var defaults = map[string]string{
	Registration: "on",
	Comments:     "on",
}

// Flags evaluates a "name=value" list such as "registration=off,comments=25%".
// Values are on/off (or true/false, 1/0) or a percentage rolled out by user ID.
type Flags struct {
	values map[string]string
}

// Parse reads the FEATURE_FLAGS setting. Unknown names are rejected so a typo
// cannot silently leave a feature open.
func Parse(raw string) (*Flags, error) {
	values := make(map[string]string, len(defaults))
	for k, v := range defaults {
		values[k] = v
	}

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		key, value = normalize(key), normalize(value)
		if !ok || key == "" || value == "" {
			return nil, fmt.Errorf("feature flag %q: want name=value", pair)
		}
		if _, known := defaults[key]; !known {
			return nil, fmt.Errorf("unknown feature flag %q", key)
		}
		if _, err := evaluate(value, key, 0); err != nil {
			return nil, fmt.Errorf("feature flag %q: %w", key, err)
		}
		values[key] = value
	}
	return &Flags{values: values}, nil
}

// Default returns the flags with every feature on.
func Default() *Flags {
	f, _ := Parse("")
	return f
}

// Enabled reports whether the feature is on for the user. Anonymous visitors
// (userID 0) only see features that are fully on.
func (f *Flags) Enabled(name string, userID uint) bool {
	if f == nil {
		f = Default()
	}
	value, ok := f.values[normalize(name)]
	if !ok {
		return false
	}
	on, _ := evaluate(value, normalize(name), userID)
	return on
}

func evaluate(value, name string, userID uint) (bool, error) {
	switch value {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}

	pctRaw, ok := strings.CutSuffix(value, "%")
	if !ok {
		return false, fmt.Errorf("unsupported value %q", value)
	}
	pct, err := strconv.Atoi(pctRaw)
	if err != nil || pct < 0 || pct > 100 {
		return false, fmt.Errorf("bad percentage %q", value)
	}
	switch {
	case pct == 0:
		return false, nil
	case pct == 100:
		return true, nil
	case userID == 0:
		return false, nil
	}
	return rolloutBucket(name, userID) < pct, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// rolloutBucket places a user in 0..99, stable per flag.
func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", name, userID)
	return int(h.Sum32() % 100)
}
