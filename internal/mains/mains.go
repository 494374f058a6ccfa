// Package mains resolves the electrical mains frequency whose hum a noise
// profile is likely to carry.
package mains

import (
	"fmt"
	"strconv"
	"strings"

	tz "github.com/medama-io/go-timezone-country"
	"github.com/thlib/go-timezone-local/tzlocal"
)

// Supported mains frequencies (Hz)
const (
	Hz50 = 50
	Hz60 = 60

	// DefaultFrequency is used when the region cannot be determined.
	// 50 Hz covers most of the world's population.
	DefaultFrequency = Hz50
)

// Auto is the setting that selects Frequency()
const Auto = "auto"

// Frequency returns the local mains frequency in Hz (50 or 60), derived from
// the system timezone.
func Frequency() int {
	timezone, err := tzlocal.RuntimeTZ()
	if err != nil {
		return DefaultFrequency
	}
	return FrequencyForTimezone(timezone)
}

// FrequencyForTimezone returns the mains frequency for an IANA timezone name.
// Zones without a country (UTC, GMT, Etc/*) and unknown zones use
// DefaultFrequency.
func FrequencyForTimezone(timezone string) int {
	if timezone == "UTC" || timezone == "GMT" || strings.HasPrefix(timezone, "Etc/") {
		return DefaultFrequency
	}

	countries, err := tz.NewTimezoneCountryMap()
	if err != nil {
		return DefaultFrequency
	}
	country, err := countries.GetCountry(timezone)
	if err != nil {
		return DefaultFrequency
	}

	if sixtyHertz[country] {
		return Hz60
	}
	return DefaultFrequency
}

// Resolve turns a user setting into a frequency: "auto" (or empty) detects
// it from the timezone, "50" and "60" are taken literally.
func Resolve(setting string) (int, error) {
	switch s := strings.ToLower(strings.TrimSpace(setting)); s {
	case "", Auto:
		return Frequency(), nil
	default:
		hz, err := strconv.Atoi(strings.TrimSuffix(s, "hz"))
		if err != nil || (hz != Hz50 && hz != Hz60) {
			return 0, fmt.Errorf("mains frequency must be auto, 50 or 60, got %q", setting)
		}
		return hz, nil
	}
}

// Harmonics returns the fundamental and its multiples below nyquist, at most
// n frequencies.
func Harmonics(fundamental, nyquist float64, n int) []float64 {
	if fundamental <= 0 || n <= 0 {
		return nil
	}

	freqs := make([]float64, 0, n)
	for h := 1; h <= n; h++ {
		f := fundamental * float64(h)
		if f >= nyquist {
			break
		}
		freqs = append(freqs, f)
	}
	return freqs
}

// sixtyHertz lists countries on 60 Hz mains; everywhere else is 50 Hz.
// Japan is split by region and left at 50 Hz (the Tokyo side).
// Source: https://en.wikipedia.org/wiki/Mains_electricity_by_country
var sixtyHertz = map[string]bool{
	// North and Central America
	"United States": true,
	"Canada":        true,
	"Mexico":        true,
	"Belize":        true,
	"Costa Rica":    true,
	"El Salvador":   true,
	"Guatemala":     true,
	"Honduras":      true,
	"Nicaragua":     true,
	"Panama":        true,

	// Caribbean
	"Bahamas":             true,
	"Barbados":            true,
	"Cayman Islands":      true,
	"Cuba":                true,
	"Dominican Republic":  true,
	"Haiti":               true,
	"Jamaica":             true,
	"Puerto Rico":         true,
	"Trinidad and Tobago": true,
	"U.S. Virgin Islands": true,

	// South America; Brazil has both, 60 Hz predominates
	"Brazil":    true,
	"Colombia":  true,
	"Ecuador":   true,
	"Guyana":    true,
	"Peru":      true,
	"Suriname":  true,
	"Venezuela": true,

	// Asia and Pacific
	"South Korea":      true,
	"Taiwan":           true,
	"Philippines":      true,
	"Saudi Arabia":     true,
	"Guam":             true,
	"American Samoa":   true,
	"Marshall Islands": true,
	"Micronesia":       true,
	"Palau":            true,
}
