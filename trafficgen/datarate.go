package trafficgen

import (
	"fmt"
	"strconv"
	"strings"
)

var rateUnits = []struct {
	suffix     string
	multiplier float64
}{
	// Longer suffixes first so that "kbps" is not read as "bps".
	{"KB/s", 8e3},
	{"MB/s", 8e6},
	{"B/s", 8},
	{"kbps", 1e3},
	{"Kbps", 1e3},
	{"Mbps", 1e6},
	{"Gbps", 1e9},
	{"kb/s", 1e3},
	{"Mb/s", 1e6},
	{"Gb/s", 1e9},
	{"bps", 1},
	{"b/s", 1},
}

// ParseDataRate converts strings such as "250kbps", "1Mbps" or "1.5MB/s" to
// bits per second.
func ParseDataRate(s string) (float64, error) {
	s = strings.TrimSpace(s)

	for _, u := range rateUnits {
		if !strings.HasSuffix(s, u.suffix) {
			continue
		}

		number := strings.TrimSpace(strings.TrimSuffix(s, u.suffix))

		v, err := strconv.ParseFloat(number, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: data rate %q", ErrInvalidConfig, s)
		}

		if !(v > 0) {
			return 0, fmt.Errorf("%w: data rate %q is not positive",
				ErrInvalidConfig, s)
		}

		return v * u.multiplier, nil
	}

	return 0, fmt.Errorf("%w: unknown unit in data rate %q", ErrInvalidConfig, s)
}
