package shared

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Year reads the "year" query parameter, defaulting to the current
// year. A malformed value is an error rather than a silent default.
func Year(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("year"))
	if raw == "" {
		return time.Now().Year(), nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1900 || year > 9999 {
		return 0, fmt.Errorf("year must be a four digit number")
	}
	return year, nil
}

// Days parses a day amount that must be present and not negative.
func Days(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("days is required")
	}
	days, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("days must be a number")
	}
	if days.IsNegative() {
		return decimal.Zero, fmt.Errorf("days must not be negative")
	}
	return days, nil
}
