package builder

import (
	"fmt"
	"strconv"
	"strings"
	"time"

)

const dateLayout = "2006-01-02"

// parseDate parses a ClinVar date. Values carry either a bare date or a full
// timestamp; only the date part is kept. An empty value yields nil.
func parseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if len(value) > len(dateLayout) {
		value = value[:len(dateLayout)]
	}
	d, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("date %q: %w", value, err)
	}
	return &d, nil
}

func parseUint(value string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(value), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("number %q: %w", value, err)
	}
	return uint32(v), nil
}

func setUint(dst *uint32, value string) error {
	v, err := parseUint(value)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// setOptUint sets an optional number; an empty value leaves it unset
func setOptUint(dst **uint32, value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	v, err := parseUint(value)
	if err != nil {
		return err
	}
	*dst = &v
	return nil
}

func optString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
