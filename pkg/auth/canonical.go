package auth

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// Separator joins the fields of a canonical message. It is never
	// escaped, so no string field may contain it.
	Separator = '|'

	// RequestPath is the route signed into every status request.
	RequestPath = "/check_status"

	// ResponsePath is signed into every status response. It differs from
	// RequestPath so a captured response never verifies as a request.
	ResponsePath = "/check_status_response"
)

// RequestMessage builds the canonical request message:
//
//	identity|timestamp|path
func RequestMessage(identity string, timestamp int64, path string) (CanonicalMessage, error) {
	if err := checkFields(map[string]string{"identity": identity, "path": path}); err != nil {
		return nil, err
	}

	return join(identity, strconv.FormatInt(timestamp, 10), path), nil
}

// ResponseMessage builds the canonical response message:
//
//	identity|active|expiry|serverTime|path
//
// where active is rendered as 1 or 0.
func ResponseMessage(identity string, active bool, expiry string, serverTime int64, path string) (CanonicalMessage, error) {
	if err := checkFields(map[string]string{"identity": identity, "expiry": expiry, "path": path}); err != nil {
		return nil, err
	}

	activeInt := "0"
	if active {
		activeInt = "1"
	}
	return join(identity, activeInt, expiry, strconv.FormatInt(serverTime, 10), path), nil
}

func checkFields(fields map[string]string) error {
	for name, value := range fields {
		if strings.ContainsRune(value, Separator) {
			return fmt.Errorf("%w: %s", ErrFieldContainsSeparator, name)
		}
	}
	return nil
}

func join(fields ...string) CanonicalMessage {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(Separator)
		}
		b.WriteString(f)
	}
	return CanonicalMessage(b.String())
}
