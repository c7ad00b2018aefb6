package graph

import (
	"encoding/hex"
	"fmt"
	"time"
)

// CalendarDate is an ISO 8601 calendar date (YYYY-MM-DD) carried as a string.
// The string form sorts chronologically byte-wise, which the model relies on
// for temporal-overlap checks.
type CalendarDate string

// ParseCalendarDate validates s as a YYYY-MM-DD date.
func ParseCalendarDate(s string) (CalendarDate, error) {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return CalendarDate(s), nil
}

// MustDate is a test and literal helper; it panics on an invalid date.
func MustDate(s string) CalendarDate {
	d, err := ParseCalendarDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Before reports whether d is strictly earlier than other.
func (d CalendarDate) Before(other CalendarDate) bool { return d < other }

// After reports whether d is strictly later than other.
func (d CalendarDate) After(other CalendarDate) bool { return d > other }

func (d CalendarDate) String() string { return string(d) }

// datePtr returns a pointer copy, used by the builders.
func datePtr(d CalendarDate) *CalendarDate { return &d }

// FileSalt is the per-file redaction salt: 32 CSPRNG bytes stored as a
// 64-character lowercase hexadecimal string in the file header.
type FileSalt string

// ParseFileSalt validates s as a 64-char lowercase hex string.
func ParseFileSalt(s string) (FileSalt, error) {
	if len(s) != 64 {
		return "", fmt.Errorf("%w: want 64 hex chars, got %d", ErrInvalidSalt, len(s))
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		default:
			// Uppercase hex is rejected: the canonical salt form is lowercase
			// so that header comparison stays byte-wise.
			return "", fmt.Errorf("%w: non-lowercase-hex character %q", ErrInvalidSalt, c)
		}
	}
	return FileSalt(s), nil
}

// Bytes decodes the salt into its 32 raw bytes.
func (s FileSalt) Bytes() ([]byte, error) {
	if _, err := ParseFileSalt(string(s)); err != nil {
		return nil, err
	}
	raw, err := hex.DecodeString(string(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSalt, err)
	}
	return raw, nil
}

func (s FileSalt) String() string { return string(s) }
