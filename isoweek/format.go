package isoweek

import (
	"fmt"
	"time"
)

const displayLayout = "02/01/2006 15:04"

// Formatter renders stored UTC instants in the configured local time zone.
type Formatter struct {
	loc *time.Location
}

func NewFormatter(loc *time.Location) *Formatter {
	return &Formatter{loc: loc}
}

// LoadFormatter resolves an IANA time zone name, e.g. "Africa/Ouagadougou".
func LoadFormatter(tz string) (*Formatter, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", tz, err)
	}
	return &Formatter{loc: loc}, nil
}

// Display renders t as DD/MM/YYYY HH:MM in the local zone.
func (f *Formatter) Display(t time.Time) string {
	return t.In(f.loc).Format(displayLayout)
}

// Now returns the current instant in the local zone.
func (f *Formatter) Now() time.Time {
	return time.Now().In(f.loc)
}

// CurrentWeek returns the ISO week identifier of the local current time.
func (f *Formatter) CurrentWeek() string {
	return FromDate(f.Now())
}
