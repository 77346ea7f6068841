package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// startLayouts are tried before natural-language parsing. Layouts without
// a zone are read in the caller's location.
var startLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 3:04PM",
	"2006-01-02 3:04pm",
}

var naturalParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// ParseStart reads a user-entered start time. Relative phrases ("tomorrow
// at 10am", "next friday 14:00") are resolved against now in now's
// location. An empty input yields the zero time, which clears the draft's
// start.
func ParseStart(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, nil
	}

	loc := now.Location()
	for _, layout := range startLayouts {
		if t, err := time.ParseInLocation(layout, input, loc); err == nil {
			return t, nil
		}
	}

	r, err := naturalParser.Parse(strings.ToLower(input), now)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse start %q: %w", input, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("could not recognize start time %q", input)
	}
	return r.Time.In(loc).Truncate(time.Minute), nil
}
