package perfusion

import (
	"fmt"
	"regexp"
	"strconv"
)

// compositeRe matches composite column names like "VCD_D-10"
var compositeRe = regexp.MustCompile(`^(.+)_D-(\d+)$`)

// CompositeColumn uniquely identifies one metric at one timepoint
type CompositeColumn struct {
	Base string
	Day  int
}

// Name renders the composite column identifier
func (c CompositeColumn) Name() string {
	return fmt.Sprintf("%s_D-%d", c.Base, c.Day)
}

// ParseComposite splits a composite column name into its base metric and day
// offset. Plain column names report ok=false.
func ParseComposite(name string) (CompositeColumn, bool) {
	m := compositeRe.FindStringSubmatch(name)
	if m == nil {
		return CompositeColumn{}, false
	}
	day, err := strconv.Atoi(m[2])
	if err != nil {
		return CompositeColumn{}, false
	}
	return CompositeColumn{Base: m[1], Day: day}, true
}

// CompositePattern returns a matcher for every timepoint column of one base
// metric, e.g. "VCD_D-0", "VCD_D-3", ...
func CompositePattern(base string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(base) + `_D-\d+$`)
}
