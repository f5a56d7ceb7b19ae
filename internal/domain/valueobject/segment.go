package valueobject

import (
	"strings"
)

// Segment is the customer segment that selects default credit parameters.
type Segment string

const (
	SegmentCorporativo Segment = "corporativo"
	SegmentStartup     Segment = "startup"
	SegmentPyme        Segment = "pyme"
	SegmentDefault     Segment = "default"
)

// Segments lists every segment, default last.
func Segments() []Segment {
	return []Segment{SegmentCorporativo, SegmentStartup, SegmentPyme, SegmentDefault}
}

// SegmentFromCompanyType derives the segment from a free-text company type.
// The checks run in order, so "corp startup" is corporativo.
func SegmentFromCompanyType(companyType string) Segment {
	t := strings.ToLower(companyType)
	switch {
	case strings.Contains(t, "corp"):
		return SegmentCorporativo
	case strings.Contains(t, "start"):
		return SegmentStartup
	case strings.Contains(t, "pyme"), strings.Contains(t, "sme"):
		return SegmentPyme
	default:
		return SegmentDefault
	}
}

// ParseSegment accepts a segment name, returning false when unknown.
func ParseSegment(s string) (Segment, bool) {
	for _, seg := range Segments() {
		if string(seg) == s {
			return seg, true
		}
	}
	return "", false
}
