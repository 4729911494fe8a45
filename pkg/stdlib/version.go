package stdlib

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a Python major.minor version.
type Version struct {
	Major int
	Minor int
}

// DefaultVersion is assumed when no interpreter reports its version.
var DefaultVersion = Version{Major: 3, Minor: 12}

// ParseVersion parses "3.12", "3.12.1" or "Python 3.12.1".
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "Python"))
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return Version{}, fmt.Errorf("invalid python version %q", s)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Version{}, fmt.Errorf("invalid python version %q: %w", s, err)
	}
	minor, err := strconv.Atoi(strings.TrimRightFunc(parts[1], func(r rune) bool { return r < '0' || r > '9' }))
	if err != nil {
		return Version{}, fmt.Errorf("invalid python version %q: %w", s, err)
	}
	return Version{Major: major, Minor: minor}, nil
}

// Less reports whether v sorts before o.
func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	return v.Minor < o.Minor
}

// IsZero reports whether v is unset.
func (v Version) IsZero() bool {
	return v == Version{}
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}
