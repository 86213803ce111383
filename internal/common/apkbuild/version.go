package apkbuild

import (
	"regexp"
	"strconv"
	"strings"
)

// Suffix priorities relative to a plain release (0)
var suffixPriority = map[string]int{
	"alpha": -4,
	"beta":  -3,
	"pre":   -2,
	"rc":    -1,
	"cvs":   1,
	"svn":   2,
	"git":   3,
	"hg":    4,
	"p":     5,
}

// pkgverRegex matches a valid pkgver (no -rN revision)
var pkgverRegex = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*[a-z]?(_(alpha|beta|pre|rc|cvs|svn|git|hg|p)[0-9]*)*(~[0-9a-f]+)?$`)

// revisionRegex matches -r1, -r2, etc.
var revisionRegex = regexp.MustCompile(`-r(\d+)$`)

// suffixRegex matches _rc1, _beta2, _p, ...
var suffixRegex = regexp.MustCompile(`_([a-z]+)(\d*)`)

// ValidPkgver reports whether v is acceptable as a pkgver value
func ValidPkgver(v string) bool {
	return pkgverRegex.MatchString(v)
}

type suffix struct {
	priority int
	num      int
}

type parsedVersion struct {
	nums     []int
	letter   byte
	suffixes []suffix
	revision int
}

func parseVersion(v string) parsedVersion {
	var pv parsedVersion

	if matches := revisionRegex.FindStringSubmatch(v); matches != nil {
		pv.revision, _ = strconv.Atoi(matches[1])
		v = v[:len(v)-len(matches[0])]
	}

	// Commit hashes (~abc123) carry no ordering
	if i := strings.IndexByte(v, '~'); i >= 0 {
		v = v[:i]
	}

	if i := strings.IndexByte(v, '_'); i >= 0 {
		for _, m := range suffixRegex.FindAllStringSubmatch(v[i:], -1) {
			s := suffix{priority: suffixPriority[m[1]]}
			if m[2] != "" {
				s.num, _ = strconv.Atoi(m[2])
			}
			pv.suffixes = append(pv.suffixes, s)
		}
		v = v[:i]
	}

	if n := len(v); n > 0 && v[n-1] >= 'a' && v[n-1] <= 'z' {
		pv.letter = v[n-1]
		v = v[:n-1]
	}

	for _, p := range strings.Split(v, ".") {
		n, _ := strconv.Atoi(p)
		pv.nums = append(pv.nums, n)
	}

	return pv
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// CompareVersions compares two apk version strings (pkgver or
// pkgver-rN). Returns: -1 if v1 < v2, 0 if v1 == v2, 1 if v1 > v2
func CompareVersions(v1, v2 string) int {
	a, b := parseVersion(v1), parseVersion(v2)

	for i := 0; i < len(a.nums) && i < len(b.nums); i++ {
		if c := compareInt(a.nums[i], b.nums[i]); c != 0 {
			return c
		}
	}
	// 1.2.1 is newer than 1.2
	if c := compareInt(len(a.nums), len(b.nums)); c != 0 {
		return c
	}

	if c := compareInt(int(a.letter), int(b.letter)); c != 0 {
		return c
	}

	for i := 0; i < len(a.suffixes) || i < len(b.suffixes); i++ {
		var sa, sb suffix
		if i < len(a.suffixes) {
			sa = a.suffixes[i]
		}
		if i < len(b.suffixes) {
			sb = b.suffixes[i]
		}
		if c := compareInt(sa.priority, sb.priority); c != 0 {
			return c
		}
		if c := compareInt(sa.num, sb.num); c != 0 {
			return c
		}
	}

	return compareInt(a.revision, b.revision)
}
