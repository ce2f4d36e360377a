package icp

import (
	"regexp"
	"strconv"
	"strings"
)

var countPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)(?:\s*(k|m)\b)?`)

// ParseEmployeeCount converts an employee-count string to a single number:
// the midpoint of a range ("51-200" -> 125.5), the lower bound of an open
// range ("500+" -> 500) or a bare number. Thousands separators and "k"/"m"
// multipliers are accepted. ok is false when no number is present.
func ParseEmployeeCount(s string) (value float64, ok bool) {
	s = strings.ToLower(strings.ReplaceAll(s, ",", ""))
	matches := countPattern.FindAllStringSubmatch(s, 2)
	if len(matches) == 0 {
		return 0, false
	}

	nums := make([]float64, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		switch m[2] {
		case "k":
			n *= 1_000
		case "m":
			n *= 1_000_000
		}
		nums = append(nums, n)
	}

	if len(nums) == 2 {
		return (nums[0] + nums[1]) / 2, true
	}
	return nums[0], true
}
