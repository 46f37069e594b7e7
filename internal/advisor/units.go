package advisor

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	xmxFormatRe = regexp.MustCompile(`-Xmx(\d+)(b|k|m|g|p|t|B|K|M|G|P|T)?`)
	xmxSizeRe   = regexp.MustCompile(`-Xmx(\d+)(.?)`)
	nonDigitRe  = regexp.MustCompile(`\D`)
)

var sizeMultipliers = map[byte]int64{
	'b': 1,
	'k': 1024,
	'm': 1024 * 1024,
	'g': 1024 * 1024 * 1024,
	't': 1024 * 1024 * 1024 * 1024,
	'p': 1024 * 1024 * 1024 * 1024 * 1024,
}

// toNumber drops every non-digit character and parses what is left.
// "1024m" -> 1024, "-Xmx2g" -> 2, "abc" -> false.
func toNumber(s string) (int64, bool) {
	digits := nonDigitRe.ReplaceAllString(s, "")
	if digits == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// checkXmxValueFormat reports whether value carries exactly one -Xmx flag.
func checkXmxValueFormat(value string) bool {
	return len(xmxFormatRe.FindAllString(value, -1)) == 1
}

// xmxSize extracts "<digits><unit>" from the first -Xmx flag of value.
func xmxSize(value string) string {
	m := xmxSizeRe.FindStringSubmatch(value)
	if m == nil {
		return ""
	}
	return m[1] + strings.ToLower(m[2])
}

// sizeToBytes converts "512m", "2g", "1024" etc. to bytes.
// A trailing digit or space, or an unknown unit, means bytes.
func sizeToBytes(size string) int64 {
	size = strings.ToLower(size)
	if size == "" {
		return 0
	}
	unit := size[len(size)-1]
	mult, ok := sizeMultipliers[unit]
	if !ok {
		mult = 1
	}
	n, _ := toNumber(size)
	return n * mult
}

// roundToN rounds x to the nearest multiple of n.
func roundToN(x float64, n int64) int64 {
	return int64(math.Round(x/float64(n))) * n
}

// parseNumber understands ints and floats; used by the min/max sweep.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return float64(i), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// formatValue renders a computed value the way it is stored in a config tree.
func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func xmxOpt(mb float64) string {
	return "-Xmx" + strconv.FormatInt(int64(math.Round(mb)), 10) + "m"
}
