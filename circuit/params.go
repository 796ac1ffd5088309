package circuit

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// paramPattern matches a single parameter value: numbers, pi
// expressions, combinations, or a bare symbol name.
// Examples: "1.5707", "pi", "pi/2", "3*pi/4", "-pi", "3.14e-2", "theta"
const paramPattern = `-?(?:\d*\.?\d*\*?pi(?:/\d+\.?\d*)?|\d+\.?\d*(?:[eE][+\-]?\d+)?|[a-zA-Z_]\w*)`

// piExprRegex matches expressions like: pi, 2pi, 2*pi, pi/2, 3pi/4, -pi/2
var piExprRegex = regexp.MustCompile(`^(-?)(\d*\.?\d*)\s*\*?\s*pi(?:\s*/\s*(\d+\.?\d*))?$`)

var symbolRegex = regexp.MustCompile(`^[a-zA-Z_]\w*$`)

// ParseParamExpr parses a single parameter expression, supporting plain
// numbers and pi expressions. Returns the parsed value and true on
// success.
//
// Supported formats:
//   - Plain numbers: "1.5707", "3.14", "-0.5"
//   - Pi constant: "pi"
//   - Pi fractions: "pi/2", "pi/4", "pi/3"
//   - Coefficients: "2pi", "2*pi", "3pi/4", "3*pi/4"
//   - Negative: "-pi", "-pi/2", "-3*pi/4"
func ParseParamExpr(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	// Try plain number first
	if val, err := strconv.ParseFloat(s, 64); err == nil {
		return val, true
	}

	// Try pi expression
	s = strings.ToLower(s)
	if matches := piExprRegex.FindStringSubmatch(s); matches != nil {
		negative := matches[1] == "-"
		coeffStr := matches[2]
		denomStr := matches[3]

		coeff := 1.0
		if coeffStr != "" {
			var err error
			coeff, err = strconv.ParseFloat(coeffStr, 64)
			if err != nil {
				return 0, false
			}
		}

		result := coeff * math.Pi

		if denomStr != "" {
			denom, err := strconv.ParseFloat(denomStr, 64)
			if err != nil || denom == 0 {
				return 0, false
			}
			result /= denom
		}

		if negative {
			result = -result
		}
		return result, true
	}

	return 0, false
}

// ParseParam parses a parameter expression into a Param. A token that
// is neither a number nor a pi expression but is a valid identifier
// becomes a symbolic parameter.
func ParseParam(s string) (Param, bool) {
	s = strings.TrimSpace(s)
	if v, ok := ParseParamExpr(s); ok {
		return Num(v), true
	}
	if strings.ToLower(s) != "pi" && symbolRegex.MatchString(s) {
		return Sym(s), true
	}
	return Param{}, false
}

// FormatParam formats a parameter value, using pi notation when the
// value is close to a recognized pi fraction.
func FormatParam(val float64) string {
	type piForm struct {
		value   float64
		display string
	}
	piForms := []piForm{
		{2 * math.Pi, "2*pi"},
		{math.Pi, "pi"},
		{math.Pi / 2, "pi/2"},
		{math.Pi / 3, "pi/3"},
		{math.Pi / 4, "pi/4"},
		{math.Pi / 6, "pi/6"},
		{math.Pi / 8, "pi/8"},
		{3 * math.Pi / 4, "3*pi/4"},
		{3 * math.Pi / 2, "3*pi/2"},
		{2 * math.Pi / 3, "2*pi/3"},
	}

	for _, pf := range piForms {
		if math.Abs(val-pf.value) < 1e-10 {
			return pf.display
		}
		if math.Abs(val+pf.value) < 1e-10 {
			return "-" + pf.display
		}
	}

	return fmt.Sprintf("%g", val)
}
