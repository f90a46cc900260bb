// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamltags

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

func IsNull(value string) bool { return nullRegexp.MatchString(value) }

func ParseBool(value string) (bool, error) {
	switch value {
	case "true", "True", "TRUE":
		return true, nil
	case "false", "False", "FALSE":
		return false, nil
	}
	return false, fmt.Errorf("'%s' is not a boolean", value)
}

func ParseInt(value string, bitSize int) (int64, error) {
	digits, base := intDigits(value)
	result, err := strconv.ParseInt(digits, base, bitSize)
	if err != nil {
		return 0, fmt.Errorf("'%s' is not a %d-bit integer", value, bitSize)
	}
	return result, nil
}

func ParseUint(value string, bitSize int) (uint64, error) {
	digits, base := intDigits(value)
	result, err := strconv.ParseUint(digits, base, bitSize)
	if err != nil {
		return 0, fmt.Errorf("'%s' is not an unsigned %d-bit integer", value, bitSize)
	}
	return result, nil
}

func intDigits(value string) (string, int) {
	switch {
	case strings.HasPrefix(value, "0o"):
		return value[2:], 8
	case strings.HasPrefix(value, "0x"):
		return value[2:], 16
	default:
		return strings.TrimPrefix(value, "+"), 10
	}
}

func ParseFloat(value string, bitSize int) (float64, error) {
	switch value {
	case ".inf", ".Inf", ".INF", "+.inf", "+.Inf", "+.INF":
		return math.Inf(1), nil
	case "-.inf", "-.Inf", "-.INF":
		return math.Inf(-1), nil
	case ".nan", ".NaN", ".NAN":
		return math.NaN(), nil
	}
	result, err := strconv.ParseFloat(value, bitSize)
	if err != nil {
		return 0, fmt.Errorf("'%s' is not a %d-bit float", value, bitSize)
	}
	return result, nil
}

// FormatFloat renders floats so that they resolve back to !!float
// (integral values keep a ".0" suffix).
func FormatFloat(value float64, bitSize int) string {
	switch {
	case math.IsInf(value, 1):
		return ".inf"
	case math.IsInf(value, -1):
		return "-.inf"
	case math.IsNaN(value):
		return ".nan"
	}
	result := strconv.FormatFloat(value, 'g', -1, bitSize)
	if !strings.ContainsAny(result, ".eEn") {
		result += ".0"
	}
	return result
}
