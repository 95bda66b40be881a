package export

import (
	"fmt"
	"math"
	"strconv"
)

// roundFloat rounds v to the given number of decimals.
func roundFloat(v float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(v)
	}

	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}

// FormatDecimal formats a quantity for spreadsheets of the configured locale.
// With a "," decimal separator thousands are grouped with "." and the other
// way round. A zero fractional part is omitted.
// Example (","): 1234.5 with 2 decimals => "1.234,50"; 1000.0 => "1.000".
func FormatDecimal(v float64, decimals int, decimalSep string) string {
	thousandsSep := byte('.')
	if decimalSep == "." {
		thousandsSep = ','
	} else {
		decimalSep = ","
	}

	neg := v < 0
	if neg {
		v = -v
	}
	if decimals < 0 {
		decimals = 0
	}

	factor := int64(math.Pow(10, float64(decimals)))
	scaled := int64(math.Round(v * float64(factor)))
	intPart := scaled / factor
	fracPart := scaled % factor

	s := strconv.FormatInt(intPart, 10)
	if len(s) > 3 {
		var buf []byte
		count := 0
		for i := len(s) - 1; i >= 0; i-- {
			buf = append(buf, s[i])
			count++
			if count == 3 && i != 0 {
				buf = append(buf, thousandsSep)
				count = 0
			}
		}
		for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
			buf[i], buf[j] = buf[j], buf[i]
		}
		s = string(buf)
	}

	prefix := ""
	if neg && scaled != 0 {
		prefix = "-"
	}

	if decimals == 0 || fracPart == 0 {
		return prefix + s
	}

	fracStr := strconv.FormatInt(fracPart, 10)
	for len(fracStr) < decimals {
		fracStr = "0" + fracStr
	}

	return fmt.Sprintf("%s%s%s%s", prefix, s, decimalSep, fracStr)
}
