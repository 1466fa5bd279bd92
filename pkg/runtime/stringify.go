package runtime

import (
	"fmt"
	"math"
	"strconv"
)

// Stringify renders a value the way print shows it.
func Stringify(val Value) string {
	switch v := val.(type) {
	case nil, NilValue:
		return "nil"
	case BoolValue:
		if v.Val {
			return "true"
		}
		return "false"
	case NumberValue:
		return formatNumber(v.Val)
	case StringValue:
		return v.Val
	case *Function:
		if name := v.Name(); name != "" {
			return fmt.Sprintf("<Function %s>", name)
		}
		return "<Anonymous function>"
	case *NativeFunction:
		return fmt.Sprintf("<Native function '%s'>", v.Name)
	case *Class:
		return fmt.Sprintf("<Class %s>", v.Name)
	case *Instance:
		return v.Class.Name + " instance"
	default:
		return fmt.Sprintf("[%s]", val.Kind())
	}
}

// formatNumber drops the fraction of whole numbers and switches to exponent
// form only for magnitudes where plain digits stop being readable.
func formatNumber(n float64) string {
	switch {
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case math.IsNaN(n):
		return "NaN"
	case math.Abs(n) >= 1e21:
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
