package filepulse

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// 2^63 as a float64; the smallest float64 above math.MaxInt64.
const twoPow63 = 9.223372036854775808e18

var (
	errNotNumeric     = errors.New("not a numeric value")
	errOutOfRange     = errors.New("value out of range")
	errLosesPrecision = errors.New("value cannot be represented exactly")
	errUnsupported    = errors.New("unsupported source kind")
)

// Convert coerces v into the Go representation of t. A nil v converts to nil.
// Only SHORT, INTEGER, LONG, FLOAT, DOUBLE, BOOLEAN, STRING and BYTES have a
// converter; other types fail with a conversion error unless v already has
// type t.
func (t Type) Convert(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch t {
	case TypeShort:
		return toInt16(v)
	case TypeInteger:
		return toInt32(v)
	case TypeLong:
		return toInt64(v)
	case TypeFloat:
		return toFloat32(v)
	case TypeDouble:
		return toFloat64(v)
	case TypeBoolean:
		return toBool(v)
	case TypeString:
		return toString(v)
	case TypeBytes:
		return toBytes(v)
	}
	if actual, ok := TypeOf(v); ok && actual == t {
		return v, nil
	}
	return nil, errConversion(v, t, errUnsupported)
}

// number unpacks a numeric Go value. isInt is true when the value is held as
// an integer in i; otherwise f carries it.
func number(v any) (i int64, f float64, isInt bool, ok bool) {
	switch n := v.(type) {
	case int:
		return int64(n), 0, true, true
	case int8:
		return int64(n), 0, true, true
	case int16:
		return int64(n), 0, true, true
	case int32:
		return int64(n), 0, true, true
	case int64:
		return n, 0, true, true
	case uint8:
		return int64(n), 0, true, true
	case uint16:
		return int64(n), 0, true, true
	case uint32:
		return int64(n), 0, true, true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, float64(n), false, true
		}
		return int64(n), 0, true, true
	case uint64:
		if n > math.MaxInt64 {
			return 0, float64(n), false, true
		}
		return int64(n), 0, true, true
	case float32:
		return 0, float64(n), false, true
	case float64:
		return 0, n, false, true
	case json.Number:
		if l, ok := parseLong(string(n)); ok {
			return l, 0, true, true
		}
		x, err := strconv.ParseFloat(string(n), 64)
		if err != nil {
			return 0, 0, false, false
		}
		return 0, x, false, true
	}
	return 0, 0, false, false
}

func toInt64(v any) (int64, error) {
	if s, ok := v.(string); ok {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, errConversion(v, TypeLong, err)
		}
		return n, nil
	}
	i, f, isInt, ok := number(v)
	if !ok {
		return 0, errConversion(v, TypeLong, errNotNumeric)
	}
	if isInt {
		return i, nil
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, errConversion(v, TypeLong, errLosesPrecision)
	}
	if f < -twoPow63 || f >= twoPow63 {
		return 0, errConversion(v, TypeLong, errOutOfRange)
	}
	return int64(f), nil
}

func toInt32(v any) (int32, error) {
	n, err := toInt64(v)
	if err != nil {
		return 0, retarget(err, v, TypeInteger)
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, errConversion(v, TypeInteger, errOutOfRange)
	}
	return int32(n), nil
}

func toInt16(v any) (int16, error) {
	n, err := toInt64(v)
	if err != nil {
		return 0, retarget(err, v, TypeShort)
	}
	if n < math.MinInt16 || n > math.MaxInt16 {
		return 0, errConversion(v, TypeShort, errOutOfRange)
	}
	return int16(n), nil
}

// retarget rewrites a conversion error raised for an intermediate type so
// that it names the requested one.
func retarget(err error, v any, t Type) error {
	if de, ok := AsDataError(err); ok {
		return errConversion(v, t, de.Cause)
	}
	return errConversion(v, t, err)
}

// exactFloat64 converts i to float64, reporting whether no precision is lost.
func exactFloat64(i int64) (float64, bool) {
	f := float64(i)
	if f >= twoPow63 {
		return f, false
	}
	return f, int64(f) == i
}

func toFloat64(v any) (float64, error) {
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, errConversion(v, TypeDouble, err)
		}
		return f, nil
	}
	i, f, isInt, ok := number(v)
	if !ok {
		return 0, errConversion(v, TypeDouble, errNotNumeric)
	}
	if !isInt {
		return f, nil
	}
	f, exact := exactFloat64(i)
	if !exact {
		return 0, errConversion(v, TypeDouble, errLosesPrecision)
	}
	return f, nil
}

func toFloat32(v any) (float32, error) {
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return 0, errConversion(v, TypeFloat, err)
		}
		return float32(f), nil
	}
	if f, ok := v.(float32); ok {
		return f, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, retarget(err, v, TypeFloat)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return float32(f), nil
	}
	if float64(float32(f)) != f {
		return 0, errConversion(v, TypeFloat, errLosesPrecision)
	}
	return float32(f), nil
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		switch {
		case strings.EqualFold(b, "true"):
			return true, nil
		case strings.EqualFold(b, "false"):
			return false, nil
		}
		return false, errConversion(v, TypeBoolean, fmt.Errorf("invalid boolean literal %q", b))
	}
	i, _, isInt, ok := number(v)
	if ok && isInt && (i == 0 || i == 1) {
		return i == 1, nil
	}
	return false, errConversion(v, TypeBoolean, errUnsupported)
}

func toString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	case bool:
		return strconv.FormatBool(s), nil
	case float32:
		return strconv.FormatFloat(float64(s), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64), nil
	case json.Number:
		return string(s), nil
	case *TypedStruct:
		return s.String(), nil
	}
	if i, _, isInt, ok := number(v); ok && isInt {
		return strconv.FormatInt(i, 10), nil
	}
	if u, ok := v.(uint64); ok {
		return strconv.FormatUint(u, 10), nil
	}
	if u, ok := v.(uint); ok {
		return strconv.FormatUint(uint64(u), 10), nil
	}
	b, err := marshalRaw(v)
	if err != nil {
		return "", errConversion(v, TypeString, err)
	}
	return string(b), nil
}

func toBytes(v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	}
	return nil, errConversion(v, TypeBytes, errUnsupported)
}
