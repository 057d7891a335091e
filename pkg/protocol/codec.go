package protocol

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// settingCodec converts between a setting's uint16 register and its Go value.
type settingCodec interface {
	decode(name string, raw uint64) (any, error)
	encode(name string, v any) (uint16, error)
	parse(name string, s string) (any, error)
	describe() string
}

// decodeUint assembles a little-endian unsigned integer of 1 to maxLen bytes.
func decodeUint(name string, payload []byte, maxLen int) (uint64, error) {
	if len(payload) == 0 || len(payload) > maxLen {
		return 0, &DecodeError{
			Characteristic: name,
			Payload:        payload,
			Reason:         fmt.Sprintf("expected 1 to %d bytes, got %d", maxLen, len(payload)),
		}
	}
	var buf [8]byte
	copy(buf[:], payload)
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func encodeUint16(raw uint16) []byte {
	return binary.LittleEndian.AppendUint16(nil, raw)
}

// toInt accepts any Go integer, integral floats and json.Number.
func toInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	case float32:
		return toInt(float64(x))
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) || x > math.MaxInt64 || x < math.MinInt64 {
			return 0, false
		}
		return int64(x), true
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x) && !math.IsInf(x, 0)
	case float32:
		return toFloat(float64(x))
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	if n, ok := toInt(v); ok {
		return float64(n), true
	}
	return 0, false
}

func typeError(name string, v any, want string) error {
	return &ValueError{Characteristic: name, Value: v, Reason: fmt.Sprintf("expected %s, got %T", want, v)}
}

type intCodec struct {
	min, max int64
}

func (c intCodec) decode(_ string, raw uint64) (any, error) {
	return int(raw), nil
}

func (c intCodec) encode(name string, v any) (uint16, error) {
	n, ok := toInt(v)
	if !ok {
		return 0, typeError(name, v, "integer")
	}
	if n < c.min || n > c.max {
		return 0, &RangeError{Characteristic: name, Value: n, Min: c.min, Max: c.max}
	}
	return uint16(n), nil
}

func (c intCodec) parse(name string, s string) (any, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil, &ValueError{Characteristic: name, Value: s, Reason: "expected integer"}
	}
	return int(n), nil
}

func (c intCodec) describe() string {
	return fmt.Sprintf("integer %d..%d", c.min, c.max)
}

// deciCodec stores tenths: raw 33 is 3.3. min and max are raw register bounds.
type deciCodec struct {
	min, max int64
}

func (c deciCodec) decode(_ string, raw uint64) (any, error) {
	return float64(raw) / 10, nil
}

func (c deciCodec) encode(name string, v any) (uint16, error) {
	f, ok := toFloat(v)
	if !ok {
		return 0, typeError(name, v, "number")
	}
	raw := int64(math.Round(f * 10))
	if raw < c.min || raw > c.max {
		return 0, &RangeError{Characteristic: name, Value: f, Min: float64(c.min) / 10, Max: float64(c.max) / 10}
	}
	return uint16(raw), nil
}

func (c deciCodec) parse(name string, s string) (any, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, &ValueError{Characteristic: name, Value: s, Reason: "expected number"}
	}
	return f, nil
}

func (c deciCodec) describe() string {
	return fmt.Sprintf("number %.1f..%.1f", float64(c.min)/10, float64(c.max)/10)
}

// stepCodec stores value/step: hall sleep time 25 s is raw 5.
type stepCodec struct {
	step, max int64
}

func (c stepCodec) decode(_ string, raw uint64) (any, error) {
	return int(int64(raw) * c.step), nil
}

func (c stepCodec) encode(name string, v any) (uint16, error) {
	n, ok := toInt(v)
	if !ok {
		return 0, typeError(name, v, "integer")
	}
	if n < 0 || n > c.max {
		return 0, &RangeError{Characteristic: name, Value: n, Min: 0, Max: c.max}
	}
	if n%c.step != 0 {
		return 0, &ValueError{Characteristic: name, Value: n, Reason: fmt.Sprintf("must be a multiple of %d", c.step)}
	}
	return uint16(n / c.step), nil
}

func (c stepCodec) parse(name string, s string) (any, error) {
	return intCodec{}.parse(name, s)
}

func (c stepCodec) describe() string {
	return fmt.Sprintf("integer 0..%d in steps of %d", c.max, c.step)
}

// brightnessCodec maps the register 1, 26, 51, 76, 101 onto levels 1 to 5.
type brightnessCodec struct{}

func (brightnessCodec) decode(_ string, raw uint64) (any, error) {
	return int((raw + 24) / 25), nil
}

func (brightnessCodec) encode(name string, v any) (uint16, error) {
	n, ok := toInt(v)
	if !ok {
		return 0, typeError(name, v, "integer")
	}
	if n < 1 || n > 5 {
		return 0, &RangeError{Characteristic: name, Value: n, Min: 1, Max: 5}
	}
	return uint16(25*n - 24), nil
}

func (brightnessCodec) parse(name string, s string) (any, error) {
	return intCodec{}.parse(name, s)
}

func (brightnessCodec) describe() string {
	return "integer 1..5"
}

type boolCodec struct{}

func (boolCodec) decode(_ string, raw uint64) (any, error) {
	return raw != 0, nil
}

func (boolCodec) encode(name string, v any) (uint16, error) {
	if b, ok := v.(bool); ok {
		if b {
			return 1, nil
		}
		return 0, nil
	}
	n, ok := toInt(v)
	if !ok {
		return 0, typeError(name, v, "bool")
	}
	if n < 0 || n > 1 {
		return 0, &RangeError{Characteristic: name, Value: n, Min: 0, Max: 1}
	}
	return uint16(n), nil
}

func (boolCodec) parse(name string, s string) (any, error) {
	b, ok := parseBool(s)
	if !ok {
		return nil, &ValueError{Characteristic: name, Value: s, Reason: "expected true or false"}
	}
	return b, nil
}

func (boolCodec) describe() string {
	return "bool"
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes", "enabled":
		return true, true
	case "0", "false", "off", "no", "disabled":
		return false, true
	}
	return false, false
}

// triggerCodec backs the save and reset registers: any write is a request, and reads report
// whether one is pending.
type triggerCodec struct{}

func (triggerCodec) decode(_ string, raw uint64) (any, error) {
	return raw != 0, nil
}

func (triggerCodec) encode(name string, v any) (uint16, error) {
	if v == nil {
		return 1, nil
	}
	if b, ok := v.(bool); ok && b {
		return 1, nil
	}
	if n, ok := toInt(v); ok && n == 1 {
		return 1, nil
	}
	return 0, &ValueError{Characteristic: name, Value: v, Reason: "write true to trigger"}
}

func (triggerCodec) parse(name string, s string) (any, error) {
	if strings.TrimSpace(s) == "" {
		return true, nil
	}
	return boolCodec{}.parse(name, s)
}

func (triggerCodec) describe() string {
	return "trigger"
}

type enumCodec[E ~int] struct {
	names enumNames
}

func (c enumCodec[E]) decode(name string, raw uint64) (any, error) {
	if raw >= uint64(len(c.names)) {
		return nil, &DecodeError{
			Characteristic: name,
			Payload:        encodeUint16(uint16(raw)),
			Reason:         fmt.Sprintf("unknown value %d", raw),
		}
	}
	return E(raw), nil
}

func (c enumCodec[E]) encode(name string, v any) (uint16, error) {
	var n int64
	switch x := v.(type) {
	case E:
		n = int64(x)
	case string:
		i, ok := c.names.parse(x)
		if !ok {
			return 0, &ValueError{Characteristic: name, Value: x, Reason: "expected one of " + strings.Join(c.names, ", ")}
		}
		n = int64(i)
	default:
		var ok bool
		if n, ok = toInt(v); !ok {
			return 0, typeError(name, v, "enum")
		}
	}
	if n < 0 || n >= int64(len(c.names)) {
		return 0, &RangeError{Characteristic: name, Value: n, Min: 0, Max: len(c.names) - 1}
	}
	return uint16(n), nil
}

func (c enumCodec[E]) parse(name string, s string) (any, error) {
	if i, ok := c.names.parse(s); ok {
		return E(i), nil
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return E(n), nil
	}
	return nil, &ValueError{Characteristic: name, Value: s, Reason: "expected one of " + strings.Join(c.names, ", ")}
}

func (c enumCodec[E]) describe() string {
	return "one of " + strings.Join(c.names, ", ")
}

type languageCodec struct{}

func (languageCodec) decode(_ string, raw uint64) (any, error) {
	return LanguageCode(raw), nil
}

func (languageCodec) encode(name string, v any) (uint16, error) {
	switch x := v.(type) {
	case LanguageCode:
		return uint16(x), nil
	case string:
		return uint16(parseLanguage(x)), nil
	}
	n, ok := toInt(v)
	if !ok {
		return 0, typeError(name, v, "language code")
	}
	if n < 0 || n > math.MaxUint16 {
		return 0, &RangeError{Characteristic: name, Value: n, Min: 0, Max: math.MaxUint16}
	}
	return uint16(n), nil
}

func (languageCodec) parse(_ string, s string) (any, error) {
	return parseLanguage(s), nil
}

func (languageCodec) describe() string {
	return "language code such as EN or DE"
}
