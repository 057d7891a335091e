package protocol

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Characteristic is a GATT characteristic exposed by IronOS.
type Characteristic interface {
	// String returns the lower-case name used as a settings map key and on the command line.
	String() string
	// Service returns the UUID of the GATT service that owns the characteristic.
	Service() string
	// UUID returns the characteristic UUID, or "" if the value is not a known characteristic.
	UUID() string
	// Decode converts a payload read from the iron into a Go value.
	Decode(payload []byte) (any, error)
}

// Payload limits. Live values are uint32 registers; settings are uint16.
const (
	maxLiveLength    = 4
	maxSettingLength = 2
	maxSerialLength  = 8
	liveDataLength   = 14 * 4
)

const liveDataName = "live_data"

// LiveChar enumerates the characteristics of the live service, in firmware order. The same
// values form the words of BulkLiveData.
type LiveChar int

const (
	LiveTemp LiveChar = iota
	LiveSetpointTemp
	LiveDCVoltage
	LiveHandleTemp
	LivePWMLevel
	LivePowerSource
	LiveTipResistance
	LiveUptime
	LiveMovementTime
	LiveMaxTipTempAbility
	LiveTipVoltage
	LiveHallSensor
	LiveOperatingMode
	LiveEstimatedPower
)

type liveDecoder func(raw uint64) (any, error)

type liveInfo struct {
	name   string
	decode liveDecoder
}

func liveInt(raw uint64) (any, error)     { return int(raw), nil }
func liveTenths(raw uint64) (any, error)  { return float64(raw) / 10, nil }
func livePercent(raw uint64) (any, error) { return int(float64(raw) / 255 * 100), nil }

func liveEnum[E ~int](names enumNames) liveDecoder {
	return func(raw uint64) (any, error) {
		if raw >= uint64(len(names)) {
			return nil, fmt.Errorf("unknown value %d", raw)
		}
		return E(raw), nil
	}
}

var liveTable = [...]liveInfo{
	LiveTemp:              {"live_temp", liveInt},
	LiveSetpointTemp:      {"setpoint_temp", liveInt},
	LiveDCVoltage:         {"dc_voltage", liveTenths},
	LiveHandleTemp:        {"handle_temp", liveTenths},
	LivePWMLevel:          {"pwm_level", livePercent},
	LivePowerSource:       {"power_src", liveEnum[PowerSource](powerSourceNames)},
	LiveTipResistance:     {"tip_resistance", liveTenths},
	LiveUptime:            {"uptime", liveTenths},
	LiveMovementTime:      {"movement_time", liveTenths},
	LiveMaxTipTempAbility: {"max_tip_temp_ability", liveInt},
	LiveTipVoltage:        {"tip_voltage", liveInt},
	LiveHallSensor:        {"hall_sensor", liveInt},
	LiveOperatingMode:     {"operating_mode", liveEnum[OperatingMode](operatingModeNames)},
	LiveEstimatedPower:    {"estimated_power", liveTenths},
}

func (c LiveChar) valid() bool {
	return c >= 0 && int(c) < len(liveTable)
}

func (c LiveChar) String() string {
	if !c.valid() {
		return fmt.Sprintf("LiveChar(%d)", int(c))
	}
	return liveTable[c].name
}

func (c LiveChar) Service() string {
	return LiveServiceUUID
}

func (c LiveChar) UUID() string {
	if !c.valid() {
		return ""
	}
	return liveUUID(0xf001 + uint16(c))
}

func (c LiveChar) Decode(payload []byte) (any, error) {
	if !c.valid() {
		return nil, fmt.Errorf("%w: %s", ErrNotSupported, c)
	}
	raw, err := decodeUint(c.String(), payload, maxLiveLength)
	if err != nil {
		return nil, err
	}
	v, err := liveTable[c].decode(raw)
	if err != nil {
		return nil, &DecodeError{Characteristic: c.String(), Payload: payload, Reason: err.Error()}
	}
	return v, nil
}

// SettingChar enumerates the characteristics of the settings service, in firmware order, with
// the save and reset triggers last.
type SettingChar int

const (
	SettingSetpointTemp SettingChar = iota
	SettingSleepTemp
	SettingSleepTimeout
	SettingMinDCVoltageCells
	SettingMinVoltagePerCell
	SettingQCIdealVoltage
	SettingOrientationMode
	SettingAccelSensitivity
	SettingAnimationLoop
	SettingAnimationSpeed
	SettingAutostartMode
	SettingShutdownTime
	SettingCoolingTempBlink
	SettingIdleScreenDetails
	SettingSolderScreenDetails
	SettingTempUnit
	SettingDescScrollSpeed
	SettingLockingMode
	SettingKeepAwakePulsePower
	SettingKeepAwakePulseDelay
	SettingKeepAwakePulseDuration
	SettingVoltageDiv
	SettingBoostTemp
	SettingCalibrationOffset
	SettingPowerLimit
	SettingInvertButtons
	SettingTempIncrementLong
	SettingTempIncrementShort
	SettingHallSensitivity
	SettingAccelWarnCounter
	SettingPDWarnCounter
	SettingUILanguage
	SettingPDNegotiationTimeout
	SettingDisplayInvert
	SettingDisplayBrightness
	SettingLogoDuration
	SettingCalibrateCJC
	SettingBLEEnabled
	SettingUSBPDMode
	SettingHallSleepTime
	SettingTipType
	SettingsSave
	SettingsReset
)

type settingInfo struct {
	name  string
	id    uint16
	codec settingCodec
}

var settingTable = [...]settingInfo{
	SettingSetpointTemp:           {"setpoint_temp", 0x0000, intCodec{10, 850}},
	SettingSleepTemp:              {"sleep_temp", 0x0001, intCodec{10, 450}},
	SettingSleepTimeout:           {"sleep_timeout", 0x0002, intCodec{0, 15}},
	SettingMinDCVoltageCells:      {"min_dc_voltage_cells", 0x0003, enumCodec[BatteryType]{batteryTypeNames}},
	SettingMinVoltagePerCell:      {"min_voltage_per_cell", 0x0004, deciCodec{24, 38}},
	SettingQCIdealVoltage:         {"qc_ideal_voltage", 0x0005, deciCodec{90, 220}},
	SettingOrientationMode:        {"orientation_mode", 0x0006, enumCodec[ScreenOrientationMode]{orientationNames}},
	SettingAccelSensitivity:       {"accel_sensitivity", 0x0007, intCodec{0, 9}},
	SettingAnimationLoop:          {"animation_loop", 0x0008, boolCodec{}},
	SettingAnimationSpeed:         {"animation_speed", 0x0009, enumCodec[AnimationSpeed]{animationSpeedNames}},
	SettingAutostartMode:          {"autostart_mode", 0x000a, enumCodec[AutostartMode]{autostartNames}},
	SettingShutdownTime:           {"shutdown_time", 0x000b, intCodec{0, 60}},
	SettingCoolingTempBlink:       {"cooling_temp_blink", 0x000c, boolCodec{}},
	SettingIdleScreenDetails:      {"idle_screen_details", 0x000d, boolCodec{}},
	SettingSolderScreenDetails:    {"solder_screen_details", 0x000e, boolCodec{}},
	SettingTempUnit:               {"temp_unit", 0x000f, enumCodec[TempUnit]{tempUnitNames}},
	SettingDescScrollSpeed:        {"desc_scroll_speed", 0x0010, enumCodec[ScrollSpeed]{scrollSpeedNames}},
	SettingLockingMode:            {"locking_mode", 0x0011, enumCodec[LockingMode]{lockingModeNames}},
	SettingKeepAwakePulsePower:    {"keep_awake_pulse_power", 0x0012, deciCodec{0, 99}},
	SettingKeepAwakePulseDelay:    {"keep_awake_pulse_delay", 0x0013, intCodec{0, 9}},
	SettingKeepAwakePulseDuration: {"keep_awake_pulse_duration", 0x0014, intCodec{0, 9}},
	SettingVoltageDiv:             {"voltage_div", 0x0015, intCodec{360, 900}},
	SettingBoostTemp:              {"boost_temp", 0x0016, intCodec{0, 450}},
	SettingCalibrationOffset:      {"calibration_offset", 0x0017, intCodec{100, 2500}},
	SettingPowerLimit:             {"power_limit", 0x0018, intCodec{0, 120}},
	SettingInvertButtons:          {"invert_buttons", 0x0019, boolCodec{}},
	SettingTempIncrementLong:      {"temp_increment_long", 0x001a, intCodec{5, 90}},
	SettingTempIncrementShort:     {"temp_increment_short", 0x001b, intCodec{1, 50}},
	SettingHallSensitivity:        {"hall_sensitivity", 0x001c, intCodec{0, 9}},
	SettingAccelWarnCounter:       {"accel_warn_counter", 0x001d, intCodec{0, 9}},
	SettingPDWarnCounter:          {"pd_warn_counter", 0x001e, intCodec{0, 9}},
	SettingUILanguage:             {"ui_language", 0x001f, languageCodec{}},
	SettingPDNegotiationTimeout:   {"pd_negotiation_timeout", 0x0020, deciCodec{0, 50}},
	SettingDisplayInvert:          {"display_invert", 0x0021, boolCodec{}},
	SettingDisplayBrightness:      {"display_brightness", 0x0022, brightnessCodec{}},
	SettingLogoDuration:           {"logo_duration", 0x0023, enumCodec[LogoDuration]{logoDurationNames}},
	SettingCalibrateCJC:           {"calibrate_cjc", 0x0024, boolCodec{}},
	SettingBLEEnabled:             {"ble_enabled", 0x0025, boolCodec{}},
	SettingUSBPDMode:              {"usb_pd_mode", 0x0026, enumCodec[USBPDMode]{usbPDModeNames}},
	SettingHallSleepTime:          {"hall_sleep_time", 0x0035, stepCodec{5, 60}},
	SettingTipType:                {"tip_type", 0x0036, enumCodec[TipType]{tipTypeNames}},
	SettingsSave:                  {"settings_save", 0xffff, triggerCodec{}},
	SettingsReset:                 {"settings_reset", 0xfffe, triggerCodec{}},
}

func (s SettingChar) valid() bool {
	return s >= 0 && int(s) < len(settingTable)
}

func (s SettingChar) String() string {
	if !s.valid() {
		return fmt.Sprintf("SettingChar(%d)", int(s))
	}
	return settingTable[s].name
}

func (s SettingChar) Service() string {
	return SettingsServiceUUID
}

func (s SettingChar) UUID() string {
	if !s.valid() {
		return ""
	}
	return settingUUID(settingTable[s].id)
}

// Decode converts a register read from the iron. One-byte payloads are accepted, and any
// non-zero boolean register decodes as true. Encode always produces the canonical two-byte form
// with booleans as 0 or 1, so Encode(Decode(p)) equals p only for canonical payloads.
func (s SettingChar) Decode(payload []byte) (any, error) {
	if !s.valid() {
		return nil, fmt.Errorf("%w: %s", ErrNotSupported, s)
	}
	raw, err := decodeUint(s.String(), payload, maxSettingLength)
	if err != nil {
		return nil, err
	}
	return settingTable[s].codec.decode(s.String(), raw)
}

// Encode validates v and converts it into the two-byte little-endian register written to the
// iron. Values outside the setting's range return a *RangeError; values of the wrong type
// return a *ValueError.
func (s SettingChar) Encode(v any) ([]byte, error) {
	if !s.valid() {
		return nil, fmt.Errorf("%w: %s", ErrNotSupported, s)
	}
	raw, err := settingTable[s].codec.encode(s.String(), v)
	if err != nil {
		return nil, err
	}
	return encodeUint16(raw), nil
}

// ParseValue converts command-line text into a value accepted by Encode.
func (s SettingChar) ParseValue(text string) (any, error) {
	if !s.valid() {
		return nil, fmt.Errorf("%w: %s", ErrNotSupported, s)
	}
	return settingTable[s].codec.parse(s.String(), text)
}

// Describe returns a short human-readable description of the values the setting accepts.
func (s SettingChar) Describe() string {
	if !s.valid() {
		return ""
	}
	return settingTable[s].codec.describe()
}

// BulkChar enumerates the characteristics of the bulk service.
type BulkChar int

const (
	BulkLiveData BulkChar = iota
	BulkAccelName
	BulkBuild
	BulkDeviceSN
	BulkDeviceID
)

type bulkInfo struct {
	name   string
	decode func(name string, payload []byte) (any, error)
}

var bulkTable = [...]bulkInfo{
	BulkLiveData:  {liveDataName, func(_ string, p []byte) (any, error) { return DecodeLiveData(p) }},
	BulkAccelName: {"accel_name", decodeString},
	BulkBuild:     {"build", decodeString},
	BulkDeviceSN:  {"device_sn", decodeHex("%016x")},
	BulkDeviceID:  {"device_id", decodeHex("%x")},
}

func decodeString(name string, payload []byte) (any, error) {
	if !utf8.Valid(payload) {
		return nil, &DecodeError{Characteristic: name, Payload: payload, Reason: "invalid utf-8"}
	}
	return strings.TrimRight(string(payload), "\x00"), nil
}

func decodeHex(format string) func(string, []byte) (any, error) {
	return func(name string, payload []byte) (any, error) {
		raw, err := decodeUint(name, payload, maxSerialLength)
		if err != nil {
			return nil, err
		}
		return fmt.Sprintf(format, raw), nil
	}
}

func (b BulkChar) valid() bool {
	return b >= 0 && int(b) < len(bulkTable)
}

func (b BulkChar) String() string {
	if !b.valid() {
		return fmt.Sprintf("BulkChar(%d)", int(b))
	}
	return bulkTable[b].name
}

func (b BulkChar) Service() string {
	return BulkServiceUUID
}

func (b BulkChar) UUID() string {
	if !b.valid() {
		return ""
	}
	return bulkUUID(0x1001 + uint16(b))
}

func (b BulkChar) Decode(payload []byte) (any, error) {
	if !b.valid() {
		return nil, fmt.Errorf("%w: %s", ErrNotSupported, b)
	}
	return bulkTable[b].decode(b.String(), payload)
}

// Settings returns every setting in firmware order.
func Settings() []SettingChar {
	out := make([]SettingChar, len(settingTable))
	for i := range settingTable {
		out[i] = SettingChar(i)
	}
	return out
}

// LiveChars returns every live characteristic in firmware order.
func LiveChars() []LiveChar {
	out := make([]LiveChar, len(liveTable))
	for i := range liveTable {
		out[i] = LiveChar(i)
	}
	return out
}

// BulkChars returns every bulk characteristic.
func BulkChars() []BulkChar {
	out := make([]BulkChar, len(bulkTable))
	for i := range bulkTable {
		out[i] = BulkChar(i)
	}
	return out
}

// Group names the service a characteristic belongs to: "settings", "live" or "bulk".
func Group(c Characteristic) string {
	switch c.(type) {
	case SettingChar:
		return "settings"
	case LiveChar:
		return "live"
	case BulkChar:
		return "bulk"
	}
	return ""
}

// QualifiedName returns GROUP.NAME, which ParseCharacteristic resolves back to c.
func QualifiedName(c Characteristic) string {
	return Group(c) + "." + c.String()
}

// ParseSetting looks up a setting by name.
func ParseSetting(name string) (SettingChar, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, "settings.")
	for i, info := range settingTable {
		if info.name == name {
			return SettingChar(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown setting '%s'", ErrNotSupported, name)
}

// ParseCharacteristic resolves "settings.NAME", "live.NAME", "bulk.NAME" or a bare NAME. Bare
// names are looked up in settings, then live, then bulk, so "setpoint_temp" is the setting.
func ParseCharacteristic(name string) (Characteristic, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	group, bare, qualified := strings.Cut(name, ".")
	if !qualified {
		bare = name
	}
	if !qualified || group == "settings" {
		for i, info := range settingTable {
			if info.name == bare {
				return SettingChar(i), nil
			}
		}
	}
	if !qualified || group == "live" {
		for i, info := range liveTable {
			if info.name == bare {
				return LiveChar(i), nil
			}
		}
	}
	if !qualified || group == "bulk" {
		for i, info := range bulkTable {
			if info.name == bare {
				return BulkChar(i), nil
			}
		}
	}
	return nil, fmt.Errorf("%w: unknown characteristic '%s'", ErrNotSupported, name)
}
