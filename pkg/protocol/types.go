package protocol

import (
	"fmt"
	"strings"
)

type enumNames []string

func (n enumNames) format(kind string, v int) string {
	if v >= 0 && v < len(n) {
		return n[v]
	}
	return fmt.Sprintf("%s(%d)", kind, v)
}

func (n enumNames) parse(s string) (int, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "-", "_")
	for i, name := range n {
		if strings.EqualFold(name, s) {
			return i, true
		}
	}
	return 0, false
}

// PowerSource is the supply the iron negotiated.
type PowerSource int

const (
	PowerSourceDC PowerSource = iota
	PowerSourceQC
	PowerSourcePDVBUS
	PowerSourcePD
)

var powerSourceNames = enumNames{"DC", "QC", "PD_VBUS", "PD"}

func (p PowerSource) String() string               { return powerSourceNames.format("PowerSource", int(p)) }
func (p PowerSource) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

type OperatingMode int

const (
	OperatingModeIdle OperatingMode = iota
	OperatingModeSoldering
	OperatingModeBoost
	OperatingModeSleeping
	OperatingModeSettings
	OperatingModeDebug
)

var operatingModeNames = enumNames{"IDLE", "SOLDERING", "BOOST", "SLEEPING", "SETTINGS", "DEBUG"}

func (m OperatingMode) String() string               { return operatingModeNames.format("OperatingMode", int(m)) }
func (m OperatingMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// BatteryType selects the undervoltage cutoff: plain DC input or a lithium pack of 3 to 6 cells.
type BatteryType int

const (
	BatteryDC BatteryType = iota
	Battery3S
	Battery4S
	Battery5S
	Battery6S
)

var batteryTypeNames = enumNames{"DC", "BATTERY_3S", "BATTERY_4S", "BATTERY_5S", "BATTERY_6S"}

func (b BatteryType) String() string               { return batteryTypeNames.format("BatteryType", int(b)) }
func (b BatteryType) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

type ScreenOrientationMode int

const (
	OrientationRightHanded ScreenOrientationMode = iota
	OrientationLeftHanded
	OrientationAuto
)

var orientationNames = enumNames{"RIGHT_HANDED", "LEFT_HANDED", "AUTO"}

func (o ScreenOrientationMode) String() string {
	return orientationNames.format("ScreenOrientationMode", int(o))
}
func (o ScreenOrientationMode) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

type AnimationSpeed int

const (
	AnimationOff AnimationSpeed = iota
	AnimationSlow
	AnimationMedium
	AnimationFast
)

var animationSpeedNames = enumNames{"OFF", "SLOW", "MEDIUM", "FAST"}

func (a AnimationSpeed) String() string               { return animationSpeedNames.format("AnimationSpeed", int(a)) }
func (a AnimationSpeed) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// AutostartMode is the state the iron enters on power-up.
type AutostartMode int

const (
	AutostartDisabled AutostartMode = iota
	AutostartSoldering
	AutostartSleeping
	AutostartIdle
)

var autostartNames = enumNames{"DISABLED", "SOLDERING", "SLEEPING", "IDLE"}

func (a AutostartMode) String() string               { return autostartNames.format("AutostartMode", int(a)) }
func (a AutostartMode) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

type TempUnit int

const (
	Celsius TempUnit = iota
	Fahrenheit
)

var tempUnitNames = enumNames{"CELSIUS", "FAHRENHEIT"}

func (u TempUnit) String() string               { return tempUnitNames.format("TempUnit", int(u)) }
func (u TempUnit) MarshalText() ([]byte, error) { return []byte(u.String()), nil }

// Symbol returns "°C" or "°F".
func (u TempUnit) Symbol() string {
	if u == Fahrenheit {
		return "°F"
	}
	return "°C"
}

// ConvertTemperature converts t from one unit to another.
func ConvertTemperature(t float64, from, to TempUnit) float64 {
	switch {
	case from == to:
		return t
	case to == Fahrenheit:
		return t*9/5 + 32
	default:
		return (t - 32) * 5 / 9
	}
}

type ScrollSpeed int

const (
	ScrollSlow ScrollSpeed = iota
	ScrollFast
)

var scrollSpeedNames = enumNames{"SLOW", "FAST"}

func (s ScrollSpeed) String() string               { return scrollSpeedNames.format("ScrollSpeed", int(s)) }
func (s ScrollSpeed) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// LockingMode controls which button functions are available while the buttons are locked.
type LockingMode int

const (
	LockingOff LockingMode = iota
	LockingBoostOnly
	LockingFull
)

var lockingModeNames = enumNames{"OFF", "BOOST_ONLY", "FULL_LOCKING"}

func (l LockingMode) String() string               { return lockingModeNames.format("LockingMode", int(l)) }
func (l LockingMode) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// LogoDuration is how long the boot logo is shown, in seconds, or LogoLoop to repeat it.
type LogoDuration int

const (
	LogoOff LogoDuration = iota
	Logo1Second
	Logo2Seconds
	Logo3Seconds
	Logo4Seconds
	Logo5Seconds
	LogoLoop
)

var logoDurationNames = enumNames{"OFF", "SECONDS_1", "SECONDS_2", "SECONDS_3", "SECONDS_4", "SECONDS_5", "LOOP"}

func (l LogoDuration) String() string               { return logoDurationNames.format("LogoDuration", int(l)) }
func (l LogoDuration) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

type USBPDMode int

const (
	USBPDOff USBPDMode = iota
	USBPDOn
	USBPDSafe
)

var usbPDModeNames = enumNames{"OFF", "ON", "SAFE"}

func (u USBPDMode) String() string               { return usbPDModeNames.format("USBPDMode", int(u)) }
func (u USBPDMode) MarshalText() ([]byte, error) { return []byte(u.String()), nil }

// TipType selects the heater model used for temperature calibration. Added in IronOS 2.23.
type TipType int

const (
	TipAuto TipType = iota
	TipTS100Long
	TipPineShort
	TipPTS200
)

var tipTypeNames = enumNames{"AUTO", "TS100_LONG", "PINE_SHORT", "PTS200"}

func (t TipType) String() string               { return tipTypeNames.format("TipType", int(t)) }
func (t TipType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }
