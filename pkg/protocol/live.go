package protocol

import (
	"encoding/binary"
	"fmt"
)

// LiveData is a snapshot of the iron's sensors, decoded from the bulk live_data characteristic.
type LiveData struct {
	LiveTemp          int           `json:"live_temp"`     // temp_unit
	SetpointTemp      int           `json:"setpoint_temp"` // temp_unit
	DCVoltage         float64       `json:"dc_voltage"`    // V
	HandleTemp        float64       `json:"handle_temp"`   // °C
	PWMLevel          int           `json:"pwm_level"`     // percent
	PowerSource       PowerSource   `json:"power_src"`
	TipResistance     float64       `json:"tip_resistance"`       // Ω
	Uptime            float64       `json:"uptime"`               // s
	MovementTime      float64       `json:"movement_time"`        // s
	MaxTipTempAbility int           `json:"max_tip_temp_ability"` // temp_unit
	TipVoltage        int           `json:"tip_voltage"`          // µV
	HallSensor        int           `json:"hall_sensor"`
	OperatingMode     OperatingMode `json:"operating_mode"`
	EstimatedPower    float64       `json:"estimated_power"` // W
}

// DecodeLiveData decodes the 14 little-endian uint32 words of the bulk live_data characteristic.
func DecodeLiveData(payload []byte) (*LiveData, error) {
	const name = liveDataName
	if len(payload) != liveDataLength {
		return nil, &DecodeError{
			Characteristic: name,
			Payload:        payload,
			Reason:         fmt.Sprintf("expected %d bytes, got %d", liveDataLength, len(payload)),
		}
	}

	values := make([]any, len(liveTable))
	for i := range liveTable {
		raw := uint64(binary.LittleEndian.Uint32(payload[4*i:]))
		v, err := liveTable[i].decode(raw)
		if err != nil {
			return nil, &DecodeError{Characteristic: name, Payload: payload, Reason: fmt.Sprintf("%s: %s", liveTable[i].name, err)}
		}
		values[i] = v
	}

	return &LiveData{
		LiveTemp:          values[LiveTemp].(int),
		SetpointTemp:      values[LiveSetpointTemp].(int),
		DCVoltage:         values[LiveDCVoltage].(float64),
		HandleTemp:        values[LiveHandleTemp].(float64),
		PWMLevel:          values[LivePWMLevel].(int),
		PowerSource:       values[LivePowerSource].(PowerSource),
		TipResistance:     values[LiveTipResistance].(float64),
		Uptime:            values[LiveUptime].(float64),
		MovementTime:      values[LiveMovementTime].(float64),
		MaxTipTempAbility: values[LiveMaxTipTempAbility].(int),
		TipVoltage:        values[LiveTipVoltage].(int),
		HallSensor:        values[LiveHallSensor].(int),
		OperatingMode:     values[LiveOperatingMode].(OperatingMode),
		EstimatedPower:    values[LiveEstimatedPower].(float64),
	}, nil
}

// DeviceInfo is the static identity of an iron. Name and Address come from its advertisement;
// the rest is read from the bulk service.
type DeviceInfo struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Build    string `json:"build"`
	DeviceSN string `json:"device_sn"`
	DeviceID string `json:"device_id"`
}
