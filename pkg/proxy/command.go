package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pinecil-go/pinecil/pkg/protocol"
)

var (
	// ErrCommandNotImplemented indicates an unknown command name.
	ErrCommandNotImplemented = errors.New("command not implemented")
)

// RequestParameters allows simple type check
type RequestParameters map[string]interface{}

func (p RequestParameters) getNumber(key string, required bool) (float64, error) {
	if p == nil {
		return 0, &protocol.ValueError{Characteristic: key, Reason: "missing parameter"}
	}
	value, ok := p[key]
	if !ok {
		if required {
			return 0, &protocol.ValueError{Characteristic: key, Reason: "missing parameter"}
		}
		return 0, nil
	}
	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, &protocol.ValueError{Characteristic: key, Value: v, Reason: "expected a number"}
		}
		return f, nil
	case float64:
		return v, nil
	}
	return 0, &protocol.ValueError{Characteristic: key, Value: value, Reason: "expected a number"}
}

// settingValue extracts the "value" parameter of a settings write. JSON strings are parsed the
// way the command line parses them, so {"value": "on"} and {"value": "FAHRENHEIT"} work. Numbers
// are converted from json.Number to int64 where exact.
func (p RequestParameters) settingValue(setting protocol.SettingChar) (any, error) {
	value, ok := p["value"]
	if !ok {
		if setting == protocol.SettingsSave || setting == protocol.SettingsReset {
			return true, nil
		}
		return nil, &protocol.ValueError{Characteristic: setting.String(), Reason: "missing value"}
	}
	switch v := value.(type) {
	case string:
		return setting.ParseValue(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, &protocol.ValueError{Characteristic: setting.String(), Value: v, Reason: "expected a number"}
		}
		return f, nil
	}
	return value, nil
}

// ExtractCommandAction use command to define which action should be executed.
func ExtractCommandAction(ctx context.Context, command string, params RequestParameters) (func(Iron) error, error) {
	switch command {
	case "set_temperature":
		temp, err := params.getNumber("temperature", true)
		if err != nil {
			return nil, err
		}
		return func(i Iron) error { return i.Write(ctx, protocol.SettingSetpointTemp, temp) }, nil
	case "save_settings":
		return func(i Iron) error { return i.SaveSettings(ctx) }, nil
	case "reset_settings":
		return func(i Iron) error { return i.Write(ctx, protocol.SettingsReset, true) }, nil
	case "set_setting":
		name, ok := params["name"].(string)
		if !ok {
			return nil, &protocol.ValueError{Characteristic: "name", Reason: "missing parameter"}
		}
		setting, err := protocol.ParseSetting(name)
		if err != nil {
			return nil, err
		}
		value, err := params.settingValue(setting)
		if err != nil {
			return nil, err
		}
		return func(i Iron) error { return i.Write(ctx, setting, value) }, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrCommandNotImplemented, command)
}
