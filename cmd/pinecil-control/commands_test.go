package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/pinecil-go/pinecil/mocks"
	"github.com/pinecil-go/pinecil/pkg/cli"
	"github.com/pinecil-go/pinecil/pkg/iron"
	"github.com/pinecil-go/pinecil/pkg/protocol"
)

func TestParseTemperature(t *testing.T) {
	type params struct {
		str  string
		temp Temperature
		err  error
	}
	testCases := []params{
		{str: "320", temp: Temperature{Degrees: 320}},
		{str: "320c", temp: Temperature{Degrees: 320, Unit: protocol.Celsius, HasUnit: true}},
		{str: "320C", temp: Temperature{Degrees: 320, Unit: protocol.Celsius, HasUnit: true}},
		{str: "608f", temp: Temperature{Degrees: 608, Unit: protocol.Fahrenheit, HasUnit: true}},
		{str: "212.5F", temp: Temperature{Degrees: 212.5, Unit: protocol.Fahrenheit, HasUnit: true}},
		{str: " 250 ", temp: Temperature{Degrees: 250}},
		{str: "", err: ErrInvalidTemp},
		{str: "c", err: ErrInvalidTemp},
		{str: "hot", err: ErrInvalidTemp},
		{str: "320k", err: ErrInvalidTemp},
		{str: "-10", err: ErrInvalidTemp},
	}
	for _, test := range testCases {
		temp, err := ParseTemperature(test.str)
		if !errors.Is(err, test.err) {
			t.Errorf("expected '%s' to result in error %v, but got %v", test.str, test.err, err)
		} else if err == nil && test.temp != temp {
			t.Errorf("expected ParseTemperature('%s') = %+v, but got %+v", test.str, test.temp, temp)
		}
	}
}

func TestTempCommandUsesIronUnit(t *testing.T) {
	setpoint := protocol.SettingSetpointTemp
	fahrenheit := []byte{0x01, 0x00}
	testCases := []struct {
		arg     string
		unit    []byte // nil if the unit should not be read
		payload []byte
	}{
		{arg: "320c", unit: fahrenheit, payload: []byte{0x60, 0x02}},
		{arg: "608f", unit: fahrenheit, payload: []byte{0x60, 0x02}},
		{arg: "608F", unit: []byte{0x00, 0x00}, payload: []byte{0x40, 0x01}},
		{arg: "600", payload: []byte{0x58, 0x02}},
	}
	for _, test := range testCases {
		ctrl := gomock.NewController(t)
		dialer := mocks.NewIronDialer(ctrl)
		conn := mocks.NewConnector(ctrl)
		dialer.EXPECT().Dial(gomock.Any()).Return(conn, nil)
		if test.unit != nil {
			conn.EXPECT().ReadCharacteristic(gomock.Any(), protocol.SettingsServiceUUID, protocol.SettingTempUnit.UUID()).Return(test.unit, nil)
		}
		conn.EXPECT().WriteCharacteristic(gomock.Any(), setpoint.Service(), setpoint.UUID(), test.payload).Return(nil)

		pinecil := iron.New(dialer, "Pinecil-0123ABCD", "C0:FF:EE:00:00:01")
		if err := execute(context.Background(), nil, pinecil, []string{"temp", test.arg}); err != nil {
			t.Errorf("temp %s: %s", test.arg, err)
		}
		ctrl.Finish()
	}
}

func TestConfigureFlags(t *testing.T) {
	config, err := cli.NewConfig(cli.FlagAll)
	if err != nil {
		t.Fatal(err)
	}
	if err := configureFlags(config, "honk"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Expected ErrUnknownCommand, got %v", err)
	}
	if err := configureFlags(config, "list"); err != nil || config.Flags != cli.FlagGitHub {
		t.Errorf("list should not need an iron: flags=%d err=%v", config.Flags, err)
	}
	if err := configureFlags(config, "temp"); err != nil || config.Flags != cli.FlagAll {
		t.Errorf("temp should need an iron: flags=%d err=%v", config.Flags, err)
	}
}

func TestExecuteChecksArguments(t *testing.T) {
	config, err := cli.NewConfig(cli.FlagAll)
	if err != nil {
		t.Fatal(err)
	}
	if err := execute(context.Background(), config, nil, []string{"temp"}); !errors.Is(err, ErrRequiresIron) {
		t.Errorf("Expected ErrRequiresIron, got %v", err)
	}
	if err := execute(context.Background(), config, nil, []string{"list", "extra"}); !errors.Is(err, ErrCommandLineArgs) {
		t.Errorf("Expected ErrCommandLineArgs, got %v", err)
	}
	if err := execute(context.Background(), config, nil, []string{"nope"}); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Expected ErrUnknownCommand, got %v", err)
	}
}

func TestListCharacteristics(t *testing.T) {
	var out bytes.Buffer
	listCharacteristics(&out)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if expected := len(protocol.Settings()) + len(protocol.LiveChars()) + len(protocol.BulkChars()); len(lines) != expected {
		t.Errorf("Expected %d lines, got %d", expected, len(lines))
	}
	if !strings.HasPrefix(lines[0], "settings.setpoint_temp") {
		t.Errorf("Unexpected first line %q", lines[0])
	}
}

func TestPrintValues(t *testing.T) {
	var out bytes.Buffer
	printValues(&out, map[string]any{"temp_unit": protocol.Celsius, "ble_enabled": true})
	expected := "ble_enabled: true\ntemp_unit:   CELSIUS\n"
	if out.String() != expected {
		t.Errorf("Unexpected output %q", out.String())
	}
}

func TestReadToken(t *testing.T) {
	token, err := readToken(strings.NewReader("  ghp_example \n"))
	if err != nil {
		t.Fatal(err)
	}
	if token != "ghp_example" {
		t.Errorf("Unexpected token %q", token)
	}
}
