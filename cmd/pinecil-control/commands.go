package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/pinecil-go/pinecil/pkg/cli"
	"github.com/pinecil-go/pinecil/pkg/iron"
	"github.com/pinecil-go/pinecil/pkg/protocol"
	"github.com/pinecil-go/pinecil/pkg/update"
)

var (
	ErrCommandLineArgs = errors.New("invalid command line arguments")
	ErrInvalidTemp     = errors.New("invalid temperature")
	ErrUnknownCommand  = errors.New("unrecognized command")
	ErrRequiresIron    = errors.New("command requires a connection to an iron")
)

const userAgent = "pinecil-control"

type Argument struct {
	name string
	help string
}

type Handler func(ctx context.Context, config *cli.Config, pinecil *iron.Iron, args map[string]string) error

type Command struct {
	help         string
	requiresIron bool
	args         []Argument
	optional     []Argument
	handler      Handler
}

// Temperature is a setpoint typed on the command line. Without a unit suffix, it is in whatever
// unit the iron is configured for.
type Temperature struct {
	Degrees float64
	Unit    protocol.TempUnit
	HasUnit bool
}

// ParseTemperature parses "320", "320c" or "608F".
func ParseTemperature(s string) (Temperature, error) {
	var temp Temperature
	s = strings.TrimSpace(s)
	if n := len(s); n > 0 {
		switch strings.ToLower(s[n-1:]) {
		case "c":
			temp.Unit, temp.HasUnit = protocol.Celsius, true
			s = s[:n-1]
		case "f":
			temp.Unit, temp.HasUnit = protocol.Fahrenheit, true
			s = s[:n-1]
		}
	}
	degrees, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return temp, fmt.Errorf("%w: format as 320, 320C or 608F", ErrInvalidTemp)
	}
	if degrees < 0 {
		return temp, fmt.Errorf("%w: must be positive", ErrInvalidTemp)
	}
	temp.Degrees = degrees
	return temp, nil
}

// setTemperature writes temp, converting it to the iron's unit when a suffix was given.
func setTemperature(ctx context.Context, pinecil *iron.Iron, temp Temperature) error {
	if !temp.HasUnit {
		return pinecil.SetTemperature(ctx, int(math.Round(temp.Degrees)))
	}
	return pinecil.SetTemperatureIn(ctx, temp.Degrees, temp.Unit)
}

// configureFlags selects the cli.Config options that commandName needs.
func configureFlags(c *cli.Config, commandName string) error {
	info, ok := commands[commandName]
	if !ok {
		return ErrUnknownCommand
	}
	c.Flags = cli.FlagGitHub
	if info.requiresIron {
		c.Flags |= cli.FlagIron
	}
	return nil
}

func execute(ctx context.Context, config *cli.Config, pinecil *iron.Iron, args []string) error {
	if len(args) == 0 {
		return errors.New("missing COMMAND")
	}

	info, ok := commands[args[0]]
	if !ok {
		return ErrUnknownCommand
	}
	if info.requiresIron && pinecil == nil {
		return ErrRequiresIron
	}

	var err error
	if len(args)-1 < len(info.args) || len(args)-1 > len(info.args)+len(info.optional) {
		writeErr("Invalid number of command line arguments: %d (%d required, %d optional).", len(args)-1, len(info.args), len(info.optional))
		err = ErrCommandLineArgs
	} else {
		keywords := make(map[string]string)
		for i, argInfo := range info.args {
			keywords[argInfo.name] = args[i+1]
		}
		index := len(info.args) + 1
		for _, argInfo := range info.optional {
			if index >= len(args) {
				break
			}
			keywords[argInfo.name] = args[index]
			index++
		}
		err = info.handler(ctx, config, pinecil, keywords)
	}

	// Print command-specific help
	if errors.Is(err, ErrCommandLineArgs) {
		info.Usage(args[0])
	}
	return err
}

func (c *Command) Usage(name string) {
	fmt.Printf("Usage: %s", name)
	maxLength := 0
	for _, arg := range c.args {
		fmt.Printf(" %s", arg.name)
		if len(arg.name) > maxLength {
			maxLength = len(arg.name)
		}
	}
	if len(c.optional) > 0 {
		fmt.Printf(" [")
	}
	for _, arg := range c.optional {
		fmt.Printf(" %s", arg.name)
		if len(arg.name) > maxLength {
			maxLength = len(arg.name)
		}
	}
	if len(c.optional) > 0 {
		fmt.Printf(" ]")
	}
	fmt.Printf("\n%s\n", c.help)
	maxLength++
	for _, arg := range c.args {
		fmt.Printf("    %s:%s%s\n", arg.name, strings.Repeat(" ", maxLength-len(arg.name)), arg.help)
	}
	for _, arg := range c.optional {
		fmt.Printf("    %s:%s%s\n", arg.name, strings.Repeat(" ", maxLength-len(arg.name)), arg.help)
	}
}

var formatArgument = Argument{name: "FORMAT", help: "text (default) or json"}

func wantJSON(args map[string]string) (bool, error) {
	switch strings.ToLower(args["FORMAT"]) {
	case "", "text":
		return false, nil
	case "json":
		return true, nil
	}
	return false, fmt.Errorf("%w: FORMAT must be text or json", ErrCommandLineArgs)
}

func printJSON(w io.Writer, v interface{}) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s\n", encoded)
	return nil
}

// printValues writes "name: value" lines in key order.
func printValues(w io.Writer, values map[string]any) {
	keys := make([]string, 0, len(values))
	maxLength := 0
	for k := range values {
		keys = append(keys, k)
		maxLength = max(maxLength, len(k))
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s:%s %v\n", k, strings.Repeat(" ", maxLength-len(k)), values[k])
	}
}

func liveValues(live *protocol.LiveData) map[string]any {
	return map[string]any{
		"live_temp":            live.LiveTemp,
		"setpoint_temp":        live.SetpointTemp,
		"dc_voltage":           live.DCVoltage,
		"handle_temp":          live.HandleTemp,
		"pwm_level":            live.PWMLevel,
		"power_src":            live.PowerSource,
		"tip_resistance":       live.TipResistance,
		"uptime":               live.Uptime,
		"movement_time":        live.MovementTime,
		"max_tip_temp_ability": live.MaxTipTempAbility,
		"tip_voltage":          live.TipVoltage,
		"hall_sensor":          live.HallSensor,
		"operating_mode":       live.OperatingMode,
		"estimated_power":      live.EstimatedPower,
	}
}

// listCharacteristics prints every known characteristic with the values it accepts.
func listCharacteristics(w io.Writer) {
	for _, s := range protocol.Settings() {
		fmt.Fprintf(w, "%-40s %s\n", protocol.QualifiedName(s), s.Describe())
	}
	for _, c := range protocol.LiveChars() {
		fmt.Fprintf(w, "%-40s read-only\n", protocol.QualifiedName(c))
	}
	for _, c := range protocol.BulkChars() {
		fmt.Fprintf(w, "%-40s read-only\n", protocol.QualifiedName(c))
	}
}

// readToken reads a token from the terminal without echo, or a line from a pipe.
func readToken(r io.Reader) (string, error) {
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(os.Stderr, "GitHub token: ")
		token, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(string(token)), err
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

var commands = map[string]*Command{
	"info": &Command{
		help:         "Print the iron's build, serial number and device ID",
		requiresIron: true,
		optional:     []Argument{formatArgument},
		handler: func(ctx context.Context, config *cli.Config, pinecil *iron.Iron, args map[string]string) error {
			asJSON, err := wantJSON(args)
			if err != nil {
				return err
			}
			info, err := pinecil.GetDeviceInfo(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(os.Stdout, info)
			}
			printValues(os.Stdout, map[string]any{
				"name":      info.Name,
				"address":   info.Address,
				"build":     info.Build,
				"device_sn": info.DeviceSN,
				"device_id": info.DeviceID,
			})
			return nil
		},
	},
	"live": &Command{
		help:         "Print a live data snapshot",
		requiresIron: true,
		optional:     []Argument{formatArgument},
		handler: func(ctx context.Context, config *cli.Config, pinecil *iron.Iron, args map[string]string) error {
			asJSON, err := wantJSON(args)
			if err != nil {
				return err
			}
			live, err := pinecil.GetLiveData(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(os.Stdout, live)
			}
			printValues(os.Stdout, liveValues(live))
			return nil
		},
	},
	"settings": &Command{
		help:         "Print every setting",
		requiresIron: true,
		optional:     []Argument{formatArgument},
		handler: func(ctx context.Context, config *cli.Config, pinecil *iron.Iron, args map[string]string) error {
			asJSON, err := wantJSON(args)
			if err != nil {
				return err
			}
			values, err := pinecil.GetSettings(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(os.Stdout, values)
			}
			printValues(os.Stdout, values)
			return nil
		},
	},
	"get": &Command{
		help:         "Read a characteristic",
		requiresIron: true,
		args: []Argument{
			Argument{name: "NAME", help: "characteristic name, e.g. setpoint_temp or live.dc_voltage (see list)"},
		},
		handler: func(ctx context.Context, config *cli.Config, pinecil *iron.Iron, args map[string]string) error {
			c, err := protocol.ParseCharacteristic(args["NAME"])
			if err != nil {
				return err
			}
			value, err := pinecil.Read(ctx, c)
			if err != nil {
				return err
			}
			fmt.Printf("%v\n", value)
			return nil
		},
	},
	"set": &Command{
		help:         "Write a setting. Changes are lost on power-off unless followed by save.",
		requiresIron: true,
		args: []Argument{
			Argument{name: "NAME", help: "setting name (see list)"},
			Argument{name: "VALUE", help: "new value; enums accept names, booleans accept on/off"},
		},
		handler: func(ctx context.Context, config *cli.Config, pinecil *iron.Iron, args map[string]string) error {
			setting, err := protocol.ParseSetting(args["NAME"])
			if err != nil {
				return err
			}
			value, err := setting.ParseValue(args["VALUE"])
			if err != nil {
				return err
			}
			return pinecil.Write(ctx, setting, value)
		},
	},
	"temp": &Command{
		help:         "Set the soldering setpoint",
		requiresIron: true,
		args: []Argument{
			Argument{name: "TEMP", help: "Desired temperature (e.g., 320c or 608f; without a suffix, in the iron's temp_unit)"},
		},
		handler: func(ctx context.Context, config *cli.Config, pinecil *iron.Iron, args map[string]string) error {
			temp, err := ParseTemperature(args["TEMP"])
			if err != nil {
				return err
			}
			return setTemperature(ctx, pinecil, temp)
		},
	},
	"save": &Command{
		help:         "Persist settings to flash",
		requiresIron: true,
		handler: func(ctx context.Context, config *cli.Config, pinecil *iron.Iron, args map[string]string) error {
			return pinecil.SaveSettings(ctx)
		},
	},
	"reset-settings": &Command{
		help:         "Restore factory settings",
		requiresIron: true,
		handler: func(ctx context.Context, config *cli.Config, pinecil *iron.Iron, args map[string]string) error {
			return pinecil.ResetSettings(ctx)
		},
	},
	"list": &Command{
		help: "List known characteristics and the values settings accept",
		handler: func(ctx context.Context, config *cli.Config, pinecil *iron.Iron, args map[string]string) error {
			listCharacteristics(os.Stdout)
			return nil
		},
	},
	"check-update": &Command{
		help: "Print the latest IronOS release and whether BUILD is older",
		optional: []Argument{
			Argument{name: "BUILD", help: "installed firmware version, e.g. v2.21. Defaults to the cached build of -address."},
		},
		handler: func(ctx context.Context, config *cli.Config, pinecil *iron.Iron, args map[string]string) error {
			checker, err := config.UpdateChecker(userAgent)
			if err != nil {
				return err
			}
			release, err := checker.LatestRelease(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Latest release: %s (%s)\n", release.TagName, release.HTMLURL)
			build, ok := args["BUILD"]
			if !ok && config.Address != "" {
				// Fall back to what the iron reported the last time it was connected.
				if known, found := config.DeviceCache().Lookup(config.Address); found && known.Build != "" {
					build, ok = known.Build, true
					fmt.Printf("Cached build of %s: %s\n", config.Address, build)
				}
			}
			if !ok {
				return nil
			}
			available, err := update.UpdateAvailable(build, release)
			if err != nil {
				return fmt.Errorf("%w: %s", ErrCommandLineArgs, err)
			}
			if available {
				fmt.Printf("Update available: %s -> %s\n", build, release.TagName)
			} else {
				fmt.Printf("%s is up to date\n", build)
			}
			return nil
		},
	},
	"github-token-save": &Command{
		help: "Read a GitHub API token from stdin and store it in the system keyring",
		handler: func(ctx context.Context, config *cli.Config, pinecil *iron.Iron, args map[string]string) error {
			if config.KeyringTokenName == "" {
				return cli.ErrNoTokenSpecified
			}
			token, err := readToken(os.Stdin)
			if err != nil {
				return err
			}
			if token == "" {
				return fmt.Errorf("%w: empty token", ErrCommandLineArgs)
			}
			return config.SaveTokenToKeyring(token)
		},
	},
	"github-token-delete": &Command{
		help: "Remove the GitHub API token from the system keyring",
		handler: func(ctx context.Context, config *cli.Config, pinecil *iron.Iron, args map[string]string) error {
			return config.DeleteToken()
		},
	},
}
