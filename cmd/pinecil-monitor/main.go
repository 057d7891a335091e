package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/pinecil-go/pinecil/internal/log"
	"github.com/pinecil-go/pinecil/pkg/cli"
	"github.com/pinecil-go/pinecil/pkg/monitor"
)

const description = `Terminal dashboard for a Pinecil soldering iron.

Shows live tip temperature, power, and input voltage, and changes the setpoint with the arrow
keys. Connection options fall back to the PINECIL_* environment variables and the -config file.`

type arguments struct {
	Address     string        `help:"BLE address of the iron."`
	Name        string        `help:"Advertised name of the iron."`
	BLEBackend  string        `name:"ble-backend" help:"BLE backend (tinygo|goble)."`
	BtAdapter   string        `name:"bt-adapter" help:"ID of the Bluetooth adapter to use (Linux only)."`
	ScanTimeout time.Duration `name:"scan-timeout" help:"Give up scanning after this long."`
	NoScan      bool          `name:"no-scan" help:"Connect to --address without scanning first."`
	Config      string        `type:"path" help:"Load defaults from a YAML file."`

	Interval time.Duration `default:"1s" help:"Time between live data reads."`
	Step     int           `default:"5" help:"Setpoint change per key press, in the iron's temperature unit."`
	Timeout  time.Duration `default:"5s" help:"Timeout for each BLE operation."`
	LogFile  string        `name:"log-file" type:"path" help:"Write debug logs to this file while the dashboard is open."`
}

func parseArgs(args []string) (*arguments, error) {
	var a arguments
	parser, err := kong.New(&a,
		kong.Name("pinecil-monitor"),
		kong.Description(description),
		kong.UsageOnError(),
	)
	if err != nil {
		return nil, err
	}
	if _, err := parser.Parse(args); err != nil {
		return nil, err
	}
	if a.Step <= 0 {
		return nil, fmt.Errorf("--step must be positive")
	}
	if a.Interval < 100*time.Millisecond {
		return nil, fmt.Errorf("--interval must be at least 100ms")
	}
	return &a, nil
}

// apply copies connection options into config. Environment variables and the config file only
// fill in what was left empty here.
func (a *arguments) apply(config *cli.Config) error {
	config.Address = a.Address
	config.Name = a.Name
	config.BLEBackend = a.BLEBackend
	config.BtAdapterID = a.BtAdapter
	config.ScanTimeout = a.ScanTimeout
	config.SkipScan = a.NoScan
	config.ConfigFile = a.Config
	config.ReadFromEnvironment()
	return config.LoadFile(config.ConfigFile)
}

func (a *arguments) options() monitor.Options {
	return monitor.Options{
		Interval: a.Interval,
		Step:     a.Step,
		Timeout:  a.Timeout,
	}
}

func main() {
	status := 1
	defer func() {
		os.Exit(status)
	}()

	args, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return
	}

	config, err := cli.NewConfig(cli.FlagIron)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %s\n", err)
		return
	}
	if err := args.apply(config); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pinecil, err := config.Connect(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", cli.Describe(err))
		return
	}
	defer config.Close()
	defer pinecil.Disconnect()

	// The dashboard owns the terminal, so logs either go to a file or nowhere.
	if args.LogFile != "" {
		f, err := os.OpenFile(args.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			return
		}
		defer f.Close()
		log.SetOutput(f)
		log.SetLevel(log.LevelDebug)
	} else {
		log.SetLevel(log.LevelNone)
	}

	if err := monitor.Run(ctx, pinecil, args.options()); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return
	}
	status = 0
}
