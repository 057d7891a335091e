package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/shlex"

	"github.com/pinecil-go/pinecil/internal/log"
	"github.com/pinecil-go/pinecil/pkg/cli"
	"github.com/pinecil-go/pinecil/pkg/iron"
	"github.com/pinecil-go/pinecil/pkg/protocol"
)

func writeErr(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, format, a...)
	fmt.Fprintf(os.Stderr, "\n")
}

const usage = `
 * Commands that talk to the iron scan for it unless -no-scan is given with -address.
 * Settings written with set or temp are lost on power-off unless followed by save.
 * check-update uses the GitHub API; store a token with github-token-save to raise the rate limit.`

func Usage() {
	fmt.Printf("Usage: %s [OPTION...] COMMAND [ARG...]\n", os.Args[0])
	fmt.Printf("\nRun %s help COMMAND for more information. Valid COMMANDs are listed below.", os.Args[0])
	fmt.Println("")
	fmt.Println(usage)
	fmt.Println("")

	fmt.Printf("Available OPTIONs:\n")
	flag.PrintDefaults()
	fmt.Println("")
	fmt.Printf("Available COMMANDs:\n")
	maxLength := 0
	var labels []string
	for command := range commands {
		labels = append(labels, command)
		if len(command) > maxLength {
			maxLength = len(command)
		}
	}
	sort.Strings(labels)
	for _, command := range labels {
		info := commands[command]
		fmt.Printf("  %s%s %s\n", command, strings.Repeat(" ", maxLength-len(command)), info.help)
	}
}

func runCommand(config *cli.Config, pinecil *iron.Iron, args []string, timeout time.Duration) int {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := execute(ctx, config, pinecil, args); err != nil {
		if protocol.MayHaveSucceeded(err) {
			writeErr("Couldn't verify success: %s", err)
		} else if errors.Is(err, protocol.ErrNotSupported) {
			writeErr("%s (run '%s list' for valid names)", err, os.Args[0])
		} else {
			writeErr("Failed to execute command: %s", cli.Describe(err))
		}
		return 1
	}
	return 0
}

func runInteractiveShell(config *cli.Config, pinecil *iron.Iron, timeout time.Duration) int {
	scanner := bufio.NewScanner(os.Stdin)
	for fmt.Printf("> "); scanner.Scan(); fmt.Printf("> ") {
		args, err := shlex.Split(scanner.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			return 0
		}
		if err != nil {
			writeErr("Invalid command: %s", err)
			continue
		}
		if args[0] == "help" {
			if len(args) > 1 {
				if info, ok := commands[args[1]]; ok {
					info.Usage(args[1])
					continue
				}
			}
			Usage()
			continue
		}
		runCommand(config, pinecil, args, timeout)
	}
	if err := scanner.Err(); err != nil {
		writeErr("Error reading command: %s", err)
		return 1
	}
	return 0
}

func main() {
	status := 1
	defer func() {
		os.Exit(status)
	}()

	var (
		debug          bool
		commandTimeout time.Duration
		connTimeout    time.Duration
	)
	config, err := cli.NewConfig(cli.FlagAll)
	if err != nil {
		writeErr("Failed to load configuration: %s", err)
		return
	}
	flag.Usage = Usage
	flag.BoolVar(&debug, "debug", false, "Enable verbose debugging messages")
	flag.DurationVar(&commandTimeout, "command-timeout", 10*time.Second, "Set timeout for commands sent to the iron.")
	flag.DurationVar(&connTimeout, "connect-timeout", 20*time.Second, "Set timeout for finding the iron.")

	config.RegisterCommandLineFlags()
	flag.Parse()
	if !debug {
		if debugEnv, ok := os.LookupEnv(cli.EnvPinecilVerboseLogger); ok {
			debug = debugEnv != "false" && debugEnv != "0"
		}
	}
	if debug {
		log.SetLevel(log.LevelDebug)
	}
	config.ReadFromEnvironment()
	if err := config.LoadFile(config.ConfigFile); err != nil {
		writeErr("Error loading config file: %s", err)
		return
	}

	args := flag.Args()
	if len(args) > 0 {
		if args[0] == "help" {
			if len(args) == 1 {
				Usage()
				status = 0
				return
			}
			info, ok := commands[args[1]]
			if !ok {
				writeErr("Unrecognized command: %s", args[1])
				return
			}
			info.Usage(args[1])
			status = 0
			return
		}
		if err := configureFlags(config, args[0]); err != nil {
			writeErr("%s: %s", err, args[0])
			return
		}
	}

	var pinecil *iron.Iron
	if config.Flags&cli.FlagIron != 0 {
		ctx, cancel := context.WithTimeout(context.Background(), connTimeout)
		defer cancel()

		pinecil, err = config.Connect(ctx)
		if err != nil {
			writeErr("Error: %s", err)
			if errors.Is(err, protocol.ErrDeviceNotFound) {
				writeErr("Make sure the iron is powered and Bluetooth is enabled in its settings.")
			}
			return
		}
		defer config.Close()
		defer pinecil.Disconnect()
		defer func() {
			if err := config.RememberIron(pinecil); err != nil {
				writeErr("Failed to update %s: %s", config.CacheFilename, err)
			}
		}()
	}

	if flag.NArg() > 0 {
		status = runCommand(config, pinecil, flag.Args(), commandTimeout)
	} else {
		status = runInteractiveShell(config, pinecil, commandTimeout)
	}
}
