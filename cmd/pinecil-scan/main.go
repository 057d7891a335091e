package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pinecil-go/pinecil/internal/log"
	"github.com/pinecil-go/pinecil/pkg/cli"
	"github.com/pinecil-go/pinecil/pkg/connector/ble"
	"github.com/pinecil-go/pinecil/pkg/connector/ble/goble"
	"github.com/pinecil-go/pinecil/pkg/connector/ble/tinygo"
	"github.com/pinecil-go/pinecil/pkg/proxy"
)

var (
	btAdapter = flag.String("bt-adapter", "", "Optional ID of Bluetooth adapter to use (Linux only)")
	backend   = flag.String("ble-backend", "", "Only test this BLE `backend` (tinygo|goble)")
	scanFor   = flag.Duration("scan", 0, "Also scan for irons for `duration`, or until interrupted")
	proxies   = flag.Bool("proxies", false, "Also browse the local network for pinecil-http-proxy instances")
	debug     = flag.Bool("debug", false, "Enable debug logging")
)

type backendInfo struct {
	name      string
	open      func(id string) (ble.Adapter, error)
	isAdapter func(error) bool
	help      func(error) string
}

var backends = []backendInfo{
	{cli.BackendTinyGo, tinygo.NewAdapter, tinygo.IsAdapterError, tinygo.AdapterErrorHelpMessage},
	{cli.BackendGoBLE, goble.NewAdapter, goble.IsAdapterError, goble.AdapterErrorHelpMessage},
}

func selectBackends(name string) ([]backendInfo, error) {
	if name == "" {
		return backends, nil
	}
	for _, b := range backends {
		if strings.EqualFold(b.name, name) {
			return []backendInfo{b}, nil
		}
	}
	return nil, fmt.Errorf("%w '%s'", cli.ErrUnknownBackend, name)
}

func printBeacons(w io.Writer, beacons []*ble.Beacon) {
	if len(beacons) == 0 {
		fmt.Fprintln(w, "  no irons found")
		return
	}
	sort.SliceStable(beacons, func(i, j int) bool { return beacons[i].RSSI > beacons[j].RSSI })
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  ADDRESS\tNAME\tRSSI\tCONNECTABLE")
	for _, b := range beacons {
		fmt.Fprintf(tw, "  %s\t%s\t%d\t%t\n", b.Address, b.LocalName, b.RSSI, b.Connectable)
	}
	tw.Flush()
}

func printEndpoints(w io.Writer, endpoints []proxy.Endpoint) {
	if len(endpoints) == 0 {
		fmt.Fprintln(w, "  no proxies found")
		return
	}
	for _, e := range endpoints {
		fmt.Fprintf(w, "  %s at %s", e.Instance, e.Address)
		keys := make([]string, 0, len(e.Metadata))
		for k := range e.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, " %s=%s", k, e.Metadata[k])
		}
		fmt.Fprintln(w)
	}
}

// testBackend opens the adapter and optionally scans. It returns false if the adapter could not be
// opened.
func testBackend(ctx context.Context, b backendInfo) bool {
	log.Info("Trying %s backend with adapter '%s'", b.name, *btAdapter)
	adapter, err := b.open(*btAdapter)
	if err != nil {
		if b.isAdapter(err) {
			log.Error("%s: %s", b.name, b.help(err))
		} else {
			log.Error("%s: failed to initialize BLE adapter: %s", b.name, err)
		}
		return false
	}
	defer adapter.Close()
	log.Info("%s: BLE adapter initialized", b.name)

	if *scanFor <= 0 {
		return true
	}
	scanCtx, cancel := context.WithTimeout(ctx, *scanFor)
	defer cancel()
	log.Info("%s: scanning for %s", b.name, *scanFor)
	beacons, err := ble.ScanBeacons(scanCtx, adapter, ble.Filter{})
	if err != nil {
		log.Error("%s: scan failed: %s", b.name, err)
	}
	fmt.Printf("%s:\n", b.name)
	printBeacons(os.Stdout, beacons)
	return true
}

func main() {
	flag.Parse()
	log.SetLevel(log.LevelInfo)
	if *debug {
		log.SetLevel(log.LevelDebug)
	}

	selected, err := selectBackends(*backend)
	if err != nil {
		log.Error("%s", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	working := 0
	for _, b := range selected {
		if ctx.Err() != nil {
			break
		}
		// Backends cannot share the HCI device, so they are tested one after another.
		if testBackend(ctx, b) {
			working++
		}
	}

	if *proxies {
		timeout := *scanFor
		if timeout <= 0 {
			timeout = 3 * time.Second
		}
		endpoints, err := proxy.Browse(ctx, timeout)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Proxy discovery failed: %s", err)
		}
		fmt.Println("proxies:")
		printEndpoints(os.Stdout, endpoints)
	}

	if working == 0 {
		os.Exit(1)
	}
}
