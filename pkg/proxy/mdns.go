package proxy

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/pinecil-go/pinecil/internal/log"
)

const (
	MDNSServiceType = "_pinecil._tcp"
	mdnsDomain      = "local."
)

// Endpoint is a proxy found on the local network.
type Endpoint struct {
	Instance string
	Address  string
	Metadata map[string]string
}

func txtRecords(metadata map[string]string) []string {
	txt := make([]string, 0, len(metadata))
	for k, v := range metadata {
		txt = append(txt, k+"="+v)
	}
	sort.Strings(txt)
	return txt
}

func parseTXTRecords(records []string) map[string]string {
	metadata := make(map[string]string, len(records))
	for _, record := range records {
		if k, v, ok := strings.Cut(record, "="); ok {
			metadata[k] = v
		}
	}
	return metadata
}

// Advertise registers the proxy on the local network and blocks until ctx is done.
func Advertise(ctx context.Context, name string, port int, metadata map[string]string) error {
	server, err := zeroconf.Register(name, MDNSServiceType, mdnsDomain, port, txtRecords(metadata), nil)
	if err != nil {
		return fmt.Errorf("mdns register: %w", err)
	}
	log.Info("Advertising %s on port %d", name, port)
	<-ctx.Done()
	server.Shutdown()
	return nil
}

// Browse lists the proxies that answer within timeout.
func Browse(ctx context.Context, timeout time.Duration) ([]Endpoint, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("mdns resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	var endpoints []Endpoint
	var wg sync.WaitGroup

	scanCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for entry := range entries {
			endpoints = append(endpoints, entryToEndpoint(entry))
		}
	}()

	if err := resolver.Browse(scanCtx, MDNSServiceType, mdnsDomain, entries); err != nil {
		cancel()
		wg.Wait()
		return nil, fmt.Errorf("mdns browse: %w", err)
	}
	<-scanCtx.Done()
	wg.Wait()
	return endpoints, nil
}

func entryToEndpoint(entry *zeroconf.ServiceEntry) Endpoint {
	var address string
	if len(entry.AddrIPv4) > 0 {
		address = fmt.Sprintf("%s:%d", entry.AddrIPv4[0], entry.Port)
	} else if len(entry.AddrIPv6) > 0 {
		address = fmt.Sprintf("[%s]:%d", entry.AddrIPv6[0], entry.Port)
	}
	return Endpoint{
		Instance: entry.ServiceRecord.Instance,
		Address:  address,
		Metadata: parseTXTRecords(entry.Text),
	}
}
