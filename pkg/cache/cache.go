package cache

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pinecil-go/pinecil/pkg/protocol"
)

// Entry is the last known identity of one iron.
type Entry struct {
	Name     string    `json:"name"`
	Build    string    `json:"build,omitempty"`
	DeviceSN string    `json:"device_sn,omitempty"`
	DeviceID string    `json:"device_id,omitempty"`
	SeenAt   time.Time `json:"seen_at"`
}

type DeviceCache struct {
	MaxEntries int              `json:"-"`
	Irons      map[string]Entry `json:"irons"`
	lock       sync.Mutex
}

// New returns a DeviceCache that holds up to maxEntries irons. When full, the iron that was seen
// least recently is evicted.
//
// Set maxEntries to zero for an unbounded cache.
func New(maxEntries int) *DeviceCache {
	return &DeviceCache{
		MaxEntries: maxEntries,
		Irons:      make(map[string]Entry),
	}
}

func key(address string) string {
	return strings.ToUpper(address)
}

// Import a DeviceCache using data in r.
// The data should previously have been generated using [DeviceCache.Export].
func Import(r io.Reader) (*DeviceCache, error) {
	var cache DeviceCache
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&cache); err != nil {
		return nil, err
	}
	if cache.Irons == nil {
		cache.Irons = make(map[string]Entry)
	}
	return &cache, nil
}

// ImportFromFile reads a DeviceCache from disk.
func ImportFromFile(filename string) (*DeviceCache, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Import(file)
}

// Export writes a serialized DeviceCache to w.
func (c *DeviceCache) Export(w io.Writer) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	return json.NewEncoder(w).Encode(c)
}

// ExportToFile writes a DeviceCache to disk, replacing any previous contents.
func (c *DeviceCache) ExportToFile(filename string) error {
	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer file.Close()

	return c.Export(file)
}

// Update records info as seen at the given time. Fields that are empty in info keep their cached
// values, so an iron constructed from a bare address does not erase what a scan learned. If the
// cache is full, the least recently seen other iron is evicted; the updated iron is always kept.
func (c *DeviceCache) Update(info *protocol.DeviceInfo, seenAt time.Time) {
	if info == nil || info.Address == "" {
		return
	}
	c.lock.Lock()
	defer c.lock.Unlock()

	k := key(info.Address)
	entry := c.Irons[k]
	if info.Name != "" && info.Name != info.Address {
		entry.Name = info.Name
	}
	if info.Build != "" {
		entry.Build = info.Build
	}
	if info.DeviceSN != "" {
		entry.DeviceSN = info.DeviceSN
	}
	if info.DeviceID != "" {
		entry.DeviceID = info.DeviceID
	}
	entry.SeenAt = seenAt
	c.Irons[k] = entry

	for c.MaxEntries > 0 && len(c.Irons) > c.MaxEntries {
		oldest := ""
		var oldestSeen time.Time
		for address, e := range c.Irons {
			if address == k {
				continue
			}
			if oldest == "" || e.SeenAt.Before(oldestSeen) {
				oldest = address
				oldestSeen = e.SeenAt
			}
		}
		delete(c.Irons, oldest)
	}
}

// Lookup returns the cached identity of the iron at address. Addresses are compared without
// regard to case.
func (c *DeviceCache) Lookup(address string) (*protocol.DeviceInfo, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	entry, ok := c.Irons[key(address)]
	if !ok {
		return nil, false
	}
	return &protocol.DeviceInfo{
		Name:     entry.Name,
		Address:  address,
		Build:    entry.Build,
		DeviceSN: entry.DeviceSN,
		DeviceID: entry.DeviceID,
	}, true
}
