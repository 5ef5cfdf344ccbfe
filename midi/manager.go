package midi

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Direction tells input ports from output ports.
type Direction int

const (
	In Direction = iota
	Out
)

func (d Direction) String() string {
	if d == Out {
		return "out"
	}
	return "in"
}

// Port names one MIDI port.
type Port struct {
	Name      string
	Direction Direction
}

// DeviceEvent is emitted when ports appear or disappear.
type DeviceEvent struct {
	Type DeviceEventType
	Port Port
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// PortLister returns the names of the available input and output ports.
type PortLister func() (ins, outs []string)

// SystemPorts lists the ports of the registered gomidi driver.
func SystemPorts() (ins, outs []string) {
	for _, p := range gomidi.GetInPorts() {
		ins = append(ins, p.String())
	}
	for _, p := range gomidi.GetOutPorts() {
		outs = append(outs, p.String())
	}
	return ins, outs
}

// DeviceManager handles hot-plug detection of MIDI ports
type DeviceManager struct {
	list     PortLister
	ports    map[Port]bool
	mu       sync.RWMutex
	events   chan DeviceEvent
	pollRate time.Duration
	timeout  time.Duration
}

// NewDeviceManager scans with list, or SystemPorts when list is nil.
func NewDeviceManager(list PortLister) *DeviceManager {
	if list == nil {
		list = SystemPorts
	}
	return &DeviceManager{
		list:     list,
		ports:    make(map[Port]bool),
		events:   make(chan DeviceEvent, 16),
		pollRate: time.Second,
		timeout:  3 * time.Second,
	}
}

// Events returns a channel of port connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Ports returns the known ports sorted by direction and name.
func (dm *DeviceManager) Ports() []Port {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	out := make([]Port, 0, len(dm.ports))
	for p := range dm.ports {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Direction != out[j].Direction {
			return out[i].Direction < out[j].Direction
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Find returns the first known port of direction d whose name contains
// name, ignoring case.
func (dm *DeviceManager) Find(name string, d Direction) (Port, bool) {
	name = strings.ToLower(name)
	for _, p := range dm.Ports() {
		if p.Direction == d && strings.Contains(strings.ToLower(p.Name), name) {
			return p, true
		}
	}
	return Port{}, false
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.Scan()

	for {
		select {
		case <-ctx.Done():
			close(dm.events)
			return
		case <-ticker.C:
			dm.Scan()
		}
	}
}

// Scan lists the ports once and emits events for the differences. It
// reports false when the driver did not answer in time.
func (dm *DeviceManager) Scan() bool {
	type portsResult struct {
		ins, outs []string
	}

	// CoreMIDI can hang
	ch := make(chan portsResult, 1)
	go func() {
		ins, outs := dm.list()
		ch <- portsResult{ins, outs}
	}()

	var result portsResult
	select {
	case result = <-ch:
	case <-time.After(dm.timeout):
		return false
	}

	seen := make(map[Port]bool)
	for _, n := range result.ins {
		seen[Port{Name: n, Direction: In}] = true
	}
	for _, n := range result.outs {
		seen[Port{Name: n, Direction: Out}] = true
	}

	dm.mu.Lock()
	var events []DeviceEvent
	for p := range seen {
		if !dm.ports[p] {
			dm.ports[p] = true
			events = append(events, DeviceEvent{Type: DeviceConnected, Port: p})
		}
	}
	for p := range dm.ports {
		if !seen[p] {
			delete(dm.ports, p)
			events = append(events, DeviceEvent{Type: DeviceDisconnected, Port: p})
		}
	}
	dm.mu.Unlock()

	sort.Slice(events, func(i, j int) bool { return events[i].Port.Name < events[j].Port.Name })
	for _, ev := range events {
		select {
		case dm.events <- ev:
		default:
		}
	}
	return true
}
