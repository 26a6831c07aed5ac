package gpu

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/inference-sim/pisim/sim"
)

// ThreadIdx locates one thread inside a launch.
type ThreadIdx struct {
	Block    int
	Thread   int
	BlockDim int
}

// Global returns the thread's index in [0, TotalThreads).
func (t ThreadIdx) Global() int {
	return t.Block*t.BlockDim + t.Thread
}

// Kernel is the function every thread of a launch executes.
type Kernel func(t ThreadIdx)

// Device executes kernels. Launch blocks until every thread of the grid has
// finished (the host-side synchronization barrier) or the launch fails.
type Device interface {
	Name() string
	MaxThreadsPerBlock() int
	Multiprocessors() int
	Launch(ctx context.Context, grid Grid, kernel Kernel) error
}

// DeviceInfo describes a registered device for listing.
type DeviceInfo struct {
	ID                 int    `json:"id"`
	Name               string `json:"name"`
	MaxThreadsPerBlock int    `json:"max_threads_per_block"`
	Multiprocessors    int    `json:"multiprocessors"`
}

var (
	registryMu sync.RWMutex
	registry   []Device
)

func init() {
	Register(NewHostDevice(runtime.NumCPU()))
}

// Register adds a device and returns its id.
func Register(d Device) int {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = append(registry, d)
	return len(registry) - 1
}

// Devices lists the registered devices in id order.
func Devices() []DeviceInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()
	infos := make([]DeviceInfo, len(registry))
	for id, d := range registry {
		infos[id] = DeviceInfo{
			ID:                 id,
			Name:               d.Name(),
			MaxThreadsPerBlock: d.MaxThreadsPerBlock(),
			Multiprocessors:    d.Multiprocessors(),
		}
	}
	return infos
}

// Lookup returns the device with the given id.
func Lookup(id int) (Device, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if len(registry) == 0 {
		return nil, fmt.Errorf("no compatible device registered: %w", sim.ErrDeviceUnavailable)
	}
	if id < 0 || id >= len(registry) {
		return nil, fmt.Errorf("device id %d out of range [0, %d): %w", id, len(registry), sim.ErrDeviceUnavailable)
	}
	return registry[id], nil
}

// === HostDevice ===

// hostMaxThreadsPerBlock matches the CUDA per-block limit.
const hostMaxThreadsPerBlock = 1024

// HostDevice executes a grid on the host. Blocks are scheduled across
// Multiprocessors goroutines; threads within a block run in order.
type HostDevice struct {
	sms int
}

// NewHostDevice creates a HostDevice with sms concurrent block slots.
func NewHostDevice(sms int) *HostDevice {
	if sms < 1 {
		sms = 1
	}
	return &HostDevice{sms: sms}
}

// Name implements Device.
func (h *HostDevice) Name() string {
	return fmt.Sprintf("host (%d SMs)", h.sms)
}

// MaxThreadsPerBlock implements Device.
func (h *HostDevice) MaxThreadsPerBlock() int {
	return hostMaxThreadsPerBlock
}

// Multiprocessors implements Device.
func (h *HostDevice) Multiprocessors() int {
	return h.sms
}

// Launch implements Device. A cancelled ctx stops scheduling further blocks
// and fails the launch.
func (h *HostDevice) Launch(ctx context.Context, grid Grid, kernel Kernel) error {
	if grid.Blocks <= 0 || grid.ThreadsPerBlock <= 0 {
		return fmt.Errorf("empty grid %dx%d: %w", grid.Blocks, grid.ThreadsPerBlock, sim.ErrInvalidArgument)
	}
	if grid.ThreadsPerBlock > hostMaxThreadsPerBlock {
		return fmt.Errorf("%d threads per block exceeds device limit %d: %w",
			grid.ThreadsPerBlock, hostMaxThreadsPerBlock, sim.ErrInvalidArgument)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.sms)
	for b := 0; b < grid.Blocks; b++ {
		if gctx.Err() != nil {
			break
		}
		b := b
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return runBlock(b, grid.ThreadsPerBlock, kernel)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// runBlock executes every thread of one block, turning a panic into an error.
func runBlock(block, blockDim int, kernel Kernel) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("block %d panicked: %v", block, r)
		}
	}()
	for t := 0; t < blockDim; t++ {
		kernel(ThreadIdx{Block: block, Thread: t, BlockDim: blockDim})
	}
	return nil
}
