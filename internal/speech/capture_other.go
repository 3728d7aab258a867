//go:build !linux

package speech

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
)

type malgoCapture struct {
	sampleRate int

	mu     sync.Mutex
	ctx    *malgo.AllocatedContext
	device *malgo.Device
}

// NewCapture checks for a capture device through miniaudio. The context
// and device are opened again for every Start.
func NewCapture(sampleRate int) (Capture, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("malgo: %w", err)
	}
	defer freeContext(ctx)

	devices, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("malgo devices: %w", err)
	}
	if len(devices) == 0 {
		return nil, errors.New("no capture device")
	}
	return &malgoCapture{sampleRate: sampleRate}, nil
}

func (m *malgoCapture) Start(onData func([]int16)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.device != nil {
		return fmt.Errorf("capture already running")
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("malgo: %w", err)
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = 1
	cfg.SampleRate = uint32(m.sampleRate)

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, data []byte, _ uint32) {
			if len(data) < 2 {
				return
			}
			onData(samplesLE(data))
		},
	}

	dev, err := malgo.InitDevice(ctx.Context, cfg, callbacks)
	if err != nil {
		freeContext(ctx)
		return fmt.Errorf("malgo capture: %w", err)
	}
	if err := dev.Start(); err != nil {
		dev.Uninit()
		freeContext(ctx)
		return fmt.Errorf("malgo start: %w", err)
	}

	m.ctx = ctx
	m.device = dev
	return nil
}

func (m *malgoCapture) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.device == nil {
		return
	}
	m.device.Stop()
	m.device.Uninit()
	freeContext(m.ctx)
	m.device = nil
	m.ctx = nil
}

func freeContext(ctx *malgo.AllocatedContext) {
	ctx.Uninit()
	ctx.Free()
}
