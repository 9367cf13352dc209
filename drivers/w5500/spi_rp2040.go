//go:build rp2040

package w5500

import (
	"machine"

	"tinygo.org/x/drivers"
)

// hardwareSpiBus adapts a tinygo.org/x/drivers.SPI peripheral plus a
// machine.Pin chip-select into the core's SpiBus contract, the same
// pairing drivers/ltc4015.Device takes a drivers.I2C and
// services/hal/internal/platform/provider wraps machine.Pin for GPIO.
type hardwareSpiBus struct {
	bus drivers.SPI
	cs  machine.Pin
}

// NewHardwareSpiBus returns an SpiBus backed by a real SPI peripheral and
// chip-select pin. cs is configured as an output, deasserted (high).
func NewHardwareSpiBus(bus drivers.SPI, cs machine.Pin) SpiBus {
	cs.Configure(machine.PinConfig{Mode: machine.PinOutput})
	cs.High()
	return &hardwareSpiBus{bus: bus, cs: cs}
}

func (h *hardwareSpiBus) Select() error {
	h.cs.Low()
	return nil
}

func (h *hardwareSpiBus) Deselect() error {
	h.cs.High()
	return nil
}

func (h *hardwareSpiBus) WriteByte(b byte) error {
	return h.bus.Tx([]byte{b}, nil)
}

func (h *hardwareSpiBus) WriteBlock(p []byte) error {
	return h.bus.Tx(p, nil)
}

func (h *hardwareSpiBus) ReadByte() (byte, error) {
	var r [1]byte
	if err := h.bus.Tx(nil, r[:]); err != nil {
		return 0, err
	}
	return r[0], nil
}

func (h *hardwareSpiBus) ReadBlock(p []byte) error {
	return h.bus.Tx(nil, p)
}
