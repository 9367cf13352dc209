package w5500_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"w5500-go/drivers/w5500"
)

// bufferBus backs common/per-socket registers plus full 16-bit-addressable
// TX/RX buffers, so tests can preset SN_TX_WR/SN_RX_RD near the 65536
// wraparound boundary and observe that BufferRing's pointer arithmetic
// wraps exactly the way uint16 addition does.
type bufferBus struct {
	sockReg [8][64]byte
	tx      [8][65536]byte
	rx      [8][65536]byte
	offset  uint16
	bsb     byte
}

func (b *bufferBus) Select() error   { return nil }
func (b *bufferBus) Deselect() error { return nil }

func (b *bufferBus) WriteBlock(p []byte) error {
	if len(p) == 3 {
		b.offset = uint16(p[0])<<8 | uint16(p[1])
		b.bsb = p[2] &^ 0b111
		return nil
	}
	s := b.bsb >> 5
	switch b.bsb & 0b11000 {
	case 0b01000:
		for _, v := range p {
			b.sockReg[s][b.offset] = v
			b.offset++
		}
	case 0b10000:
		for _, v := range p {
			b.tx[s][b.offset] = v
			b.offset++
		}
	}
	return nil
}

func (b *bufferBus) WriteByte(v byte) error { return b.WriteBlock([]byte{v}) }

func (b *bufferBus) ReadBlock(p []byte) error {
	s := b.bsb >> 5
	switch b.bsb & 0b11000 {
	case 0b01000:
		for i := range p {
			p[i] = b.sockReg[s][b.offset]
			b.offset++
		}
	case 0b11000:
		for i := range p {
			p[i] = b.rx[s][b.offset]
			b.offset++
		}
	}
	return nil
}

func (b *bufferBus) ReadByte() (byte, error) {
	var v [1]byte
	err := b.ReadBlock(v[:])
	return v[0], err
}

func TestBufferRing_Write_WrapsPointerAtBoundary(t *testing.T) {
	bus := &bufferBus{}
	framer := w5500.NewSpiFramer(bus)
	regs := w5500.NewRegisterFile(framer)
	ring := w5500.NewBufferRing(regs, framer, w5500.Socket0)

	const freeSize = 2048
	bus.sockReg[0][0x20] = byte(freeSize >> 8)
	bus.sockReg[0][0x21] = byte(freeSize)
	require.NoError(t, regs.SetSnTXWR(w5500.Socket0, 0xFFFE))

	n, err := ring.Write([]byte{0xAA, 0xBB, 0xCC, 0xDD})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	assert.Equal(t, byte(0xAA), bus.tx[0][0xFFFE])
	assert.Equal(t, byte(0xBB), bus.tx[0][0xFFFF])
	assert.Equal(t, byte(0xCC), bus.tx[0][0x0000])
	assert.Equal(t, byte(0xDD), bus.tx[0][0x0001])

	wr, err := regs.SnTXWR(w5500.Socket0)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0002), wr) // 0xFFFE + 4 wraps to 0x0002
}

func TestBufferRing_Write_ClampsToFreeSize(t *testing.T) {
	bus := &bufferBus{}
	framer := w5500.NewSpiFramer(bus)
	regs := w5500.NewRegisterFile(framer)
	ring := w5500.NewBufferRing(regs, framer, w5500.Socket0)

	bus.sockReg[0][0x20] = 0
	bus.sockReg[0][0x21] = 2 // SN_TX_FSR = 2

	n, err := ring.Write([]byte{1, 2, 3, 4, 5})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestBufferRing_Read_AdvancesRXRDWithWraparound(t *testing.T) {
	bus := &bufferBus{}
	framer := w5500.NewSpiFramer(bus)
	regs := w5500.NewRegisterFile(framer)
	ring := w5500.NewBufferRing(regs, framer, w5500.Socket0)

	bus.rx[0][0xFFFF] = 0x11
	bus.rx[0][0x0000] = 0x22
	bus.sockReg[0][0x26] = 0
	bus.sockReg[0][0x27] = 2 // SN_RX_RSR = 2
	require.NoError(t, regs.SetSnRXRD(w5500.Socket0, 0xFFFF))

	buf := make([]byte, 2)
	n, err := ring.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0x11, 0x22}, buf)

	rd, err := regs.SnRXRD(w5500.Socket0)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0001), rd) // 0xFFFF + 2 wraps to 0x0001
}
