package w5500_test

import (
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"w5500-go/drivers/w5500"
	mock_w5500 "w5500-go/drivers/w5500/mock"
)

// TestIsDeviceResponsive_S6_VersionrVariants is spec.md §8 scenario S6: a
// mock bus returning 0x03, 0x00, 0xFF or 0x05 for VERSIONR must report
// not-responsive; only 0x04 is accepted. gomock's exact expectation
// sequence is the natural fit here, since the property under test is "this
// call sequence happened with this return value", not a state comparison.
func TestIsDeviceResponsive_S6_VersionrVariants(t *testing.T) {
	for _, versionr := range []byte{0x03, 0x00, 0xFF, 0x05} {
		t.Run("", func(t *testing.T) {
			ctrl := gomock.NewController(t)
			bus := mock_w5500.NewMockSpiBus(ctrl)

			gomock.InOrder(
				bus.EXPECT().Select().Return(nil),
				bus.EXPECT().WriteBlock(gomock.Any()).Return(nil),
				bus.EXPECT().ReadByte().Return(versionr, nil),
				bus.EXPECT().Deselect().Return(nil),
			)

			stack := w5500.NewNetworkStack(bus, mock_w5500.NewMockPortPool(ctrl), mock_w5500.NewMockPortPool(ctrl), w5500.NonresponsiveDevice)
			ok, err := stack.IsDeviceResponsive()
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestIsDeviceResponsive_S6_VersionrMatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	bus := mock_w5500.NewMockSpiBus(ctrl)

	gomock.InOrder(
		bus.EXPECT().Select().Return(nil),
		bus.EXPECT().WriteBlock(gomock.Any()).Return(nil),
		bus.EXPECT().ReadByte().Return(byte(0x04), nil),
		bus.EXPECT().Deselect().Return(nil),
	)

	stack := w5500.NewNetworkStack(bus, mock_w5500.NewMockPortPool(ctrl), mock_w5500.NewMockPortPool(ctrl), w5500.NonresponsiveDevice)
	ok, err := stack.IsDeviceResponsive()
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestSpiFramer_ReadByte_EncodesExactFrameHeader exercises spec.md §8
// testable property #1: the three header bytes written ahead of a
// common-register read must be exactly (offset>>8, offset&0xFF,
// controlByte). VERSIONR lives at offset 0x0039 and is a common-block
// read, so the control byte is just OM|RWB (BSB=0).
func TestSpiFramer_ReadByte_EncodesExactFrameHeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	bus := mock_w5500.NewMockSpiBus(ctrl)

	gomock.InOrder(
		bus.EXPECT().Select().Return(nil),
		bus.EXPECT().WriteBlock([]byte{0x00, 0x39, 0x00}).Return(nil),
		bus.EXPECT().ReadByte().Return(byte(0x04), nil),
		bus.EXPECT().Deselect().Return(nil),
	)

	framer := w5500.NewSpiFramer(bus)
	v, err := framer.ReadByte(0x0039)
	require.NoError(t, err)
	assert.Equal(t, byte(0x04), v)
}

// TestTcpPortRefcount_S5_DeallocatesExactlyOnceAcrossSharedListenSockets
// drives spec.md §8 testable property #5 with a MockPortPool: constructing
// a TcpServer with N sockets sharing one port and closing it deallocates
// that port exactly once, regardless of how many owned sockets the
// teardown scan iterates over. The hand-written sharedPortBus fake stands
// in for the chip so the register state (SN_MR/SN_PORT) returned to the
// teardown scan is fully controlled.
func TestTcpPortRefcount_S5_DeallocatesExactlyOnceAcrossSharedListenSockets(t *testing.T) {
	ctrl := gomock.NewController(t)
	tcpPorts := mock_w5500.NewMockPortPool(ctrl)
	udpPorts := mock_w5500.NewMockPortPool(ctrl)
	bus := &sharedPortBus{}

	tcpPorts.EXPECT().Allocate(w5500.PortAny).Return(uint16(9090), nil)
	tcpPorts.EXPECT().Deallocate(uint16(9090)).Times(1)

	stack := w5500.NewNetworkStack(bus, tcpPorts, udpPorts, w5500.NonresponsiveDevice)
	require.NoError(t, stack.Initialize(w5500.InitConfig{
		PhyMode:          w5500.PhyAllCapableAuto,
		SocketBufferSize: w5500.BufferSize2KiB,
	}))

	server, err := stack.NewTcpServer(3)
	require.NoError(t, err)
	require.NoError(t, server.Bind(w5500.PortAny, nil))

	server.Close()
	assert.Empty(t, server.Sockets())
}

// sharedPortBus is a minimal SpiBus fake (not a gomock mock) used
// alongside the MockPortPool above: it models just enough chip state —
// common MR reset self-clear and VERSIONR, and per-socket
// SN_MR/SN_PORT/SN_CR/SN_SR — for a
// TcpServer bound to a single shared port across all its owned sockets.
type sharedPortBus struct {
	common  [64]byte
	sockReg [8][64]byte
	offset  uint16
	bsb     byte
}

func (b *sharedPortBus) Select() error   { return nil }
func (b *sharedPortBus) Deselect() error { return nil }

func (b *sharedPortBus) WriteBlock(p []byte) error {
	if b.common[0x39] == 0 {
		b.common[0x39] = 0x04
	}
	if len(p) == 3 {
		b.offset = uint16(p[0])<<8 | uint16(p[1])
		b.bsb = p[2] &^ 0b111
		return nil
	}
	for _, v := range p {
		b.writeOne(v)
	}
	return nil
}

func (b *sharedPortBus) WriteByte(v byte) error { return b.WriteBlock([]byte{v}) }

func (b *sharedPortBus) ReadBlock(p []byte) error {
	for i := range p {
		p[i] = b.readOne()
	}
	return nil
}

func (b *sharedPortBus) ReadByte() (byte, error) { return b.readOne(), nil }

func (b *sharedPortBus) writeOne(v byte) {
	switch b.bsb & 0b11000 {
	case 0b00000:
		if b.offset == 0x00 {
			v &^= 1 << 7 // MR reset bit self-clears instantly
		}
		b.common[b.offset] = v
	case 0b01000:
		s := b.bsb >> 5
		b.sockReg[s][b.offset] = v
		if b.offset == 0x01 && v != 0 { // SN_CR: chip accepts the command immediately
			if v == 0x01 { // OPEN
				b.sockReg[s][0x03] = 0x13
			}
			b.sockReg[s][0x01] = 0
		}
	}
	b.offset++
}

func (b *sharedPortBus) readOne() byte {
	var v byte
	switch b.bsb & 0b11000 {
	case 0b00000:
		v = b.common[b.offset]
	case 0b01000:
		s := b.bsb >> 5
		v = b.sockReg[s][b.offset]
	}
	b.offset++
	return v
}
