package w5500_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"w5500-go/drivers/w5500"
)

// tcpChipBus is the TCP-side counterpart of udpChipBus: common registers,
// per-socket registers and TX/RX buffers for all 8 sockets, MR self-clear,
// and SN_CR auto-execute for OPEN/SEND. Tests drive SYN/handshake timing
// manually by writing directly into sockReg, since this fake has no notion
// of a peer.
type tcpChipBus struct {
	common  [64]byte
	sockReg [8][64]byte
	tx      [8][65536]byte
	rx      [8][65536]byte
	offset  uint16
	bsb     byte
}

func newTcpChipBus() *tcpChipBus {
	b := &tcpChipBus{}
	b.common[0x39] = 0x04
	for s := range b.sockReg {
		b.sockReg[s][0x20] = 0x08 // SN_TX_FSR = 2048 free
	}
	return b
}

func (b *tcpChipBus) Select() error   { return nil }
func (b *tcpChipBus) Deselect() error { return nil }

func (b *tcpChipBus) WriteBlock(p []byte) error {
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

func (b *tcpChipBus) WriteByte(v byte) error { return b.WriteBlock([]byte{v}) }

func (b *tcpChipBus) ReadBlock(p []byte) error {
	for i := range p {
		p[i] = b.readOne()
	}
	return nil
}

func (b *tcpChipBus) ReadByte() (byte, error) { return b.readOne(), nil }

func (b *tcpChipBus) writeOne(v byte) {
	switch b.bsb & 0b11000 {
	case 0b00000:
		if b.offset == 0x00 {
			v &^= 1 << 7
		}
		b.common[b.offset] = v
	case 0b01000:
		s := b.bsb >> 5
		b.sockReg[s][b.offset] = v
		if b.offset == 0x01 && v != 0 {
			b.execCommand(int(s), v)
		}
	case 0b10000:
		s := b.bsb >> 5
		b.tx[s][b.offset] = v
	}
	b.offset++
}

func (b *tcpChipBus) readOne() byte {
	var v byte
	switch b.bsb & 0b11000 {
	case 0b00000:
		v = b.common[b.offset]
	case 0b01000:
		s := b.bsb >> 5
		v = b.sockReg[s][b.offset]
	case 0b11000:
		s := b.bsb >> 5
		v = b.rx[s][b.offset]
	}
	b.offset++
	return v
}

func (b *tcpChipBus) execCommand(s int, command byte) {
	switch command {
	case 0x01: // OPEN
		b.sockReg[s][0x03] = 0x13 // SN_SR = INIT/LISTEN
	case 0x20: // SEND
		b.sockReg[s][0x02] |= 1 << 4 // SN_IR SEND_OK
	}
	b.sockReg[s][0x01] = 0
}

func newInitializedStack(t *testing.T, bus *tcpChipBus) *w5500.NetworkStack {
	t.Helper()
	stack := w5500.NewNetworkStack(bus, &fakePortPool{}, &fakePortPool{}, w5500.NonresponsiveDevice)
	require.NoError(t, stack.Initialize(w5500.InitConfig{
		PhyMode:          w5500.PhyAllCapableAuto,
		SocketBufferSize: w5500.BufferSize2KiB,
	}))
	return stack
}

func TestTcpClient_BindThenConnect_TransitionsThroughConnecting(t *testing.T) {
	bus := newTcpChipBus()
	stack := newInitializedStack(t, bus)

	client, err := stack.NewTcpClient()
	require.NoError(t, err)
	require.NoError(t, client.Bind(6000, nil))
	assert.Equal(t, w5500.StateBound, client.State())

	dest := w5500.Endpoint{Address: w5500.Address{10, 0, 0, 5}, Port: 80}
	err = client.Connect(dest)
	assert.ErrorIs(t, err, w5500.WouldBlock)
	assert.Equal(t, w5500.StateConnecting, client.State())

	// Still mid-handshake.
	bus.sockReg[0][0x03] = 0x15 // SYN_SENT
	err = client.Connect(dest)
	assert.ErrorIs(t, err, w5500.WouldBlock)

	// Peer accepted.
	bus.sockReg[0][0x03] = 0x17 // ESTABLISHED
	err = client.Connect(dest)
	require.NoError(t, err)
	assert.Equal(t, w5500.StateConnected, client.State())
}

func TestTcpClient_Connect_RefusedReturnsOperationTimeout(t *testing.T) {
	bus := newTcpChipBus()
	stack := newInitializedStack(t, bus)

	client, err := stack.NewTcpClient()
	require.NoError(t, err)
	require.NoError(t, client.Bind(6001, nil))

	dest := w5500.Endpoint{Address: w5500.Address{10, 0, 0, 5}, Port: 80}
	require.ErrorIs(t, client.Connect(dest), w5500.WouldBlock)
	require.ErrorIs(t, client.Connect(dest), w5500.WouldBlock)

	bus.sockReg[0][0x03] = 0x00 // CLOSED
	err = client.Connect(dest)
	assert.ErrorIs(t, err, w5500.OperationTimeout)
}

func TestTcpClient_TransmitReceive_AfterConnected(t *testing.T) {
	bus := newTcpChipBus()
	stack := newInitializedStack(t, bus)

	client, err := stack.NewTcpClient()
	require.NoError(t, err)
	require.NoError(t, client.Bind(6002, nil))

	dest := w5500.Endpoint{Address: w5500.Address{10, 0, 0, 5}, Port: 80}
	require.ErrorIs(t, client.Connect(dest), w5500.WouldBlock)
	bus.sockReg[0][0x03] = 0x17 // ESTABLISHED
	require.NoError(t, client.Connect(dest))

	n, err := client.Transmit([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	copy(bus.rx[0][0:5], []byte("world"))
	bus.sockReg[0][0x26], bus.sockReg[0][0x27] = 0, 5 // SN_RX_RSR = 5

	buf := make([]byte, 5)
	n, err = client.Receive(buf)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "world", string(buf))
}

func TestTcpClient_Close_ReleasesPortWhenLastReference(t *testing.T) {
	bus := newTcpChipBus()
	ports := &fakePortPool{}
	stack := w5500.NewNetworkStack(bus, ports, &fakePortPool{}, w5500.NonresponsiveDevice)
	require.NoError(t, stack.Initialize(w5500.InitConfig{
		PhyMode:          w5500.PhyAllCapableAuto,
		SocketBufferSize: w5500.BufferSize2KiB,
	}))

	client, err := stack.NewTcpClient()
	require.NoError(t, err)
	require.NoError(t, client.Bind(6003, nil))

	client.Close()
	assert.Equal(t, w5500.StateUninitialized, client.State())
	assert.Equal(t, []uint16{6003}, ports.deallocated)
}

func TestTcpServer_Bind_OpensAllOwnedSocketsToInit(t *testing.T) {
	bus := newTcpChipBus()
	stack := newInitializedStack(t, bus)

	server, err := stack.NewTcpServer(3)
	require.NoError(t, err)
	require.NoError(t, server.Bind(8000, nil))

	assert.Equal(t, w5500.StateBound, server.State())
	assert.Len(t, server.Sockets(), 3)
	for _, id := range server.Sockets() {
		assert.Equal(t, byte(0x13), bus.sockReg[id][0x03])
	}
}

func TestTcpServer_Listen_WithBacklogAtOrBelowOwnedAllocatesNothing(t *testing.T) {
	bus := newTcpChipBus()
	stack := newInitializedStack(t, bus)

	server, err := stack.NewTcpServer(2)
	require.NoError(t, err)
	require.NoError(t, server.Bind(8001, nil))

	require.NoError(t, server.Listen(1)) // below current owned count of 2
	assert.Len(t, server.Sockets(), 2)
	assert.Equal(t, w5500.StateListening, server.State())
}

func TestTcpServer_Listen_ExpandsBacklogByCloningConfig(t *testing.T) {
	bus := newTcpChipBus()
	stack := newInitializedStack(t, bus)

	server, err := stack.NewTcpServer(1)
	require.NoError(t, err)
	require.NoError(t, server.Bind(8002, nil))
	require.NoError(t, server.SetTimeToLive(64))

	require.NoError(t, server.Listen(3))
	assert.Len(t, server.Sockets(), 3)
	for _, id := range server.Sockets() {
		assert.Equal(t, byte(64), bus.sockReg[id][0x16]) // SN_TTL cloned
	}
}

func TestTcpServer_Accept_DetachesEstablishedSocketAndReplenishes(t *testing.T) {
	bus := newTcpChipBus()
	stack := newInitializedStack(t, bus)

	server, err := stack.NewTcpServer(2)
	require.NoError(t, err)
	require.NoError(t, server.Bind(8003, nil))
	require.NoError(t, server.Listen(2))

	established := server.Sockets()[0]
	bus.sockReg[established][0x03] = 0x17 // ESTABLISHED

	handler, err := server.Accept()
	require.NoError(t, err)
	require.NotNil(t, handler)

	// Backlog maintained at 2: one remaining original plus one replenished.
	assert.Len(t, server.Sockets(), 2)
	for _, id := range server.Sockets() {
		assert.NotEqual(t, established, id)
	}
}

func TestTcpServer_Accept_WouldBlockWhenNoneEstablished(t *testing.T) {
	bus := newTcpChipBus()
	stack := newInitializedStack(t, bus)

	server, err := stack.NewTcpServer(1)
	require.NoError(t, err)
	require.NoError(t, server.Bind(8004, nil))
	require.NoError(t, server.Listen(1))

	_, err = server.Accept()
	assert.ErrorIs(t, err, w5500.WouldBlock)
}

func TestTcpServerConnectionHandler_Close_DoesNotDependOnParentServer(t *testing.T) {
	bus := newTcpChipBus()
	ports := &fakePortPool{}
	stack := w5500.NewNetworkStack(bus, ports, &fakePortPool{}, w5500.NonresponsiveDevice)
	require.NoError(t, stack.Initialize(w5500.InitConfig{
		PhyMode:          w5500.PhyAllCapableAuto,
		SocketBufferSize: w5500.BufferSize2KiB,
	}))

	server, err := stack.NewTcpServer(1)
	require.NoError(t, err)
	require.NoError(t, server.Bind(8005, nil))
	require.NoError(t, server.Listen(1))

	established := server.Sockets()[0]
	bus.sockReg[established][0x03] = 0x17

	handler, err := server.Accept()
	require.NoError(t, err)

	// With backlog 1, Accept detaches the server's only owned socket and
	// replenishes with a fresh listening socket on the same port; Close on
	// the server tears that socket down but must not deallocate the port
	// the handler still holds.
	server.Close()
	assert.Empty(t, ports.deallocated)

	// Close must succeed with no reference back to the server that
	// produced handler, and is what actually releases the port.
	handler.Close()
	assert.Equal(t, []uint16{8005}, ports.deallocated)
}

func TestTcpServer_PortRefcount_SharedAcrossMultipleListeningSockets(t *testing.T) {
	bus := newTcpChipBus()
	ports := &fakePortPool{}
	stack := w5500.NewNetworkStack(bus, ports, &fakePortPool{}, w5500.NonresponsiveDevice)
	require.NoError(t, stack.Initialize(w5500.InitConfig{
		PhyMode:          w5500.PhyAllCapableAuto,
		SocketBufferSize: w5500.BufferSize2KiB,
	}))

	server, err := stack.NewTcpServer(3)
	require.NoError(t, err)
	require.NoError(t, server.Bind(8006, nil))

	// Closing releases all 3 owned sockets; only the last one to run the
	// scan actually deallocates the port, but from the caller's
	// perspective Close succeeds regardless of order.
	server.Close()
	assert.Equal(t, w5500.StateUninitialized, server.State())
	assert.Empty(t, server.Sockets())
	assert.Equal(t, []uint16{8006}, ports.deallocated)
}
