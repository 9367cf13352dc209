// Package w5500 provides a driver for the WIZnet W5500 hardwired TCP/IP
// controller: a SPI-attached device that implements MAC/IP/TCP/UDP in
// silicon across eight independent hardware sockets, each with dedicated
// transmit and receive buffers.
//
// The package is organised bottom-up: SpiFramer encodes control bytes and
// drives SPI transactions, RegisterFile offers typed register access on
// top of the framer, BufferRing implements the circular TX/RX buffer
// protocol, SocketAllocator virtualises the eight hardware sockets, and
// NetworkStack/UdpSocket/TcpClient/TcpServer/TcpServerConnectionHandler
// build the user-facing socket API on top of all of the above.
package w5500

// SocketID identifies one of the W5500's eight hardware sockets.
type SocketID uint8

const (
	Socket0 SocketID = iota
	Socket1
	Socket2
	Socket3
	Socket4
	Socket5
	Socket6
	Socket7
)

// Sockets is the number of hardware sockets the W5500 provides.
const Sockets = 8

// encode returns the 3-bit SOCKET field of the control byte, positioned at
// bit 5 (n << 5), for this socket.
func (s SocketID) encode() byte { return byte(s) << 5 }

// SocketMemoryBlock selects which of a socket's three memory regions is
// addressed by a transaction.
type SocketMemoryBlock uint8

const (
	SocketRegisters SocketMemoryBlock = 0b01 << 3
	SocketTxBuffer  SocketMemoryBlock = 0b10 << 3
	SocketRxBuffer  SocketMemoryBlock = 0b11 << 3
)

// MemoryOffset is a 16-bit byte offset within a selected memory block.
type MemoryOffset uint16

// operation selects the RWB field of the control byte.
type operation uint8

const (
	opRead  operation = 0 << 2
	opWrite operation = 1 << 2
)

// omVDM is the OM field for variable-length data mode, the only operation
// mode this driver uses.
const omVDM = 0b00

// commonBlockControlByte is the BSB value (0b00000) selecting the common
// register block.
const commonBlockControlByte = 0

// controlByte builds the single control byte of a FrameHeader: OM[1:0] |
// RWB[2] | BSB[7:3]. bsb is expected pre-shifted into bits [7:3], matching
// SocketMemoryBlock's and the common-block encoding above.
func controlByte(bsb byte, op operation) byte {
	return omVDM | byte(op) | bsb
}

// FrameHeader is the 3-byte header prepended to every register/buffer
// transaction: high byte of the offset, low byte of the offset, control
// byte.
type FrameHeader [3]byte

// commonFrameHeader builds the header for a common-register-block access.
func commonFrameHeader(offset MemoryOffset, op operation) FrameHeader {
	return FrameHeader{
		byte(offset >> 8),
		byte(offset),
		controlByte(commonBlockControlByte, op),
	}
}

// socketFrameHeader builds the header for a per-socket memory access.
func socketFrameHeader(socket SocketID, block SocketMemoryBlock, offset MemoryOffset, op operation) FrameHeader {
	return FrameHeader{
		byte(offset >> 8),
		byte(offset),
		controlByte(socket.encode()|byte(block), op),
	}
}

// SocketBufferSize is the per-socket TX/RX buffer allocation, one of
// {0, 2, 4, 8, 16} KiB. It determines how many of the eight hardware
// sockets are usable.
type SocketBufferSize uint16

const (
	BufferSize0KiB  SocketBufferSize = 0
	BufferSize2KiB  SocketBufferSize = 2
	BufferSize4KiB  SocketBufferSize = 4
	BufferSize8KiB  SocketBufferSize = 8
	BufferSize16KiB SocketBufferSize = 16
)

// UsableSockets returns how many of the eight hardware sockets are usable
// at this buffer size: 16/bufsize sockets, capped at Sockets. A buffer
// size of 0 leaves the chip initialised but with zero usable sockets.
func (s SocketBufferSize) UsableSockets() int {
	if s == 0 {
		return 0
	}
	n := 16 / int(s)
	if n > Sockets {
		n = Sockets
	}
	return n
}

// PhyMode selects the W5500's PHY operation mode. Each value other than
// ConfiguredByHardware asserts the PHYCFGR bypass bit (bit 6) and writes a
// 3-bit OPMDC field (bits 5:3); ConfiguredByHardware leaves the bypass bit
// clear so the chip uses its hardware-strapped pin configuration instead.
type PhyMode uint8

const (
	// PhyConfiguredByHardware defers to the chip's hardware-strapped PHY
	// configuration pins; OPMDC is not written.
	PhyConfiguredByHardware PhyMode = iota
	// PhyPowerDown asserts OPMDC 110: PHY power-down.
	PhyPowerDown
	// Phy10HalfDuplex asserts OPMDC 000: 10BT half-duplex, no autonegotiation.
	Phy10HalfDuplex
	// Phy10FullDuplex asserts OPMDC 001: 10BT full-duplex, no autonegotiation.
	Phy10FullDuplex
	// Phy100HalfDuplex asserts OPMDC 010: 100BT half-duplex, no autonegotiation.
	Phy100HalfDuplex
	// Phy100FullDuplex asserts OPMDC 011: 100BT full-duplex, no autonegotiation.
	Phy100FullDuplex
	// Phy100HalfDuplexAuto asserts OPMDC 100: 100BT half-duplex, autonegotiation enabled.
	Phy100HalfDuplexAuto
	// PhyAllCapableAuto asserts OPMDC 111: all capable, autonegotiation enabled.
	PhyAllCapableAuto
)

const (
	phycfgrResetBit   = 1 << 7
	phycfgrBypassBit  = 1 << 6
	phycfgrOpmdcShift = 3
)

// opmdc returns the 3-bit OPMDC encoding for this mode and whether the
// bypass bit must be asserted. ConfiguredByHardware returns bypass=false
// and an OPMDC value that is not written.
func (m PhyMode) opmdc() (value uint8, bypass bool) {
	switch m {
	case PhyConfiguredByHardware:
		return 0, false
	case PhyPowerDown:
		return 0b110, true
	case Phy10HalfDuplex:
		return 0b000, true
	case Phy10FullDuplex:
		return 0b001, true
	case Phy100HalfDuplex:
		return 0b010, true
	case Phy100FullDuplex:
		return 0b011, true
	case Phy100HalfDuplexAuto:
		return 0b100, true
	case PhyAllCapableAuto:
		return 0b111, true
	default:
		return 0, false
	}
}

// encodePHYCFGR builds the PHYCFGR byte for this mode with the given
// reset-bit state (true sets the reset bit, bit 7; NetworkStack.Initialize
// writes true, false, true for the chip's reset-to-opmode sequence).
func (m PhyMode) encodePHYCFGR(resetAsserted bool) byte {
	opmdc, bypass := m.opmdc()
	var b byte
	if resetAsserted {
		b |= phycfgrResetBit
	}
	if bypass {
		b |= phycfgrBypassBit
	}
	b |= opmdc << phycfgrOpmdcShift
	return b
}

// SocketState is the per-connection-handler state machine position. Not
// every socket variant uses every state; see the per-socket-kind methods
// in udp.go, tcp_client.go, tcp_server.go and tcp_handler.go.
type SocketState uint8

const (
	StateUninitialized SocketState = iota
	StateInitialized
	StateBound
	StateConnecting
	StateConnected
	StateListening
)
