package w5500

import "w5500-go/internal/mathx"

// BufferRing implements the W5500's bounded, circular TX/RX buffer
// read/write protocol. The chip maintains a 16-bit
// wraparound write pointer and read pointer per socket, indexing into a
// 2-16 KiB circular buffer whose size is fixed by SocketBufferSize; the
// chip masks low bits against the buffer size when computing the physical
// offset, so this type adds to pointers with ordinary Go uint16 modular
// arithmetic and passes the unmasked result back to the chip — the SPI
// write itself already wraps correctly because the chip's addressing
// wraps naturally at 16 bits.
type BufferRing struct {
	regs   *RegisterFile
	framer *SpiFramer
	socket SocketID
}

// NewBufferRing returns a BufferRing for the given socket.
func NewBufferRing(regs *RegisterFile, framer *SpiFramer, socket SocketID) *BufferRing {
	return &BufferRing{regs: regs, framer: framer, socket: socket}
}

// Write executes the TX write protocol: clamp count to the free size,
// write at the current SN_TX_WR offset, and advance SN_TX_WR by the
// number of bytes actually written. It returns the number of bytes
// written, which may be less than len(p) if the free size is smaller.
// The caller is responsible for issuing SEND/SEND_KEEP afterwards.
func (b *BufferRing) Write(p []byte) (int, error) {
	free, err := b.regs.SnTXFSR(b.socket)
	if err != nil {
		return 0, err
	}
	n := mathx.Min(len(p), int(free))
	if n == 0 {
		return 0, nil
	}

	wr, err := b.regs.SnTXWR(b.socket)
	if err != nil {
		return 0, err
	}

	if err := b.framer.WriteSocketBlock(b.socket, SocketTxBuffer, MemoryOffset(wr), p[:n]); err != nil {
		return 0, err
	}

	if err := b.regs.SetSnTXWR(b.socket, wr+uint16(n)); err != nil {
		return 0, err
	}
	return n, nil
}

// Read executes the RX read protocol: clamp count to the received size,
// read from the current SN_RX_RD offset, and advance SN_RX_RD by the
// number of bytes actually read. It returns the number of bytes read. The
// caller is responsible for issuing RECV afterwards.
func (b *BufferRing) Read(p []byte) (int, error) {
	received, err := b.regs.SnRXRSR(b.socket)
	if err != nil {
		return 0, err
	}
	n := mathx.Min(len(p), int(received))
	if n == 0 {
		return 0, nil
	}

	rd, err := b.regs.SnRXRD(b.socket)
	if err != nil {
		return 0, err
	}

	if err := b.framer.ReadSocketBlock(b.socket, SocketRxBuffer, MemoryOffset(rd), p[:n]); err != nil {
		return 0, err
	}

	if err := b.regs.SetSnRXRD(b.socket, rd+uint16(n)); err != nil {
		return 0, err
	}
	return n, nil
}

// ReadAt reads exactly len(p) bytes starting at the given RX buffer
// pointer without consulting SN_RX_RSR or moving SN_RX_RD. It is used by
// UdpSocket.Receive to read the fixed-size datagram info header and then
// as much of the variable-length payload as fits the caller's buffer;
// moving SN_RX_RD past the datagram is left to AdvanceRXRD.
func (b *BufferRing) ReadAt(pointer uint16, p []byte) error {
	return b.framer.ReadSocketBlock(b.socket, SocketRxBuffer, MemoryOffset(pointer), p)
}

// AdvanceRXRD sets SN_RX_RD to pointer (already advanced by the caller
// with uint16 wraparound arithmetic) without performing a read.
func (b *BufferRing) AdvanceRXRD(pointer uint16) error {
	return b.regs.SetSnRXRD(b.socket, pointer)
}

// CurrentRXRD returns the current SN_RX_RD pointer.
func (b *BufferRing) CurrentRXRD() (uint16, error) { return b.regs.SnRXRD(b.socket) }

// TXFreeSize returns SN_TX_FSR.
func (b *BufferRing) TXFreeSize() (uint16, error) { return b.regs.SnTXFSR(b.socket) }

// RXReceivedSize returns SN_RX_RSR.
func (b *BufferRing) RXReceivedSize() (uint16, error) { return b.regs.SnRXRSR(b.socket) }
