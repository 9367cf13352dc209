package w5500

// SpiFramer transmits a FrameHeader followed by N data bytes in a single
// chip-select-asserted transaction. It exposes four operations against the
// common register block and four more against a (SocketID,
// SocketMemoryBlock) pair; no other part of this package constructs a
// FrameHeader directly.
//
// Failure semantics: any SpiBus error propagates unchanged. The framer
// does not retry, and the chip's internal state is undefined after a
// failed transaction — recovery policy (re-probing VERSIONR, resetting)
// is left to the caller, per NetworkStack.IsDeviceResponsive.
type SpiFramer struct {
	bus SpiBus
}

// NewSpiFramer wraps bus in a SpiFramer.
func NewSpiFramer(bus SpiBus) *SpiFramer {
	return &SpiFramer{bus: bus}
}

// transact asserts chip-select, writes header, and always deselects on
// return, including when body returns an error.
func (f *SpiFramer) transact(header FrameHeader, body func() error) error {
	if err := f.bus.Select(); err != nil {
		return err
	}
	defer f.bus.Deselect()

	if err := f.bus.WriteBlock(header[:]); err != nil {
		return err
	}
	return body()
}

// ReadByte reads one byte of common register memory at offset.
func (f *SpiFramer) ReadByte(offset MemoryOffset) (byte, error) {
	var v byte
	err := f.transact(commonFrameHeader(offset, opRead), func() error {
		b, err := f.bus.ReadByte()
		v = b
		return err
	})
	return v, err
}

// ReadBlock reads len(p) bytes of common register memory starting at offset.
func (f *SpiFramer) ReadBlock(offset MemoryOffset, p []byte) error {
	return f.transact(commonFrameHeader(offset, opRead), func() error {
		return f.bus.ReadBlock(p)
	})
}

// WriteByte writes one byte of common register memory at offset.
func (f *SpiFramer) WriteByte(offset MemoryOffset, v byte) error {
	return f.transact(commonFrameHeader(offset, opWrite), func() error {
		return f.bus.WriteByte(v)
	})
}

// WriteBlock writes p to common register memory starting at offset.
func (f *SpiFramer) WriteBlock(offset MemoryOffset, p []byte) error {
	return f.transact(commonFrameHeader(offset, opWrite), func() error {
		return f.bus.WriteBlock(p)
	})
}

// ReadSocketByte reads one byte from a socket's register/buffer memory.
func (f *SpiFramer) ReadSocketByte(socket SocketID, block SocketMemoryBlock, offset MemoryOffset) (byte, error) {
	var v byte
	err := f.transact(socketFrameHeader(socket, block, offset, opRead), func() error {
		b, err := f.bus.ReadByte()
		v = b
		return err
	})
	return v, err
}

// ReadSocketBlock reads len(p) bytes from a socket's register/buffer memory.
func (f *SpiFramer) ReadSocketBlock(socket SocketID, block SocketMemoryBlock, offset MemoryOffset, p []byte) error {
	return f.transact(socketFrameHeader(socket, block, offset, opRead), func() error {
		return f.bus.ReadBlock(p)
	})
}

// WriteSocketByte writes one byte to a socket's register/buffer memory.
func (f *SpiFramer) WriteSocketByte(socket SocketID, block SocketMemoryBlock, offset MemoryOffset, v byte) error {
	return f.transact(socketFrameHeader(socket, block, offset, opWrite), func() error {
		return f.bus.WriteByte(v)
	})
}

// WriteSocketBlock writes p to a socket's register/buffer memory.
func (f *SpiFramer) WriteSocketBlock(socket SocketID, block SocketMemoryBlock, offset MemoryOffset, p []byte) error {
	return f.transact(socketFrameHeader(socket, block, offset, opWrite), func() error {
		return f.bus.WriteBlock(p)
	})
}
