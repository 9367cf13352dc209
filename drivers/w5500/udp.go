package w5500

import "encoding/binary"

// datagramInfoHeaderLen is the 8-byte WIZnet-specific prefix preceding
// every received UDP payload: 4 bytes source address, 2 bytes source
// port, 2 bytes payload length.
const datagramInfoHeaderLen = 8

// UdpSocket is a connectionless datagram socket backed by one hardware
// socket. States: Uninitialized (not constructed), Initialized, Bound.
type UdpSocket struct {
	stack        *NetworkStack
	socket       SocketID
	ring         *BufferRing
	state        SocketState
	transmitting bool
}

// State returns the socket's current lifecycle state.
func (u *UdpSocket) State() SocketState { return u.state }

// Bind allocates desiredPort from the stack's UDP PortPool (PortAny
// chooses any free port), programs SN_PORT and the SN_MR protocol field
// for UDP, opens the socket, and polls SN_SR until it reports UDP
// (0x22). If expectedLocalAddress is non-nil, it is compared against the
// stack's SIPR before proceeding.
func (u *UdpSocket) Bind(desiredPort uint16, expectedLocalAddress *Address) error {
	if expectedLocalAddress != nil {
		local, err := u.stack.LocalAddress()
		if err != nil {
			return err
		}
		if local != *expectedLocalAddress {
			return ErrAddressMismatch
		}
	}

	port, err := u.stack.udpPorts.Allocate(desiredPort)
	if err != nil {
		return err
	}

	if err := u.stack.regs.SetSnPORT(u.socket, port); err != nil {
		return err
	}
	if err := u.stack.regs.SetSnMRProtocol(u.socket, snMRProtoUDP); err != nil {
		return err
	}
	if err := u.stack.regs.SetSnMRBroadcastBlock(u.socket, u.stack.defaultBroadcastBlocking); err != nil {
		return err
	}
	if err := u.stack.regs.SetSnMRUnicastBlock(u.socket, u.stack.defaultUnicastBlocking); err != nil {
		return err
	}
	if err := u.stack.regs.SnCR(u.socket, crOpen); err != nil {
		return err
	}
	for {
		sr, err := u.stack.regs.SnSR(u.socket)
		if err != nil {
			return err
		}
		if sr == srUDP {
			break
		}
	}

	u.state = StateBound
	return nil
}

// SetBroadcastBlocking sets or clears SN_MR's broadcast-blocking bit.
func (u *UdpSocket) SetBroadcastBlocking(enabled bool) error {
	return u.stack.regs.SetSnMRBroadcastBlock(u.socket, enabled)
}

// SetUnicastBlocking sets or clears SN_MR's unicast-blocking bit.
func (u *UdpSocket) SetUnicastBlocking(enabled bool) error {
	return u.stack.regs.SetSnMRUnicastBlock(u.socket, enabled)
}

// bufferSizeBytes returns the configured per-socket buffer size in bytes.
func (u *UdpSocket) bufferSizeBytes() int { return int(u.stack.bufSize) * 1024 }

// Transmit sends data to destination. If a previous transmission is still
// outstanding it is reconciled first (SEND_OK/TIMEOUT); if neither has
// posted yet, Transmit returns WouldBlock without sending.
func (u *UdpSocket) Transmit(destination Endpoint, data []byte) error {
	if len(data) > u.bufferSizeBytes() {
		return ExcessiveMessageSize
	}

	if u.transmitting {
		ir, err := u.stack.regs.SnIR(u.socket)
		if err != nil {
			return err
		}
		if ir&(irSendOK|irTimeout) == 0 {
			return WouldBlock
		}
		if err := u.stack.regs.ClearSnIR(u.socket, irSendOK|irTimeout); err != nil {
			return err
		}
		u.transmitting = false
	}

	free, err := u.ring.TXFreeSize()
	if err != nil {
		return err
	}
	if free == 0 || int(free) < len(data) {
		return WouldBlock
	}

	if err := u.stack.regs.SetSnDIPR(u.socket, destination.Address); err != nil {
		return err
	}
	if err := u.stack.regs.SetSnDPORT(u.socket, destination.Port); err != nil {
		return err
	}

	if _, err := u.ring.Write(data); err != nil {
		return err
	}
	if err := u.stack.regs.SnCR(u.socket, crSend); err != nil {
		return err
	}
	u.transmitting = true
	return nil
}

// Receive reads the next queued datagram's info header, copies up to
// len(buf) bytes of its payload into buf, and advances SN_RX_RD past the
// entire datagram regardless of how much of the payload fit in buf. It
// returns the datagram's source endpoint and the number of bytes written
// to buf.
func (u *UdpSocket) Receive(buf []byte) (Endpoint, int, error) {
	received, err := u.ring.RXReceivedSize()
	if err != nil {
		return Endpoint{}, 0, err
	}
	if received == 0 {
		return Endpoint{}, 0, WouldBlock
	}

	rd, err := u.ring.CurrentRXRD()
	if err != nil {
		return Endpoint{}, 0, err
	}

	var header [datagramInfoHeaderLen]byte
	if err := u.ring.ReadAt(rd, header[:]); err != nil {
		return Endpoint{}, 0, err
	}
	source := Endpoint{
		Address: Address{header[0], header[1], header[2], header[3]},
		Port:    binary.BigEndian.Uint16(header[4:6]),
	}
	payloadLen := binary.BigEndian.Uint16(header[6:8])

	payloadStart := rd + datagramInfoHeaderLen
	n := len(buf)
	if n > int(payloadLen) {
		n = int(payloadLen)
	}
	if n > 0 {
		if err := u.ring.ReadAt(payloadStart, buf[:n]); err != nil {
			return Endpoint{}, 0, err
		}
	}

	if err := u.ring.AdvanceRXRD(payloadStart + payloadLen); err != nil {
		return Endpoint{}, 0, err
	}
	if err := u.stack.regs.SnCR(u.socket, crRecv); err != nil {
		return Endpoint{}, 0, err
	}
	return source, n, nil
}

// Close releases the socket's allocated port and hardware socket.
func (u *UdpSocket) Close() {
	if u.state >= StateBound {
		if port, err := u.stack.regs.SnPORT(u.socket); err == nil {
			u.stack.udpPorts.Deallocate(port)
		}
	}
	u.stack.releaseSocket(u.socket)
	u.state = StateUninitialized
}
