package w5500

// tcpConnection is the operation set shared, byte-for-byte, between
// TcpClient (once Connected) and TcpServerConnectionHandler: the
// contracts are identical, as is the implementation. It is embedded by
// both rather than duplicated.
type tcpConnection struct {
	stack        *NetworkStack
	socket       SocketID
	ring         *BufferRing
	transmitting bool
}

// isLostConnectionStatus reports the SN_SR values under which the TCP
// connection can no longer carry new outgoing data: CLOSED, CLOSE_WAIT and
// the shutdown-in-progress states.
func isLostConnectionStatus(sr byte) bool {
	switch sr {
	case srClosed, srCloseWait, srFinWait, srClosing, srTimeWait, srLastAck:
		return true
	default:
		return false
	}
}

// isDrainingStatus reports the SN_SR values indicating a graceful shutdown is
// in progress but data may still be draining from the RX buffer.
func isDrainingStatus(sr byte) bool {
	switch sr {
	case srFinWait, srClosing, srTimeWait, srLastAck:
		return true
	default:
		return false
	}
}

// IsConnected reports SN_SR == ESTABLISHED strictly: CLOSE_WAIT is not
// "connected" for this predicate even though it is an acceptable
// connect-success terminator — CLOSE_WAIT means the remote has
// initiated shutdown and new sends will fail.
func (c *tcpConnection) IsConnected() (bool, error) {
	sr, err := c.stack.regs.SnSR(c.socket)
	if err != nil {
		return false, err
	}
	return sr == srEstablished, nil
}

// Transmit writes as much of data as fits in the socket's current TX free
// size, returning the number of bytes actually submitted.
func (c *tcpConnection) Transmit(data []byte) (int, error) {
	sr, err := c.stack.regs.SnSR(c.socket)
	if err != nil {
		return 0, err
	}
	if isLostConnectionStatus(sr) {
		return 0, NotConnected
	}

	if c.transmitting {
		ir, err := c.stack.regs.SnIR(c.socket)
		if err != nil {
			return 0, err
		}
		switch {
		case ir&irSendOK != 0, ir&irTimeout != 0:
			if err := c.stack.regs.ClearSnIR(c.socket, irSendOK|irTimeout); err != nil {
				return 0, err
			}
			c.transmitting = false
		default:
			return 0, WouldBlock
		}
	}

	if len(data) == 0 {
		return 0, nil
	}

	free, err := c.ring.TXFreeSize()
	if err != nil {
		return 0, err
	}
	if free == 0 {
		return 0, WouldBlock
	}

	n, err := c.ring.Write(data)
	if err != nil {
		return 0, err
	}
	if err := c.stack.regs.SnCR(c.socket, crSend); err != nil {
		return 0, err
	}
	c.transmitting = true
	return n, nil
}

// TransmitKeepalive issues the SEND_KEEP command, which the chip uses to
// probe whether the peer is still present without transmitting data.
func (c *tcpConnection) TransmitKeepalive() error {
	sr, err := c.stack.regs.SnSR(c.socket)
	if err != nil {
		return err
	}
	if isLostConnectionStatus(sr) {
		return NotConnected
	}
	return c.stack.regs.SnCR(c.socket, crSendKeep)
}

// Receive reads up to len(buf) bytes of received data, returning the
// number of bytes read.
func (c *tcpConnection) Receive(buf []byte) (int, error) {
	sr, err := c.stack.regs.SnSR(c.socket)
	if err != nil {
		return 0, err
	}
	if sr == srClosed {
		return 0, NotConnected
	}
	if isDrainingStatus(sr) {
		return 0, WouldBlock
	}

	received, err := c.ring.RXReceivedSize()
	if err != nil {
		return 0, err
	}
	if received == 0 {
		if sr == srEstablished {
			return 0, WouldBlock
		}
		if sr == srCloseWait {
			return 0, NotConnected
		}
	}

	if len(buf) == 0 {
		return 0, nil
	}

	return c.ring.Read(buf)
}

// Shutdown issues DISCON unless the connection is already lost, in which
// case it is a no-op. It does not itself transition any cached state; the
// caller continues to observe progress via SN_SR/IsConnected.
func (c *tcpConnection) Shutdown() error {
	sr, err := c.stack.regs.SnSR(c.socket)
	if err != nil {
		return err
	}
	if sr == srClosed {
		return nil
	}
	return c.stack.regs.SnCR(c.socket, crDiscon)
}

// Available returns SN_RX_RSR.
func (c *tcpConnection) Available() (uint16, error) { return c.ring.RXReceivedSize() }

// Outstanding returns socket-buffer-size - SN_TX_FSR.
func (c *tcpConnection) Outstanding() (uint16, error) {
	free, err := c.ring.TXFreeSize()
	if err != nil {
		return 0, err
	}
	total := uint16(int(c.stack.bufSize) * 1024)
	return total - free, nil
}

// SetNoDelayedAck sets or clears SN_MR's no-delayed-ack bit.
func (c *tcpConnection) SetNoDelayedAck(enabled bool) error {
	return c.stack.regs.SetSnMRNoDelayedAck(c.socket, enabled)
}

// SetMaxSegmentSize writes SN_MSSR.
func (c *tcpConnection) SetMaxSegmentSize(mss uint16) error {
	return c.stack.regs.SetSnMSSR(c.socket, mss)
}

// SetTimeToLive writes SN_TTL.
func (c *tcpConnection) SetTimeToLive(ttl byte) error { return c.stack.regs.SetSnTTL(c.socket, ttl) }

// SetKeepalivePeriod writes SN_KPALVTR.
func (c *tcpConnection) SetKeepalivePeriod(period byte) error {
	return c.stack.regs.SetSnKPALVTR(c.socket, period)
}

// SetSocketInterruptMask writes SN_IMR.
func (c *tcpConnection) SetSocketInterruptMask(mask byte) error {
	return c.stack.regs.SetSnIMR(c.socket, mask)
}

// SocketInterruptMask returns SN_IMR.
func (c *tcpConnection) SocketInterruptMask() (byte, error) { return c.stack.regs.SnIMR(c.socket) }
