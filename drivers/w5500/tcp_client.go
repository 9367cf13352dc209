package w5500

// TcpClient is a single-socket active-open TCP state machine. States:
// Uninitialized (not constructed), Initialized, Bound, Connecting,
// Connected.
type TcpClient struct {
	tcpConnection
	state SocketState
}

// State returns the client's current lifecycle state.
func (c *TcpClient) State() SocketState { return c.state }

// Bind has the identical shape to UdpSocket.Bind but sets the SN_MR
// protocol field to TCP and polls SN_SR until it reports INIT (0x13).
func (c *TcpClient) Bind(desiredPort uint16, expectedLocalAddress *Address) error {
	if expectedLocalAddress != nil {
		local, err := c.stack.LocalAddress()
		if err != nil {
			return err
		}
		if local != *expectedLocalAddress {
			return ErrAddressMismatch
		}
	}

	port, err := c.stack.tcpPorts.Allocate(desiredPort)
	if err != nil {
		return err
	}

	if err := c.stack.regs.SetSnPORT(c.socket, port); err != nil {
		return err
	}
	if err := c.stack.regs.SetSnMRProtocol(c.socket, snMRProtoTCP); err != nil {
		return err
	}
	if err := c.stack.regs.SnCR(c.socket, crOpen); err != nil {
		return err
	}
	for {
		sr, err := c.stack.regs.SnSR(c.socket)
		if err != nil {
			return err
		}
		if sr == srInitListen {
			break
		}
	}

	c.state = StateBound
	return nil
}

// Connect drives the three-way handshake. From Bound it issues CONNECT
// and returns WouldBlock having transitioned to Connecting. From
// Connecting it reads SN_SR: INIT/SYN_SENT mean still-in-progress
// (WouldBlock), ESTABLISHED/CLOSE_WAIT mean connected (nil error,
// transition to Connected), and CLOSED (0x00) means the attempt was
// refused or timed out (OperationTimeout; the client remains Connecting
// so the caller may retry).
func (c *TcpClient) Connect(destination Endpoint) error {
	switch c.state {
	case StateBound:
		if err := c.stack.regs.SetSnDIPR(c.socket, destination.Address); err != nil {
			return err
		}
		if err := c.stack.regs.SetSnDPORT(c.socket, destination.Port); err != nil {
			return err
		}
		if err := c.stack.regs.SnCR(c.socket, crConnect); err != nil {
			return err
		}
		c.state = StateConnecting
		return WouldBlock

	case StateConnecting:
		sr, err := c.stack.regs.SnSR(c.socket)
		if err != nil {
			return err
		}
		switch sr {
		case srInitListen, srSynSent:
			return WouldBlock
		case srEstablished, srCloseWait:
			c.state = StateConnected
			return nil
		case srClosed:
			return OperationTimeout
		default:
			return WouldBlock
		}

	default:
		return ErrInvalidState
	}
}

// Close tears down the client's port and hardware socket following the
// same port-refcount discipline as TcpServer: the port is deallocated
// only if no other hardware socket still references it with SN_MR
// protocol TCP.
func (c *TcpClient) Close() {
	if c.state >= StateBound {
		deallocateTCPPort(c.stack, c.socket)
	}
	c.stack.releaseSocket(c.socket)
	c.state = StateUninitialized
}
