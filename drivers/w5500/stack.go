package w5500

// InitConfig collects the orthogonal configuration knobs
// NetworkStack.Initialize writes to the chip in one pass: explicit
// arguments over a fluent builder, since every knob has an observable
// side effect on the chip.
type InitConfig struct {
	PhyMode          PhyMode
	PingBlocking     bool
	ArpForcing       bool
	RTR              uint16 // retransmission timeout
	RCR              byte   // retransmission retry count
	MAC              MacAddress
	IP               Address
	Gateway          Address
	SubnetMask       Address
	IntLevel         uint16
	SocketBufferSize SocketBufferSize

	// BroadcastBlocking and UnicastBlocking are per-socket SN_MR defaults
	// applied to every UDP socket this stack subsequently constructs
	// (there is no chip-level common-register equivalent; the original's
	// Network_Stack carries them alongside ping-blocking/ARP-forcing as
	// construction-time configuration for exactly this reason).
	BroadcastBlocking bool
	UnicastBlocking   bool
}

// NetworkStack owns the SPI framer, the SocketAllocator bitmap over the
// eight hardware sockets, the TCP and UDP PortPools, and the configured
// SocketBufferSize. It is the top-level lifecycle object: PHY
// configuration, MAC/IP addresses, per-socket buffer sizing and interrupt
// routing all go through it, and it gates construction of UdpSocket,
// TcpClient and TcpServer.
type NetworkStack struct {
	framer    *SpiFramer
	regs      *RegisterFile
	allocator *SocketAllocator
	tcpPorts  PortPool
	udpPorts  PortPool
	bufSize   SocketBufferSize

	defaultBroadcastBlocking bool
	defaultUnicastBlocking   bool

	nonresponsiveDeviceError error
}

// NewNetworkStack constructs a stack over bus with the given TCP and UDP
// port pools. nonresponsiveDeviceError is the error VerifyDeviceResponsive
// returns when VERSIONR doesn't read back 0x04; callers typically pass
// NonresponsiveDevice, but the value is configurable so embedders can wrap
// it with chip-identifying context. Initialize must be called before any
// socket is constructed.
func NewNetworkStack(bus SpiBus, tcpPorts, udpPorts PortPool, nonresponsiveDeviceError error) *NetworkStack {
	framer := NewSpiFramer(bus)
	return &NetworkStack{
		framer:                   framer,
		regs:                     NewRegisterFile(framer),
		allocator:                NewSocketAllocator(0),
		tcpPorts:                 tcpPorts,
		udpPorts:                 udpPorts,
		nonresponsiveDeviceError: nonresponsiveDeviceError,
	}
}

// socketBufferKiB maps a SocketBufferSize to the per-socket SN_*BUF_SIZE
// KiB value written for the first `count` sockets and the KiB value (0)
// written to the remainder.
func socketBufferKiB(size SocketBufferSize) (kib byte, count int) {
	switch size {
	case BufferSize2KiB:
		return 2, 8
	case BufferSize4KiB:
		return 4, 4
	case BufferSize8KiB:
		return 8, 2
	case BufferSize16KiB:
		return 16, 1
	default:
		return 0, 0
	}
}

// Initialize performs the chip's documented bring-up sequence: software
// reset, PHY reset-to-opmode sequence, MR flags, RTR/RCR/SHAR/SIPR/GAR/
// SUBR/INTLEVEL, per-socket buffer sizing, and enables the allocator for
// the resulting usable socket count.
func (s *NetworkStack) Initialize(cfg InitConfig) error {
	// 1. Software reset: assert the MR reset bit and wait for it to clear.
	if err := s.regs.SetMR(1 << 7); err != nil {
		return err
	}
	for {
		mr, err := s.regs.MR()
		if err != nil {
			return err
		}
		if mr&(1<<7) == 0 {
			break
		}
	}

	// 2. PHY reset-to-opmode sequence: reset-asserted, reset-deasserted,
	// reset-reasserted. Omitting a step silently fails on some silicon
	// revisions.
	if err := s.regs.SetPHYCFGR(cfg.PhyMode.encodePHYCFGR(true)); err != nil {
		return err
	}
	if err := s.regs.SetPHYCFGR(cfg.PhyMode.encodePHYCFGR(false)); err != nil {
		return err
	}
	if err := s.regs.SetPHYCFGR(cfg.PhyMode.encodePHYCFGR(true)); err != nil {
		return err
	}

	// 3. MR ping-blocking/ARP-forcing bits.
	var mr byte
	if cfg.PingBlocking {
		mr |= mrPingBlockBit
	}
	if cfg.ArpForcing {
		mr |= mrARPForceBit
	}
	if err := s.regs.SetMR(mr); err != nil {
		return err
	}

	// 4. RTR, RCR, SHAR, SIPR, GAR, SUBR, INTLEVEL.
	if err := s.regs.SetRTR(cfg.RTR); err != nil {
		return err
	}
	if err := s.regs.SetRCR(cfg.RCR); err != nil {
		return err
	}
	if err := s.regs.SetSHAR(cfg.MAC); err != nil {
		return err
	}
	if err := s.regs.SetSIPR(cfg.IP); err != nil {
		return err
	}
	if err := s.regs.SetGAR(cfg.Gateway); err != nil {
		return err
	}
	if err := s.regs.SetSUBR(cfg.SubnetMask); err != nil {
		return err
	}
	if err := s.regs.SetINTLEVEL(cfg.IntLevel); err != nil {
		return err
	}

	// 5. Per-socket buffer sizing.
	kib, count := socketBufferKiB(cfg.SocketBufferSize)
	for i := SocketID(0); i < Sockets; i++ {
		v := byte(0)
		if int(i) < count {
			v = kib
		}
		if err := s.regs.SetSnRXBUFSize(i, v); err != nil {
			return err
		}
		if err := s.regs.SetSnTXBUFSize(i, v); err != nil {
			return err
		}
	}

	// 6. Enable the allocator for exactly the resulting usable count.
	s.bufSize = cfg.SocketBufferSize
	s.defaultBroadcastBlocking = cfg.BroadcastBlocking
	s.defaultUnicastBlocking = cfg.UnicastBlocking
	s.allocator.SetCapacity(count)
	return nil
}

// IsDeviceResponsive reads VERSIONR; the W5500 must report exactly 0x04.
func (s *NetworkStack) IsDeviceResponsive() (bool, error) {
	v, err := s.regs.VERSIONR()
	if err != nil {
		return false, err
	}
	return v == 0x04, nil
}

// NonresponsiveDeviceError returns the error this stack was constructed
// with for VerifyDeviceResponsive to surface on a VERSIONR mismatch.
func (s *NetworkStack) NonresponsiveDeviceError() error { return s.nonresponsiveDeviceError }

// VerifyDeviceResponsive is IsDeviceResponsive collapsed to a single error
// return: nil when VERSIONR reads back 0x04, the stack's configured
// NonresponsiveDeviceError when it doesn't, and the bus error verbatim on
// an SPI failure.
func (s *NetworkStack) VerifyDeviceResponsive() error {
	ok, err := s.IsDeviceResponsive()
	if err != nil {
		return err
	}
	if !ok {
		return s.nonresponsiveDeviceError
	}
	return nil
}

// EnableInterrupts ORs mask into IMR.
func (s *NetworkStack) EnableInterrupts(mask byte) error {
	cur, err := s.regs.IMR()
	if err != nil {
		return err
	}
	return s.regs.SetIMR(cur | mask)
}

// DisableInterrupts ANDs the complement of mask into IMR. If no mask is
// given (mask == 0 meaning "disable everything"), callers should call
// DisableAllInterrupts instead; this method always treats mask as bits
// to clear.
func (s *NetworkStack) DisableInterrupts(mask byte) error {
	cur, err := s.regs.IMR()
	if err != nil {
		return err
	}
	return s.regs.SetIMR(cur &^ mask)
}

// DisableAllInterrupts writes IMR = 0.
func (s *NetworkStack) DisableAllInterrupts() error { return s.regs.SetIMR(0) }

// EnabledInterrupts returns IMR.
func (s *NetworkStack) EnabledInterrupts() (byte, error) { return s.regs.IMR() }

// InterruptContext returns IR.
func (s *NetworkStack) InterruptContext() (byte, error) { return s.regs.IR() }

// ClearInterrupts writes mask to IR; the chip clears on write-1.
func (s *NetworkStack) ClearInterrupts(mask byte) error { return s.regs.ClearIR(mask) }

// EnableSocketInterrupts writes SIMR = 0xFF.
func (s *NetworkStack) EnableSocketInterrupts() error { return s.regs.SetSIMR(0xFF) }

// DisableSocketInterrupts writes SIMR = 0x00.
func (s *NetworkStack) DisableSocketInterrupts() error { return s.regs.SetSIMR(0x00) }

// SocketInterruptsAreEnabled reports SIMR != 0.
func (s *NetworkStack) SocketInterruptsAreEnabled() (bool, error) {
	v, err := s.regs.SIMR()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// SocketInterruptContext returns SIR.
func (s *NetworkStack) SocketInterruptContext() (byte, error) { return s.regs.SIR() }

// UnreachableEndpoint reads UIPR and UPORTR together: the source of the
// last packet the chip rejected as unreachable.
func (s *NetworkStack) UnreachableEndpoint() (Endpoint, error) {
	ip, err := s.regs.UIPR()
	if err != nil {
		return Endpoint{}, err
	}
	port, err := s.regs.UPORTR()
	if err != nil {
		return Endpoint{}, err
	}
	return Endpoint{Address: ip, Port: port}, nil
}

// LocalAddress reads SIPR, used by socket Bind calls that optionally
// confirm the caller's address matches the stack's configured address.
func (s *NetworkStack) LocalAddress() (Address, error) { return s.regs.SIPR() }

// allocateOne allocates one hardware socket from the shared allocator.
func (s *NetworkStack) allocateOne() (SocketID, error) { return s.allocator.AllocateOne() }

// allocateMany allocates n hardware sockets atomically.
func (s *NetworkStack) allocateMany(n int) ([]SocketID, error) { return s.allocator.AllocateMany(n) }

// releaseSocket returns id to the allocator without touching port
// accounting; callers (UdpSocket, TcpClient, TcpServer,
// TcpServerConnectionHandler) handle port deallocation themselves before
// calling this.
func (s *NetworkStack) releaseSocket(id SocketID) { s.allocator.Deallocate(id) }

// NewUdpSocket allocates a hardware socket and returns an unbound
// UdpSocket.
func (s *NetworkStack) NewUdpSocket() (*UdpSocket, error) {
	id, err := s.allocateOne()
	if err != nil {
		return nil, err
	}
	return &UdpSocket{
		stack:  s,
		socket: id,
		ring:   NewBufferRing(s.regs, s.framer, id),
		state:  StateInitialized,
	}, nil
}

// NewTcpClient allocates a hardware socket and returns an unbound
// TcpClient.
func (s *NetworkStack) NewTcpClient() (*TcpClient, error) {
	id, err := s.allocateOne()
	if err != nil {
		return nil, err
	}
	return &TcpClient{
		stack:  s,
		socket: id,
		ring:   NewBufferRing(s.regs, s.framer, id),
		state:  StateInitialized,
	}, nil
}

// NewTcpServer allocates backlog hardware sockets and returns an unbound
// TcpServer owning all of them.
func (s *NetworkStack) NewTcpServer(backlog int) (*TcpServer, error) {
	ids, err := s.allocateMany(backlog)
	if err != nil {
		return nil, err
	}
	return &TcpServer{
		stack:   s,
		sockets: ids,
		state:   StateInitialized,
	}, nil
}
