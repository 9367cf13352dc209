package w5500

// TcpServer owns 1..=8 hardware sockets, all listening on the same local
// endpoint. It fans configuration calls out to every owned socket so
// that subsequent accepts inherit consistent settings, and maintains its
// configured backlog by re-allocating a replacement socket each time
// Accept detaches one into a TcpServerConnectionHandler, rather than
// exposing replenishment as a separate call.
type TcpServer struct {
	stack   *NetworkStack
	sockets []SocketID
	backlog int
	state   SocketState
}

// State returns the server's current lifecycle state.
func (s *TcpServer) State() SocketState { return s.state }

// Sockets returns the hardware sockets currently owned (listening) by
// this server. The returned slice must not be mutated by the caller.
func (s *TcpServer) Sockets() []SocketID { return s.sockets }

// Bind has the identical shape to TcpClient.Bind but fans SN_PORT, SN_MR,
// SN_CR and SN_SR polling out to every owned socket; after success every
// owned socket is in state 0x13 (INIT).
func (s *TcpServer) Bind(desiredPort uint16, expectedLocalAddress *Address) error {
	if expectedLocalAddress != nil {
		local, err := s.stack.LocalAddress()
		if err != nil {
			return err
		}
		if local != *expectedLocalAddress {
			return ErrAddressMismatch
		}
	}

	port, err := s.stack.tcpPorts.Allocate(desiredPort)
	if err != nil {
		return err
	}

	for _, id := range s.sockets {
		if err := s.openSocketOnPort(id, port); err != nil {
			return err
		}
	}

	s.backlog = len(s.sockets)
	s.state = StateBound
	return nil
}

// openSocketOnPort programs SN_PORT/SN_MR for id and opens it to INIT,
// the sequence common to Bind and backlog-expansion/replenishment.
func (s *TcpServer) openSocketOnPort(id SocketID, port uint16) error {
	if err := s.stack.regs.SetSnPORT(id, port); err != nil {
		return err
	}
	if err := s.stack.regs.SetSnMRProtocol(id, snMRProtoTCP); err != nil {
		return err
	}
	if err := s.stack.regs.SnCR(id, crOpen); err != nil {
		return err
	}
	for {
		sr, err := s.stack.regs.SnSR(id)
		if err != nil {
			return err
		}
		if sr == srInitListen {
			return nil
		}
	}
}

// cloneConfigFrom copies SN_MR, SN_PORT, SN_MSSR, SN_TTL, SN_IMR and
// SN_KPALVTR from the first owned socket onto a freshly allocated one,
// then opens it.
func (s *TcpServer) cloneConfigFrom(first, fresh SocketID) error {
	mr, err := s.stack.regs.SnMR(first)
	if err != nil {
		return err
	}
	port, err := s.stack.regs.SnPORT(first)
	if err != nil {
		return err
	}
	mss, err := s.stack.regs.SnMSSR(first)
	if err != nil {
		return err
	}
	ttl, err := s.stack.regs.SnTTL(first)
	if err != nil {
		return err
	}
	imr, err := s.stack.regs.SnIMR(first)
	if err != nil {
		return err
	}
	kpalv, err := s.stack.regs.SnKPALVTR(first)
	if err != nil {
		return err
	}

	if err := s.stack.regs.SetSnMR(fresh, mr); err != nil {
		return err
	}
	if err := s.stack.regs.SetSnMSSR(fresh, mss); err != nil {
		return err
	}
	if err := s.stack.regs.SetSnTTL(fresh, ttl); err != nil {
		return err
	}
	if err := s.stack.regs.SetSnIMR(fresh, imr); err != nil {
		return err
	}
	if err := s.stack.regs.SetSnKPALVTR(fresh, kpalv); err != nil {
		return err
	}
	return s.openSocketOnPort(fresh, port)
}

// Listen brings the server's owned sockets (allocating more if needed to
// reach backlog) into LISTEN and transitions to Listening. Calling Listen
// with a backlog less than or equal to the current owned count allocates
// nothing (testable property 7).
func (s *TcpServer) Listen(backlog int) error {
	if backlog > len(s.sockets) {
		needed := backlog - len(s.sockets)
		fresh, err := s.stack.allocateMany(needed)
		if err != nil {
			return err
		}
		first := s.sockets[0]
		for _, id := range fresh {
			if err := s.cloneConfigFrom(first, id); err != nil {
				return err
			}
			s.sockets = append(s.sockets, id)
		}
	}
	s.backlog = backlog

	for _, id := range s.sockets {
		if err := s.stack.regs.SnCR(id, crListen); err != nil {
			return err
		}
	}
	s.state = StateListening
	return nil
}

// Accept scans the server's owned sockets for one that has transitioned
// from LISTEN to ESTABLISHED. If found, that socket is detached: removed
// from the owned list, wrapped in a TcpServerConnectionHandler and
// returned; the server then replenishes its listen set with a freshly
// allocated socket to maintain its configured backlog. If no owned socket
// has established a connection, Accept returns WouldBlock.
func (s *TcpServer) Accept() (*TcpServerConnectionHandler, error) {
	for i, id := range s.sockets {
		sr, err := s.stack.regs.SnSR(id)
		if err != nil {
			return nil, err
		}
		if sr != srEstablished {
			continue
		}

		s.sockets = append(s.sockets[:i:i], s.sockets[i+1:]...)

		handler := &TcpServerConnectionHandler{
			tcpConnection: tcpConnection{
				stack:  s.stack,
				socket: id,
				ring:   NewBufferRing(s.stack.regs, s.stack.framer, id),
			},
		}

		if err := s.replenish(id); err != nil {
			return handler, err
		}
		return handler, nil
	}
	return nil, WouldBlock
}

// replenish allocates and brings into LISTEN one additional socket if the
// server currently owns fewer sockets than its configured backlog. The new
// socket's configuration is cloned from the first still-owned socket, or
// from the just-detached socket when the server owns none.
func (s *TcpServer) replenish(detached SocketID) error {
	if len(s.sockets) >= s.backlog {
		return nil
	}
	template := detached
	if len(s.sockets) > 0 {
		template = s.sockets[0]
	}
	fresh, err := s.stack.allocateMany(1)
	if err != nil {
		return err
	}
	id := fresh[0]
	if err := s.cloneConfigFrom(template, id); err != nil {
		return err
	}
	if err := s.stack.regs.SnCR(id, crListen); err != nil {
		return err
	}
	s.sockets = append(s.sockets, id)
	return nil
}

// ---- configuration fan-out ----

// SetNoDelayedAck fans the SN_MR no-delayed-ack bit out to every owned
// socket.
func (s *TcpServer) SetNoDelayedAck(enabled bool) error {
	for _, id := range s.sockets {
		if err := s.stack.regs.SetSnMRNoDelayedAck(id, enabled); err != nil {
			return err
		}
	}
	return nil
}

// SetMaxSegmentSize fans SN_MSSR out to every owned socket.
func (s *TcpServer) SetMaxSegmentSize(mss uint16) error {
	for _, id := range s.sockets {
		if err := s.stack.regs.SetSnMSSR(id, mss); err != nil {
			return err
		}
	}
	return nil
}

// SetTimeToLive fans SN_TTL out to every owned socket.
func (s *TcpServer) SetTimeToLive(ttl byte) error {
	for _, id := range s.sockets {
		if err := s.stack.regs.SetSnTTL(id, ttl); err != nil {
			return err
		}
	}
	return nil
}

// SetKeepalivePeriod fans SN_KPALVTR out to every owned socket.
func (s *TcpServer) SetKeepalivePeriod(period byte) error {
	for _, id := range s.sockets {
		if err := s.stack.regs.SetSnKPALVTR(id, period); err != nil {
			return err
		}
	}
	return nil
}

// SetSocketInterruptMask fans SN_IMR out to every owned socket.
func (s *TcpServer) SetSocketInterruptMask(mask byte) error {
	for _, id := range s.sockets {
		if err := s.stack.regs.SetSnIMR(id, mask); err != nil {
			return err
		}
	}
	return nil
}

// SocketInterruptMask returns the bitwise OR of the per-socket SN_IMR
// values across every owned socket.
func (s *TcpServer) SocketInterruptMask() (byte, error) {
	var mask byte
	for _, id := range s.sockets {
		m, err := s.stack.regs.SnIMR(id)
		if err != nil {
			return 0, err
		}
		mask |= m
	}
	return mask, nil
}

// Close tears down every socket the server still owns, following the
// same port-refcount discipline: for each owned socket, issue CLOSE,
// then run the port scan, then release the hardware socket from
// the allocator. Sockets already detached into handlers are unaffected —
// dropping those later runs the same scan (see
// TcpServerConnectionHandler.Close).
func (s *TcpServer) Close() {
	for _, id := range s.sockets {
		_ = s.stack.regs.SnCR(id, crClose)
		deallocateTCPPort(s.stack, id)
		s.stack.releaseSocket(id)
	}
	s.sockets = nil
	s.state = StateUninitialized
}
