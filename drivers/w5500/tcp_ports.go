package w5500

// deallocateTCPPort implements the "last-user releases" port-refcount
// discipline: read owned's SN_PORT, scan every other hardware socket the
// stack currently considers usable, and only call PortPool.Deallocate
// when no other socket still has that port bound with SN_MR protocol
// TCP. This is the same teardown TcpClient.Close, TcpServer's drop path
// and TcpServerConnectionHandler.Close all use. The scan reads only live
// SN_MR/SN_PORT register state off the allocator's currently-owned
// sockets, so a detached handler can run it with no back-reference to
// its long-gone parent server and no extra bookkeeping of its own.
func deallocateTCPPort(stack *NetworkStack, owned SocketID) {
	port, err := stack.regs.SnPORT(owned)
	if err != nil {
		return
	}

	for i := SocketID(0); int(i) < stack.allocator.Capacity(); i++ {
		if i == owned {
			continue
		}
		if stack.allocator.IsFree(i) {
			continue
		}
		mr, err := stack.regs.SnMR(i)
		if err != nil {
			continue
		}
		if mr&snMRProtoMaskBits != snMRProtoTCP {
			continue
		}
		otherPort, err := stack.regs.SnPORT(i)
		if err != nil {
			continue
		}
		if otherPort == port {
			return // another socket still holds this (TCP, port) pair.
		}
	}

	stack.tcpPorts.Deallocate(port)
}
