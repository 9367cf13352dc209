package w5500

// TcpServerConnectionHandler wraps a hardware socket that TcpServer.Accept
// detached after its LISTEN→ESTABLISHED transition. Its Transmit, Receive,
// Shutdown, Available, Outstanding, TransmitKeepalive and the per-socket
// configuration setters are identical to TcpClient's post-Connected
// behavior, so both embed the same tcpConnection.
type TcpServerConnectionHandler struct {
	tcpConnection
}

// Close tears down the handler's port and hardware socket using the same
// port-refcount scan as TcpClient.Close and TcpServer.Close. The scan
// itself looks only at live SN_MR/SN_PORT register state across the
// allocator's currently-owned sockets, so it works correctly even though
// the handler holds no reference back to the TcpServer that produced it
// — including after that server has itself been dropped.
func (h *TcpServerConnectionHandler) Close() {
	deallocateTCPPort(h.stack, h.socket)
	h.stack.releaseSocket(h.socket)
}
