package w5500

import "errors"

// Code is a stable, comparable error-kind identifier for the handful of
// conditions callers branch on programmatically: a string newtype that
// implements error directly, so callers can both log it and compare it
// with ==.
type Code string

func (c Code) Error() string { return string(c) }

const (
	// ExcessiveMessageSize: a UDP transmit payload exceeds the socket's
	// configured buffer size. The socket's state is left untouched.
	ExcessiveMessageSize Code = "w5500: message exceeds socket buffer size"
	// WouldBlock: a non-blocking operation is not yet satisfiable. The
	// caller is expected to poll again.
	WouldBlock Code = "w5500: would block"
	// OperationTimeout: TcpClient.Connect observed SN_SR == 0x00 after a
	// connection attempt (refused or timed out at the chip level). The
	// socket remains Connecting so the caller may retry.
	OperationTimeout Code = "w5500: operation timed out"
	// NotConnected: a TCP send/receive was attempted on a socket whose
	// connection is already lost.
	NotConnected Code = "w5500: not connected"
	// NonresponsiveDevice: VERSIONR did not read back 0x04.
	NonresponsiveDevice Code = "w5500: device not responsive"
	// SocketsExhausted: the SocketAllocator has no free hardware socket
	// (or not enough for an atomic allocate_many request).
	SocketsExhausted Code = "w5500: no hardware sockets available"
)

// ErrAddressMismatch is returned by Bind when the caller supplies an
// expected local address that does not match the stack's configured SIPR.
var ErrAddressMismatch = errors.New("w5500: bind address does not match stack local address")

// commandPollAttempts bounds the otherwise-unbounded SN_CR
// poll-until-zero loop. A bounded loop is required in idiomatic Go since
// nothing else here ever blocks indefinitely; see RegisterFile.SnCR.
const commandPollAttempts = 1 << 16

// ErrInvalidState is returned when an operation is attempted from a
// lifecycle state that does not support it (e.g. Connect from
// Uninitialized).
var ErrInvalidState = errors.New("w5500: invalid socket state for operation")

// ErrCommandTimeout is returned when SN_CR fails to clear within
// commandPollAttempts polls, which on real hardware indicates the chip is
// wedged or absent.
var ErrCommandTimeout = errors.New("w5500: command register did not clear")
