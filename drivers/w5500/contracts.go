package w5500

//go:generate mockgen -source=contracts.go -destination=mock/mock_w5500.go -package=mock_w5500

import "errors"

// SpiBus is the injected collaborator that knows how to select/deselect
// the W5500 on its chip-select line and perform raw SPI byte transfers.
// The core never constructs its own transport or device-selector: it is
// handed one at construction time, exactly as tinygo.org/x/drivers.I2C is
// handed to drivers/ltc4015.New. NewHardwareSpiBus (spi_rp2040.go) wraps a
// tinygo.org/x/drivers.SPI plus a machine.Pin chip-select for real
// hardware; see cmd/w5500selftest for a host-side fake used in its place.
//
// Select/Deselect bracket a single logical SPI transaction (one
// FrameHeader plus its data bytes). Deselect must be called on every exit
// path, including after a transfer error; SpiFramer guarantees this with
// defer.
type SpiBus interface {
	Select() error
	Deselect() error
	WriteByte(b byte) error
	WriteBlock(p []byte) error
	ReadByte() (byte, error)
	ReadBlock(p []byte) error
}

// PortPool is the injected collaborator tracking which TCP or UDP ports
// are in use. NetworkStack owns one of each (TCP and UDP); the core
// invariant — a port allocated for one socket is released exactly once
// when no other socket in the same stack still has it bound — is
// maintained by the core (see TcpServer's port-refcount teardown in
// tcp_server.go), not by the pool itself.
type PortPool interface {
	// Allocate returns a port. If desired is PortAny, the pool chooses any
	// free port.
	Allocate(desired uint16) (uint16, error)
	// Deallocate releases a previously allocated port. Idempotent misuse
	// (deallocating a port not currently held) is a caller error.
	Deallocate(port uint16)
}

// PortAny requests that a PortPool choose any free port.
const PortAny uint16 = 0

// ErrPortPoolExhausted is returned by a PortPool implementation when no
// port is available.
var ErrPortPoolExhausted = errors.New("w5500: port pool exhausted")

// Address is an IPv4 address in network byte order, matching the layout
// the chip uses on the wire for SIPR, GAR, SUBR, SN_DIPR and UIPR.
type Address [4]byte

// AsUint32 returns the address as a big-endian-ordered unsigned integer:
// (a<<24)|(b<<16)|(c<<8)|d.
func (a Address) AsUint32() uint32 {
	return uint32(a[0])<<24 | uint32(a[1])<<16 | uint32(a[2])<<8 | uint32(a[3])
}

// AddressFromUint32 is the inverse of Address.AsUint32.
func AddressFromUint32(v uint32) Address {
	return Address{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

// Endpoint pairs an Address with a port, the destination/source of a UDP
// datagram or a TCP connection attempt.
type Endpoint struct {
	Address Address
	Port    uint16
}

// MacAddress is a 48-bit hardware address in network byte order, matching
// SHAR's and SN_DHAR's wire layout.
type MacAddress [6]byte
