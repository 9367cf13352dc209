package w5500

import "encoding/binary"

// Common register offsets.
const (
	regMR        MemoryOffset = 0x0000
	regGAR       MemoryOffset = 0x0001
	regSUBR      MemoryOffset = 0x0005
	regSHAR      MemoryOffset = 0x0009
	regSIPR      MemoryOffset = 0x000F
	regINTLEVEL  MemoryOffset = 0x0013
	regIR        MemoryOffset = 0x0015
	regIMR       MemoryOffset = 0x0016
	regSIR       MemoryOffset = 0x0017
	regSIMR      MemoryOffset = 0x0018
	regRTR       MemoryOffset = 0x0019
	regRCR       MemoryOffset = 0x001B
	regPTIMER    MemoryOffset = 0x001C
	regPMAGIC    MemoryOffset = 0x001D
	regPHAR      MemoryOffset = 0x001E
	regPSID      MemoryOffset = 0x0024
	regPMRU      MemoryOffset = 0x0026
	regUIPR      MemoryOffset = 0x0028
	regUPORTR    MemoryOffset = 0x002C
	regPHYCFGR   MemoryOffset = 0x002E
	regVERSIONR  MemoryOffset = 0x0039
)

// Per-socket register offsets, within a socket's register block.
const (
	snMR         MemoryOffset = 0x0000
	snCR         MemoryOffset = 0x0001
	snIR         MemoryOffset = 0x0002
	snSR         MemoryOffset = 0x0003
	snPORT       MemoryOffset = 0x0004
	snDHAR       MemoryOffset = 0x0006
	snDIPR       MemoryOffset = 0x000C
	snDPORT      MemoryOffset = 0x0010
	snMSSR       MemoryOffset = 0x0012
	snTOS        MemoryOffset = 0x0015
	snTTL        MemoryOffset = 0x0016
	snRXBUFSIZE  MemoryOffset = 0x001E
	snTXBUFSIZE  MemoryOffset = 0x001F
	snTXFSR      MemoryOffset = 0x0020
	snTXRD       MemoryOffset = 0x0022
	snTXWR       MemoryOffset = 0x0024
	snRXRSR      MemoryOffset = 0x0026
	snRXRD       MemoryOffset = 0x0028
	snRXWR       MemoryOffset = 0x002A
	snIMR        MemoryOffset = 0x002C
	snFRAG       MemoryOffset = 0x002D
	snKPALVTR    MemoryOffset = 0x002F
)

// SN_MR protocol field values (lower 4 bits) and other shared bit masks.
const (
	snMRProtoMaskBits  byte = 0b0000_1111
	snMRProtoTCP       byte = 0b0001
	snMRProtoUDP       byte = 0b0010
	snMRNoDelayedAck   byte = 1 << 5
	snMRMulticast      byte = 1 << 7
	snMRBroadcastBlock byte = 1 << 6
	snMRUnicastBlock   byte = 1 << 4
	mrPingBlockBit     byte = 1 << 4
	mrARPForceBit      byte = 1 << 1
)

// SN_SR status codes.
const (
	srClosed      byte = 0x00
	srInitListen  byte = 0x13 // INIT and LISTEN share this code; context disambiguates.
	srSynSent     byte = 0x15
	srEstablished byte = 0x17
	srFinWait     byte = 0x18
	srClosing     byte = 0x1A
	srTimeWait    byte = 0x1B
	srCloseWait   byte = 0x1C
	srLastAck     byte = 0x1D
	srUDP         byte = 0x22
)

// SN_CR commands.
const (
	crOpen     byte = 0x01
	crListen   byte = 0x02
	crConnect  byte = 0x04
	crDiscon   byte = 0x08
	crClose    byte = 0x10
	crSend     byte = 0x20
	crSendKeep byte = 0x22
	crRecv     byte = 0x40
)

// SN_IR bits.
const (
	irCon      byte = 0x01
	irDiscon   byte = 0x02
	irRecv     byte = 0x04
	irTimeout  byte = 0x08
	irSendOK   byte = 0x10
)

// RegisterFile offers one typed operation per register in the catalogue
// above, built on top of a SpiFramer. Multi-byte registers preserve
// network byte order; SN_TX_FSR and SN_RX_RSR use the "read until stable"
// protocol because the chip updates them concurrently with the host
// reading them.
type RegisterFile struct {
	framer *SpiFramer
}

// NewRegisterFile wraps framer in a RegisterFile.
func NewRegisterFile(framer *SpiFramer) *RegisterFile {
	return &RegisterFile{framer: framer}
}

// ---- common register block: generic helpers ----

func (r *RegisterFile) readU16(offset MemoryOffset) (uint16, error) {
	var b [2]byte
	if err := r.framer.ReadBlock(offset, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func (r *RegisterFile) writeU16(offset MemoryOffset, v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return r.framer.WriteBlock(offset, b[:])
}

// ---- common registers ----

func (r *RegisterFile) MR() (byte, error)         { return r.framer.ReadByte(regMR) }
func (r *RegisterFile) SetMR(v byte) error        { return r.framer.WriteByte(regMR, v) }

func (r *RegisterFile) GAR() (Address, error) {
	var a Address
	err := r.framer.ReadBlock(regGAR, a[:])
	return a, err
}
func (r *RegisterFile) SetGAR(a Address) error { return r.framer.WriteBlock(regGAR, a[:]) }

func (r *RegisterFile) SUBR() (Address, error) {
	var a Address
	err := r.framer.ReadBlock(regSUBR, a[:])
	return a, err
}
func (r *RegisterFile) SetSUBR(a Address) error { return r.framer.WriteBlock(regSUBR, a[:]) }

func (r *RegisterFile) SHAR() (MacAddress, error) {
	var m MacAddress
	err := r.framer.ReadBlock(regSHAR, m[:])
	return m, err
}
func (r *RegisterFile) SetSHAR(m MacAddress) error { return r.framer.WriteBlock(regSHAR, m[:]) }

func (r *RegisterFile) SIPR() (Address, error) {
	var a Address
	err := r.framer.ReadBlock(regSIPR, a[:])
	return a, err
}
func (r *RegisterFile) SetSIPR(a Address) error { return r.framer.WriteBlock(regSIPR, a[:]) }

func (r *RegisterFile) INTLEVEL() (uint16, error)     { return r.readU16(regINTLEVEL) }
func (r *RegisterFile) SetINTLEVEL(v uint16) error    { return r.writeU16(regINTLEVEL, v) }

// IR returns the interrupt context (which common interrupts are pending).
func (r *RegisterFile) IR() (byte, error) { return r.framer.ReadByte(regIR) }

// ClearIR writes mask to IR; the chip clears the write-1 bits (bits 4..7).
func (r *RegisterFile) ClearIR(mask byte) error { return r.framer.WriteByte(regIR, mask) }

func (r *RegisterFile) IMR() (byte, error)  { return r.framer.ReadByte(regIMR) }
func (r *RegisterFile) SetIMR(v byte) error { return r.framer.WriteByte(regIMR, v) }

// SIR returns the per-socket interrupt context (which sockets have a
// pending interrupt), one bit per socket.
func (r *RegisterFile) SIR() (byte, error) { return r.framer.ReadByte(regSIR) }

func (r *RegisterFile) SIMR() (byte, error)  { return r.framer.ReadByte(regSIMR) }
func (r *RegisterFile) SetSIMR(v byte) error { return r.framer.WriteByte(regSIMR, v) }

func (r *RegisterFile) RTR() (uint16, error)  { return r.readU16(regRTR) }
func (r *RegisterFile) SetRTR(v uint16) error { return r.writeU16(regRTR, v) }

func (r *RegisterFile) RCR() (byte, error)  { return r.framer.ReadByte(regRCR) }
func (r *RegisterFile) SetRCR(v byte) error { return r.framer.WriteByte(regRCR, v) }

func (r *RegisterFile) PTIMER() (byte, error)  { return r.framer.ReadByte(regPTIMER) }
func (r *RegisterFile) SetPTIMER(v byte) error { return r.framer.WriteByte(regPTIMER, v) }

func (r *RegisterFile) PMAGIC() (byte, error)  { return r.framer.ReadByte(regPMAGIC) }
func (r *RegisterFile) SetPMAGIC(v byte) error { return r.framer.WriteByte(regPMAGIC, v) }

func (r *RegisterFile) PHAR() (MacAddress, error) {
	var m MacAddress
	err := r.framer.ReadBlock(regPHAR, m[:])
	return m, err
}
func (r *RegisterFile) SetPHAR(m MacAddress) error { return r.framer.WriteBlock(regPHAR, m[:]) }

func (r *RegisterFile) PSID() (uint16, error)  { return r.readU16(regPSID) }
func (r *RegisterFile) SetPSID(v uint16) error { return r.writeU16(regPSID, v) }

func (r *RegisterFile) PMRU() (uint16, error)  { return r.readU16(regPMRU) }
func (r *RegisterFile) SetPMRU(v uint16) error { return r.writeU16(regPMRU, v) }

// UIPR and UPORTR report the source address/port of the last packet the
// chip rejected as unreachable.
func (r *RegisterFile) UIPR() (Address, error) {
	var a Address
	err := r.framer.ReadBlock(regUIPR, a[:])
	return a, err
}
func (r *RegisterFile) UPORTR() (uint16, error) { return r.readU16(regUPORTR) }

func (r *RegisterFile) PHYCFGR() (byte, error)  { return r.framer.ReadByte(regPHYCFGR) }
func (r *RegisterFile) SetPHYCFGR(v byte) error { return r.framer.WriteByte(regPHYCFGR, v) }

// VERSIONR reports the chip's fixed version, which must read back 0x04.
func (r *RegisterFile) VERSIONR() (byte, error) { return r.framer.ReadByte(regVERSIONR) }

// ---- per-socket registers: generic helpers ----

func (r *RegisterFile) socketByte(s SocketID, offset MemoryOffset) (byte, error) {
	return r.framer.ReadSocketByte(s, SocketRegisters, offset)
}
func (r *RegisterFile) setSocketByte(s SocketID, offset MemoryOffset, v byte) error {
	return r.framer.WriteSocketByte(s, SocketRegisters, offset, v)
}
func (r *RegisterFile) socketU16(s SocketID, offset MemoryOffset) (uint16, error) {
	var b [2]byte
	if err := r.framer.ReadSocketBlock(s, SocketRegisters, offset, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}
func (r *RegisterFile) setSocketU16(s SocketID, offset MemoryOffset, v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return r.framer.WriteSocketBlock(s, SocketRegisters, offset, b[:])
}

// stableReadU16 implements the read-until-stable protocol required for
// SN_TX_FSR and SN_RX_RSR: read twice; if the reads differ, a third read
// is authoritative.
func (r *RegisterFile) stableReadU16(s SocketID, offset MemoryOffset) (uint16, error) {
	v1, err := r.socketU16(s, offset)
	if err != nil {
		return 0, err
	}
	v2, err := r.socketU16(s, offset)
	if err != nil {
		return 0, err
	}
	if v1 == v2 {
		return v1, nil
	}
	return r.socketU16(s, offset)
}

// ---- per-socket registers ----

func (r *RegisterFile) SnMR(s SocketID) (byte, error)      { return r.socketByte(s, snMR) }
func (r *RegisterFile) SetSnMR(s SocketID, v byte) error   { return r.setSocketByte(s, snMR, v) }

// SnCR issues a command and polls SN_CR until it clears to zero,
// confirming the chip accepted it. The poll is bounded by
// commandPollAttempts, surfacing ErrCommandTimeout rather than blocking
// forever.
func (r *RegisterFile) SnCR(s SocketID, command byte) error {
	if err := r.setSocketByte(s, snCR, command); err != nil {
		return err
	}
	for i := 0; i < commandPollAttempts; i++ {
		v, err := r.socketByte(s, snCR)
		if err != nil {
			return err
		}
		if v == 0 {
			return nil
		}
	}
	return ErrCommandTimeout
}

func (r *RegisterFile) SnIR(s SocketID) (byte, error) { return r.socketByte(s, snIR) }

// ClearSnIR writes mask to SN_IR; the chip clears the write-1 bits.
func (r *RegisterFile) ClearSnIR(s SocketID, mask byte) error {
	return r.setSocketByte(s, snIR, mask)
}

func (r *RegisterFile) SnSR(s SocketID) (byte, error) { return r.socketByte(s, snSR) }

func (r *RegisterFile) SnPORT(s SocketID) (uint16, error)    { return r.socketU16(s, snPORT) }
func (r *RegisterFile) SetSnPORT(s SocketID, v uint16) error { return r.setSocketU16(s, snPORT, v) }

func (r *RegisterFile) SnDHAR(s SocketID) (MacAddress, error) {
	var m MacAddress
	err := r.framer.ReadSocketBlock(s, SocketRegisters, snDHAR, m[:])
	return m, err
}
func (r *RegisterFile) SetSnDHAR(s SocketID, m MacAddress) error {
	return r.framer.WriteSocketBlock(s, SocketRegisters, snDHAR, m[:])
}

func (r *RegisterFile) SnDIPR(s SocketID) (Address, error) {
	var a Address
	err := r.framer.ReadSocketBlock(s, SocketRegisters, snDIPR, a[:])
	return a, err
}
func (r *RegisterFile) SetSnDIPR(s SocketID, a Address) error {
	return r.framer.WriteSocketBlock(s, SocketRegisters, snDIPR, a[:])
}

func (r *RegisterFile) SnDPORT(s SocketID) (uint16, error) { return r.socketU16(s, snDPORT) }
func (r *RegisterFile) SetSnDPORT(s SocketID, v uint16) error {
	return r.setSocketU16(s, snDPORT, v)
}

func (r *RegisterFile) SnMSSR(s SocketID) (uint16, error)    { return r.socketU16(s, snMSSR) }
func (r *RegisterFile) SetSnMSSR(s SocketID, v uint16) error { return r.setSocketU16(s, snMSSR, v) }

func (r *RegisterFile) SnTOS(s SocketID) (byte, error)    { return r.socketByte(s, snTOS) }
func (r *RegisterFile) SetSnTOS(s SocketID, v byte) error { return r.setSocketByte(s, snTOS, v) }

func (r *RegisterFile) SnTTL(s SocketID) (byte, error)    { return r.socketByte(s, snTTL) }
func (r *RegisterFile) SetSnTTL(s SocketID, v byte) error { return r.setSocketByte(s, snTTL, v) }

func (r *RegisterFile) SnRXBUFSize(s SocketID) (byte, error) { return r.socketByte(s, snRXBUFSIZE) }
func (r *RegisterFile) SetSnRXBUFSize(s SocketID, kib byte) error {
	return r.setSocketByte(s, snRXBUFSIZE, kib)
}
func (r *RegisterFile) SnTXBUFSize(s SocketID) (byte, error) { return r.socketByte(s, snTXBUFSIZE) }
func (r *RegisterFile) SetSnTXBUFSize(s SocketID, kib byte) error {
	return r.setSocketByte(s, snTXBUFSIZE, kib)
}

// SnTXFSR returns the free size of the TX buffer using the stable-read
// protocol.
func (r *RegisterFile) SnTXFSR(s SocketID) (uint16, error) { return r.stableReadU16(s, snTXFSR) }

func (r *RegisterFile) SnTXRD(s SocketID) (uint16, error)    { return r.socketU16(s, snTXRD) }
func (r *RegisterFile) SetSnTXRD(s SocketID, v uint16) error { return r.setSocketU16(s, snTXRD, v) }

func (r *RegisterFile) SnTXWR(s SocketID) (uint16, error)    { return r.socketU16(s, snTXWR) }
func (r *RegisterFile) SetSnTXWR(s SocketID, v uint16) error { return r.setSocketU16(s, snTXWR, v) }

// SnRXRSR returns the received size of the RX buffer using the
// stable-read protocol.
func (r *RegisterFile) SnRXRSR(s SocketID) (uint16, error) { return r.stableReadU16(s, snRXRSR) }

func (r *RegisterFile) SnRXRD(s SocketID) (uint16, error)    { return r.socketU16(s, snRXRD) }
func (r *RegisterFile) SetSnRXRD(s SocketID, v uint16) error { return r.setSocketU16(s, snRXRD, v) }

func (r *RegisterFile) SnRXWR(s SocketID) (uint16, error) { return r.socketU16(s, snRXWR) }

func (r *RegisterFile) SnIMR(s SocketID) (byte, error)    { return r.socketByte(s, snIMR) }
func (r *RegisterFile) SetSnIMR(s SocketID, v byte) error { return r.setSocketByte(s, snIMR, v) }

func (r *RegisterFile) SnFRAG(s SocketID) (uint16, error)    { return r.socketU16(s, snFRAG) }
func (r *RegisterFile) SetSnFRAG(s SocketID, v uint16) error { return r.setSocketU16(s, snFRAG, v) }

func (r *RegisterFile) SnKPALVTR(s SocketID) (byte, error) { return r.socketByte(s, snKPALVTR) }
func (r *RegisterFile) SetSnKPALVTR(s SocketID, v byte) error {
	return r.setSocketByte(s, snKPALVTR, v)
}

// SetSnMRProtocol clears the lower-4-bit protocol field of SN_MR and ORs
// in proto, leaving every other bit (multicast, no-delayed-ack, ...)
// untouched.
func (r *RegisterFile) SetSnMRProtocol(s SocketID, proto byte) error {
	v, err := r.SnMR(s)
	if err != nil {
		return err
	}
	v = (v &^ snMRProtoMaskBits) | (proto & snMRProtoMaskBits)
	return r.SetSnMR(s, v)
}

// SetSnMRNoDelayedAck sets or clears the no-delayed-ack bit of SN_MR via
// read-modify-write.
func (r *RegisterFile) SetSnMRNoDelayedAck(s SocketID, enabled bool) error {
	v, err := r.SnMR(s)
	if err != nil {
		return err
	}
	if enabled {
		v |= snMRNoDelayedAck
	} else {
		v &^= snMRNoDelayedAck
	}
	return r.SetSnMR(s, v)
}

// SetSnMRBroadcastBlock sets or clears SN_MR's broadcast-blocking bit
// (meaningful in UDP mode: discard received broadcast datagrams).
func (r *RegisterFile) SetSnMRBroadcastBlock(s SocketID, enabled bool) error {
	v, err := r.SnMR(s)
	if err != nil {
		return err
	}
	if enabled {
		v |= snMRBroadcastBlock
	} else {
		v &^= snMRBroadcastBlock
	}
	return r.SetSnMR(s, v)
}

// SetSnMRUnicastBlock sets or clears SN_MR's unicast-blocking bit
// (meaningful in UDP multicast mode: discard received unicast datagrams).
func (r *RegisterFile) SetSnMRUnicastBlock(s SocketID, enabled bool) error {
	v, err := r.SnMR(s)
	if err != nil {
		return err
	}
	if enabled {
		v |= snMRUnicastBlock
	} else {
		v &^= snMRUnicastBlock
	}
	return r.SetSnMR(s, v)
}
