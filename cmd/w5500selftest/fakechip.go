package main

import "errors"

// fakeChip is a software model of just enough W5500 behaviour to drive
// drivers/w5500 end to end without real hardware: common and per-socket
// registers, per-socket TX/RX ring buffers, and the handful of SN_CR
// commands the self-test exercises (OPEN, SEND, RECV). It implements
// w5500.SpiBus directly: Select/Deselect bracket a transaction, the first
// WriteBlock after Select supplies the 3-byte FrameHeader, and every
// following byte transfer reads or writes the chip's addressed location,
// auto-incrementing.
//
// SEND on a UDP socket is modelled as an immediate local delivery into
// whichever socket (on this same chip) is bound to the destination port —
// there is no real network, so this is the simplest thing that lets two
// sockets on one stack talk to each other.
const bufSize = 2048

type fakeChip struct {
	common  [0x40]byte
	regs    [8][0x40]byte
	tx      [8][bufSize]byte
	rx      [8][bufSize]byte
	txRd    [8]uint16
	rxWr    [8]uint16

	selected   bool
	haveHeader bool
	header     [3]byte
	offset     uint16
	bsb        byte
}

func newFakeChip() *fakeChip {
	c := &fakeChip{}
	c.common[0x39] = 0x04 // VERSIONR
	return c
}

func (c *fakeChip) Select() error {
	if c.selected {
		return errors.New("fakechip: already selected")
	}
	c.selected = true
	c.haveHeader = false
	return nil
}

func (c *fakeChip) Deselect() error {
	if !c.selected {
		return errors.New("fakechip: not selected")
	}
	c.selected = false
	c.haveHeader = false
	return nil
}

func (c *fakeChip) WriteBlock(p []byte) error {
	if !c.haveHeader {
		if len(p) != 3 {
			return errors.New("fakechip: expected 3-byte frame header")
		}
		c.header = [3]byte{p[0], p[1], p[2]}
		c.offset = uint16(p[0])<<8 | uint16(p[1])
		c.bsb = c.header[2] &^ 0b111 // clear OM/RWB, keep BSB bits
		c.haveHeader = true
		return nil
	}
	for _, b := range p {
		c.writeByteAt(b)
	}
	return nil
}

func (c *fakeChip) WriteByte(b byte) error {
	return c.WriteBlock([]byte{b})
}

func (c *fakeChip) ReadBlock(p []byte) error {
	if !c.haveHeader {
		return errors.New("fakechip: read before header")
	}
	for i := range p {
		p[i] = c.readByteAt()
	}
	return nil
}

func (c *fakeChip) ReadByte() (byte, error) {
	var b [1]byte
	if err := c.ReadBlock(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

const (
	blockCommon = 0
	blockSnReg  = 0b01 << 3
	blockSnTx   = 0b10 << 3
	blockSnRx   = 0b11 << 3
)

func (c *fakeChip) socketIndex() int { return int(c.bsb >> 5) }

func (c *fakeChip) writeByteAt(b byte) {
	block := c.bsb & 0b11000
	switch block {
	case blockCommon:
		if int(c.offset) < len(c.common) {
			if c.offset == 0x00 {
				b &^= 1 << 7 // MR reset bit: the chip completes a reset instantly
			}
			c.common[c.offset] = b
		}
	case blockSnReg:
		s := c.socketIndex()
		off := c.offset
		if int(off) < len(c.regs[s]) {
			c.regs[s][off] = b
		}
		if off == 0x01 && b != 0 { // SN_CR: execute immediately, auto-clear
			c.execCommand(s, b)
		}
	case blockSnTx:
		s := c.socketIndex()
		c.tx[s][int(c.offset)%bufSize] = b
	case blockSnRx:
		// RX buffer is chip-written only; host writes here are ignored on
		// real hardware too.
	}
	c.offset++
}

func (c *fakeChip) readByteAt() byte {
	var v byte
	block := c.bsb & 0b11000
	switch block {
	case blockCommon:
		if int(c.offset) < len(c.common) {
			v = c.common[c.offset]
		}
	case blockSnReg:
		s := c.socketIndex()
		if int(c.offset) < len(c.regs[s]) {
			v = c.regs[s][c.offset]
		}
	case blockSnTx:
		s := c.socketIndex()
		v = c.tx[s][int(c.offset)%bufSize]
	case blockSnRx:
		s := c.socketIndex()
		v = c.rx[s][int(c.offset)%bufSize]
	}
	c.offset++
	return v
}

// execCommand runs the handful of SN_CR commands this self-test needs and
// clears SN_CR back to zero, matching real hardware's auto-clear behaviour.
func (c *fakeChip) execCommand(s int, command byte) {
	const (
		crOpen = 0x01
		crSend = 0x20
		crRecv = 0x40
	)
	switch command {
	case crOpen:
		c.regs[s][0x03] = 0x22 // SN_SR = UDP
		c.setTXFSR(s, bufSize)
	case crSend:
		c.deliverDatagram(s)
		c.regs[s][0x02] |= 0x10 // SN_IR SEND_OK
		c.setTXFSR(s, bufSize) // delivery is immediate: TX_RD catches TX_WR
	case crRecv:
		// not modelled: SN_RX_RSR is only recomputed when a datagram is
		// delivered, which is enough for the single receive this self-test
		// performs.
	}
	c.regs[s][0x01] = 0
}

func (c *fakeChip) setTXFSR(s int, free uint16) {
	c.regs[s][0x20] = byte(free >> 8)
	c.regs[s][0x21] = byte(free)
}

// deliverDatagram copies socket s's queued TX payload into whichever
// socket (including s itself) is bound to SN_DPORT, framed exactly as
// drivers/w5500/udp.go expects to read it back: 4 bytes source IP, 2 bytes
// source port, 2 bytes length, then payload.
func (c *fakeChip) deliverDatagram(s int) {
	destPort := uint16(c.regs[s][0x10])<<8 | uint16(c.regs[s][0x11])

	target := -1
	for i := 0; i < 8; i++ {
		port := uint16(c.regs[i][0x04])<<8 | uint16(c.regs[i][0x05])
		if port == destPort && c.regs[i][0x03] == 0x22 {
			target = i
			break
		}
	}
	if target == -1 {
		return
	}

	rd := c.txRd[s]
	wr := uint16(c.regs[s][0x24])<<8 | uint16(c.regs[s][0x25]) // SN_TX_WR
	length := wr - rd

	srcPort := uint16(c.regs[s][0x04])<<8 | uint16(c.regs[s][0x05])

	header := [8]byte{
		192, 168, 1, 50,
		byte(srcPort >> 8), byte(srcPort),
		byte(length >> 8), byte(length),
	}

	rxWr := c.rxWr[target]
	for _, b := range header {
		c.rx[target][int(rxWr)%bufSize] = b
		rxWr++
	}
	for i := uint16(0); i < length; i++ {
		c.rx[target][int(rxWr)%bufSize] = c.tx[s][int(rd+i)%bufSize]
		rxWr++
	}
	c.rxWr[target] = rxWr
	c.regs[target][0x2A] = byte(rxWr >> 8) // SN_RX_WR high
	c.regs[target][0x2B] = byte(rxWr)      // SN_RX_WR low

	received := rxWr - (uint16(c.regs[target][0x28])<<8 | uint16(c.regs[target][0x29]))
	c.regs[target][0x26] = byte(received >> 8) // SN_RX_RSR high
	c.regs[target][0x27] = byte(received)      // SN_RX_RSR low
	c.regs[target][0x02] |= 0x04               // SN_IR RECV

	c.txRd[s] = wr
	c.regs[s][0x22] = byte(wr >> 8)
	c.regs[s][0x23] = byte(wr)
}
