package w5500_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"w5500-go/drivers/w5500"
)

// recordingBus is a hand-written fake SpiBus that records every call in
// order, for tests that assert the exact SPI transaction sequence rather
// than just the end state.
type recordingBus struct {
	calls     []string
	selected  bool
	readBytes []byte
	writeErr  error
}

func (b *recordingBus) Select() error {
	b.calls = append(b.calls, "select")
	b.selected = true
	return nil
}

func (b *recordingBus) Deselect() error {
	b.calls = append(b.calls, "deselect")
	b.selected = false
	return nil
}

func (b *recordingBus) WriteByte(v byte) error {
	b.calls = append(b.calls, "write_byte")
	return b.writeErr
}

func (b *recordingBus) WriteBlock(p []byte) error {
	b.calls = append(b.calls, "write_block")
	return b.writeErr
}

func (b *recordingBus) ReadByte() (byte, error) {
	b.calls = append(b.calls, "read_byte")
	if len(b.readBytes) == 0 {
		return 0, nil
	}
	v := b.readBytes[0]
	b.readBytes = b.readBytes[1:]
	return v, nil
}

func (b *recordingBus) ReadBlock(p []byte) error {
	b.calls = append(b.calls, "read_block")
	for i := range p {
		if len(b.readBytes) == 0 {
			break
		}
		p[i] = b.readBytes[0]
		b.readBytes = b.readBytes[1:]
	}
	return nil
}

func TestSpiFramer_ReadByte_SelectsWritesReadsDeselects(t *testing.T) {
	bus := &recordingBus{readBytes: []byte{0x42}}
	framer := w5500.NewSpiFramer(bus)

	v, err := framer.ReadByte(0x0000)
	require.NoError(t, err)
	assert.Equal(t, byte(0x42), v)
	assert.Equal(t, []string{"select", "write_block", "read_byte", "deselect"}, bus.calls)
}

func TestSpiFramer_WriteBlock_SelectsWritesHeaderAndBodyDeselects(t *testing.T) {
	bus := &recordingBus{}
	framer := w5500.NewSpiFramer(bus)

	require.NoError(t, framer.WriteBlock(0x0009, []byte{1, 2, 3, 4, 5, 6}))
	assert.Equal(t, []string{"select", "write_block", "write_block", "deselect"}, bus.calls)
}

func TestSpiFramer_DeselectsOnWriteError(t *testing.T) {
	bus := &recordingBus{writeErr: assertError{}}
	framer := w5500.NewSpiFramer(bus)

	_, err := framer.ReadByte(0x0000)
	assert.Error(t, err)
	assert.Equal(t, []string{"select", "write_block", "deselect"}, bus.calls)
}

// assertError is a trivial error value used to force a failure path.
type assertError struct{}

func (assertError) Error() string { return "forced failure" }
