// Package cmd defines HCI command packets and their return parameters [Vol 4, Part E, 7].
package cmd

import (
	"bytes"
	"encoding/binary"
	"io"
)

// Command is an HCI command.
type Command interface {
	OpCode() int
	Len() int
	Marshal([]byte) error
}

// CommandRP is the return parameter block of a command that completes with Command Complete.
type CommandRP interface {
	Unmarshal(b []byte) error
}

func marshal(c interface{}, b []byte) error {
	buf := bytes.NewBuffer(b)
	buf.Reset()
	if buf.Cap() < binary.Size(c) {
		return io.ErrShortBuffer
	}
	return binary.Write(buf, binary.LittleEndian, c)
}

func unmarshal(c interface{}, b []byte) error {
	return binary.Read(bytes.NewBuffer(b), binary.LittleEndian, c)
}

// Unmarshal decodes command parameters into c. Used to inspect captured traffic.
func Unmarshal(c Command, b []byte) error {
	if len(b) < c.Len() {
		return io.ErrUnexpectedEOF
	}
	if c.Len() == 0 {
		return nil
	}
	return unmarshal(c, b)
}

// OGF returns the opcode group field.
func OGF(opcode int) int { return opcode >> 10 }

// OCF returns the opcode command field.
func OCF(opcode int) int { return opcode & 0x03ff }
