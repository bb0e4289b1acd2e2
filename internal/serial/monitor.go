// Package serial streams log output from a keyboard's USB serial console,
// used by the monitor command to watch ZMK's logging snippet output.
package serial

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.bug.st/serial"
)

// Session is an open serial connection to a keyboard.
type Session struct {
	port     serial.Port
	portName string
	baudRate int

	mu     sync.Mutex
	closed bool
}

// Open connects to a serial port with ZMK's usual 8N1 framing.
func Open(portName string, baudRate int) (*Session, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("opening %s at %d baud: %w", portName, baudRate, err)
	}
	return &Session{port: port, portName: portName, baudRate: baudRate}, nil
}

// Port returns the connected port name.
func (s *Session) Port() string { return s.portName }

// BaudRate returns the connection speed.
func (s *Session) BaudRate() int { return s.baudRate }

// Stream copies serial output to w until ctx is canceled or the device
// disappears. A canceled context is a clean shutdown, not an error.
func (s *Session) Stream(ctx context.Context, w io.Writer) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			// Unblocks the pending Read.
			s.Close()
		case <-done:
		}
	}()

	buf := make([]byte, 1024)
	for {
		n, err := s.port.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err != nil {
			if ctx.Err() != nil || s.isClosed() {
				return nil
			}
			return fmt.Errorf("reading from %s: %w", s.portName, err)
		}
	}
}

// Close disconnects from the port. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.port.Close()
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
