package h4

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/jacobsa/go-serial/serial"
	"github.com/pkg/errors"
	"github.com/rigado/gap"
)

const (
	rxQueueSize = 64
	readTimeout = time.Second
)

// DefaultSerialOptions returns the UART settings of common H4 controllers.
func DefaultSerialOptions() serial.OpenOptions {
	return serial.OpenOptions{
		PortName:              "/dev/ttyACM0",
		BaudRate:              1000000,
		DataBits:              8,
		StopBits:              1,
		ParityMode:            serial.PARITY_NONE,
		RTSCTSFlowControl:     true,
		MinimumReadSize:       0,
		InterCharacterTimeout: 100,
	}
}

// NewSerial opens an H4 transport on a UART.
func NewSerial(opts serial.OpenOptions) (io.ReadWriteCloser, error) {
	// force these
	opts.MinimumReadSize = 0
	opts.InterCharacterTimeout = 100

	sp, err := serial.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open %v", opts.PortName)
	}
	return newH4(sp), nil
}

// NewSocket opens an H4 transport over a TCP connection, as exposed by
// controller emulators and serial bridges.
func NewSocket(addr string, timeout time.Duration) (io.ReadWriteCloser, error) {
	c, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, errors.Wrapf(err, "can't dial %v", addr)
	}
	return newH4(&deadlineConn{Conn: c, timeout: timeout}), nil
}

type h4 struct {
	rwc    io.ReadWriteCloser
	wmu    sync.Mutex
	logger gap.Logger

	rxQueue chan []byte

	done chan struct{}
	once sync.Once
}

func newH4(rwc io.ReadWriteCloser) *h4 {
	h := &h4{
		rwc:     rwc,
		logger:  gap.ComponentLogger("h4"),
		rxQueue: make(chan []byte, rxQueueSize),
		done:    make(chan struct{}),
	}
	go h.rxLoop()
	return h
}

// Read returns one complete packet, or zero bytes on a read timeout.
func (h *h4) Read(p []byte) (int, error) {
	select {
	case <-h.done:
		return 0, io.EOF
	case t := <-h.rxQueue:
		if len(p) < len(t) {
			return 0, errors.Errorf("buffer too small for %d byte packet", len(t))
		}
		return copy(p, t), nil
	case <-time.After(readTimeout):
		return 0, nil
	}
}

func (h *h4) Write(p []byte) (int, error) {
	select {
	case <-h.done:
		return 0, io.EOF
	default:
	}

	h.wmu.Lock()
	defer h.wmu.Unlock()
	n, err := h.rwc.Write(p)
	return n, errors.Wrap(err, "can't write h4")
}

func (h *h4) Close() error {
	var err error
	h.once.Do(func() {
		close(h.done)
		err = errors.Wrap(h.rwc.Close(), "can't close h4")
	})
	return err
}

func (h *h4) rxLoop() {
	a := newAssembler()
	tmp := make([]byte, 512)
	for {
		select {
		case <-h.done:
			return
		default:
		}

		n, err := h.rwc.Read(tmp)
		if err != nil {
			if isTimeout(err) {
				continue
			}
			if err == io.EOF {
				h.logger.Info("h4 stream closed")
				h.Close()
				return
			}
			h.logger.Debugf("h4 read: %v", err)
			continue
		}
		for _, p := range a.feed(tmp[:n]) {
			select {
			case h.rxQueue <- p:
			case <-h.done:
				return
			}
		}
	}
}
