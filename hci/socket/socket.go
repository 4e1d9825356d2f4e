//go:build linux

package socket

import (
	"io"
	"strings"
	"sync"
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/rigado/gap"
	"golang.org/x/sys/unix"
)

// Request codes from <bluetooth/hci.h>; x/sys/unix does not export them.
const (
	ioctlDevDown    = 0x400448ca // _IOW('H', 202, int)
	ioctlGetDevList = 0x800448d2 // _IOR('H', 210, int)
	maxDevices      = 16
)

const (
	pollTimeout  = time.Second
	openRetryFor = 60 * time.Second
	pollErrors   = int16(unix.POLLHUP | unix.POLLNVAL | unix.POLLERR)
	pollIn       = int16(unix.POLLIN)
)

type devList struct {
	n    uint16
	devs [maxDevices]struct {
		id  uint16
		opt uint32
	}
}

// Socket is an HCI User Channel. Each Read returns one packet, or zero bytes
// when the controller stayed silent for a second.
type Socket struct {
	fd     int
	rmu    sync.Mutex
	wmu    sync.Mutex
	done   chan struct{}
	once   sync.Once
	logger gap.Logger
}

// NewSocket binds the user channel of hci<id>. An id of -1 takes the first
// controller that can be bound.
func NewSocket(id int) (*Socket, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_RAW, unix.BTPROTO_HCI)
	if err != nil {
		return nil, errors.Wrap(err, "can't create hci socket")
	}

	var s *Socket
	if id == -1 {
		s, err = bindAny(fd)
	} else {
		s, err = bindRetry(fd, id)
	}
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	return s, nil
}

// bindRetry keeps trying while the controller is still held by bluetoothd,
// which is typical right after boot.
func bindRetry(fd, id int) (*Socket, error) {
	deadline := time.Now().Add(openRetryFor)
	for {
		s, err := bind(fd, id)
		if err == nil || time.Now().After(deadline) {
			return s, err
		}
		time.Sleep(time.Second)
	}
}

func bindAny(fd int) (*Socket, error) {
	ids, err := deviceIDs(fd)
	if err != nil {
		return nil, err
	}
	var failed []string
	for _, id := range ids {
		s, err := bind(fd, id)
		if err == nil {
			return s, nil
		}
		failed = append(failed, err.Error())
	}
	return nil, errors.Errorf("no controller available: [%s]", strings.Join(failed, "; "))
}

func deviceIDs(fd int) ([]int, error) {
	l := devList{n: maxDevices}
	if _, _, e := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), ioctlGetDevList, uintptr(unsafe.Pointer(&l))); e != 0 {
		return nil, errors.Wrap(e, "can't list controllers")
	}
	ids := make([]int, 0, l.n)
	for i := 0; i < int(l.n) && i < maxDevices; i++ {
		ids = append(ids, int(l.devs[i].id))
	}
	return ids, nil
}

func bind(fd, id int) (*Socket, error) {
	// the user channel only binds to a controller that is down
	if err := unix.IoctlSetInt(fd, ioctlDevDown, id); err != nil {
		return nil, errors.Wrapf(err, "hci%d: can't bring controller down", id)
	}
	sa := unix.SockaddrHCI{Dev: uint16(id), Channel: unix.HCI_CHANNEL_USER}
	if err := unix.Bind(fd, &sa); err != nil {
		return nil, errors.Wrapf(err, "hci%d: can't bind user channel", id)
	}
	if err := discardStale(fd); err != nil {
		return nil, errors.Wrapf(err, "hci%d", id)
	}
	return &Socket{
		fd:     fd,
		done:   make(chan struct{}),
		logger: gap.ComponentLogger("socket").ChildLogger(map[string]interface{}{"hci": id}),
	}, nil
}

// discardStale drops whatever the kernel queued before the bind.
func discardStale(fd int) error {
	pfds := []unix.PollFd{{Fd: int32(fd), Events: pollIn}}
	unix.Poll(pfds, 20)
	switch ev := pfds[0].Revents; {
	case ev&pollErrors != 0:
		return io.EOF
	case ev&pollIn != 0:
		unix.Read(fd, make([]byte, 2048))
	}
	return nil
}

func (s *Socket) Read(p []byte) (int, error) {
	if s.closed() {
		return 0, io.EOF
	}

	s.rmu.Lock()
	defer s.rmu.Unlock()
	pfds := []unix.PollFd{{Fd: int32(s.fd), Events: pollIn}}
	unix.Poll(pfds, int(pollTimeout/time.Millisecond))

	ev := pfds[0].Revents
	if ev&pollErrors != 0 {
		s.logger.Errorf("poll error 0x%04x", ev)
		return 0, io.EOF
	}
	if ev&pollIn == 0 {
		return 0, nil
	}
	n, err := unix.Read(s.fd, p)
	// Close may have run while we were blocked
	if s.closed() {
		return 0, io.EOF
	}
	return n, errors.Wrap(err, "can't read hci socket")
}

func (s *Socket) Write(p []byte) (int, error) {
	if s.closed() {
		return 0, io.EOF
	}

	s.wmu.Lock()
	defer s.wmu.Unlock()
	n, err := unix.Write(s.fd, p)
	return n, errors.Wrap(err, "can't write hci socket")
}

func (s *Socket) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		s.logger.Info("closing user channel")
		s.rmu.Lock()
		err = errors.Wrap(unix.Close(s.fd), "can't close hci socket")
		s.rmu.Unlock()
	})
	return err
}

func (s *Socket) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
