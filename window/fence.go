package window

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// waitFence blocks until the fence file descriptor signals. There is no
// timeout: the protocol guarantees the fence eventually signals, and this
// never runs on the producer thread.
func waitFence(fd int) error {
	pfd := []unix.PollFd{{
		Fd:     int32(fd),
		Events: unix.POLLIN | unix.POLLOUT,
	}}
	for {
		_, err := unix.Poll(pfd, -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return fmt.Errorf("poll fence %d: %w", fd, err)
		}
		return nil
	}
}
