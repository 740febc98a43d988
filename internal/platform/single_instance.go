// Package platform holds OS-level helpers for the desktop binary.
package platform

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"strconv"
)

// ErrAlreadyRunning indicates another instance already holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

const (
	lockPortBase  = 20000
	lockPortRange = 20000
)

// InstanceLock is held by the one running instance of an app. The lock is a
// listening localhost socket, so the OS releases it when the process dies.
type InstanceLock struct {
	listener net.Listener
}

// AcquireInstanceLock claims the lock for appName.
func AcquireInstanceLock(appName string) (*InstanceLock, error) {
	address := net.JoinHostPort("127.0.0.1", strconv.Itoa(LockPort(appName)))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w: %s busy: %v", ErrAlreadyRunning, address, err)
	}
	return &InstanceLock{listener: listener}, nil
}

// LockPort maps appName onto a stable port in [20000, 40000).
func LockPort(appName string) int {
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	return lockPortBase + int(hash.Sum32()%lockPortRange)
}

// Address returns the bound address.
func (lock *InstanceLock) Address() string {
	if lock == nil || lock.listener == nil {
		return ""
	}
	return lock.listener.Addr().String()
}

// Release frees the lock. It is safe to call more than once.
func (lock *InstanceLock) Release() error {
	if lock == nil || lock.listener == nil {
		return nil
	}
	err := lock.listener.Close()
	lock.listener = nil
	return err
}
