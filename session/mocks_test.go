package session

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
)

// --- NetworkSession ---

type MockNetworkSession struct {
	mock.Mock
}

func (m *MockNetworkSession) Close() {
	m.Called()
}

func (m *MockNetworkSession) Write(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockNetworkSession) Read() ([]byte, error) {
	args := m.Called()
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockNetworkSession) Ping() error {
	args := m.Called()
	return args.Error(0)
}

// --- Dialer ---

type MockDialer struct {
	mock.Mock
}

func (m *MockDialer) Dial(ctx context.Context, target string) (NetworkSession, error) {
	args := m.Called(ctx, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(NetworkSession), args.Error(1)
}

// fakeSession is a scriptable connection for engine tests, where the frame
// sequence matters more than call expectations.
type fakeSession struct {
	frames chan []byte
	errs   chan error

	mu     sync.Mutex
	wrote  [][]byte
	closed bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		frames: make(chan []byte, 16),
		errs:   make(chan error, 1),
	}
}

func (f *fakeSession) push(frame string) { f.frames <- []byte(frame) }

func (f *fakeSession) fail(err error) { f.errs <- err }

func (f *fakeSession) Read() ([]byte, error) {
	select {
	case d := <-f.frames:
		return d, nil
	case err := <-f.errs:
		return nil, err
	}
}

func (f *fakeSession) Write(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wrote = append(f.wrote, data)
	return nil
}

func (f *fakeSession) Ping() error { return nil }

func (f *fakeSession) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	select {
	case f.errs <- ErrConnectionClosed:
	default:
	}
}

// scriptDialer hands out prepared sessions in order and records every
// target it was asked to dial.
type scriptDialer struct {
	mu       sync.Mutex
	sessions []NetworkSession
	targets  []string
}

func (d *scriptDialer) add(s NetworkSession) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessions = append(d.sessions, s)
}

func (d *scriptDialer) Dial(_ context.Context, target string) (NetworkSession, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.targets = append(d.targets, target)
	if len(d.sessions) == 0 {
		return nil, ErrConnectionClosed
	}
	s := d.sessions[0]
	d.sessions = d.sessions[1:]
	return s, nil
}

func (d *scriptDialer) dialed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.targets...)
}
