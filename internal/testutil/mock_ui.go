//go:build !production

package testutil

import (
	"github.com/stretchr/testify/mock"

	"github.com/palemoky/netsession/internal/flow"
	"github.com/palemoky/netsession/internal/session"
)

// MockUIHost 实现 flow.UIHost 的 mock
type MockUIHost struct {
	mock.Mock
}

func (m *MockUIHost) CreateResource(owner string, class flow.ResourceClass) flow.Resource {
	args := m.Called(owner, class)
	return args.Get(0)
}

func (m *MockUIHost) Show(r flow.Resource) {
	m.Called(r)
}

func (m *MockUIHost) Hide(r flow.Resource) {
	m.Called(r)
}

// MockInputBinder 实现 flow.InputBinder 的 mock
type MockInputBinder struct {
	mock.Mock
}

func (m *MockInputBinder) SetInputMode(mode flow.InputMode, showCursor bool) {
	m.Called(mode, showCursor)
}

// MockTravelHost 实现 session.TravelHost 的 mock
type MockTravelHost struct {
	mock.Mock
}

func (m *MockTravelHost) OpenDestination(name string, listen bool) {
	m.Called(name, listen)
}

func (m *MockTravelHost) ClientTravel(url string) {
	m.Called(url)
}

// MockObserver 实现 session.Observer 的 mock
type MockObserver struct {
	mock.Mock
}

func (m *MockObserver) OperationSucceeded(op session.Operation) {
	m.Called(op)
}

func (m *MockObserver) OperationFailed(op session.Operation, err error) {
	m.Called(op, err)
}
