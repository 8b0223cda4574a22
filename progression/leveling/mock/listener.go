package mock

import (
	context "context"
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"
)

// MockLevelListener is a mock of LevelListener interface.
type MockLevelListener struct {
	ctrl     *gomock.Controller
	recorder *MockLevelListenerMockRecorder
	isgomock struct{}
}

// MockLevelListenerMockRecorder is the mock recorder for MockLevelListener.
type MockLevelListenerMockRecorder struct {
	mock *MockLevelListener
}

// NewMockLevelListener creates a new mock instance.
func NewMockLevelListener(ctrl *gomock.Controller) *MockLevelListener {
	mock := &MockLevelListener{ctrl: ctrl}
	mock.recorder = &MockLevelListenerMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockLevelListener) EXPECT() *MockLevelListenerMockRecorder {
	return m.recorder
}

// CheckLevelQuest mocks base method.
func (m *MockLevelListener) CheckLevelQuest(ctx context.Context, userID string, level int) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "CheckLevelQuest", ctx, userID, level)
}

// CheckLevelQuest indicates an expected call of CheckLevelQuest.
func (mr *MockLevelListenerMockRecorder) CheckLevelQuest(ctx, userID, level any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CheckLevelQuest", reflect.TypeOf((*MockLevelListener)(nil).CheckLevelQuest), ctx, userID, level)
}
