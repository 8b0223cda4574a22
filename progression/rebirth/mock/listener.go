package mock

import (
	context "context"
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"
)

// MockRebirthListener is a mock of RebirthListener interface.
type MockRebirthListener struct {
	ctrl     *gomock.Controller
	recorder *MockRebirthListenerMockRecorder
	isgomock struct{}
}

// MockRebirthListenerMockRecorder is the mock recorder for MockRebirthListener.
type MockRebirthListenerMockRecorder struct {
	mock *MockRebirthListener
}

// NewMockRebirthListener creates a new mock instance.
func NewMockRebirthListener(ctrl *gomock.Controller) *MockRebirthListener {
	mock := &MockRebirthListener{ctrl: ctrl}
	mock.recorder = &MockRebirthListenerMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockRebirthListener) EXPECT() *MockRebirthListenerMockRecorder {
	return m.recorder
}

// CheckRebirthQuest mocks base method.
func (m *MockRebirthListener) CheckRebirthQuest(ctx context.Context, userID string, rebirthCount int) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "CheckRebirthQuest", ctx, userID, rebirthCount)
}

// CheckRebirthQuest indicates an expected call of CheckRebirthQuest.
func (mr *MockRebirthListenerMockRecorder) CheckRebirthQuest(ctx, userID, rebirthCount any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CheckRebirthQuest", reflect.TypeOf((*MockRebirthListener)(nil).CheckRebirthQuest), ctx, userID, rebirthCount)
}
