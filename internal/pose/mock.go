package pose

import (
	"gocv.io/x/gocv"
)

// MockProvider is a test implementation of the Provider interface.
// It allows tests to control the detection results.
type MockProvider struct {
	frame *Frame
	err   error
}

// NewMockProvider creates a new MockProvider instance.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// SetFrame sets the frame that will be returned by Detect.
func (m *MockProvider) SetFrame(f *Frame) {
	m.frame = f
}

// SetError sets the error that will be returned by Detect.
func (m *MockProvider) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured frame or error.
func (m *MockProvider) Detect(frame *gocv.Mat) (*Frame, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.frame, nil
}

// Close is a no-op for the mock provider.
func (m *MockProvider) Close() error {
	return nil
}
