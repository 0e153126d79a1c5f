package audio

// Mock is a test double for Backend. It records every call so tests can
// assert the order of commands the controller issues.
type Mock struct {
	calls      []string
	loadErr    error
	playErr    error
	loadedPath string
}

// NewMock creates a new mock backend for testing.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Load(path string) error {
	m.calls = append(m.calls, "load:"+path)
	if m.loadErr != nil {
		return m.loadErr
	}
	m.loadedPath = path
	return nil
}

func (m *Mock) Play() error {
	m.calls = append(m.calls, "play")
	return m.playErr
}

func (m *Mock) Pause() { m.calls = append(m.calls, "pause") }

func (m *Mock) Unpause() { m.calls = append(m.calls, "unpause") }

func (m *Mock) Stop() { m.calls = append(m.calls, "stop") }

func (m *Mock) Close() error {
	m.calls = append(m.calls, "close")
	return nil
}

// Test helpers

func (m *Mock) SetLoadError(err error) { m.loadErr = err }

func (m *Mock) SetPlayError(err error) { m.playErr = err }

func (m *Mock) Calls() []string { return m.calls }

func (m *Mock) LoadedPath() string { return m.loadedPath }

// LastCall returns the most recent call, or "" if none were made.
func (m *Mock) LastCall() string {
	if len(m.calls) == 0 {
		return ""
	}
	return m.calls[len(m.calls)-1]
}

// Verify Mock implements Backend at compile time.
var _ Backend = (*Mock)(nil)
