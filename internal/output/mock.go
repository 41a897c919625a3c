package output

// MockPort implements Port for testing, capturing everything written.
type MockPort struct {
	WrittenData []byte
	WriteError  error
	CloseError  error
	Closed      bool
}

func (m *MockPort) Write(p []byte) (n int, err error) {
	if m.WriteError != nil {
		return 0, m.WriteError
	}
	m.WrittenData = append(m.WrittenData, p...)
	return len(p), nil
}

func (m *MockPort) Close() error {
	m.Closed = true
	return m.CloseError
}
