package provider

import "context"

// MockProvider implements Provider for testing.
type MockProvider struct {
	Response string
	Err      error

	Calls    int
	LastReq  Request
	Requests []Request
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (string, error) {
	m.Calls++
	m.LastReq = req
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}
