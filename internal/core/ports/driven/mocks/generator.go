package mocks

import (
	"context"
	"strings"

	"github.com/mailsage-labs/mailsage-core/internal/core/domain"
)

// MockGenerator is a scripted mock implementation of Generator for testing.
// Responses are returned in order, one per Generate call; an empty queue
// echoes the prompt's last line. Prompts are recorded for inspection.
type MockGenerator struct {
	responses []scriptedResponse
	next      int

	// Prompts records every prompt passed to Generate, in order.
	Prompts []string
}

type scriptedResponse struct {
	text string
	err  error
}

// NewMockGenerator creates an empty MockGenerator.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Respond queues a successful response.
func (m *MockGenerator) Respond(text string) *MockGenerator {
	m.responses = append(m.responses, scriptedResponse{text: text})
	return m
}

// Fail queues a failing call.
func (m *MockGenerator) Fail(err error) *MockGenerator {
	if err == nil {
		err = domain.ErrServiceUnavailable
	}
	m.responses = append(m.responses, scriptedResponse{err: err})
	return m
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)

	if m.next < len(m.responses) {
		r := m.responses[m.next]
		m.next++
		if r.err != nil {
			return "", r.err
		}
		return r.text, nil
	}

	lines := strings.Split(strings.TrimSpace(prompt), "\n")
	return lines[len(lines)-1], nil
}

func (m *MockGenerator) Model() string {
	return "mock-generator"
}

func (m *MockGenerator) Ping(ctx context.Context) error {
	return nil
}

func (m *MockGenerator) Close() error {
	return nil
}

// Calls returns the number of Generate calls made.
func (m *MockGenerator) Calls() int {
	return len(m.Prompts)
}
