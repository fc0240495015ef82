package mocks

import (
	"context"

	"github.com/bruadam/hvx-engine/internal/domain"
	"github.com/bruadam/hvx-engine/internal/ports"
)

// MockLoader is a mock implementation of the Loader interface
type MockLoader struct {
	Input    *ports.AnalysisInput
	LoadFunc func(ctx context.Context) (*ports.AnalysisInput, error)
}

func (m *MockLoader) Load(ctx context.Context) (*ports.AnalysisInput, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	return m.Input, nil
}

// MockSink is a mock implementation of the ResultSink interface
type MockSink struct {
	Published   []*domain.RunResult
	PublishFunc func(ctx context.Context, result *domain.RunResult) error
}

func (m *MockSink) Publish(ctx context.Context, result *domain.RunResult) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, result)
	}
	m.Published = append(m.Published, result)
	return nil
}
