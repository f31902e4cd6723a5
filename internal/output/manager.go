package output

import (
	"errors"
	"fmt"
)

// Sink receives scan output: lifecycle Events and per-repository RepoRecords.
// Streaming sinks render on Write; aggregate sinks buffer until Close.
type Sink interface {
	Write(v any) error
	Close() error
}

// Manager fans scan output out to every registered sink. A failing sink never
// starves the others: each write and close reaches every sink, and the
// failures are joined into one error.
type Manager struct {
	sinks []Sink
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) AddSink(s Sink) error {
	if m == nil {
		return errors.New("output manager is nil")
	}
	if s == nil {
		return errors.New("sink must not be nil")
	}
	m.sinks = append(m.sinks, s)
	return nil
}

func (m *Manager) Write(v any) error {
	if m == nil {
		return errors.New("output manager is nil")
	}
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(v); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", s, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("write scan output: %w", errors.Join(errs...))
	}
	return nil
}

func (m *Manager) Close() error {
	if m == nil {
		return errors.New("output manager is nil")
	}
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", s, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close scan output: %w", errors.Join(errs...))
	}
	return nil
}
