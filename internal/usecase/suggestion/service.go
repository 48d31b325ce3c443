package suggestion

import "github.com/thoughtstream/auditweb/internal/domain/presentation"

// Service serves the static suggestion list.
type Service struct{}

// New creates a suggestion service.
func New() *Service {
	return &Service{}
}

// List returns a fresh suggestion list on every call.
func (s *Service) List() presentation.Suggestions {
	return presentation.Suggestions{Items: []string{"item1", "item2", "item3"}}
}
