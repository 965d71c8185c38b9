package prompts

import (
	"bufio"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/mcoot/peoplebingo/internal/model"
)

// Defaults is the prompt grid every new session starts with
var Defaults = []string{
	"Has run a marathon", "Can name 3 AI models", "Speaks 3+ languages",
	"Has been skydiving", "Plays a musical instrument", "Has visited 10+ countries",
	"Can solve a Rubik's cube", "Has a pet", "Loves spicy food",
	"Morning person", "Has broken a bone", "Can cook 5+ dishes",
	model.FreeCellText, "Loves horror movies", "Has met a celebrity",
	"Night owl", "Can do a handstand", "Has lived abroad",
	"Knows how to code", "Loves karaoke", "Has run a business",
	"Vegetarian/Vegan", "Can name all continents", "Has a hidden talent",
	"Loves ice cream",
}

// Service holds the prompt list used for new sessions
type Service struct {
	mu      sync.RWMutex
	prompts []string
	source  string
}

// New creates a Service loaded with the default prompts
func New() *Service {
	return &Service{
		prompts: slices.Clone(Defaults),
		source:  "default",
	}
}

// LoadFromFile replaces the prompts with the non-blank lines of a file.
// The file holds either every cell, or every cell except the free cell.
func (s *Service) LoadFromFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if err := s.load(lines); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	s.mu.Lock()
	s.source = path
	s.mu.Unlock()
	return nil
}

// Load replaces the prompts directly
func (s *Service) Load(prompts []string) error {
	return s.load(prompts)
}

func (s *Service) load(prompts []string) error {
	switch len(prompts) {
	case model.CellCount:
		prompts = slices.Clone(prompts)
	case model.CellCount - 1:
		prompts = slices.Insert(slices.Clone(prompts), model.FreeCellIndex, model.FreeCellText)
	default:
		return fmt.Errorf("%w: got %d prompts, want %d or %d",
			model.ErrInvalidPrompts, len(prompts), model.CellCount-1, model.CellCount)
	}
	prompts[model.FreeCellIndex] = model.FreeCellText

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = prompts
	return nil
}

// Prompts returns a copy of the current prompt list
func (s *Service) Prompts() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.prompts)
}

// Source describes where the prompts came from
func (s *Service) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}
