package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/peoplebingo/internal/dependencies/mocks"
	"github.com/mcoot/peoplebingo/internal/dependencies/random"
	"github.com/mcoot/peoplebingo/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Session codes come from the real random source unless queued on MockRandom.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockRandom.Fallback = random.New()

	app := newWithDependencies(store, mockClock, mockRandom, slog.New(slog.NewJSONHandler(io.Discard, nil)))

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
