package factory

import (
	"time"

	"github.com/mcoot/idlecoins/internal/config"
	"github.com/mcoot/idlecoins/internal/dependencies/mocks"
	"github.com/mcoot/idlecoins/internal/services/catalog"
	"github.com/mcoot/idlecoins/internal/storage/memory"
	"github.com/mcoot/idlecoins/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock   *mocks.MockClock
	MockRandom  *mocks.MockRandom
	MemoryStore *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Cadences are set far apart so tests drive them with Scheduler.Trigger.
func NewTestApp() *TestApp {
	settings := config.Config{
		Schedule: config.ScheduleConfig{
			Tick:        time.Hour,
			Persist:     time.Hour,
			Leaderboard: time.Hour,
			Cleanup:     time.Hour,
		},
	}.WithDefaults()

	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app, err := newWithDependencies(store, mockClock, mockRandom, catalog.Default(), settings, testutil.NopLogger())
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:         app,
		MockClock:   mockClock,
		MockRandom:  mockRandom,
		MemoryStore: store,
	}
}
