package factory

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/eventledger/internal/dependencies/mocks"
	"github.com/mcoot/eventledger/internal/services/auth"
	"github.com/mcoot/eventledger/internal/services/ledger"
	"github.com/mcoot/eventledger/internal/services/notify"
	"github.com/mcoot/eventledger/internal/storage/memory"
	"github.com/mcoot/eventledger/internal/testutil"
)

// TestAdminUsername and TestAdminPassword are provisioned by NewTestApp
const (
	TestAdminUsername = "gom"
	TestAdminPassword = "test-password"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked
// dependencies and in-memory storage
func NewTestApp() *TestApp {
	return NewTestAppWithNotifier(nil)
}

// NewTestAppWithNotifier is NewTestApp with a custom confirmation sink
func NewTestAppWithNotifier(notifier notify.Notifier) *TestApp {
	logger := testutil.NopLogger()
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2025, 5, 1, 18, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	if notifier == nil {
		notifier = notify.NewLogNotifier(logger)
	}

	authCfg := auth.Config{SessionDuration: time.Hour, BcryptCost: bcrypt.MinCost}
	app := newWithDependencies(store, mockClock, mockRandom, notifier, authCfg, ledger.DefaultConfig(), logger)
	if err := app.AuthService.EnsureAdmin(context.Background(), TestAdminUsername, TestAdminPassword); err != nil {
		panic("provision test admin: " + err.Error())
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
