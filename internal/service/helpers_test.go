package service

import (
	"context"
	"io"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"ledger-api/internal/model"
	"ledger-api/internal/repository/memory"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// countingAccountStore records how many times Save was called.
type countingAccountStore struct {
	*memory.AccountStore
	mu    sync.Mutex
	saves int
}

func newCountingAccountStore() *countingAccountStore {
	return &countingAccountStore{AccountStore: memory.NewAccountStore()}
}

func (s *countingAccountStore) Save(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	s.saves++
	s.mu.Unlock()
	return s.AccountStore.Save(ctx, account)
}

func (s *countingAccountStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

type recordingNotifier struct {
	sent chan string
	err  error
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{sent: make(chan string, 8)}
}

func (n *recordingNotifier) SendWelcome(email, _ string) error {
	n.sent <- email
	return n.err
}

// failingAssetStore fails every call with err.
type failingAssetStore struct {
	err error
}

func (s failingAssetStore) Save(context.Context, *model.Position) error { return s.err }

func (s failingAssetStore) GetByID(context.Context, string, string) (*model.Position, error) {
	return nil, s.err
}

func (s failingAssetStore) GetByAccountID(context.Context, string) ([]model.Position, error) {
	return nil, s.err
}

func (s failingAssetStore) UpdateQuantity(context.Context, string, string, decimal.Decimal) error {
	return s.err
}

// racingAssetStore hides the first existing position from GetByID, as if another
// process inserted it between the read and the insert.
type racingAssetStore struct {
	*memory.AssetStore
	hidden bool
}

func (s *racingAssetStore) GetByID(ctx context.Context, accountID, assetID string) (*model.Position, error) {
	if !s.hidden {
		s.hidden = true
		return nil, nil
	}
	return s.AssetStore.GetByID(ctx, accountID, assetID)
}

type testEnv struct {
	accountStore *countingAccountStore
	assetStore   *memory.AssetStore
	orderStore   *memory.OrderStore
	notifier     *recordingNotifier
	accounts     *AccountService
	assets       *AssetService
	facade       *AccountAssetService
	orders       *OrderService
}

func newTestEnv() *testEnv {
	logger := newTestLogger()
	env := &testEnv{
		accountStore: newCountingAccountStore(),
		assetStore:   memory.NewAssetStore(),
		orderStore:   memory.NewOrderStore(),
		notifier:     newRecordingNotifier(),
	}
	env.accounts = NewAccountService(env.accountStore, PlainPasswordEncoder{}, env.notifier, logger)
	env.assets = NewAssetService(env.assetStore, AssetServiceOptions{}, logger)
	env.facade = NewAccountAssetService(env.accounts, env.assets, logger)
	env.orders = NewOrderService(env.accounts, env.orderStore, nil, nil, logger)
	return env
}

func validSignup() model.SignupInput {
	return model.SignupInput{
		Name:     "Gustavo B",
		Email:    "a@example.com",
		Document: "11144477735",
		Password: "Test1234",
	}
}

func qty(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}
