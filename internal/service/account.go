package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"ledger-api/internal/model"
	"ledger-api/internal/validation"
)

// AccountService is the account directory: signup and lookup by id.
type AccountService struct {
	accountStore AccountStore
	passwords    PasswordEncoder
	notifier     Notifier
	logger       *logrus.Logger

	// notifications tracks welcome emails still being sent.
	notifications sync.WaitGroup
}

func NewAccountService(
	accountStore AccountStore,
	passwords PasswordEncoder,
	notifier Notifier,
	logger *logrus.Logger,
) *AccountService {
	if passwords == nil {
		passwords = PlainPasswordEncoder{}
	}
	return &AccountService{
		accountStore: accountStore,
		passwords:    passwords,
		notifier:     notifier,
		logger:       logger,
	}
}

// Signup validates name, email format, email uniqueness, document and password,
// in that order, and stops at the first failing rule. Exactly one Save happens on success.
func (s *AccountService) Signup(ctx context.Context, input model.SignupInput) (*model.SignupOutput, error) {
	s.logger.WithField("email", input.Email).Info("Signup requested")

	if !validation.IsNameValid(input.Name) {
		return nil, s.reject(model.ErrInvalidName, input.Email)
	}
	if !validation.IsEmailValid(input.Email) {
		return nil, s.reject(model.ErrInvalidEmail, input.Email)
	}

	existing, err := s.accountStore.GetByEmail(ctx, input.Email)
	if err != nil {
		s.logger.WithError(err).Error("Failed to check email uniqueness")
		return nil, fmt.Errorf("check email uniqueness: %w", err)
	}
	if existing != nil {
		return nil, s.reject(model.ErrDuplicatedEmail, input.Email)
	}

	if !validation.IsDocumentValid(input.Document) {
		return nil, s.reject(model.ErrInvalidDocument, input.Email)
	}
	if !validation.IsValidPassword(input.Password) {
		return nil, s.reject(model.ErrInvalidPassword, input.Email)
	}

	password, err := s.passwords.Encode(input.Password)
	if err != nil {
		s.logger.WithError(err).Error("Failed to encode password")
		return nil, fmt.Errorf("encode password: %w", err)
	}

	account := &model.Account{
		AccountID: uuid.NewString(),
		Name:      input.Name,
		Email:     input.Email,
		Document:  input.Document,
		Password:  password,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.accountStore.Save(ctx, account); err != nil {
		if ruleErr, ok := model.AsRuleError(err); ok {
			// lost a race against a concurrent signup with the same email
			return nil, s.reject(ruleErr, input.Email)
		}
		s.logger.WithError(err).Error("Failed to save account")
		return nil, fmt.Errorf("save account: %w", err)
	}

	s.logger.WithField("account_id", account.AccountID).Info("Account signed up")
	s.notifyWelcome(account)

	return &model.SignupOutput{AccountID: account.AccountID}, nil
}

// GetAccountByID returns the account view; the password is never part of it.
func (s *AccountService) GetAccountByID(ctx context.Context, accountID string) (*model.AccountView, error) {
	if !validation.IsValidUUID(accountID) {
		s.logger.WithField("account_id", accountID).Warn(model.ErrInvalidAccountID.Message)
		return nil, model.ErrInvalidAccountID
	}
	accountID = validation.CanonicalID(accountID)

	account, err := s.accountStore.GetByID(ctx, accountID)
	if err != nil {
		s.logger.WithError(err).WithField("account_id", accountID).Error("Failed to load account")
		return nil, fmt.Errorf("get account: %w", err)
	}
	if account == nil {
		s.logger.WithField("account_id", accountID).Warn(model.ErrAccountNotFound.Message)
		return nil, model.ErrAccountNotFound
	}

	view := account.View()
	return &view, nil
}

func (s *AccountService) reject(rule *model.RuleError, email string) error {
	s.logger.WithFields(logrus.Fields{
		"email": email,
		"rule":  rule.Kind.String(),
	}).Warn(rule.Message)
	return rule
}

func (s *AccountService) notifyWelcome(account *model.Account) {
	if s.notifier == nil {
		return
	}
	email, name := account.Email, account.Name
	s.notifications.Add(1)
	go func() {
		defer s.notifications.Done()
		if err := s.notifier.SendWelcome(email, name); err != nil {
			s.logger.WithError(err).Warn("Failed to send welcome email")
		}
	}()
}

// WaitForNotifications blocks until every pending welcome email has been handed
// to the notifier, or ctx is done.
func (s *AccountService) WaitForNotifications(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.notifications.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.logger.Warn("Shutting down with welcome emails still pending")
		return ctx.Err()
	}
}
