package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/dyike/DepotGo/internal/api"
	"github.com/dyike/DepotGo/internal/storage"
	"github.com/dyike/DepotGo/internal/view"
)

// SignupForm is what the user typed into the signup form.
type SignupForm struct {
	Username        string
	Password        string
	PasswordConfirm string
}

// SignupSubmitter creates accounts and alerts the outcome.
type SignupSubmitter struct {
	creator AccountCreator
	display view.Display
	logger  *zap.Logger
	journal storage.Journal
}

func NewSignupSubmitter(creator AccountCreator, display view.Display, logger *zap.Logger, journal storage.Journal) *SignupSubmitter {
	return &SignupSubmitter{
		creator: creator,
		display: display,
		logger:  orNop(logger),
		journal: orDiscard(journal),
	}
}

// Submit validates the passwords locally, then posts the account. Every
// outcome ends in exactly one alert.
func (s *SignupSubmitter) Submit(ctx context.Context, form SignupForm) error {
	if form.Password != form.PasswordConfirm {
		s.display.Alert(view.PasswordMismatch())
		s.record(form.Username, storage.OutcomeRejected, "passwords do not match")
		return api.Precondition("create account", "passwords do not match")
	}

	_, err := s.creator.CreateAccount(ctx, api.SignupRequest{
		Username: form.Username,
		Password: form.Password,
	})
	if err != nil {
		s.logger.Error("Error creating user", zap.String("username", form.Username), zap.Error(err))
		s.display.Alert(view.SignupFailure(api.BodyOf(err)))
		s.record(form.Username, storage.OutcomeFailed, err.Error())
		return err
	}

	s.display.Alert(view.SignupSuccess())
	s.record(form.Username, storage.OutcomeOK, "")
	return nil
}

func (s *SignupSubmitter) record(username, outcome, detail string) {
	s.journal.Record(storage.Interaction{
		Kind:    storage.KindSignup,
		Subject: username,
		Outcome: outcome,
		Detail:  detail,
	})
}
