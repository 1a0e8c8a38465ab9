// Package form implements the comment form: field validation and the
// Unsubmitted/Submitted state machine around a Submitter.
package form

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Input is what the reader types. ID is the hidden parent post id.
type Input struct {
	ID      string `json:"_id"`
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Comment string `json:"comment" validate:"required"`
}

// FromRequest reads an urlencoded form post.
func FromRequest(r *http.Request) Input {
	return Input{
		ID:      r.PostFormValue("_id"),
		Name:    strings.TrimSpace(r.PostFormValue("name")),
		Email:   strings.TrimSpace(r.PostFormValue("email")),
		Comment: strings.TrimSpace(r.PostFormValue("comment")),
	}
}

// Errors maps a field's json name to its message.
type Errors map[string]string

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, msg := range e {
		msgs = append(msgs, msg)
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}

// Validate returns nil or the Errors for every empty required field.
func (in Input) Validate() Errors {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Errors{"": err.Error()}
	}
	out := make(Errors, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[strings.ToLower(fe.Field())] = "The " + fe.Field() + " Field is required"
	}
	return out
}

// State of a Session.
type State int

const (
	Unsubmitted State = iota
	Submitted
)

func (s State) String() string {
	if s == Submitted {
		return "submitted"
	}
	return "unsubmitted"
}

// Submitter delivers a valid Input.
type Submitter interface {
	Submit(ctx context.Context, in Input) error
}

// Session is one reader's pass through the form.
type Session struct {
	State  State
	Input  Input
	Errors Errors

	submitter Submitter
	logger    *slog.Logger
}

func NewSession(submitter Submitter, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{submitter: submitter, logger: logger}
}

// Submit validates in and, only when every field is present, hands it to the
// submitter. The session moves to Submitted on success; on failure it stays
// Unsubmitted and the error is returned. Submitted is terminal.
func (s *Session) Submit(ctx context.Context, in Input) error {
	if s.State == Submitted {
		return nil
	}
	s.Input = in
	if errs := in.Validate(); errs != nil {
		s.Errors = errs
		return errs
	}
	s.Errors = nil

	if err := s.submitter.Submit(ctx, in); err != nil {
		s.logger.Error("comment submission failed", "post", in.ID, "error", err)
		return err
	}
	s.State = Submitted
	return nil
}
