// Package session owns the editing lifecycle of a single contract draft:
// one session, one draft, one snapshot. All mutations are synchronous state
// transitions; async work (load, save) reports back through succeeded/failed
// events carrying the identity of the request they answer, so a superseded
// load or save is ignored instead of clobbering newer state. The session
// never panics on misuse: an event that is invalid in the current state is a
// no-op returning false.
package session

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/oakhaven/contracts/internal/model"
	"github.com/oakhaven/contracts/internal/patch"
	"github.com/oakhaven/contracts/internal/validate"
)

type State string

const (
	StateLoading State = "LOADING"
	StateIdle    State = "IDLE"
	StateEditing State = "EDITING"
	StateSaving  State = "SAVING"
	StateErrored State = "ERRORED"
)

// Fetcher loads a persisted contract; nil result with nil error means the
// contract does not exist.
type Fetcher interface {
	Get(ctx context.Context, id string) (*model.Contract, error)
}

// Backend runs the two-phase validate/commit exchange for a draft payload.
type Backend interface {
	Save(ctx context.Context, payload *model.Contract) (*model.Contract, error)
}

// FieldErrors is implemented by backend errors that carry path-keyed
// validation messages.
type FieldErrors interface {
	FieldErrors() map[string]string
}

type Session struct {
	state     State
	draft     *model.ContractDraft
	snapshot  *model.ContractDraft
	validator *validate.Validator
	mode      validate.Mode

	dirty     bool
	touched   map[string]struct{}
	validity  map[validate.Section]bool
	errors    map[string]string
	lastError string

	// identity of the in-flight load; completions for any other id are
	// discarded.
	loadTarget string

	log zerolog.Logger
}

func New(loc validate.LocationContext, log zerolog.Logger) *Session {
	return &Session{
		state:     StateLoading,
		validator: validate.New(loc),
		mode:      validate.ModeDraft,
		touched:   map[string]struct{}{},
		validity:  map[validate.Section]bool{},
		errors:    map[string]string{},
		log:       log,
	}
}

func (s *Session) State() State                            { return s.state }
func (s *Session) Draft() *model.ContractDraft             { return s.draft }
func (s *Session) Dirty() bool                             { return s.dirty }
func (s *Session) LastError() string                       { return s.lastError }
func (s *Session) Errors() map[string]string               { return s.errors }
func (s *Session) Validity() map[validate.Section]bool     { return s.validity }
func (s *Session) Mode() validate.Mode                     { return s.mode }

// SetMode selects the strictness the session validates against, typically
// ModeCommit once the user heads for execution.
func (s *Session) SetMode(mode validate.Mode) {
	s.mode = mode
}

func (s *Session) Touched(path string) bool {
	_, ok := s.touched[path]
	return ok
}

// BeginLoad records the identity of an outgoing fetch. Allowed from any
// state: a reload simply supersedes whatever was in flight.
func (s *Session) BeginLoad(contractID string) {
	s.loadTarget = contractID
	s.state = StateLoading
}

// LoadSucceeded seeds the draft and snapshot from a fetched document. The
// completion is ignored when the session has since been pointed at a
// different contract.
func (s *Session) LoadSucceeded(contractID string, doc *model.Contract) bool {
	if contractID != s.loadTarget || doc == nil {
		s.log.Debug().Str("contract_id", contractID).Msg("ignoring superseded load result")
		return false
	}
	s.seed(model.DraftFromContract(doc))
	return true
}

// LoadFailed moves the session to the error state; the draft is unusable
// until a reload. Mismatched completions are ignored.
func (s *Session) LoadFailed(contractID, message string) bool {
	if contractID != s.loadTarget {
		return false
	}
	s.state = StateErrored
	s.lastError = message
	s.draft = nil
	s.snapshot = nil
	return true
}

// CreateNew seeds an empty draft for a brand-new contract.
func (s *Session) CreateNew(locationID string) {
	s.loadTarget = ""
	s.seed(model.NewDraft(locationID))
}

// Load drives a fetch through the collaborator and feeds the result back in
// as events.
func (s *Session) Load(ctx context.Context, fetcher Fetcher, contractID string) bool {
	s.BeginLoad(contractID)
	doc, err := fetcher.Get(ctx, contractID)
	if err != nil {
		return s.LoadFailed(contractID, err.Error())
	}
	if doc == nil {
		return s.LoadFailed(contractID, "contract not found")
	}
	return s.LoadSucceeded(contractID, doc)
}

// FieldPatch applies one field edit. Previously touched paths trigger an
// incremental re-validation of the owning section plus the whole-document
// review check.
func (s *Session) FieldPatch(path string, value any) bool {
	if s.state != StateIdle && s.state != StateEditing {
		return false
	}
	if !s.draft.Editable() {
		return false
	}
	next, ok := patch.Apply(s.draft, path, value)
	if !ok {
		return false
	}
	s.draft = next
	if _, touched := s.touched[path]; touched {
		s.revalidate(validate.SectionForPath(path))
	}
	s.dirty = !model.EqualIgnoringUpdatedAt(s.draft, s.snapshot)
	s.state = StateEditing
	return true
}

// Mutate runs a sub-entity handler operation against the live draft and
// folds the result into the session (dirty recompute, state transition).
func (s *Session) Mutate(op func(d *model.ContractDraft) bool) bool {
	if s.state != StateIdle && s.state != StateEditing {
		return false
	}
	if !op(s.draft) {
		return false
	}
	s.dirty = !model.EqualIgnoringUpdatedAt(s.draft, s.snapshot)
	s.state = StateEditing
	return true
}

// Touch marks a path as interacted with. Idempotent.
func (s *Session) Touch(path string) bool {
	if !s.ready() {
		return false
	}
	s.touched[path] = struct{}{}
	return true
}

// ValidateSection re-runs one section and merges its errors by path prefix.
func (s *Session) ValidateSection(section validate.Section) validate.Result {
	if !s.ready() {
		return validate.Result{Valid: false, Errors: map[string]string{"": "no draft loaded"}}
	}
	return s.revalidate(section)
}

// ValidateAll runs every section plus review, and marks each failing path
// as touched so the UI surfaces all commit-blocking issues at once.
func (s *Session) ValidateAll() validate.Summary {
	if !s.ready() {
		return validate.Summary{}
	}
	summary := s.validator.All(s.draft, s.mode)
	s.validity = summary.Validity
	s.errors = map[string]string{}
	for path, msg := range summary.ErrorsByPath {
		s.errors[path] = msg
		s.touched[path] = struct{}{}
	}
	return summary
}

// SaveRequest validates the whole draft, moves to Saving, and hands back
// the serialized payload for the save protocol.
func (s *Session) SaveRequest() (*model.Contract, bool) {
	if !s.ready() {
		return nil, false
	}
	s.ValidateAll()
	s.state = StateSaving
	return s.draft.PersistedShape(), true
}

// SaveSucceeded re-seeds the session from the authoritative document the
// backend returned.
func (s *Session) SaveSucceeded(doc *model.Contract) bool {
	if s.state != StateSaving || doc == nil {
		return false
	}
	s.seed(model.DraftFromContract(doc))
	return true
}

// SaveFailed records the failure and keeps the draft so the user loses
// nothing and can retry.
func (s *Session) SaveFailed(message string) bool {
	if s.state != StateSaving {
		return false
	}
	s.state = StateErrored
	s.lastError = message
	return true
}

// Save drives the two-phase exchange through the backend collaborator.
// Path-keyed validation errors from the backend land in the session error
// map; any other failure becomes the session's last error.
func (s *Session) Save(ctx context.Context, backend Backend) bool {
	payload, ok := s.SaveRequest()
	if !ok {
		return false
	}
	doc, err := backend.Save(ctx, payload)
	if err != nil {
		var fe FieldErrors
		if errors.As(err, &fe) {
			for path, msg := range fe.FieldErrors() {
				s.errors[path] = msg
				s.touched[path] = struct{}{}
			}
		}
		s.SaveFailed(err.Error())
		return false
	}
	return s.SaveSucceeded(doc)
}

// Reset discards in-progress edits, rebuilding the draft from the snapshot
// taken at the last load or successful save.
func (s *Session) Reset() bool {
	if s.snapshot == nil {
		return false
	}
	s.seed(s.snapshot.Clone())
	return true
}

func (s *Session) seed(draft *model.ContractDraft) {
	s.draft = draft
	s.snapshot = draft.Clone()
	s.dirty = false
	s.touched = map[string]struct{}{}
	s.validity = map[validate.Section]bool{}
	s.errors = map[string]string{}
	s.lastError = ""
	s.state = StateIdle
}

// ready reports whether the session holds a draft and is not mid-load. The
// error state after a failed save still counts: the draft is preserved
// there for retry.
func (s *Session) ready() bool {
	if s.draft == nil {
		return false
	}
	switch s.state {
	case StateIdle, StateEditing, StateErrored:
		return true
	default:
		return false
	}
}

func (s *Session) revalidate(section validate.Section) validate.Result {
	res := s.validator.Section(s.draft, section, s.mode)
	validate.ClearSection(s.errors, section)
	for path, msg := range res.Errors {
		s.errors[path] = msg
	}
	s.validity[section] = res.Valid

	if section != validate.SectionReview {
		review := s.validator.Section(s.draft, validate.SectionReview, s.mode)
		s.validity[validate.SectionReview] = review.Valid
		for path, msg := range review.Errors {
			s.errors[path] = msg
		}
	}
	return res
}
