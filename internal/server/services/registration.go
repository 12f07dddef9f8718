package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/workshopreg/internal/common"
	"github.com/dmitrijs2005/workshopreg/internal/logging"
	"github.com/dmitrijs2005/workshopreg/internal/server/models"
	"github.com/dmitrijs2005/workshopreg/internal/server/repositories/users"
	"github.com/go-playground/validator/v10"
)

// RegistrationRequest is the registration payload. Field order is the order
// in which rules are checked; the first failure is reported.
type RegistrationRequest struct {
	Username   string `json:"username" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required,min=5"`
	Level      string `json:"level" validate:"required"`
	Club       string `json:"club" validate:"required"`
	Motivation string `json:"motivation" validate:"required,min=10"`
	HasLaptop  *bool  `json:"hasLaptop" validate:"required"`

	// Accepted may be sent but is ignored: new registrations are undecided.
	Accepted *bool `json:"accepted"`

	// deferred holds the earliest type mismatch or unknown key seen while
	// decoding. Register reports it unless a rule fails on an earlier field.
	deferred *fieldError
}

func (r *RegistrationRequest) trim() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Level = strings.TrimSpace(r.Level)
	r.Club = strings.TrimSpace(r.Club)
	r.Motivation = strings.TrimSpace(r.Motivation)
}

type fieldError struct {
	index int
	err   *common.ValidationError
}

type payloadField struct {
	name  string
	index int
	typ   reflect.Type
}

// payloadFields lists RegistrationRequest's JSON keys in declaration order.
var payloadFields, payloadIndex = describePayload()

func describePayload() ([]payloadField, map[string]payloadField) {
	t := reflect.TypeOf(RegistrationRequest{})
	var list []payloadField
	byName := map[string]payloadField{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if !f.IsExported() || name == "" || name == "-" {
			continue
		}
		pf := payloadField{name: name, index: i, typ: f.Type}
		list = append(list, pf)
		byName[name] = pf
	}
	return list, byName
}

// DecodeRegistration reads a JSON registration payload. A body that is not
// exactly one JSON object fails here; wrong value types and unknown keys are
// kept on the request and reported by Register in field order.
func DecodeRegistration(body io.Reader) (*RegistrationRequest, error) {
	dec := json.NewDecoder(body)

	var raw map[string]json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &common.ValidationError{Message: "request body must be a JSON object"}
		}
		return nil, &common.ValidationError{Message: "invalid JSON: " + err.Error()}
	}
	if raw == nil {
		return nil, &common.ValidationError{Message: "request body must be a JSON object"}
	}
	if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		return nil, &common.ValidationError{Message: "invalid JSON: unexpected data after the object"}
	}

	req := &RegistrationRequest{}
	v := reflect.ValueOf(req).Elem()

	for _, pf := range payloadFields {
		value, ok := raw[pf.name]
		if !ok {
			continue
		}
		target := reflect.New(pf.typ)
		if err := json.Unmarshal(value, target.Interface()); err != nil {
			req.hold(pf.index, pf.name, fmt.Sprintf("%q must be a %s", pf.name, jsonKind(pf.typ)))
			continue
		}
		v.Field(pf.index).Set(target.Elem())
	}

	unknown := make([]string, 0)
	for key := range raw {
		if _, ok := payloadIndex[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		req.hold(v.NumField(), unknown[0], fmt.Sprintf("%q is not allowed", unknown[0]))
	}

	return req, nil
}

func (r *RegistrationRequest) hold(index int, field, message string) {
	if r.deferred != nil && r.deferred.index <= index {
		return
	}
	r.deferred = &fieldError{index: index, err: &common.ValidationError{Field: field, Message: message}}
}

func jsonKind(t reflect.Type) string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.String:
		return "string"
	default:
		return t.Kind().String()
	}
}

// RegistrationService validates payloads and creates participant records.
type RegistrationService struct {
	repo     users.Repository
	logger   logging.Logger
	validate *validator.Validate
	now      func() time.Time

	// mu serialises the email check and the insert with other writers.
	mu *sync.Mutex
}

// NewRegistrationService builds the service. writes is shared with every
// other service that modifies participant records; nil allocates a private one.
func NewRegistrationService(repo users.Repository, writes *sync.Mutex, logger logging.Logger) *RegistrationService {
	if writes == nil {
		writes = &sync.Mutex{}
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})

	return &RegistrationService{
		repo:     repo,
		logger:   logger.With("module", "registration"),
		validate: v,
		now:      time.Now,
		mu:       writes,
	}
}

// Register validates req, rejects a known email and stores a new undecided
// record stamped with the current time.
func (s *RegistrationService) Register(ctx context.Context, req *RegistrationRequest) (*models.User, error) {
	req.trim()

	if err := s.check(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.repo.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return nil, &common.DuplicateEmailError{Email: req.Email}
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("%w: email lookup: %w", common.ErrorInternal, err)
	}

	user := &models.User{
		Username:   req.Username,
		Email:      req.Email,
		Phone:      req.Phone,
		Level:      req.Level,
		Club:       req.Club,
		Motivation: req.Motivation,
		HasLaptop:  *req.HasLaptop,
		Accepted:   nil,
		CreatedAt:  s.now().UTC().Format(models.CreatedAtLayout),
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, &common.DuplicateEmailError{Email: req.Email}
		}
		return nil, fmt.Errorf("%w: error creating user: %w", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "Registered", "id", created.ID, "email", created.Email)
	return created, nil
}

// check returns the failure on the earliest field, whether it is a rule
// violation or a decode problem held on the request.
func (s *RegistrationService) check(req *RegistrationRequest) error {
	var ruleErr *fieldError
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return &common.ValidationError{Message: err.Error()}
		}
		fe := verrs[0]
		index := len(payloadFields)
		if f, ok := reflect.TypeOf(*req).FieldByName(fe.StructField()); ok {
			index = f.Index[0]
		}
		ruleErr = &fieldError{index: index, err: &common.ValidationError{Field: fe.Field(), Message: ruleMessage(fe)}}
	}

	switch {
	case req.deferred != nil && (ruleErr == nil || req.deferred.index <= ruleErr.index):
		return req.deferred.err
	case ruleErr != nil:
		return ruleErr.err
	default:
		return nil
	}
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", fe.Field())
	case "email":
		return fmt.Sprintf("%q must be a valid email", fe.Field())
	case "min":
		return fmt.Sprintf("%q length must be at least %s characters long", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%q failed on the %q rule", fe.Field(), fe.Tag())
	}
}
