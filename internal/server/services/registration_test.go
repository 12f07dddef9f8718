package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/workshopreg/internal/common"
	"github.com/dmitrijs2005/workshopreg/internal/server/models"
	"github.com/dmitrijs2005/workshopreg/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 589_000_000, time.UTC)

func validRequest() *RegistrationRequest {
	return &RegistrationRequest{
		Username:   "ana",
		Email:      "ana@example.com",
		Phone:      "0601234567",
		Level:      "beginner",
		Club:       "robotics",
		Motivation: "I want to learn embedded systems",
		HasLaptop:  models.BoolPtr(true),
	}
}

func newRegistration(repo users.Repository) *RegistrationService {
	s := NewRegistrationService(repo, nil, discardLogger())
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestRegister_StoresUndecidedRecord(t *testing.T) {
	repo := users.NewMemoryRepository()
	s := newRegistration(repo)

	req := validRequest()
	req.Accepted = models.BoolPtr(true)
	req.Username = "  ana  "

	got, err := s.Register(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "1", got.ID)
	assert.Equal(t, "ana", got.Username)
	assert.Nil(t, got.Accepted)
	assert.True(t, got.HasLaptop)
	assert.Equal(t, "2025-03-14T09:26:53.589Z", got.CreatedAt)

	stored, err := repo.FindByID(context.Background(), got.ID)
	require.NoError(t, err)
	assert.Equal(t, got, stored)
}

func TestRegister_ValidationFirstFailure(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *RegistrationRequest)
		field  string
		msg    string
	}{
		{name: "missing username", mutate: func(r *RegistrationRequest) { r.Username = "" }, field: "username", msg: `"username" is required`},
		{name: "blank username", mutate: func(r *RegistrationRequest) { r.Username = "   " }, field: "username", msg: `"username" is required`},
		{name: "bad email", mutate: func(r *RegistrationRequest) { r.Email = "not-an-email" }, field: "email", msg: `"email" must be a valid email`},
		{name: "short phone", mutate: func(r *RegistrationRequest) { r.Phone = "123" }, field: "phone", msg: `"phone" length must be at least 5 characters long`},
		{name: "missing level", mutate: func(r *RegistrationRequest) { r.Level = "" }, field: "level", msg: `"level" is required`},
		{name: "missing club", mutate: func(r *RegistrationRequest) { r.Club = "" }, field: "club", msg: `"club" is required`},
		{name: "short motivation", mutate: func(r *RegistrationRequest) { r.Motivation = "  because  " }, field: "motivation", msg: `"motivation" length must be at least 10 characters long`},
		{name: "missing laptop", mutate: func(r *RegistrationRequest) { r.HasLaptop = nil }, field: "hasLaptop", msg: `"hasLaptop" is required`},
		{name: "first field wins", mutate: func(r *RegistrationRequest) { r.Email = "x"; r.Phone = "1" }, field: "email", msg: `"email" must be a valid email`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := users.NewMemoryRepository()
			s := newRegistration(repo)

			req := validRequest()
			tt.mutate(req)

			_, err := s.Register(context.Background(), req)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrorValidation)

			var verr *common.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.msg, verr.Message)

			list, _ := repo.List(context.Background())
			assert.Empty(t, list)
		})
	}
}

func TestRegister_HasLaptopFalseIsValid(t *testing.T) {
	s := newRegistration(users.NewMemoryRepository())
	req := validRequest()
	req.HasLaptop = models.BoolPtr(false)

	got, err := s.Register(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, got.HasLaptop)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := users.NewMemoryRepository()
	s := newRegistration(repo)

	_, err := s.Register(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = s.Register(context.Background(), validRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrorDuplicateEmail)
	assert.Equal(t, "Email 'ana@example.com' already exists.", err.Error())

	list, _ := repo.List(context.Background())
	assert.Len(t, list, 1)
}

func TestRegister_BackendDuplicateMapped(t *testing.T) {
	repo := &brokenRepo{Repository: users.NewMemoryRepository(), createErr: common.ErrorAlreadyExists}
	s := newRegistration(repo)

	_, err := s.Register(context.Background(), validRequest())
	assert.ErrorIs(t, err, common.ErrorDuplicateEmail)
}

func TestRegister_BackendFailure(t *testing.T) {
	t.Run("lookup", func(t *testing.T) {
		repo := &brokenRepo{Repository: users.NewMemoryRepository(), findErr: errBackend}
		_, err := newRegistration(repo).Register(context.Background(), validRequest())
		assert.ErrorIs(t, err, common.ErrorInternal)
		assert.ErrorIs(t, err, errBackend)
	})

	t.Run("create", func(t *testing.T) {
		repo := &brokenRepo{Repository: users.NewMemoryRepository(), createErr: errBackend}
		_, err := newRegistration(repo).Register(context.Background(), validRequest())
		assert.ErrorIs(t, err, common.ErrorInternal)
		assert.ErrorIs(t, err, errBackend)
	})
}

func TestRegister_ConcurrentSameEmail(t *testing.T) {
	repo := users.NewMemoryRepository()
	s := newRegistration(repo)

	const n = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, dups int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Register(context.Background(), validRequest())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, common.ErrorDuplicateEmail):
				dups++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dups)
}

func payload(t *testing.T, mutate func(m map[string]any)) string {
	t.Helper()
	m := map[string]any{
		"username":   "ana",
		"email":      "ana@example.com",
		"phone":      "0601234567",
		"level":      "beginner",
		"club":       "robotics",
		"motivation": "I want to learn embedded systems",
		"hasLaptop":  true,
	}
	if mutate != nil {
		mutate(m)
	}
	b, err := json.Marshal(m)
	require.NoError(t, err)
	return string(b)
}

func TestDecodeRegistration(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req, err := DecodeRegistration(strings.NewReader(payload(t, func(m map[string]any) {
			m["hasLaptop"] = false
			m["accepted"] = nil
		})))
		require.NoError(t, err)
		assert.Equal(t, "ana", req.Username)
		require.NotNil(t, req.HasLaptop)
		assert.False(t, *req.HasLaptop)
		assert.Nil(t, req.Accepted)
		assert.Nil(t, req.deferred)
	})

	tests := []struct {
		name string
		body string
		msg  string
	}{
		{name: "empty body", body: ``, msg: "request body must be a JSON object"},
		{name: "null body", body: `null`, msg: "request body must be a JSON object"},
		{name: "trailing text", body: payload(t, nil) + ` trailing`, msg: "invalid JSON: unexpected data after the object"},
		{name: "second object", body: payload(t, nil) + `{}`, msg: "invalid JSON: unexpected data after the object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRegistration(strings.NewReader(tt.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrorValidation)
			assert.Equal(t, tt.msg, err.Error())
		})
	}

	t.Run("malformed", func(t *testing.T) {
		_, err := DecodeRegistration(strings.NewReader(`{"username":`))
		assert.ErrorIs(t, err, common.ErrorValidation)
	})

	t.Run("array", func(t *testing.T) {
		_, err := DecodeRegistration(strings.NewReader(`[]`))
		assert.ErrorIs(t, err, common.ErrorValidation)
	})

	t.Run("trailing whitespace is fine", func(t *testing.T) {
		_, err := DecodeRegistration(strings.NewReader(payload(t, nil) + "\n  "))
		assert.NoError(t, err)
	})
}

func TestRegister_DecodedPayloadFirstFailure(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m map[string]any)
		msg    string
	}{
		{name: "string laptop", mutate: func(m map[string]any) { m["hasLaptop"] = "yes" }, msg: `"hasLaptop" must be a boolean`},
		{name: "numeric username", mutate: func(m map[string]any) { m["username"] = 42 }, msg: `"username" must be a string`},
		{name: "string accepted", mutate: func(m map[string]any) { m["accepted"] = "no" }, msg: `"accepted" must be a boolean`},
		{name: "unknown key", mutate: func(m map[string]any) { m["nickname"] = "a" }, msg: `"nickname" is not allowed`},
		{name: "unknown keys sorted", mutate: func(m map[string]any) { m["zeta"] = 1; m["alpha"] = 1 }, msg: `"alpha" is not allowed`},
		{
			name:   "rule on earlier field beats type error",
			mutate: func(m map[string]any) { m["username"] = ""; m["hasLaptop"] = "yes" },
			msg:    `"username" is required`,
		},
		{
			name:   "type error on earlier field beats rule",
			mutate: func(m map[string]any) { m["email"] = true; m["motivation"] = "short" },
			msg:    `"email" must be a string`,
		},
		{
			name:   "rule beats unknown key",
			mutate: func(m map[string]any) { m["nickname"] = "a"; m["phone"] = "1" },
			msg:    `"phone" length must be at least 5 characters long`,
		},
		{name: "null laptop", mutate: func(m map[string]any) { m["hasLaptop"] = nil }, msg: `"hasLaptop" is required`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := users.NewMemoryRepository()
			s := newRegistration(repo)

			req, err := DecodeRegistration(strings.NewReader(payload(t, tt.mutate)))
			require.NoError(t, err)

			_, err = s.Register(context.Background(), req)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrorValidation)
			assert.Equal(t, tt.msg, err.Error())

			list, _ := repo.List(context.Background())
			assert.Empty(t, list)
		})
	}
}
