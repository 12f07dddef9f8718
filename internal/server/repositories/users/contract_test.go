package users

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrijs2005/workshopreg/internal/common"
	"github.com/dmitrijs2005/workshopreg/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleUser(email string) *models.User {
	return &models.User{
		Username:   "Ada",
		Email:      email,
		Phone:      "+3712000000",
		Level:      "beginner",
		Club:       "robotics",
		Motivation: "I want to learn Go properly",
		HasLaptop:  true,
		CreatedAt:  "2025-03-01T10:00:00.000Z",
	}
}

// contractCaps lists the guarantees that differ between backends.
type contractCaps struct {
	// SequentialIDs: ids are "1", "2", ... in creation order.
	SequentialIDs bool
	// UniqueEmail: Create itself rejects a second record with the same email.
	UniqueEmail bool
}

var localCaps = contractCaps{SequentialIDs: true, UniqueEmail: true}

// runRepositoryContract exercises the behaviour every backend must share.
func runRepositoryContract(t *testing.T, caps contractCaps, newRepo func(t *testing.T) Repository) {
	ctx := context.Background()

	t.Run("empty repository", func(t *testing.T) {
		repo := newRepo(t)

		list, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)

		_, err = repo.FindByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, common.ErrorNotFound)

		n, err := repo.ResetAccepted(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("create assigns sequential ids", func(t *testing.T) {
		if !caps.SequentialIDs {
			t.Skip("backend generates its own ids")
		}
		repo := newRepo(t)

		a, err := repo.Create(ctx, sampleUser("a@example.com"))
		require.NoError(t, err)
		b, err := repo.Create(ctx, sampleUser("b@example.com"))
		require.NoError(t, err)

		assert.Equal(t, "1", a.ID)
		assert.Equal(t, "2", b.ID)
		assert.Nil(t, a.Accepted)
	})

	t.Run("create then list round-trips", func(t *testing.T) {
		repo := newRepo(t)

		in := sampleUser("round@example.com")
		created, err := repo.Create(ctx, in)
		require.NoError(t, err)

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, created, list[0])

		in.ID = created.ID
		assert.Equal(t, in, list[0])
	})

	t.Run("create assigns distinct ids", func(t *testing.T) {
		repo := newRepo(t)

		a, err := repo.Create(ctx, sampleUser("id1@example.com"))
		require.NoError(t, err)
		b, err := repo.Create(ctx, sampleUser("id2@example.com"))
		require.NoError(t, err)

		assert.NotEmpty(t, a.ID)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		if !caps.UniqueEmail {
			t.Skip("uniqueness is enforced by the caller")
		}
		repo := newRepo(t)

		_, err := repo.Create(ctx, sampleUser("dup@example.com"))
		require.NoError(t, err)
		_, err = repo.Create(ctx, sampleUser("dup@example.com"))
		assert.ErrorIs(t, err, common.ErrorAlreadyExists)

		list, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("find by id and email", func(t *testing.T) {
		repo := newRepo(t)

		created, err := repo.Create(ctx, sampleUser("find@example.com"))
		require.NoError(t, err)

		byID, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "find@example.com", byID.Email)

		byEmail, err := repo.FindByEmail(ctx, "find@example.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, byEmail.ID)

		_, err = repo.FindByID(ctx, "999")
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("update accepted touches only accepted", func(t *testing.T) {
		repo := newRepo(t)

		created, err := repo.Create(ctx, sampleUser("upd@example.com"))
		require.NoError(t, err)

		require.NoError(t, repo.UpdateAccepted(ctx, created.ID, models.BoolPtr(true)))

		got, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Accepted)
		assert.True(t, *got.Accepted)

		got.Accepted = nil
		assert.Equal(t, created, got)

		err = repo.UpdateAccepted(ctx, "404", models.BoolPtr(false))
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("list by accepted excludes undecided", func(t *testing.T) {
		repo := newRepo(t)

		yes, err := repo.Create(ctx, sampleUser("yes@example.com"))
		require.NoError(t, err)
		no, err := repo.Create(ctx, sampleUser("no@example.com"))
		require.NoError(t, err)
		_, err = repo.Create(ctx, sampleUser("maybe@example.com"))
		require.NoError(t, err)

		require.NoError(t, repo.UpdateAccepted(ctx, yes.ID, models.BoolPtr(true)))
		require.NoError(t, repo.UpdateAccepted(ctx, no.ID, models.BoolPtr(false)))

		accepted, err := repo.ListByAccepted(ctx, true)
		require.NoError(t, err)
		require.Len(t, accepted, 1)
		assert.Equal(t, "yes@example.com", accepted[0].Email)

		rejected, err := repo.ListByAccepted(ctx, false)
		require.NoError(t, err)
		require.Len(t, rejected, 1)
		assert.Equal(t, "no@example.com", rejected[0].Email)
	})

	t.Run("reset clears every decision", func(t *testing.T) {
		repo := newRepo(t)

		a, err := repo.Create(ctx, sampleUser("r1@example.com"))
		require.NoError(t, err)
		b, err := repo.Create(ctx, sampleUser("r2@example.com"))
		require.NoError(t, err)
		require.NoError(t, repo.UpdateAccepted(ctx, a.ID, models.BoolPtr(true)))
		require.NoError(t, repo.UpdateAccepted(ctx, b.ID, models.BoolPtr(false)))

		n, err := repo.ResetAccepted(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		list, err := repo.List(ctx)
		require.NoError(t, err)
		for _, u := range list {
			assert.Nil(t, u.Accepted, u.Email)
			assert.Equal(t, "Ada", u.Username)
		}
	})

	t.Run("returned records are copies", func(t *testing.T) {
		repo := newRepo(t)

		created, err := repo.Create(ctx, sampleUser("copy@example.com"))
		require.NoError(t, err)
		created.Email = "mutated@example.com"

		_, err = repo.FindByEmail(ctx, "copy@example.com")
		assert.NoError(t, err)
	})

	t.Run("concurrent creates keep ids and emails unique", func(t *testing.T) {
		if !caps.UniqueEmail {
			t.Skip("uniqueness is enforced by the caller")
		}
		repo := newRepo(t)

		const workers = 16
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Create(ctx, sampleUser("same@example.com"))
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		var ok, dup int
		for err := range errs {
			switch {
			case err == nil:
				ok++
			case errors.Is(err, common.ErrorAlreadyExists):
				dup++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, ok)
		assert.Equal(t, workers-1, dup)
	})
}
