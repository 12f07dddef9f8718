package users

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/dmitrijs2005/workshopreg/internal/common"
	"github.com/dmitrijs2005/workshopreg/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreRepository keeps one document per user in a Firestore collection.
// Document ids are generated by Firestore. Firestore has no unique
// constraints, so email uniqueness relies on the caller serialising writes.
type FirestoreRepository struct {
	client *firestore.Client
	coll   *firestore.CollectionRef
}

func NewFirestoreRepository(client *firestore.Client, collection string) *FirestoreRepository {
	return &FirestoreRepository{client: client, coll: client.Collection(collection)}
}

func (r *FirestoreRepository) List(ctx context.Context) ([]*models.User, error) {
	return r.query(ctx, r.coll.Query)
}

func (r *FirestoreRepository) ListByAccepted(ctx context.Context, accepted bool) ([]*models.User, error) {
	return r.query(ctx, r.coll.Where("accepted", "==", accepted))
}

func (r *FirestoreRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	list, err := r.query(ctx, r.coll.Where("email", "==", email).Limit(1))
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, common.ErrorNotFound
	}
	return list[0], nil
}

func (r *FirestoreRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	if !validDocID(id) {
		return nil, common.ErrorNotFound
	}

	snap, err := r.coll.Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return snapshotToUser(snap)
}

func (r *FirestoreRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	stored := user.Clone()

	ref, _, err := r.coll.Add(ctx, stored)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	stored.ID = ref.ID

	return stored, nil
}

func (r *FirestoreRepository) UpdateAccepted(ctx context.Context, id string, accepted *bool) error {
	if !validDocID(id) {
		return common.ErrorNotFound
	}

	var value any
	if accepted != nil {
		value = *accepted
	}

	_, err := r.coll.Doc(id).Update(ctx, []firestore.Update{{Path: "accepted", Value: value}})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ResetAccepted merges accepted=null into every document, adding the field
// where older documents lack it.
func (r *FirestoreRepository) ResetAccepted(ctx context.Context) (int64, error) {
	refs, err := r.coll.DocumentRefs(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	if len(refs) == 0 {
		return 0, nil
	}

	bw := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, ref := range refs {
		job, err := bw.Set(ref, map[string]any{"accepted": nil}, firestore.MergeAll)
		if err != nil {
			bw.End()
			return 0, fmt.Errorf("db error: %w", err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return 0, fmt.Errorf("db error: %w", err)
		}
	}
	return int64(len(refs)), nil
}

func (r *FirestoreRepository) query(ctx context.Context, q firestore.Query) ([]*models.User, error) {
	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	out := make([]*models.User, 0, len(snaps))
	for _, snap := range snaps {
		u, err := snapshotToUser(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func snapshotToUser(snap *firestore.DocumentSnapshot) (*models.User, error) {
	u := &models.User{}
	if err := snap.DataTo(u); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", snap.Ref.ID, err)
	}
	u.ID = snap.Ref.ID
	return u, nil
}

// validDocID rejects ids that would address something other than a direct
// child of the collection.
func validDocID(id string) bool {
	return id != "" && !strings.Contains(id, "/")
}
