package repository

import (
	"context"

	"github.com/forgo/seedbed/internal/database"
	"github.com/forgo/seedbed/internal/model"
)

// UserTable is the SurrealDB table holding users
const UserTable = "user"

// UserRepository handles user data access
type UserRepository struct {
	coll *Collection
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.Database) *UserRepository {
	return &UserRepository{coll: NewCollection(db, UserTable)}
}

// FetchAll returns every user
func (r *UserRepository) FetchAll(ctx context.Context) ([]*model.User, error) {
	records, err := r.coll.Find(ctx, nil)
	if err != nil {
		return nil, err
	}
	users := make([]*model.User, 0, len(records))
	for _, rec := range records {
		user, err := model.UserFromRecord(rec)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// GetByID retrieves a user by ID. Returns nil, nil when absent.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	rec, err := r.coll.FindByID(ctx, id)
	if err != nil || rec == nil {
		return nil, err
	}
	return model.UserFromRecord(rec)
}

// Create validates and inserts a user, filling in its ID and timestamps
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if errs := user.Validate(); len(errs) > 0 {
		return model.NewValidationError(errs)
	}

	rec, err := r.coll.Create(ctx, user.Fields())
	if err != nil {
		return err
	}
	created, err := model.UserFromRecord(rec)
	if err != nil {
		return err
	}

	user.ID = created.ID
	user.CreatedOn = created.CreatedOn
	user.UpdatedOn = created.UpdatedOn
	return nil
}

// UpdateByID applies a partial update. Returns nil, nil when absent.
func (r *UserRepository) UpdateByID(ctx context.Context, id string, updates model.UserUpdate) (*model.User, error) {
	if errs := updates.Validate(); len(errs) > 0 {
		return nil, model.NewValidationError(errs)
	}

	rec, err := r.coll.UpdateByID(ctx, id, updates.Patch())
	if err != nil || rec == nil {
		return nil, err
	}
	return model.UserFromRecord(rec)
}

// DeleteByID deletes a user and returns it. Returns nil, nil when absent.
func (r *UserRepository) DeleteByID(ctx context.Context, id string) (*model.User, error) {
	rec, err := r.coll.DeleteByID(ctx, id)
	if err != nil || rec == nil {
		return nil, err
	}
	return model.UserFromRecord(rec)
}
