package repository

import (
	"context"

	"github.com/forgo/seedbed/internal/database"
	"github.com/forgo/seedbed/internal/model"
)

// OrganizationTable is the SurrealDB table holding organizations
const OrganizationTable = "organization"

// OrganizationRepository handles organization data access
type OrganizationRepository struct {
	coll *Collection
}

// NewOrganizationRepository creates a new organization repository
func NewOrganizationRepository(db database.Database) *OrganizationRepository {
	return &OrganizationRepository{coll: NewCollection(db, OrganizationTable)}
}

// FetchAll returns every organization
func (r *OrganizationRepository) FetchAll(ctx context.Context) ([]*model.Organization, error) {
	records, err := r.coll.Find(ctx, nil)
	if err != nil {
		return nil, err
	}
	orgs := make([]*model.Organization, 0, len(records))
	for _, rec := range records {
		org, err := model.OrganizationFromRecord(rec)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, nil
}

// GetByID retrieves an organization by ID. Returns nil, nil when absent.
func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*model.Organization, error) {
	rec, err := r.coll.FindByID(ctx, id)
	if err != nil || rec == nil {
		return nil, err
	}
	return model.OrganizationFromRecord(rec)
}

// Create validates and inserts an organization, filling in its ID and timestamps
func (r *OrganizationRepository) Create(ctx context.Context, org *model.Organization) error {
	if errs := org.Validate(); len(errs) > 0 {
		return model.NewValidationError(errs)
	}

	rec, err := r.coll.Create(ctx, org.Fields())
	if err != nil {
		return err
	}
	created, err := model.OrganizationFromRecord(rec)
	if err != nil {
		return err
	}

	org.ID = created.ID
	org.CreatedOn = created.CreatedOn
	org.UpdatedOn = created.UpdatedOn
	return nil
}

// UpdateByID applies a partial update. Returns nil, nil when absent.
func (r *OrganizationRepository) UpdateByID(ctx context.Context, id string, updates model.OrganizationUpdate) (*model.Organization, error) {
	if errs := updates.Validate(); len(errs) > 0 {
		return nil, model.NewValidationError(errs)
	}

	rec, err := r.coll.UpdateByID(ctx, id, updates.Patch())
	if err != nil || rec == nil {
		return nil, err
	}
	return model.OrganizationFromRecord(rec)
}

// DeleteByID deletes an organization and returns it. Returns nil, nil when absent.
func (r *OrganizationRepository) DeleteByID(ctx context.Context, id string) (*model.Organization, error) {
	rec, err := r.coll.DeleteByID(ctx, id)
	if err != nil || rec == nil {
		return nil, err
	}
	return model.OrganizationFromRecord(rec)
}
