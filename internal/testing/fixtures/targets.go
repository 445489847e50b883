package fixtures

import (
	"context"

	"github.com/forgo/seedbed/internal/database"
	"github.com/forgo/seedbed/internal/model"
	"github.com/forgo/seedbed/internal/repository"
	"github.com/forgo/seedbed/internal/seed"
)

// Targets binds each set to its table over db, ready for a Seeder.
// Records are validated again as they are inserted.
func Targets(db database.Database, sets []Set) []seed.Target {
	targets := make([]seed.Target, len(sets))
	for i, set := range sets {
		targets[i] = seed.Target{
			Name:    set.Name,
			Records: set.Records(),
			Collection: &validatingCollection{
				Collection: repository.NewCollection(db, set.Table),
				set:        set.Name,
			},
		}
	}
	return targets
}

// Tables returns the distinct tables the sets are written to
func Tables(sets []Set) []string {
	seen := make(map[string]bool, len(sets))
	var tables []string
	for _, set := range sets {
		if !seen[set.Table] {
			seen[set.Table] = true
			tables = append(tables, set.Table)
		}
	}
	return tables
}

// validatingCollection rejects records that do not fit their set before
// they reach the store
type validatingCollection struct {
	*repository.Collection
	set string
}

func (c *validatingCollection) Create(ctx context.Context, fields model.Record) (model.Record, error) {
	if err := ValidateRecord(c.set, fields); err != nil {
		return nil, err
	}
	return c.Collection.Create(ctx, fields)
}
