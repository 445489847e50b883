package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/forgo/seedbed/internal/database"
	"github.com/forgo/seedbed/internal/model"
)

// ============================================================================
// Mock Database
// ============================================================================

type mockDB struct {
	queryFunc    func(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)
	queryOneFunc func(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)
	queries      []string
}

func (m *mockDB) Connect(ctx context.Context) error { return nil }
func (m *mockDB) Close() error                      { return nil }
func (m *mockDB) Ping(ctx context.Context) error    { return nil }

func (m *mockDB) Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
	m.queries = append(m.queries, query)
	if m.queryFunc != nil {
		return m.queryFunc(ctx, query, vars)
	}
	return nil, nil
}

func (m *mockDB) QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
	m.queries = append(m.queries, query)
	if m.queryOneFunc != nil {
		return m.queryOneFunc(ctx, query, vars)
	}
	return nil, database.ErrNotFound
}

func (m *mockDB) Execute(ctx context.Context, query string, vars map[string]interface{}) error {
	_, err := m.Query(ctx, query, vars)
	return err
}

func okResult(rows ...interface{}) []interface{} {
	return []interface{}{map[string]interface{}{"status": "OK", "result": rows}}
}

// ============================================================================
// Collection Tests
// ============================================================================

func TestCollection_Find_FullScan(t *testing.T) {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	db := &mockDB{
		queryFunc: func(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
			assert.Equal(t, "SELECT * FROM type::table($tb)", query)
			assert.Equal(t, "organization", vars["tb"])
			return okResult(map[string]interface{}{
				"id":         models.RecordID{Table: "organization", ID: "abc"},
				"name":       "Acme",
				"created_on": models.CustomDateTime{Time: created},
			}), nil
		},
	}

	records, err := NewCollection(db, "organization").Find(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "organization:abc", records[0].ID())
	assert.Equal(t, "Acme", records[0]["name"])
	assert.Equal(t, created, records[0]["created_on"])
}

func TestCollection_Find_WithFilter(t *testing.T) {
	db := &mockDB{
		queryFunc: func(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
			assert.Equal(t, "SELECT * FROM type::table($tb) WHERE age = $f_age AND name = $f_name", query)
			assert.Equal(t, 36, vars["f_age"])
			assert.Equal(t, "Ada", vars["f_name"])
			return okResult(), nil
		},
	}

	records, err := NewCollection(db, "user").Find(context.Background(), model.Record{"name": "Ada", "age": 36})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCollection_Find_RejectsBadFieldName(t *testing.T) {
	db := &mockDB{}

	_, err := NewCollection(db, "user").Find(context.Background(), model.Record{"name; DELETE user": "x"})
	require.ErrorIs(t, err, database.ErrQuery)
	assert.Empty(t, db.queries, "no query should reach the store")
}

func TestCollection_FindByID_Absent(t *testing.T) {
	db := &mockDB{
		queryOneFunc: func(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
			assert.Equal(t, "user:missing", vars["id"])
			return nil, database.ErrNotFound
		},
	}

	rec, err := NewCollection(db, "user").FindByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestCollection_FindByID_PropagatesErrors(t *testing.T) {
	db := &mockDB{
		queryOneFunc: func(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
			return nil, database.ErrConnection
		},
	}

	_, err := NewCollection(db, "user").FindByID(context.Background(), "user:1")
	assert.ErrorIs(t, err, database.ErrConnection)
}

func TestCollection_Create_StripsManagedFields(t *testing.T) {
	db := &mockDB{
		queryFunc: func(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
			assert.True(t, strings.HasPrefix(query, "CREATE type::table($tb) SET "))
			assert.Contains(t, query, "name = $c_name")
			assert.Contains(t, query, "created_on = time::now()")
			assert.NotContains(t, query, "$c_id")
			return okResult(map[string]interface{}{
				"id":   models.RecordID{Table: "user", ID: "new"},
				"name": vars["c_name"],
				"age":  vars["c_age"],
			}), nil
		},
	}

	rec, err := NewCollection(db, "user").Create(context.Background(), model.Record{
		"id":   "user:forced",
		"name": "Ada",
		"age":  36,
	})
	require.NoError(t, err)
	assert.Equal(t, "user:new", rec.ID())
	assert.Equal(t, "Ada", rec["name"])
}

func TestCollection_Create_DuplicateMapsToErrDuplicate(t *testing.T) {
	db := &mockDB{
		queryFunc: func(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
			return nil, errors.New("query error: Database index `name` already contains 'Acme'; already exists")
		},
	}

	_, err := NewCollection(db, "organization").Create(context.Background(), model.Record{"name": "Acme"})
	assert.ErrorIs(t, err, database.ErrDuplicate)
}

func TestCollection_UpdateByID_AbsentSkipsUpdate(t *testing.T) {
	db := &mockDB{}

	rec, err := NewCollection(db, "user").UpdateByID(context.Background(), "user:gone", model.Record{"age": 40})
	require.NoError(t, err)
	assert.Nil(t, rec)
	for _, q := range db.queries {
		assert.NotContains(t, q, "UPDATE")
	}
}

func TestCollection_UpdateByID_ReturnsAfter(t *testing.T) {
	db := &mockDB{
		queryOneFunc: func(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
			return map[string]interface{}{"id": "user:1", "name": "Ada", "age": 36}, nil
		},
		queryFunc: func(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
			assert.Equal(t, "UPDATE type::record($id) SET age = $u_age, updated_on = time::now() RETURN AFTER", query)
			return okResult(map[string]interface{}{"id": "user:1", "name": "Ada", "age": vars["u_age"]}), nil
		},
	}

	rec, err := NewCollection(db, "user").UpdateByID(context.Background(), "user:1", model.Record{"age": 40})
	require.NoError(t, err)
	assert.Equal(t, 40, rec["age"])
}

func TestCollection_DeleteByID(t *testing.T) {
	db := &mockDB{
		queryFunc: func(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
			if vars["id"] == "organization:1" {
				return okResult(map[string]interface{}{"id": "organization:1", "name": "Acme"}), nil
			}
			return okResult(), nil
		},
	}
	coll := NewCollection(db, "organization")

	rec, err := coll.DeleteByID(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", rec["name"])

	rec, err = coll.DeleteByID(context.Background(), "2")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestCollection_Count(t *testing.T) {
	db := &mockDB{
		queryOneFunc: func(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
			return map[string]interface{}{"count": uint64(5)}, nil
		},
	}

	n, err := NewCollection(db, "user").Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestClearTables_SingleTransaction(t *testing.T) {
	db := &mockDB{}

	require.NoError(t, ClearTables(context.Background(), db, "organization", "user"))
	require.Len(t, db.queries, 1)
	assert.Contains(t, db.queries[0], "BEGIN TRANSACTION;")
	assert.Equal(t, 2, strings.Count(db.queries[0], "DELETE type::table("))
}

// ============================================================================
// Typed Repository Tests
// ============================================================================

func TestUserRepository_Create_Validates(t *testing.T) {
	db := &mockDB{}
	repo := NewUserRepository(db)

	err := repo.Create(context.Background(), &model.User{Name: "", Age: -3})

	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.HasField("name"))
	assert.True(t, ve.HasField("age"))
	assert.Empty(t, db.queries)
}

func TestOrganizationRepository_Create_FillsID(t *testing.T) {
	db := &mockDB{
		queryFunc: func(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
			return okResult(map[string]interface{}{
				"id":      models.RecordID{Table: "organization", ID: "xyz"},
				"name":    vars["c_name"],
				"website": vars["c_website"],
			}), nil
		},
	}
	org := &model.Organization{Name: "Acme", Website: "https://acme.test"}

	require.NoError(t, NewOrganizationRepository(db).Create(context.Background(), org))
	assert.Equal(t, "organization:xyz", org.ID)
}

func TestUserRepository_GetByID_Absent(t *testing.T) {
	user, err := NewUserRepository(&mockDB{}).GetByID(context.Background(), "user:none")
	require.NoError(t, err)
	assert.Nil(t, user)
}
