package model

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestOrganization_Validate_Valid(t *testing.T) {
	t.Parallel()

	org := &Organization{Name: "Acme", Website: "https://acme.test"}
	if errs := org.Validate(); len(errs) > 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestOrganization_Validate_MissingFields(t *testing.T) {
	t.Parallel()

	org := &Organization{Name: "  "}
	errs := org.Validate()
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %v", errs)
	}
	if errs[0].Field != "name" || errs[1].Field != "website" {
		t.Errorf("expected name and website errors, got %v", errs)
	}
}

func TestUser_Validate_AgeBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		age     int
		wantErr bool
	}{
		{"zero", 0, false},
		{"adult", 42, false},
		{"negative", -1, true},
		{"too old", 151, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{Name: "Ada", Age: tt.age}
			errs := u.Validate()
			if tt.wantErr && len(errs) == 0 {
				t.Errorf("expected age error for %d", tt.age)
			}
			if !tt.wantErr && len(errs) > 0 {
				t.Errorf("expected no error for %d, got %v", tt.age, errs)
			}
		})
	}
}

func TestUserUpdate_PatchOnlySetFields(t *testing.T) {
	t.Parallel()

	age := 31
	patch := (&UserUpdate{Age: &age}).Patch()

	if len(patch) != 1 {
		t.Fatalf("expected 1 field in patch, got %v", patch)
	}
	if patch["age"] != 31 {
		t.Errorf("expected age 31, got %v", patch["age"])
	}
}

func TestUserFromRecord(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := Record{
		"id":         "user:abc",
		"name":       "Ada",
		"age":        float64(36),
		"created_on": created,
		"updated_on": created.Format(time.RFC3339Nano),
	}

	u, err := UserFromRecord(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != "user:abc" || u.Name != "Ada" || u.Age != 36 {
		t.Errorf("unexpected user: %+v", u)
	}
	if !u.CreatedOn.Equal(created) || !u.UpdatedOn.Equal(created) {
		t.Errorf("expected timestamps %v, got %v / %v", created, u.CreatedOn, u.UpdatedOn)
	}
}

func TestOrganizationFromRecord(t *testing.T) {
	t.Parallel()

	org, err := OrganizationFromRecord(Record{"id": "organization:1", "name": "Acme", "website": "https://acme.test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if org.Name != "Acme" || org.Website != "https://acme.test" {
		t.Errorf("unexpected organization: %+v", org)
	}
	if !org.CreatedOn.IsZero() {
		t.Errorf("expected zero created_on, got %v", org.CreatedOn)
	}
}

func TestRecord_CloneIsDeep(t *testing.T) {
	t.Parallel()

	orig := Record{
		"name": "Acme",
		"tags": []interface{}{"a", "b"},
		"meta": map[string]interface{}{"tier": "gold"},
	}
	clone := orig.Clone()
	clone["tags"].([]interface{})[0] = "z"
	clone["meta"].(map[string]interface{})["tier"] = "tin"

	if orig["tags"].([]interface{})[0] != "a" {
		t.Error("clone shares slice with original")
	}
	if orig["meta"].(map[string]interface{})["tier"] != "gold" {
		t.Error("clone shares map with original")
	}
}

func TestValidationError_Message(t *testing.T) {
	t.Parallel()

	var err error = NewValidationError([]FieldError{
		{Field: "name", Message: "is required"},
		{Field: "age", Message: "must be between 0 and 150"},
	})

	if !strings.Contains(err.Error(), "name: is required") {
		t.Errorf("expected first field in message, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "and 1 more") {
		t.Errorf("expected remaining count in message, got %q", err.Error())
	}

	var ve *ValidationError
	if !errors.As(err, &ve) || !ve.HasField("age") {
		t.Errorf("expected ValidationError with age field, got %v", err)
	}
}
