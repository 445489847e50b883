package model

import "time"

// Validation constraints for users
const (
	UserNameMaxLength = 200
	UserAgeMax        = 150
)

// User represents a user document
type User struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// UserUpdate holds a partial user update
type UserUpdate struct {
	Name *string `json:"name,omitempty"`
	Age  *int    `json:"age,omitempty"`
}

// Validate checks the required user fields
func (u *User) Validate() []FieldError {
	errs := validateRequiredString("name", u.Name, UserNameMaxLength)
	errs = append(errs, validateAge(u.Age)...)
	return errs
}

// Fields returns the writable fields as a record
func (u *User) Fields() Record {
	return Record{
		"name": u.Name,
		"age":  u.Age,
	}
}

// Validate checks the fields present in the update
func (u *UserUpdate) Validate() []FieldError {
	var errs []FieldError
	if u.Name != nil {
		errs = append(errs, validateRequiredString("name", *u.Name, UserNameMaxLength)...)
	}
	if u.Age != nil {
		errs = append(errs, validateAge(*u.Age)...)
	}
	return errs
}

// Patch returns only the fields set on the update
func (u *UserUpdate) Patch() Record {
	patch := Record{}
	if u.Name != nil {
		patch["name"] = *u.Name
	}
	if u.Age != nil {
		patch["age"] = *u.Age
	}
	return patch
}

// UserFromRecord converts a stored document into a User
func UserFromRecord(r Record) (*User, error) {
	var user User
	if err := decodeRecord(r.Without(FieldCreatedOn, FieldUpdatedOn), &user); err != nil {
		return nil, err
	}
	user.CreatedOn = timeField(r, FieldCreatedOn)
	user.UpdatedOn = timeField(r, FieldUpdatedOn)
	return &user, nil
}

func validateAge(age int) []FieldError {
	if age < 0 || age > UserAgeMax {
		return []FieldError{{Field: "age", Message: "must be between 0 and 150"}}
	}
	return nil
}
