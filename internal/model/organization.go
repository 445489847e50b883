package model

import "time"

// Validation constraints for organizations
const (
	OrganizationNameMaxLength    = 200
	OrganizationWebsiteMaxLength = 2048
)

// Organization represents an organization document
type Organization struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Website   string    `json:"website"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// OrganizationUpdate holds a partial organization update
type OrganizationUpdate struct {
	Name    *string `json:"name,omitempty"`
	Website *string `json:"website,omitempty"`
}

// Validate checks the required organization fields
func (o *Organization) Validate() []FieldError {
	var errs []FieldError
	errs = append(errs, validateRequiredString("name", o.Name, OrganizationNameMaxLength)...)
	errs = append(errs, validateRequiredString("website", o.Website, OrganizationWebsiteMaxLength)...)
	return errs
}

// Fields returns the writable fields as a record
func (o *Organization) Fields() Record {
	return Record{
		"name":    o.Name,
		"website": o.Website,
	}
}

// Validate checks the fields present in the update
func (u *OrganizationUpdate) Validate() []FieldError {
	var errs []FieldError
	if u.Name != nil {
		errs = append(errs, validateRequiredString("name", *u.Name, OrganizationNameMaxLength)...)
	}
	if u.Website != nil {
		errs = append(errs, validateRequiredString("website", *u.Website, OrganizationWebsiteMaxLength)...)
	}
	return errs
}

// Patch returns only the fields set on the update
func (u *OrganizationUpdate) Patch() Record {
	patch := Record{}
	if u.Name != nil {
		patch["name"] = *u.Name
	}
	if u.Website != nil {
		patch["website"] = *u.Website
	}
	return patch
}

// OrganizationFromRecord converts a stored document into an Organization
func OrganizationFromRecord(r Record) (*Organization, error) {
	var org Organization
	if err := decodeRecord(r.Without(FieldCreatedOn, FieldUpdatedOn), &org); err != nil {
		return nil, err
	}
	org.CreatedOn = timeField(r, FieldCreatedOn)
	org.UpdatedOn = timeField(r, FieldUpdatedOn)
	return &org, nil
}
