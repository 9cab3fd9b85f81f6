package models

import (
	"database/sql/driver"
	"fmt"
)

// Role is the closed set of account kinds. The zero value is not a valid role.
type Role struct {
	name string
}

var (
	RoleTenant   = Role{"tenant"}
	RoleLandlord = Role{"landlord"}
)

// ParseRole maps a stored or transmitted role name to a Role
func ParseRole(s string) (Role, error) {
	switch s {
	case RoleTenant.name:
		return RoleTenant, nil
	case RoleLandlord.name:
		return RoleLandlord, nil
	}
	return Role{}, fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string { return r.name }

// IsZero reports whether r was never assigned
func (r Role) IsZero() bool { return r.name == "" }

func (r Role) MarshalText() ([]byte, error) {
	if r.IsZero() {
		return nil, fmt.Errorf("role not set")
	}
	return []byte(r.name), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Scan implements sql.Scanner
func (r *Role) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	}
	return fmt.Errorf("cannot scan %T into Role", src)
}

// Value implements driver.Valuer
func (r Role) Value() (driver.Value, error) {
	if r.IsZero() {
		return nil, fmt.Errorf("role not set")
	}
	return r.name, nil
}
