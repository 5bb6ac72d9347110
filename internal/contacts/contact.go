// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package contacts manages the address book owned by each account.

Every query is scoped by the owner's user ID. A contact that exists but
belongs to someone else is indistinguishable from one that does not exist.
*/
package contacts

import (
	"bytes"
	"fmt"
	"net/url"
	"time"

	"github.com/taibuivan/contactbook/internal/platform/apperr"
)

// # Domain Entities

// Contact is a single address-book entry.
type Contact struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Fullname    string    `json:"fullname"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	Birthday    Date      `json:"birthday"`
	Description string    `json:"description"`
	UserID      int64     `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Input is the writable part of a contact, shared by create and full replace.
type Input struct {
	Name        string `json:"name"`
	Fullname    string `json:"fullname"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Birthday    Date   `json:"birthday"`
	Description string `json:"description"`
}

// # Calendar Date

// DateLayout is the wire format of [Date].
const DateLayout = "2006-01-02"

// Date is a calendar day without time or zone, serialized as "YYYY-MM-DD".
type Date struct {
	time.Time
}

// NewDate returns the date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler. Null leaves the zero value.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}

	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("date must be a string in %s format", DateLayout)
	}

	parsed, err := time.Parse(DateLayout, string(data[1:len(data)-1]))
	if err != nil {
		return fmt.Errorf("date must be in %s format: %w", DateLayout, err)
	}

	d.Time = parsed
	return nil
}

// # Search

// SearchField names the single column a search matches on.
type SearchField int

const (
	ByName SearchField = iota + 1
	ByFullname
	ByEmail
)

// String returns the query parameter name of the field.
func (f SearchField) String() string {
	switch f {
	case ByName:
		return "name"
	case ByFullname:
		return "fullname"
	case ByEmail:
		return "email"
	default:
		return "unknown"
	}
}

// SearchCriterion is an exact-match filter on exactly one field.
type SearchCriterion struct {
	Field SearchField
	Value string
}

// ErrNoCriterion is returned when a search names none of the supported fields.
var ErrNoCriterion = apperr.BadRequest("Provide one of name, fullname or email")

// CriterionFromQuery picks the first non-empty parameter in the order name,
// fullname, email. The others are ignored.
func CriterionFromQuery(query url.Values) (SearchCriterion, error) {
	for _, field := range []SearchField{ByName, ByFullname, ByEmail} {
		if value := query.Get(field.String()); value != "" {
			return SearchCriterion{Field: field, Value: value}, nil
		}
	}
	return SearchCriterion{}, ErrNoCriterion
}
