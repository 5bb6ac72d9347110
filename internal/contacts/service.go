// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contacts

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/taibuivan/contactbook/internal/platform/apperr"
	"github.com/taibuivan/contactbook/internal/platform/ctxutil"
	"github.com/taibuivan/contactbook/internal/platform/dberr"
	"github.com/taibuivan/contactbook/internal/platform/validate"
	"github.com/taibuivan/contactbook/pkg/pagination"
	"github.com/taibuivan/contactbook/pkg/textnorm"
)

// # Constraints

const (
	NameMaxLength        = 30
	FullnameMaxLength    = 30
	EmailMaxLength       = 40
	PhoneMaxLength       = 13
	DescriptionMaxLength = 150

	// BirthdayWindowDays is how far ahead upcoming birthdays are looked up, today included.
	BirthdayWindowDays = 7
)

// Request field names, shared with validation details.
const (
	FieldName        = "name"
	FieldFullname    = "fullname"
	FieldEmail       = "email"
	FieldPhoneNumber = "phone_number"
	FieldBirthday    = "birthday"
	FieldDescription = "description"
)

// ErrContactNotFound is returned for missing contacts and for contacts of other owners.
var ErrContactNotFound = apperr.NotFound("Contact")

// # Service Layer

// Service implements the contact use cases for a single owner at a time.
type Service struct {
	repository Repository
	now        func() time.Time
}

// NewService constructs a new [Service].
func NewService(repository Repository) *Service {
	return &Service{repository: repository, now: time.Now}
}

// WithClock replaces the clock used for birthday lookups.
func (service *Service) WithClock(now func() time.Time) *Service {
	service.now = now
	return service
}

func (service *Service) List(ctx context.Context, ownerID int64, params pagination.Params) ([]*Contact, int, error) {
	return service.repository.List(ctx, ownerID, params)
}

func (service *Service) Get(ctx context.Context, ownerID, contactID int64) (*Contact, error) {
	contact, err := service.repository.Get(ctx, ownerID, contactID)
	return contact, notFound(err)
}

/*
Create validates and stores a new contact for ownerID.

Returns:
  - *Contact: Stored entity with ID and timestamps
  - error: Validation or persistence failures
*/
func (service *Service) Create(ctx context.Context, ownerID int64, input Input) (*Contact, error) {
	input = normalize(input)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	contact := fromInput(input)
	contact.UserID = ownerID

	if err := service.repository.Create(ctx, contact); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "contact_created",
		slog.Int64("user_id", ownerID),
		slog.Int64("contact_id", contact.ID),
	)
	return contact, nil
}

// Update replaces every writable field of an existing contact.
func (service *Service) Update(ctx context.Context, ownerID, contactID int64, input Input) (*Contact, error) {
	input = normalize(input)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	contact := fromInput(input)
	contact.ID = contactID
	contact.UserID = ownerID

	if err := service.repository.Update(ctx, contact); err != nil {
		return nil, notFound(err)
	}
	return contact, nil
}

// Delete removes the contact and returns it as it was.
func (service *Service) Delete(ctx context.Context, ownerID, contactID int64) (*Contact, error) {
	contact, err := service.repository.Delete(ctx, ownerID, contactID)
	if err != nil {
		return nil, notFound(err)
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "contact_deleted",
		slog.Int64("user_id", ownerID),
		slog.Int64("contact_id", contactID),
	)
	return contact, nil
}

// Search returns the owner's contacts whose field equals the normalized value.
// No match is an empty slice, not an error.
func (service *Service) Search(ctx context.Context, ownerID int64, criterion SearchCriterion) ([]*Contact, error) {
	switch criterion.Field {
	case ByName, ByFullname:
		criterion.Value = textnorm.Clean(criterion.Value)
	case ByEmail:
		criterion.Value = strings.TrimSpace(criterion.Value)
	default:
		return nil, ErrNoCriterion
	}

	return service.repository.Search(ctx, ownerID, criterion)
}

/*
UpcomingBirthdays returns contacts whose birthday falls between today and
today + BirthdayWindowDays, inclusive, ordered by how soon it comes.

Description: The window is computed on month-day keys, so it wraps across
month and year ends. A 29 February birthday only matches in leap years.
*/
func (service *Service) UpcomingBirthdays(ctx context.Context, ownerID int64) ([]*Contact, error) {
	window := birthdayWindow(service.now(), BirthdayWindowDays)

	items, err := service.repository.BirthdaysOn(ctx, ownerID, window)
	if err != nil {
		return nil, err
	}

	position := make(map[string]int, len(window))
	for index, monthDay := range window {
		position[monthDay] = index
	}
	sort.SliceStable(items, func(i, j int) bool {
		return position[monthDayKey(items[i].Birthday.Time)] < position[monthDayKey(items[j].Birthday.Time)]
	})

	return items, nil
}

// birthdayWindow lists the "MM-DD" keys of today and the following days.
func birthdayWindow(today time.Time, days int) []string {
	keys := make([]string, 0, days+1)
	for offset := 0; offset <= days; offset++ {
		keys = append(keys, monthDayKey(today.AddDate(0, 0, offset)))
	}
	return keys
}

func monthDayKey(day time.Time) string {
	return day.Format("01-02")
}

// # Helpers

func normalize(input Input) Input {
	input.Name = textnorm.Clean(input.Name)
	input.Fullname = textnorm.Clean(input.Fullname)
	input.Email = strings.TrimSpace(input.Email)
	input.PhoneNumber = strings.TrimSpace(input.PhoneNumber)
	input.Description = textnorm.Clean(input.Description)
	return input
}

func validateInput(input Input) error {
	v := &validate.Validator{}

	v.Required(FieldName, input.Name).MaxLen(FieldName, input.Name, NameMaxLength)
	v.Required(FieldFullname, input.Fullname).MaxLen(FieldFullname, input.Fullname, FullnameMaxLength)
	v.Required(FieldEmail, input.Email).
		MaxLen(FieldEmail, input.Email, EmailMaxLength).
		Email(FieldEmail, input.Email)
	v.Required(FieldPhoneNumber, input.PhoneNumber).
		MaxLen(FieldPhoneNumber, input.PhoneNumber, PhoneMaxLength).
		Phone(FieldPhoneNumber, input.PhoneNumber)
	v.Custom(FieldBirthday, input.Birthday.IsZero(), "This field is required")
	v.MaxLen(FieldDescription, input.Description, DescriptionMaxLength)

	return v.Err()
}

func fromInput(input Input) *Contact {
	return &Contact{
		Name:        input.Name,
		Fullname:    input.Fullname,
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
		Birthday:    input.Birthday,
		Description: input.Description,
	}
}

func notFound(err error) error {
	if errors.Is(err, dberr.ErrNotFound) {
		return ErrContactNotFound
	}
	return err
}
