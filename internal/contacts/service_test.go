// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contacts

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/contactbook/internal/platform/apperr"
	"github.com/taibuivan/contactbook/pkg/pagination"
)

func validInput() Input {
	return Input{
		Name:        "Bob",
		Fullname:    "Bob Marley",
		Email:       "bob@x.com",
		PhoneNumber: "+380501234567",
		Birthday:    NewDate(1990, time.March, 15),
		Description: "Friend from school",
	}
}

/*
TestBirthdayWindow covers plain, month-wrapping and year-wrapping weeks.
*/
func TestBirthdayWindow(t *testing.T) {
	tests := []struct {
		name  string
		today time.Time
		first string
		last  string
	}{
		{"mid_month", time.Date(2026, time.May, 10, 15, 0, 0, 0, time.UTC), "05-10", "05-17"},
		{"month_wrap", time.Date(2026, time.April, 27, 0, 0, 0, 0, time.UTC), "04-27", "05-04"},
		{"year_wrap", time.Date(2026, time.December, 28, 0, 0, 0, 0, time.UTC), "12-28", "01-04"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window := birthdayWindow(tt.today, 7)

			require.Len(t, window, 8)
			assert.Equal(t, tt.first, window[0])
			assert.Equal(t, tt.last, window[7])
		})
	}
}

func TestBirthdayWindow_LeapDay(t *testing.T) {
	assert.Contains(t, birthdayWindow(time.Date(2028, time.February, 25, 0, 0, 0, 0, time.UTC), 7), "02-29")
	assert.NotContains(t, birthdayWindow(time.Date(2027, time.February, 25, 0, 0, 0, 0, time.UTC), 7), "02-29")
}

func TestService_UpcomingBirthdays(t *testing.T) {
	ctx := context.Background()
	repository := newMemoryRepository()
	service := NewService(repository).WithClock(func() time.Time {
		return time.Date(2026, time.December, 29, 9, 0, 0, 0, time.UTC)
	})

	add := func(name string, birthday Date) {
		input := validInput()
		input.Name = name
		input.Birthday = birthday
		_, err := service.Create(ctx, 1, input)
		require.NoError(t, err)
	}

	add("january", NewDate(1985, time.January, 3))
	add("today", NewDate(2000, time.December, 29))
	add("too_late", NewDate(1999, time.January, 6))
	add("yesterday", NewDate(1970, time.December, 28))

	items, err := service.UpcomingBirthdays(ctx, 1)
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "today", items[0].Name)
	assert.Equal(t, "january", items[1].Name)
}

func TestService_CreateValidation(t *testing.T) {
	service := NewService(newMemoryRepository())

	tests := []struct {
		name   string
		mutate func(*Input)
		field  string
	}{
		{"long_name", func(in *Input) { in.Name = "abcdefghijklmnopqrstuvwxyzabcde" }, FieldName},
		{"missing_fullname", func(in *Input) { in.Fullname = "  " }, FieldFullname},
		{"bad_email", func(in *Input) { in.Email = "bob-at-x" }, FieldEmail},
		{"long_phone", func(in *Input) { in.PhoneNumber = "+3805012345678" }, FieldPhoneNumber},
		{"missing_birthday", func(in *Input) { in.Birthday = Date{} }, FieldBirthday},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)

			_, err := service.Create(context.Background(), 1, input)
			appErr := apperr.As(err)
			require.NotNil(t, appErr)
			require.NotEmpty(t, appErr.Details)
			assert.Equal(t, tt.field, appErr.Details[0].Field)
		})
	}
}

/*
TestService_Ownership verifies one owner can never see or change another's contacts.
*/
func TestService_Ownership(t *testing.T) {
	ctx := context.Background()
	service := NewService(newMemoryRepository())

	created, err := service.Create(ctx, 1, validInput())
	require.NoError(t, err)

	_, err = service.Get(ctx, 2, created.ID)
	assert.ErrorIs(t, err, ErrContactNotFound)

	_, err = service.Update(ctx, 2, created.ID, validInput())
	assert.ErrorIs(t, err, ErrContactNotFound)

	_, err = service.Delete(ctx, 2, created.ID)
	assert.ErrorIs(t, err, ErrContactNotFound)

	items, total, err := service.List(ctx, 2, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)

	found, err := service.Get(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", found.Name)
}

func TestService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	service := NewService(newMemoryRepository())

	created, err := service.Create(ctx, 1, validInput())
	require.NoError(t, err)

	replacement := validInput()
	replacement.Name = "Robert"
	updated, err := service.Update(ctx, 1, created.ID, replacement)
	require.NoError(t, err)
	assert.Equal(t, "Robert", updated.Name)
	assert.Equal(t, created.ID, updated.ID)

	removed, err := service.Delete(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Robert", removed.Name)

	_, err = service.Get(ctx, 1, created.ID)
	assert.ErrorIs(t, err, ErrContactNotFound)
}

/*
TestService_SearchNormalizesNames verifies decomposed input finds a precomposed name.
*/
func TestService_SearchNormalizesNames(t *testing.T) {
	ctx := context.Background()
	service := NewService(newMemoryRepository())

	input := validInput()
	input.Name = "Jos\u00e9"
	_, err := service.Create(ctx, 1, input)
	require.NoError(t, err)

	items, err := service.Search(ctx, 1, SearchCriterion{Field: ByName, Value: "  Jose\u0301 "})
	require.NoError(t, err)
	require.Len(t, items, 1)

	items, err = service.Search(ctx, 1, SearchCriterion{Field: ByEmail, Value: "nobody@x.com"})
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = service.Search(ctx, 1, SearchCriterion{})
	assert.ErrorIs(t, err, ErrNoCriterion)
}

func TestCriterionFromQuery(t *testing.T) {
	criterion, err := CriterionFromQuery(url.Values{"email": {"a@x.com"}, "fullname": {"Bob Marley"}})
	require.NoError(t, err)
	assert.Equal(t, SearchCriterion{Field: ByFullname, Value: "Bob Marley"}, criterion)

	criterion, err = CriterionFromQuery(url.Values{"name": {"Bob"}, "email": {"a@x.com"}})
	require.NoError(t, err)
	assert.Equal(t, ByName, criterion.Field)

	_, err = CriterionFromQuery(url.Values{"name": {""}, "phone": {"123"}})
	assert.ErrorIs(t, err, ErrNoCriterion)
}

func TestDate_JSON(t *testing.T) {
	var input Input
	require.NoError(t, json.Unmarshal([]byte(`{"birthday":"1990-03-15"}`), &input))
	assert.Equal(t, NewDate(1990, time.March, 15), input.Birthday)

	encoded, err := json.Marshal(input.Birthday)
	require.NoError(t, err)
	assert.JSONEq(t, `"1990-03-15"`, string(encoded))

	assert.Error(t, json.Unmarshal([]byte(`{"birthday":"15/03/1990"}`), &input))
	assert.Error(t, json.Unmarshal([]byte(`{"birthday":19900315}`), &input))
}
