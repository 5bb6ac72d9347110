// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contacts

import (
	"context"

	"github.com/taibuivan/contactbook/pkg/pagination"
)

// Repository defines the data access contract for contacts.
//
// Every method is scoped to ownerID; rows of other owners are never visible.
// Lookups of missing rows return dberr.ErrNotFound.
type Repository interface {
	List(ctx context.Context, ownerID int64, params pagination.Params) ([]*Contact, int, error)
	Get(ctx context.Context, ownerID, contactID int64) (*Contact, error)
	Create(ctx context.Context, contact *Contact) error
	Update(ctx context.Context, contact *Contact) error
	Delete(ctx context.Context, ownerID, contactID int64) (*Contact, error)
	Search(ctx context.Context, ownerID int64, criterion SearchCriterion) ([]*Contact, error)

	// BirthdaysOn returns contacts whose birthday falls on any of the given
	// month-day keys ("MM-DD"), regardless of birth year.
	BirthdaysOn(ctx context.Context, ownerID int64, monthDays []string) ([]*Contact, error)
}
