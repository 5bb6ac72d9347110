// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contacts

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/taibuivan/contactbook/internal/platform/dberr"
	"github.com/taibuivan/contactbook/pkg/pagination"
)

// memoryRepository is an in-process [Repository] for tests.
type memoryRepository struct {
	mu     sync.Mutex
	nextID int64
	rows   []*Contact
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{nextID: 1}
}

func (m *memoryRepository) owned(ownerID int64) []*Contact {
	var items []*Contact
	for _, row := range m.rows {
		if row.UserID == ownerID {
			copied := *row
			items = append(items, &copied)
		}
	}
	return items
}

func (m *memoryRepository) List(_ context.Context, ownerID int64, params pagination.Params) ([]*Contact, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := m.owned(ownerID)
	total := len(items)

	start := min(params.Offset, total)
	end := min(start+params.Limit, total)
	page := items[start:end]
	if page == nil {
		page = []*Contact{}
	}
	return page, total, nil
}

func (m *memoryRepository) Get(_ context.Context, ownerID, contactID int64) (*Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range m.owned(ownerID) {
		if row.ID == contactID {
			return row, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (m *memoryRepository) Create(_ context.Context, contact *Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	contact.ID = m.nextID
	m.nextID++
	contact.CreatedAt = time.Now()
	contact.UpdatedAt = contact.CreatedAt

	copied := *contact
	m.rows = append(m.rows, &copied)
	return nil
}

func (m *memoryRepository) Update(_ context.Context, contact *Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for index, row := range m.rows {
		if row.ID == contact.ID && row.UserID == contact.UserID {
			contact.CreatedAt = row.CreatedAt
			contact.UpdatedAt = time.Now()
			copied := *contact
			m.rows[index] = &copied
			return nil
		}
	}
	return dberr.ErrNotFound
}

func (m *memoryRepository) Delete(_ context.Context, ownerID, contactID int64) (*Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for index, row := range m.rows {
		if row.ID == contactID && row.UserID == ownerID {
			m.rows = slices.Delete(m.rows, index, index+1)
			return row, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (m *memoryRepository) Search(_ context.Context, ownerID int64, criterion SearchCriterion) ([]*Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := []*Contact{}
	for _, row := range m.owned(ownerID) {
		var value string
		switch criterion.Field {
		case ByName:
			value = row.Name
		case ByFullname:
			value = row.Fullname
		case ByEmail:
			value = row.Email
		}
		if value == criterion.Value {
			items = append(items, row)
		}
	}
	return items, nil
}

func (m *memoryRepository) BirthdaysOn(_ context.Context, ownerID int64, monthDays []string) ([]*Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := []*Contact{}
	for _, row := range m.owned(ownerID) {
		if slices.Contains(monthDays, monthDayKey(row.Birthday.Time)) {
			items = append(items, row)
		}
	}
	return items, nil
}
