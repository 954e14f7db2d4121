// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/warp/bill-engine/billing"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu    sync.RWMutex
	bills billing.Collection
}

func NewMemory() *Memory {
	return &Memory{}
}

// List returns a copy of the collection, ordered by due date then name.
func (m *Memory) List(_ context.Context) (billing.Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := m.bills.Clone()
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (m *Memory) Get(_ context.Context, id billing.BillID) (billing.BillRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i := m.bills.FindByID(id); i >= 0 {
		return m.bills[i], nil
	}
	return billing.BillRecord{}, billing.ErrBillNotFound
}

func (m *Memory) Insert(_ context.Context, bill billing.BillRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.bills.FindByName(bill.Name) >= 0 {
		return billing.ErrDuplicateName
	}
	m.bills = append(m.bills, bill)
	return nil
}

func (m *Memory) Update(_ context.Context, bill billing.BillRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.bills.FindByID(bill.ID)
	if i < 0 {
		return billing.ErrBillNotFound
	}
	// Renaming onto another bill's name is still a conflict.
	if j := m.bills.FindByName(bill.Name); j >= 0 && j != i {
		return billing.ErrDuplicateName
	}
	m.bills[i] = bill
	return nil
}

func (m *Memory) Delete(_ context.Context, id billing.BillID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.bills.FindByID(id)
	if i < 0 {
		return billing.ErrBillNotFound
	}
	m.bills = append(m.bills[:i], m.bills[i+1:]...)
	return nil
}

// ReplaceAll swaps the whole collection. The incoming slice is copied, so
// callers keep ownership of their value.
func (m *Memory) ReplaceAll(_ context.Context, bills billing.Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.bills = bills.Clone()
	return nil
}
