package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/invoiceapp/user-management-system/internal/core/domain"
	"github.com/invoiceapp/user-management-system/internal/core/ports"
)

// In-memory repository stubs shared by the service tests.

type memUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User // keyed by record id
	nextID int

	// fault injection
	failAddGroup    bool
	failRemoveGroup bool
	// staleMaxSuffix, when >= 0, is returned by MaxIDSuffix instead of the
	// real maximum, simulating a stale read under concurrent creation.
	staleMaxSuffix int64
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User), staleMaxSuffix: -1}
}

func (r *memUserRepo) put(u *domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		r.nextID++
		u.ID = fmt.Sprintf("id%d", r.nextID)
	}
	if u.Email != "" {
		u.Email = strings.ToLower(u.Email)
	}
	clone := *u
	r.users[u.ID] = &clone
	return u
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || !u.IsActive {
		return nil, &domain.NotFoundError{Resource: "user", ID: id}
	}
	clone := *u
	return &clone, nil
}

func (r *memUserRepo) FindByUserID(_ context.Context, userID string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.UserID == userID && u.IsActive {
			clone := *u
			return &clone, nil
		}
	}
	return nil, &domain.NotFoundError{Resource: "user", ID: userID}
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == strings.ToLower(email) && u.IsActive {
			clone := *u
			return &clone, nil
		}
	}
	return nil, &domain.NotFoundError{Resource: "user", ID: email}
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username && u.IsActive {
			clone := *u
			return &clone, nil
		}
	}
	return nil, &domain.NotFoundError{Resource: "user", ID: username}
}

func (r *memUserRepo) FindByIDs(_ context.Context, ids []string) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok && u.IsActive {
			clone := *u
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memUserRepo) Insert(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.UserID == user.UserID {
			return nil, &domain.ConflictError{Field: "user_id", Value: user.UserID}
		}
		if u.Email == user.Email {
			return nil, &domain.ConflictError{Field: "email", Value: user.Email}
		}
		if u.Username == user.Username {
			return nil, &domain.ConflictError{Field: "username", Value: user.Username}
		}
	}
	r.nextID++
	user.ID = fmt.Sprintf("id%d", r.nextID)
	clone := *user
	r.users[user.ID] = &clone
	return user, nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return &domain.NotFoundError{Resource: "user", ID: user.ID}
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return &domain.NotFoundError{Resource: "user", ID: id}
	}
	u.IsActive = false
	return nil
}

func (r *memUserRepo) List(_ context.Context, scope ports.UserScope, page, limit int64) ([]*domain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*domain.User
	for _, u := range r.users {
		if u.IsActive && ScopeAllows(scope, u) {
			clone := *u
			all = append(all, &clone)
		}
	}
	total := int64(len(all))
	if limit <= 0 {
		return all, total, nil
	}
	start := (page - 1) * limit
	if start >= total {
		return nil, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (r *memUserRepo) MaxIDSuffix(_ context.Context, prefix string) (int64, error) {
	if r.staleMaxSuffix >= 0 {
		return r.staleMaxSuffix, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var max int64
	for _, u := range r.users {
		rest, ok := strings.CutPrefix(u.UserID, prefix)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max, nil
}

func (r *memUserRepo) AddGroup(_ context.Context, userID, groupID string) error {
	if r.failAddGroup {
		return errors.New("injected add-group failure")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return &domain.NotFoundError{Resource: "user", ID: userID}
	}
	if !u.InGroup(groupID) {
		u.Groups = append(u.Groups, groupID)
	}
	return nil
}

func (r *memUserRepo) RemoveGroup(_ context.Context, userID, groupID string) error {
	if r.failRemoveGroup {
		return errors.New("injected remove-group failure")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return &domain.NotFoundError{Resource: "user", ID: userID}
	}
	var kept []string
	for _, g := range u.Groups {
		if g != groupID {
			kept = append(kept, g)
		}
	}
	u.Groups = kept
	return nil
}

type memGroupRepo struct {
	mu     sync.Mutex
	groups map[string]*domain.Group
	nextID int
}

func newMemGroupRepo() *memGroupRepo {
	return &memGroupRepo{groups: make(map[string]*domain.Group)}
}

func (r *memGroupRepo) put(g *domain.Group) *domain.Group {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g.ID == "" {
		r.nextID++
		g.ID = fmt.Sprintf("g%d", r.nextID)
	}
	clone := *g
	r.groups[g.ID] = &clone
	return g
}

func (r *memGroupRepo) FindByID(_ context.Context, id string) (*domain.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[id]
	if !ok || !g.IsActive {
		return nil, &domain.NotFoundError{Resource: "group", ID: id}
	}
	clone := *g
	return &clone, nil
}

func (r *memGroupRepo) FindByMember(_ context.Context, userID string) ([]*domain.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Group
	for _, g := range r.groups {
		if g.IsActive && g.HasMember(userID) {
			clone := *g
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memGroupRepo) ListByType(_ context.Context, t domain.GroupType) ([]*domain.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Group
	for _, g := range r.groups {
		if g.IsActive && g.Type == t {
			clone := *g
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memGroupRepo) Insert(_ context.Context, group *domain.Group) (*domain.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	group.ID = fmt.Sprintf("g%d", r.nextID)
	clone := *group
	r.groups[group.ID] = &clone
	return group, nil
}

func (r *memGroupRepo) Update(_ context.Context, group *domain.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[group.ID]; !ok {
		return &domain.NotFoundError{Resource: "group", ID: group.ID}
	}
	clone := *group
	r.groups[group.ID] = &clone
	return nil
}

func (r *memGroupRepo) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[id]
	if !ok {
		return &domain.NotFoundError{Resource: "group", ID: id}
	}
	g.IsActive = false
	return nil
}

// memAllocator is a sequence allocator with the same contract as the Redis
// implementation: Seed raises the floor, Next hands out the next suffix.
type memAllocator struct {
	mu  sync.Mutex
	seq map[string]int64
}

func newMemAllocator() *memAllocator {
	return &memAllocator{seq: make(map[string]int64)}
}

func (a *memAllocator) Seed(_ context.Context, prefix string, current int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if current > a.seq[prefix] {
		a.seq[prefix] = current
	}
	return nil
}

func (a *memAllocator) Next(_ context.Context, prefix string) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seq[prefix]++
	return a.seq[prefix], nil
}

func (a *memAllocator) Peek(_ context.Context, prefix string) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.seq[prefix] + 1, nil
}

type memInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[string]*domain.Invoice
	nextID   int
}

func newMemInvoiceRepo() *memInvoiceRepo {
	return &memInvoiceRepo{invoices: make(map[string]*domain.Invoice)}
}

func (r *memInvoiceRepo) FindByID(_ context.Context, id string) (*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "invoice", ID: id}
	}
	clone := *inv
	return &clone, nil
}

func (r *memInvoiceRepo) Find(_ context.Context, filter ports.InvoiceFilter) ([]*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Invoice
	for _, inv := range r.invoices {
		if inv.FinancialYear != filter.FinancialYear {
			continue
		}
		if !filter.StartDate.IsZero() && inv.InvoiceDate.Before(filter.StartDate) {
			continue
		}
		if !filter.EndDate.IsZero() && inv.InvoiceDate.After(filter.EndDate) {
			continue
		}
		clone := *inv
		out = append(out, &clone)
	}
	return out, nil
}

func (r *memInvoiceRepo) Insert(_ context.Context, invoice *domain.Invoice) (*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	invoice.ID = fmt.Sprintf("inv%d", r.nextID)
	clone := *invoice
	r.invoices[invoice.ID] = &clone
	return invoice, nil
}

func (r *memInvoiceRepo) Update(_ context.Context, invoice *domain.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invoices[invoice.ID]; !ok {
		return &domain.NotFoundError{Resource: "invoice", ID: invoice.ID}
	}
	clone := *invoice
	r.invoices[invoice.ID] = &clone
	return nil
}

func (r *memInvoiceRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invoices[id]; !ok {
		return &domain.NotFoundError{Resource: "invoice", ID: id}
	}
	delete(r.invoices, id)
	return nil
}
