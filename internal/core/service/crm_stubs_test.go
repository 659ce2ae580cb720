package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/crmhub/crm-system/internal/core/domain"
)

type stubCustomerRepo struct {
	mu        sync.Mutex
	customers map[string]*domain.Customer
	nextID    int
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{customers: make(map[string]*domain.Customer)}
}

func (r *stubCustomerRepo) Create(_ context.Context, c *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.customers {
		if existing.Email == c.Email {
			return domain.ErrCustomerExists
		}
	}
	r.nextID++
	c.ID = fmt.Sprintf("c%d", r.nextID)
	clone := *c
	r.customers[c.ID] = &clone
	return nil
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id string) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubCustomerRepo) FindAll(_ context.Context) ([]*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		clone := *c
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubCustomerRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubCustomerRepo) Update(_ context.Context, c *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.customers[c.ID]; !ok {
		return domain.ErrCustomerNotFound
	}
	clone := *c
	r.customers[c.ID] = &clone
	return nil
}

func (r *stubCustomerRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.customers[id]; !ok {
		return domain.ErrCustomerNotFound
	}
	delete(r.customers, id)
	return nil
}

func (r *stubCustomerRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.customers)), nil
}

type stubInteractionRepo struct {
	mu           sync.Mutex
	interactions map[string]*domain.Interaction
	nextID       int
	findAllCalls int
}

func newStubInteractionRepo() *stubInteractionRepo {
	return &stubInteractionRepo{interactions: make(map[string]*domain.Interaction)}
}

func (r *stubInteractionRepo) Create(_ context.Context, i *domain.Interaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	i.ID = fmt.Sprintf("i%d", r.nextID)
	clone := *i
	r.interactions[i.ID] = &clone
	return nil
}

func (r *stubInteractionRepo) FindByID(_ context.Context, id string) (*domain.Interaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.interactions[id]
	if !ok {
		return nil, domain.ErrInteractionNotFound
	}
	clone := *i
	return &clone, nil
}

func (r *stubInteractionRepo) filter(keep func(*domain.Interaction) bool) []*domain.Interaction {
	out := make([]*domain.Interaction, 0)
	for _, i := range r.interactions {
		if keep(i) {
			clone := *i
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

func (r *stubInteractionRepo) FindByCustomerID(_ context.Context, customerID string) ([]*domain.Interaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(i *domain.Interaction) bool { return i.CustomerID == customerID }), nil
}

func (r *stubInteractionRepo) FindAll(_ context.Context) ([]*domain.Interaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findAllCalls++
	return r.filter(func(*domain.Interaction) bool { return true }), nil
}

func (r *stubInteractionRepo) Update(_ context.Context, i *domain.Interaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.interactions[i.ID]; !ok {
		return domain.ErrInteractionNotFound
	}
	clone := *i
	r.interactions[i.ID] = &clone
	return nil
}

func (r *stubInteractionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.interactions[id]; !ok {
		return domain.ErrInteractionNotFound
	}
	delete(r.interactions, id)
	return nil
}

func (r *stubInteractionRepo) DeleteByCustomerID(_ context.Context, customerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, i := range r.interactions {
		if i.CustomerID == customerID {
			delete(r.interactions, id)
			n++
		}
	}
	return n, nil
}

func (r *stubInteractionRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.interactions)), nil
}

func (r *stubInteractionRepo) CountByStatus(_ context.Context, status domain.InteractionStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, i := range r.interactions {
		if i.Status == status {
			n++
		}
	}
	return n, nil
}
