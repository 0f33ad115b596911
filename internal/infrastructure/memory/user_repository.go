package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo usuarios en memoria, indexados por email en minúsculas.
type UserRepo struct {
	mu      sync.RWMutex
	byID    map[string]entity.User
	byEmail map[string]string
}

// NewUserRepository crea un repositorio vacío.
func NewUserRepository() *UserRepo {
	return &UserRepo{byID: make(map[string]entity.User), byEmail: make(map[string]string)}
}

func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	email := strings.ToLower(user.Email)
	if _, ok := r.byEmail[email]; ok {
		return domain.ErrDuplicate
	}
	if _, ok := r.byID[user.ID]; ok {
		return domain.ErrDuplicate
	}
	u := *user
	u.Email = email
	r.byID[u.ID] = u
	r.byEmail[email] = u.ID
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[strings.ToLower(email)]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepo) Count(context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID), nil
}
