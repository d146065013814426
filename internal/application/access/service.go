// Package access gestiona quién puede hablar con el bot: una lista de
// usuarios permitidos en memoria, respaldada en archivo y reflejada en la
// tabla bot_users para los contadores de estado.
package access

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/almacen-bot/internal/domain"
	"github.com/jhoicas/almacen-bot/internal/domain/entity"
	"github.com/jhoicas/almacen-bot/internal/domain/repository"
)

// Service decide el acceso y administra la lista. El administrador se fija
// al arrancar y no puede eliminarse nunca.
type Service struct {
	mu      sync.RWMutex
	adminID int64
	allowed map[int64]string // id -> nombre visible

	store AllowlistStore
	users repository.UserRepository
}

// NewService carga la lista persistida y garantiza que el administrador
// figura en ella.
func NewService(ctx context.Context, adminID int64, store AllowlistStore, users repository.UserRepository) (*Service, error) {
	allowed, err := store.Load()
	if err != nil {
		return nil, err
	}
	if _, ok := allowed[adminID]; !ok {
		allowed[adminID] = "admin"
		if err := store.Save(allowed); err != nil {
			return nil, err
		}
	}
	s := &Service{adminID: adminID, allowed: allowed, store: store, users: users}
	for id, name := range allowed {
		if err := s.mirror(ctx, id, name); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Allowed indica si el usuario puede usar el bot.
func (s *Service) Allowed(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.allowed[id]
	return ok
}

// IsAdmin indica si el usuario es el administrador configurado.
func (s *Service) IsAdmin(id int64) bool {
	return id == s.adminID
}

// Add incorpora un usuario. domain.ErrUserExists si ya figura.
func (s *Service) Add(ctx context.Context, id int64, name string) error {
	s.mu.Lock()
	if _, ok := s.allowed[id]; ok {
		s.mu.Unlock()
		return domain.ErrUserExists
	}
	s.allowed[id] = name
	snapshot := s.copyLocked()
	s.mu.Unlock()

	if err := s.store.Save(snapshot); err != nil {
		return err
	}
	return s.mirror(ctx, id, name)
}

// Remove elimina un usuario. El administrador devuelve
// domain.ErrAdminImmutable; un id desconocido, domain.ErrUserNotFound.
func (s *Service) Remove(ctx context.Context, id int64) error {
	if id == s.adminID {
		return domain.ErrAdminImmutable
	}
	s.mu.Lock()
	if _, ok := s.allowed[id]; !ok {
		s.mu.Unlock()
		return domain.ErrUserNotFound
	}
	delete(s.allowed, id)
	snapshot := s.copyLocked()
	s.mu.Unlock()

	if err := s.store.Save(snapshot); err != nil {
		return err
	}
	return s.users.Delete(ctx, id)
}

// Rename actualiza el nombre visible cuando Telegram entrega uno más
// reciente (se refresca en cada mensaje del usuario).
func (s *Service) Rename(ctx context.Context, id int64, name string) error {
	s.mu.Lock()
	current, ok := s.allowed[id]
	if !ok || current == name || name == "" {
		s.mu.Unlock()
		return nil
	}
	s.allowed[id] = name
	snapshot := s.copyLocked()
	s.mu.Unlock()

	if err := s.store.Save(snapshot); err != nil {
		return err
	}
	return s.mirror(ctx, id, name)
}

// List devuelve los usuarios permitidos ordenados por id, admin incluido.
func (s *Service) List() []*entity.BotUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.BotUser, 0, len(s.allowed))
	for id, name := range s.allowed {
		role := entity.RoleUser
		if id == s.adminID {
			role = entity.RoleAdmin
		}
		out = append(out, &entity.BotUser{TelegramID: id, DisplayName: name, Role: role})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TelegramID < out[j].TelegramID })
	return out
}

// Removable devuelve los usuarios que el administrador puede eliminar.
func (s *Service) Removable() []*entity.BotUser {
	all := s.List()
	out := all[:0]
	for _, u := range all {
		if u.Role != entity.RoleAdmin {
			out = append(out, u)
		}
	}
	return out
}

func (s *Service) copyLocked() map[int64]string {
	cp := make(map[int64]string, len(s.allowed))
	for id, name := range s.allowed {
		cp[id] = name
	}
	return cp
}

func (s *Service) mirror(ctx context.Context, id int64, name string) error {
	role := entity.RoleUser
	if id == s.adminID {
		role = entity.RoleAdmin
	}
	return s.users.Upsert(ctx, &entity.BotUser{TelegramID: id, DisplayName: name, Role: role})
}
