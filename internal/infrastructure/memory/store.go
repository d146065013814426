// Package memory implementa los puertos de persistencia sobre mapas en
// memoria, con la misma semántica observable que los adaptadores de
// PostgreSQL (unicidad de código, cantidad nunca negativa, rollback ante
// error). Lo usan los tests del motor de diálogo y del caso de uso de stock.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-bot/internal/domain"
	"github.com/jhoicas/almacen-bot/internal/domain/entity"
	"github.com/jhoicas/almacen-bot/internal/domain/repository"
)

// Store guarda repuestos, movimientos y usuarios en memoria. Seguro para
// uso concurrente. Implementa inventory.TxRunner: las transacciones se
// serializan y ante error se restaura el estado previo, de modo que ningún
// efecto parcial resulta visible.
type Store struct {
	mu    sync.RWMutex
	txMu  sync.Mutex
	parts map[int64]*entity.Part
	movs  map[int64]*entity.Movement
	users map[int64]*entity.BotUser

	nextPartID int64
	nextMovID  int64
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{
		parts: make(map[int64]*entity.Part),
		movs:  make(map[int64]*entity.Movement),
		users: make(map[int64]*entity.BotUser),
	}
}

// Parts devuelve la vista PartRepository del almacén.
func (s *Store) Parts() repository.PartRepository { return partView{s} }

// Movements devuelve la vista MovementRepository del almacén.
func (s *Store) Movements() repository.MovementRepository { return movementView{s} }

// Users devuelve la vista UserRepository del almacén.
func (s *Store) Users() repository.UserRepository { return userView{s} }

// Run serializa la "transacción", ejecuta fn y, si devuelve error, restaura
// el estado anterior completo.
func (s *Store) Run(ctx context.Context, fn func(
	parts repository.PartRepository,
	movements repository.MovementRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snapParts, snapMovs, snapPartID, snapMovID := s.snapshot()
	if err := fn(partView{s}, movementView{s}); err != nil {
		s.restore(snapParts, snapMovs, snapPartID, snapMovID)
		return err
	}
	return nil
}

// RunSnapshot versión en memoria de la transacción de solo lectura que usa
// el servicio de copias.
func (s *Store) RunSnapshot(ctx context.Context, fn func(
	parts repository.PartRepository,
	movements repository.MovementRepository,
	users repository.UserRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(partView{s}, movementView{s}, userView{s})
}

func (s *Store) snapshot() (map[int64]*entity.Part, map[int64]*entity.Movement, int64, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	parts := make(map[int64]*entity.Part, len(s.parts))
	for id, p := range s.parts {
		cp := *p
		parts[id] = &cp
	}
	movs := make(map[int64]*entity.Movement, len(s.movs))
	for id, m := range s.movs {
		cm := *m
		movs[id] = &cm
	}
	return parts, movs, s.nextPartID, s.nextMovID
}

func (s *Store) restore(parts map[int64]*entity.Part, movs map[int64]*entity.Movement, nextPartID, nextMovID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parts = parts
	s.movs = movs
	s.nextPartID = nextPartID
	s.nextMovID = nextMovID
}

// --- vista PartRepository ---

type partView struct{ s *Store }

var _ repository.PartRepository = partView{}

func (v partView) Create(ctx context.Context, part *entity.Part) error {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.parts {
		if p.Code == part.Code {
			return domain.ErrDuplicate
		}
	}
	if part.Quantity < 0 || part.MinStock < 0 {
		return domain.ErrInvalidInput
	}
	s.nextPartID++
	part.ID = s.nextPartID
	now := time.Now()
	part.CreatedAt = now
	part.UpdatedAt = now
	cp := *part
	s.parts[part.ID] = &cp
	return nil
}

func (v partView) GetByID(ctx context.Context, id int64) (*entity.Part, error) {
	s := v.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.parts[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (v partView) GetByCode(ctx context.Context, code string) (*entity.Part, error) {
	s := v.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.parts {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (v partView) GetByCodeForUpdate(ctx context.Context, code string) (*entity.Part, error) {
	return v.GetByCode(ctx, code)
}

func (v partView) GetByIDForUpdate(ctx context.Context, id int64) (*entity.Part, error) {
	return v.GetByID(ctx, id)
}

func (v partView) UpdateField(ctx context.Context, id int64, field string, value any) error {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.parts[id]
	if !ok {
		return domain.ErrNotFound
	}
	switch field {
	case entity.PartFieldName:
		p.Name = value.(string)
	case entity.PartFieldCode:
		code := value.(string)
		for otherID, other := range s.parts {
			if otherID != id && other.Code == code {
				return domain.ErrDuplicate
			}
		}
		p.Code = code
	case entity.PartFieldUnit:
		p.Unit = value.(string)
	case entity.PartFieldLocation:
		p.Location = value.(string)
	case entity.PartFieldPrice:
		// el flujo de edición entrega decimal ya parseado
		if err := assignPrice(p, value); err != nil {
			return err
		}
	case entity.PartFieldMinStock:
		n, ok := value.(int64)
		if !ok || n < 0 {
			return domain.ErrInvalidInput
		}
		p.MinStock = n
	case entity.PartFieldQuantity:
		n, ok := value.(int64)
		if !ok || n < 0 {
			return domain.ErrInvalidInput
		}
		p.Quantity = n
	default:
		return domain.ErrInvalidInput
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (v partView) SetQuantity(ctx context.Context, id int64, quantity int64) error {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.parts[id]
	if !ok {
		return domain.ErrNotFound
	}
	if quantity < 0 {
		return domain.ErrInvalidInput
	}
	p.Quantity = quantity
	p.UpdatedAt = time.Now()
	return nil
}

func (v partView) Search(ctx context.Context, term string) ([]*entity.Part, error) {
	s := v.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	lower := strings.ToLower(term)
	var out []*entity.Part
	for _, p := range s.parts {
		if strings.Contains(strings.ToLower(p.Name), lower) ||
			strings.Contains(strings.ToLower(p.Code), lower) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (v partView) List(ctx context.Context, offset, limit int) ([]*entity.Part, error) {
	s := v.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]*entity.Part, 0, len(s.parts))
	for _, p := range s.parts {
		cp := *p
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (v partView) Count(ctx context.Context) (int64, error) {
	s := v.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.parts)), nil
}

func (v partView) LowStock(ctx context.Context) ([]*entity.Part, error) {
	s := v.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.Part
	for _, p := range s.parts {
		if p.Quantity <= p.MinStock {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Quantity < out[j].Quantity })
	return out, nil
}

func (v partView) Totals(ctx context.Context) (int64, int64, error) {
	s := v.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, p := range s.parts {
		total += p.Quantity
	}
	return int64(len(s.parts)), total, nil
}

func (v partView) Delete(ctx context.Context, id int64) error {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.parts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.parts, id)
	return nil
}

func assignPrice(p *entity.Part, value any) error {
	switch v := value.(type) {
	case decimal.Decimal:
		if v.IsNegative() {
			return domain.ErrInvalidInput
		}
		p.Price = v
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() {
			return domain.ErrInvalidInput
		}
		p.Price = d
	default:
		return domain.ErrInvalidInput
	}
	return nil
}

// --- vista MovementRepository ---

type movementView struct{ s *Store }

var _ repository.MovementRepository = movementView{}

func (v movementView) Create(ctx context.Context, m *entity.Movement) error {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.parts[m.PartID]; !ok {
		return domain.ErrNotFound
	}
	if m.Amount <= 0 {
		return domain.ErrInvalidInput
	}
	if m.TransactionID == "" {
		m.TransactionID = uuid.New().String()
	}
	s.nextMovID++
	m.ID = s.nextMovID
	m.CreatedAt = time.Now()
	cm := *m
	s.movs[m.ID] = &cm
	return nil
}

func (v movementView) GetByID(ctx context.Context, id int64) (*entity.Movement, error) {
	s := v.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.movs[id]; ok {
		cm := *m
		return &cm, nil
	}
	return nil, nil
}

func (v movementView) ListByPart(ctx context.Context, partID int64, limit, offset int) ([]*entity.Movement, error) {
	s := v.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*entity.Movement
	for _, m := range s.movs {
		if m.PartID == partID {
			cm := *m
			out = append(out, &cm)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (v movementView) List(ctx context.Context, limit, offset int) ([]*entity.Movement, error) {
	s := v.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Movement, 0, len(s.movs))
	for _, m := range s.movs {
		cm := *m
		out = append(out, &cm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (v movementView) DeleteByPart(ctx context.Context, partID int64) (int64, error) {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, m := range s.movs {
		if m.PartID == partID {
			delete(s.movs, id)
			n++
		}
	}
	return n, nil
}

func (v movementView) Count(ctx context.Context) (int64, error) {
	s := v.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.movs)), nil
}

// --- vista UserRepository ---

type userView struct{ s *Store }

var _ repository.UserRepository = userView{}

func (v userView) Upsert(ctx context.Context, user *entity.BotUser) error {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	cu := *user
	if cu.CreatedAt.IsZero() {
		cu.CreatedAt = time.Now()
	}
	s.users[user.TelegramID] = &cu
	return nil
}

func (v userView) Delete(ctx context.Context, telegramID int64) error {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, telegramID)
	return nil
}

func (v userView) List(ctx context.Context) ([]*entity.BotUser, error) {
	s := v.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.BotUser, 0, len(s.users))
	for _, u := range s.users {
		cu := *u
		out = append(out, &cu)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TelegramID < out[j].TelegramID })
	return out, nil
}

func (v userView) Count(ctx context.Context) (int64, error) {
	s := v.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}
