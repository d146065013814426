package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-bot/internal/domain"
	"github.com/jhoicas/almacen-bot/internal/domain/entity"
	"github.com/jhoicas/almacen-bot/internal/domain/repository"
)

// TxRunner abre una transacción y ejecuta el callback con repositorios
// atados a ella (Commit si devuelve nil, Rollback si no).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		parts repository.PartRepository,
		movements repository.MovementRepository,
	) error) error
}

// StockUseCase es el motor de transacciones del almacén: altas, ajustes de
// cantidad con bloqueo de fila, ediciones de campo, borrado en cascada y
// consultas. Toda mutación es atómica: o se ve el efecto completo (fila de
// repuesto + movimiento cuando aplica) o ninguno.
type StockUseCase struct {
	tx        TxRunner
	parts     repository.PartRepository
	movements repository.MovementRepository
}

// NewStockUseCase construye el caso de uso. parts y movements deben estar
// atados al pool (lecturas fuera de transacción).
func NewStockUseCase(tx TxRunner, parts repository.PartRepository, movements repository.MovementRepository) *StockUseCase {
	return &StockUseCase{tx: tx, parts: parts, movements: movements}
}

// CreatePartInput datos del alta de un repuesto.
type CreatePartInput struct {
	Code     string
	Name     string
	Quantity int64
	Unit     string
	MinStock int64
	By       int64 // id de Telegram del operador
}

// Totals agregados para el informe y /status.
type Totals struct {
	Parts         int64
	TotalQuantity int64
	Movements     int64
}

// CreatePart da de alta un repuesto. Si la cantidad inicial es positiva,
// registra además un movimiento de entrada en la misma transacción. Código
// duplicado devuelve domain.ErrDuplicate sin efecto alguno (la unicidad la
// impone el constraint, no una comprobación previa).
func (uc *StockUseCase) CreatePart(ctx context.Context, input CreatePartInput) (*entity.Part, error) {
	if input.Code == "" || input.Name == "" || input.Quantity < 0 || input.MinStock < 0 {
		return nil, domain.ErrInvalidInput
	}
	unit := input.Unit
	if unit == "" {
		unit = "ud."
	}
	part := &entity.Part{
		Code:     input.Code,
		Name:     input.Name,
		Quantity: input.Quantity,
		Unit:     unit,
		Price:    decimal.Zero,
		Location: "almacén",
		MinStock: input.MinStock,
	}
	err := uc.tx.Run(ctx, func(parts repository.PartRepository, movements repository.MovementRepository) error {
		if err := parts.Create(ctx, part); err != nil {
			return err
		}
		if input.Quantity > 0 {
			return movements.Create(ctx, &entity.Movement{
				TransactionID: uuid.New().String(),
				PartID:        part.ID,
				Kind:          entity.MovementIncoming,
				Amount:        input.Quantity,
				Note:          "alta inicial",
				CreatedBy:     input.By,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return part, nil
}

// GetPartByCode resuelve un repuesto por código. domain.ErrNotFound si no existe.
func (uc *StockUseCase) GetPartByCode(ctx context.Context, code string) (*entity.Part, error) {
	part, err := uc.parts.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if part == nil {
		return nil, domain.ErrNotFound
	}
	return part, nil
}

// MovementInput datos de una entrada o salida de stock.
type MovementInput struct {
	Code        string
	Amount      int64 // magnitud, > 0
	DocumentRef string
	Note        string
	By          int64
}

// RegisterIncoming suma stock y registra el movimiento de entrada.
func (uc *StockUseCase) RegisterIncoming(ctx context.Context, input MovementInput) (*entity.Part, error) {
	return uc.adjust(ctx, input, entity.MovementIncoming)
}

// RegisterOutgoing resta stock y registra el movimiento de salida. Si la
// cantidad solicitada supera el saldo devuelve *domain.StockShortage con las
// cifras y no muta nada.
func (uc *StockUseCase) RegisterOutgoing(ctx context.Context, input MovementInput) (*entity.Part, error) {
	return uc.adjust(ctx, input, entity.MovementOutgoing)
}

// adjust bloquea la fila del repuesto (SELECT FOR UPDATE), valida el saldo
// para salidas y escribe fila de repuesto + movimiento en una transacción.
func (uc *StockUseCase) adjust(ctx context.Context, input MovementInput, kind string) (*entity.Part, error) {
	if input.Amount <= 0 {
		return nil, domain.ErrInvalidInput
	}
	var result *entity.Part
	err := uc.tx.Run(ctx, func(parts repository.PartRepository, movements repository.MovementRepository) error {
		part, err := parts.GetByCodeForUpdate(ctx, input.Code)
		if err != nil {
			return err
		}
		if part == nil {
			return domain.ErrNotFound
		}
		newQuantity := part.Quantity + input.Amount
		if kind == entity.MovementOutgoing {
			if part.Quantity < input.Amount {
				return &domain.StockShortage{Available: part.Quantity, Requested: input.Amount}
			}
			newQuantity = part.Quantity - input.Amount
		}
		if err := parts.SetQuantity(ctx, part.ID, newQuantity); err != nil {
			return err
		}
		if err := movements.Create(ctx, &entity.Movement{
			TransactionID: uuid.New().String(),
			PartID:        part.ID,
			Kind:          kind,
			Amount:        input.Amount,
			DocumentRef:   input.DocumentRef,
			Note:          input.Note,
			CreatedBy:     input.By,
		}); err != nil {
			return err
		}
		part.Quantity = newQuantity
		result = part
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdatePartField edita un solo campo. Para el campo cantidad calcula el
// delta frente al valor anterior y, si no es cero, registra el movimiento
// derivado. Esta es la única vía, además de entrada/salida, que produce un
// movimiento — y salta a propósito la comprobación de saldo: una edición
// puede fijar cualquier valor no negativo (corrección manual).
func (uc *StockUseCase) UpdatePartField(ctx context.Context, id int64, field string, value any, by int64) (*entity.Part, error) {
	var result *entity.Part
	err := uc.tx.Run(ctx, func(parts repository.PartRepository, movements repository.MovementRepository) error {
		part, err := parts.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if part == nil {
			return domain.ErrNotFound
		}

		if field == entity.PartFieldQuantity {
			newQuantity, ok := value.(int64)
			if !ok || newQuantity < 0 {
				return domain.ErrInvalidInput
			}
			delta := newQuantity - part.Quantity
			if err := parts.SetQuantity(ctx, part.ID, newQuantity); err != nil {
				return err
			}
			if delta != 0 {
				kind := entity.MovementIncoming
				amount := delta
				if delta < 0 {
					kind = entity.MovementOutgoing
					amount = -delta
				}
				if err := movements.Create(ctx, &entity.Movement{
					TransactionID: uuid.New().String(),
					PartID:        part.ID,
					Kind:          kind,
					Amount:        amount,
					Note:          "corrección manual",
					CreatedBy:     by,
				}); err != nil {
					return err
				}
			}
			part.Quantity = newQuantity
			result = part
			return nil
		}

		if field == entity.PartFieldMinStock {
			if v, ok := value.(int64); !ok || v < 0 {
				return domain.ErrInvalidInput
			}
		}
		if err := parts.UpdateField(ctx, part.ID, field, value); err != nil {
			return err
		}
		updated, err := parts.GetByID(ctx, part.ID)
		if err != nil {
			return err
		}
		result = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeletePart elimina movimientos y repuesto en una única transacción y
// devuelve cuántos movimientos cayeron en la cascada.
func (uc *StockUseCase) DeletePart(ctx context.Context, id int64) (int64, error) {
	var removed int64
	err := uc.tx.Run(ctx, func(parts repository.PartRepository, movements repository.MovementRepository) error {
		n, err := movements.DeleteByPart(ctx, id)
		if err != nil {
			return err
		}
		removed = n
		return parts.Delete(ctx, id)
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// SearchParts busca por subcadena en nombre o código.
func (uc *StockUseCase) SearchParts(ctx context.Context, term string) ([]*entity.Part, error) {
	return uc.parts.Search(ctx, term)
}

// CountParts devuelve el número de repuestos dados de alta.
func (uc *StockUseCase) CountParts(ctx context.Context) (int64, error) {
	return uc.parts.Count(ctx)
}

// ListParts pagina ordenando por nombre y devuelve también el total.
func (uc *StockUseCase) ListParts(ctx context.Context, offset, limit int) ([]*entity.Part, int64, error) {
	total, err := uc.parts.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	parts, err := uc.parts.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return parts, total, nil
}

// LowStockReport lista repuestos en o por debajo del mínimo.
func (uc *StockUseCase) LowStockReport(ctx context.Context) ([]*entity.Part, error) {
	return uc.parts.LowStock(ctx)
}

// GetTotals agrega posiciones, cantidad total y número de movimientos.
func (uc *StockUseCase) GetTotals(ctx context.Context) (Totals, error) {
	count, quantity, err := uc.parts.Totals(ctx)
	if err != nil {
		return Totals{}, err
	}
	movs, err := uc.movements.Count(ctx)
	if err != nil {
		return Totals{}, err
	}
	return Totals{Parts: count, TotalQuantity: quantity, Movements: movs}, nil
}
