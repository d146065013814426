package inventory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-bot/internal/application/inventory"
	"github.com/jhoicas/almacen-bot/internal/domain"
	"github.com/jhoicas/almacen-bot/internal/domain/entity"
	"github.com/jhoicas/almacen-bot/internal/infrastructure/memory"
)

func newUseCase() (*inventory.StockUseCase, *memory.Store) {
	store := memory.NewStore()
	uc := inventory.NewStockUseCase(store, store.Parts(), store.Movements())
	return uc, store
}

func TestCreatePartConMovimientoInicial(t *testing.T) {
	uc, store := newUseCase()
	ctx := context.Background()

	part, err := uc.CreatePart(ctx, inventory.CreatePartInput{
		Code: "B-100", Name: "Rodamiento B-100", Quantity: 20, Unit: "ud.", MinStock: 5, By: 42,
	})
	require.NoError(t, err)
	require.NotZero(t, part.ID, "el alta debe asignar ID")
	assert.Equal(t, int64(20), part.Quantity)

	// la cantidad inicial positiva deja un movimiento de entrada
	movs, err := store.Movements().ListByPart(ctx, part.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, movs, 1, "debe existir el movimiento de alta inicial")
	assert.Equal(t, entity.MovementIncoming, movs[0].Kind)
	assert.Equal(t, int64(20), movs[0].Amount)
	assert.Equal(t, int64(42), movs[0].CreatedBy)
	assert.NotEmpty(t, movs[0].TransactionID)
}

func TestCreatePartSinCantidadNoRegistraMovimiento(t *testing.T) {
	uc, store := newUseCase()
	ctx := context.Background()

	part, err := uc.CreatePart(ctx, inventory.CreatePartInput{Code: "X-1", Name: "Junta", Quantity: 0})
	require.NoError(t, err)

	movs, err := store.Movements().ListByPart(ctx, part.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, movs, "cantidad cero no debe generar movimiento")
	assert.Equal(t, "ud.", part.Unit, "unidad por defecto")
}

func TestCreatePartCodigoDuplicadoEsAtomico(t *testing.T) {
	uc, store := newUseCase()
	ctx := context.Background()

	_, err := uc.CreatePart(ctx, inventory.CreatePartInput{Code: "B-100", Name: "Rodamiento", Quantity: 5})
	require.NoError(t, err)

	_, err = uc.CreatePart(ctx, inventory.CreatePartInput{Code: "B-100", Name: "Otro", Quantity: 9})
	require.ErrorIs(t, err, domain.ErrDuplicate)

	// el alta fallida no debe dejar ni repuesto ni movimiento
	count, err := store.Parts().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	total, err := store.Movements().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total, "solo el movimiento del primer alta")
}

func TestEntradaYSalidaActualizanSaldo(t *testing.T) {
	uc, _ := newUseCase()
	ctx := context.Background()

	_, err := uc.CreatePart(ctx, inventory.CreatePartInput{Code: "B-100", Name: "Rodamiento", Quantity: 10})
	require.NoError(t, err)

	part, err := uc.RegisterIncoming(ctx, inventory.MovementInput{Code: "B-100", Amount: 15, DocumentRef: "ALB-77"})
	require.NoError(t, err)
	assert.Equal(t, int64(25), part.Quantity)

	part, err = uc.RegisterOutgoing(ctx, inventory.MovementInput{Code: "B-100", Amount: 7})
	require.NoError(t, err)
	assert.Equal(t, int64(18), part.Quantity)
}

func TestSalidaSinSaldoDevuelveCifrasYNoMuta(t *testing.T) {
	uc, store := newUseCase()
	ctx := context.Background()

	_, err := uc.CreatePart(ctx, inventory.CreatePartInput{Code: "B-100", Name: "Rodamiento", Quantity: 3})
	require.NoError(t, err)

	_, err = uc.RegisterOutgoing(ctx, inventory.MovementInput{Code: "B-100", Amount: 10})
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var shortage *domain.StockShortage
	require.ErrorAs(t, err, &shortage)
	assert.Equal(t, int64(3), shortage.Available)
	assert.Equal(t, int64(10), shortage.Requested)

	// nada cambió
	part, err := uc.GetPartByCode(ctx, "B-100")
	require.NoError(t, err)
	assert.Equal(t, int64(3), part.Quantity)
	total, err := store.Movements().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total, "la salida rechazada no deja movimiento")
}

func TestMovimientoSobreCodigoInexistente(t *testing.T) {
	uc, _ := newUseCase()
	ctx := context.Background()

	_, err := uc.RegisterIncoming(ctx, inventory.MovementInput{Code: "NADA", Amount: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.RegisterOutgoing(ctx, inventory.MovementInput{Code: "NADA", Amount: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEditarCantidadRegistraMovimientoDerivado(t *testing.T) {
	uc, store := newUseCase()
	ctx := context.Background()

	created, err := uc.CreatePart(ctx, inventory.CreatePartInput{Code: "B-100", Name: "Rodamiento", Quantity: 10})
	require.NoError(t, err)

	// bajar de 10 a 4: salida derivada de 6, sin pasar por la guarda de saldo
	part, err := uc.UpdatePartField(ctx, created.ID, entity.PartFieldQuantity, int64(4), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(4), part.Quantity)

	movs, err := store.Movements().ListByPart(ctx, created.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementOutgoing, movs[0].Kind, "el ajuste más reciente primero")
	assert.Equal(t, int64(6), movs[0].Amount)

	// mismo valor: delta cero, sin movimiento nuevo
	_, err = uc.UpdatePartField(ctx, created.ID, entity.PartFieldQuantity, int64(4), 42)
	require.NoError(t, err)
	movs, err = store.Movements().ListByPart(ctx, created.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, movs, 2)

	// negativa: rechazada
	_, err = uc.UpdatePartField(ctx, created.ID, entity.PartFieldQuantity, int64(-1), 42)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEditarCodigoColisionaConExistente(t *testing.T) {
	uc, _ := newUseCase()
	ctx := context.Background()

	_, err := uc.CreatePart(ctx, inventory.CreatePartInput{Code: "A-1", Name: "Uno"})
	require.NoError(t, err)
	second, err := uc.CreatePart(ctx, inventory.CreatePartInput{Code: "A-2", Name: "Dos"})
	require.NoError(t, err)

	_, err = uc.UpdatePartField(ctx, second.ID, entity.PartFieldCode, "A-1", 42)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	// y sobre un id inexistente, not found
	_, err = uc.UpdatePartField(ctx, 9999, entity.PartFieldName, "Nadie", 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBorradoEnCascada(t *testing.T) {
	uc, store := newUseCase()
	ctx := context.Background()

	part, err := uc.CreatePart(ctx, inventory.CreatePartInput{Code: "B-100", Name: "Rodamiento", Quantity: 10})
	require.NoError(t, err)
	_, err = uc.RegisterOutgoing(ctx, inventory.MovementInput{Code: "B-100", Amount: 2})
	require.NoError(t, err)

	movs, err := store.Movements().ListByPart(ctx, part.ID, 10, 0)
	require.NoError(t, err)
	movID := movs[0].ID

	removed, err := uc.DeletePart(ctx, part.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed, "alta inicial + salida")

	_, err = uc.GetPartByCode(ctx, "B-100")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	gone, err := store.Movements().GetByID(ctx, movID)
	require.NoError(t, err)
	assert.Nil(t, gone, "los movimientos caen con el repuesto")
}

// El saldo final debe coincidir con la reconstrucción del libro: cantidad
// inicial más entradas menos salidas.
func TestSaldoCoincideConElLibroDeMovimientos(t *testing.T) {
	uc, store := newUseCase()
	ctx := context.Background()

	part, err := uc.CreatePart(ctx, inventory.CreatePartInput{Code: "B-100", Name: "Rodamiento", Quantity: 50})
	require.NoError(t, err)

	ops := []struct {
		incoming bool
		amount   int64
	}{
		{true, 10}, {false, 25}, {true, 3}, {false, 8}, {true, 40}, {false, 1},
	}
	for _, op := range ops {
		input := inventory.MovementInput{Code: "B-100", Amount: op.amount}
		if op.incoming {
			_, err = uc.RegisterIncoming(ctx, input)
		} else {
			_, err = uc.RegisterOutgoing(ctx, input)
		}
		require.NoError(t, err)
	}

	movs, err := store.Movements().ListByPart(ctx, part.ID, 100, 0)
	require.NoError(t, err)
	var ledger int64
	for _, m := range movs {
		if m.Kind == entity.MovementIncoming {
			ledger += m.Amount
		} else {
			ledger -= m.Amount
		}
	}

	current, err := uc.GetPartByCode(ctx, "B-100")
	require.NoError(t, err)
	assert.Equal(t, ledger, current.Quantity, "el saldo debe ser reconstruible desde el libro")
}

func TestSalidasConcurrentesNuncaDejanSaldoNegativo(t *testing.T) {
	uc, _ := newUseCase()
	ctx := context.Background()

	_, err := uc.CreatePart(ctx, inventory.CreatePartInput{Code: "B-100", Name: "Rodamiento", Quantity: 10})
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	var okCount int64
	var mu sync.Mutex
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := uc.RegisterOutgoing(ctx, inventory.MovementInput{Code: "B-100", Amount: 1}); err == nil {
				mu.Lock()
				okCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	part, err := uc.GetPartByCode(ctx, "B-100")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, part.Quantity, int64(0), "el saldo nunca baja de cero")
	assert.Equal(t, int64(10)-okCount, part.Quantity, "cada salida aceptada resta exactamente una unidad")
}

func TestListadoInformeYTotales(t *testing.T) {
	uc, _ := newUseCase()
	ctx := context.Background()

	_, err := uc.CreatePart(ctx, inventory.CreatePartInput{Code: "A-1", Name: "Aceite", Quantity: 2, MinStock: 5})
	require.NoError(t, err)
	_, err = uc.CreatePart(ctx, inventory.CreatePartInput{Code: "B-1", Name: "Bujía", Quantity: 30, MinStock: 5})
	require.NoError(t, err)
	_, err = uc.CreatePart(ctx, inventory.CreatePartInput{Code: "C-1", Name: "Correa", Quantity: 5, MinStock: 5})
	require.NoError(t, err)

	parts, total, err := uc.ListParts(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, parts, 2)
	assert.Equal(t, "Aceite", parts[0].Name, "orden alfabético")

	low, err := uc.LowStockReport(ctx)
	require.NoError(t, err)
	require.Len(t, low, 2, "en o bajo el mínimo: Aceite y Correa")

	results, err := uc.SearchParts(ctx, "ace")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Aceite", results[0].Name)

	totals, err := uc.GetTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), totals.Parts)
	assert.Equal(t, int64(37), totals.TotalQuantity)
	assert.Equal(t, int64(3), totals.Movements, "un alta inicial por repuesto con cantidad")
}
