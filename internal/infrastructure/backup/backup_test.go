package backup_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-bot/internal/application/inventory"
	"github.com/jhoicas/almacen-bot/internal/infrastructure/backup"
	"github.com/jhoicas/almacen-bot/internal/infrastructure/memory"
	"github.com/jhoicas/almacen-bot/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "development", Level: "error"})
}

func TestSnapshotVuelcaElContenido(t *testing.T) {
	store := memory.NewStore()
	uc := inventory.NewStockUseCase(store, store.Parts(), store.Movements())
	ctx := context.Background()

	_, err := uc.CreatePart(ctx, inventory.CreatePartInput{Code: "B-100", Name: "Rodamiento", Quantity: 10})
	require.NoError(t, err)
	_, err = uc.RegisterOutgoing(ctx, inventory.MovementInput{Code: "B-100", Amount: 2})
	require.NoError(t, err)

	dir := t.TempDir()
	svc := backup.NewService(store, dir, 10, testLogger())

	info, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Positive(t, info.Size)
	assert.FileExists(t, info.Path)

	// el volcado es JSON válido con repuestos y movimientos
	data, err := os.ReadFile(info.Path)
	require.NoError(t, err)
	var dump struct {
		Parts     []json.RawMessage `json:"parts"`
		Movements []json.RawMessage `json:"movements"`
	}
	require.NoError(t, json.Unmarshal(data, &dump))
	assert.Len(t, dump.Parts, 1)
	assert.Len(t, dump.Movements, 2, "alta inicial y salida")
}

func TestLaPurgaConservaLasMasRecientes(t *testing.T) {
	store := memory.NewStore()
	dir := t.TempDir()

	// copias antiguas pre-existentes, nombradas con timestamps crecientes
	old := []string{
		"almacen_backup_20260101_000000.json",
		"almacen_backup_20260102_000000.json",
		"almacen_backup_20260103_000000.json",
	}
	for _, name := range old {
		require.NoError(t, os.WriteFile(dir+"/"+name, []byte("{}"), 0o644))
	}

	svc := backup.NewService(store, dir, 3, testLogger())
	_, err := svc.Snapshot(context.Background())
	require.NoError(t, err)

	// con retención 3, la nueva copia expulsa a la más antigua
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	for _, e := range entries {
		assert.NotEqual(t, "almacen_backup_20260101_000000.json", e.Name(), "la más antigua debe purgarse")
	}
}

func TestStatusResumeLasCopias(t *testing.T) {
	store := memory.NewStore()
	dir := t.TempDir()
	svc := backup.NewService(store, dir, 10, testLogger())

	st, err := svc.Status()
	require.NoError(t, err)
	assert.Zero(t, st.Count, "directorio vacío")

	_, err = svc.Snapshot(context.Background())
	require.NoError(t, err)

	st, err = svc.Status()
	require.NoError(t, err)
	assert.Equal(t, 1, st.Count)
	assert.Positive(t, st.TotalSize)
	assert.False(t, st.Newest.IsZero())
}
