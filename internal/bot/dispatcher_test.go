package bot

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-bot/internal/application/access"
	"github.com/jhoicas/almacen-bot/internal/application/inventory"
	"github.com/jhoicas/almacen-bot/internal/infrastructure/backup"
	"github.com/jhoicas/almacen-bot/internal/infrastructure/memory"
	"github.com/jhoicas/almacen-bot/pkg/logger"
)

const (
	adminID = int64(1)
	userID  = int64(2)
)

type fakeBackup struct {
	info   backup.Info
	status backup.Status
	err    error
}

func (f *fakeBackup) Snapshot(ctx context.Context) (backup.Info, error) { return f.info, f.err }
func (f *fakeBackup) Status() (backup.Status, error)                    { return f.status, f.err }

func newTestDispatcher(t *testing.T) (*Dispatcher, *inventory.StockUseCase) {
	t.Helper()
	store := memory.NewStore()
	uc := inventory.NewStockUseCase(store, store.Parts(), store.Movements())

	allow := access.NewFileAllowlist(filepath.Join(t.TempDir(), "allowed_users.yaml"))
	acc, err := access.NewService(context.Background(), adminID, allow, store.Users())
	require.NoError(t, err)
	require.NoError(t, acc.Add(context.Background(), userID, "Paco"))

	log := logger.New(logger.Config{Env: "development", Level: "error"})
	return NewDispatcher(log, uc, acc, &fakeBackup{}, 10), uc
}

func send(d *Dispatcher, from int64, text string) Reply {
	return d.Handle(context.Background(), from, "Probador", text)
}

func TestMensajeDeUsuarioNoAutorizado(t *testing.T) {
	d, _ := newTestDispatcher(t)
	r := send(d, 999, "/start")
	assert.Contains(t, r.Text, "⛔", "el desconocido recibe la denegación")
	assert.Nil(t, r.Keyboard, "sin teclado para usuarios sin acceso")
}

func TestStartMuestraElMenuSegunRol(t *testing.T) {
	d, _ := newTestDispatcher(t)

	admin := send(d, adminID, "/start")
	assert.Contains(t, admin.Keyboard, []string{btnUsers, btnBackups}, "el administrador ve la fila de gestión")

	normal := send(d, userID, "/start")
	assert.NotContains(t, normal.Keyboard, []string{btnUsers, btnBackups})
}

func TestTextoDesconocidoEnReposo(t *testing.T) {
	d, _ := newTestDispatcher(t)
	r := send(d, userID, "hola qué tal")
	assert.Contains(t, r.Text, "/help")
}

func TestCancelarSinFlujoEnCurso(t *testing.T) {
	d, _ := newTestDispatcher(t)
	r := send(d, userID, btnCancel)
	assert.Contains(t, r.Text, "ninguna operación")
	assert.True(t, d.sessions.Get(userID).Idle())
}

// La cancelación universal debe funcionar desde cualquier estado no reposo.
func TestCancelarDesdeCadaFlujo(t *testing.T) {
	entries := []struct {
		from  int64
		entry string
	}{
		{userID, btnAdd},
		{userID, btnEdit},
		{userID, btnDelete},
		{userID, btnIncoming},
		{userID, btnOutgoing},
		{userID, btnSearch},
		{adminID, btnUsers},
		{adminID, btnBackups},
	}
	for _, e := range entries {
		t.Run(e.entry, func(t *testing.T) {
			d, _ := newTestDispatcher(t)
			send(d, e.from, e.entry)
			require.False(t, d.sessions.Get(e.from).Idle(), "la entrada debe abrir el flujo")

			r := send(d, e.from, btnCancel)
			assert.Contains(t, r.Text, "cancelada")
			assert.True(t, d.sessions.Get(e.from).Idle(), "cancelar siempre vuelve a reposo")
			assert.Equal(t, Draft{}, d.sessions.Get(e.from).Draft, "el borrador se descarta")
		})
	}
}

func TestGestionDeUsuariosSoloAdmin(t *testing.T) {
	d, _ := newTestDispatcher(t)
	r := send(d, userID, btnUsers)
	assert.Contains(t, r.Text, "⛔")
	assert.True(t, d.sessions.Get(userID).Idle())

	r = send(d, userID, btnBackups)
	assert.Contains(t, r.Text, "⛔")
}

func TestPaginacionConRecorte(t *testing.T) {
	d, uc := newTestDispatcher(t)
	ctx := context.Background()
	for i := 1; i <= 25; i++ {
		_, err := uc.CreatePart(ctx, inventory.CreatePartInput{
			Code: fmt.Sprintf("P-%02d", i), Name: fmt.Sprintf("Pieza %02d", i), Quantity: 1,
		})
		require.NoError(t, err)
	}

	// 25 repuestos con página de 10: 3 páginas
	r := send(d, userID, btnStock)
	assert.Contains(t, r.Text, "página 1 de 3")

	r = send(d, userID, btnNext)
	assert.Contains(t, r.Text, "página 2 de 3")
	r = send(d, userID, btnNext)
	assert.Contains(t, r.Text, "página 3 de 3")

	// pasar del final repite la última página
	r = send(d, userID, btnNext)
	assert.Contains(t, r.Text, "página 3 de 3")

	r = send(d, userID, btnPrev)
	assert.Contains(t, r.Text, "página 2 de 3")
	r = send(d, userID, btnPrev)
	assert.Contains(t, r.Text, "página 1 de 3")

	// retroceder del principio repite la primera
	r = send(d, userID, btnPrev)
	assert.Contains(t, r.Text, "página 1 de 3")

	r = send(d, userID, btnMenu)
	assert.Contains(t, r.Text, "Menú")
}

func TestExistenciasConAlmacenVacio(t *testing.T) {
	d, _ := newTestDispatcher(t)
	r := send(d, userID, btnStock)
	assert.Contains(t, r.Text, "vacío")
}

func TestStatusMuestraContadores(t *testing.T) {
	d, uc := newTestDispatcher(t)
	_, err := uc.CreatePart(context.Background(), inventory.CreatePartInput{Code: "A-1", Name: "Aceite", Quantity: 4})
	require.NoError(t, err)

	r := send(d, userID, "/status")
	assert.Contains(t, r.Text, "Repuestos: 1")
	assert.Contains(t, r.Text, "Unidades totales: 4")
	assert.Contains(t, r.Text, "Usuarios: 2")
}

func TestInformeDeStockBajo(t *testing.T) {
	d, uc := newTestDispatcher(t)
	ctx := context.Background()
	_, err := uc.CreatePart(ctx, inventory.CreatePartInput{Code: "A-1", Name: "Aceite", Quantity: 1, MinStock: 5})
	require.NoError(t, err)
	_, err = uc.CreatePart(ctx, inventory.CreatePartInput{Code: "B-1", Name: "Bujía", Quantity: 50, MinStock: 5})
	require.NoError(t, err)

	r := send(d, userID, btnReport)
	assert.Contains(t, r.Text, "Aceite")
	assert.NotContains(t, r.Text, "Bujía")
}
