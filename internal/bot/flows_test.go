package bot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-bot/internal/application/inventory"
	"github.com/jhoicas/almacen-bot/internal/infrastructure/backup"
)

func TestFlujoAltaCompleto(t *testing.T) {
	d, uc := newTestDispatcher(t)
	ctx := context.Background()
	_, err := uc.CreatePart(ctx, inventory.CreatePartInput{Code: "B-100", Name: "Ocupado"})
	require.NoError(t, err)

	send(d, userID, btnAdd)
	r := send(d, userID, "Rodamiento 6204")
	assert.Contains(t, r.Text, "Código")

	// código ya en uso: se repite el paso
	r = send(d, userID, "B-100")
	assert.Contains(t, r.Text, "Ya existe")
	r = send(d, userID, "B-200")
	assert.Contains(t, r.Text, "Cantidad")

	// cantidad no numérica: se repite el paso
	r = send(d, userID, "muchas")
	assert.Contains(t, r.Text, "no válida")
	r = send(d, userID, "12")
	assert.Contains(t, r.Text, "Unidad")

	r = send(d, userID, "ud.")
	assert.Contains(t, r.Text, "mínimo")

	r = send(d, userID, "-3")
	assert.Contains(t, r.Text, "no válido")
	r = send(d, userID, "5")
	assert.Contains(t, r.Text, "✅")
	assert.Contains(t, r.Text, "Rodamiento 6204")
	assert.True(t, d.sessions.Get(userID).Idle())

	part, err := uc.GetPartByCode(ctx, "B-200")
	require.NoError(t, err)
	assert.Equal(t, int64(12), part.Quantity)
	assert.Equal(t, int64(5), part.MinStock)
}

func TestFlujoEntradaYSalida(t *testing.T) {
	d, uc := newTestDispatcher(t)
	ctx := context.Background()
	_, err := uc.CreatePart(ctx, inventory.CreatePartInput{Code: "B-100", Name: "Rodamiento", Quantity: 10})
	require.NoError(t, err)

	// formato incorrecto: se repite el paso
	send(d, userID, btnIncoming)
	r := send(d, userID, "sin separador")
	assert.Contains(t, r.Text, "Formato")
	require.False(t, d.sessions.Get(userID).Idle())

	r = send(d, userID, "B-100 | 5 | ALB-77 | reposición")
	assert.Contains(t, r.Text, "Entrada registrada")
	assert.Contains(t, r.Text, "Saldo actual: 15")
	assert.True(t, d.sessions.Get(userID).Idle())

	// salida por encima del saldo: cifras y repetición del paso
	send(d, userID, btnOutgoing)
	r = send(d, userID, "B-100 | 99")
	assert.Contains(t, r.Text, "hay 15 y pides 99")
	require.False(t, d.sessions.Get(userID).Idle(), "la falta de saldo permite reintentar")

	r = send(d, userID, "B-100 | 4")
	assert.Contains(t, r.Text, "Salida registrada")
	assert.Contains(t, r.Text, "Saldo actual: 11")
}

func TestMovimientoConCodigoDesconocidoTerminaElFlujo(t *testing.T) {
	d, _ := newTestDispatcher(t)

	send(d, userID, btnOutgoing)
	r := send(d, userID, "NADA | 3")
	assert.Contains(t, r.Text, "No existe")
	assert.True(t, d.sessions.Get(userID).Idle(), "código inexistente no deja reintentar")
}

func TestFlujoEdicion(t *testing.T) {
	d, uc := newTestDispatcher(t)
	ctx := context.Background()
	_, err := uc.CreatePart(ctx, inventory.CreatePartInput{Code: "B-100", Name: "Rodamiento", Quantity: 10})
	require.NoError(t, err)

	send(d, userID, btnEdit)
	r := send(d, userID, "ZZZ")
	assert.Contains(t, r.Text, "No existe")
	r = send(d, userID, "B-100")
	assert.Contains(t, r.Text, "campo")

	r = send(d, userID, "Color")
	assert.Contains(t, r.Text, "Elige un campo")

	r = send(d, userID, fieldLabelQuantity)
	assert.Contains(t, r.Text, "Nueva cantidad")

	r = send(d, userID, "tres")
	assert.Contains(t, r.Text, "no válido")
	r = send(d, userID, "3")
	assert.Contains(t, r.Text, "✅")
	assert.True(t, d.sessions.Get(userID).Idle())

	// el ajuste de cantidad queda en el libro
	parts, err := uc.SearchParts(ctx, "B-100")
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, int64(3), parts[0].Quantity)
}

func TestFlujoEdicionDePrecioConComa(t *testing.T) {
	d, uc := newTestDispatcher(t)
	ctx := context.Background()
	_, err := uc.CreatePart(ctx, inventory.CreatePartInput{Code: "B-100", Name: "Rodamiento"})
	require.NoError(t, err)

	send(d, userID, btnEdit)
	send(d, userID, "B-100")
	send(d, userID, fieldLabelPrice)
	r := send(d, userID, "12,50")
	assert.Contains(t, r.Text, "✅")
	assert.Contains(t, r.Text, "Precio: 12.50")
}

func TestFlujoBorrado(t *testing.T) {
	d, uc := newTestDispatcher(t)
	ctx := context.Background()
	_, err := uc.CreatePart(ctx, inventory.CreatePartInput{Code: "B-100", Name: "Rodamiento", Quantity: 10})
	require.NoError(t, err)

	// rechazar la confirmación no toca nada
	send(d, userID, btnDelete)
	send(d, userID, "B-100")
	r := send(d, userID, btnNo)
	assert.Contains(t, r.Text, "descartado")
	_, err = uc.GetPartByCode(ctx, "B-100")
	require.NoError(t, err)

	// cualquier otra respuesta repite la pregunta
	send(d, userID, btnDelete)
	send(d, userID, "B-100")
	r = send(d, userID, "quizá")
	assert.Contains(t, r.Text, "Sí")
	require.False(t, d.sessions.Get(userID).Idle())

	r = send(d, userID, btnYes)
	assert.Contains(t, r.Text, "🗑️")
	assert.Contains(t, r.Text, "1 movimiento")
	assert.True(t, d.sessions.Get(userID).Idle())
}

func TestFlujoBusqueda(t *testing.T) {
	d, uc := newTestDispatcher(t)
	ctx := context.Background()
	_, err := uc.CreatePart(ctx, inventory.CreatePartInput{Code: "B-100", Name: "Rodamiento", Quantity: 1, MinStock: 5})
	require.NoError(t, err)

	send(d, userID, btnSearch)
	r := send(d, userID, "roda")
	assert.Contains(t, r.Text, "Rodamiento")
	assert.Contains(t, r.Text, "⚠️", "marca de stock bajo en los resultados")
	assert.True(t, d.sessions.Get(userID).Idle())

	send(d, userID, btnSearch)
	r = send(d, userID, "inexistente")
	assert.Contains(t, r.Text, "Sin resultados")
}

func TestFlujoUsuarios(t *testing.T) {
	d, _ := newTestDispatcher(t)

	send(d, adminID, btnUsers)
	r := send(d, adminID, btnUserList)
	assert.Contains(t, r.Text, "👑")
	assert.Contains(t, r.Text, "(ID: 2)")

	// alta: solo id numérico
	r = send(d, adminID, btnUserAdd)
	assert.Contains(t, r.Text, "ID numérico")
	r = send(d, adminID, "pepe")
	assert.Contains(t, r.Text, "no es un ID")
	r = send(d, adminID, "777")
	assert.Contains(t, r.Text, "✅")

	// duplicado
	send(d, adminID, btnUserAdd)
	r = send(d, adminID, "777")
	assert.Contains(t, r.Text, "ya tiene acceso")

	// baja desde la lista; el administrador no aparece
	r = send(d, adminID, btnUserRemove)
	for _, row := range r.Keyboard {
		for _, label := range row {
			assert.NotContains(t, label, "(ID: 1)", "el administrador nunca es eliminable")
		}
	}
	r = send(d, adminID, "➖ usuario 777 (ID: 777)")
	assert.Contains(t, r.Text, "retirado")

	// el usuario eliminado pierde el acceso de inmediato
	r = send(d, 777, "/start")
	assert.Contains(t, r.Text, "⛔")
}

func TestFlujoCopias(t *testing.T) {
	d, _ := newTestDispatcher(t)
	fb := &fakeBackup{
		info:   backup.Info{Path: "/tmp/almacen_backup_20260830_120000.json", Size: 2048, CreatedAt: time.Now()},
		status: backup.Status{Count: 3, TotalSize: 6144, Newest: time.Now()},
	}
	d.backups = fb

	send(d, adminID, btnBackups)
	r := send(d, adminID, btnBackupNow)
	assert.Contains(t, r.Text, "almacen_backup_20260830_120000.json")
	assert.Contains(t, r.Text, "2048 bytes")
	require.False(t, d.sessions.Get(adminID).Idle(), "el submenú sigue abierto")

	r = send(d, adminID, btnBackupStatus)
	assert.Contains(t, r.Text, "Copias: 3")
}
