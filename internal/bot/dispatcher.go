package bot

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/almacen-bot/internal/application/access"
	"github.com/jhoicas/almacen-bot/internal/application/inventory"
	"github.com/jhoicas/almacen-bot/pkg/logger"
)

// Dispatcher enruta cada mensaje entrante: puerta de acceso, delegación al
// flujo en curso, tabla de entradas del menú y respuesta por defecto. Los
// mensajes de un mismo usuario se atienden en serie (candado por usuario);
// usuarios distintos avanzan en paralelo.
type Dispatcher struct {
	log      *logger.Logger
	sessions *SessionStore
	stock    *inventory.StockUseCase
	access   *access.Service
	backups  BackupService
	pageSize int
	started  time.Time

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewDispatcher construye el dispatcher con sus colaboradores.
func NewDispatcher(log *logger.Logger, stock *inventory.StockUseCase, acc *access.Service, backups BackupService, pageSize int) *Dispatcher {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Dispatcher{
		log:      log,
		sessions: NewSessionStore(),
		stock:    stock,
		access:   acc,
		backups:  backups,
		pageSize: pageSize,
		started:  time.Now(),
		locks:    make(map[int64]*sync.Mutex),
	}
}

func (d *Dispatcher) userLock(userID int64) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		d.locks[userID] = l
	}
	return l
}

// Handle procesa un mensaje y devuelve la respuesta.
func (d *Dispatcher) Handle(ctx context.Context, userID int64, displayName, text string) Reply {
	if !d.access.Allowed(userID) {
		d.log.Warn().Int64("user_id", userID).Msg("mensaje de usuario no autorizado")
		return reply("⛔ No tienes acceso a este bot. Contacta con el administrador.", nil)
	}
	if err := d.access.Rename(ctx, userID, displayName); err != nil {
		d.log.Warn().Err(err).Int64("user_id", userID).Msg("no se pudo refrescar el nombre del usuario")
	}

	lock := d.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	sess := d.sessions.Get(userID)
	text = strings.TrimSpace(text)

	if !sess.Idle() {
		if text == btnCancel {
			sess.Reset()
			return reply("❌ Operación cancelada.", d.menu(userID))
		}
		return d.dispatchFlow(ctx, sess, text)
	}
	return d.dispatchEntry(ctx, sess, text)
}

func (d *Dispatcher) dispatchFlow(ctx context.Context, sess *Session, text string) Reply {
	switch sess.Flow {
	case FlowAddPart:
		return d.handleAddPart(ctx, sess, text)
	case FlowEditPart:
		return d.handleEditPart(ctx, sess, text)
	case FlowDeletePart:
		return d.handleDeletePart(ctx, sess, text)
	case FlowIncoming, FlowOutgoing:
		return d.handleMovement(ctx, sess, text)
	case FlowSearch:
		return d.handleSearch(ctx, sess, text)
	case FlowUsers:
		return d.handleUsers(ctx, sess, text)
	case FlowBackup:
		return d.handleBackup(ctx, sess, text)
	}
	// flujo desconocido: sesión corrupta, volver a reposo
	d.log.Error().Int64("user_id", sess.UserID).Str("flow", sess.Flow.String()).Msg("flujo desconocido")
	sess.Reset()
	return d.mainMenu(sess.UserID, "Algo ha ido mal. Volvemos al menú.")
}

func (d *Dispatcher) dispatchEntry(ctx context.Context, sess *Session, text string) Reply {
	switch text {
	case "/start":
		sess.Page = 1
		return d.mainMenu(sess.UserID, "👋 Bot de almacén listo. Elige una opción.")
	case "/help", btnHelp:
		return reply(helpText, d.menu(sess.UserID))
	case "/status":
		return d.statusReply(ctx, sess)
	case btnIncoming:
		sess.Enter(FlowIncoming, StepMovementInput)
		return reply("📦 Entrada de stock.\nEnvía: código | cantidad\nOpcional: código | cantidad | documento | nota", cancelKeyboard())
	case btnOutgoing:
		sess.Enter(FlowOutgoing, StepMovementInput)
		return reply("📤 Salida de stock.\nEnvía: código | cantidad\nOpcional: código | cantidad | documento | nota", cancelKeyboard())
	case btnAdd:
		sess.Enter(FlowAddPart, StepAddName)
		return reply("➕ Alta de repuesto.\n¿Nombre del repuesto?", cancelKeyboard())
	case btnEdit:
		sess.Enter(FlowEditPart, StepEditCode)
		return reply("✏️ Edición.\n¿Código del repuesto a editar?", cancelKeyboard())
	case btnDelete:
		sess.Enter(FlowDeletePart, StepDeleteCode)
		return reply("🗑️ Borrado.\n¿Código del repuesto a eliminar?", cancelKeyboard())
	case btnSearch:
		sess.Enter(FlowSearch, StepSearchTerm)
		return reply("🔍 ¿Qué buscas? Escribe parte del nombre o del código.", cancelKeyboard())
	case btnStock:
		return d.showStockPage(ctx, sess, sess.Page)
	case btnPrev:
		return d.showStockPage(ctx, sess, sess.Page-1)
	case btnNext:
		return d.showStockPage(ctx, sess, sess.Page+1)
	case btnMenu:
		return d.mainMenu(sess.UserID, "🏠 Menú principal.")
	case btnReport:
		return d.reportReply(ctx, sess)
	case btnUsers:
		if !d.access.IsAdmin(sess.UserID) {
			return reply("⛔ Solo el administrador puede gestionar usuarios.", d.menu(sess.UserID))
		}
		sess.Enter(FlowUsers, StepUsersMenu)
		return reply("👑 Gestión de usuarios.", usersMenuKeyboard())
	case btnBackups:
		if !d.access.IsAdmin(sess.UserID) {
			return reply("⛔ Solo el administrador puede gestionar copias.", d.menu(sess.UserID))
		}
		sess.Enter(FlowBackup, StepBackupMenu)
		return reply("💾 Copias de seguridad.", backupMenuKeyboard())
	case btnCancel:
		return reply("No hay ninguna operación en curso.", d.menu(sess.UserID))
	}
	return reply("No te he entendido. Usa los botones del menú o /help.", d.menu(sess.UserID))
}

func (d *Dispatcher) menu(userID int64) [][]string {
	return mainMenuKeyboard(d.access.IsAdmin(userID))
}

func (d *Dispatcher) mainMenu(userID int64, text string) Reply {
	return reply(text, d.menu(userID))
}

// fail registra el error inesperado, fuerza el reposo y devuelve la
// respuesta genérica. Nunca deja la sesión atascada.
func (d *Dispatcher) fail(sess *Session, err error) Reply {
	d.log.Error().Err(err).Int64("user_id", sess.UserID).Str("flow", sess.Flow.String()).Msg("error de almacenamiento en el diálogo")
	sess.Reset()
	return d.mainMenu(sess.UserID, "⚠️ Algo ha fallado. La operación no se ha aplicado. Volvemos al menú.")
}

func (d *Dispatcher) statusReply(ctx context.Context, sess *Session) Reply {
	totals, err := d.stock.GetTotals(ctx)
	if err != nil {
		return d.fail(sess, err)
	}
	users := d.access.List()
	return reply(formatStatus(time.Since(d.started), totals, len(users)), d.menu(sess.UserID))
}

func (d *Dispatcher) reportReply(ctx context.Context, sess *Session) Reply {
	parts, err := d.stock.LowStockReport(ctx)
	if err != nil {
		return d.fail(sess, err)
	}
	return reply(formatLowStockReport(parts), d.menu(sess.UserID))
}

// showStockPage renderiza una página del listado. La página pedida se
// recorta al rango válido: navegar más allá de un extremo repite la página
// del borde en vez de fallar.
func (d *Dispatcher) showStockPage(ctx context.Context, sess *Session, page int) Reply {
	total, err := d.stock.CountParts(ctx)
	if err != nil {
		return d.fail(sess, err)
	}
	if total == 0 {
		sess.Page = 1
		return d.mainMenu(sess.UserID, "📊 El almacén está vacío.")
	}
	totalPages := int((total + int64(d.pageSize) - 1) / int64(d.pageSize))
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	parts, _, err := d.stock.ListParts(ctx, (page-1)*d.pageSize, d.pageSize)
	if err != nil {
		return d.fail(sess, err)
	}
	sess.Page = page
	return reply(formatStockPage(parts, page, totalPages, total), stockNavKeyboard())
}
