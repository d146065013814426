package bot

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jhoicas/almacen-bot/internal/infrastructure/backup"
)

// BackupService lo que el diálogo necesita del servicio de copias.
type BackupService interface {
	Snapshot(ctx context.Context) (backup.Info, error)
	Status() (backup.Status, error)
}

// handleBackup submenú de copias de seguridad, solo administrador.
func (d *Dispatcher) handleBackup(ctx context.Context, sess *Session, text string) Reply {
	if sess.Step != StepBackupMenu {
		return d.fail(sess, fmt.Errorf("paso inesperado %d en copias", sess.Step))
	}
	switch text {
	case btnBackupNow:
		info, err := d.backups.Snapshot(ctx)
		if err != nil {
			return d.fail(sess, err)
		}
		return reply(fmt.Sprintf("💾 Copia creada: %s (%d bytes) a las %s.",
			filepath.Base(info.Path), info.Size, info.CreatedAt.Format("15:04:05")), backupMenuKeyboard())
	case btnBackupStatus:
		st, err := d.backups.Status()
		if err != nil {
			return d.fail(sess, err)
		}
		if st.Count == 0 {
			return reply("📈 Aún no hay copias de seguridad.", backupMenuKeyboard())
		}
		return reply(fmt.Sprintf("📈 Copias: %d\nTamaño total: %d bytes\nMás reciente: %s",
			st.Count, st.TotalSize, st.Newest.Format("2006-01-02 15:04:05")), backupMenuKeyboard())
	}
	return reply("Elige una opción del menú de copias.", backupMenuKeyboard())
}
