// Package backup vuelca el contenido del almacén a archivos JSON con
// marca de tiempo. El volcado se lee dentro de una transacción REPEATABLE
// READ de solo lectura, así que es una foto consistente que no bloquea los
// diálogos en curso.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/almacen-bot/internal/domain/entity"
	"github.com/jhoicas/almacen-bot/internal/domain/repository"
	"github.com/jhoicas/almacen-bot/pkg/logger"
)

const (
	filePrefix       = "almacen_backup_"
	fileSuffix       = ".json"
	snapshotPageSize = 500
)

// SnapshotRunner abre una transacción de solo lectura con vista consistente.
type SnapshotRunner interface {
	RunSnapshot(ctx context.Context, fn func(
		parts repository.PartRepository,
		movements repository.MovementRepository,
		users repository.UserRepository,
	) error) error
}

// Info describe una copia recién creada.
type Info struct {
	Path      string
	Size      int64
	CreatedAt time.Time
}

// Status resume las copias existentes en el directorio.
type Status struct {
	Count     int
	TotalSize int64
	Newest    time.Time
}

type dump struct {
	CreatedAt time.Time          `json:"created_at"`
	Parts     []*entity.Part     `json:"parts"`
	Movements []*entity.Movement `json:"movements"`
	Users     []*entity.BotUser  `json:"users"`
}

// Service crea, purga y resume copias de seguridad.
type Service struct {
	tx        SnapshotRunner
	dir       string
	retention int
	log       *logger.Logger
}

// NewService construye el servicio. retention <= 0 desactiva la purga.
func NewService(tx SnapshotRunner, dir string, retention int, log *logger.Logger) *Service {
	return &Service{tx: tx, dir: dir, retention: retention, log: log.WithComponent("backup")}
}

// Snapshot crea una copia y purga las más antiguas que excedan la retención.
func (s *Service) Snapshot(ctx context.Context) (Info, error) {
	var d dump
	err := s.tx.RunSnapshot(ctx, func(
		parts repository.PartRepository,
		movements repository.MovementRepository,
		users repository.UserRepository,
	) error {
		for offset := 0; ; offset += snapshotPageSize {
			batch, err := parts.List(ctx, offset, snapshotPageSize)
			if err != nil {
				return err
			}
			d.Parts = append(d.Parts, batch...)
			if len(batch) < snapshotPageSize {
				break
			}
		}
		for offset := 0; ; offset += snapshotPageSize {
			batch, err := movements.List(ctx, snapshotPageSize, offset)
			if err != nil {
				return err
			}
			d.Movements = append(d.Movements, batch...)
			if len(batch) < snapshotPageSize {
				break
			}
		}
		list, err := users.List(ctx)
		if err != nil {
			return err
		}
		d.Users = list
		return nil
	})
	if err != nil {
		return Info{}, fmt.Errorf("leer instantánea: %w", err)
	}
	d.CreatedAt = time.Now()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Info{}, fmt.Errorf("crear directorio de copias: %w", err)
	}
	name := filePrefix + d.CreatedAt.Format("20060102_150405") + fileSuffix
	path := filepath.Join(s.dir, name)

	data, err := json.MarshalIndent(&d, "", "  ")
	if err != nil {
		return Info{}, fmt.Errorf("serializar copia: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Info{}, fmt.Errorf("escribir copia: %w", err)
	}
	if err := s.prune(); err != nil {
		s.log.Warn().Err(err).Msg("no se pudieron purgar copias antiguas")
	}

	info := Info{Path: path, Size: int64(len(data)), CreatedAt: d.CreatedAt}
	s.log.Info().Str("path", path).Int64("bytes", info.Size).
		Int("parts", len(d.Parts)).Int("movements", len(d.Movements)).
		Msg("copia de seguridad creada")
	return info, nil
}

// Status resume las copias presentes en el directorio.
func (s *Service) Status() (Status, error) {
	files, err := s.list()
	if err != nil {
		return Status{}, err
	}
	var st Status
	st.Count = len(files)
	for _, f := range files {
		fi, err := os.Stat(f)
		if err != nil {
			continue
		}
		st.TotalSize += fi.Size()
		if fi.ModTime().After(st.Newest) {
			st.Newest = fi.ModTime()
		}
	}
	return st, nil
}

// Run ejecuta copias periódicas hasta que el contexto se cancele.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Snapshot(ctx); err != nil {
				s.log.Error().Err(err).Msg("copia periódica fallida")
			}
		}
	}
}

// prune conserva las retention copias más recientes. El timestamp del
// nombre ordena igual que la fecha, así que basta ordenar por nombre.
func (s *Service) prune() error {
	if s.retention <= 0 {
		return nil
	}
	files, err := s.list()
	if err != nil {
		return err
	}
	if len(files) <= s.retention {
		return nil
	}
	sort.Sort(sort.Reverse(sort.StringSlice(files)))
	for _, f := range files[s.retention:] {
		if err := os.Remove(f); err != nil {
			return fmt.Errorf("purgar %s: %w", f, err)
		}
	}
	return nil
}

func (s *Service) list() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listar copias: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, fileSuffix) {
			files = append(files, filepath.Join(s.dir, name))
		}
	}
	return files, nil
}
