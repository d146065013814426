package access

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// AllowlistStore persiste la lista de usuarios permitidos. El servicio la
// escribe en cada mutación para que sobreviva a los reinicios.
type AllowlistStore interface {
	Load() (map[int64]string, error)
	Save(users map[int64]string) error
}

// FileAllowlist guarda la lista en un archivo YAML gestionado con Viper.
type FileAllowlist struct {
	path string
}

// NewFileAllowlist construye el almacén sobre la ruta dada.
func NewFileAllowlist(path string) *FileAllowlist {
	return &FileAllowlist{path: path}
}

var _ AllowlistStore = (*FileAllowlist)(nil)

type allowlistFile struct {
	Users []allowlistEntry `mapstructure:"users" yaml:"users"`
}

type allowlistEntry struct {
	ID   int64  `mapstructure:"id" yaml:"id"`
	Name string `mapstructure:"name" yaml:"name"`
}

// Load lee el archivo. Si no existe devuelve una lista vacía sin error.
func (f *FileAllowlist) Load() (map[int64]string, error) {
	v := viper.New()
	v.SetConfigFile(f.path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return map[int64]string{}, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return map[int64]string{}, nil
		}
		return nil, fmt.Errorf("leer lista de usuarios: %w", err)
	}
	var file allowlistFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("decodificar lista de usuarios: %w", err)
	}
	users := make(map[int64]string, len(file.Users))
	for _, e := range file.Users {
		users[e.ID] = e.Name
	}
	return users, nil
}

// Save escribe la lista completa, reemplazando el contenido anterior.
func (f *FileAllowlist) Save(users map[int64]string) error {
	entries := make([]map[string]any, 0, len(users))
	for id, name := range users {
		entries = append(entries, map[string]any{"id": id, "name": name})
	}
	v := viper.New()
	v.SetConfigFile(f.path)
	v.SetConfigType("yaml")
	v.Set("users", entries)
	if err := v.WriteConfigAs(f.path); err != nil {
		return fmt.Errorf("guardar lista de usuarios: %w", err)
	}
	return nil
}
