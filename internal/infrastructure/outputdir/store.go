// Package outputdir implementa el almacén de documentos en el sistema de
// archivos: nombres deterministas por (tipo, mes de emisión), verificación de
// existencia y escritura. Mantener este conocimiento fuera del núcleo puro
// permite testearlo sin tocar disco.
package outputdir

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gchamon/facturador/internal/application/invoicing"
	"github.com/gchamon/facturador/internal/domain/entity"
)

// Verificar en tiempo de compilación que Store implementa el puerto.
var _ invoicing.DocumentStore = (*Store)(nil)

// Store escribe documentos bajo <dir>/<tipo>/<prefijo>_<Mes_AA>.<ext>.
type Store struct {
	dir    string
	prefix string
}

// NewStore construye el almacén. dir puede no existir todavía: los
// subdirectorios se crean al escribir.
func NewStore(dir, prefix string) *Store {
	return &Store{dir: dir, prefix: prefix}
}

// Path ruta determinista del documento: el mismo periodo produce siempre el
// mismo nombre, que es lo que habilita la decisión de omitir-si-existe.
func (s *Store) Path(kind entity.InvoiceKind, issue time.Time, ext string) string {
	name := fmt.Sprintf("%s_%s.%s", s.prefix, issue.Format("Jan_06"), ext)
	return filepath.Join(s.dir, string(kind), name)
}

// Exists informa si ya hay un documento en la ruta.
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Write crea el directorio del tipo si hace falta y escribe el documento.
func (s *Store) Write(path string, contents []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("outputdir: crear directorio: %w", err)
	}
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		return fmt.Errorf("outputdir: escribir %s: %w", path, err)
	}
	return nil
}
