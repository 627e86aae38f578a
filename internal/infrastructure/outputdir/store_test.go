package outputdir_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gchamon/facturador/internal/domain/entity"
	"github.com/gchamon/facturador/internal/infrastructure/outputdir"
)

func TestStore_RutaDeterminista(t *testing.T) {
	s := outputdir.NewStore("/salida", "gabriel_chamon")
	issue := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	p1 := s.Path(entity.InvoiceKindToken, issue, "html")
	p2 := s.Path(entity.InvoiceKindToken, issue, "html")

	assert.Equal(t, filepath.Join("/salida", "token", "gabriel_chamon_Mar_24.html"), p1)
	assert.Equal(t, p1, p2, "el mismo periodo debe producir siempre el mismo nombre")

	assert.Equal(t,
		filepath.Join("/salida", "fiat", "gabriel_chamon_Dec_25.pdf"),
		s.Path(entity.InvoiceKindFiat, time.Date(2025, time.December, 15, 0, 0, 0, 0, time.UTC), "pdf"))
}

func TestStore_EscribirYExiste(t *testing.T) {
	dir := t.TempDir()
	s := outputdir.NewStore(dir, "fac")
	issue := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	path := s.Path(entity.InvoiceKindFiat, issue, "html")

	assert.False(t, s.Exists(path), "antes de escribir no debe existir")
	require.NoError(t, s.Write(path, []byte("<html></html>")),
		"Write debe crear el subdirectorio del tipo")
	assert.True(t, s.Exists(path))
}
