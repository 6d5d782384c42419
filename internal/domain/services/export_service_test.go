package services

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/banuch/logbook/internal/domain/models"
)

func newExportFixture(t *testing.T) (InterfaceExportService, Principal) {
	t.Helper()

	db := newTestDB(t)
	substation := seedSubstation(t, db, "SS-KPHLI-01")
	logbook := newTestLogbookService(db)

	p := SubstationPrincipal(substation.ID)
	_, err := logbook.CreateEntry(p, &CreateEntryInput{
		EntryDatetime: time.Date(2026, 3, 14, 6, 30, 0, 0, time.UTC),
		Severity:      models.SeverityWarning,
		Message:       "11kV feeder F2 tripped on earth fault",
		Parameters:    models.ElectricalParameters{VoltageKV: floatPtr(11.2)},
	})
	require.NoError(t, err)

	return NewExportService(logbook), p
}

func TestExportEntriesExcel(t *testing.T) {
	svc, p := newExportFixture(t)

	buf, filename, err := svc.ExportEntriesExcel(p, EntryFilter{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "logbook-"))
	assert.True(t, strings.HasSuffix(filename, ".xlsx"))

	// 产物必须是可读的工作簿，首行是表头，第二行是条目
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Logbook")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ID", rows[0][0])
	assert.Contains(t, rows[1], "11kV feeder F2 tripped on earth fault")
}

func TestExportEntriesPDF(t *testing.T) {
	svc, p := newExportFixture(t)

	buf, filename, err := svc.ExportEntriesPDF(p, EntryFilter{})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filename, ".pdf"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}
