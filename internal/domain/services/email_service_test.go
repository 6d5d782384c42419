package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banuch/logbook/internal/domain/models"
	"github.com/banuch/logbook/internal/infrastructure/config"
)

func TestGetEmailConfig_FallsBackToEnvironment(t *testing.T) {
	db := newTestDB(t)
	svc := NewEmailService(db, &config.Config{
		SMTPHost:      "smtp.example.com",
		SMTPPort:      587,
		EmailFrom:     "logbook@example.com",
		EmailFromName: "Substation Logbook",
	})

	cfg, err := svc.GetEmailConfig()
	require.NoError(t, err)
	assert.Zero(t, cfg.ID)
	assert.Equal(t, "smtp.example.com", cfg.SMTPHost)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, "logbook@example.com", cfg.FromEmail)
}

func TestUpdateEmailConfig_DeactivatesPreviousRow(t *testing.T) {
	db := newTestDB(t)
	svc := NewEmailService(db, &config.Config{})

	require.NoError(t, svc.UpdateEmailConfig(1, &EmailConfigInput{
		SMTPHost:     "smtp-old.example.com",
		SMTPPort:     465,
		SMTPSecure:   true,
		SMTPUser:     "mailer",
		SMTPPassword: "old-secret",
	}))
	require.NoError(t, svc.UpdateEmailConfig(1, &EmailConfigInput{
		SMTPHost: "smtp-new.example.com",
		SMTPPort: 587,
		SMTPUser: "mailer",
	}))

	cfg, err := svc.GetEmailConfig()
	require.NoError(t, err)
	assert.Equal(t, "smtp-new.example.com", cfg.SMTPHost)

	var active int64
	require.NoError(t, db.Model(&models.EmailConfig{}).Where("is_active = ?", true).Count(&active).Error)
	assert.EqualValues(t, 1, active)
	var total int64
	require.NoError(t, db.Model(&models.EmailConfig{}).Count(&total).Error)
	assert.EqualValues(t, 2, total)
}

func TestUpdateEmailConfig_BlankPasswordKeepsPrevious(t *testing.T) {
	db := newTestDB(t)
	svc := NewEmailService(db, &config.Config{})

	require.NoError(t, svc.UpdateEmailConfig(1, &EmailConfigInput{
		SMTPHost:     "smtp.example.com",
		SMTPPort:     587,
		SMTPPassword: "keep-me",
	}))
	require.NoError(t, svc.UpdateEmailConfig(2, &EmailConfigInput{
		SMTPHost: "smtp.example.com",
		SMTPPort: 587,
	}))

	var current models.EmailConfig
	require.NoError(t, db.Where("is_active = ?", true).Order("id DESC").First(&current).Error)
	assert.Equal(t, "keep-me", current.SMTPPassword)
	require.NotNil(t, current.UpdatedBy)
	assert.EqualValues(t, 2, *current.UpdatedBy)
}

func TestSeverityColor(t *testing.T) {
	assert.Equal(t, "#d32f2f", severityColor("Critical"))
	assert.Equal(t, "#f57c00", severityColor("Warning"))
	assert.Equal(t, "#388e3c", severityColor("Normal"))
}

func TestEntryNotificationBody_IncludesElectricalReadings(t *testing.T) {
	entry := &EntryDetail{
		Severity:       "Warning",
		SubstationName: "North Grid",
		SubstationCode: "SS-01",
		Message:        "transformer oil temperature high",
		EntryDatetime:  time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC),
		VoltageKV:      floatPtr(220.5),
		FrequencyHz:    floatPtr(49.95),
		PowerFactor:    floatPtr(0.98),
	}

	var buf bytes.Buffer
	require.NoError(t, entryMailTemplate.Execute(&buf, entryMailData{
		Entry:    entry,
		Color:    severityColor(entry.Severity),
		AppURL:   "http://localhost:3000",
		Datetime: entry.EntryDatetime.Format("2006-01-02 15:04"),
		Readings: entryReadings(entry),
	}))

	body := buf.String()
	assert.Contains(t, body, "电气参数")
	assert.Contains(t, body, "电压 Voltage: 220.5 kV")
	assert.Contains(t, body, "频率 Frequency: 49.95 Hz")
	assert.Contains(t, body, "功率因数 Power Factor: 0.98")
	assert.NotContains(t, body, "电流 Current")
}

func TestEntryNotificationBody_OmitsReadingsWhenAbsent(t *testing.T) {
	entry := &EntryDetail{
		Severity:       "Normal",
		SubstationName: "North Grid",
		SubstationCode: "SS-01",
		Message:        "routine inspection",
		EntryDatetime:  time.Now(),
	}

	var buf bytes.Buffer
	require.NoError(t, entryMailTemplate.Execute(&buf, entryMailData{
		Entry:    entry,
		Color:    severityColor(entry.Severity),
		Datetime: entry.EntryDatetime.Format("2006-01-02 15:04"),
		Readings: entryReadings(entry),
	}))

	assert.NotContains(t, buf.String(), "电气参数")
}
