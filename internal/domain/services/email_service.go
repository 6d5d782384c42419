package services

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strconv"
	"sync"

	"gopkg.in/gomail.v2"
	"gorm.io/gorm"

	"github.com/banuch/logbook/internal/domain/models"
	"github.com/banuch/logbook/internal/infrastructure/config"
	Logger "github.com/banuch/logbook/pkg/logger"
)

// InterfaceEmailService defines the email service interface
type InterfaceEmailService interface {
	GetEmailConfig() (*models.EmailConfig, error)
	UpdateEmailConfig(updatedBy uint, in *EmailConfigInput) error
	SendTestEmail(to string) error
	SendEntryNotification(entry *EntryDetail, to string) error
}

// EmailService SMTP通知服务
// 配置优先取数据库中的激活行，没有则退回环境变量
type EmailService struct {
	DB     *gorm.DB
	Config *config.Config

	mu     sync.RWMutex
	dialer *gomail.Dialer
	from   string
	name   string
}

// NewEmailService 创建一个新的邮件服务
func NewEmailService(db *gorm.DB, cfg *config.Config) InterfaceEmailService {
	s := &EmailService{DB: db, Config: cfg}
	s.reloadDialer()
	return s
}

// EmailConfigInput 更新SMTP配置的输入
type EmailConfigInput struct {
	SMTPHost     string `json:"smtp_host" binding:"required"`
	SMTPPort     int    `json:"smtp_port" binding:"required"`
	SMTPSecure   bool   `json:"smtp_secure"`
	SMTPUser     string `json:"smtp_user"`
	SMTPPassword string `json:"smtp_password"` // 为空表示沿用旧密码
	FromEmail    string `json:"from_email"`
	FromName     string `json:"from_name"`
}

// 1 GetEmailConfig 获取当前激活的SMTP配置
// 数据库无配置时返回环境变量兜底值，密码不回显
func (s *EmailService) GetEmailConfig() (*models.EmailConfig, error) {
	var cfg models.EmailConfig
	err := s.DB.Where("is_active = ?", true).Order("id DESC").First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.EmailConfig{
				SMTPHost:   s.Config.SMTPHost,
				SMTPPort:   s.Config.SMTPPort,
				SMTPSecure: s.Config.SMTPSecure,
				SMTPUser:   s.Config.SMTPUser,
				FromEmail:  s.Config.EmailFrom,
				FromName:   s.Config.EmailFromName,
			}, nil
		}
		return nil, err
	}
	return &cfg, nil
}

// 2 UpdateEmailConfig 更新SMTP配置，旧配置置为非激活
func (s *EmailService) UpdateEmailConfig(updatedBy uint, in *EmailConfigInput) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// 密码留空时沿用最近一次的密码
		password := in.SMTPPassword
		if password == "" {
			var prev models.EmailConfig
			if err := tx.Where("is_active = ?", true).Order("id DESC").First(&prev).Error; err == nil {
				password = prev.SMTPPassword
			}
		}

		if err := tx.Model(&models.EmailConfig{}).Where("is_active = ?", true).
			Update("is_active", false).Error; err != nil {
			return err
		}

		cfg := models.EmailConfig{
			SMTPHost:     in.SMTPHost,
			SMTPPort:     in.SMTPPort,
			SMTPSecure:   in.SMTPSecure,
			SMTPUser:     in.SMTPUser,
			SMTPPassword: password,
			FromEmail:    in.FromEmail,
			FromName:     in.FromName,
			UpdatedBy:    &updatedBy,
			IsActive:     true,
		}
		return tx.Create(&cfg).Error
	})
	if err != nil {
		return err
	}

	s.reloadDialer()
	return nil
}

// 3 SendTestEmail 用当前配置发送测试邮件
func (s *EmailService) SendTestEmail(to string) error {
	body := `<p>这是一封来自变电站运行日志系统的测试邮件。</p>
<p>This is a test email from the Substation Logbook system. If you received it, the SMTP configuration works.</p>`
	return s.send(to, "变电站日志系统测试邮件 / Logbook Test Email", body)
}

// 4 SendEntryNotification 发送新条目通知
func (s *EmailService) SendEntryNotification(entry *EntryDetail, to string) error {
	var buf bytes.Buffer
	if err := entryMailTemplate.Execute(&buf, entryMailData{
		Entry:    entry,
		Color:    severityColor(entry.Severity),
		AppURL:   s.Config.AppURL,
		Datetime: entry.EntryDatetime.Format("2006-01-02 15:04"),
		Readings: entryReadings(entry),
	}); err != nil {
		return fmt.Errorf("渲染通知邮件失败: %w", err)
	}

	subject := fmt.Sprintf("[%s] %s 新日志条目", entry.Severity, entry.SubstationName)
	return s.send(to, subject, buf.String())
}

// send 发送HTML邮件
func (s *EmailService) send(to, subject, htmlBody string) error {
	s.mu.RLock()
	dialer, from, name := s.dialer, s.from, s.name
	s.mu.RUnlock()

	if dialer == nil || from == "" {
		return errors.New("邮件服务未配置")
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", from, name)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}
	return nil
}

// reloadDialer 依据最新配置重建拨号器
func (s *EmailService) reloadDialer() {
	cfg, err := s.GetEmailConfig()
	if err != nil {
		Logger.Error("加载SMTP配置失败: %v", err)
		return
	}

	password := cfg.SMTPPassword
	if password == "" && cfg.SMTPUser == s.Config.SMTPUser {
		password = s.Config.SMTPPassword
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg.SMTPHost == "" {
		s.dialer = nil
		return
	}
	s.dialer = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, password)
	s.dialer.SSL = cfg.SMTPSecure
	s.from = cfg.FromEmail
	s.name = cfg.FromName
}

// severityColor 邮件标题条的颜色
func severityColor(severity string) string {
	switch severity {
	case string(models.SeverityCritical):
		return "#d32f2f"
	case string(models.SeverityWarning):
		return "#f57c00"
	default:
		return "#388e3c"
	}
}

type entryMailData struct {
	Entry    *EntryDetail
	Color    string
	AppURL   string
	Datetime string
	Readings []mailReading
}

// mailReading 邮件中的一行电气读数
type mailReading struct {
	Label string
	Value string
}

// entryReadings 汇总条目上已填写的电气参数
func entryReadings(entry *EntryDetail) []mailReading {
	var readings []mailReading
	add := func(label, unit string, v *float64) {
		if v == nil {
			return
		}
		value := strconv.FormatFloat(*v, 'f', -1, 64)
		if unit != "" {
			value += " " + unit
		}
		readings = append(readings, mailReading{Label: label, Value: value})
	}

	add("电压 Voltage", "kV", entry.VoltageKV)
	add("电流 Current", "A", entry.CurrentA)
	add("功率 Power", "MW", entry.PowerMW)
	add("频率 Frequency", "Hz", entry.FrequencyHz)
	add("功率因数 Power Factor", "", entry.PowerFactor)
	add("电能 Energy", "MWh", entry.EnergyMWH)
	return readings
}

var entryMailTemplate = template.Must(template.New("entry").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background-color: {{.Color}}; color: #ffffff; padding: 16px 20px;">
    <h2 style="margin: 0;">{{.Entry.Severity}} - {{.Entry.SubstationName}}</h2>
    <p style="margin: 4px 0 0;">变电站运行日志新条目通知</p>
  </div>
  <table style="width: 100%; border-collapse: collapse; margin-top: 12px;">
    <tr><td style="padding: 6px 10px; font-weight: bold; width: 120px;">变电站</td>
        <td style="padding: 6px 10px;">{{.Entry.SubstationName}} ({{.Entry.SubstationCode}})</td></tr>
    <tr><td style="padding: 6px 10px; font-weight: bold;">事件时间</td>
        <td style="padding: 6px 10px;">{{.Datetime}}</td></tr>
    {{if .Entry.EventCategory}}
    <tr><td style="padding: 6px 10px; font-weight: bold;">事件类别</td>
        <td style="padding: 6px 10px;">{{.Entry.EventCategory}}</td></tr>
    {{end}}
    {{if .Entry.Equipment}}
    <tr><td style="padding: 6px 10px; font-weight: bold;">设备</td>
        <td style="padding: 6px 10px;">{{.Entry.Equipment}}</td></tr>
    {{end}}
    {{if .Entry.Technicians}}
    <tr><td style="padding: 6px 10px; font-weight: bold;">技术员</td>
        <td style="padding: 6px 10px;">{{.Entry.Technicians}}</td></tr>
    {{end}}
    {{if .Readings}}
    <tr><td style="padding: 6px 10px; font-weight: bold; vertical-align: top;">电气参数</td>
        <td style="padding: 6px 10px;">
          <ul style="margin: 0; padding-left: 18px;">
            {{range .Readings}}<li>{{.Label}}: {{.Value}}</li>{{end}}
          </ul>
        </td></tr>
    {{end}}
    <tr><td style="padding: 6px 10px; font-weight: bold; vertical-align: top;">内容</td>
        <td style="padding: 6px 10px; white-space: pre-wrap;">{{.Entry.Message}}</td></tr>
  </table>
  <p style="padding: 12px 10px; color: #666;">
    登录 <a href="{{.AppURL}}">{{.AppURL}}</a> 查看详情。
  </p>
</div>`))
