package notifier

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"
)

const senderName = "Rapid Response Hub"

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// mailClient - часть go-mail клиента, которая нужна отправителю
type mailClient interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPConfig - параметры SMTP сервера
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// SMTPSender отправляет письма через SMTP
type SMTPSender struct {
	client mailClient
	from   string
	logger *logrus.Logger
}

// NewSMTPSender создает отправителя. Без учетных данных возвращается
// выключенный отправитель, который пропускает все письма
func NewSMTPSender(cfg SMTPConfig, logger *logrus.Logger) (*SMTPSender, error) {
	if cfg.Username == "" || cfg.Password == "" {
		logger.Warn("SMTP not configured. Email notifications will be skipped.")
		return &SMTPSender{logger: logger}, nil
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}
	if cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}

	logger.WithField("host", cfg.Host).Info("SMTP configured successfully")
	return &SMTPSender{client: client, from: from, logger: logger}, nil
}

func (s *SMTPSender) Enabled() bool {
	return s.client != nil
}

// SendEmail отправляет письмо с HTML телом и текстовой альтернативой
func (s *SMTPSender) SendEmail(ctx context.Context, to, subject, html string) bool {
	log := s.logger.WithFields(logrus.Fields{"channel": "email", "to": to})
	if !s.Enabled() {
		log.Warn("Email not configured. Skipping email notification.")
		return false
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(senderName, s.from); err != nil {
		log.WithError(err).Error("Invalid sender address")
		return false
	}
	if err := msg.To(to); err != nil {
		log.WithError(err).Warn("Invalid recipient address")
		return false
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, plainText(html))
	msg.AddAlternativeString(mail.TypeTextHTML, html)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		log.WithError(err).Error("Email send error")
		return false
	}

	log.Info("Email sent")
	return true
}

func plainText(html string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(html, ""))
}
