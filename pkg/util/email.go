package util

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/matdori/matdori-backend/pkg/logger"
)

// Mailer delivers verification codes to users
type Mailer interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}

// SMTPConfig SMTP 발송 설정
type SMTPConfig struct {
	Host     string
	Port     string
	From     string
	Password string
}

// SMTPMailer sends verification mail via SMTP. Without credentials it runs in
// dev mode and only logs the code.
type SMTPMailer struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

func (m *SMTPMailer) devMode() bool {
	return m.cfg.From == "" || m.cfg.Password == ""
}

func (m *SMTPMailer) SendVerificationCode(ctx context.Context, email, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// 개발 모드: SMTP 설정이 없으면 로그에만 출력
	if m.devMode() {
		logger.Warn("[DEV MODE] email verification code", map[string]interface{}{
			"email": email,
			"code":  code,
		})
		return nil
	}

	msg := buildVerificationMessage(m.cfg.From, email, code)
	auth := smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.Host)
	if err := m.send(m.cfg.Host+":"+m.cfg.Port, auth, m.cfg.From, []string{email}, msg); err != nil {
		logger.Error("Failed to send verification email", err, map[string]interface{}{
			"email": email,
		})
		return fmt.Errorf("이메일 전송에 실패했습니다: %w", err)
	}

	logger.Info("Verification email sent", map[string]interface{}{
		"email": email,
	})
	return nil
}

func buildVerificationMessage(from, to, code string) []byte {
	subject := "[맛도리] 이메일 인증 번호"
	body := fmt.Sprintf(`
<html>
<body style="font-family: Arial, sans-serif; padding: 20px;">
	<h1 style="color: #333;">이메일 인증</h1>
	<p>맛도리에 가입해주셔서 감사합니다. 아래 인증 번호를 입력해주세요.</p>
	<h2 style="letter-spacing: 4px;">%s</h2>
	<p style="color: #999; font-size: 14px;">* 본인이 요청하지 않은 경우, 이 이메일을 무시하셔도 됩니다.</p>
</body>
</html>
`, code)

	return []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		from, to, subject, body,
	))
}
