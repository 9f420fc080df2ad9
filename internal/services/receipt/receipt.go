// Package receipt отправляет покупателям квитанции о зачислении кредитов
// по сообщениям из очереди.
package receipt

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/summraize/summraize-backend/internal/lib/sl"
	"github.com/summraize/summraize-backend/internal/lib/smtp"
	"github.com/summraize/summraize-backend/internal/models"
)

// Transport описывает подключение к SMTP-серверу.
type Transport interface {
	Connect() (smtp.Client, error)
	GetSMTPUser() string
}

// ReceiptService отправляет письма-квитанции.
type ReceiptService struct {
	transport Transport
	log       *slog.Logger
}

// NewReceiptService создает новый экземпляр ReceiptService.
func NewReceiptService(log *slog.Logger, transport Transport) *ReceiptService {
	return &ReceiptService{
		transport: transport,
		log:       log,
	}
}

// SendPurchaseReceipt разбирает сообщение из очереди и отправляет квитанцию.
func (s *ReceiptService) SendPurchaseReceipt(body []byte) error {
	var receipt models.Receipt
	if err := json.Unmarshal(body, &receipt); err != nil {
		s.log.Error("failed to unmarshal receipt message", "error", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{receipt.Email}
	subject := "Your Summraize credits purchase"
	bodyText := fmt.Sprintf(
		"Hi %s!\n\nThank you for your purchase.\n\nCredits added: %d\nCurrent balance: %d\nOrder reference: %s\n\nHappy summarizing!",
		receipt.Username, receipt.Credits, receipt.Balance, receipt.SessionID)

	return s.sendEmail(to, subject, bodyText)
}

func (s *ReceiptService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("Failed to connect to SMTP server", "error", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("Failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), "error", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("Failed to set RCPT TO", "recipient", addr, "error", sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("Failed to get Data writer", "error", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("Failed to write email body", "error", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("Failed to close Data writer", "error", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("Failed to quit SMTP client", "error", sl.Err(err))
		return err
	}

	s.log.Info("receipt email sent", "to", to)
	return nil
}
