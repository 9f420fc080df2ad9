// Package smtp содержит SMTP-транспорт для писем-квитанций о покупках
// кредитов и интерфейсы, позволяющие подменять его в тестах.
package smtp

import "io"

// Client — минимальный набор операций SMTP-сессии для отправки письма.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface открывает SMTP-сессию и сообщает адрес отправителя.
type TransportInterface interface {
	Connect() (Client, error)
	GetSMTPUser() string
}
