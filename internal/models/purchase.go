package models

import "time"

// Purchase представляет запись о покупке кредитов через платёжного провайдера.
// SessionID уникален: повторная доставка webhook с тем же session_id не
// приводит к повторному начислению.
type Purchase struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	SessionID string    `json:"session_id"`
	PriceID   string    `json:"price_id"`
	Credits   int64     `json:"credits"`
	CreatedAt time.Time `json:"created_at"`
}

// Receipt — сообщение для воркера отправки квитанций о покупке.
type Receipt struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	SessionID string `json:"session_id"`
	PriceID   string `json:"price_id"`
	Credits   int64  `json:"credits"`
	Balance   int64  `json:"balance"`
}
