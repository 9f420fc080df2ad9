// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, хэш пароля и баланс кредитов.
// Структура используется в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	UUID         string    // Уникальный идентификатор пользователя
	Email        string    // Электронная почта
	Username     string    // Имя пользователя (уникальное)
	PasswordHash string    // Хэш пароля пользователя
	Role         string    // Роль пользователя, admin или user
	Credits      int64     // Предоплаченный баланс кредитов
	CreatedAt    time.Time // Дата регистрации
}
