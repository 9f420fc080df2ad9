// Package models содержит доменные структуры тарифицируемых операций.
package models

import "time"

// Типы тарифицируемых операций.
const (
	OperationTranscription = "transcription"
	OperationSummarization = "summarization"
	OperationTTS           = "tts"
)

// Operation представляет запись журнала списаний: одна строка на каждую
// успешно завершённую тарифицируемую операцию.
type Operation struct {
	ID            string    // UUID операции
	Username      string    // Пользователь, с баланса которого списаны кредиты
	OperationType string    // Тип операции: transcription, summarization или tts
	Cost          int64     // Фактическая стоимость в кредитах
	Detail        string    // Краткое описание (длительность аудио, число символов и т.п.)
	CreatedAt     time.Time // Время завершения операции
}
