// Package sl содержит вспомогательные функции для структурированного
// логирования через slog, единые для всех обработчиков и сервисов.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error" и текстом ошибки, чтобы поле
// ошибки выглядело одинаково во всех записях лога.
//
// Пример:
//
//	log.Error("failed to transcribe audio", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
