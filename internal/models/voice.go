package models

// TierUsage хранит месячный счётчик символов, синтезированных голосами
// одного уровня качества. ResetMonth — месяц последнего сброса в формате
// 2006-01; при смене месяца счётчик обнуляется.
type TierUsage struct {
	Tier       string // Имя уровня качества: journey, wavenet, neural2, standard
	CharsUsed  int64  // Символов синтезировано в текущем месяце
	ResetMonth string // Месяц последнего сброса счётчика
}
