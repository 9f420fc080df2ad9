// Package costs реализует модель тарификации операций в кредитах.
//
// Все формулы детерминированы и не имеют состояния: по размеру входных данных
// (секунды аудио, символы текста) вычисляется стоимость каждой операции и
// итоговая сумма. Каждая промежуточная стоимость округляется вверх до целого
// кредита, чтобы фактическое потребление ресурсов никогда не превышало
// предварительно авторизованную сумму.
package costs

import "math"

// Тарифная сетка: стоимость единицы ресурса в кредитах.
const (
	// TranscriptionIncrementSeconds — гранулярность тарификации распознавания речи.
	// Оплата идёт за каждый начатый 10-секундный интервал, минимум один интервал.
	TranscriptionIncrementSeconds = 10
	// TranscriptionCostPerIncrement — кредитов за один 10-секундный интервал.
	TranscriptionCostPerIncrement = 1
	// SummaryInputRatePer1000 — кредитов за 1000 входных токенов суммаризации.
	SummaryInputRatePer1000 = 30
	// SummaryOutputRatePer1000 — кредитов за 1000 выходных токенов суммаризации.
	SummaryOutputRatePer1000 = 60
	// TTSRatePer1000Chars — кредитов за 1000 символов синтеза речи.
	TTSRatePer1000Chars = 40
)

// Константы перевода между единицами измерения.
const (
	// CharsPerToken — приближённое число символов в одном токене.
	CharsPerToken = 4
	// WordsPerMinute — средний темп речи для оценки длительности аудио.
	WordsPerMinute = 150
	// CharsPerWord — средняя длина слова в символах.
	CharsPerWord = 5
	// ttsBufferPercent — запас к числу символов синтеза на пунктуацию и разметку.
	ttsBufferPercent = 10
	// ttsRoundingChars — шаг округления символов синтеза вверх.
	ttsRoundingChars = 100
)

// Ступенчатая функция доли выходных токенов: чем длиннее вход, тем
// пропорционально короче резюме.
const (
	shortInputTokens  = 2000
	mediumInputTokens = 5000

	shortOutputRatio  = 0.20
	mediumOutputRatio = 0.15
	longOutputRatio   = 0.10
)

// Breakdown — постатейная стоимость запроса в целых кредитах.
type Breakdown struct {
	Transcription int64 `json:"transcription"`
	Summarization int64 `json:"summarization"`
	TTS           int64 `json:"tts"`
	Total         int64 `json:"total"`
}

// Input описывает размеры входных данных для оценки стоимости.
// Нулевое поле означает, что соответствующая операция не запрашивается.
type Input struct {
	AudioLengthSeconds float64 // Длительность аудио для распознавания
	TextLength         int     // Символов текста для суммаризации
	SummaryLength      int     // Символов текста для синтеза речи
}

// Estimate вычисляет постатейную стоимость по размерам входных данных.
// Пустой Input даёт нулевую стоимость.
func Estimate(in Input) Breakdown {
	b := Breakdown{
		Transcription: TranscriptionCost(in.AudioLengthSeconds),
		Summarization: SummarizationCost(in.TextLength),
		TTS:           TTSCost(in.SummaryLength),
	}
	b.Total = b.Transcription + b.Summarization + b.TTS
	return b
}

// TranscriptionCost считает стоимость распознавания аудио заданной длительности.
// Тарификация по начатым 10-секундным интервалам: короткий клип стоит как
// минимум один интервал.
func TranscriptionCost(seconds float64) int64 {
	if seconds <= 0 {
		return 0
	}
	increments := int64(math.Ceil(seconds / TranscriptionIncrementSeconds))
	if increments < 1 {
		increments = 1
	}
	return increments * TranscriptionCostPerIncrement
}

// SummarizationCost считает стоимость суммаризации текста заданной длины.
// Входные токены — chars/4, выходные оцениваются долей входных по ступенчатой
// функции; итог округляется вверх до целого кредита.
func SummarizationCost(textChars int) int64 {
	if textChars <= 0 {
		return 0
	}
	inputTokens := float64(textChars) / CharsPerToken
	outputTokens := inputTokens * outputRatio(inputTokens)
	return SummarizationCostTokens(inputTokens, outputTokens)
}

// SummarizationCostTokens считает стоимость суммаризации по фактическому
// числу токенов, например из ответа провайдера. Входная и выходная части
// округляются вверх независимо и затем складываются.
func SummarizationCostTokens(inputTokens, outputTokens float64) int64 {
	if inputTokens <= 0 && outputTokens <= 0 {
		return 0
	}
	inputCost := int64(math.Ceil(inputTokens * SummaryInputRatePer1000 / 1000))
	outputCost := int64(math.Ceil(outputTokens * SummaryOutputRatePer1000 / 1000))
	return inputCost + outputCost
}

// TTSCost считает стоимость синтеза речи для текста заданной длины.
// Число символов увеличивается на 10% и округляется вверх до сотни,
// поэтому фактический синтез никогда не превышает оценку.
func TTSCost(chars int) int64 {
	if chars <= 0 {
		return 0
	}
	buffered := ceilDiv(int64(chars)*(100+ttsBufferPercent), 100)
	billable := ceilDiv(buffered, ttsRoundingChars) * ttsRoundingChars
	return ceilDiv(billable*TTSRatePer1000Chars, 1000)
}

// EstimateFromWordCount даёт предварительную оценку обработки текста,
// известного только числом слов: суммаризация полного текста и синтез
// ожидаемого резюме. Размеры переводятся через среднюю длину слова.
func EstimateFromWordCount(words int) Breakdown {
	if words <= 0 {
		return Breakdown{}
	}
	textChars := words * CharsPerWord
	return Estimate(Input{
		TextLength:    textChars,
		SummaryLength: EstimatedSummaryChars(textChars),
	})
}

// EstimateFromAudioDuration даёт предварительную оценку полного аудио-конвейера:
// распознавание, суммаризация ожидаемой расшифровки и синтез ожидаемого резюме.
// Объём расшифровки оценивается по среднему темпу речи.
func EstimateFromAudioDuration(seconds float64) Breakdown {
	if seconds <= 0 {
		return Breakdown{}
	}
	words := seconds / 60 * WordsPerMinute
	textChars := int(math.Ceil(words * CharsPerWord))
	return Estimate(Input{
		AudioLengthSeconds: seconds,
		TextLength:         textChars,
		SummaryLength:      EstimatedSummaryChars(textChars),
	})
}

// EstimatedSummaryChars оценивает длину резюме в символах для текста
// заданной длины, используя ту же ступенчатую функцию, что и тарификация.
func EstimatedSummaryChars(textChars int) int {
	if textChars <= 0 {
		return 0
	}
	inputTokens := float64(textChars) / CharsPerToken
	outputTokens := inputTokens * outputRatio(inputTokens)
	return int(math.Ceil(outputTokens * CharsPerToken))
}

// outputRatio возвращает ожидаемую долю выходных токенов от входных.
// Границы включающие: ровно 2000 токенов — 20%, ровно 5000 — 15%.
func outputRatio(inputTokens float64) float64 {
	switch {
	case inputTokens <= shortInputTokens:
		return shortOutputRatio
	case inputTokens <= mediumInputTokens:
		return mediumOutputRatio
	default:
		return longOutputRatio
	}
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
