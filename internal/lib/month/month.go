// Package month содержит вспомогательные функции для работы с календарными
// окнами: границы месяца и года, ключ месяца и конец дня.
package month

import (
	"time"
)

// KeyLayout формат ключа месяца.
const KeyLayout = "2006-01"

// Bounds возвращает полуоткрытый интервал [начало месяца, начало следующего месяца)
// для момента t в его часовом поясе.
func Bounds(t time.Time) (start, end time.Time) {
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end = start.AddDate(0, 1, 0)
	return start, end
}

// YearStart возвращает 1 января года момента t, 00:00 в его часовом поясе.
func YearStart(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

// Key возвращает ключ месяца YYYY-MM по календарю UTC.
func Key(t time.Time) string {
	return t.UTC().Format(KeyLayout)
}

// StartOfDayUTC возвращает 00:00:00.000 UTC календарного дня d (по UTC).
func StartOfDayUTC(d time.Time) time.Time {
	d = d.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDayUTC возвращает 23:59:59.999 UTC календарного дня d (по UTC).
func EndOfDayUTC(d time.Time) time.Time {
	return StartOfDayUTC(d).Add(24*time.Hour - time.Millisecond)
}

// Date возвращает календарный день момента t в его часовом поясе
// как 00:00 UTC. В таком виде даты хранятся в столбцах DATE.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
