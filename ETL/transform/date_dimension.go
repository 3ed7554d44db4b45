package transform

import (
	"fmt"
	"strings"
	"time"

	"github.com/LilVoxy/transactions_dwh/ETL/models"
)

// Форматы отметок времени, которые встречаются в источниках
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// DateNormalizer приводит отметку времени транзакции к календарной дате.
// Используется и для календаря, и для ключей фактов, поэтому правило одно.
type DateNormalizer struct {
	location *time.Location
}

// NewDateNormalizer создает нормализатор. При location == nil день определяется
// смещением самой отметки времени, а отметки без смещения считаются UTC.
func NewDateNormalizer(location *time.Location) *DateNormalizer {
	return &DateNormalizer{location: location}
}

// Normalize разбирает отметку времени и возвращает полночь ее календарного дня в UTC
func (n *DateNormalizer) Normalize(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("пустая дата транзакции")
	}

	parseLocation := time.UTC
	if n.location != nil {
		parseLocation = n.location
	}

	for _, layout := range timestampLayouts {
		ts, err := time.ParseInLocation(layout, value, parseLocation)
		if err != nil {
			continue
		}
		if n.location != nil {
			ts = ts.In(n.location)
		}
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil
	}

	return time.Time{}, fmt.Errorf("не удалось разобрать дату транзакции %q", raw)
}

// DateKey возвращает суррогатный ключ даты в формате YYYYMMDD
func DateKey(date time.Time) int {
	return date.Year()*10000 + int(date.Month())*100 + date.Day()
}

// DateFromKey восстанавливает дату (полночь UTC) по ключу YYYYMMDD
func DateFromKey(key int) time.Time {
	return time.Date(key/10000, time.Month(key/100%100), key%100, 0, 0, 0, 0, time.UTC)
}

// BuildCalendar создает по одной строке измерения на каждый день отрезка [start, end]
func BuildCalendar(start, end time.Time) []models.DimDate {
	first := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	if last.Before(first) {
		return nil
	}

	var dates []models.DimDate
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		dates = append(dates, models.DimDate{
			DateKey:   DateKey(day),
			FullDate:  day,
			DayOfWeek: (int(day.Weekday()) + 6) % 7, // 0=Monday, 6=Sunday
			DayName:   day.Weekday().String(),
			Month:     int(day.Month()),
			MonthName: day.Month().String(),
			Year:      day.Year(),
		})
	}
	return dates
}
