package etlerr

import (
	"errors"
	"fmt"
)

// Kind классифицирует ошибку ETL-процесса
type Kind string

const (
	// KindUnknown - ошибка без классификации
	KindUnknown Kind = "unknown"

	// KindConnectivity - источник, хранилище документов или склад недоступны
	KindConnectivity Kind = "connectivity"

	// KindDataQuality - строка нарушает правило качества данных (например, сумма <= 0)
	KindDataQuality Kind = "data_quality"

	// KindTransformIntegrity - данные не позволяют построить измерения (невалидная дата, пустой набор)
	KindTransformIntegrity Kind = "transform_integrity"

	// KindReferentialIntegrity - факт ссылается на отсутствующую строку измерения
	KindReferentialIntegrity Kind = "referential_integrity"
)

// Fatal сообщает, прерывает ли ошибка данного вида весь запуск
func (k Kind) Fatal() bool {
	return k != KindDataQuality
}

// Стадии ETL-процесса
const (
	StageExtract   = "extract"
	StageTransform = "transform"
	StageLoad      = "load"
)

// Error - ошибка ETL с видом и стадией, на которой она возникла
type Error struct {
	Kind    Kind
	Stage   string
	Message string
	Cause   error
}

// Error реализует интерфейс error
func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s [%s]: %s", e.Stage, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s [%s]: %s: %v", e.Stage, e.Kind, e.Message, e.Cause)
}

// Unwrap возвращает исходную ошибку
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по виду, чтобы работал errors.Is(err, &Error{Kind: ...})
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Stage == "" || t.Stage == e.Stage)
}

// New создает ошибку без исходной причины
func New(kind Kind, stage, message string) *Error {
	return &Error{Kind: kind, Stage: stage, Message: message}
}

// Newf создает ошибку с форматированным сообщением
func Newf(kind Kind, stage, format string, args ...any) *Error {
	return &Error{Kind: kind, Stage: stage, Message: fmt.Sprintf(format, args...)}
}

// Wrap оборачивает причину в ошибку ETL
func Wrap(kind Kind, stage, message string, cause error) *Error {
	return &Error{Kind: kind, Stage: stage, Message: message, Cause: cause}
}

// KindOf возвращает вид ближайшей ошибки ETL в цепочке
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var etlErr *Error
	if errors.As(err, &etlErr) {
		return etlErr.Kind
	}
	return KindUnknown
}

// IsKind проверяет, есть ли в цепочке ошибка указанного вида
func IsKind(err error, kind Kind) bool {
	return errors.Is(err, &Error{Kind: kind})
}
