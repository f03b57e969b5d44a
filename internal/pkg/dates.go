package pkg

import (
	"time"

	appErrors "Parcelo/internal/errors"
)

const DateLayout = "2006-01-02"

func ParseDate(field, value string) (time.Time, error) {
	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, appErrors.NewValidationError(field, "deve ser uma data válida no formato AAAA-MM-DD")
	}
	return parsed, nil
}

func ParseDatePtr(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	parsed, err := ParseDate(field, *value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// TruncateToDay normaliza para meia-noite UTC. Datas de compra são
// comparadas sempre como dia de calendário, nunca com hora.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func SameDay(a, b time.Time) bool {
	return TruncateToDay(a).Equal(TruncateToDay(b))
}
