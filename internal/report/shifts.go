package report

import (
	"errors"
	"fmt"
	"strings"

	"scan-stats-service/internal/roster"
)

var shiftLabels = map[roster.ShiftKind]string{
	roster.ShiftWork:   "🟢 Рабочий день",
	roster.ShiftClosed: "🟡 Закрыто",
	roster.ShiftOff:    "🔴 Выходной",
}

// ShiftLabel is the display text for a shift kind.
func ShiftLabel(k roster.ShiftKind) string {
	if l, ok := shiftLabels[k]; ok {
		return l
	}
	return "❔ Без данных"
}

// ShiftMessage renders a schedule. err is the lookup error from the roster,
// if any.
func ShiftMessage(days []roster.Shift, err error) string {
	switch {
	case errors.Is(err, roster.ErrUnknownUser):
		return "Для вас график пока не назначен."
	case errors.Is(err, roster.ErrNoSchedule):
		return "ℹ️ Для вас не задан график смен."
	}

	lines := make([]string, 0, len(days)+2)
	lines = append(lines, "🎯 *Ваш персональный график смен*  \n")
	for _, d := range days {
		lines = append(lines, fmt.Sprintf("📅 %s → %s", dayMonth(d.Day), ShiftLabel(d.Kind)))
	}
	lines = append(lines, "\n➖➖➖➖➖  \n✅ *Обновлено автоматически*")
	return strings.Join(lines, "\n")
}
