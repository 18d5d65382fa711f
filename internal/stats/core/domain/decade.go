package domain

import (
	"strconv"
	"time"

	"scan-stats-service/internal/clock"

	"github.com/golang-sql/civil"
)

// Decade is one of three fixed windows of a month: 1-10, 11-20, 21-end.
type Decade struct {
	Num   int
	Start civil.Date
	End   civil.Date
}

var monthNames = [...]string{
	"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

// MonthName returns the Russian display name.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// DecadeNum maps a day of month to 1, 2 or 3.
func DecadeNum(day int) int {
	switch {
	case day <= 10:
		return 1
	case day <= 20:
		return 2
	default:
		return 3
	}
}

// DecadeOf returns the decade containing d, ending on d itself
// (the running decade as of that day).
func DecadeOf(d civil.Date) Decade {
	num := DecadeNum(d.Day)
	return Decade{
		Num:   num,
		Start: civil.Date{Year: d.Year, Month: d.Month, Day: decadeStartDay(num)},
		End:   d,
	}
}

// DecadeInMonth returns the full decade num of the given month. num must be 1..3.
func DecadeInMonth(year int, month time.Month, num int) Decade {
	end := 10 * num
	if num == 3 {
		end = clock.DaysInMonth(year, month)
	}
	return Decade{
		Num:   num,
		Start: civil.Date{Year: year, Month: month, Day: decadeStartDay(num)},
		End:   civil.Date{Year: year, Month: month, Day: end},
	}
}

func decadeStartDay(num int) int {
	return 10*(num-1) + 1
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
