package report

import (
	"fmt"
	"sort"
	"strings"

	"scan-stats-service/internal/stats/core/domain"

	"github.com/golang-sql/civil"
)

const noData = "нет данных"

func dayMonth(d civil.Date) string {
	return fmt.Sprintf("%02d.%02d", d.Day, int(d.Month))
}

// PersonalMessage is the chat rendering of one user's stats.
func PersonalMessage(name string, s *domain.PersonalStats) string {
	var b strings.Builder

	fmt.Fprintf(&b, "👤 *Ваша статистика*\n🟢 *В сети*\n\n*Имя:* %s\n\n", FirstName(name))

	last := noData
	if s.LastAddition != nil {
		last = s.LastAddition.Format("15:04")
	}
	fmt.Fprintf(&b, "📅 *Сегодня:*\n— ✅ Самокатов: *%d*\n— 🔄 Дубликатов: *%d*\n— ⏳ Последнее добавление: *%s*\n\n",
		s.TodayCount, s.TodayDuplicates, last)

	p := s.Premium
	var footer string
	fmt.Fprintf(&b, "📊 *За декаду (10 дней):*\n⚡️ %d / %d\n", p.Total, p.Norm)
	if p.Total >= p.Norm {
		fmt.Fprintf(&b, "🔥 Сверх нормы: *+%d*\n💰 Премия: *%s*\n\n", p.Over, Money(p.Amount))
		footer = "📌 *Прогресс обновляется ежедневно!*"
	} else {
		fmt.Fprintf(&b, "🔹 Осталось до премии: *%d*\n💰 Премия пока не начислена\n\n", p.Remaining)
		footer = fmt.Sprintf("📌 *Добейте еще %d самокатов, чтобы получить премию!*", p.Remaining)
	}

	bestDate, bestCount := noData, int64(0)
	if s.BestDay != nil {
		bestDate, bestCount = dayMonth(s.BestDay.Day), s.BestDay.Count
	}
	fmt.Fprintf(&b, "📊 *За все время:*\n— 🚀 Общий результат: *%d самокатов*\n— 🌟 Лучший день: *%s – %d самокатов*\n— 📈 Среднее в день: *%d самокатов*\n— 🏆 Ранг среди пользователей: *%s место*\n",
		s.OverallTotal, bestDate, bestCount, s.AveragePerDay, s.Rank)

	b.WriteString("\n")
	b.WriteString(footer)
	return b.String()
}

// TodayMessage lists every user with scans today, busiest first.
func TodayMessage(r *domain.TodayReport, names Names) string {
	if r == nil || len(r.Users) == 0 {
		return "За сегодня еще нет данных."
	}

	entries := make([]domain.TodayEntry, 0, len(r.Users))
	for _, e := range r.Users {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].UserID < entries[j].UserID
	})

	var total, dups int64
	blocks := make([]string, 0, len(entries)+3)
	for _, e := range entries {
		last := noData
		if !e.LastAdd.IsZero() {
			last = e.LastAdd.Format("02.01. 15:04")
		}
		blocks = append(blocks, fmt.Sprintf("🟢 %s\nДата: %s\nВсего самокатов: %d\nДубликаты: %d",
			names.Name(e.UserID), last, e.Count, e.Duplicates))
		total += e.Count
		dups += e.Duplicates
	}

	blocks = append(blocks,
		fmt.Sprintf("\n\nВсего самокатов: %d", total),
		fmt.Sprintf("Всего дубликатов: %d", dups),
		fmt.Sprintf("Исполнителей: %d", len(entries)),
	)
	return strings.Join(blocks, "\n\n")
}

// DecadeMessage lists decade totals against the norm and the premium earners
// ordered by amount.
func DecadeMessage(r *domain.DecadeReport, rule domain.PremiumRule, names Names) string {
	if len(r.Totals) == 0 {
		return fmt.Sprintf("Нет данных за %d-ю декаду (%s %d г.).", r.Decade.Num, strings.ToLower(r.MonthName), r.Year)
	}

	type row struct {
		userID int64
		total  int64
	}
	rows := make([]row, 0, len(r.Totals))
	for id, total := range r.Totals {
		rows = append(rows, row{id, total})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].total != rows[j].total {
			return rows[i].total > rows[j].total
		}
		return rows[i].userID < rows[j].userID
	})

	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Отчет за %d Декаду (%s %d)*\n\n", r.Decade.Num, r.MonthName, r.Year)
	b.WriteString("👥 *Статистика сотрудников:*")

	type earner struct {
		name   string
		amount int64
	}
	var earners []earner
	for _, row := range rows {
		name := names.Name(row.userID)
		fmt.Fprintf(&b, "\n📌 %s — %d/%d", name, row.total, rule.Norm)
		if p := rule.Evaluate(row.total); p.Earned() {
			earners = append(earners, earner{name, p.Amount})
		}
	}
	b.WriteString("\n")

	if len(earners) > 0 {
		sort.SliceStable(earners, func(i, j int) bool { return earners[i].amount > earners[j].amount })
		b.WriteString("\n💰 *Премия за перевыполнение нормы:*")
		for _, e := range earners {
			fmt.Fprintf(&b, "\n🏅 %s — %s", e.name, Money(e.amount))
		}
	}
	return b.String()
}
