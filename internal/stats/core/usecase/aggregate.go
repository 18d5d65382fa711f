package usecase

import (
	"sort"
	"time"

	"scan-stats-service/internal/stats/core/domain"

	"github.com/golang-sql/civil"
)

// todayTally summarizes one user's scans of a single day.
type todayTally struct {
	count      int64
	duplicates int64
	last       *time.Time
}

func tallyScans(scans []domain.Scan) todayTally {
	var t todayTally
	seen := make(map[string]struct{}, len(scans))
	for i := range scans {
		s := scans[i]
		t.count++
		seen[s.Identifier] = struct{}{}
		if t.last == nil || s.ScannedAt.After(*t.last) {
			at := s.ScannedAt
			t.last = &at
		}
	}
	t.duplicates = t.count - int64(len(seen))
	return t
}

func inRange(d, from, to civil.Date) bool {
	return !d.Before(from) && !d.After(to)
}

// sumFor adds the counts of userID inside [from, to] across every source.
func sumFor(userID int64, from, to civil.Date, sources ...[]domain.DailyCount) int64 {
	var total int64
	for _, rows := range sources {
		for _, r := range rows {
			if r.UserID == userID && inRange(r.Day, from, to) {
				total += r.Count
			}
		}
	}
	return total
}

// userTotals is additive across sources; every user with a row is present,
// even with a zero total.
func userTotals(sources ...[]domain.DailyCount) map[int64]int64 {
	totals := map[int64]int64{}
	for _, rows := range sources {
		for _, r := range rows {
			totals[r.UserID] += r.Count
		}
	}
	return totals
}

// rankOf orders by total desc then user id asc. Rank 0 when absent.
func rankOf(totals map[int64]int64, userID int64) (domain.Rank, int) {
	if _, ok := totals[userID]; !ok {
		return 0, len(totals)
	}
	ids := make([]int64, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if totals[ids[i]] != totals[ids[j]] {
			return totals[ids[i]] > totals[ids[j]]
		}
		return ids[i] < ids[j]
	})
	for i, id := range ids {
		if id == userID {
			return domain.Rank(i + 1), len(ids)
		}
	}
	return 0, len(ids)
}

// bestDayOf picks the single largest positive day of one source. Ties go to
// the more recent day.
func bestDayOf(userID int64, rows []domain.DailyCount, src domain.Source) *domain.BestDay {
	var best *domain.BestDay
	for _, r := range rows {
		if r.UserID != userID || r.Count <= 0 {
			continue
		}
		if best == nil || r.Count > best.Count || (r.Count == best.Count && r.Day.After(best.Day)) {
			best = &domain.BestDay{Day: r.Day, Count: r.Count, Source: src}
		}
	}
	return best
}

// betterDay never sums the candidates.
func betterDay(a, b *domain.BestDay) *domain.BestDay {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case b.Count > a.Count:
		return b
	case b.Count == a.Count && b.Day.After(a.Day):
		return b
	default:
		return a
	}
}

// activeDays counts distinct days with any row for userID, across sources.
func activeDays(userID int64, sources ...[]domain.DailyCount) int {
	days := map[civil.Date]struct{}{}
	for _, rows := range sources {
		for _, r := range rows {
			if r.UserID == userID {
				days[r.Day] = struct{}{}
			}
		}
	}
	return len(days)
}
