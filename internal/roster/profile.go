package roster

import (
	"sort"
	"strconv"

	"github.com/golang-sql/civil"
)

type Permission string

const (
	PermissionAdmin   Permission = "admin"
	PermissionSpecial Permission = "special"
	PermissionUser    Permission = "user"
	PermissionNone    Permission = "none"
)

func parsePermission(s string) Permission {
	switch p := Permission(s); p {
	case PermissionAdmin, PermissionSpecial, PermissionUser:
		return p
	default:
		return PermissionNone
	}
}

type ShiftKind string

const (
	ShiftWork   ShiftKind = "work"
	ShiftClosed ShiftKind = "closed"
	ShiftOff    ShiftKind = "off"
)

type Shift struct {
	Day  civil.Date
	Kind ShiftKind
}

type Profile struct {
	UserID     int64
	ShortName  string
	Permission Permission
	// NumberColumn and DateColumn are 1-based spreadsheet columns; zero means
	// the user's scans are not mirrored.
	NumberColumn int
	DateColumn   int
	Shifts       map[civil.Date]ShiftKind
}

// Snapshot is an immutable view of the roster. Callers take one per request.
type Snapshot struct {
	profiles map[int64]Profile
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.profiles)
}

func (s *Snapshot) Profile(userID int64) (Profile, bool) {
	if s == nil {
		return Profile{}, false
	}
	p, ok := s.profiles[userID]
	return p, ok
}

// Name falls back to "ID <n>" for users outside the roster.
func (s *Snapshot) Name(userID int64) string {
	if p, ok := s.Profile(userID); ok && p.ShortName != "" {
		return p.ShortName
	}
	return "ID " + strconv.FormatInt(userID, 10)
}

func (s *Snapshot) Permission(userID int64) Permission {
	if p, ok := s.Profile(userID); ok {
		return p.Permission
	}
	return PermissionNone
}

// IsAllowed reports whether the user may submit scans at all.
func (s *Snapshot) IsAllowed(userID int64) bool {
	_, ok := s.Profile(userID)
	return ok
}

func (s *Snapshot) IsAdmin(userID int64) bool {
	return s.Permission(userID) == PermissionAdmin
}

// IsSpecial covers both admin and special tiers.
func (s *Snapshot) IsSpecial(userID int64) bool {
	p := s.Permission(userID)
	return p == PermissionAdmin || p == PermissionSpecial
}

// Recipients lists user-tier members except the sender, ordered by id.
func (s *Snapshot) Recipients(senderID int64) []int64 {
	if s == nil {
		return nil
	}
	var ids []int64
	for id, p := range s.profiles {
		if id == senderID || p.Permission != PermissionUser {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SheetColumns returns the user's mirror columns.
func (s *Snapshot) SheetColumns(userID int64) (number, date int, ok bool) {
	p, found := s.Profile(userID)
	if !found || p.NumberColumn == 0 || p.DateColumn == 0 {
		return 0, 0, false
	}
	return p.NumberColumn, p.DateColumn, true
}

// ShiftSchedule lists days consecutive days starting at from. Days missing
// from the roster are off.
func (s *Snapshot) ShiftSchedule(userID int64, from civil.Date, days int) ([]Shift, error) {
	p, ok := s.Profile(userID)
	if !ok {
		return nil, ErrUnknownUser
	}
	if len(p.Shifts) == 0 {
		return nil, ErrNoSchedule
	}
	out := make([]Shift, 0, days)
	for i := 0; i < days; i++ {
		d := from.AddDays(i)
		kind, ok := p.Shifts[d]
		if !ok {
			kind = ShiftOff
		}
		out = append(out, Shift{Day: d, Kind: kind})
	}
	return out, nil
}
