package roster

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-sql/civil"
)

type profileDoc struct {
	ShortName   string            `json:"short_name"`
	Permissions string            `json:"permissions"`
	SheetCols   []int             `json:"g_sheet_cols"`
	Shifts      map[string]string `json:"shifts"`
}

func readFile(path string) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a roster document keyed by user id.
func Parse(raw []byte) (*Snapshot, error) {
	var doc map[string]profileDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	profiles := make(map[int64]Profile, len(doc))
	for key, d := range doc {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: bad user id %q", ErrInvalidFile, key)
		}

		p := Profile{
			UserID:     id,
			ShortName:  d.ShortName,
			Permission: parsePermission(d.Permissions),
		}

		switch len(d.SheetCols) {
		case 0:
		case 2:
			if d.SheetCols[0] <= 0 || d.SheetCols[1] <= 0 {
				return nil, fmt.Errorf("%w: user %d: columns must be positive", ErrInvalidFile, id)
			}
			p.NumberColumn, p.DateColumn = d.SheetCols[0], d.SheetCols[1]
		default:
			return nil, fmt.Errorf("%w: user %d: g_sheet_cols needs two columns", ErrInvalidFile, id)
		}

		if len(d.Shifts) > 0 {
			p.Shifts = make(map[civil.Date]ShiftKind, len(d.Shifts))
			for day, kind := range d.Shifts {
				date, err := civil.ParseDate(day)
				if err != nil {
					return nil, fmt.Errorf("%w: user %d: bad shift date %q", ErrInvalidFile, id, day)
				}
				p.Shifts[date] = ShiftKind(kind)
			}
		}

		profiles[id] = p
	}
	return &Snapshot{profiles: profiles}, nil
}
