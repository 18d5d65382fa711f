package domain

const (
	DefaultDecadeNorm  int64 = 140
	DefaultPremiumRate int64 = 200
)

type PremiumRule struct {
	Norm int64
	Rate int64
}

type Premium struct {
	Total     int64
	Norm      int64
	Over      int64
	Amount    int64
	Remaining int64
}

// Evaluate: strictly above the norm earns (total-norm)*rate; otherwise
// nothing is earned and Remaining is norm-total.
func (r PremiumRule) Evaluate(total int64) Premium {
	p := Premium{Total: total, Norm: r.Norm}
	if total > r.Norm {
		p.Over = total - r.Norm
		p.Amount = p.Over * r.Rate
		return p
	}
	p.Remaining = r.Norm - total
	return p
}

func (p Premium) Earned() bool {
	return p.Over > 0
}
