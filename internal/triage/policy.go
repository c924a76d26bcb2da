package triage

// Policy holds the severity thresholds applied to a finished answer set.
// The cut points ship as configuration, not code: they have no clinical
// citation and operators may need to tune them.
type Policy struct {
	ScoreModerate int // total score >= this -> at least moderate
	ScoreIntense  int // total score >= this -> at least intense
	ScoreUrgent   int // total score >= this -> urgent

	ReasonsModerate int // positive reasons >= this -> at least moderate
	ReasonsIntense  int // positive reasons >= this -> at least intense
	ReasonsUrgent   int // positive reasons >= this -> urgent
}

// DefaultPolicy returns the thresholds the flowchart was designed around:
// 16/24/32 of 40 on the scale, 4/6/8 of 12 on the reason count.
func DefaultPolicy() Policy {
	return Policy{
		ScoreModerate:   16,
		ScoreIntense:    24,
		ScoreUrgent:     32,
		ReasonsModerate: 4,
		ReasonsIntense:  6,
		ReasonsUrgent:   8,
	}
}

// Classify assigns a severity tier. Evaluation order is fixed and the
// first rule that matches wins:
//
//  1. any critical condition -> urgent
//  2. score or reason count at the urgent cut -> urgent
//  3. score or reason count at the intense cut -> intense
//  4. score or reason count at the moderate cut -> moderate
//  5. otherwise -> mild
func (p Policy) Classify(a *Answers) Tier {
	if a.Critical() {
		return TierUrgent
	}

	score := a.TotalScore()
	reasons := a.PositiveReasons()

	switch {
	case score >= p.ScoreUrgent || reasons >= p.ReasonsUrgent:
		return TierUrgent
	case score >= p.ScoreIntense || reasons >= p.ReasonsIntense:
		return TierIntense
	case score >= p.ScoreModerate || reasons >= p.ReasonsModerate:
		return TierModerate
	default:
		return TierMild
	}
}
