package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyScoreBoundaries(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name  string
		score int
		want  Tier
	}{
		{"just below moderate", 15, TierMild},
		{"moderate lower bound", 16, TierModerate},
		{"just below intense", 23, TierModerate},
		{"intense lower bound", 24, TierIntense},
		{"just below urgent", 31, TierIntense},
		{"urgent lower bound", 32, TierUrgent},
		{"maximum", 40, TierUrgent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := answersWithScore(tt.score)
			assert.Equal(t, tt.want, policy.Classify(a))
		})
	}
}

func TestClassifyReasonBoundaries(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name    string
		reasons int
		want    Tier
	}{
		{"just below moderate", 3, TierMild},
		{"moderate lower bound", 4, TierModerate},
		{"intense lower bound", 6, TierIntense},
		{"urgent lower bound", 8, TierUrgent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := answersWithReasons(tt.reasons)
			assert.Equal(t, tt.want, policy.Classify(a))
		})
	}
}

func TestClassifyTakesWorstOfScoreAndReasons(t *testing.T) {
	policy := DefaultPolicy()

	// 4 positive reasons put the patient at moderate even with a low score.
	a := answersWithReasons(4)
	a.Anxiety = 2
	assert.Equal(t, TierModerate, policy.Classify(a))

	// A high score dominates few reasons.
	a = answersWithScore(25)
	assert.Equal(t, TierIntense, policy.Classify(a))
}

func TestClassifyCriticalForcesUrgent(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name   string
		mutate func(*Answers)
	}{
		{"suicidal thoughts reason", func(a *Answers) { a.SuicidalThoughts = true }},
		{"hallucinations reason", func(a *Answers) { a.Hallucinations = true }},
		{"domestic violence reason", func(a *Answers) { a.DomesticViolence = true }},
		{"suicidal ideation above 2", func(a *Answers) { a.SuicidalIdeation = 3 }},
		{"any suicide attempt", func(a *Answers) { a.SuicideAttempt = 1 }},
		{"hallucination frequency above 2", func(a *Answers) { a.HallucinationFrq = 3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Answers
			tt.mutate(&a)
			assert.True(t, a.Critical())
			assert.Equal(t, TierUrgent, policy.Classify(&a))
		})
	}
}

func TestClassifyMonotonicInScore(t *testing.T) {
	policy := DefaultPolicy()
	prev := TierMild
	for score := 0; score <= 40; score++ {
		tier := policy.Classify(answersWithScore(score))
		assert.GreaterOrEqual(t, int(tier), int(prev), "score %d", score)
		prev = tier
	}
}

// answersWithScore distributes a total score across the scale fields.
// Critical fields are kept below their alert thresholds for as long as
// possible: scores up to 32 never flip the critical flag, and anything
// beyond 32 is in the urgent range where the flag no longer changes the
// expected tier.
func answersWithScore(score int) *Answers {
	a := &Answers{}
	slots := []struct {
		field ScaleField
		cap   int
	}{
		{ScaleAnxiety, 4}, {ScaleSadness, 4}, {ScaleIrritability, 4},
		{ScaleInsomnia, 4}, {ScaleCrying, 4}, {ScaleIsolation, 4},
		{ScaleSubstanceAbuse, 4},
		{ScaleSuicidalIdeation, 2}, {ScaleHallucinations, 2},
		{ScaleSuicideAttempt, 4},
	}
	remaining := score
	for _, s := range slots {
		v := min(remaining, s.cap)
		a.SetScale(s.field, v)
		remaining -= v
	}
	if remaining > 0 {
		extra := min(remaining, 2)
		a.SuicidalIdeation += extra
		remaining -= extra
	}
	if remaining > 0 {
		a.HallucinationFrq += min(remaining, 2)
	}
	return a
}

// answersWithReasons marks n non-critical reasons positive.
func answersWithReasons(n int) *Answers {
	a := &Answers{}
	fields := []ReasonField{
		ReasonAnxiety, ReasonSadness, ReasonAggression, ReasonPanic,
		ReasonSubstanceUse, ReasonSleep, ReasonEating, ReasonGrief,
		ReasonRelationships,
	}
	for i := 0; i < n && i < len(fields); i++ {
		a.SetReason(fields[i], true)
	}
	return a
}
