package triage

import (
	"fmt"
	"time"
)

// Tier is the triage outcome, ordered by increasing urgency.
type Tier int

const (
	TierMild Tier = iota
	TierModerate
	TierIntense
	TierUrgent
)

// String returns the Portuguese label stored and shown to users.
func (t Tier) String() string {
	switch t {
	case TierMild:
		return "leve"
	case TierModerate:
		return "moderado"
	case TierIntense:
		return "intenso"
	case TierUrgent:
		return "urgente"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// ParseTier converts a stored label back into a Tier.
func ParseTier(label string) (Tier, error) {
	switch label {
	case "leve":
		return TierMild, nil
	case "moderado":
		return TierModerate, nil
	case "intenso":
		return TierIntense, nil
	case "urgente":
		return TierUrgent, nil
	}
	return TierMild, fmt.Errorf("triage: unknown tier label %q", label)
}

// MarshalText implements encoding.TextMarshaler so tiers serialize as labels.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(data []byte) error {
	parsed, err := ParseTier(string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Identity holds the patient identifiers captured at the start of a session.
// NationalID and Phone are normalized digit strings.
type Identity struct {
	Name       string `json:"nome"`
	NationalID string `json:"cpf"`
	Phone      string `json:"telefone"`
}

// Complete reports whether both document and phone have been captured.
func (id Identity) Complete() bool {
	return id.NationalID != "" && id.Phone != ""
}

// Answers accumulates the patient's responses to the fixed question
// catalogs. Field names mirror the persisted record schema.
type Answers struct {
	// Reasons for seeking help (12 yes/no questions).
	ExcessiveAnxiety     bool `json:"ansiedade_excessiva"`
	ConstantSadness      bool `json:"tristeza_constante"`
	SuicidalThoughts     bool `json:"pensamentos_suicidas"`
	Aggression           bool `json:"agressividade"`
	PanicAttacks         bool `json:"crises_panico"`
	SubstanceUse         bool `json:"uso_substancias"`
	Hallucinations       bool `json:"alucinacoes_delirios"`
	SleepProblems        bool `json:"problemas_sono"`
	EatingProblems       bool `json:"problemas_alimentares"`
	RecentGrief          bool `json:"luto_recente"`
	DomesticViolence     bool `json:"violencia_domestica"`
	RelationshipProblems bool `json:"dificuldade_relacionamentos"`

	// Symptom intensity scale (10 questions, each 0-4).
	Anxiety          int `json:"ansiedade"`
	Sadness          int `json:"tristeza"`
	Irritability     int `json:"irritabilidade"`
	Insomnia         int `json:"insonia"`
	SuicidalIdeation int `json:"ideacao_suicida"`
	SuicideAttempt   int `json:"tentativa_suicidio"`
	HallucinationFrq int `json:"alucinacoes"`
	Crying           int `json:"choro"`
	Isolation        int `json:"isolamento"`
	SubstanceAbuse   int `json:"abuso_substancias"`
}

// SetReason writes a reason answer by field identifier.
func (a *Answers) SetReason(field ReasonField, value bool) {
	switch field {
	case ReasonAnxiety:
		a.ExcessiveAnxiety = value
	case ReasonSadness:
		a.ConstantSadness = value
	case ReasonSuicidalThoughts:
		a.SuicidalThoughts = value
	case ReasonAggression:
		a.Aggression = value
	case ReasonPanic:
		a.PanicAttacks = value
	case ReasonSubstanceUse:
		a.SubstanceUse = value
	case ReasonHallucinations:
		a.Hallucinations = value
	case ReasonSleep:
		a.SleepProblems = value
	case ReasonEating:
		a.EatingProblems = value
	case ReasonGrief:
		a.RecentGrief = value
	case ReasonDomesticViolence:
		a.DomesticViolence = value
	case ReasonRelationships:
		a.RelationshipProblems = value
	}
}

// Reason reads a reason answer by field identifier.
func (a *Answers) Reason(field ReasonField) bool {
	switch field {
	case ReasonAnxiety:
		return a.ExcessiveAnxiety
	case ReasonSadness:
		return a.ConstantSadness
	case ReasonSuicidalThoughts:
		return a.SuicidalThoughts
	case ReasonAggression:
		return a.Aggression
	case ReasonPanic:
		return a.PanicAttacks
	case ReasonSubstanceUse:
		return a.SubstanceUse
	case ReasonHallucinations:
		return a.Hallucinations
	case ReasonSleep:
		return a.SleepProblems
	case ReasonEating:
		return a.EatingProblems
	case ReasonGrief:
		return a.RecentGrief
	case ReasonDomesticViolence:
		return a.DomesticViolence
	case ReasonRelationships:
		return a.RelationshipProblems
	}
	return false
}

// SetScale writes a scale answer by field identifier. Values are expected
// to be validated (0-4) before reaching this point.
func (a *Answers) SetScale(field ScaleField, value int) {
	switch field {
	case ScaleAnxiety:
		a.Anxiety = value
	case ScaleSadness:
		a.Sadness = value
	case ScaleIrritability:
		a.Irritability = value
	case ScaleInsomnia:
		a.Insomnia = value
	case ScaleSuicidalIdeation:
		a.SuicidalIdeation = value
	case ScaleSuicideAttempt:
		a.SuicideAttempt = value
	case ScaleHallucinations:
		a.HallucinationFrq = value
	case ScaleCrying:
		a.Crying = value
	case ScaleIsolation:
		a.Isolation = value
	case ScaleSubstanceAbuse:
		a.SubstanceAbuse = value
	}
}

// Scale reads a scale answer by field identifier.
func (a *Answers) Scale(field ScaleField) int {
	switch field {
	case ScaleAnxiety:
		return a.Anxiety
	case ScaleSadness:
		return a.Sadness
	case ScaleIrritability:
		return a.Irritability
	case ScaleInsomnia:
		return a.Insomnia
	case ScaleSuicidalIdeation:
		return a.SuicidalIdeation
	case ScaleSuicideAttempt:
		return a.SuicideAttempt
	case ScaleHallucinations:
		return a.HallucinationFrq
	case ScaleCrying:
		return a.Crying
	case ScaleIsolation:
		return a.Isolation
	case ScaleSubstanceAbuse:
		return a.SubstanceAbuse
	}
	return 0
}

// TotalScore sums the 10 scale fields (range 0-40).
func (a *Answers) TotalScore() int {
	return a.Anxiety + a.Sadness + a.Irritability + a.Insomnia +
		a.SuicidalIdeation + a.SuicideAttempt + a.HallucinationFrq +
		a.Crying + a.Isolation + a.SubstanceAbuse
}

// PositiveReasons counts reasons answered "yes" (range 0-12).
func (a *Answers) PositiveReasons() int {
	count := 0
	for _, v := range []bool{
		a.ExcessiveAnxiety, a.ConstantSadness, a.SuicidalThoughts,
		a.Aggression, a.PanicAttacks, a.SubstanceUse,
		a.Hallucinations, a.SleepProblems, a.EatingProblems,
		a.RecentGrief, a.DomesticViolence, a.RelationshipProblems,
	} {
		if v {
			count++
		}
	}
	return count
}

// Critical reports whether any immediate-risk condition is present:
// a critical reason marked yes, suicidal ideation above 2, any suicide
// attempt history, or hallucination frequency above 2.
func (a *Answers) Critical() bool {
	return a.SuicidalThoughts ||
		a.Hallucinations ||
		a.DomesticViolence ||
		a.SuicidalIdeation > 2 ||
		a.SuicideAttempt > 0 ||
		a.HallucinationFrq > 2
}

// Record is the immutable result of a completed triage session.
type Record struct {
	Identity        Identity  `json:"paciente"`
	Answers         Answers   `json:"sintomas"`
	Tier            Tier      `json:"nivel_gravidade"`
	TotalScore      int       `json:"pontuacao_total"`
	PositiveReasons int       `json:"motivos_positivos"`
	CriticalFlag    bool      `json:"sintomas_criticos"`
	Actions         []string  `json:"acoes_imediatas"`
	Recommendations []string  `json:"recomendacoes"`
	CreatedAt       time.Time `json:"data_triagem"`
	FollowUp        bool      `json:"eh_acompanhamento"`
}

// NewRecord freezes a finished session's answers into a Record.
func NewRecord(identity Identity, answers Answers, tier Tier, actions, recommendations []string, followUp bool, now time.Time) *Record {
	return &Record{
		Identity:        identity,
		Answers:         answers,
		Tier:            tier,
		TotalScore:      answers.TotalScore(),
		PositiveReasons: answers.PositiveReasons(),
		CriticalFlag:    answers.Critical(),
		Actions:         actions,
		Recommendations: recommendations,
		CreatedAt:       now.UTC(),
		FollowUp:        followUp,
	}
}
