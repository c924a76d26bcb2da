package triage

// ReasonField identifies one of the 12 yes/no "reason for visit" questions.
type ReasonField string

const (
	ReasonAnxiety          ReasonField = "ansiedade_excessiva"
	ReasonSadness          ReasonField = "tristeza_constante"
	ReasonSuicidalThoughts ReasonField = "pensamentos_suicidas"
	ReasonAggression       ReasonField = "agressividade"
	ReasonPanic            ReasonField = "crises_panico"
	ReasonSubstanceUse     ReasonField = "uso_substancias"
	ReasonHallucinations   ReasonField = "alucinacoes_delirios"
	ReasonSleep            ReasonField = "problemas_sono"
	ReasonEating           ReasonField = "problemas_alimentares"
	ReasonGrief            ReasonField = "luto_recente"
	ReasonDomesticViolence ReasonField = "violencia_domestica"
	ReasonRelationships    ReasonField = "dificuldade_relacionamentos"
)

// ScaleField identifies one of the 10 intensity-scale (0-4) questions.
type ScaleField string

const (
	ScaleAnxiety          ScaleField = "ansiedade"
	ScaleSadness          ScaleField = "tristeza"
	ScaleIrritability     ScaleField = "irritabilidade"
	ScaleInsomnia         ScaleField = "insonia"
	ScaleSuicidalIdeation ScaleField = "ideacao_suicida"
	ScaleSuicideAttempt   ScaleField = "tentativa_suicidio"
	ScaleHallucinations   ScaleField = "alucinacoes"
	ScaleCrying           ScaleField = "choro"
	ScaleIsolation        ScaleField = "isolamento"
	ScaleSubstanceAbuse   ScaleField = "abuso_substancias"
)

// ReasonQuestion pairs a reason field with its prompt. Critical questions
// trigger the urgent protocol as soon as they are answered "yes".
type ReasonQuestion struct {
	Field    ReasonField
	Prompt   string
	Critical bool
}

// ScaleQuestion pairs a scale field with its prompt. Critical questions
// trigger the urgent protocol when answered with 3 or 4.
type ScaleQuestion struct {
	Field    ScaleField
	Prompt   string
	Critical bool
}

// ReasonQuestions is the fixed ordered catalog of the 12 reason questions.
// The order is part of the protocol: answers are written by position.
var ReasonQuestions = []ReasonQuestion{
	{ReasonAnxiety, "Você tem sentido ansiedade excessiva?", false},
	{ReasonSadness, "Você tem sentido tristeza constante?", false},
	{ReasonSuicidalThoughts, "⚠️ Você tem tido pensamentos suicidas?", true},
	{ReasonAggression, "Você tem sentido agressividade?", false},
	{ReasonPanic, "Você tem tido crises de pânico?", false},
	{ReasonSubstanceUse, "Você tem feito uso de substâncias (álcool/drogas)?", false},
	{ReasonHallucinations, "⚠️ Você tem tido alucinações ou delírios?", true},
	{ReasonSleep, "Você tem problemas de sono?", false},
	{ReasonEating, "Você tem problemas alimentares?", false},
	{ReasonGrief, "Você passou por um luto recente?", false},
	{ReasonDomesticViolence, "⚠️ Você sofreu violência doméstica?", true},
	{ReasonRelationships, "Você tem dificuldades nos relacionamentos?", false},
}

// ScaleQuestions is the fixed ordered catalog of the 10 scale questions.
var ScaleQuestions = []ScaleQuestion{
	{ScaleAnxiety, "Qual o nível da sua ansiedade nas últimas 2 semanas?", false},
	{ScaleSadness, "Qual o nível da sua tristeza/depressão?", false},
	{ScaleIrritability, "Qual o nível da sua irritabilidade?", false},
	{ScaleInsomnia, "Qual o nível dos seus problemas de sono?", false},
	{ScaleSuicidalIdeation, "⚠️ Qual a intensidade de pensamentos sobre morte/suicídio?", true},
	{ScaleSuicideAttempt, "⚠️ Já tentou se machucar ou se matar? (0=nunca, 4=recentemente)", true},
	{ScaleHallucinations, "⚠️ Qual a frequência de ver/ouvir coisas que outros não veem?", true},
	{ScaleCrying, "Qual a frequência de episódios de choro?", false},
	{ScaleIsolation, "Qual o nível do seu isolamento social?", false},
	{ScaleSubstanceAbuse, "Qual o nível do uso de álcool/drogas?", false},
}
