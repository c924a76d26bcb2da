package triage

import (
	"fmt"
	"strings"
)

const (
	promptAskName = "Olá! Para começar a triagem, pode me dizer seu nome completo?"

	promptAskDocuments = "Preciso do seu CPF e telefone para prosseguir. Pode me fornecer essas informações?"

	promptIntroQuestions = `Obrigado pelos dados!

Agora vou fazer uma avaliação completa em 2 etapas:
📋 **1. Motivos da busca** (12 perguntas sim/não)
📊 **2. Escala de sintomas** (10 perguntas 0-4)

Começando com os motivos...`

	promptFollowUpIntro = `Vejo que você já fez triagem conosco.

Vou fazer uma nova avaliação para acompanhar sua evolução.

Começando com os motivos que te trouxeram aqui hoje...`

	promptScaleIntro = `📊 **ESCALA DE SINTOMAS**

Agora vou avaliar a intensidade dos seus sintomas.
Para cada pergunta, responda de **0 a 4**:

• **0** = Nada/Nunca
• **1** = Pouco/Raramente
• **2** = Moderado/Às vezes
• **3** = Bastante/Frequentemente
• **4** = Muito/Sempre`

	promptRestarted = "Tudo bem, vamos recomeçar. Pode me dizer seu nome completo?"

	promptInternalError = "Desculpe, tive um problema ao processar sua mensagem. Pode tentar novamente?"
)

// greetName confirms the captured name and asks for documents.
func greetName(name string) string {
	return fmt.Sprintf("Prazer, %s! Agora preciso do seu CPF e telefone para contato.", name)
}

// reasonPrompt renders the numbered reason question at the given index.
func reasonPrompt(index int) string {
	q := ReasonQuestions[index]
	return fmt.Sprintf("**MOTIVO %d/%d:** %s\n\n*Responda: SIM ou NÃO*", index+1, len(ReasonQuestions), q.Prompt)
}

// scalePrompt renders the numbered scale question at the given index.
func scalePrompt(index int) string {
	q := ScaleQuestions[index]
	return fmt.Sprintf("**SINTOMA %d/%d:** %s\n\n*Responda de 0 a 4*", index+1, len(ScaleQuestions), q.Prompt)
}

// scaleIntroPrompt opens the scale stage with its instructions and first question.
func scaleIntroPrompt() string {
	q := ScaleQuestions[0]
	return fmt.Sprintf("%s\n\n**SINTOMA 1/%d:** %s\n\n*Responda de 0 a 4*", promptScaleIntro, len(ScaleQuestions), q.Prompt)
}

// urgentResponse is the fixed emergency template with the two safety-check
// questions. The status lines vary with persistence and delivery outcome.
func urgentResponse(saved bool, notified bool, notifierConfigured bool) string {
	registered := "✅ Caso registrado no sistema"
	if !saved {
		registered = "⚠️ Registro do caso será feito manualmente pela equipe"
	}

	status := "📱 Configure Telegram para notificações automáticas"
	if notifierConfigured {
		if notified {
			status = "✅ Dr. José foi notificado IMEDIATAMENTE via Telegram"
		} else {
			status = "⚠️ Tentativa de notificação via Telegram (verificar configuração)"
		}
	}

	return fmt.Sprintf(`🚨 **PROTOCOLO DE EMERGÊNCIA ATIVADO** 🚨

%s
%s
✅ Contato familiar será acionado
✅ SAMU 192 disponível se necessário

**VOCÊ NÃO ESTÁ SOZINHO(A)!**

Por favor, me diga:
- Você está em local seguro?
- Há alguém com você agora?

Aguarde o contato do Dr. José.`, registered, status)
}

var tierEmoji = map[Tier]string{
	TierMild:     "🟢",
	TierModerate: "🟡",
	TierIntense:  "🟠",
	TierUrgent:   "🔴",
}

// renderSummary produces the human-readable result shown to the patient.
func renderSummary(rec *Record, notified bool) string {
	emoji := tierEmoji[rec.Tier]
	critical := "NÃO"
	if rec.CriticalFlag {
		critical = "SIM"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s **RESULTADO DA TRIAGEM COMPLETA** %s\n\n", emoji, emoji)
	fmt.Fprintf(&b, "👤 **Paciente:** %s\n", rec.Identity.Name)
	fmt.Fprintf(&b, "📊 **Pontuação Escala:** %d/40\n", rec.TotalScore)
	fmt.Fprintf(&b, "📋 **Motivos Positivos:** %d/12\n", rec.PositiveReasons)
	fmt.Fprintf(&b, "🎯 **Nível de Gravidade:** %s\n\n", strings.ToUpper(rec.Tier.String()))
	fmt.Fprintf(&b, "🚨 **Sintomas Críticos:** %s\n\n", critical)

	b.WriteString("🎯 **AÇÕES IMEDIATAS:**\n")
	for _, action := range rec.Actions {
		fmt.Fprintf(&b, "• %s\n", action)
	}

	b.WriteString("\n💡 **RECOMENDAÇÕES:**\n")
	for _, rec := range rec.Recommendations {
		fmt.Fprintf(&b, "• %s\n", rec)
	}

	if reasons := highlightedReasons(&rec.Answers); len(reasons) > 0 {
		fmt.Fprintf(&b, "\n📝 **Principais motivos identificados:** %s\n", strings.Join(reasons, ", "))
	}

	if notified && (rec.Tier == TierUrgent || rec.Tier == TierIntense) {
		fmt.Fprintf(&b, "\n📱 **Dr. José foi notificado via Telegram sobre este caso %s.**\n", rec.Tier)
	}

	b.WriteString("\n❓ Deseja mais informações ou agendar acompanhamento?")
	return b.String()
}

// highlightedReasons lists the subset of reasons called out in the summary,
// capped at five entries.
func highlightedReasons(a *Answers) []string {
	var reasons []string
	if a.ExcessiveAnxiety {
		reasons = append(reasons, "Ansiedade")
	}
	if a.ConstantSadness {
		reasons = append(reasons, "Tristeza")
	}
	if a.SuicidalThoughts {
		reasons = append(reasons, "⚠️ Pensamentos suicidas")
	}
	if a.Aggression {
		reasons = append(reasons, "Agressividade")
	}
	if a.PanicAttacks {
		reasons = append(reasons, "Crises de pânico")
	}
	if a.SubstanceUse {
		reasons = append(reasons, "Uso de substâncias")
	}
	if a.Hallucinations {
		reasons = append(reasons, "⚠️ Alucinações/delírios")
	}
	if len(reasons) > 5 {
		reasons = reasons[:5]
	}
	return reasons
}
