package triage

// Protocol is the fixed response plan attached to a severity tier.
type Protocol struct {
	// Actions the clinic takes immediately, in order.
	Actions []string
	// Recommendations for ongoing care, in order.
	Recommendations []string
	// Notify indicates whether the on-call doctor is notified externally.
	Notify bool
}

var protocols = map[Tier]Protocol{
	TierUrgent: {
		Actions: []string{
			"🚨 Notificação IMEDIATA Dr. José via Telegram",
			"📞 Contato familiar/responsável AGORA",
			"🏥 Acionamento SAMU/192 se necessário",
			"⚕️ Encaminhamento emergência psiquiátrica",
			"📋 Registro prioritário no prontuário",
			"⏰ Follow-up obrigatório em 24h",
		},
		Recommendations: []string{
			"Internação psiquiátrica se indicada",
			"Avaliação médica emergencial",
			"Supervisão familiar 24h",
			"Plano de segurança rigoroso",
			"Medicação de urgência se prescrita",
		},
		Notify: true,
	},
	TierIntense: {
		Actions: []string{
			"📱 Notificação prioritária Dr. José via Telegram",
			"⏱️ Agendamento psiquiatria em 48h",
			"👨‍👩‍👧‍👦 Contato família - orientações",
			"📋 Plano de segurança individualizado",
			"📞 Monitoramento telefônico 72h",
			"🔄 Reavaliação agendada em 1 semana",
		},
		Recommendations: []string{
			"Consulta psiquiátrica urgente",
			"Acompanhamento psicológico semanal",
			"Orientações familiares específicas",
			"Medicação se necessária",
			"Rede de apoio fortalecida",
		},
		Notify: true,
	},
	TierModerate: {
		Actions: []string{
			"📨 Notificação padrão Dr. José",
			"📅 Agendamento psicologia em 7 dias",
			"📖 Orientações de autocuidado",
			"👥 Grupo de apoio se disponível",
			"📞 Check-in em 15 dias",
			"🔄 Reavaliação em 1 mês",
		},
		Recommendations: []string{
			"Acompanhamento psicológico regular",
			"Técnicas de manejo da ansiedade",
			"Estabelecimento de rotina",
			"Atividades prazerosas",
			"Apoio social",
		},
	},
	TierMild: {
		Actions: []string{
			"ℹ️ Notificação informativa Dr. José",
			"📅 Agendamento psicologia em 15 dias",
			"📚 Material educativo fornecido",
			"💡 Orientações preventivas",
			"🔄 Reavaliação em 2 meses",
		},
		Recommendations: []string{
			"Acompanhamento psicológico preventivo",
			"Estratégias de bem-estar",
			"Exercícios físicos regulares",
			"Higiene do sono",
			"Manejo do estresse",
		},
	},
}

// ProtocolFor returns the response plan for a tier.
func ProtocolFor(tier Tier) Protocol {
	if p, ok := protocols[tier]; ok {
		return p
	}
	return protocols[TierMild]
}
