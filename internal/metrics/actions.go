package metrics

// LeadAction is an upstream action type counted as a lead.
type LeadAction string

const (
	ActionLead                LeadAction = "lead"
	ActionLeadgenGrouped      LeadAction = "leadgen_grouped"
	ActionOnsiteLeadGrouped   LeadAction = "onsite_conversion.lead_grouped"
	ActionMessagingStarted7d  LeadAction = "onsite_conversion.messaging_conversation_started_7d"
	ActionMessagingFirstReply LeadAction = "onsite_conversion.messaging_first_reply"
)

// leadActions is closed: anything not listed contributes zero leads.
var leadActions = map[string]LeadAction{
	string(ActionLead):                ActionLead,
	string(ActionLeadgenGrouped):      ActionLeadgenGrouped,
	string(ActionOnsiteLeadGrouped):   ActionOnsiteLeadGrouped,
	string(ActionMessagingStarted7d):  ActionMessagingStarted7d,
	string(ActionMessagingFirstReply): ActionMessagingFirstReply,
}

// LookupLeadAction reports whether actionType is one of the lead-equivalent kinds.
// Matching is exact.
func LookupLeadAction(actionType string) (LeadAction, bool) {
	a, ok := leadActions[actionType]
	return a, ok
}

// LeadActions lists the allow-list in a stable order.
func LeadActions() []LeadAction {
	return []LeadAction{
		ActionLead,
		ActionLeadgenGrouped,
		ActionOnsiteLeadGrouped,
		ActionMessagingStarted7d,
		ActionMessagingFirstReply,
	}
}
