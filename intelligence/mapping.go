package intelligence

// Mapping associates a vendor service with the vocabulary that identifies it
// in free-form text.  Keywords match single tokens, phrases match quoted or
// consecutive token sequences and carry double weight.
type Mapping struct {
	Service  string   `json:"service" yaml:"service"`
	Keywords []string `json:"keywords" yaml:"keywords"`
	Phrases  []string `json:"phrases,omitempty" yaml:"phrases,omitempty"`
	// Priority scales the raw score; defaults to 1.0 when zero.
	Priority float64 `json:"priority,omitempty" yaml:"priority,omitempty"`
	// MethodHints maps intent verbs to the connector method that serves them.
	MethodHints map[string]string `json:"methodHints,omitempty" yaml:"methodHints,omitempty"`
}

func (m *Mapping) priority() float64 {
	if m.Priority <= 0 {
		return 1.0
	}
	return m.Priority
}

// DefaultMappings returns the hand-authored vocabulary for the stock
// connectors.  Catalog-loaded mappings extend or override these.
func DefaultMappings() []*Mapping {
	return []*Mapping{
		{
			Service:  "slack",
			Keywords: []string{"slack", "channel", "workspace", "dm", "emoji"},
			Phrases:  []string{"send message", "post message", "slack channel"},
			MethodHints: map[string]string{
				"create": "postMessage",
				"read":   "listMessages",
				"notify": "postMessage",
			},
		},
		{
			Service:  "zendesk",
			Keywords: []string{"zendesk", "ticket", "tickets", "helpdesk", "agent"},
			Phrases:  []string{"support ticket", "close ticket", "ticket queue"},
			MethodHints: map[string]string{
				"create": "createTicket",
				"read":   "listTickets",
				"update": "updateTicket",
			},
		},
		{
			Service:  "hubspot",
			Keywords: []string{"hubspot", "crm", "contact", "contacts", "deal", "deals"},
			Phrases:  []string{"crm contact", "deal stage", "sales pipeline"},
			MethodHints: map[string]string{
				"create": "createContact",
				"read":   "listContacts",
				"update": "updateDeal",
			},
		},
		{
			Service:  "airtable",
			Keywords: []string{"airtable", "base", "record", "records", "grid"},
			Phrases:  []string{"airtable base", "table record"},
			MethodHints: map[string]string{
				"create": "createRecord",
				"read":   "listRecords",
				"update": "updateRecord",
			},
		},
		{
			Service:  "zoom",
			Keywords: []string{"zoom", "meeting", "meetings", "webinar", "recording"},
			Phrases:  []string{"schedule meeting", "zoom call", "meeting recording"},
			MethodHints: map[string]string{
				"create": "createMeeting",
				"read":   "listMeetings",
			},
		},
		{
			Service:  "figma",
			Keywords: []string{"figma", "design", "frame", "prototype", "mockup"},
			Phrases:  []string{"design file", "figma file"},
			MethodHints: map[string]string{
				"read": "getFile",
			},
		},
		{
			Service:  "discord",
			Keywords: []string{"discord", "guild", "server", "bot"},
			Phrases:  []string{"discord server", "voice channel"},
			MethodHints: map[string]string{
				"create": "sendMessage",
				"notify": "sendMessage",
			},
		},
		{
			Service:  "notion",
			Keywords: []string{"notion", "page", "pages", "database", "block"},
			Phrases:  []string{"notion page", "notion database"},
			MethodHints: map[string]string{
				"create": "createPage",
				"read":   "queryDatabase",
				"update": "updatePage",
			},
		},
		{
			Service:  "jira",
			Keywords: []string{"jira", "issue", "issues", "sprint", "backlog", "epic"},
			Phrases:  []string{"jira issue", "sprint board", "issue tracker"},
			MethodHints: map[string]string{
				"create": "createIssue",
				"read":   "searchIssues",
				"update": "transitionIssue",
			},
		},
		{
			Service:  "stripe",
			Keywords: []string{"stripe", "payment", "payments", "invoice", "invoices", "subscription", "refund"},
			Phrases:  []string{"payment intent", "charge customer", "stripe invoice"},
			MethodHints: map[string]string{
				"create": "createPaymentIntent",
				"read":   "listCharges",
				"update": "updateSubscription",
			},
		},
	}
}
