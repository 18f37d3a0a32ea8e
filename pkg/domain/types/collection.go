package types

// Remote collection names. The notification collection name is inherited
// from the legacy schema and kept for compatibility with existing data.
const (
	CollectionActions       = "actions"
	CollectionNotes         = "action_notes"
	CollectionAttachments   = "action_attachments"
	CollectionStages        = "action_stages"
	CollectionCompanies     = "companies"
	CollectionClients       = "clients"
	CollectionResponsibles  = "responsibles"
	CollectionNotifications = "notificacoes_internas"
)

// AllCollections returns every collection mirrored by the sync engine
func AllCollections() []string {
	return []string{
		CollectionActions,
		CollectionNotes,
		CollectionAttachments,
		CollectionStages,
		CollectionCompanies,
		CollectionClients,
		CollectionResponsibles,
		CollectionNotifications,
	}
}
