package expenses

// Notifier publica avisos en la bandeja de los usuarios. notification.Store lo implementa.
type Notifier interface {
	Push(companyID, kind, movementID, message string, userIDs ...string)
}
