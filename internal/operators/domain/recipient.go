package operators

// RoleResponsibleParty marks operators entitled to alert notifications.
const RoleResponsibleParty = "responsible party"

// Recipient is an operator entitled to receive alert notifications. The
// pipeline only reads recipients; user management is owned elsewhere.
type Recipient struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
}
