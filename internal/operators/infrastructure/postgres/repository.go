package postgres

import (
	"context"
	"database/sql"
	"errors"

	operators "github.com/G-OrdiaD/GreenhouseSolution/internal/operators/domain"
)

// RecipientRepository reads notification recipients from the users table
// managed by the user-management collaborator.
type RecipientRepository struct {
	db *sql.DB
}

// NewRecipientRepository constructs a repository.
func NewRecipientRepository(db *sql.DB) *RecipientRepository {
	return &RecipientRepository{db: db}
}

// ListResponsible returns every operator holding the responsible-party role.
// Recipients are resolved at dispatch time, not at alert-creation time.
func (r *RecipientRepository) ListResponsible(ctx context.Context) ([]operators.Recipient, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("recipient repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, username, contact_address
FROM users
WHERE role = $1
ORDER BY username ASC`, operators.RoleResponsibleParty)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipients []operators.Recipient
	for rows.Next() {
		var recipient operators.Recipient
		var contact sql.NullString
		if err := rows.Scan(&recipient.ID, &recipient.Name, &contact); err != nil {
			return nil, err
		}
		if contact.Valid {
			recipient.Contact = contact.String
		}
		recipients = append(recipients, recipient)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recipients, nil
}
