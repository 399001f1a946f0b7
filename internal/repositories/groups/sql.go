package groups

import (
	"context"
	"fmt"

	"peerchat/internal/dbx"
	"peerchat/internal/models"
)

// SQLRepository works against both supported backends. "groups" stays
// quoted: it is a reserved word in recent PostgreSQL.
type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, group *models.Group) (*models.Group, error) {

	query :=
		`INSERT INTO "groups" (name, ticket, owner)
		 VALUES ($1, $2, $3)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		group.Name, group.Ticket, group.Owner).Scan(&group.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return group, nil
}

func (r *SQLRepository) FindByName(ctx context.Context, name string) ([]models.GroupWithOwner, error) {
	query :=
		`SELECT g.id, g.name, g.ticket, g.owner, u.name
		 FROM "groups" g
		 INNER JOIN users u ON u.id = g.owner
		 WHERE g.name = $1
		 ORDER BY g.id
		 `

	rows, err := r.db.QueryContext(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.GroupWithOwner
	for rows.Next() {
		var g models.GroupWithOwner
		if err := rows.Scan(&g.ID, &g.Name, &g.Ticket, &g.Owner, &g.OwnerName); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return out, nil
}
