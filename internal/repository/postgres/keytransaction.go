package postgres

import (
	"context"
	"fmt"

	"key-transactions-service/internal/entities"
	"key-transactions-service/internal/quota"

	"github.com/jackc/pgx/v5"
)

const (
	lockLinksQuery  = `SELECT id FROM project_teams WHERE id = ANY($1) FOR UPDATE`
	linkCountsQuery = `
SELECT project_team_id, COUNT(*)
FROM team_key_transactions
WHERE project_team_id = ANY($1)
GROUP BY project_team_id`
	existingLinksQuery = `
SELECT project_team_id
FROM team_key_transactions
WHERE project_team_id = ANY($1) AND transaction = $2`
	insertTeamKeyQuery = `
INSERT INTO team_key_transactions(organization_id, project_team_id, transaction)
SELECT $1, unnest($2::bigint[]), $3
ON CONFLICT (project_team_id, transaction) DO NOTHING`
	deleteTeamKeyQuery = `
DELETE FROM team_key_transactions
WHERE transaction = $1 AND project_team_id = ANY($2)`
	teamsKeyedQuery = `
SELECT pt.team_id
FROM team_key_transactions tkt
JOIN project_teams pt ON pt.id = tkt.project_team_id
WHERE pt.project_id = $1 AND tkt.transaction = $2 AND pt.team_id = ANY($3)
ORDER BY pt.team_id`
	teamCountsQuery = `
SELECT pt.team_id, COUNT(*)
FROM team_key_transactions tkt
JOIN project_teams pt ON pt.id = tkt.project_team_id
WHERE tkt.organization_id = $1 AND pt.team_id = ANY($2)
GROUP BY pt.team_id`
	teamKeyedRowsQuery = `
SELECT pt.team_id, pt.project_id, tkt.transaction
FROM team_key_transactions tkt
JOIN project_teams pt ON pt.id = tkt.project_team_id
WHERE tkt.organization_id = $1 AND pt.team_id = ANY($2) AND pt.project_id = ANY($3)
ORDER BY pt.team_id, pt.project_id, tkt.id`

	// the advisory lock serializes the legacy count-then-insert per (org, owner)
	ownerLockQuery      = `SELECT pg_advisory_xact_lock(hashtextextended($1::text || ':' || $2::text, 0))`
	ownerKeyExistsQuery = `SELECT EXISTS(SELECT 1 FROM key_transactions WHERE owner_id=$1 AND project_id=$2 AND transaction=$3)`
	ownerKeyCountQuery  = `SELECT COUNT(*) FROM key_transactions WHERE organization_id=$1 AND owner_id=$2`
	insertOwnerKeyQuery = `
INSERT INTO key_transactions(organization_id, owner_id, project_id, transaction)
VALUES ($1, $2, $3, $4)
ON CONFLICT (owner_id, project_id, transaction) DO NOTHING`
	deleteOwnerKeyQuery = `
DELETE FROM key_transactions
WHERE organization_id=$1 AND owner_id=$2 AND project_id=$3 AND transaction=$4`
	isOwnerKeyQuery = `SELECT EXISTS(SELECT 1 FROM key_transactions WHERE organization_id=$1 AND owner_id=$2 AND project_id=$3 AND transaction=$4)`
	countKeyedQuery = `SELECT COUNT(*) FROM key_transactions WHERE organization_id=$1 AND project_id = ANY($2)`
)

// AddTeamKeyTransactions marks the transaction as key for every given link.
// The whole batch runs in one transaction: the link rows are locked FOR UPDATE
// so two concurrent batches cannot both observe below-ceiling counts, existing
// pairs are skipped, and the per-link ceiling is checked against each team's
// own current count before anything is inserted. Returns rows created.
func (p *Postgres) AddTeamKeyTransactions(ctx context.Context, orgID int64, transaction string, links []entities.ProjectTeam, limits quota.Limits) (int64, error) {
	if len(links) == 0 {
		return 0, nil
	}
	linkIDs := make([]int64, 0, len(links))
	for _, l := range links {
		linkIDs = append(linkIDs, l.ID)
	}

	tx, err := p.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, lockLinksQuery, linkIDs); err != nil {
		return 0, fmt.Errorf("lock links: %w", err)
	}

	counts := make(map[int64]int)
	rows, err := tx.Query(ctx, linkCountsQuery, linkIDs)
	if err != nil {
		return 0, fmt.Errorf("count per link: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var linkID int64
		var n int
		if err := rows.Scan(&linkID, &n); err != nil {
			return 0, fmt.Errorf("scan link count: %w", err)
		}
		counts[linkID] = n
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate link counts: %w", err)
	}

	existing := make(map[int64]struct{})
	exRows, err := tx.Query(ctx, existingLinksQuery, linkIDs, transaction)
	if err != nil {
		return 0, fmt.Errorf("existing pairs: %w", err)
	}
	defer exRows.Close()
	for exRows.Next() {
		var linkID int64
		if err := exRows.Scan(&linkID); err != nil {
			return 0, fmt.Errorf("scan existing pair: %w", err)
		}
		existing[linkID] = struct{}{}
	}
	if err := exRows.Err(); err != nil {
		return 0, fmt.Errorf("iterate existing pairs: %w", err)
	}

	newLinkIDs := make([]int64, 0, len(links))
	for _, l := range links {
		if _, ok := existing[l.ID]; ok {
			continue
		}
		// each link gains at most one candidate per call; duplicates were
		// excluded above and do not count against the ceiling
		if err := quota.Admit(quota.Owner{Kind: quota.OwnerTeam, ID: l.TeamID}, counts[l.ID], 1, limits); err != nil {
			return 0, err
		}
		newLinkIDs = append(newLinkIDs, l.ID)
	}

	if len(newLinkIDs) == 0 {
		if err := tx.Commit(ctx); err != nil {
			return 0, err
		}
		return 0, nil
	}

	tag, err := tx.Exec(ctx, insertTeamKeyQuery, orgID, newLinkIDs, transaction)
	if err != nil {
		return 0, fmt.Errorf("insert team key transactions: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	p.log.Infow("team key transactions added",
		"org_id", orgID, "transaction", transaction, "created", tag.RowsAffected())
	return tag.RowsAffected(), nil
}

// RemoveTeamKeyTransactions deletes matching pairs. Absence of any matching
// row is not an error.
func (p *Postgres) RemoveTeamKeyTransactions(ctx context.Context, transaction string, linkIDs []int64) error {
	if len(linkIDs) == 0 {
		return nil
	}
	if _, err := p.db.Exec(ctx, deleteTeamKeyQuery, transaction, linkIDs); err != nil {
		return fmt.Errorf("delete team key transactions: %w", err)
	}
	return nil
}

// TeamsKeyed returns the subset of teamIDs that keyed the transaction on the
// project, ordered by team id.
func (p *Postgres) TeamsKeyed(ctx context.Context, projectID int64, transaction string, teamIDs []int64) ([]int64, error) {
	if len(teamIDs) == 0 {
		return []int64{}, nil
	}
	rows, err := p.db.Query(ctx, teamsKeyedQuery, projectID, transaction, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("teams keyed: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan keyed team: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keyed teams: %w", err)
	}
	return ids, nil
}

// TeamSummaries builds listing rows for the given teams in the order given.
// A team's count spans every project it is linked to; keyed entries are
// restricted to projectIDs.
func (p *Postgres) TeamSummaries(ctx context.Context, orgID int64, teamIDs, projectIDs []int64) ([]entities.TeamKeyedSummary, error) {
	summaries := make([]entities.TeamKeyedSummary, 0, len(teamIDs))
	if len(teamIDs) == 0 {
		return summaries, nil
	}

	counts := make(map[int64]int64)
	rows, err := p.db.Query(ctx, teamCountsQuery, orgID, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("team counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var teamID, n int64
		if err := rows.Scan(&teamID, &n); err != nil {
			return nil, fmt.Errorf("scan team count: %w", err)
		}
		counts[teamID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate team counts: %w", err)
	}

	keyed := make(map[int64][]entities.TeamKeyed)
	if len(projectIDs) > 0 {
		kRows, err := p.db.Query(ctx, teamKeyedRowsQuery, orgID, teamIDs, projectIDs)
		if err != nil {
			return nil, fmt.Errorf("keyed rows: %w", err)
		}
		defer kRows.Close()
		for kRows.Next() {
			var teamID int64
			var k entities.TeamKeyed
			if err := kRows.Scan(&teamID, &k.ProjectID, &k.Transaction); err != nil {
				return nil, fmt.Errorf("scan keyed row: %w", err)
			}
			keyed[teamID] = append(keyed[teamID], k)
		}
		if err := kRows.Err(); err != nil {
			return nil, fmt.Errorf("iterate keyed rows: %w", err)
		}
	}

	for _, teamID := range teamIDs {
		entries := keyed[teamID]
		if entries == nil {
			entries = []entities.TeamKeyed{}
		}
		summaries = append(summaries, entities.TeamKeyedSummary{
			TeamID: teamID,
			Count:  counts[teamID],
			Keyed:  entries,
		})
	}
	return summaries, nil
}

// AddKeyTransaction inserts a legacy owner-scoped record. The advisory lock
// serializes the count-then-insert for one (org, owner); the unique index
// makes a lost race degrade to a no-op conflict. Returns false when the
// record already existed.
func (p *Postgres) AddKeyTransaction(ctx context.Context, orgID, ownerID, projectID int64, transaction string, limits quota.Limits) (bool, error) {
	tx, err := p.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, ownerLockQuery, orgID, ownerID); err != nil {
		return false, fmt.Errorf("owner lock: %w", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, ownerKeyExistsQuery, ownerID, projectID, transaction).Scan(&exists); err != nil {
		return false, fmt.Errorf("key transaction exists: %w", err)
	}
	if exists {
		if err := tx.Commit(ctx); err != nil {
			return false, err
		}
		return false, nil
	}

	var count int
	if err := tx.QueryRow(ctx, ownerKeyCountQuery, orgID, ownerID).Scan(&count); err != nil {
		return false, fmt.Errorf("key transaction count: %w", err)
	}
	if err := quota.Admit(quota.Owner{Kind: quota.OwnerUser, ID: ownerID}, count, 1, limits); err != nil {
		return false, err
	}

	if _, err := tx.Exec(ctx, insertOwnerKeyQuery, orgID, ownerID, projectID, transaction); err != nil {
		return false, fmt.Errorf("insert key transaction: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}

	p.log.Infow("key transaction added", "org_id", orgID, "owner_id", ownerID, "transaction", transaction)
	return true, nil
}

// RemoveKeyTransaction deletes the record if present. Absence is not an error.
func (p *Postgres) RemoveKeyTransaction(ctx context.Context, orgID, ownerID, projectID int64, transaction string) error {
	if _, err := p.db.Exec(ctx, deleteOwnerKeyQuery, orgID, ownerID, projectID, transaction); err != nil {
		return fmt.Errorf("delete key transaction: %w", err)
	}
	return nil
}

// IsKeyTransaction reports whether the owner keyed the transaction.
func (p *Postgres) IsKeyTransaction(ctx context.Context, orgID, ownerID, projectID int64, transaction string) (bool, error) {
	var isKey bool
	if err := p.db.QueryRow(ctx, isOwnerKeyQuery, orgID, ownerID, projectID, transaction).Scan(&isKey); err != nil {
		return false, fmt.Errorf("is key transaction: %w", err)
	}
	return isKey, nil
}

// CountKeyed counts legacy records across the given projects, disregarding owner.
func (p *Postgres) CountKeyed(ctx context.Context, orgID int64, projectIDs []int64) (int64, error) {
	if len(projectIDs) == 0 {
		return 0, nil
	}
	var n int64
	if err := p.db.QueryRow(ctx, countKeyedQuery, orgID, projectIDs).Scan(&n); err != nil {
		return 0, fmt.Errorf("count keyed: %w", err)
	}
	return n, nil
}
