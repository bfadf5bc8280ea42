package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/mo"

	dbtx "fleetbackend/db/tx"
	"fleetbackend/models"
)

type PostgresPositionsRepository struct {
	db     *sqlx.DB
	schema string
}

// Column expressions for positions; location is unpacked into longitude/latitude
var positionsColumns = []string{
	"id",
	"agent_id",
	"ST_X(location::geometry) AS longitude",
	"ST_Y(location::geometry) AS latitude",
	"status",
	"created_at",
	"updated_at",
}

func NewPostgresPositionsRepository(db *sqlx.DB, schema string) *PostgresPositionsRepository {
	return &PostgresPositionsRepository{db: db, schema: schema}
}

// UpsertPosition inserts the agent's position or replaces the existing one in a single statement.
// On insert the status defaults to idle; on replace the status is only changed when one is given.
// record.ID is used only when a new row is created; record is overwritten with the stored row.
func (r *PostgresPositionsRepository) UpsertPosition(
	ctx context.Context,
	record *models.PositionRecord,
	status mo.Option[models.PositionStatus],
) error {
	db := dbtx.GetTransactional(ctx, r.db)

	var statusArg *string
	if value, ok := status.Get(); ok {
		s := string(value)
		statusArg = &s
	}

	query := fmt.Sprintf(`
		INSERT INTO %s.positions AS p (id, agent_id, location, status, created_at, updated_at)
		VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326)::geography, COALESCE($5::text, '%s'), NOW(), NOW())
		ON CONFLICT (agent_id)
		DO UPDATE SET
			location = EXCLUDED.location,
			status = COALESCE($5::text, p.status),
			updated_at = NOW()
		RETURNING %s`,
		r.schema, models.PositionStatusIdle, strings.Join(positionsColumns, ", "))

	err := db.QueryRowxContext(
		ctx,
		query,
		record.ID,
		record.AgentID,
		record.Longitude,
		record.Latitude,
		statusArg,
	).StructScan(record)
	if err != nil {
		return fmt.Errorf("failed to upsert position: %w", err)
	}

	return nil
}

// GetPositionsByAgentIDs fetches positions for exactly the given agents
func (r *PostgresPositionsRepository) GetPositionsByAgentIDs(
	ctx context.Context,
	agentIDs []string,
) ([]*models.PositionRecord, error) {
	if len(agentIDs) == 0 {
		return []*models.PositionRecord{}, nil
	}

	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.positions
		WHERE agent_id = ANY($1)
		ORDER BY updated_at DESC, id ASC`,
		strings.Join(positionsColumns, ", "), r.schema)

	var records []*models.PositionRecord
	if err := db.SelectContext(ctx, &records, query, pq.Array(agentIDs)); err != nil {
		return nil, fmt.Errorf("failed to get positions by agent ids: %w", err)
	}

	return records, nil
}

// CountPositionsByAgentID reports how many rows exist for an agent; always 0 or 1
func (r *PostgresPositionsRepository) CountPositionsByAgentID(ctx context.Context, agentID string) (int, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s.positions WHERE agent_id = $1`, r.schema)

	var count int
	if err := db.GetContext(ctx, &count, query, agentID); err != nil {
		return 0, fmt.Errorf("failed to count positions: %w", err)
	}

	return count, nil
}
