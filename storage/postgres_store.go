package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"occupancy-optimizer/models"
	"occupancy-optimizer/utils"
)

// PostgresStore reads inventory and reservations from PostgreSQL and
// records suggested moves back into it.
type PostgresStore struct {
	db        *sql.DB
	inventory InventoryStore
	retry     *utils.RetryConfig
	logger    *utils.Logger
}

// NewPostgresStore opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresStore. inventory may be nil.
func NewPostgresStore(ctx context.Context, dsn string, inventory InventoryStore, retry *utils.RetryConfig, logger *utils.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := retry.Do(ctx, "postgres ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	ps := &PostgresStore{db: db, inventory: inventory, retry: retry, logger: logger}
	if err := ps.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate(ctx context.Context) error {
	_, err := ps.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS properties (
			id          BIGINT PRIMARY KEY,
			name        TEXT        NOT NULL,
			region_code VARCHAR(20) NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS categories (
			id          BIGINT PRIMARY KEY,
			property_id BIGINT NOT NULL REFERENCES properties(id),
			name        TEXT   NOT NULL
		);

		CREATE TABLE IF NOT EXISTS units (
			id          BIGINT PRIMARY KEY,
			category_id BIGINT  NOT NULL REFERENCES categories(id),
			name        TEXT    NOT NULL DEFAULT '',
			active      BOOLEAN NOT NULL DEFAULT TRUE
		);

		CREATE TABLE IF NOT EXISTS reservations (
			id          BIGINT PRIMARY KEY,
			unit_id     BIGINT,
			category_id BIGINT,
			arrival     DATE        NOT NULL,
			departure   DATE        NOT NULL,
			guest_label TEXT        NOT NULL DEFAULT '',
			status      VARCHAR(30) NOT NULL DEFAULT '',
			fixed       BOOLEAN     NOT NULL DEFAULT FALSE
		);

		CREATE TABLE IF NOT EXISTS move_suggestions (
			id             SERIAL PRIMARY KEY,
			run_id         UUID          NOT NULL,
			property_id    BIGINT        NOT NULL,
			sequence_id    VARCHAR(20)   NOT NULL,
			reservation_id BIGINT        NOT NULL,
			from_unit_id   BIGINT        NOT NULL,
			to_unit_id     BIGINT        NOT NULL,
			arrival        DATE          NOT NULL,
			departure      DATE          NOT NULL,
			improvement    NUMERIC(12,4) NOT NULL,
			strategic      VARCHAR(10)   NOT NULL,
			holiday_name   TEXT          NOT NULL DEFAULT '',
			reasoning      TEXT          NOT NULL DEFAULT '',
			created_at     TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
			UNIQUE (run_id, sequence_id)
		);

		CREATE INDEX IF NOT EXISTS idx_reservations_unit      ON reservations(unit_id);
		CREATE INDEX IF NOT EXISTS idx_reservations_departure ON reservations(departure);
		CREATE INDEX IF NOT EXISTS idx_moves_property         ON move_suggestions(property_id);
	`)
	return err
}

// LoadProperties returns every property with its reservations. Inventory is
// served from the cache when present; reservations are always read fresh.
func (ps *PostgresStore) LoadProperties(ctx context.Context) ([]models.PropertyData, error) {
	var out []models.PropertyData
	err := ps.retry.Do(ctx, "load properties", func() error {
		var err error
		out, err = ps.load(ctx)
		return err
	})
	return out, err
}

func (ps *PostgresStore) load(ctx context.Context) ([]models.PropertyData, error) {
	ids, err := ps.propertyIDs(ctx)
	if err != nil {
		return nil, err
	}

	properties := make(map[int64]models.Property, len(ids))
	var missing []int64
	for _, id := range ids {
		if ps.inventory != nil {
			if p, ok := ps.inventory.Get(id); ok {
				properties[id] = p
				continue
			}
		}
		missing = append(missing, id)
	}

	if len(missing) > 0 {
		rows, err := ps.inventoryRows(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, p := range assembleProperties(rows) {
			properties[p.ID] = p
			if ps.inventory != nil {
				ps.inventory.Put(p)
			}
		}
	}
	ps.logger.Debug("[postgres] Inventory: %d properties (%d from cache)", len(ids), len(ids)-len(missing))

	byProperty, err := ps.reservations(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.PropertyData, 0, len(ids))
	for _, id := range ids {
		p, ok := properties[id]
		if !ok {
			continue
		}
		if ps.inventory != nil && !knowsUnits(p, byProperty[id]) {
			ps.logger.Warn("[postgres] Cached inventory of property %d is stale, dropping it", id)
			ps.inventory.Invalidate(id)
		}
		out = append(out, models.PropertyData{Property: p, Reservations: byProperty[id]})
	}
	return out, nil
}

// knowsUnits reports whether every unit referenced by a reservation exists in
// the property's inventory.
func knowsUnits(p models.Property, reservations []models.RawReservation) bool {
	units := make(map[int64]bool)
	for _, c := range p.Categories {
		for _, u := range c.Units {
			units[u.ID] = true
		}
	}
	for _, r := range reservations {
		if r.UnitID != 0 && !units[r.UnitID] {
			return false
		}
	}
	return true
}

func (ps *PostgresStore) propertyIDs(ctx context.Context) ([]int64, error) {
	rows, err := ps.db.QueryContext(ctx, `SELECT id FROM properties ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list properties: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("postgres: scan property id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// inventoryRow is one unit joined with its category and property. Category
// and unit columns are NULL for properties without inventory.
type inventoryRow struct {
	PropertyID   int64
	PropertyName string
	RegionCode   string
	CategoryID   sql.NullInt64
	CategoryName sql.NullString
	UnitID       sql.NullInt64
	UnitName     sql.NullString
	Active       sql.NullBool
}

func (ps *PostgresStore) inventoryRows(ctx context.Context, propertyIDs []int64) ([]inventoryRow, error) {
	rows, err := ps.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.region_code, c.id, c.name, u.id, u.name, u.active
		FROM properties p
		LEFT JOIN categories c ON c.property_id = p.id
		LEFT JOIN units u      ON u.category_id = c.id
		WHERE p.id = ANY($1)
		ORDER BY p.id, c.id, u.id
	`, pq.Array(propertyIDs))
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch inventory: %w", err)
	}
	defer rows.Close()

	var out []inventoryRow
	for rows.Next() {
		var r inventoryRow
		if err := rows.Scan(&r.PropertyID, &r.PropertyName, &r.RegionCode,
			&r.CategoryID, &r.CategoryName, &r.UnitID, &r.UnitName, &r.Active); err != nil {
			return nil, fmt.Errorf("postgres: scan inventory row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// assembleProperties folds joined inventory rows into properties, keeping
// the order in which properties, categories and units first appear.
func assembleProperties(rows []inventoryRow) []models.Property {
	var out []models.Property
	propIdx := make(map[int64]int)
	catIdx := make(map[int64]int)

	for _, r := range rows {
		pi, ok := propIdx[r.PropertyID]
		if !ok {
			pi = len(out)
			propIdx[r.PropertyID] = pi
			out = append(out, models.Property{ID: r.PropertyID, Name: r.PropertyName, RegionCode: strings.TrimSpace(r.RegionCode)})
		}
		if !r.CategoryID.Valid {
			continue
		}

		p := &out[pi]
		ci, ok := catIdx[r.CategoryID.Int64]
		if !ok {
			ci = len(p.Categories)
			catIdx[r.CategoryID.Int64] = ci
			p.Categories = append(p.Categories, models.Category{ID: r.CategoryID.Int64, Name: r.CategoryName.String})
		}
		if !r.UnitID.Valid {
			continue
		}

		p.Categories[ci].Units = append(p.Categories[ci].Units, models.Unit{
			ID:         r.UnitID.Int64,
			CategoryID: r.CategoryID.Int64,
			Name:       r.UnitName.String,
			Active:     !r.Active.Valid || r.Active.Bool,
		})
	}
	return out
}

func (ps *PostgresStore) reservations(ctx context.Context, propertyIDs []int64) (map[int64][]models.RawReservation, error) {
	rows, err := ps.db.QueryContext(ctx, `
		SELECT c.property_id, r.id, COALESCE(r.unit_id, 0), COALESCE(r.category_id, 0),
		       to_char(r.arrival, 'YYYY-MM-DD'), to_char(r.departure, 'YYYY-MM-DD'),
		       r.guest_label, r.status, r.fixed
		FROM reservations r
		LEFT JOIN units u ON u.id = r.unit_id
		JOIN categories c ON c.id = COALESCE(u.category_id, r.category_id)
		WHERE c.property_id = ANY($1)
		ORDER BY c.property_id, r.id
	`, pq.Array(propertyIDs))
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch reservations: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]models.RawReservation)
	for rows.Next() {
		var propertyID int64
		var r models.RawReservation
		if err := rows.Scan(&propertyID, &r.ID, &r.UnitID, &r.CategoryID,
			&r.Arrival, &r.Departure, &r.GuestLabel, &r.Status, &r.Fixed); err != nil {
			return nil, fmt.Errorf("postgres: scan reservation: %w", err)
		}
		out[propertyID] = append(out[propertyID], r)
	}
	return out, rows.Err()
}

// WriteMoves batch-inserts the final moves of every property result.
// Cancelling ctx stops between batches and aborts the batch in flight.
func (ps *PostgresStore) WriteMoves(ctx context.Context, results []models.PropertyResult) error {
	var moves []moveRow
	for _, r := range results {
		for _, mv := range r.Moves {
			moves = append(moves, moveRow{runID: r.RunID, Move: mv})
		}
	}
	if len(moves) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(moves); i += batchSize {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("postgres: write moves: %w", err)
		}
		end := min(i+batchSize, len(moves))
		if err := ps.insertBatch(ctx, moves[i:end]); err != nil {
			return fmt.Errorf("postgres: write moves: %w", err)
		}
	}
	return nil
}

type moveRow struct {
	runID string
	models.Move
}

const moveColumns = 12

func (ps *PostgresStore) insertBatch(ctx context.Context, batch []moveRow) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*moveColumns)

	for idx, m := range batch {
		base := idx * moveColumns
		ph := make([]string, moveColumns)
		for c := range ph {
			ph[c] = fmt.Sprintf("$%d", base+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
		valueArgs = append(valueArgs,
			m.runID, m.PropertyID, m.SequenceID, m.ReservationID, m.FromUnitID, m.ToUnitID,
			m.Arrival, m.Departure, m.Improvement, m.Strategic.String(), m.HolidayName, m.Reasoning)
	}

	query := fmt.Sprintf(`
		INSERT INTO move_suggestions (run_id, property_id, sequence_id, reservation_id, from_unit_id, to_unit_id,
		                              arrival, departure, improvement, strategic, holiday_name, reasoning)
		VALUES %s
		ON CONFLICT (run_id, sequence_id) DO NOTHING
	`, strings.Join(valueStrings, ","))

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	_, err := ps.db.ExecContext(ctx, query, valueArgs...)
	return err
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
