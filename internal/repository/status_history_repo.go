package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"climate_control/internal/models"
)

// StatusHistorySQLite keeps every received status snapshot for diagnostics.
// Nothing reads it back into the live status cache.
type StatusHistorySQLite struct {
	db *sql.DB
}

func NewStatusHistorySQLite(db *sql.DB) *StatusHistorySQLite {
	return &StatusHistorySQLite{db: db}
}

var _ StatusHistoryRepo = (*StatusHistorySQLite)(nil)

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000

	insertStatusSQL = `
		INSERT INTO device_status_history (adapter, device_id, received_at, mode, actual_c, target_c, fan_pct, remaining_s, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	selectStatusSQL = `
		SELECT id, adapter, device_id, received_at, status
		FROM device_status_history
		WHERE adapter = ? AND device_id = ?
		ORDER BY id DESC
		LIMIT ?
	`
)

// Record appends one snapshot. The scalar columns duplicate the JSON so the
// table can be queried directly.
func (r *StatusHistorySQLite) Record(ctx context.Context, rec models.StatusRecord) error {
	at := rec.ReceivedAt
	if at.IsZero() {
		at = time.Now()
	}
	st := rec.Status
	blob, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	_, err = r.db.ExecContext(ctx, insertStatusSQL,
		rec.Adapter,
		rec.DeviceID,
		at.UTC(),
		st.OperatingMode.String(),
		st.ActualTemp,
		st.TargetTemp,
		int(st.FanStep),
		int64(st.RemainingDuration.Secs),
		string(blob),
	)
	if err != nil {
		return fmt.Errorf("insert status for %s/%s: %w", rec.Adapter, rec.DeviceID, err)
	}
	return nil
}

// List returns up to limit snapshots for a device, newest first.
func (r *StatusHistorySQLite) List(ctx context.Context, adapter, deviceID string, limit int) ([]models.StatusRecord, error) {
	limit = clampLimit(limit)

	rows, err := r.db.QueryContext(ctx, selectStatusSQL, adapter, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("query status history: %w", err)
	}
	defer rows.Close()

	out := make([]models.StatusRecord, 0, limit)
	for rows.Next() {
		var rec models.StatusRecord
		var blob string
		if err := rows.Scan(&rec.ID, &rec.Adapter, &rec.DeviceID, &rec.ReceivedAt, &blob); err != nil {
			return nil, fmt.Errorf("scan status history: %w", err)
		}
		if err := json.Unmarshal([]byte(blob), &rec.Status); err != nil {
			return nil, fmt.Errorf("decode status %d: %w", rec.ID, err)
		}
		rec.ReceivedAt = rec.ReceivedAt.UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func clampLimit(n int) int {
	switch {
	case n <= 0:
		return defaultHistoryLimit
	case n > maxHistoryLimit:
		return maxHistoryLimit
	}
	return n
}
