package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	qb "github.com/riskibarqy/paddle-league/internal/platform/querybuilder"
)

type settingTableModel struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

type SettingsRepository struct {
	tx *sqlx.Tx
}

func (r *SettingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	query, args, err := qb.Select("value").From("system_settings").Where(qb.Eq("key", key)).ToSQL()
	if err != nil {
		return "", false, fmt.Errorf("build get setting query: %w", err)
	}

	var value string
	if err := r.tx.GetContext(ctx, &value, query, args...); err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get setting key=%s: %w", key, err)
	}
	return value, true, nil
}

func (r *SettingsRepository) Put(ctx context.Context, key, value string) error {
	query, args, err := qb.InsertModel("system_settings", settingTableModel{Key: key, Value: value}, `ON CONFLICT (key)
DO UPDATE SET
    value = EXCLUDED.value,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert setting query: %w", err)
	}
	if _, err := r.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert setting key=%s: %w", key, err)
	}
	return nil
}
