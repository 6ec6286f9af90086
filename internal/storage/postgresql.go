package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"time"

	"chat_economy/internal/models"
	"chat_economy/internal/pkg/logger"
	"chat_economy/internal/progression"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrations embed.FS

const accountColumns = `id, display_name, is_bot, coins, xp, level, daily_streak, last_daily, last_work, rob_attempts, created_at`

const (
	ensureAccountQuery = `INSERT INTO economy.accounts (id, display_name, is_bot, coins) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			display_name = CASE WHEN EXCLUDED.display_name = '' THEN economy.accounts.display_name ELSE EXCLUDED.display_name END,
			is_bot = economy.accounts.is_bot OR EXCLUDED.is_bot
		RETURNING ` + accountColumns + `;`
	getAccountQuery = `SELECT ` + accountColumns + ` FROM economy.accounts WHERE id = $1;`
	applyDeltaQuery = `UPDATE economy.accounts SET
			coins = coins + $2::bigint,
			xp = xp + $3::bigint,
			level = (xp + $3::bigint) / $4::bigint + 1,
			rob_attempts = rob_attempts + $5::integer,
			daily_streak = COALESCE($6::integer, daily_streak),
			last_daily = COALESCE($7::timestamptz, last_daily),
			last_work = COALESCE($8::timestamptz, last_work),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + accountColumns + `;`
	listItemsQuery     = `SELECT id, name, description, price, category, rarity, effect FROM economy.items WHERE ($1 = '' OR category = $1) ORDER BY price, name;`
	getItemByIDQuery   = `SELECT id, name, description, price, category, rarity, effect FROM economy.items WHERE id = $1;`
	getItemByNameQuery = `SELECT id, name, description, price, category, rarity, effect FROM economy.items WHERE lower(name) = lower($1);`
	upsertItemQuery    = `INSERT INTO economy.items (name, description, price, category, rarity, effect) VALUES ($1, $2, $3, $4, $5, $6::jsonb) ON CONFLICT DO NOTHING;`
	getInventoryQuery  = `SELECT i.id, i.name, i.description, i.price, i.category, i.rarity, i.effect, inv.quantity
		FROM economy.inventory inv JOIN economy.items i ON inv.item_id = i.id
		WHERE inv.account_id = $1 ORDER BY i.price, i.name;`
	lockInventoryQuery   = `SELECT quantity FROM economy.inventory WHERE account_id = $1 AND item_id = $2 FOR UPDATE;`
	addInventoryQuery    = `INSERT INTO economy.inventory (account_id, item_id, quantity) VALUES ($1, $2, $3)
		ON CONFLICT (account_id, item_id) DO UPDATE SET quantity = economy.inventory.quantity + EXCLUDED.quantity, updated_at = NOW()
		RETURNING quantity;`
	updateInventoryQuery = `UPDATE economy.inventory SET quantity = $3, updated_at = NOW() WHERE account_id = $1 AND item_id = $2;`
	deleteInventoryQuery = `DELETE FROM economy.inventory WHERE account_id = $1 AND item_id = $2;`
	getCooldownQuery     = `SELECT account_id, command, expires_at FROM economy.cooldowns WHERE account_id = $1 AND command = $2;`
	upsertCooldownQuery  = `INSERT INTO economy.cooldowns (account_id, command, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (account_id, command) DO UPDATE SET expires_at = EXCLUDED.expires_at;`
	claimCooldownQuery = `INSERT INTO economy.cooldowns (account_id, command, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (account_id, command) DO UPDATE SET expires_at = EXCLUDED.expires_at
		WHERE economy.cooldowns.expires_at <= $4
		RETURNING expires_at;`
	deleteCooldownQuery = `DELETE FROM economy.cooldowns WHERE account_id = $1 AND command = $2;`
	getSettingsQuery    = `SELECT daily_base_amount, daily_cooldown_hours, work_min_amount, work_max_amount, work_cooldown_hours,
		rob_base_success_rate, rob_cooldown_hours, rob_penalty_percent, xp_multiplier FROM economy.settings WHERE id = 1;`
	saveSettingsQuery = `INSERT INTO economy.settings (id, daily_base_amount, daily_cooldown_hours, work_min_amount, work_max_amount,
		work_cooldown_hours, rob_base_success_rate, rob_cooldown_hours, rob_penalty_percent, xp_multiplier)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			daily_base_amount = EXCLUDED.daily_base_amount,
			daily_cooldown_hours = EXCLUDED.daily_cooldown_hours,
			work_min_amount = EXCLUDED.work_min_amount,
			work_max_amount = EXCLUDED.work_max_amount,
			work_cooldown_hours = EXCLUDED.work_cooldown_hours,
			rob_base_success_rate = EXCLUDED.rob_base_success_rate,
			rob_cooldown_hours = EXCLUDED.rob_cooldown_hours,
			rob_penalty_percent = EXCLUDED.rob_penalty_percent,
			xp_multiplier = EXCLUDED.xp_multiplier,
			updated_at = NOW();`
	appendTransactionQuery = `INSERT INTO economy.transactions (id, account_id, action, amount, target_id, item_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8);`
	listTransactionsQuery = `SELECT id, account_id, action, amount, target_id, item_id, metadata, created_at
		FROM economy.transactions WHERE account_id = $1 ORDER BY created_at DESC, id LIMIT $2;`
	leaderboardCoinsQuery = `SELECT id, display_name, coins, xp, level FROM economy.accounts WHERE NOT is_bot ORDER BY coins DESC, id LIMIT $1;`
	leaderboardXPQuery    = `SELECT id, display_name, coins, xp, level FROM economy.accounts WHERE NOT is_bot ORDER BY xp DESC, id LIMIT $1;`
)

// PostgreSQL implements the Storage interface using a PostgreSQL database.
type PostgreSQL struct {
	db  *sql.DB        // Connection to the database.
	log *logger.Logger // Logger for recording events and errors.
}

// NewPostgreSQL creates a new PostgreSQL instance with the provided connection string and logger.
// It opens the connection and pings the database to ensure connectivity.
func NewPostgreSQL(cofigDBString string, l *logger.Logger) (*PostgreSQL, error) {
	db, err := sql.Open("pgx", cofigDBString)
	if err != nil {
		l.Sugar().Errorf("Failed to open a database: %s", err)
		return &PostgreSQL{db: db, log: l}, err
	}

	const defaultTimeout = 10 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		l.Sugar().Errorf("Database ping failed: %s", err)
		return &PostgreSQL{db: db, log: l}, err
	}

	return &PostgreSQL{db: db, log: l}, nil
}

// Close closes the database connection if it is open.
func (postgresql *PostgreSQL) Close() {
	if postgresql.db != nil {
		postgresql.db.Close()
	}
}

// Migrate applies the embedded schema files in lexical order. Every file is idempotent.
func (postgresql *PostgreSQL) Migrate(ctx context.Context) error {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		raw, err := migrations.ReadFile(name)
		if err != nil {
			return err
		}
		if _, err := postgresql.db.ExecContext(ctx, string(raw)); err != nil {
			postgresql.log.Sugar().Errorf("Failed to apply migration %s: %s", name, err)
			return err
		}
		postgresql.log.Sugar().Infof("Applied migration %s", name)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		account   models.Account
		lastDaily sql.NullTime
		lastWork  sql.NullTime
	)
	err := row.Scan(&account.ID, &account.DisplayName, &account.IsBot, &account.Coins, &account.XP, &account.Level,
		&account.DailyStreak, &lastDaily, &lastWork, &account.RobAttempts, &account.CreatedAt)
	if err != nil {
		return nil, err
	}
	if lastDaily.Valid {
		t := lastDaily.Time
		account.LastDaily = &t
	}
	if lastWork.Valid {
		t := lastWork.Time
		account.LastWork = &t
	}
	return &account, nil
}

func scanItem(row rowScanner, extra ...any) (*models.Item, error) {
	var (
		item   models.Item
		effect []byte
	)
	dest := append([]any{&item.ID, &item.Name, &item.Description, &item.Price, &item.Category, &item.Rarity, &effect}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if len(effect) > 0 {
		var descriptor models.EffectDescriptor
		if err := json.Unmarshal(effect, &descriptor); err != nil {
			return nil, err
		}
		decoded, err := models.DecodeEffect(&descriptor)
		if err != nil {
			return nil, err
		}
		item.Effect = decoded
	}
	return &item, nil
}

// balanceConstraint is the CHECK constraint keeping account balances non-negative.
const balanceConstraint = "accounts_coins_check"

// isBalanceViolation reports whether err comes from the non-negative balance guard.
// Other CHECK violations on accounts (xp, level) are real errors.
func isBalanceViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation && pgErr.ConstraintName == balanceConstraint
}

// foreignKeyViolation returns the violated constraint name, or "" when err is not a
// foreign key violation.
func foreignKeyViolation(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
		return pgErr.ConstraintName
	}
	return ""
}

// EnsureAccount creates the account with the given starting balance if it does not exist
// and returns the stored record. An existing display name is only replaced by a non-empty one.
func (postgresql *PostgreSQL) EnsureAccount(ctx context.Context, account models.Account) (*models.Account, error) {
	row := postgresql.db.QueryRowContext(ctx, ensureAccountQuery, account.ID, account.DisplayName, account.IsBot, account.Coins)
	stored, err := scanAccount(row)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query ensureAccountQuery: %s", err)
		return nil, err
	}
	return stored, nil
}

// GetAccount retrieves one account by id.
func (postgresql *PostgreSQL) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	account, err := scanAccount(postgresql.db.QueryRowContext(ctx, getAccountQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query getAccountQuery: %s", err)
		return nil, err
	}
	return account, nil
}

func (postgresql *PostgreSQL) applyDelta(ctx context.Context, tx *sql.Tx, delta models.AccountDelta) (*models.Account, error) {
	row := tx.QueryRowContext(ctx, applyDeltaQuery, delta.AccountID, delta.Coins, delta.XP, progression.XPPerLevel,
		delta.RobAttempts, delta.DailyStreak, delta.LastDaily, delta.LastWork)
	account, err := scanAccount(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrAccountNotFound
	case isBalanceViolation(err):
		return nil, ErrInsufficientFunds
	case err != nil:
		postgresql.log.Sugar().Errorf("Failed to execute a query applyDeltaQuery: %s", err)
		return nil, err
	}
	return account, nil
}

// ApplyDeltas applies every delta in one transaction and returns the updated accounts
// in argument order. Rows are locked in id order so concurrent multi-account writes
// cannot deadlock. Nothing is written when any balance would go negative.
func (postgresql *PostgreSQL) ApplyDeltas(ctx context.Context, deltas ...models.AccountDelta) ([]*models.Account, error) {
	tx, err := postgresql.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	order := make([]int, len(deltas))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return deltas[order[a]].AccountID < deltas[order[b]].AccountID })

	accounts := make([]*models.Account, len(deltas))
	for _, i := range order {
		account, err := postgresql.applyDelta(ctx, tx, deltas[i])
		if err != nil {
			return nil, err
		}
		accounts[i] = account
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return accounts, nil
}

// ListItems returns the catalog ordered by price, optionally filtered by category.
func (postgresql *PostgreSQL) ListItems(ctx context.Context, category models.Category) ([]models.Item, error) {
	rows, err := postgresql.db.QueryContext(ctx, listItemsQuery, string(category))
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query listItemsQuery: %s", err)
		return nil, err
	}
	defer rows.Close()

	const initialCatalogCapacity = 16
	items := make([]models.Item, 0, initialCatalogCapacity)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			postgresql.log.Sugar().Errorf("Failed to scan item in ListItems method: %s", err)
			return nil, err
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		postgresql.log.Sugar().Errorf("The last error encountered by Rows.Scan in ListItems method: %s", err)
		return items, err
	}

	return items, nil
}

// GetItem resolves an item by numeric id or by case-insensitive name.
func (postgresql *PostgreSQL) GetItem(ctx context.Context, ref string) (*models.Item, error) {
	ref = strings.TrimSpace(ref)

	var row *sql.Row
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		row = postgresql.db.QueryRowContext(ctx, getItemByIDQuery, id)
	} else {
		row = postgresql.db.QueryRowContext(ctx, getItemByNameQuery, ref)
	}

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query getItemQuery: %s", err)
		return nil, err
	}
	return item, nil
}

// UpsertItems seeds catalog items. Items already present by name are left untouched.
func (postgresql *PostgreSQL) UpsertItems(ctx context.Context, items []models.Item) error {
	tx, err := postgresql.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, item := range items {
		var effect sql.NullString
		if d := models.EncodeEffect(item.Effect); d != nil {
			raw, err := json.Marshal(d)
			if err != nil {
				return err
			}
			effect = sql.NullString{String: string(raw), Valid: true}
		}
		_, err := tx.ExecContext(ctx, upsertItemQuery, item.Name, item.Description, item.Price,
			string(item.Category), string(item.Rarity), effect)
		if err != nil {
			postgresql.log.Sugar().Errorf("Failed to execute a query upsertItemQuery for %q: %s", item.Name, err)
			return err
		}
	}

	return tx.Commit()
}

// GetInventory returns the positive inventory entries of an account.
func (postgresql *PostgreSQL) GetInventory(ctx context.Context, accountID string) ([]models.InventoryEntry, error) {
	rows, err := postgresql.db.QueryContext(ctx, getInventoryQuery, accountID)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query getInventoryQuery: %s", err)
		return nil, err
	}
	defer rows.Close()

	const initialInventoryCapacity = 10
	inventory := make([]models.InventoryEntry, 0, initialInventoryCapacity)
	for rows.Next() {
		var quantity int
		item, err := scanItem(rows, &quantity)
		if err != nil {
			postgresql.log.Sugar().Errorf("Failed to scan inventory in GetInventory method: %s", err)
			return nil, err
		}
		inventory = append(inventory, models.InventoryEntry{AccountID: accountID, Item: *item, Quantity: quantity})
	}

	if err := rows.Err(); err != nil {
		postgresql.log.Sugar().Errorf("The last error encountered by Rows.Scan in GetInventory method: %s", err)
		return inventory, err
	}

	return inventory, nil
}

// ExchangeItem changes the quantity of one inventory entry and applies delta to the
// owning account in a single transaction. It returns the updated account and the new quantity.
// A decrement below zero fails with ErrNotOwned and an entry reaching zero is removed.
func (postgresql *PostgreSQL) ExchangeItem(ctx context.Context, delta models.AccountDelta, itemID int64, quantityDelta int) (*models.Account, int, error) {
	tx, err := postgresql.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	var quantity int
	if quantityDelta >= 0 {
		err = tx.QueryRowContext(ctx, addInventoryQuery, delta.AccountID, itemID, quantityDelta).Scan(&quantity)
		switch fk := foreignKeyViolation(err); {
		case fk == "inventory_item_id_fkey":
			return nil, 0, ErrItemNotFound
		case fk != "":
			return nil, 0, ErrAccountNotFound
		case err != nil:
			postgresql.log.Sugar().Errorf("Failed to execute a query addInventoryQuery: %s", err)
			return nil, 0, err
		}
	} else {
		err = tx.QueryRowContext(ctx, lockInventoryQuery, delta.AccountID, itemID).Scan(&quantity)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrNotOwned
		}
		if err != nil {
			postgresql.log.Sugar().Errorf("Failed to execute a query lockInventoryQuery: %s", err)
			return nil, 0, err
		}
		quantity += quantityDelta
		if quantity < 0 {
			return nil, 0, ErrNotOwned
		}

		query := updateInventoryQuery
		args := []any{delta.AccountID, itemID, quantity}
		if quantity == 0 {
			query = deleteInventoryQuery
			args = args[:2]
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			postgresql.log.Sugar().Errorf("Failed to change inventory quantity: %s", err)
			return nil, 0, err
		}
	}

	account, err := postgresql.applyDelta(ctx, tx, delta)
	if err != nil {
		return nil, 0, err
	}

	if err = tx.Commit(); err != nil {
		return nil, 0, err
	}

	return account, quantity, nil
}

// GetCooldown returns the stored cooldown or nil when none is recorded.
// Expired rows are returned as stored; callers compare against their clock.
func (postgresql *PostgreSQL) GetCooldown(ctx context.Context, accountID string, command models.Command) (*models.Cooldown, error) {
	var c models.Cooldown
	err := postgresql.db.QueryRowContext(ctx, getCooldownQuery, accountID, string(command)).Scan(&c.AccountID, &c.Command, &c.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query getCooldownQuery: %s", err)
		return nil, err
	}
	return &c, nil
}

// UpsertCooldown sets the expiry of a cooldown unconditionally.
func (postgresql *PostgreSQL) UpsertCooldown(ctx context.Context, cooldown models.Cooldown) error {
	_, err := postgresql.db.ExecContext(ctx, upsertCooldownQuery, cooldown.AccountID, string(cooldown.Command), cooldown.ExpiresAt)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query upsertCooldownQuery: %s", err)
		return err
	}
	return nil
}

// ClaimCooldown arms cooldown only if no unexpired cooldown exists at now.
// When the claim loses it returns the cooldown that blocked it and false.
func (postgresql *PostgreSQL) ClaimCooldown(ctx context.Context, cooldown models.Cooldown, now time.Time) (*models.Cooldown, bool, error) {
	var expiresAt time.Time
	err := postgresql.db.QueryRowContext(ctx, claimCooldownQuery, cooldown.AccountID, string(cooldown.Command), cooldown.ExpiresAt, now).Scan(&expiresAt)
	if err == nil {
		cooldown.ExpiresAt = expiresAt
		return &cooldown, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		postgresql.log.Sugar().Errorf("Failed to execute a query claimCooldownQuery: %s", err)
		return nil, false, err
	}

	existing, err := postgresql.GetCooldown(ctx, cooldown.AccountID, cooldown.Command)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// DeleteCooldown removes a cooldown. Deleting a missing cooldown is not an error.
func (postgresql *PostgreSQL) DeleteCooldown(ctx context.Context, accountID string, command models.Command) error {
	_, err := postgresql.db.ExecContext(ctx, deleteCooldownQuery, accountID, string(command))
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query deleteCooldownQuery: %s", err)
		return err
	}
	return nil
}

// GetSettings reads the settings record.
func (postgresql *PostgreSQL) GetSettings(ctx context.Context) (*models.Settings, error) {
	var s models.Settings
	err := postgresql.db.QueryRowContext(ctx, getSettingsQuery).Scan(&s.DailyBaseAmount, &s.DailyCooldownHours,
		&s.WorkMinAmount, &s.WorkMaxAmount, &s.WorkCooldownHours, &s.RobBaseSuccessRate, &s.RobCooldownHours,
		&s.RobPenaltyPercent, &s.XPMultiplier)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query getSettingsQuery: %s", err)
		return nil, err
	}
	return &s, nil
}

// SaveSettings writes the settings record.
func (postgresql *PostgreSQL) SaveSettings(ctx context.Context, s models.Settings) error {
	_, err := postgresql.db.ExecContext(ctx, saveSettingsQuery, s.DailyBaseAmount, s.DailyCooldownHours,
		s.WorkMinAmount, s.WorkMaxAmount, s.WorkCooldownHours, s.RobBaseSuccessRate, s.RobCooldownHours,
		s.RobPenaltyPercent, s.XPMultiplier)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query saveSettingsQuery: %s", err)
		return err
	}
	return nil
}

// AppendTransactions inserts audit records in one transaction.
func (postgresql *PostgreSQL) AppendTransactions(ctx context.Context, records ...models.Transaction) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := postgresql.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, r := range records {
		metadata, err := json.Marshal(r.Metadata)
		if err != nil {
			return err
		}
		if r.Metadata == nil {
			metadata = []byte("{}")
		}
		_, err = tx.ExecContext(ctx, appendTransactionQuery, r.ID, r.AccountID, r.Action, r.Amount, r.TargetID, r.ItemID,
			string(metadata), r.CreatedAt)
		if err != nil {
			postgresql.log.Sugar().Errorf("Failed to execute a query appendTransactionQuery: %s", err)
			return err
		}
	}

	return tx.Commit()
}

// ListTransactions returns the most recent audit records of an account, newest first.
func (postgresql *PostgreSQL) ListTransactions(ctx context.Context, accountID string, limit int) ([]models.Transaction, error) {
	limit = clampLimit(limit)
	rows, err := postgresql.db.QueryContext(ctx, listTransactionsQuery, accountID, limit)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query listTransactionsQuery: %s", err)
		return nil, err
	}
	defer rows.Close()

	records := make([]models.Transaction, 0, limit)
	for rows.Next() {
		var (
			r        models.Transaction
			amount   sql.NullInt64
			targetID sql.NullString
			itemID   sql.NullInt64
			metadata []byte
		)
		if err := rows.Scan(&r.ID, &r.AccountID, &r.Action, &amount, &targetID, &itemID, &metadata, &r.CreatedAt); err != nil {
			postgresql.log.Sugar().Errorf("Failed to scan transaction in ListTransactions method: %s", err)
			return nil, err
		}
		if amount.Valid {
			r.Amount = &amount.Int64
		}
		if targetID.Valid {
			r.TargetID = &targetID.String
		}
		if itemID.Valid {
			r.ItemID = &itemID.Int64
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &r.Metadata); err != nil {
				return nil, err
			}
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		postgresql.log.Sugar().Errorf("The last error encountered by Rows.Scan in ListTransactions method: %s", err)
		return records, err
	}

	return records, nil
}

// Leaderboard ranks non-bot accounts by the given metric, ties broken by id.
func (postgresql *PostgreSQL) Leaderboard(ctx context.Context, metric models.Metric, limit int) ([]models.LeaderboardEntry, error) {
	limit = clampLimit(limit)
	query := leaderboardCoinsQuery
	if metric == models.MetricXP {
		query = leaderboardXPQuery
	}

	rows, err := postgresql.db.QueryContext(ctx, query, limit)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query leaderboardQuery: %s", err)
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.LeaderboardEntry, 0, limit)
	for rows.Next() {
		e := models.LeaderboardEntry{Rank: len(entries) + 1}
		if err := rows.Scan(&e.AccountID, &e.DisplayName, &e.Coins, &e.XP, &e.Level); err != nil {
			postgresql.log.Sugar().Errorf("Failed to scan leaderboard in Leaderboard method: %s", err)
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		postgresql.log.Sugar().Errorf("The last error encountered by Rows.Scan in Leaderboard method: %s", err)
		return entries, err
	}

	return entries, nil
}
