package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cardscan/internal/apperr"
	"cardscan/internal/record"
	"cardscan/internal/schema"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// ConfigSource: откуда брать актуальную ColumnConfig (settings.Store).
type ConfigSource interface {
	Current() schema.ColumnConfig
}

// Repo: record.Repository поверх таблицы contacts.
// Туда и обратно ходят только поля из текущей конфигурации.
type Repo struct {
	db   *sql.DB
	cfg  ConfigSource
	log  *zap.Logger
	auto bool // досоздавать колонки при изменении конфигурации
}

var _ record.Repository = (*Repo)(nil)

func NewRepo(db *sql.DB, cfg ConfigSource, autoMigrate bool, log *zap.Logger) *Repo {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repo{db: db, cfg: cfg, log: log, auto: autoMigrate}
}

// Migrate создаёт таблицу и недостающие колонки под конфигурацию.
func (r *Repo) Migrate(ctx context.Context, cfg schema.ColumnConfig) error {
	ddl, err := GenerateDDL(cfg)
	if err != nil {
		return err
	}
	if err := ApplyDDL(ctx, r.db, ddl, r.log); err != nil {
		return apperr.Transport("pg.migrate", "Failed to update the contacts table.", err)
	}
	return nil
}

// Check/Sync: хук изменения конфигурации для API настроек.
func (r *Repo) Check(cfg schema.ColumnConfig) error { return CheckConfig(cfg) }

func (r *Repo) Sync(ctx context.Context, cfg schema.ColumnConfig) error {
	if !r.auto {
		return nil
	}
	return r.Migrate(ctx, cfg)
}

func (r *Repo) columns() (map[string]string, error) {
	return columnMap(r.cfg.Current())
}

// dbErr переводит ошибки драйвера в таксономию приложения.
func dbErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "six_digit_id") {
		return record.ErrShortIDTaken
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperr.Transport(op, "The request to the database was interrupted.", err)
	}
	return apperr.Transport(op, "Database request failed.", err)
}

// scanRows читает select * в записи; колонки, которых нет в конфигурации, не попадают в Fields.
func scanRows(rows *sql.Rows, cols map[string]string) ([]record.Record, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	byCol := make(map[string]string, len(cols))
	for k, c := range cols {
		byCol[c] = k
	}

	var out []record.Record
	for rows.Next() {
		vals := make([]sql.NullString, len(names))
		ptrs := make([]any, len(names))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := record.Record{Fields: map[string]string{}}
		for i, name := range names {
			if !vals[i].Valid {
				continue
			}
			switch name {
			case colID:
				rec.ID = vals[i].String
			case colShortID:
				n, err := strconv.Atoi(vals[i].String)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", colShortID, err)
				}
				rec.ShortID = n
			default:
				if key, ok := byCol[name]; ok {
					rec.Fields[key] = vals[i].String
				}
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *Repo) query(ctx context.Context, op, q string, args ...any) ([]record.Record, error) {
	cols, err := r.columns()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, dbErr(op, err)
	}
	defer rows.Close()
	recs, err := scanRows(rows, cols)
	if err != nil {
		return nil, dbErr(op, err)
	}
	return recs, nil
}

// List: по дате добавления, новые сверху.
func (r *Repo) List(ctx context.Context) ([]record.Record, error) {
	order := sqlIdent(colCreatedAt)
	if cols, err := r.columns(); err == nil {
		if dc, ok := cols[schema.KeyDateAdded]; ok {
			order = sqlIdent(dc)
		}
	}
	q := fmt.Sprintf("select * from %s order by %s desc nulls last, %s desc", sqlIdent(Table), order, sqlIdent(colCreatedAt))
	recs, err := r.query(ctx, "pg.list", q)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []record.Record{}
	}
	return recs, nil
}

func (r *Repo) Get(ctx context.Context, id string) (record.Record, error) {
	q := fmt.Sprintf("select * from %s where %s = $1", sqlIdent(Table), sqlIdent(colID))
	recs, err := r.query(ctx, "pg.get", q, id)
	if err != nil {
		return record.Record{}, err
	}
	if len(recs) == 0 {
		return record.Record{}, apperr.NotFound("pg.get", "Record not found")
	}
	return recs[0], nil
}

// Create: insert ... returning *. Ключи вне конфигурации отбрасываются.
func (r *Repo) Create(ctx context.Context, rec record.Record) (record.Record, error) {
	cols, err := r.columns()
	if err != nil {
		return record.Record{}, err
	}
	names := []string{sqlIdent(colID)}
	args := []any{uuid.NewString()}
	if rec.ShortID != 0 {
		names = append(names, sqlIdent(colShortID))
		args = append(args, rec.ShortID)
	}
	for _, key := range rec.Keys() {
		col, ok := cols[key]
		if !ok {
			continue
		}
		names = append(names, sqlIdent(col))
		args = append(args, rec.Fields[key])
	}
	ph := make([]string, len(args))
	for i := range ph {
		ph[i] = "$" + strconv.Itoa(i+1)
	}
	q := fmt.Sprintf("insert into %s (%s) values (%s) returning *",
		sqlIdent(Table), strings.Join(names, ", "), strings.Join(ph, ", "))

	recs, err := r.query(ctx, "pg.create", q, args...)
	if err != nil {
		return record.Record{}, err
	}
	if len(recs) == 0 {
		return record.Record{}, apperr.Transport("pg.create", "Insert returned no row.", nil)
	}
	return recs[0], nil
}

// Update: update ... where id returning *. Короткий id не меняется.
func (r *Repo) Update(ctx context.Context, rec record.Record) (record.Record, error) {
	cols, err := r.columns()
	if err != nil {
		return record.Record{}, err
	}
	var sets []string
	var args []any
	for _, key := range rec.Keys() {
		col, ok := cols[key]
		if !ok {
			continue
		}
		args = append(args, rec.Fields[key])
		sets = append(sets, fmt.Sprintf("%s = $%d", sqlIdent(col), len(args)))
	}
	if len(sets) == 0 {
		return r.Get(ctx, rec.ID)
	}
	args = append(args, rec.ID)
	q := fmt.Sprintf("update %s set %s where %s = $%d returning *",
		sqlIdent(Table), strings.Join(sets, ", "), sqlIdent(colID), len(args))

	recs, err := r.query(ctx, "pg.update", q, args...)
	if err != nil {
		return record.Record{}, err
	}
	if len(recs) == 0 {
		return record.Record{}, apperr.NotFound("pg.update", "Record not found")
	}
	return recs[0], nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	q := fmt.Sprintf("delete from %s where %s = $1", sqlIdent(Table), sqlIdent(colID))
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return dbErr("pg.delete", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFound("pg.delete", "Record not found")
	}
	return nil
}

func (r *Repo) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, fmt.Sprintf("delete from %s", sqlIdent(Table))); err != nil {
		return dbErr("pg.clear", err)
	}
	return nil
}

func (r *Repo) FindByShortID(ctx context.Context, shortID int) (record.Record, bool, error) {
	q := fmt.Sprintf("select * from %s where %s = $1 limit 1", sqlIdent(Table), sqlIdent(colShortID))
	recs, err := r.query(ctx, "pg.find_short_id", q, shortID)
	if err != nil {
		return record.Record{}, false, err
	}
	if len(recs) == 0 {
		return record.Record{}, false, nil
	}
	return recs[0], true, nil
}
