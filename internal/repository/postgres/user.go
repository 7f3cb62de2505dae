package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/so-keyldzn/simple-cms-sub000/internal/domain"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/models"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/repositories"
)

// UserRepository implements repositories.UserRepository on Postgres.
type UserRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewUserRepository creates a new user repository.
func NewUserRepository(config *RepositoryConfig) repositories.UserRepository {
	return &UserRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const userColumns = "id, name, email, password_hash, roles, banned, ban_reason, ban_expires, created_at, updated_at"

func scanUser(row interface{ Scan(...interface{}) error }, u *models.User) error {
	var roles string
	if err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&roles,
		&u.Banned,
		&u.BanReason,
		&u.BanExpires,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return err
	}
	u.Roles = models.ParseRoles(roles)
	return nil
}

// Create inserts a user and fills in its generated fields.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, email, password_hash, roles)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, r.tables.Users)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Roles.String(),
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("user '%s': %w", user.Email, domain.ErrConflict)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, userColumns, r.tables.Users)

	var user models.User
	if err := scanUser(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id), &user); err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE lower(email) = lower($1)`, userColumns, r.tables.Users)

	var user models.User
	if err := scanUser(GetExecutor(ctx, r.pool).QueryRow(ctx, query, email), &user); err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("user '%s': %w", email, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}

// searchColumn maps the enumerated search field to its column. The query
// struct is validated upstream; defaulting to name keeps this total.
func searchColumn(field models.SearchField) string {
	if field == models.SearchFieldEmail {
		return "email"
	}
	return "name"
}

// searchPattern builds the ILIKE pattern for the operator.
func searchPattern(op models.SearchOperator, value string) string {
	switch op {
	case models.OperatorStartsWith:
		return value + "%"
	case models.OperatorEndsWith:
		return "%" + value
	case models.OperatorEquals:
		return value
	default:
		return "%" + value + "%"
	}
}

// List returns a page of users matching the query plus the total count.
func (r *UserRepository) List(ctx context.Context, query models.UserListQuery) (*models.UserList, error) {
	where := ""
	var args []interface{}

	if query.SearchValue != "" {
		where = fmt.Sprintf(" WHERE %s ILIKE $1", searchColumn(query.SearchField))
		args = append(args, searchPattern(query.SearchOperator, query.SearchValue))
	}

	if query.ExcludeSuperAdmins {
		clause := fmt.Sprintf("NOT (string_to_array(roles, ',') @> ARRAY['%s'])", models.RoleSuperAdmin)
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s%s`, r.tables.Users, where)

	var total int64
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	listQuery := fmt.Sprintf(`SELECT %s FROM %s%s ORDER BY created_at DESC`, userColumns, r.tables.Users, where)
	if query.Limit > 0 {
		listQuery += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, query.Limit)
	}
	if query.Offset > 0 {
		listQuery += fmt.Sprintf(" OFFSET $%d", len(args)+1)
		args = append(args, query.Offset)
	}

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, listQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var user models.User
		if err := scanUser(rows, &user); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return &models.UserList{Users: users, Total: total}, nil
}

// SetRoles replaces a user's role set.
func (r *UserRepository) SetRoles(ctx context.Context, id uuid.UUID, roles models.RoleSet) error {
	query := fmt.Sprintf(`UPDATE %s SET roles = $1, updated_at = now() WHERE id = $2`, r.tables.Users)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, roles.String(), id)
	if err != nil {
		return fmt.Errorf("set user roles: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// SetBan updates a user's ban state.
func (r *UserRepository) SetBan(ctx context.Context, id uuid.UUID, banned bool, reason string, expires *time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET banned = $1, ban_reason = $2, ban_expires = $3, updated_at = now() WHERE id = $4`, r.tables.Users)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, banned, reason, expires, id)
	if err != nil {
		return fmt.Errorf("set user ban: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// CountAdmins counts accounts holding the admin or super_admin role.
func (r *UserRepository) CountAdmins(ctx context.Context) (int64, error) {
	query := fmt.Sprintf(
		`SELECT COUNT(*) FROM %s WHERE string_to_array(roles, ',') && ARRAY['%s', '%s']`,
		r.tables.Users, models.RoleAdmin, models.RoleSuperAdmin,
	)

	var count int64
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}

	return count, nil
}
