package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kassa-app/kassa-backend/internal/domain"
)

// CategoryRepository implements domain.CategoryRepository using PostgreSQL
type CategoryRepository struct {
	db DBTX
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db DBTX) *CategoryRepository {
	return &CategoryRepository{db: db}
}

const categoryColumns = "id, user_id, name, type, icon, color, created_at, updated_at"

// Create inserts a new category
func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO categories (user_id, name, type, icon, color)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+categoryColumns,
		category.UserID, category.Name, string(category.Type), toPgText(category.Icon), toPgText(category.Color),
	)
	return scanCategory(row)
}

// GetByID retrieves a category by (id, user_id)
func (r *CategoryRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.Category, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	category, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

// GetAllByUser retrieves the user's categories, optionally filtered by type
func (r *CategoryRepository) GetAllByUser(ctx context.Context, userID uuid.UUID, typeFilter *domain.CategoryType) ([]*domain.Category, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+categoryColumns+`
		 FROM categories
		 WHERE user_id = $1 AND ($2::text IS NULL OR type = $2)
		 ORDER BY id`,
		userID, typeFilterArg(typeFilter),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// GetWithTotals retrieves the user's categories together with the sum of raw
// operation amounts under each. Left join: categories without operations
// appear with a zero total.
func (r *CategoryRepository) GetWithTotals(ctx context.Context, userID uuid.UUID, typeFilter *domain.CategoryType) ([]*domain.CategoryWithTotal, error) {
	rows, err := r.db.Query(ctx,
		`SELECT c.id, c.user_id, c.name, c.type, c.icon, c.color, c.created_at, c.updated_at,
		        COALESCE(SUM(o.amount), 0) AS total_amount
		 FROM categories c
		 LEFT JOIN operations o ON o.category_id = c.id
		 WHERE c.user_id = $1 AND ($2::text IS NULL OR c.type = $2)
		 GROUP BY c.id
		 ORDER BY c.id`,
		userID, typeFilterArg(typeFilter),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.CategoryWithTotal
	for rows.Next() {
		var (
			c     domain.CategoryWithTotal
			icon  pgtype.Text
			color pgtype.Text
			total pgtype.Numeric
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &icon, &color, &c.CreatedAt, &c.UpdatedAt, &total); err != nil {
			return nil, err
		}
		c.Icon = textPtr(icon)
		c.Color = textPtr(color)
		c.TotalAmount = pgNumericToDecimal(total)
		results = append(results, &c)
	}
	return results, rows.Err()
}

// Update applies the non-nil fields of update to the category row
func (r *CategoryRepository) Update(ctx context.Context, userID uuid.UUID, id int32, update *domain.CategoryUpdate) (*domain.Category, error) {
	var catType *string
	if update.Type != nil {
		s := string(*update.Type)
		catType = &s
	}

	row := r.db.QueryRow(ctx,
		`UPDATE categories
		 SET name       = COALESCE($3, name),
		     type       = COALESCE($4, type),
		     icon       = COALESCE($5, icon),
		     color      = COALESCE($6, color),
		     updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+categoryColumns,
		id, userID, update.Name, catType, update.Icon, update.Color,
	)
	category, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

// Delete removes the category; the operations foreign key cascades
func (r *CategoryRepository) Delete(ctx context.Context, userID uuid.UUID, id int32) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM categories WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var (
		c     domain.Category
		icon  pgtype.Text
		color pgtype.Text
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &icon, &color, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Icon = textPtr(icon)
	c.Color = textPtr(color)
	return &c, nil
}

func typeFilterArg(t *domain.CategoryType) *string {
	if t == nil {
		return nil
	}
	s := string(*t)
	return &s
}
