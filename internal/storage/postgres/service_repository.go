package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/laundryos/internal/domain"
)

type serviceRepository struct {
	db *sql.DB
}

// NewServiceRepository создаёт PostgreSQL-реализацию ServiceRepository.
func NewServiceRepository(store *Store) domain.ServiceRepository {
	return &serviceRepository{db: store.DB()}
}

func (r *serviceRepository) Create(service domain.Service) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO services (id, category_id, name, price_centavos, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`,
		service.ID, service.CategoryID, service.Name, service.PriceCentavos,
		service.CreatedAt, service.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrVersionConflict
		}
		return fmt.Errorf("insert service: %w", err)
	}

	return nil
}

func (r *serviceRepository) Get(id string) (domain.Service, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var service domain.Service
	err := r.db.QueryRowContext(ctx, `
		SELECT id, category_id, name, price_centavos, created_at, updated_at
		FROM services
		WHERE id = $1
	`, id).Scan(
		&service.ID, &service.CategoryID, &service.Name, &service.PriceCentavos,
		&service.CreatedAt, &service.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Service{}, domain.ErrServiceNotFound
		}
		return domain.Service{}, fmt.Errorf("select service: %w", err)
	}

	return service, nil
}

func (r *serviceRepository) List(limit int) ([]domain.Service, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := `
		SELECT id, category_id, name, price_centavos, created_at, updated_at
		FROM services
		ORDER BY name ASC, id ASC
	`

	var (
		rows *sql.Rows
		err  error
	)

	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, query+" LIMIT $1", limit)
	} else {
		rows, err = r.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	services := make([]domain.Service, 0)
	for rows.Next() {
		var service domain.Service
		if err := rows.Scan(
			&service.ID, &service.CategoryID, &service.Name, &service.PriceCentavos,
			&service.CreatedAt, &service.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan service row: %w", err)
		}
		services = append(services, service)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate service rows: %w", err)
	}

	return services, nil
}

var _ domain.ServiceRepository = (*serviceRepository)(nil)
