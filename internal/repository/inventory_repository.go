package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lithovolt/warranty-service/internal/domain"
)

// ErrInsufficientStock signals fewer available serials than requested.
var ErrInsufficientStock = errors.New("insufficient available stock")

// InventoryRepository handles battery models and serialized stock.
type InventoryRepository interface {
	CreateModel(ctx context.Context, model *domain.BatteryModel) error
	GetModelByID(ctx context.Context, id string) (*domain.BatteryModel, error)
	ListModels(ctx context.Context, includeInactive bool) ([]domain.BatteryModel, error)
	CreateSerials(ctx context.Context, serials []domain.SerialNumber) error
	GetSerial(ctx context.Context, serial string) (*domain.SerialNumber, error)
	MarkSerialSold(ctx context.Context, serialID, consumerID string) error
	AllocateSerials(ctx context.Context, allocation *domain.StockAllocation) ([]domain.SerialNumber, error)
	CountByStatus(ctx context.Context, modelID string, status domain.SerialStatus) (int, error)
}

type inventoryRepository struct {
	pool *pgxpool.Pool
}

// NewInventoryRepository instantiates the repository.
func NewInventoryRepository(pool *pgxpool.Pool) InventoryRepository {
	return &inventoryRepository{pool: pool}
}

func (r *inventoryRepository) CreateModel(ctx context.Context, model *domain.BatteryModel) error {
	const query = `
        INSERT INTO battery_models (name, sku, capacity_ah, voltage, warranty_months, is_active)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		model.Name,
		model.SKU,
		model.CapacityAh,
		model.Voltage,
		model.WarrantyMonths,
		model.IsActive,
	).Scan(&model.ID, &model.CreatedAt, &model.UpdatedAt)
}

func (r *inventoryRepository) GetModelByID(ctx context.Context, id string) (*domain.BatteryModel, error) {
	const query = `
        SELECT id, name, sku, capacity_ah, voltage, warranty_months, is_active, created_at, updated_at
        FROM battery_models WHERE id=$1`
	var model domain.BatteryModel
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&model.ID,
		&model.Name,
		&model.SKU,
		&model.CapacityAh,
		&model.Voltage,
		&model.WarrantyMonths,
		&model.IsActive,
		&model.CreatedAt,
		&model.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &model, nil
}

func (r *inventoryRepository) ListModels(ctx context.Context, includeInactive bool) ([]domain.BatteryModel, error) {
	query := `
        SELECT id, name, sku, capacity_ah, voltage, warranty_months, is_active, created_at, updated_at
        FROM battery_models`
	if !includeInactive {
		query += " WHERE is_active"
	}
	query += " ORDER BY name"

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.BatteryModel
	for rows.Next() {
		var model domain.BatteryModel
		if err := rows.Scan(
			&model.ID,
			&model.Name,
			&model.SKU,
			&model.CapacityAh,
			&model.Voltage,
			&model.WarrantyMonths,
			&model.IsActive,
			&model.CreatedAt,
			&model.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, model)
	}
	return result, rows.Err()
}

func (r *inventoryRepository) CreateSerials(ctx context.Context, serials []domain.SerialNumber) error {
	const query = `
        INSERT INTO battery_serial_numbers (battery_model_id, serial_number, status)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	for i := range serials {
		if err := r.pool.QueryRow(ctx, query,
			serials[i].BatteryModelID,
			serials[i].Serial,
			serials[i].Status,
		).Scan(&serials[i].ID, &serials[i].CreatedAt, &serials[i].UpdatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (r *inventoryRepository) GetSerial(ctx context.Context, serial string) (*domain.SerialNumber, error) {
	const query = `
        SELECT id, battery_model_id, serial_number, status, allocated_to_id, allocated_at,
               sold_to_id, sold_at, created_at, updated_at
        FROM battery_serial_numbers WHERE serial_number=$1`
	var sn domain.SerialNumber
	if err := r.pool.QueryRow(ctx, query, serial).Scan(
		&sn.ID,
		&sn.BatteryModelID,
		&sn.Serial,
		&sn.Status,
		&sn.AllocatedToID,
		&sn.AllocatedAt,
		&sn.SoldToID,
		&sn.SoldAt,
		&sn.CreatedAt,
		&sn.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &sn, nil
}

func (r *inventoryRepository) MarkSerialSold(ctx context.Context, serialID, consumerID string) error {
	const query = `
        UPDATE battery_serial_numbers
        SET status=$1, sold_to_id=$2, sold_at=NOW(), updated_at=NOW()
        WHERE id=$3 AND status=$4`
	cmd, err := r.pool.Exec(ctx, query, domain.SerialSold, consumerID, serialID, domain.SerialAllocated)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// AllocateSerials picks the requested quantity of available serials and
// flips them to ALLOCATED in one transaction. FOR UPDATE SKIP LOCKED
// keeps concurrent allocations from selecting the same rows; if fewer
// than the requested quantity remain, nothing is flipped.
func (r *inventoryRepository) AllocateSerials(ctx context.Context, allocation *domain.StockAllocation) ([]domain.SerialNumber, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const selectQuery = `
        SELECT id, battery_model_id, serial_number
        FROM battery_serial_numbers
        WHERE battery_model_id=$1 AND status=$2
        ORDER BY created_at
        LIMIT $3
        FOR UPDATE SKIP LOCKED`
	rows, err := tx.Query(ctx, selectQuery, allocation.BatteryModelID, domain.SerialAvailable, allocation.Quantity)
	if err != nil {
		return nil, err
	}

	var picked []domain.SerialNumber
	for rows.Next() {
		var sn domain.SerialNumber
		if err := rows.Scan(&sn.ID, &sn.BatteryModelID, &sn.Serial); err != nil {
			rows.Close()
			return nil, err
		}
		picked = append(picked, sn)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(picked) < allocation.Quantity {
		return nil, ErrInsufficientStock
	}

	const flip = `
        UPDATE battery_serial_numbers
        SET status=$1, allocated_to_id=$2, allocated_at=NOW(), updated_at=NOW()
        WHERE id=$3`
	for i := range picked {
		if _, err := tx.Exec(ctx, flip, domain.SerialAllocated, allocation.WholesalerID, picked[i].ID); err != nil {
			return nil, err
		}
		picked[i].Status = domain.SerialAllocated
		picked[i].AllocatedToID = &allocation.WholesalerID
	}

	const record = `
        INSERT INTO stock_allocations (battery_model_id, wholesaler_id, allocated_by_id, quantity, notes)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	if err := tx.QueryRow(ctx, record,
		allocation.BatteryModelID,
		allocation.WholesalerID,
		allocation.AllocatedByID,
		allocation.Quantity,
		allocation.Notes,
	).Scan(&allocation.ID, &allocation.CreatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return picked, nil
}

func (r *inventoryRepository) CountByStatus(ctx context.Context, modelID string, status domain.SerialStatus) (int, error) {
	const query = `
        SELECT COUNT(*) FROM battery_serial_numbers WHERE battery_model_id=$1 AND status=$2`
	var count int
	if err := r.pool.QueryRow(ctx, query, modelID, status).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
