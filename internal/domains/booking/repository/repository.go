package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"slotkeeper/infras/otel"
	"slotkeeper/infras/postgres"
	"slotkeeper/internal/domains/booking/model"
	"slotkeeper/shared/constant"
	gDto "slotkeeper/shared/dto"
	gRepo "slotkeeper/shared/repository"
	"time"

	"github.com/Masterminds/squirrel"
)

var sortableColumns = map[string]string{
	model.FieldStartAt:   model.FieldStartAt,
	model.FieldCreatedAt: model.FieldCreatedAt,
	model.FieldUpdatedAt: model.FieldUpdatedAt,
	model.FieldStatus:    model.FieldStatus,
}

type Booking interface {
	Insert(ctx context.Context, booking model.Booking) error
	// Get reads from the replica; use GetLatest inside a resource lock.
	Get(ctx context.Context, id string) (model.Booking, bool, error)
	GetLatest(ctx context.Context, id string) (model.Booking, bool, error)
	List(ctx context.Context, params gDto.QueryParams, filter model.Filter) ([]model.Booking, error)
	Count(ctx context.Context, filter model.Filter) (int, error)
	// FindOverlapping returns bookings on resourceID in one of statuses whose
	// interval overlaps [start, end), skipping excludeID when set.
	FindOverlapping(ctx context.Context, resourceID string, start, end time.Time, statuses []model.Status, excludeID string) ([]model.Booking, error)
	Update(ctx context.Context, booking model.Booking) error
	// ListExpirable pages pending holds created before cutoff in (created_at, id) order.
	ListExpirable(ctx context.Context, cutoff time.Time, after model.Cursor, limit int) ([]model.Booking, error)
}

type repositoryImpl struct {
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		db:   db,
		otel: otel,
	}
}

func (r *repositoryImpl) newScope(ctx context.Context, name string) (context.Context, otel.Scope) {
	return r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.%s", constant.OtelRepositoryScopeName, model.EntityName, name))
}

func (r *repositoryImpl) Insert(ctx context.Context, booking model.Booking) error {
	ctx, scope := r.newScope(ctx, "Insert")
	defer scope.End()

	builder := gRepo.Psql.Insert(model.TableName).
		Columns(model.Columns...).
		Values(
			booking.ID,
			booking.ResourceID,
			booking.ResourceOwnerID,
			booking.CustomerID,
			booking.ServiceID,
			booking.StartAt,
			booking.EndAt,
			booking.Timezone,
			booking.Price,
			booking.Currency,
			booking.Status,
			booking.TransactionStatus,
			booking.ExternalTransactionRef,
			booking.ConflictWithID,
			booking.CancelReason,
			booking.RefundAmount,
			booking.RefundFee,
			booking.CreatedAt,
			booking.UpdatedAt,
		)

	if _, err := gRepo.Exec(ctx, r.db.Write, scope, model.EntityName, builder); err != nil {
		return err //nolint:wrapcheck
	}

	return nil
}

func (r *repositoryImpl) Get(ctx context.Context, id string) (model.Booking, bool, error) {
	ctx, scope := r.newScope(ctx, "Get")
	defer scope.End()

	builder := gRepo.Psql.Select(model.Columns...).
		From(model.TableName).
		Where(squirrel.Eq{model.FieldID: id})

	return gRepo.Get[model.Booking](ctx, r.db.Read, scope, model.EntityName, builder) //nolint:wrapcheck
}

func (r *repositoryImpl) GetLatest(ctx context.Context, id string) (model.Booking, bool, error) {
	ctx, scope := r.newScope(ctx, "GetLatest")
	defer scope.End()

	builder := gRepo.Psql.Select(model.Columns...).
		From(model.TableName).
		Where(squirrel.Eq{model.FieldID: id})

	return gRepo.Get[model.Booking](ctx, r.db.Write, scope, model.EntityName, builder) //nolint:wrapcheck
}

func applyFilter(builder squirrel.SelectBuilder, filter model.Filter) squirrel.SelectBuilder {
	if filter.ResourceID != constant.Empty {
		builder = builder.Where(squirrel.Eq{model.FieldResourceID: filter.ResourceID})
	}

	if filter.CustomerID != constant.Empty {
		builder = builder.Where(squirrel.Eq{model.FieldCustomerID: filter.CustomerID})
	}

	if filter.ResourceOwnerID != constant.Empty {
		builder = builder.Where(squirrel.Eq{model.FieldResourceOwnerID: filter.ResourceOwnerID})
	}

	if filter.Participant != constant.Empty {
		builder = builder.Where(squirrel.Or{
			squirrel.Eq{model.FieldCustomerID: filter.Participant},
			squirrel.Eq{model.FieldResourceOwnerID: filter.Participant},
		})
	}

	if len(filter.Statuses) > 0 {
		builder = builder.Where(squirrel.Eq{model.FieldStatus: statusNames(filter.Statuses)})
	}

	if filter.From != nil {
		builder = builder.Where(squirrel.Gt{model.FieldEndAt: *filter.From})
	}

	if filter.To != nil {
		builder = builder.Where(squirrel.Lt{model.FieldStartAt: *filter.To})
	}

	return builder
}

func (r *repositoryImpl) List(ctx context.Context, params gDto.QueryParams, filter model.Filter) ([]model.Booking, error) {
	ctx, scope := r.newScope(ctx, "List")
	defer scope.End()

	sortBy, ok := sortableColumns[params.SortBy]
	if !ok {
		sortBy = model.FieldStartAt
	}

	direction := gDto.SortDirAsc
	if params.Descending() {
		direction = gDto.SortDirDesc
	}

	builder := applyFilter(gRepo.Psql.Select(model.Columns...).From(model.TableName), filter).
		OrderBy(fmt.Sprintf("%s %s", sortBy, direction), model.FieldID)

	if params.Limit > 0 {
		builder = builder.Limit(uint64(params.Limit)).Offset(uint64(params.Offset())) //nolint:gosec
	}

	return gRepo.Select[model.Booking](ctx, r.db.Read, scope, model.EntityName, builder) //nolint:wrapcheck
}

func (r *repositoryImpl) Count(ctx context.Context, filter model.Filter) (int, error) {
	ctx, scope := r.newScope(ctx, "Count")
	defer scope.End()

	builder := applyFilter(gRepo.Psql.Select("COUNT(*)").From(model.TableName), filter)

	total, _, err := gRepo.Get[int](ctx, r.db.Read, scope, model.EntityName, builder)

	return total, err //nolint:wrapcheck
}

// FindOverlapping always reads the primary; callers hold the resource lock.
func (r *repositoryImpl) FindOverlapping(
	ctx context.Context,
	resourceID string,
	start, end time.Time,
	statuses []model.Status,
	excludeID string,
) ([]model.Booking, error) {
	ctx, scope := r.newScope(ctx, "FindOverlapping")
	defer scope.End()

	if len(statuses) == 0 {
		return []model.Booking{}, nil
	}

	builder := gRepo.Psql.Select(model.Columns...).
		From(model.TableName).
		Where(squirrel.Eq{model.FieldResourceID: resourceID}).
		Where(squirrel.Eq{model.FieldStatus: statusNames(statuses)}).
		Where(squirrel.Lt{model.FieldStartAt: end}).
		Where(squirrel.Gt{model.FieldEndAt: start}).
		OrderBy(model.FieldStartAt, model.FieldID)

	if excludeID != constant.Empty {
		builder = builder.Where(squirrel.NotEq{model.FieldID: excludeID})
	}

	return gRepo.Select[model.Booking](ctx, r.db.Write, scope, model.EntityName, builder) //nolint:wrapcheck
}

func (r *repositoryImpl) Update(ctx context.Context, booking model.Booking) error {
	ctx, scope := r.newScope(ctx, "Update")
	defer scope.End()

	builder := gRepo.Psql.Update(model.TableName).
		SetMap(map[string]any{
			model.FieldStartAt:                booking.StartAt,
			model.FieldEndAt:                  booking.EndAt,
			model.FieldTimezone:               booking.Timezone,
			model.FieldPrice:                  booking.Price,
			model.FieldCurrency:               booking.Currency,
			model.FieldStatus:                 booking.Status,
			model.FieldTransactionStatus:      booking.TransactionStatus,
			model.FieldExternalTransactionRef: booking.ExternalTransactionRef,
			model.FieldConflictWithID:         booking.ConflictWithID,
			model.FieldCancelReason:           booking.CancelReason,
			model.FieldRefundAmount:           booking.RefundAmount,
			model.FieldRefundFee:              booking.RefundFee,
			model.FieldUpdatedAt:              booking.UpdatedAt,
		}).
		Where(squirrel.Eq{model.FieldID: booking.ID})

	affected, err := gRepo.Exec(ctx, r.db.Write, scope, model.EntityName, builder)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if affected == 0 {
		return fmt.Errorf("failed to update booking %s: no rows affected", booking.ID)
	}

	return nil
}

func (r *repositoryImpl) ListExpirable(ctx context.Context, cutoff time.Time, after model.Cursor, limit int) ([]model.Booking, error) {
	ctx, scope := r.newScope(ctx, "ListExpirable")
	defer scope.End()

	builder := gRepo.Psql.Select(model.Columns...).
		From(model.TableName).
		Where(squirrel.Eq{model.FieldStatus: string(model.StatusPendingHold)}).
		Where(squirrel.NotEq{model.FieldTransactionStatus: string(model.TransactionCompleted)}).
		Where(squirrel.Lt{model.FieldCreatedAt: cutoff}).
		OrderBy(model.FieldCreatedAt, model.FieldID).
		Limit(uint64(limit)) //nolint:gosec

	if !after.IsZero() {
		builder = builder.Where(squirrel.Expr(
			fmt.Sprintf("(%s, %s) > (?, ?)", model.FieldCreatedAt, model.FieldID),
			after.CreatedAt, after.ID,
		))
	}

	return gRepo.Select[model.Booking](ctx, r.db.Write, scope, model.EntityName, builder) //nolint:wrapcheck
}

func statusNames(statuses []model.Status) []string {
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}

	return names
}
