package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"slotkeeper/infras/otel"
	"slotkeeper/infras/postgres"
	"slotkeeper/internal/domains/refund/model"
	"slotkeeper/shared/constant"
	gRepo "slotkeeper/shared/repository"

	"github.com/Masterminds/squirrel"
)

type Rule interface {
	// ListByResource returns the rules attached to resourceID, or the global
	// rules (resource_id IS NULL) when resourceID is empty.
	ListByResource(ctx context.Context, resourceID string) ([]model.Rule, error)
}

type repositoryImpl struct {
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Rule {
	return &repositoryImpl{
		db:   db,
		otel: otel,
	}
}

func (r *repositoryImpl) ListByResource(ctx context.Context, resourceID string) ([]model.Rule, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+model.EntityName+".ListByResource")
	defer scope.End()

	builder := gRepo.Psql.Select(model.FieldHoursBefore, model.FieldFeePercent, model.FieldReason).
		From(model.TableName).
		OrderBy(model.FieldHoursBefore + " DESC")

	if resourceID == constant.Empty {
		builder = builder.Where(squirrel.Eq{model.FieldResourceID: nil})
	} else {
		builder = builder.Where(squirrel.Eq{model.FieldResourceID: resourceID})
	}

	return gRepo.Select[model.Rule](ctx, r.db.Read, scope, model.EntityName, builder) //nolint:wrapcheck
}
