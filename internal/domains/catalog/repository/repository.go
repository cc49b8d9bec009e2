package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"slotkeeper/infras/otel"
	"slotkeeper/infras/postgres"
	"slotkeeper/internal/domains/catalog/model"
	"slotkeeper/shared/constant"
	gRepo "slotkeeper/shared/repository"

	"github.com/Masterminds/squirrel"
)

type Catalog interface {
	GetService(ctx context.Context, id string) (model.Service, bool, error)
	// ResourceOwner returns the owner recorded on any service of the resource.
	ResourceOwner(ctx context.Context, resourceID string) (string, bool, error)
}

type repositoryImpl struct {
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Catalog {
	return &repositoryImpl{
		db:   db,
		otel: otel,
	}
}

func (r *repositoryImpl) GetService(ctx context.Context, id string) (model.Service, bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+model.EntityName+".GetService")
	defer scope.End()

	builder := gRepo.Psql.Select(model.Columns...).
		From(model.TableName).
		Where(squirrel.Eq{model.FieldID: id})

	return gRepo.Get[model.Service](ctx, r.db.Read, scope, model.EntityName, builder) //nolint:wrapcheck
}

func (r *repositoryImpl) ResourceOwner(ctx context.Context, resourceID string) (string, bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+model.EntityName+".ResourceOwner")
	defer scope.End()

	builder := gRepo.Psql.Select(model.FieldResourceOwnerID).
		From(model.TableName).
		Where(squirrel.Eq{model.FieldResourceID: resourceID}).
		Limit(1)

	return gRepo.Get[string](ctx, r.db.Read, scope, model.EntityName, builder) //nolint:wrapcheck
}
