package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"slotkeeper/infras/otel"
	"slotkeeper/infras/postgres"
	"slotkeeper/internal/domains/settings/model"
	"slotkeeper/shared/constant"
	gRepo "slotkeeper/shared/repository"

	"github.com/Masterminds/squirrel"
)

type Settings interface {
	Get(ctx context.Context, resourceID string) (model.Settings, bool, error)
	Upsert(ctx context.Context, settings model.Settings) error
}

type repositoryImpl struct {
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Settings {
	return &repositoryImpl{
		db:   db,
		otel: otel,
	}
}

func (r *repositoryImpl) Get(ctx context.Context, resourceID string) (model.Settings, bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+model.EntityName+".Get")
	defer scope.End()

	builder := gRepo.Psql.Select(model.Columns...).
		From(model.TableName).
		Where(squirrel.Eq{model.FieldResourceID: resourceID})

	return gRepo.Get[model.Settings](ctx, r.db.Read, scope, model.EntityName, builder) //nolint:wrapcheck
}

func (r *repositoryImpl) Upsert(ctx context.Context, settings model.Settings) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+model.EntityName+".Upsert")
	defer scope.End()

	builder := gRepo.Psql.Insert(model.TableName).
		Columns(model.Columns...).
		Values(settings.ResourceID, settings.OwnerID, settings.Document, settings.CreatedAt, settings.UpdatedAt).
		Suffix(fmt.Sprintf(
			"ON CONFLICT (%[1]s) DO UPDATE SET %[2]s = EXCLUDED.%[2]s, %[3]s = EXCLUDED.%[3]s, %[4]s = EXCLUDED.%[4]s",
			model.FieldResourceID, model.FieldOwnerID, model.FieldDocument, model.FieldUpdatedAt,
		))

	if _, err := gRepo.Exec(ctx, r.db.Write, scope, model.EntityName, builder); err != nil {
		return err //nolint:wrapcheck
	}

	return nil
}
