package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/locvowork/attrition_datahub/internal/domain"
)

type departmentSnapshotRepository struct {
	coll *mongo.Collection
}

func NewDepartmentSnapshotRepository(db *mongo.Database) domain.DepartmentSnapshotRepository {
	return &departmentSnapshotRepository{coll: db.Collection(domain.CollectionDepartments)}
}

func (r *departmentSnapshotRepository) Create(ctx context.Context, d *domain.DepartmentSnapshot) error {
	d.ID = primitive.NilObjectID
	if d.LastUpdated.IsZero() {
		d.LastUpdated = time.Now().UTC()
	}
	res, err := r.coll.InsertOne(ctx, d)
	if err != nil {
		return mongoWriteError(fmt.Sprintf("create department %q", d.DepartmentName), err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		d.ID = id
	}
	return nil
}

func (r *departmentSnapshotRepository) GetByID(ctx context.Context, id string) (*domain.DepartmentSnapshot, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var d domain.DepartmentSnapshot
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		return nil, mongoReadError(fmt.Sprintf("get department %s", id), err)
	}
	return &d, nil
}

func (r *departmentSnapshotRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	set["last_updated"] = time.Now().UTC()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return mongoWriteError(fmt.Sprintf("update department %s", id), err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: department %s", domain.ErrNotFound, id)
	}
	return nil
}

func (r *departmentSnapshotRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete department %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: department %s", domain.ErrNotFound, id)
	}
	return nil
}

func (r *departmentSnapshotRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.DepartmentSnapshot, error) {
	limit, offset := window(filter)
	opts := options.Find().
		SetSort(bson.D{{Key: "department_name", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	depts := []domain.DepartmentSnapshot{}
	if err := cur.All(ctx, &depts); err != nil {
		return nil, fmt.Errorf("failed to decode departments: %w", err)
	}
	return depts, nil
}
