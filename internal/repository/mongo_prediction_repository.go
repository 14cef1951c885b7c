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

type predictionRepository struct {
	coll *mongo.Collection
}

// NewPredictionRepository stores scorer outputs. employee_number is never
// checked against the employees collection.
func NewPredictionRepository(db *mongo.Database) domain.PredictionRepository {
	return &predictionRepository{coll: db.Collection(domain.CollectionPredictions)}
}

func (r *predictionRepository) Create(ctx context.Context, p *domain.Prediction) error {
	p.ID = primitive.NilObjectID
	if p.PredictionDate.IsZero() {
		p.PredictionDate = time.Now().UTC()
	}
	if p.Factors == nil {
		p.Factors = []string{}
	}
	res, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to create prediction for employee %d: %w", p.EmployeeNumber, err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = id
	}
	return nil
}

func (r *predictionRepository) GetByID(ctx context.Context, id string) (*domain.Prediction, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var p domain.Prediction
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		return nil, mongoReadError(fmt.Sprintf("get prediction %s", id), err)
	}
	return &p, nil
}

// List returns predictions newest first.
func (r *predictionRepository) List(ctx context.Context, filter domain.PredictionFilter) ([]domain.Prediction, error) {
	limit, offset := window(filter.ListFilter)
	opts := options.Find().
		SetSort(bson.D{{Key: "prediction_date", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	q := bson.M{}
	if filter.EmployeeNumber > 0 {
		q["employee_number"] = filter.EmployeeNumber
	}

	cur, err := r.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	predictions := []domain.Prediction{}
	if err := cur.All(ctx, &predictions); err != nil {
		return nil, fmt.Errorf("failed to decode predictions: %w", err)
	}
	return predictions, nil
}
