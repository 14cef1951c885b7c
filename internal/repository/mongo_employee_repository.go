package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/locvowork/attrition_datahub/internal/domain"
)

type employeeDocumentRepository struct {
	coll *mongo.Collection
}

func NewEmployeeDocumentRepository(db *mongo.Database) domain.EmployeeDocumentRepository {
	return &employeeDocumentRepository{coll: db.Collection(domain.CollectionEmployees)}
}

func (r *employeeDocumentRepository) Create(ctx context.Context, doc *domain.EmployeeDocument) error {
	doc.ID = primitive.NilObjectID
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return mongoWriteError(fmt.Sprintf("create employee document %d", doc.EmployeeNumber), err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = id
	}
	return nil
}

func (r *employeeDocumentRepository) GetByID(ctx context.Context, id string) (*domain.EmployeeDocument, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc domain.EmployeeDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mongoReadError(fmt.Sprintf("get employee document %s", id), err)
	}
	return &doc, nil
}

func (r *employeeDocumentRepository) GetByNumber(ctx context.Context, number int) (*domain.EmployeeDocument, error) {
	var doc domain.EmployeeDocument
	if err := r.coll.FindOne(ctx, bson.M{"employee_number": number}).Decode(&doc); err != nil {
		return nil, mongoReadError(fmt.Sprintf("get employee document %d", number), err)
	}
	return &doc, nil
}

// Update applies fields as a $set and stamps metadata.updated_at.
func (r *employeeDocumentRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	set["metadata.updated_at"] = time.Now().UTC()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return mongoWriteError(fmt.Sprintf("update employee document %s", id), err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: employee document %s", domain.ErrNotFound, id)
	}
	return nil
}

func (r *employeeDocumentRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete employee document %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: employee document %s", domain.ErrNotFound, id)
	}
	return nil
}

func (r *employeeDocumentRepository) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.EmployeeDocument, error) {
	limit, offset := window(filter.ListFilter)
	opts := options.Find().
		SetSort(bson.D{{Key: "employee_number", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, employeeFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee documents: %w", err)
	}
	docs := []domain.EmployeeDocument{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode employee documents: %w", err)
	}
	return docs, nil
}

func (r *employeeDocumentRepository) MaxEmployeeNumber(ctx context.Context) (int, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "employee_number", Value: -1}}).
		SetProjection(bson.M{"employee_number": 1})

	var top struct {
		EmployeeNumber int `bson:"employee_number"`
	}
	err := r.coll.FindOne(ctx, bson.M{}, opts).Decode(&top)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read max employee number: %w", err)
	}
	return top.EmployeeNumber, nil
}

// UpdateRisk writes the reserved risk-assessment fields of one employee.
func (r *employeeDocumentRepository) UpdateRisk(ctx context.Context, number int, score float64, assessedAt time.Time) error {
	update := bson.M{"$set": bson.M{
		"attrition_info.risk_score":           score,
		"attrition_info.last_risk_assessment": assessedAt,
		"metadata.updated_at":                 time.Now().UTC(),
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"employee_number": number}, update)
	if err != nil {
		return fmt.Errorf("failed to update risk of employee %d: %w", number, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: employee document %d", domain.ErrNotFound, number)
	}
	return nil
}

func employeeFilter(f domain.DocumentFilter) bson.M {
	filter := bson.M{}
	if f.Department != "" {
		filter["job_info.department"] = f.Department
	}
	if f.Attrition != "" {
		filter["attrition_info.status"] = f.Attrition
	}
	return filter
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid id %q", domain.ErrInvalidInput, id)
	}
	return oid, nil
}

func mongoReadError(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, op)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func mongoWriteError(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s: %w", domain.ErrConflict, op, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
