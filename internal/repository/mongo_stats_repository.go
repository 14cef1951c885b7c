package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/locvowork/attrition_datahub/internal/domain"
)

type documentStatsRepository struct {
	db *mongo.Database
}

func NewDocumentStatsRepository(db *mongo.Database) domain.DocumentStatsRepository {
	return &documentStatsRepository{db: db}
}

func (r *documentStatsRepository) CollectionCounts(ctx context.Context) ([]domain.TableCount, error) {
	names := []string{domain.CollectionEmployees, domain.CollectionDepartments, domain.CollectionPredictions}
	counts := make([]domain.TableCount, 0, len(names))
	for _, name := range names {
		n, err := r.db.Collection(name).CountDocuments(ctx, bson.M{})
		if err != nil {
			return nil, fmt.Errorf("%w: failed to count %s: %w", domain.ErrVerification, name, err)
		}
		counts = append(counts, domain.TableCount{Name: name, Count: n})
	}
	return counts, nil
}

func (r *documentStatsRepository) AttritionSplit(ctx context.Context) (domain.AttritionSplit, error) {
	coll := r.db.Collection(domain.CollectionEmployees)
	yes, err := coll.CountDocuments(ctx, bson.M{"attrition_info.status": "Yes"})
	if err != nil {
		return domain.AttritionSplit{}, fmt.Errorf("%w: failed to count attrition: %w", domain.ErrVerification, err)
	}
	no, err := coll.CountDocuments(ctx, bson.M{"attrition_info.status": "No"})
	if err != nil {
		return domain.AttritionSplit{}, fmt.Errorf("%w: failed to count attrition: %w", domain.ErrVerification, err)
	}
	return domain.AttritionSplit{Yes: yes, No: no}, nil
}

// departmentStatsPipeline groups employee documents by department, largest first.
func departmentStatsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$job_info.department"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "avg_income", Value: bson.D{{Key: "$avg", Value: "$compensation.monthly_income"}}},
			{Key: "avg_job_satisfaction", Value: bson.D{{Key: "$avg", Value: "$satisfaction_scores.job"}}},
			{Key: "attrition_count", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$cond", Value: bson.A{bson.D{{Key: "$eq", Value: bson.A{"$attrition_info.status", "Yes"}}}, 1, 0}},
			}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
}

func (r *documentStatsRepository) DepartmentStats(ctx context.Context) ([]domain.DepartmentStat, error) {
	cur, err := r.db.Collection(domain.CollectionEmployees).Aggregate(ctx, departmentStatsPipeline())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to aggregate department stats: %w", domain.ErrVerification, err)
	}

	var groups []struct {
		Department         string  `bson:"_id"`
		Count              int64   `bson:"count"`
		AvgIncome          float64 `bson:"avg_income"`
		AvgJobSatisfaction float64 `bson:"avg_job_satisfaction"`
		AttritionCount     int64   `bson:"attrition_count"`
	}
	if err := cur.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("%w: failed to decode department stats: %w", domain.ErrVerification, err)
	}

	stats := make([]domain.DepartmentStat, 0, len(groups))
	for _, g := range groups {
		stats = append(stats, domain.DepartmentStat{
			Department:         g.Department,
			Employees:          g.Count,
			AttritionCount:     g.AttritionCount,
			AvgIncome:          g.AvgIncome,
			AvgJobSatisfaction: g.AvgJobSatisfaction,
		})
	}
	return stats, nil
}

func (r *documentStatsRepository) SampleEmployee(ctx context.Context, number int) (*domain.EmployeeDocument, error) {
	var doc domain.EmployeeDocument
	err := r.db.Collection(domain.CollectionEmployees).FindOne(ctx, bson.M{"employee_number": number}).Decode(&doc)
	if err != nil {
		return nil, mongoReadError(fmt.Sprintf("get sample employee %d", number), err)
	}
	return &doc, nil
}

func (r *documentStatsRepository) EmployeeIndexes(ctx context.Context) ([]string, error) {
	cur, err := r.db.Collection(domain.CollectionEmployees).Indexes().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list indexes: %w", domain.ErrVerification, err)
	}
	var specs []struct {
		Name string `bson:"name"`
	}
	if err := cur.All(ctx, &specs); err != nil {
		return nil, fmt.Errorf("%w: failed to decode indexes: %w", domain.ErrVerification, err)
	}
	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, s.Name)
	}
	return names, nil
}
