package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/locvowork/attrition_datahub/internal/domain"
)

func TestEmployeeFilter(t *testing.T) {
	assert.Equal(t, bson.M{}, employeeFilter(domain.DocumentFilter{}))
	assert.Equal(t, bson.M{
		"job_info.department":   "Sales",
		"attrition_info.status": "Yes",
	}, employeeFilter(domain.DocumentFilter{Department: "Sales", Attrition: "Yes"}))
}

func TestObjectID(t *testing.T) {
	oid := primitive.NewObjectID()
	got, err := objectID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, got)

	_, err = objectID("not-an-id")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDepartmentStatsPipeline(t *testing.T) {
	p := departmentStatsPipeline()
	require.Len(t, p, 2)
	assert.Equal(t, "$group", p[0][0].Key)
	assert.Equal(t, "$sort", p[1][0].Key)

	group, ok := p[0][0].Value.(bson.D)
	require.True(t, ok)
	fields := group.Map()
	assert.Equal(t, "$job_info.department", fields["_id"])
	assert.Contains(t, fields, "count")
	assert.Contains(t, fields, "attrition_count")
	assert.Contains(t, fields, "avg_income")
	assert.Contains(t, fields, "avg_job_satisfaction")

	_, err := bson.Marshal(bson.D{{Key: "pipeline", Value: p}})
	require.NoError(t, err)
}

func TestMongoErrorMapping(t *testing.T) {
	assert.ErrorIs(t, mongoReadError("get employee document 1", mongo.ErrNoDocuments), domain.ErrNotFound)
	assert.NotErrorIs(t, mongoReadError("get employee document 1", errors.New("boom")), domain.ErrNotFound)
}
