package database

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/attrition_datahub/internal/domain"
)

func testDocument(number int, dept string) domain.EmployeeDocument {
	var doc domain.EmployeeDocument
	doc.EmployeeNumber = number
	doc.PersonalInfo.Age = 41
	doc.JobInfo.Department = dept
	doc.JobInfo.Role = "Sales Executive"
	doc.Compensation.MonthlyIncome = 5993
	doc.AttritionInfo.Status = "Yes"
	doc.Metadata.DataSource = domain.DataSourceInitialImport
	return doc
}

func TestNewEmployeeSearchDoc(t *testing.T) {
	doc := NewEmployeeSearchDoc(testDocument(7, "Sales"))
	assert.Equal(t, 7, doc.EmployeeNumber)
	assert.Equal(t, "Sales", doc.Department)
	assert.Equal(t, "Sales Executive", doc.JobRole)
	assert.Equal(t, 5993, doc.MonthlyIncome)
	assert.Equal(t, "Yes", doc.Attrition)
}

func TestIndexEmployeesSendsBulkRequest(t *testing.T) {
	var lines []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/_bulk"), r.URL.Path)
		sc := bufio.NewScanner(r.Body)
		for sc.Scan() {
			lines = append(lines, sc.Text())
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"took":1,"errors":false,"items":[
			{"index":{"_index":"hr_employees","_id":"1","status":201}},
			{"index":{"_index":"hr_employees","_id":"2","status":201}}]}`))
	}))
	defer srv.Close()

	es, err := NewElasticSearchClient(srv.URL, "hr_employees")
	require.NoError(t, err)

	err = es.IndexEmployees(context.Background(), []domain.EmployeeDocument{
		testDocument(1, "Sales"), testDocument(2, "Research & Development"),
	})
	require.NoError(t, err)

	require.Len(t, lines, 4)
	var action map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &action))
	assert.Equal(t, "hr_employees", action["index"]["_index"])
	assert.Equal(t, "1", action["index"]["_id"])

	var body EmployeeSearchDoc
	require.NoError(t, json.Unmarshal([]byte(lines[3]), &body))
	assert.Equal(t, 2, body.EmployeeNumber)
	assert.Equal(t, "Research & Development", body.Department)
}

func TestIndexEmployeesReportsItemFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"took":1,"errors":true,"items":[
			{"index":{"_index":"hr_employees","_id":"1","status":400,
			"error":{"type":"mapper_parsing_exception","reason":"failed to parse field [age]"}}}]}`))
	}))
	defer srv.Close()

	es, err := NewElasticSearchClient(srv.URL, "hr_employees")
	require.NoError(t, err)

	err = es.IndexEmployees(context.Background(), []domain.EmployeeDocument{testDocument(1, "Sales")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse field [age]")
}

func TestIndexEmployeesEmptyIsNoop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	}))
	defer srv.Close()

	es, err := NewElasticSearchClient(srv.URL, "hr_employees")
	require.NoError(t, err)
	assert.NoError(t, es.IndexEmployees(context.Background(), nil))
}

func TestGetEmployeeNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"_index":"hr_employees","_id":"9","found":false}`))
	}))
	defer srv.Close()

	es, err := NewElasticSearchClient(srv.URL, "hr_employees")
	require.NoError(t, err)

	_, err = es.GetEmployee(context.Background(), 9)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSearchEmployees(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/hr_employees/_search"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"took":1,"hits":{"total":{"value":1,"relation":"eq"},"hits":[
			{"_index":"hr_employees","_id":"3","_source":{"employee_number":3,"department":"Sales","job_role":"Manager"}}]}}`))
	}))
	defer srv.Close()

	es, err := NewElasticSearchClient(srv.URL, "hr_employees")
	require.NoError(t, err)

	docs, err := es.SearchEmployees(context.Background(), "manager", 0)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 3, docs[0].EmployeeNumber)
	assert.Equal(t, "Manager", docs[0].JobRole)

	_, err = es.SearchEmployees(context.Background(), "", 10)
	assert.Error(t, err)
}
