package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/olivere/elastic/v7"

	"github.com/locvowork/attrition_datahub/internal/domain"
)

// EmployeeSearchDoc is the flattened employee stored in the search index.
type EmployeeSearchDoc struct {
	EmployeeNumber int    `json:"employee_number"`
	Age            int    `json:"age"`
	Gender         string `json:"gender"`
	EducationField string `json:"education_field"`
	Department     string `json:"department"`
	JobRole        string `json:"job_role"`
	JobLevel       int    `json:"job_level"`
	MonthlyIncome  int    `json:"monthly_income"`
	Attrition      string `json:"attrition"`
	DataSource     string `json:"data_source"`
}

func NewEmployeeSearchDoc(doc domain.EmployeeDocument) EmployeeSearchDoc {
	return EmployeeSearchDoc{
		EmployeeNumber: doc.EmployeeNumber,
		Age:            doc.PersonalInfo.Age,
		Gender:         doc.PersonalInfo.Gender,
		EducationField: doc.PersonalInfo.Education.Field,
		Department:     doc.JobInfo.Department,
		JobRole:        doc.JobInfo.Role,
		JobLevel:       doc.JobInfo.Level,
		MonthlyIncome:  doc.Compensation.MonthlyIncome,
		Attrition:      doc.AttritionInfo.Status,
		DataSource:     doc.Metadata.DataSource,
	}
}

// ElasticSearchClient wraps olivere/elastic client. It implements domain.SearchIndexer.
type ElasticSearchClient struct {
	client *elastic.Client
	index  string
}

var _ domain.SearchIndexer = (*ElasticSearchClient)(nil)

// NewElasticSearchClient creates a new client for Elasticsearch 7.x.
func NewElasticSearchClient(url, index string, extra ...elastic.ClientOptionFunc) (*ElasticSearchClient, error) {
	opts := append([]elastic.ClientOptionFunc{
		elastic.SetURL(url),
		elastic.SetSniff(false),
		elastic.SetHealthcheck(false),
	}, extra...)
	client, err := elastic.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	return &ElasticSearchClient{client: client, index: index}, nil
}

// IndexEmployees bulk-indexes documents using employee_number as the id, so
// re-indexing the same employee overwrites it.
func (es *ElasticSearchClient) IndexEmployees(ctx context.Context, docs []domain.EmployeeDocument) error {
	bulkRequest := es.client.Bulk()

	for _, doc := range docs {
		req := elastic.NewBulkIndexRequest().
			Index(es.index).
			Id(strconv.Itoa(doc.EmployeeNumber)).
			Doc(NewEmployeeSearchDoc(doc))
		bulkRequest = bulkRequest.Add(req)
	}

	if bulkRequest.NumberOfActions() == 0 {
		return nil
	}

	bulkResponse, err := bulkRequest.Do(ctx)
	if err != nil {
		return fmt.Errorf("bulk index failed: %w", err)
	}

	if bulkResponse.Errors {
		for _, item := range bulkResponse.Failed() {
			if item.Error != nil {
				return fmt.Errorf("bulk item %s failed: %s", item.Id, item.Error.Reason)
			}
		}
	}

	return nil
}

// GetEmployee retrieves an employee by number.
func (es *ElasticSearchClient) GetEmployee(ctx context.Context, number int) (*EmployeeSearchDoc, error) {
	result, err := es.client.Get().
		Index(es.index).
		Id(strconv.Itoa(number)).
		Do(ctx)
	if err != nil {
		if elastic.IsNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get employee %d: %w", number, err)
	}

	if !result.Found {
		return nil, domain.ErrNotFound
	}

	var doc EmployeeSearchDoc
	if err := json.Unmarshal(result.Source, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal employee %d: %w", number, err)
	}

	return &doc, nil
}

// SearchEmployees performs a full-text match on role, department and education field.
func (es *ElasticSearchClient) SearchEmployees(ctx context.Context, text string, size int) ([]EmployeeSearchDoc, error) {
	if text == "" {
		return nil, errors.New("empty search text")
	}
	if size <= 0 {
		size = 20
	}
	query := elastic.NewMultiMatchQuery(text, "job_role", "department", "education_field")

	searchResult, err := es.client.Search().
		Index(es.index).
		Query(query).
		Size(size).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	docs := make([]EmployeeSearchDoc, 0, len(searchResult.Hits.Hits))
	for _, hit := range searchResult.Hits.Hits {
		var doc EmployeeSearchDoc
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal hit %s: %w", hit.Id, err)
		}
		docs = append(docs, doc)
	}

	return docs, nil
}
