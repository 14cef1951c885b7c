package database

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"

	"github.com/locvowork/attrition_datahub/internal/domain"
	"github.com/locvowork/attrition_datahub/internal/logger"
)

// MongoConfig holds the document store connection settings. URI, when set,
// takes precedence over Host and Port.
type MongoConfig struct {
	URI        string
	Host       string
	Port       int
	Database   string
	User       string
	Password   string
	AuthSource string
	Timeout    time.Duration
}

var EmployeeIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "employee_number", Value: 1}},
		Options: options.Index().SetName("uniq_employee_number").SetUnique(true),
	},
	{
		Keys:    bson.D{{Key: "attrition_info.status", Value: 1}},
		Options: options.Index().SetName("idx_attrition_info_status"),
	},
	{
		Keys:    bson.D{{Key: "job_info.department", Value: 1}},
		Options: options.Index().SetName("idx_job_info_department"),
	},
	{
		Keys:    bson.D{{Key: "personal_info.age", Value: 1}},
		Options: options.Index().SetName("idx_personal_info_age"),
	},
	{
		Keys:    bson.D{{Key: "compensation.monthly_income", Value: 1}},
		Options: options.Index().SetName("idx_compensation_monthly_income"),
	},
}

var DepartmentIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "department_name", Value: 1}},
		Options: options.Index().SetName("uniq_department_name").SetUnique(true),
	},
}

var PredictionIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "employee_number", Value: 1}, {Key: "prediction_date", Value: -1}},
		Options: options.Index().SetName("idx_employee_number_prediction_date"),
	},
}

// MongoClient owns a connected client and its database. It implements domain.DocumentStore.
type MongoClient struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ domain.DocumentStore = (*MongoClient)(nil)

// OpenMongo connects and pings. Failures wrap domain.ErrConnectivity.
func OpenMongo(ctx context.Context, cfg MongoConfig) (*MongoClient, error) {
	opts := options.Client()
	if cfg.URI != "" {
		opts.ApplyURI(cfg.URI)
	} else {
		opts.SetHosts([]string{net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))})
	}
	if cfg.User != "" && cfg.Password != "" {
		opts.SetAuth(options.Credential{
			Username:   cfg.User,
			Password:   cfg.Password,
			AuthSource: cfg.AuthSource,
		})
	}
	if cfg.Timeout > 0 {
		opts.SetServerSelectionTimeout(cfg.Timeout)
		opts.SetConnectTimeout(cfg.Timeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to mongodb: %w", domain.ErrConnectivity, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("%w: failed to ping mongodb: %w", domain.ErrConnectivity, err)
	}

	db := client.Database(cfg.Database)
	var info bson.M
	if err := db.RunCommand(ctx, bson.D{{Key: "buildInfo", Value: 1}}).Decode(&info); err == nil {
		logger.InfoLog(ctx, "Connected to MongoDB %v, database %s", info["version"], cfg.Database)
	}
	return &MongoClient{client: client, db: db}, nil
}

func (m *MongoClient) Database() *mongo.Database { return m.db }

func (m *MongoClient) Collection(name string) *mongo.Collection { return m.db.Collection(name) }

func (m *MongoClient) Close(ctx context.Context) error { return m.client.Disconnect(ctx) }

// DeleteAll removes every document of one collection.
func (m *MongoClient) DeleteAll(ctx context.Context, collection string) (int64, error) {
	res, err := m.db.Collection(collection).DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, mongoStoreError(domain.ErrCleanup, "failed to clear "+collection, err)
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates the unique and lookup indexes. Re-creating an
// identical index is a no-op on the server.
func (m *MongoClient) EnsureIndexes(ctx context.Context) error {
	for coll, models := range map[string][]mongo.IndexModel{
		domain.CollectionEmployees:   EmployeeIndexes,
		domain.CollectionDepartments: DepartmentIndexes,
		domain.CollectionPredictions: PredictionIndexes,
	} {
		if _, err := m.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return mongoStoreError(domain.ErrPrepare, "failed to create indexes on "+coll, err)
		}
	}
	return nil
}

// InsertDepartments writes all department snapshots in one call.
func (m *MongoClient) InsertDepartments(ctx context.Context, depts []domain.DepartmentSnapshot) error {
	if len(depts) == 0 {
		return nil
	}
	docs := make([]interface{}, len(depts))
	for i := range depts {
		docs[i] = depts[i]
	}
	if _, err := m.db.Collection(domain.CollectionDepartments).InsertMany(ctx, docs); err != nil {
		return mongoStoreError(domain.ErrPrepare, "failed to insert departments", err)
	}
	return nil
}

// InsertEmployees bulk-inserts one batch in order. On failure it returns how
// many documents the server accepted before the first rejected one.
func (m *MongoClient) InsertEmployees(ctx context.Context, docs []domain.EmployeeDocument) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	batch := make([]interface{}, len(docs))
	for i := range docs {
		batch[i] = docs[i]
	}
	res, err := m.db.Collection(domain.CollectionEmployees).InsertMany(ctx, batch, options.InsertMany().SetOrdered(true))
	if err != nil {
		inserted := 0
		var bwe mongo.BulkWriteException
		if errors.As(err, &bwe) && len(bwe.WriteErrors) > 0 {
			inserted = bwe.WriteErrors[0].Index
		}
		return inserted, mongoStoreError(domain.ErrBatchWrite, "failed to insert employees", err)
	}
	return len(res.InsertedIDs), nil
}

// IsConnectivityError reports a lost or unreachable server: network errors,
// timeouts and failed server selection.
func IsConnectivityError(err error) bool {
	if errors.Is(err, mongo.ErrClientDisconnected) || errors.Is(err, context.Canceled) {
		return true
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}
	var sse topology.ServerSelectionError
	return errors.As(err, &sse)
}

// mongoStoreError wraps err as ErrConnectivity when the server is gone and
// as kind otherwise.
func mongoStoreError(kind error, msg string, err error) error {
	if IsConnectivityError(err) {
		return fmt.Errorf("%w: %s: %w", domain.ErrConnectivity, msg, err)
	}
	return fmt.Errorf("%w: %s: %w", kind, msg, err)
}
