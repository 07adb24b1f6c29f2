// Package weaviate provides a document index adapter backed by a
// Weaviate instance.
package weaviate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/fault"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/jklebucki/rag-collector/internal/core/domain"
	"github.com/jklebucki/rag-collector/internal/core/ports/driven"
	"github.com/jklebucki/rag-collector/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.DocumentIndex = (*Index)(nil)

// DefaultChunkIndexName is the logical name of the chunk collection.
const DefaultChunkIndexName = "rag-chunks"

// Config holds connection settings for the Weaviate backend.
type Config struct {
	// Host is the Weaviate endpoint, with or without scheme
	// (default: http://localhost:8080).
	Host string

	// APIKey authenticates against Weaviate Cloud instances.
	APIKey string

	// ChunkIndexName overrides the chunk collection name.
	ChunkIndexName string
}

// Index stores chunk documents and custom records in Weaviate. Logical
// index names map to Weaviate classes; object IDs are derived
// deterministically from the caller's IDs so that writes are
// replace-by-ID.
type Index struct {
	client     *weaviate.Client
	chunkIndex string
}

// chunkProperties is the schema of the chunk collection. Vectors come
// from the embedding provider, never a Weaviate vectorizer module.
var chunkProperties = []*models.Property{
	{Name: "content", DataType: []string{"text"}},
	{Name: "contentHash", DataType: []string{"text"}},
	{Name: "sourceFile", DataType: []string{"text"}},
	{Name: "fileHash", DataType: []string{"text"}},
	{Name: "fileExtension", DataType: []string{"text"}},
	{Name: "fileSize", DataType: []string{"int"}},
	{Name: "lastModified", DataType: []string{"date"}},
	{Name: "chunkIndex", DataType: []string{"int"}},
	{Name: "totalChunks", DataType: []string{"int"}},
	{Name: "startIndex", DataType: []string{"int"}},
	{Name: "endIndex", DataType: []string{"int"}},
	{Name: "page", DataType: []string{"int"}},
	{Name: "section", DataType: []string{"text"}},
	{Name: "estimatedTokens", DataType: []string{"int"}},
	{Name: "embeddingModel", DataType: []string{"text"}},
	{Name: "aclGroups", DataType: []string{"text[]"}},
	{Name: "indexedAt", DataType: []string{"date"}},
	{Name: "metadataJson", DataType: []string{"text"}},
}

// New connects to Weaviate and returns the index adapter.
func New(cfg Config) (*Index, error) {
	if cfg.Host == "" {
		cfg.Host = "http://localhost:8080"
	}
	if cfg.ChunkIndexName == "" {
		cfg.ChunkIndexName = DefaultChunkIndexName
	}

	scheme := "http"
	if strings.HasPrefix(cfg.Host, "https") {
		scheme = "https"
	}
	host := strings.TrimPrefix(cfg.Host, scheme+"://")

	clientCfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if cfg.APIKey != "" {
		clientCfg.AuthConfig = auth.ApiKey{Value: cfg.APIKey}
	}

	client, err := weaviate.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("creating weaviate client: %w", err)
	}

	return &Index{
		client:     client,
		chunkIndex: cfg.ChunkIndexName,
	}, nil
}

// EnsureIndexExists creates the chunk collection when missing.
func (ix *Index) EnsureIndexExists(ctx context.Context) error {
	return ix.ensureClass(ctx, &models.Class{
		Class:           classNameFor(ix.chunkIndex),
		Properties:      chunkProperties,
		Vectorizer:      "none",
		VectorIndexType: "hnsw",
	})
}

// EnsureCustomIndexExists creates a collection for the given logical
// index name. The schema maps property names to Weaviate data types
// ("text", "int", "date").
func (ix *Index) EnsureCustomIndexExists(ctx context.Context, indexName string, schema map[string]any) error {
	props := make([]*models.Property, 0, len(schema))
	for name, dataType := range schema {
		dt, ok := dataType.(string)
		if !ok {
			return fmt.Errorf("%w: schema property %q has non-string type", domain.ErrInvalidInput, name)
		}
		props = append(props, &models.Property{Name: name, DataType: []string{dt}})
	}
	return ix.ensureClass(ctx, &models.Class{
		Class:      classNameFor(indexName),
		Properties: props,
		Vectorizer: "none",
	})
}

func (ix *Index) ensureClass(ctx context.Context, class *models.Class) error {
	exists, err := ix.client.Schema().ClassExistenceChecker().
		WithClassName(class.Class).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("checking class %s: %w", class.Class, err)
	}
	if exists {
		return nil
	}

	if err := ix.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return fmt.Errorf("creating class %s: %w", class.Class, err)
	}
	logger.Info("Created index class %s", class.Class)
	return nil
}

// IndexDocument writes a single chunk document, replacing any previous
// object with the same chunk ID.
func (ix *Index) IndexDocument(ctx context.Context, doc *domain.ChunkDocument) error {
	props, err := chunkObjectProperties(doc)
	if err != nil {
		return err
	}

	id := objectID(doc.ID)
	if err := ix.deleteObject(ctx, classNameFor(ix.chunkIndex), id); err != nil {
		return err
	}

	_, err = ix.client.Data().Creator().
		WithClassName(classNameFor(ix.chunkIndex)).
		WithID(id).
		WithProperties(props).
		WithVector(doc.Embedding).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("indexing document %s: %w", doc.ID, err)
	}
	return nil
}

// IndexDocumentsBatch bulk-writes chunk documents and returns the
// number the backend accepted. Per-object failures are logged and
// excluded from the count.
func (ix *Index) IndexDocumentsBatch(ctx context.Context, docs []*domain.ChunkDocument) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	batcher := ix.client.Batch().ObjectsBatcher()
	for _, doc := range docs {
		props, err := chunkObjectProperties(doc)
		if err != nil {
			return 0, err
		}
		batcher = batcher.WithObjects(&models.Object{
			Class:      classNameFor(ix.chunkIndex),
			ID:         strfmt.UUID(objectID(doc.ID)),
			Properties: props,
			Vector:     doc.Embedding,
		})
	}

	resp, err := batcher.Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("batch indexing %d documents: %w", len(docs), err)
	}

	accepted := 0
	for i, item := range resp {
		if item.Result != nil && item.Result.Errors != nil && len(item.Result.Errors.Error) > 0 {
			logger.Warn("Batch item %d rejected: %s", i, item.Result.Errors.Error[0].Message)
			continue
		}
		accepted++
	}
	return accepted, nil
}

// DeleteDocumentsBySourceFile removes every chunk document whose
// sourceFile equals the given path and returns how many were deleted.
func (ix *Index) DeleteDocumentsBySourceFile(ctx context.Context, sourceFilePath string) (int, error) {
	resp, err := ix.client.Batch().ObjectsBatchDeleter().
		WithClassName(classNameFor(ix.chunkIndex)).
		WithOutput("minimal").
		WithWhere(filters.Where().
			WithPath([]string{"sourceFile"}).
			WithOperator(filters.Equal).
			WithValueText(sourceFilePath)).
		Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("deleting documents for %s: %w", sourceFilePath, err)
	}
	if resp == nil || resp.Results == nil {
		return 0, nil
	}
	return int(resp.Results.Successful), nil
}

// GetAllSourceFilePaths aggregates the chunk collection by sourceFile
// and returns the per-file chunk counts.
func (ix *Index) GetAllSourceFilePaths(ctx context.Context) (map[string]int, error) {
	resp, err := ix.client.GraphQL().Aggregate().
		WithClassName(classNameFor(ix.chunkIndex)).
		WithGroupBy("sourceFile").
		WithFields(
			graphql.Field{Name: "groupedBy", Fields: []graphql.Field{{Name: "value"}}},
			graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}},
		).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregating source files: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("aggregating source files: %s", resp.Errors[0].Message)
	}

	counts := make(map[string]int)
	groups, ok := aggregateGroups(resp.Data, classNameFor(ix.chunkIndex))
	if !ok {
		return counts, nil
	}
	for _, group := range groups {
		entry, ok := group.(map[string]any)
		if !ok {
			continue
		}
		groupedBy, _ := entry["groupedBy"].(map[string]any)
		meta, _ := entry["meta"].(map[string]any)
		path, _ := groupedBy["value"].(string)
		count, _ := meta["count"].(float64)
		if path != "" {
			counts[path] = int(count)
		}
	}
	return counts, nil
}

// GetIndexStats reports the total document count of the chunk
// collection. Weaviate does not expose index size over this API.
func (ix *Index) GetIndexStats(ctx context.Context) (*domain.IndexStats, error) {
	resp, err := ix.client.GraphQL().Aggregate().
		WithClassName(classNameFor(ix.chunkIndex)).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregating index stats: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("aggregating index stats: %s", resp.Errors[0].Message)
	}

	stats := &domain.IndexStats{}
	groups, ok := aggregateGroups(resp.Data, classNameFor(ix.chunkIndex))
	if ok && len(groups) > 0 {
		if entry, ok := groups[0].(map[string]any); ok {
			if meta, ok := entry["meta"].(map[string]any); ok {
				if count, ok := meta["count"].(float64); ok {
					stats.DocumentCount = int64(count)
				}
			}
		}
	}
	return stats, nil
}

// IndexDocumentToCustomIndex writes a record into a custom collection
// under the caller's ID, replacing any existing record.
func (ix *Index) IndexDocumentToCustomIndex(ctx context.Context, indexName, id string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshalling document %s: %w", id, err)
	}
	var props map[string]any
	if err := json.Unmarshal(raw, &props); err != nil {
		return fmt.Errorf("flattening document %s: %w", id, err)
	}

	className := classNameFor(indexName)
	oid := objectID(id)
	if err := ix.deleteObject(ctx, className, oid); err != nil {
		return err
	}

	_, err = ix.client.Data().Creator().
		WithClassName(className).
		WithID(oid).
		WithProperties(props).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("indexing document %s into %s: %w", id, indexName, err)
	}
	return nil
}

// GetDocumentByID reads a record from a custom collection into out.
// Returns domain.ErrNotFound when no record exists under the ID.
func (ix *Index) GetDocumentByID(ctx context.Context, indexName, id string, out any) error {
	objs, err := ix.client.Data().ObjectsGetter().
		WithClassName(classNameFor(indexName)).
		WithID(objectID(id)).
		Do(ctx)
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("getting document %s from %s: %w", id, indexName, err)
	}
	if len(objs) == 0 {
		return domain.ErrNotFound
	}

	raw, err := json.Marshal(objs[0].Properties)
	if err != nil {
		return fmt.Errorf("reading document %s: %w", id, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding document %s: %w", id, err)
	}
	return nil
}

// DeleteDocumentByID removes a record from a custom collection.
// Deleting a missing record is not an error.
func (ix *Index) DeleteDocumentByID(ctx context.Context, indexName, id string) error {
	return ix.deleteObject(ctx, classNameFor(indexName), objectID(id))
}

// IsAvailable reports whether the Weaviate instance answers its
// readiness probe.
func (ix *Index) IsAvailable(ctx context.Context) bool {
	ready, err := ix.client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		logger.Debug("Weaviate readiness check failed: %v", err)
		return false
	}
	return ready
}

func (ix *Index) deleteObject(ctx context.Context, className, oid string) error {
	err := ix.client.Data().Deleter().
		WithClassName(className).
		WithID(oid).
		Do(ctx)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("deleting object %s from %s: %w", oid, className, err)
	}
	return nil
}

// chunkObjectProperties flattens a chunk document into Weaviate
// properties. Free-form chunk metadata is kept as a JSON payload
// because its keys vary per file type.
func chunkObjectProperties(doc *domain.ChunkDocument) (map[string]any, error) {
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshalling metadata for %s: %w", doc.ID, err)
	}
	return map[string]any{
		"content":         doc.Content,
		"contentHash":     doc.ContentHash,
		"sourceFile":      doc.SourceFile,
		"fileExtension":   doc.FileExtension,
		"fileSize":        doc.FileSize,
		"lastModified":    doc.LastModified,
		"chunkIndex":      doc.Position.ChunkIndex,
		"totalChunks":     doc.Position.TotalChunks,
		"startIndex":      doc.Position.StartIndex,
		"endIndex":        doc.Position.EndIndex,
		"page":            doc.Position.Page,
		"section":         doc.Position.Section,
		"estimatedTokens": doc.EstimatedTokens,
		"embeddingModel":  doc.Embedder.ModelName,
		"aclGroups":       doc.AclGroups,
		"indexedAt":       doc.IndexedAt,
		"metadataJson":    string(metadataJSON),
	}, nil
}

// classNameFor maps a logical index name like "rag-file-metadata" to a
// valid Weaviate class name ("RagFileMetadata").
func classNameFor(indexName string) string {
	parts := strings.FieldsFunc(indexName, func(r rune) bool {
		return r == '-' || r == '_' || r == '.'
	})
	var b strings.Builder
	for _, part := range parts {
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// objectID derives a deterministic Weaviate UUID from a caller ID.
func objectID(id string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String()
}

// aggregateGroups digs the per-class group list out of a GraphQL
// Aggregate response.
func aggregateGroups(data map[string]models.JSONObject, className string) ([]any, bool) {
	aggregate, ok := data["Aggregate"].(map[string]any)
	if !ok {
		return nil, false
	}
	groups, ok := aggregate[className].([]any)
	return groups, ok
}

func isNotFound(err error) bool {
	var clientErr *fault.WeaviateClientError
	if errors.As(err, &clientErr) {
		return clientErr.StatusCode == http.StatusNotFound
	}
	return false
}
