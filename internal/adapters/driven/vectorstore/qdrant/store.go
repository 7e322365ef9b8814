// Package qdrant provides a VectorStore backed by a Qdrant collection,
// reached over gRPC.
//
// The collection is dropped and recreated on every Replace, so it always
// holds the chunks of exactly one document. Document fields are copied onto
// every point's payload; Info reads them back from any single point.
package qdrant

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// upsertBatchSize bounds the number of points sent per Upsert call.
const upsertBatchSize = 100

// Payload keys.
const (
	keyChunkID        = "chunk_id"
	keyContent        = "content"
	keyPosition       = "position"
	keyMetadata       = "metadata"
	keyDocumentID     = "document_id"
	keyURI            = "uri"
	keyTitle          = "title"
	keyDocMetadata    = "document_metadata"
	keyCreatedAt      = "created_at"
	keyEmbeddingModel = "embedding_model"
	keyDimensions     = "dimensions"
)

// pointNamespace derives stable point IDs from chunk IDs.
var pointNamespace = uuid.MustParse("6f1c2a64-3d7e-4b53-9a51-0d8e2b7c4f10")

// Config holds connection settings.
type Config struct {
	Host       string
	Port       int
	Collection string
}

// Store keeps vectors in Qdrant.
type Store struct {
	conn        *grpc.ClientConn
	collections pb.CollectionsClient
	points      pb.PointsClient
	collection  string
}

// NewStore connects to Qdrant. The connection is lazy, so an unreachable
// server surfaces on the first call.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Host == "" {
		cfg.Host = domain.DefaultQdrantHost
	}
	if cfg.Port == 0 {
		cfg.Port = domain.DefaultQdrantPort
	}
	if cfg.Collection == "" {
		cfg.Collection = domain.DefaultQdrantCollection
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant at %s: %w", addr, err)
	}
	logger.Debug("Using qdrant collection %q at %s", cfg.Collection, addr)

	return newStoreWithClients(pb.NewCollectionsClient(conn), pb.NewPointsClient(conn), cfg.Collection, conn), nil
}

func newStoreWithClients(collections pb.CollectionsClient, points pb.PointsClient, collection string, conn *grpc.ClientConn) *Store {
	return &Store{
		conn:        conn,
		collections: collections,
		points:      points,
		collection:  collection,
	}
}

// Close closes the gRPC connection.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Replace drops the collection and writes doc with its chunks.
func (s *Store) Replace(ctx context.Context, doc *domain.Document, chunks []domain.Chunk, embeddingModel string) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}
	dimensions, err := embeddingDimensions(chunks)
	if err != nil {
		return err
	}

	exists, err := s.collectionExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		if _, err := s.collections.Delete(ctx, &pb.DeleteCollection{CollectionName: s.collection}); err != nil {
			return fmt.Errorf("deleting collection %s: %w", s.collection, err)
		}
	}

	_, err = s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dimensions),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", s.collection, err)
	}

	wait := true
	docPayload := documentPayload(doc, embeddingModel, dimensions)
	batch := make([]*pb.PointStruct, 0, upsertBatchSize)
	for i := range chunks {
		batch = append(batch, chunkPoint(&chunks[i], doc.ID, docPayload))
		if len(batch) == upsertBatchSize || i == len(chunks)-1 {
			_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
				CollectionName: s.collection,
				Wait:           &wait,
				Points:         batch,
			})
			if err != nil {
				return fmt.Errorf("upserting points: %w", err)
			}
			batch = batch[:0]
		}
	}

	logger.Debug("Stored %d points in qdrant collection %s", len(chunks), s.collection)
	return nil
}

// Info reads the document fields from one point and counts the rest.
func (s *Store) Info(ctx context.Context) (*domain.IndexInfo, error) {
	exists, err := s.collectionExists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrStoreNotInitialized
	}

	limit := uint32(1)
	scroll, err := s.points.Scroll(ctx, &pb.ScrollPoints{
		CollectionName: s.collection,
		Limit:          &limit,
		WithPayload:    payloadAll(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: reading collection %s: %w", domain.ErrStorageRead, s.collection, err)
	}
	if len(scroll.GetResult()) == 0 {
		return nil, domain.ErrStoreNotInitialized
	}

	exact := true
	count, err := s.points.Count(ctx, &pb.CountPoints{CollectionName: s.collection, Exact: &exact})
	if err != nil {
		return nil, fmt.Errorf("%w: counting points: %w", domain.ErrStorageRead, err)
	}

	info := infoFromPayload(scroll.GetResult()[0].GetPayload())
	info.ChunkCount = int(count.GetResult().GetCount())
	return info, nil
}

// Search asks Qdrant for the k nearest chunks by cosine similarity.
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	info, err := s.Info(ctx)
	if err != nil {
		return nil, err
	}
	if len(query) != info.Dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, store has %d",
			domain.ErrEmbeddingMismatch, len(query), info.Dimensions)
	}
	if k <= 0 {
		return nil, nil
	}

	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         query,
		Limit:          uint64(k),
		WithPayload:    payloadAll(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: searching collection %s: %w", domain.ErrStorageRead, s.collection, err)
	}

	hits := make([]driven.VectorHit, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		hits = append(hits, driven.VectorHit{
			Chunk:      chunkFromPayload(point.GetPayload()),
			Similarity: float64(point.GetScore()),
		})
	}
	return hits, nil
}

func (s *Store) collectionExists(ctx context.Context) (bool, error) {
	list, err := s.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return false, fmt.Errorf("%w: listing qdrant collections: %w", domain.ErrStorageRead, err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == s.collection {
			return true, nil
		}
	}
	return false, nil
}

// ==================== Helper Functions ====================

func payloadAll() *pb.WithPayloadSelector {
	return &pb.WithPayloadSelector{
		SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
	}
}

// embeddingDimensions checks every chunk has an embedding of the same size.
func embeddingDimensions(chunks []domain.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%w: no chunks to store", domain.ErrInvalidInput)
	}
	dimensions := len(chunks[0].Embedding)
	for i := range chunks {
		n := len(chunks[i].Embedding)
		if n == 0 {
			return 0, fmt.Errorf("%w: chunk %d has no embedding", domain.ErrInvalidInput, chunks[i].Position)
		}
		if n != dimensions {
			return 0, fmt.Errorf("%w: chunk %d has %d dimensions, expected %d",
				domain.ErrInvalidInput, chunks[i].Position, n, dimensions)
		}
	}
	return dimensions, nil
}

// pointID maps a chunk ID onto the UUID form Qdrant accepts.
func pointID(chunkID string) *pb.PointId {
	id, err := uuid.Parse(chunkID)
	if err != nil {
		id = uuid.NewSHA1(pointNamespace, []byte(chunkID))
	}
	return &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: id.String()}}
}

func documentPayload(doc *domain.Document, embeddingModel string, dimensions int) map[string]*pb.Value {
	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return map[string]*pb.Value{
		keyDocumentID:     toValue(doc.ID),
		keyURI:            toValue(doc.URI),
		keyTitle:          toValue(doc.Title),
		keyDocMetadata:    toValue(doc.Metadata),
		keyCreatedAt:      toValue(createdAt.UTC().Format(time.RFC3339Nano)),
		keyEmbeddingModel: toValue(embeddingModel),
		keyDimensions:     toValue(dimensions),
	}
}

func chunkPoint(chunk *domain.Chunk, docID string, docPayload map[string]*pb.Value) *pb.PointStruct {
	payload := make(map[string]*pb.Value, len(docPayload)+4)
	for k, v := range docPayload {
		payload[k] = v
	}
	payload[keyChunkID] = toValue(chunk.ID)
	payload[keyContent] = toValue(chunk.Content)
	payload[keyPosition] = toValue(chunk.Position)
	payload[keyMetadata] = toValue(chunk.Metadata)

	return &pb.PointStruct{
		Id: pointID(chunk.ID),
		Vectors: &pb.Vectors{
			VectorsOptions: &pb.Vectors_Vector{
				Vector: &pb.Vector{Data: chunk.Embedding},
			},
		},
		Payload: payload,
	}
}

func infoFromPayload(payload map[string]*pb.Value) *domain.IndexInfo {
	info := &domain.IndexInfo{
		Document: domain.Document{
			ID:    payload[keyDocumentID].GetStringValue(),
			URI:   payload[keyURI].GetStringValue(),
			Title: payload[keyTitle].GetStringValue(),
		},
		EmbeddingModel: payload[keyEmbeddingModel].GetStringValue(),
		Dimensions:     int(payload[keyDimensions].GetIntegerValue()),
	}
	if m, ok := fromValue(payload[keyDocMetadata]).(map[string]any); ok {
		info.Document.Metadata = m
	}
	if t, err := time.Parse(time.RFC3339Nano, payload[keyCreatedAt].GetStringValue()); err == nil {
		info.Document.CreatedAt = t
	}
	return info
}

func chunkFromPayload(payload map[string]*pb.Value) domain.Chunk {
	chunk := domain.Chunk{
		ID:         payload[keyChunkID].GetStringValue(),
		DocumentID: payload[keyDocumentID].GetStringValue(),
		Content:    payload[keyContent].GetStringValue(),
		Position:   int(payload[keyPosition].GetIntegerValue()),
	}
	if m, ok := fromValue(payload[keyMetadata]).(map[string]any); ok {
		chunk.Metadata = m
	}
	return chunk
}

// toValue converts a Go value into a Qdrant payload value. Types without a
// direct mapping are stored as their string form.
func toValue(v any) *pb.Value {
	switch x := v.(type) {
	case nil:
		return &pb.Value{Kind: &pb.Value_NullValue{NullValue: pb.NullValue_NULL_VALUE}}
	case string:
		return &pb.Value{Kind: &pb.Value_StringValue{StringValue: x}}
	case bool:
		return &pb.Value{Kind: &pb.Value_BoolValue{BoolValue: x}}
	case int:
		return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: int64(x)}}
	case int32:
		return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: int64(x)}}
	case int64:
		return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: x}}
	case float32:
		return &pb.Value{Kind: &pb.Value_DoubleValue{DoubleValue: float64(x)}}
	case float64:
		return &pb.Value{Kind: &pb.Value_DoubleValue{DoubleValue: x}}
	case time.Time:
		return &pb.Value{Kind: &pb.Value_StringValue{StringValue: x.UTC().Format(time.RFC3339Nano)}}
	case map[string]any:
		fields := make(map[string]*pb.Value, len(x))
		for k, item := range x {
			fields[k] = toValue(item)
		}
		return &pb.Value{Kind: &pb.Value_StructValue{StructValue: &pb.Struct{Fields: fields}}}
	case []any:
		values := make([]*pb.Value, len(x))
		for i, item := range x {
			values[i] = toValue(item)
		}
		return &pb.Value{Kind: &pb.Value_ListValue{ListValue: &pb.ListValue{Values: values}}}
	case []string:
		values := make([]*pb.Value, len(x))
		for i, item := range x {
			values[i] = toValue(item)
		}
		return &pb.Value{Kind: &pb.Value_ListValue{ListValue: &pb.ListValue{Values: values}}}
	case fmt.Stringer:
		return toValue(x.String())
	default:
		return toValue(fmt.Sprint(x))
	}
}

// fromValue converts a Qdrant payload value back into a Go value.
// Integers come back as int.
func fromValue(v *pb.Value) any {
	if v == nil {
		return nil
	}
	switch k := v.GetKind().(type) {
	case *pb.Value_StringValue:
		return k.StringValue
	case *pb.Value_BoolValue:
		return k.BoolValue
	case *pb.Value_IntegerValue:
		return int(k.IntegerValue)
	case *pb.Value_DoubleValue:
		return k.DoubleValue
	case *pb.Value_StructValue:
		out := make(map[string]any, len(k.StructValue.GetFields()))
		for name, field := range k.StructValue.GetFields() {
			out[name] = fromValue(field)
		}
		return out
	case *pb.Value_ListValue:
		out := make([]any, len(k.ListValue.GetValues()))
		for i, item := range k.ListValue.GetValues() {
			out[i] = fromValue(item)
		}
		return out
	default:
		return nil
	}
}

