// Package qdrant stores the vector index in a Qdrant collection over gRPC.
package qdrant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"pdfsearch/internal/domain"
	"pdfsearch/internal/vectorstore"
)

const (
	payloadRecordID   = "record_id"
	payloadText       = "text"
	payloadFilename   = "filename"
	payloadChunkIndex = "chunk_index"
	payloadPages      = "page_numbers"
)

// Config configures the Qdrant connection.
type Config struct {
	Host       string
	Port       int
	Collection string
}

// Storage implements vectorstore.Storage on a cosine-distance collection.
// Point ids are name-based UUIDs of the record ids; the record id itself is kept in the payload.
type Storage struct {
	conn        *grpc.ClientConn
	collections pb.CollectionsClient
	points      pb.PointsClient
	collection  string
}

// New connects lazily to Qdrant's gRPC port.
func New(cfg Config) (*Storage, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}
	s := newWithClients(pb.NewCollectionsClient(conn), pb.NewPointsClient(conn), cfg.Collection)
	s.conn = conn
	return s, nil
}

func newWithClients(collections pb.CollectionsClient, points pb.PointsClient, collection string) *Storage {
	if collection == "" {
		collection = vectorstore.DefaultCollection
	}
	return &Storage{collections: collections, points: points, collection: collection}
}

// Recreate deletes the collection if it exists and creates it with cosine distance.
func (s *Storage) Recreate(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	list, err := s.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return wrap("list collections", err)
	}
	for _, col := range list.GetCollections() {
		if col.GetName() == s.collection {
			if _, err := s.collections.Delete(ctx, &pb.DeleteCollection{CollectionName: s.collection}); err != nil {
				return wrap("delete collection", err)
			}
			break
		}
	}
	_, err = s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dimension),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return wrap("create collection", err)
	}
	return nil
}

// Upsert writes the records and waits for them to be applied.
func (s *Storage) Upsert(ctx context.Context, records []domain.IndexedRecord) error {
	if len(records) == 0 {
		return nil
	}
	points := make([]*pb.PointStruct, len(records))
	for i, r := range records {
		points[i] = &pb.PointStruct{
			Id:      &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: PointID(r.ID)}},
			Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: r.Embedding}}},
			Payload: map[string]*pb.Value{
				payloadRecordID:   stringValue(r.ID),
				payloadText:       stringValue(r.Text),
				payloadFilename:   stringValue(r.Metadata.Filename),
				payloadChunkIndex: {Kind: &pb.Value_IntegerValue{IntegerValue: int64(r.Metadata.ChunkIndex)}},
				payloadPages:      stringValue(r.Metadata.PageNumbers),
			},
		}
	}
	wait := true
	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return wrap("upsert points", err)
	}
	return nil
}

// Query searches the collection and converts cosine scores to distances.
func (s *Storage) Query(ctx context.Context, vector []float32, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		return nil, nil
	}
	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         vector,
		Limit:          uint64(topK),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, wrap("search", err)
	}

	results := make([]domain.SearchResult, len(resp.GetResult()))
	for i, pt := range resp.GetResult() {
		p := pt.GetPayload()
		rec := domain.IndexedRecord{
			ID:   p[payloadRecordID].GetStringValue(),
			Text: p[payloadText].GetStringValue(),
			Metadata: domain.RecordMetadata{
				Filename:    p[payloadFilename].GetStringValue(),
				ChunkIndex:  int(p[payloadChunkIndex].GetIntegerValue()),
				PageNumbers: p[payloadPages].GetStringValue(),
			},
		}
		results[i] = vectorstore.ToResult(rec, 2*(1-float64(pt.GetScore())))
	}
	return results, nil
}

// Count returns the exact number of points in the collection.
func (s *Storage) Count(ctx context.Context) (int, error) {
	exact := true
	resp, err := s.points.Count(ctx, &pb.CountPoints{CollectionName: s.collection, Exact: &exact})
	if err != nil {
		return 0, wrap("count", err)
	}
	return int(resp.GetResult().GetCount()), nil
}

// Close releases the gRPC connection.
func (s *Storage) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// PointID maps a record id to the UUID used as the Qdrant point id.
func PointID(recordID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(recordID)).String()
}

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}

// wrap marks connectivity and missing-collection failures as ErrStoreUnavailable.
func wrap(op string, err error) error {
	switch status.Code(err) {
	case codes.NotFound, codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: qdrant %s: %v", domain.ErrStoreUnavailable, op, err)
	}
	return fmt.Errorf("qdrant %s: %w", op, err)
}
