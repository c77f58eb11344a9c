package qdrant

import (
	"context"
	"testing"

	pb "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pdfsearch/internal/domain"
	"pdfsearch/internal/vectorstore"
)

var _ vectorstore.Storage = (*Storage)(nil)

type fakeCollections struct {
	pb.CollectionsClient
	existing []string
	deleted  []string
	created  *pb.CreateCollection
}

func (f *fakeCollections) List(context.Context, *pb.ListCollectionsRequest, ...grpc.CallOption) (*pb.ListCollectionsResponse, error) {
	resp := &pb.ListCollectionsResponse{}
	for _, name := range f.existing {
		resp.Collections = append(resp.Collections, &pb.CollectionDescription{Name: name})
	}
	return resp, nil
}

func (f *fakeCollections) Delete(_ context.Context, in *pb.DeleteCollection, _ ...grpc.CallOption) (*pb.CollectionOperationResponse, error) {
	f.deleted = append(f.deleted, in.GetCollectionName())
	return &pb.CollectionOperationResponse{Result: true}, nil
}

func (f *fakeCollections) Create(_ context.Context, in *pb.CreateCollection, _ ...grpc.CallOption) (*pb.CollectionOperationResponse, error) {
	f.created = in
	return &pb.CollectionOperationResponse{Result: true}, nil
}

type fakePoints struct {
	pb.PointsClient
	upserted  *pb.UpsertPoints
	searchReq *pb.SearchPoints
	result    []*pb.ScoredPoint
	count     uint64
	err       error
}

func (f *fakePoints) Upsert(_ context.Context, in *pb.UpsertPoints, _ ...grpc.CallOption) (*pb.PointsOperationResponse, error) {
	f.upserted = in
	return &pb.PointsOperationResponse{}, f.err
}

func (f *fakePoints) Search(_ context.Context, in *pb.SearchPoints, _ ...grpc.CallOption) (*pb.SearchResponse, error) {
	f.searchReq = in
	if f.err != nil {
		return nil, f.err
	}
	return &pb.SearchResponse{Result: f.result}, nil
}

func (f *fakePoints) Count(context.Context, *pb.CountPoints, ...grpc.CallOption) (*pb.CountResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &pb.CountResponse{Result: &pb.CountResult{Count: f.count}}, nil
}

func TestRecreateDeletesExistingCollection(t *testing.T) {
	cols := &fakeCollections{existing: []string{"other", vectorstore.DefaultCollection}}
	s := newWithClients(cols, &fakePoints{}, "")

	require.NoError(t, s.Recreate(context.Background(), 384))
	assert.Equal(t, []string{vectorstore.DefaultCollection}, cols.deleted)
	require.NotNil(t, cols.created)
	params := cols.created.GetVectorsConfig().GetParams()
	assert.Equal(t, uint64(384), params.GetSize())
	assert.Equal(t, pb.Distance_Cosine, params.GetDistance())
}

func TestRecreateSkipsDeleteWhenMissing(t *testing.T) {
	cols := &fakeCollections{existing: []string{"other"}}
	s := newWithClients(cols, &fakePoints{}, "docs")
	require.NoError(t, s.Recreate(context.Background(), 8))
	assert.Empty(t, cols.deleted)
	assert.Equal(t, "docs", cols.created.GetCollectionName())
}

func TestUpsertBuildsPayload(t *testing.T) {
	points := &fakePoints{}
	s := newWithClients(&fakeCollections{}, points, "")
	rec := domain.NewIndexedRecord(domain.Chunk{Filename: "a.pdf", Index: 3, Text: "hello", PageNumbers: []int{2, 3}}, []float32{1, 0})

	require.NoError(t, s.Upsert(context.Background(), []domain.IndexedRecord{rec}))
	require.Len(t, points.upserted.GetPoints(), 1)
	pt := points.upserted.GetPoints()[0]
	assert.Equal(t, PointID("a.pdf_3"), pt.GetId().GetUuid())
	assert.Equal(t, "a.pdf_3", pt.GetPayload()[payloadRecordID].GetStringValue())
	assert.Equal(t, int64(3), pt.GetPayload()[payloadChunkIndex].GetIntegerValue())
	assert.Equal(t, "2,3", pt.GetPayload()[payloadPages].GetStringValue())
	assert.True(t, points.upserted.GetWait())
}

func TestQueryConvertsScoreToDistance(t *testing.T) {
	points := &fakePoints{result: []*pb.ScoredPoint{{
		Score: 0.75,
		Payload: map[string]*pb.Value{
			payloadRecordID:   stringValue("a.pdf_0"),
			payloadText:       stringValue("chunk"),
			payloadFilename:   stringValue("a.pdf"),
			payloadChunkIndex: {Kind: &pb.Value_IntegerValue{IntegerValue: 0}},
			payloadPages:      stringValue("1"),
		},
	}}}
	s := newWithClients(&fakeCollections{}, points, "")

	res, err := s.Query(context.Background(), []float32{1, 0}, 20)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, uint64(20), points.searchReq.GetLimit())
	assert.Equal(t, "a.pdf_0", res[0].ID)
	assert.Equal(t, "a.pdf", res[0].Filename)
	assert.Equal(t, []int{1}, res[0].PageNumbers)
	assert.InDelta(t, 0.5, res[0].Distance, 1e-6)
}

func TestMissingCollectionIsUnavailable(t *testing.T) {
	points := &fakePoints{err: status.Error(codes.NotFound, "collection not found")}
	s := newWithClients(&fakeCollections{}, points, "")

	_, err := s.Query(context.Background(), []float32{1}, 5)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	_, err = s.Count(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestOtherErrorsAreNotUnavailable(t *testing.T) {
	points := &fakePoints{err: status.Error(codes.InvalidArgument, "bad vector")}
	s := newWithClients(&fakeCollections{}, points, "")
	_, err := s.Query(context.Background(), []float32{1}, 5)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestPointIDIsStableUUID(t *testing.T) {
	a := PointID("a.pdf_0")
	assert.Equal(t, a, PointID("a.pdf_0"))
	assert.NotEqual(t, a, PointID("a.pdf_1"))
	assert.Len(t, a, 36)
}
