// Package semantic owns all Qdrant access for the QA collection:
// collection bootstrap, point upserts, and threshold similarity search.
package semantic

import (
	"context"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// pointsAPI is the slice of pb.PointsClient the store uses.
type pointsAPI interface {
	Upsert(ctx context.Context, in *pb.UpsertPoints, opts ...grpc.CallOption) (*pb.PointsOperationResponse, error)
	Search(ctx context.Context, in *pb.SearchPoints, opts ...grpc.CallOption) (*pb.SearchResponse, error)
}

// collectionsAPI is the slice of pb.CollectionsClient the store uses.
type collectionsAPI interface {
	List(ctx context.Context, in *pb.ListCollectionsRequest, opts ...grpc.CallOption) (*pb.ListCollectionsResponse, error)
	Create(ctx context.Context, in *pb.CreateCollection, opts ...grpc.CallOption) (*pb.CollectionOperationResponse, error)
}

// VectorStore is the sole owner of all Qdrant operations.
type VectorStore struct {
	conn        *grpc.ClientConn
	points      pointsAPI
	collections collectionsAPI
	collection  string
}

// New creates a VectorStore connected to Qdrant at the given gRPC address.
func New(addr string, collection string) (*VectorStore, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("semantic: dial qdrant %s: %w: %v", addr, ErrUnavailable, err)
	}
	return &VectorStore{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}, nil
}

// NewWithClients creates a VectorStore with injected clients. Used in tests.
func NewWithClients(points pointsAPI, collections collectionsAPI, collection string) *VectorStore {
	return &VectorStore{points: points, collections: collections, collection: collection}
}

// Close closes the underlying gRPC connection.
func (v *VectorStore) Close() error {
	if v.conn == nil {
		return nil
	}
	return v.conn.Close()
}

// EnsureCollection creates the collection with the given vector size and
// cosine distance if it doesn't exist. Idempotent; called once at startup
// before any read or write.
func (v *VectorStore) EnsureCollection(ctx context.Context, vectorSize int) error {
	list, err := v.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("semantic: list collections: %w: %v", ErrUnavailable, err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == v.collection {
			return nil
		}
	}

	_, err = v.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: v.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(vectorSize),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("semantic: create collection %s: %w: %v", v.collection, ErrConfig, err)
	}
	return nil
}

// Upsert inserts or replaces a single point by id. The write waits for
// the backend to apply it, so the point is visible to an immediately
// following search.
func (v *VectorStore) Upsert(ctx context.Context, rec VectorRecord) error {
	point := &pb.PointStruct{
		Id: &pb.PointId{
			PointIdOptions: &pb.PointId_Uuid{Uuid: rec.ID},
		},
		Vectors: &pb.Vectors{
			VectorsOptions: &pb.Vectors_Vector{
				Vector: &pb.Vector{Data: rec.Embedding},
			},
		},
		Payload: map[string]*pb.Value{
			"keyword":  {Kind: &pb.Value_StringValue{StringValue: rec.Payload.Keyword}},
			"question": {Kind: &pb.Value_StringValue{StringValue: rec.Payload.Question}},
			"answer":   {Kind: &pb.Value_StringValue{StringValue: rec.Payload.Answer}},
		},
	}

	wait := true
	_, err := v.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: v.collection,
		Wait:           &wait,
		Points:         []*pb.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("semantic: upsert point %s: %w: %v", rec.ID, ErrWrite, err)
	}
	return nil
}

// Search performs similarity search, returning up to limit points whose
// score clears the threshold, in the store's descending-score order. An
// empty result is not an error.
func (v *VectorStore) Search(ctx context.Context, embedding []float32, limit int, scoreThreshold float32) ([]SearchResult, error) {
	resp, err := v.points.Search(ctx, &pb.SearchPoints{
		CollectionName: v.collection,
		Vector:         embedding,
		Limit:          uint64(limit),
		ScoreThreshold: &scoreThreshold,
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("semantic: search: %w: %v", ErrRead, err)
	}

	results := make([]SearchResult, len(resp.GetResult()))
	for i, r := range resp.GetResult() {
		payload := r.GetPayload()
		results[i] = SearchResult{
			ID:    r.GetId().GetUuid(),
			Score: r.GetScore(),
			Payload: Payload{
				Keyword:  payload["keyword"].GetStringValue(),
				Question: payload["question"].GetStringValue(),
				Answer:   payload["answer"].GetStringValue(),
			},
		}
	}
	return results, nil
}
