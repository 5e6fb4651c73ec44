package semantic

import (
	"context"
	"errors"
	"testing"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
)

type mockPoints struct {
	lastUpsert *pb.UpsertPoints
	upsertErr  error
	searchResp *pb.SearchResponse
	searchErr  error
}

func (m *mockPoints) Upsert(_ context.Context, in *pb.UpsertPoints, _ ...grpc.CallOption) (*pb.PointsOperationResponse, error) {
	m.lastUpsert = in
	return &pb.PointsOperationResponse{}, m.upsertErr
}

func (m *mockPoints) Search(_ context.Context, _ *pb.SearchPoints, _ ...grpc.CallOption) (*pb.SearchResponse, error) {
	return m.searchResp, m.searchErr
}

type mockCollections struct {
	listResp  *pb.ListCollectionsResponse
	listErr   error
	created   bool
	createErr error
}

func (m *mockCollections) List(_ context.Context, _ *pb.ListCollectionsRequest, _ ...grpc.CallOption) (*pb.ListCollectionsResponse, error) {
	return m.listResp, m.listErr
}

func (m *mockCollections) Create(_ context.Context, _ *pb.CreateCollection, _ ...grpc.CallOption) (*pb.CollectionOperationResponse, error) {
	m.created = true
	return &pb.CollectionOperationResponse{}, m.createErr
}

func scored(id string, score float32) *pb.ScoredPoint {
	return &pb.ScoredPoint{
		Score: score,
		Payload: map[string]*pb.Value{
			"vehicle_id": {Kind: &pb.Value_StringValue{StringValue: id}},
		},
	}
}

func TestEnsureCollection(t *testing.T) {
	t.Run("creates when missing", func(t *testing.T) {
		mc := &mockCollections{listResp: &pb.ListCollectionsResponse{}}
		vs := NewWithClients(&mockPoints{}, mc, "vehicles")
		if err := vs.EnsureCollection(context.Background(), 768); err != nil {
			t.Fatal(err)
		}
		if !mc.created {
			t.Error("collection not created")
		}
	})
	t.Run("skips when present", func(t *testing.T) {
		mc := &mockCollections{listResp: &pb.ListCollectionsResponse{
			Collections: []*pb.CollectionDescription{{Name: "vehicles"}},
		}}
		vs := NewWithClients(&mockPoints{}, mc, "vehicles")
		if err := vs.EnsureCollection(context.Background(), 768); err != nil {
			t.Fatal(err)
		}
		if mc.created {
			t.Error("existing collection recreated")
		}
	})
	t.Run("list failure", func(t *testing.T) {
		mc := &mockCollections{listErr: errors.New("unavailable")}
		vs := NewWithClients(&mockPoints{}, mc, "vehicles")
		if err := vs.EnsureCollection(context.Background(), 768); err == nil {
			t.Error("expected error")
		}
	})
}

func TestUpsert(t *testing.T) {
	mp := &mockPoints{}
	vs := NewWithClients(mp, &mockCollections{}, "vehicles")

	records := []VehiclePoint{
		{VehicleID: "toyota-supra-jza80", Text: "Toyota Supra", Embedding: []float32{0.1, 0.2}},
	}
	if err := vs.Upsert(context.Background(), records); err != nil {
		t.Fatal(err)
	}
	if len(mp.lastUpsert.GetPoints()) != 1 {
		t.Fatalf("points = %d", len(mp.lastUpsert.GetPoints()))
	}
	// Point IDs are derived from the vehicle ID: re-seeding must overwrite.
	first := mp.lastUpsert.GetPoints()[0].GetId().GetUuid()
	if err := vs.Upsert(context.Background(), records); err != nil {
		t.Fatal(err)
	}
	if got := mp.lastUpsert.GetPoints()[0].GetId().GetUuid(); got != first {
		t.Errorf("point ID changed between upserts: %s vs %s", first, got)
	}

	if err := vs.Upsert(context.Background(), nil); err != nil {
		t.Errorf("empty upsert must be a no-op, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	mp := &mockPoints{searchResp: &pb.SearchResponse{Result: []*pb.ScoredPoint{
		scored("mazda-rx7-fd3s", 0.91),
		{Score: 0.5}, // payload without vehicle_id is dropped
	}}}
	vs := NewWithClients(mp, &mockCollections{}, "vehicles")

	got, err := vs.Search(context.Background(), []float32{0.1}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].VehicleID != "mazda-rx7-fd3s" || got[0].Score != 0.91 {
		t.Errorf("results = %+v", got)
	}
}

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	return f.vec, f.err
}

func TestMatcher_Match(t *testing.T) {
	mp := &mockPoints{searchResp: &pb.SearchResponse{Result: []*pb.ScoredPoint{
		scored("mazda-rx7-fd3s", 0.92),
		scored("toyota-supra-jza80", 0.41),
	}}}
	vs := NewWithClients(mp, &mockCollections{}, "vehicles")
	m := NewMatcher(vs, &fakeEmbedder{vec: []float32{0.3}}, 5, 0.6)

	hits, err := m.Match(context.Background(), "rotary coupe with popup lights")
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].VehicleID != "mazda-rx7-fd3s" {
		t.Errorf("hits = %+v, low scores must be cut", hits)
	}
}

func TestMatcher_EmbedFailure(t *testing.T) {
	vs := NewWithClients(&mockPoints{}, &mockCollections{}, "vehicles")
	m := NewMatcher(vs, &fakeEmbedder{err: errors.New("ollama down")}, 5, 0.6)
	if _, err := m.Match(context.Background(), "anything"); err == nil {
		t.Error("embed failure must propagate")
	}
}
