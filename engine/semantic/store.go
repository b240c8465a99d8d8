// Package semantic is the sole owner of all Qdrant operations. Each corpus
// maps to its own collection; index payloads carry only the external id used
// to join back to the document store.
package semantic

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/minilawyer/minilawyer/engine/domain"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// VectorStore holds one Qdrant connection shared by both corpora.
type VectorStore struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	prefix      string
}

// New connects to Qdrant at the given gRPC address. Collections are named
// prefix + corpus ("minilawyer_laws", "minilawyer_judgments" by default).
func New(addr, prefix string) (*VectorStore, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("semantic: dial qdrant %s: %w", addr, err)
	}
	if prefix == "" {
		prefix = "minilawyer"
	}
	return &VectorStore{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		prefix:      prefix,
	}, nil
}

// Close closes the underlying gRPC connection.
func (v *VectorStore) Close() error {
	return v.conn.Close()
}

func (v *VectorStore) collection(corpus domain.Corpus) string {
	return v.prefix + "_" + string(corpus)
}

// EnsureCollections creates the per-corpus collections if missing.
func (v *VectorStore) EnsureCollections(ctx context.Context, dims int) error {
	list, err := v.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("semantic: list collections: %w", err)
	}
	existing := make(map[string]bool)
	for _, c := range list.GetCollections() {
		existing[c.GetName()] = true
	}

	for _, corpus := range domain.Corpora {
		name := v.collection(corpus)
		if existing[name] {
			continue
		}
		_, err := v.collections.Create(ctx, &pb.CreateCollection{
			CollectionName: name,
			VectorsConfig: &pb.VectorsConfig{
				Config: &pb.VectorsConfig_Params{
					Params: &pb.VectorParams{
						Size:     uint64(dims),
						Distance: pb.Distance_Cosine,
					},
				},
			},
		})
		if err != nil {
			return fmt.Errorf("semantic: create collection %s: %w", name, err)
		}
	}
	return nil
}

// Upsert stores vector records into the corpus collection. Point ids are
// derived from the external id so re-ingestion overwrites rather than
// duplicates.
func (v *VectorStore) Upsert(ctx context.Context, corpus domain.Corpus, records []VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, len(records))
	for i, r := range records {
		pointID := uuid.NewSHA1(uuid.NameSpaceOID, []byte(string(corpus)+":"+r.ExternalID)).String()
		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: pointID},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: r.Embedding},
				},
			},
			Payload: map[string]*pb.Value{
				"external_id": {Kind: &pb.Value_StringValue{StringValue: r.ExternalID}},
				"name":        {Kind: &pb.Value_StringValue{StringValue: r.Name}},
			},
		}
	}

	wait := true
	_, err := v.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: v.collection(corpus),
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("semantic: upsert %d points into %s: %w", len(records), corpus, err)
	}
	return nil
}

// Query performs a k-NN probe against one corpus. Hits carry only external
// ids and scores; callers resolve records through the document store.
func (v *VectorStore) Query(ctx context.Context, corpus domain.Corpus, vector []float32, topK int) ([]Hit, error) {
	resp, err := v.points.Search(ctx, &pb.SearchPoints{
		CollectionName: v.collection(corpus),
		Vector:         vector,
		Limit:          uint64(topK),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("semantic: query %s: %w", corpus, err)
	}

	hits := make([]Hit, 0, len(resp.GetResult()))
	for _, r := range resp.GetResult() {
		id := r.GetPayload()["external_id"].GetStringValue()
		if id == "" {
			continue // stale point without a join key
		}
		hits = append(hits, Hit{ExternalID: id, Score: r.GetScore()})
	}
	return hits, nil
}
