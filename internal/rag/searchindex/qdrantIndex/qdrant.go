package qdrantIndex

import (
	"context"
	"fmt"
	"sync"

	"github.com/akonduru/reviewrag/internal/config"
	"github.com/akonduru/reviewrag/internal/domain/review"
	"github.com/akonduru/reviewrag/internal/rag/searchindex"
	"github.com/akonduru/reviewrag/pkg/logx"
	"github.com/qdrant/go-client/qdrant"
)

var (
	logger         *logx.Logger
	qdrantInstance *qdrant.Client
	once           sync.Once
)

// Options pins the collection layout at construction time.
type Options struct {
	Host       string
	Port       int
	UseTLS     bool
	Collection string
	Dimension  uint64
}

// ClientHolder adapts the qdrant client to the searchindex.Index interface.
type ClientHolder struct {
	qObj *qdrant.Client
	opts Options
}

// GetQdrantIndex returns the process-wide qdrant-backed index, or nil when
// the client could not connect.
func GetQdrantIndex(ctx context.Context, opts Options) searchindex.Index {
	once.Do(func() {
		logger = logx.NewLogger("Qdrant")
		client, err := qdrant.NewClient(&qdrant.Config{
			Host:     opts.Host,
			Port:     opts.Port,
			UseTLS:   opts.UseTLS,
			PoolSize: uint(config.QdrantPoolSize),
		})
		if err != nil {
			logger.Error("could not instantiate qdrant client", "error", err)
			return
		}
		qdrantInstance = client
		go closeQdrant(ctx, client)
	})

	if qdrantInstance == nil {
		return nil
	}
	return &ClientHolder{qObj: qdrantInstance, opts: opts}
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant", "error", err)
	}
}

// EnsureCollection creates the chunk collection on first run and verifies the
// vector dimensionality on subsequent ones.
func (db *ClientHolder) EnsureCollection(ctx context.Context) error {
	exists, err := db.qObj.CollectionExists(ctx, db.opts.Collection)
	if err != nil {
		return fmt.Errorf("check collection %q: %w", db.opts.Collection, err)
	}

	if exists {
		info, err := db.qObj.GetCollectionInfo(ctx, db.opts.Collection)
		if err != nil {
			return fmt.Errorf("inspect collection %q: %w", db.opts.Collection, err)
		}
		size := info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()
		if size != db.opts.Dimension {
			return &review.ConfigError{
				Field:  "index.dimension",
				Reason: fmt.Sprintf("collection %q has vector size %d, embedder produces %d", db.opts.Collection, size, db.opts.Dimension),
			}
		}
		return nil
	}

	err = db.qObj.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: db.opts.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     db.opts.Dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection %q: %w", db.opts.Collection, err)
	}

	// Full-text index over chunk content backs the lexical half of hybrid queries.
	_, err = db.qObj.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: db.opts.Collection,
		FieldName:      "content",
		FieldType:      qdrant.FieldType_FieldTypeText.Enum(),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("create text index on %q: %w", db.opts.Collection, err)
	}

	logger.Info("created collection", "collection", db.opts.Collection, "dimension", db.opts.Dimension)
	return nil
}

func (db *ClientHolder) Upsert(ctx context.Context, docs []review.ChunkDocument) error {
	if len(docs) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(docs))
	for i, doc := range docs {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(doc.ID),
			Vectors: qdrant.NewVectors(doc.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":       doc.Text,
				"parent_id":     doc.ParentID,
				"chunk_order":   int64(doc.Ordinal),
				"product_id":    doc.ProductID,
				"combined_text": doc.CombinedText,
				"summary":       doc.Summary,
				"score":         int64(doc.Score),
			}),
		}
	}

	_, err := db.qObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.opts.Collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return classify(fmt.Errorf("qdrant upsert failed: %w", err))
	}
	return nil
}

func (db *ClientHolder) DeleteByParent(ctx context.Context, parentID int64) error {
	_, err := db.qObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: db.opts.Collection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatchInt("parent_id", parentID)},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return classify(fmt.Errorf("qdrant delete by parent %d failed: %w", parentID, err))
	}
	return nil
}

// Query fetches vector and lexical candidates in two prefetch branches and
// lets qdrant fuse them with reciprocal rank fusion.
func (db *ClientHolder) Query(ctx context.Context, text string, vector []float32, topK int) ([]review.QueryHit, error) {
	prefetchLimit := qdrant.PtrOf(uint64(topK * 2))

	result, err := db.qObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: db.opts.Collection,
		Prefetch: []*qdrant.PrefetchQuery{
			{
				Query: qdrant.NewQuery(vector...),
				Limit: prefetchLimit,
			},
			{
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{qdrant.NewMatchText("content", text)},
				},
				Limit: prefetchLimit,
			},
		},
		Query:       qdrant.NewQueryFusion(qdrant.Fusion_RRF),
		Limit:       qdrant.PtrOf(uint64(topK)),
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, classify(fmt.Errorf("qdrant query failed: %w", err))
	}

	hits := make([]review.QueryHit, 0, len(result))
	for _, point := range result {
		payload := point.GetPayload()
		hits = append(hits, review.QueryHit{
			Doc: review.ChunkDocument{
				ID:           point.GetId().GetUuid(),
				ParentID:     payload["parent_id"].GetIntegerValue(),
				Ordinal:      int(payload["chunk_order"].GetIntegerValue()),
				Text:         payload["content"].GetStringValue(),
				ProductID:    payload["product_id"].GetStringValue(),
				CombinedText: payload["combined_text"].GetStringValue(),
				Summary:      payload["summary"].GetStringValue(),
				Score:        int(payload["score"].GetIntegerValue()),
			},
			Score:       point.GetScore(),
			RerankScore: point.GetScore(),
		})
	}
	return hits, nil
}
